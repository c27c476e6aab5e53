package service

import (
	"context"
	"encoding/json"
	"sync"

	"lettersprint/internal/model"
	"lettersprint/internal/repository"
)

// In-memory stand-ins for the Redis caches and Mongo repositories. They
// round-trip values through JSON like the real stores, so callers never
// share memory with the stored record.

// --- GameCache ---

type fakeGameCache struct {
	mu    sync.Mutex
	games map[string][]byte

	// setHook, when non-nil, runs before each Set and can reject the write
	// to exercise storage failure paths
	setHook func(state *model.GameState) error
}

func newFakeGameCache() *fakeGameCache {
	return &fakeGameCache{games: map[string][]byte{}}
}

func (f *fakeGameCache) Get(ctx context.Context, roomCode string) (*model.GameState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.games[roomCode]
	if !ok {
		return nil, nil
	}
	var state model.GameState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (f *fakeGameCache) Set(ctx context.Context, roomCode string, state *model.GameState) error {
	if f.setHook != nil {
		if err := f.setHook(state); err != nil {
			return err
		}
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[roomCode] = data
	return nil
}

func (f *fakeGameCache) Delete(ctx context.Context, roomCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.games, roomCode)
	return nil
}

func (f *fakeGameCache) ActiveRoomCodes(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	codes := make([]string, 0, len(f.games))
	for code := range f.games {
		codes = append(codes, code)
	}
	return codes, nil
}

// --- RoomCache ---

type fakeRoomCache struct {
	mu    sync.Mutex
	rooms map[string][]byte
}

func newFakeRoomCache() *fakeRoomCache {
	return &fakeRoomCache{rooms: map[string][]byte{}}
}

func (f *fakeRoomCache) Set(ctx context.Context, room *model.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rooms[room.Code] = data
	return nil
}

func (f *fakeRoomCache) Get(ctx context.Context, code string) (*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.rooms[code]
	if !ok {
		return nil, nil
	}
	var room model.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (f *fakeRoomCache) Delete(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rooms, code)
	return nil
}

func (f *fakeRoomCache) Exists(ctx context.Context, code string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rooms[code]
	return ok, nil
}

func (f *fakeRoomCache) List(ctx context.Context) ([]*model.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rooms := make([]*model.Room, 0, len(f.rooms))
	for _, data := range f.rooms {
		var room model.Room
		if err := json.Unmarshal(data, &room); err != nil {
			return nil, err
		}
		rooms = append(rooms, &room)
	}
	return rooms, nil
}

// --- VoteCache ---

type fakeVoteCache struct {
	mu      sync.Mutex
	tallies map[string][]byte
	byRoom  map[string][]string
}

func newFakeVoteCache() *fakeVoteCache {
	return &fakeVoteCache{tallies: map[string][]byte{}, byRoom: map[string][]string{}}
}

func (f *fakeVoteCache) SetTally(ctx context.Context, tally *model.VoteTally) error {
	data, err := json.Marshal(tally)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.tallies[tally.RequestID]; !exists {
		f.byRoom[tally.RoomCode] = append(f.byRoom[tally.RoomCode], tally.RequestID)
	}
	f.tallies[tally.RequestID] = data
	return nil
}

func (f *fakeVoteCache) GetTally(ctx context.Context, requestID string) (*model.VoteTally, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.tallies[requestID]
	if !ok {
		return nil, nil
	}
	var tally model.VoteTally
	if err := json.Unmarshal(data, &tally); err != nil {
		return nil, err
	}
	return &tally, nil
}

func (f *fakeVoteCache) tallyCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tallies)
}

func (f *fakeVoteCache) DeleteRoom(ctx context.Context, roomCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.byRoom[roomCode] {
		delete(f.tallies, id)
	}
	delete(f.byRoom, roomCode)
	return nil
}

// --- VerdictCache ---

type fakeVerdictCache struct {
	mu       sync.Mutex
	verdicts map[string]model.ValidationResult
}

func newFakeVerdictCache() *fakeVerdictCache {
	return &fakeVerdictCache{verdicts: map[string]model.ValidationResult{}}
}

func verdictKey(mode model.ValidationMode, category, letter, normalized string) string {
	return string(mode) + ":" + category + ":" + letter + ":" + normalized
}

func (f *fakeVerdictCache) Get(ctx context.Context, mode model.ValidationMode, category, letter, normalized string) (*model.ValidationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.verdicts[verdictKey(mode, category, letter, normalized)]; ok {
		copied := v
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeVerdictCache) Set(ctx context.Context, mode model.ValidationMode, category, letter, normalized string, result *model.ValidationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verdicts[verdictKey(mode, category, letter, normalized)] = *result
	return nil
}

// --- DictionaryRepo ---

type fakeDictRepo struct {
	mu    sync.Mutex
	words map[string]map[string]bool // category -> normalized word
}

func newFakeDictRepo() *fakeDictRepo {
	return &fakeDictRepo{words: map[string]map[string]bool{}}
}

func (f *fakeDictRepo) add(category string, words ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.words[category] == nil {
		f.words[category] = map[string]bool{}
	}
	for _, w := range words {
		f.words[category][w] = true
	}
}

func (f *fakeDictRepo) WordExists(ctx context.Context, category, normalizedWord string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.words[category][normalizedWord], nil
}

func (f *fakeDictRepo) GetWords(ctx context.Context, category string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	words := make([]string, 0, len(f.words[category]))
	for w := range f.words[category] {
		words = append(words, w)
	}
	return words, nil
}

func (f *fakeDictRepo) AddWords(ctx context.Context, category string, words []string) error {
	f.add(category, words...)
	return nil
}

// --- HistoryRepo ---

type fakeHistoryRepo struct {
	mu    sync.Mutex
	saved []*repository.GameHistory
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{}
}

func (f *fakeHistoryRepo) SaveCompletedGame(ctx context.Context, history *repository.GameHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, history)
	return nil
}

func (f *fakeHistoryRepo) GetByRoomCode(ctx context.Context, roomCode string) ([]*repository.GameHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.GameHistory
	for _, h := range f.saved {
		if h.RoomCode == roomCode {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) GetByPlayer(ctx context.Context, playerID string) ([]*repository.GameHistory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*repository.GameHistory
	for _, h := range f.saved {
		for _, p := range h.Players {
			if p.ID == playerID {
				out = append(out, h)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeHistoryRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

// --- Broadcaster ---

type broadcastRecord struct {
	RoomCode string
	PlayerID string
	Event    string
	Payload  interface{}
}

type recordingBroadcaster struct {
	mu           sync.Mutex
	records      []broadcastRecord
	disconnected []string
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{}
}

func (b *recordingBroadcaster) BroadcastToRoom(roomCode string, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, broadcastRecord{RoomCode: roomCode, Event: event, Payload: payload})
}

func (b *recordingBroadcaster) BroadcastToPlayer(roomCode, playerID string, event string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, broadcastRecord{RoomCode: roomCode, PlayerID: playerID, Event: event, Payload: payload})
}

func (b *recordingBroadcaster) DisconnectRoom(roomCode string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disconnected = append(b.disconnected, roomCode)
}

// eventNames returns the broadcast events in emission order
func (b *recordingBroadcaster) eventNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.records))
	for _, r := range b.records {
		names = append(names, r.Event)
	}
	return names
}

func (b *recordingBroadcaster) countOf(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, r := range b.records {
		if r.Event == event {
			n++
		}
	}
	return n
}
