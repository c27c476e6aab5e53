package validation

import (
	"context"
	"errors"
	"sync"

	"lettersprint/internal/model"
)

// --- DictionaryRepo ---

type fakeDictRepo struct {
	mu      sync.Mutex
	words   map[string]map[string]bool
	lookups int
	fail    bool
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
	f.lookups++
	if f.fail {
		return false, errors.New("connection refused")
	}
	return f.words[category][normalizedWord], nil
}

func (f *fakeDictRepo) GetWords(ctx context.Context, category string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("connection refused")
	}
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

func (f *fakeDictRepo) lookupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}

// --- VoteCache ---

type fakeVoteCache struct {
	mu      sync.Mutex
	tallies map[string]model.VoteTally
}

func newFakeVoteCache() *fakeVoteCache {
	return &fakeVoteCache{tallies: map[string]model.VoteTally{}}
}

func (f *fakeVoteCache) SetTally(ctx context.Context, tally *model.VoteTally) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *tally
	copied.Votes = append([]model.ValidationVote(nil), tally.Votes...)
	f.tallies[tally.RequestID] = copied
	return nil
}

func (f *fakeVoteCache) GetTally(ctx context.Context, requestID string) (*model.VoteTally, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tally, ok := f.tallies[requestID]
	if !ok {
		return nil, nil
	}
	copied := tally
	copied.Votes = append([]model.ValidationVote(nil), tally.Votes...)
	return &copied, nil
}

func (f *fakeVoteCache) DeleteRoom(ctx context.Context, roomCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, tally := range f.tallies {
		if tally.RoomCode == roomCode {
			delete(f.tallies, id)
		}
	}
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

func cacheKey(mode model.ValidationMode, category, letter, normalized string) string {
	return string(mode) + ":" + category + ":" + letter + ":" + normalized
}

func (f *fakeVerdictCache) Get(ctx context.Context, mode model.ValidationMode, category, letter, normalized string) (*model.ValidationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.verdicts[cacheKey(mode, category, letter, normalized)]; ok {
		copied := v
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeVerdictCache) Set(ctx context.Context, mode model.ValidationMode, category, letter, normalized string, result *model.ValidationResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verdicts[cacheKey(mode, category, letter, normalized)] = *result
	return nil
}

func (f *fakeVerdictCache) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.verdicts)
}

// --- Strategy ---

type stubStrategy struct {
	result *model.ValidationResult
	err    error
	calls  int
}

func (s *stubStrategy) Validate(ctx context.Context, req *model.ValidationRequest) (*model.ValidationResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	copied := *s.result
	copied.RequestID = req.ID
	copied.Answer = req.Answer
	copied.Category = req.Category
	return &copied, nil
}

func (s *stubStrategy) Name() string { return "stub" }
