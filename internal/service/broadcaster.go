package service

// Event names pushed to clients over the broadcaster
const (
	EventPlayerJoined     = "playerJoined"
	EventPlayerLeft       = "playerLeft"
	EventRoomUpdated      = "roomUpdated"
	EventGameStarted      = "gameStarted"
	EventSelectLetter     = "selectLetter"
	EventRoundStarted     = "roundStarted"
	EventAnswersSubmitted = "answersSubmitted"
	EventRoundEnded       = "roundEnded"
	EventScoresCalculated = "scoresCalculated"
	EventGameEnded        = "gameEnded"
	EventTimerUpdate      = "timerUpdate"
	EventVoteRecorded     = "voteRecorded"
	EventGameError        = "gameError"
)

// Broadcaster fans events out to the clients of a room. Delivery is
// fire-and-forget, at least once; clients handle duplicates.
// (Interface lives here to avoid an import cycle with the ws hub.)
type Broadcaster interface {
	BroadcastToRoom(roomCode string, event string, payload interface{})
	BroadcastToPlayer(roomCode, playerID string, event string, payload interface{})
	DisconnectRoom(roomCode string)
}
