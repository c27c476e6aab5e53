package model

// Room limits
const (
	MinPlayers        = 2
	DefaultMaxPlayers = 6
	MaxPlayersLimit   = 8

	RoomCodeLength = 6
	RoomCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Time limits, in seconds
const (
	MinRoundTimeSec     = 30
	MaxRoundTimeSec     = 600
	DefaultRoundTimeSec = 180
)

// Scoring point values
const (
	PointsValidAnswer    = 10
	PointsUniqueAnswer   = 15
	PointsInvalidAnswer  = 0
	PointsEmptyAnswer    = 0
	CompletionBonus      = 5
	RoundResultsDelaySec = 5
)

// Answer constraints
const (
	MaxAnswerLength     = 100
	MaxPlayerNameLength = 50
)

// Voting validation thresholds
const (
	MinVotesRequired  = 2
	MajorityThreshold = 0.6
)

// DefaultCategories is the category list used when a room does not supply its own
var DefaultCategories = []string{
	"Animals",
	"Foods",
	"Cities",
	"Countries",
	"Movies",
	"Sports",
	"Professions",
	"Brands",
}

// ExcludedLetters are dropped from the random draw because too few words
// start with them
var ExcludedLetters = []string{"Q", "X", "Z"}
