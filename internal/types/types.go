package types

import "encoding/json"

// GameRecord is one player's outcome for a single day's puzzle.
// States holds one entry per guess; each letter state is kept as the client
// sent it (e.g. "correct", 2, or {"letter":"c","status":"absent"}).
type GameRecord struct {
	Guesses  []string            `json:"guesses"`
	States   [][]json.RawMessage `json:"states"`
	Success  bool                `json:"success"`
	Attempts int                 `json:"attempts"`
	Duration *float64            `json:"duration,omitempty"`
}

// DayBucket maps player name to that player's record for one date.
type DayBucket map[string]GameRecord

// Results is the whole persisted document, keyed by YYYY-MM-DD.
type Results map[string]DayBucket

// Submission is the payload accepted by POST /submit.
// Pointer fields distinguish "missing" from zero values.
type Submission struct {
	Player   string              `json:"player"`
	Guesses  []string            `json:"guesses"`
	States   [][]json.RawMessage `json:"states"`
	Success  *bool               `json:"success"`
	Duration *float64            `json:"duration"`
	Attempts *int                `json:"attempts"` // ignored; recomputed from guesses
}
