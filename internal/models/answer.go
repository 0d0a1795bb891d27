package models

// Answer is an anonymous answer belonging to exactly one round.
// Once created it is immutable except for the revealed transition,
// which is monotone: a revealed answer never un-reveals.
type Answer struct {
	ID            int64  `json:"answer_id"`
	RoundID       int64  `json:"round_id"`
	Text          string `json:"text"`
	Revealed      bool   `json:"revealed"`
	AuthorDisplay string `json:"author_display,omitempty"`
}
