package models

// User represents the local player owning this session.
type User struct {
	ID         int64  `json:"user_id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	// Credits is the reveal-credit balance. It is mutated only by the
	// reveal workflow and never goes negative.
	Credits int `json:"super_cards"`
}
