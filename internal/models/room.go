package models

// RoomStatus defines the status of a room.
type RoomStatus string

const (
	RoomStatusActive RoomStatus = "active"
	RoomStatusClosed RoomStatus = "closed"
)

// RoundStatus defines the status of a round.
type RoundStatus string

const (
	// RoundStatusCollecting means the round is accepting answers.
	RoundStatusCollecting RoundStatus = "collecting"
	// RoundStatusDiscussion means answer collection is over and reveals happen.
	RoundStatusDiscussion RoundStatus = "discussion"
)

// Room represents a game room the session is bound to.
type Room struct {
	ID      int64      `json:"room_id"`
	Code    string     `json:"room_code"`
	Status  RoomStatus `json:"status"`
	Players []Player   `json:"players"`
}

// Player is a room-membership projection of a user.
type Player struct {
	UserID  int64  `json:"user_id"`
	Name    string `json:"name"`
	Credits int    `json:"super_cards"`
}

// Round is one question-and-answer cycle within a room.
// A room has at most one current round at a time.
type Round struct {
	ID       int64       `json:"round_id"`
	Question string      `json:"question"`
	Status   RoundStatus `json:"status"`
}

// Active reports whether the round still accepts answers.
func (r Round) Active() bool {
	return r.Status == RoundStatusCollecting
}
