package realtime

import (
	"encoding/json"

	"github.com/mcdev12/partyround/internal/models"
)

// EventType represents the kind of a room event.
type EventType string

const (
	EventTypePlayerJoined   EventType = "player_joined"
	EventTypeQuestionSet    EventType = "question_set"
	EventTypeAnswerAdded    EventType = "answer_added"
	EventTypeAnswerRevealed EventType = "answer_revealed"
	EventTypeRoundClosed    EventType = "round_closed"

	// Transport-level kinds, synthesized locally and never sent on the wire.
	EventTypeOpened EventType = "opened"
	EventTypeClosed EventType = "closed"
)

// Event is the envelope delivered for every push notification. The
// transport hands events to the registered callback in arrival order and
// never reorders, deduplicates, or buffers them.
type Event struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`

	// Err carries the close cause for EventTypeClosed.
	Err error `json:"-"`
}

// PlayerJoinedPayload announces a new player in the room.
type PlayerJoinedPayload struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// QuestionSetPayload carries the complete new current round.
type QuestionSetPayload struct {
	RoundID int64              `json:"round_id"`
	Text    string             `json:"text"`
	Status  models.RoundStatus `json:"status"`
}

// AnswerAddedPayload announces a newly submitted answer.
type AnswerAddedPayload struct {
	AnswerID int64  `json:"answer_id"`
	Text     string `json:"text"`
}

// AnswerRevealedPayload announces a reveal performed by some player.
type AnswerRevealedPayload struct {
	AnswerID      int64  `json:"answer_id"`
	AuthorDisplay string `json:"author_display"`
}

// ParseEventPayload parses event data into the appropriate payload struct.
// Unknown event types yield nil.
func ParseEventPayload(event Event) (interface{}, error) {
	switch event.Type {
	case EventTypePlayerJoined:
		var payload PlayerJoinedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeQuestionSet:
		var payload QuestionSetPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeAnswerAdded:
		var payload AnswerAddedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeAnswerRevealed:
		var payload AnswerRevealedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, nil
	}
}
