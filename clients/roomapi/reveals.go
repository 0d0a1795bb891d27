package roomapi

import (
	"context"
	"net/http"
)

type revealRequest struct {
	RoundID  int64 `json:"round_id"`
	AnswerID int64 `json:"answer_id"`
	ActorID  int64 `json:"actor_id"`
}

// RevealResponse carries the unmasked author of a revealed answer.
type RevealResponse struct {
	AnswerID      int64  `json:"answer_id"`
	AuthorDisplay string `json:"author_display"`
}

// SubmitReveal spends one credit to unmask an answer's author. requestID is
// a client-stable idempotency key per answer so a retried submission cannot
// charge twice.
func (c *Client) SubmitReveal(ctx context.Context, roomID, roundID, answerID, actorID int64, requestID string) (*RevealResponse, error) {
	headers := map[string]string{RequestIDHeader: requestID}
	body := revealRequest{RoundID: roundID, AnswerID: answerID, ActorID: actorID}

	var resp RevealResponse
	if err := c.request(ctx, http.MethodPost, revealEndpoint(roomID), headers, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
