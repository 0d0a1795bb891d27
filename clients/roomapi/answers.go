package roomapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mcdev12/partyround/internal/models"
)

// answerRecord mirrors the server row; revealed arrives as 0/1.
type answerRecord struct {
	AnswerID      int64   `json:"answer_id"`
	Text          string  `json:"text"`
	Revealed      int     `json:"revealed"`
	AuthorDisplay *string `json:"author_display"`
}

type submitAnswerRequest struct {
	RoundID  int64  `json:"round_id"`
	Text     string `json:"text"`
	AuthorID int64  `json:"author_id"`
}

// SubmitAnswerResponse identifies a stored answer.
type SubmitAnswerResponse struct {
	AnswerID int64 `json:"answer_id"`
}

// ListAnswers fetches the answer list for a round.
func (c *Client) ListAnswers(ctx context.Context, roomID, roundID int64) ([]models.Answer, error) {
	endpoint := fmt.Sprintf("%s?round_id=%d", answersEndpoint(roomID), roundID)
	var records []answerRecord
	if err := c.get(ctx, endpoint, &records); err != nil {
		return nil, err
	}

	answers := make([]models.Answer, len(records))
	for i, rec := range records {
		answers[i] = models.Answer{
			ID:       rec.AnswerID,
			RoundID:  roundID,
			Text:     rec.Text,
			Revealed: rec.Revealed != 0,
		}
		if rec.AuthorDisplay != nil {
			answers[i].AuthorDisplay = *rec.AuthorDisplay
		}
	}
	return answers, nil
}

// SubmitAnswer stores an anonymous answer for the round.
func (c *Client) SubmitAnswer(ctx context.Context, roomID, roundID, authorID int64, text string) (*SubmitAnswerResponse, error) {
	var resp SubmitAnswerResponse
	body := submitAnswerRequest{RoundID: roundID, Text: text, AuthorID: authorID}
	if err := c.request(ctx, http.MethodPost, answersEndpoint(roomID), nil, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
