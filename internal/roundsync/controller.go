// Package roundsync reconciles "something may have changed" signals into
// answer-list refreshes for the current round, guaranteeing that a stale
// refresh result never overwrites newer state.
package roundsync

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partyround/internal/models"
	"github.com/mcdev12/partyround/internal/realtime"
	"github.com/mcdev12/partyround/internal/session"
)

// Fetcher defines what the controller needs from the answers collaborator.
type Fetcher interface {
	ListAnswers(ctx context.Context, roomID, roundID int64) ([]models.Answer, error)
}

// Controller issues answer-list refreshes tagged with strictly increasing
// generation tokens. A completion is applied only when its token is higher
// than any applied so far and its round is still current; everything else
// is discarded silently. While a refresh is in flight, further triggers
// collapse into at most one trailing refresh.
type Controller struct {
	fetcher Fetcher
	store   *session.Store

	mu       sync.Mutex
	gen      uint64 // last issued token
	applied  uint64 // horizon; completions with token <= applied are stale
	inFlight bool
	pending  bool
}

// NewController creates a sync controller over the given store.
func NewController(fetcher Fetcher, store *session.Store) *Controller {
	return &Controller{fetcher: fetcher, store: store}
}

// HandleEvent routes a push event into the appropriate refresh action.
func (c *Controller) HandleEvent(ctx context.Context, event realtime.Event) {
	switch event.Type {
	case realtime.EventTypeQuestionSet:
		payload, err := realtime.ParseEventPayload(event)
		if err != nil {
			log.Warn().Err(err).Msg("dropping malformed question_set payload")
			return
		}
		p := payload.(realtime.QuestionSetPayload)
		c.SetRound(ctx, models.Round{ID: p.RoundID, Question: p.Text, Status: p.Status})

	case realtime.EventTypeAnswerAdded:
		if round, ok := c.store.Round(); ok && round.Active() {
			c.Refresh(ctx)
		}

	case realtime.EventTypeAnswerRevealed:
		// The payload is applied directly so the reveal is visible even
		// when event-driven refreshes are suppressed after round close.
		if payload, err := realtime.ParseEventPayload(event); err == nil {
			p := payload.(realtime.AnswerRevealedPayload)
			c.store.MarkRevealed(p.AnswerID, p.AuthorDisplay)
		} else {
			log.Warn().Err(err).Msg("dropping malformed answer_revealed payload")
		}
		if round, ok := c.store.Round(); ok && round.Active() {
			c.Refresh(ctx)
		}

	case realtime.EventTypeRoundClosed:
		c.store.SetRoundStatus(models.RoundStatusDiscussion)

	case realtime.EventTypeClosed:
		// Tearing down the push connection invalidates every pending
		// refresh token for the room it served.
		c.InvalidateInFlight()

	case realtime.EventTypePlayerJoined, realtime.EventTypeOpened:
		// Presentation-only; no snapshot refresh.
	}
}

// SetRound replaces the current round, discards every outstanding refresh
// token from the previous round, and refreshes the new round's answers.
func (c *Controller) SetRound(ctx context.Context, round models.Round) {
	c.store.SetRound(round)
	c.InvalidateInFlight()
	c.Refresh(ctx)
}

// InvalidateInFlight makes every outstanding refresh token unconditionally
// stale, regardless of its value.
func (c *Controller) InvalidateInFlight() {
	c.mu.Lock()
	c.applied = c.gen
	c.pending = false
	c.mu.Unlock()
}

// Refresh issues an answer-list fetch for the current round, or records a
// trailing refresh when one is already in flight.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inFlight {
		c.pending = true
		return
	}
	c.issueLocked(ctx)
}

// issueLocked starts a fetch goroutine. Caller holds c.mu.
func (c *Controller) issueLocked(ctx context.Context) {
	snap := c.store.Snapshot()
	if snap.Round == nil || snap.Room.ID == 0 {
		return
	}

	c.inFlight = true
	c.gen++
	token := c.gen
	roomID := snap.Room.ID
	roundID := snap.Round.ID

	go func() {
		answers, err := c.fetcher.ListAnswers(ctx, roomID, roundID)
		c.complete(ctx, token, roundID, answers, err)
	}()
}

// complete applies or discards a finished fetch and issues the trailing
// refresh when one was requested mid-flight.
func (c *Controller) complete(ctx context.Context, token uint64, roundID int64, answers []models.Answer, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.inFlight = false

	switch {
	case err != nil:
		log.Warn().
			Err(err).
			Int64("round_id", roundID).
			Msg("answer refresh failed")
	case token <= c.applied:
		log.Debug().
			Uint64("token", token).
			Uint64("applied", c.applied).
			Msg("discarding stale answer refresh")
	default:
		if c.store.SetAnswers(roundID, answers) {
			c.applied = token
		}
	}

	if c.pending {
		c.pending = false
		c.issueLocked(ctx)
	}
}
