// Package reveal implements the credit-gated reveal workflow: a per-answer
// state machine hidden -> confirming -> submitting -> revealed, with an
// error exit back to hidden. Credits are debited only after the
// collaborator confirms success.
package reveal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partyround/clients/roomapi"
	"github.com/mcdev12/partyround/internal/models"
	"github.com/mcdev12/partyround/internal/session"
)

var (
	// ErrRevealInFlight is returned when a submission for the same answer
	// is already outstanding.
	ErrRevealInFlight = errors.New("reveal already in progress for this answer")
	// ErrAnswerNotFound is returned for an answer id outside the current
	// snapshot.
	ErrAnswerNotFound = errors.New("answer not in current round")
)

// API defines what the workflow needs from the reveal collaborator.
type API interface {
	SubmitReveal(ctx context.Context, roomID, roundID, answerID, actorID int64, requestID string) (*roomapi.RevealResponse, error)
}

// Refresher triggers a full answer-list refresh after a successful reveal
// so concurrently changed answers are reconciled too.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Confirmer asks the user to confirm an irreversible credit spend. The
// wait is indefinite; cancel via ctx.
type Confirmer interface {
	ConfirmReveal(ctx context.Context, answer models.Answer) (bool, error)
}

// Notifier surfaces user-facing notices (refusals, failure reasons).
type Notifier interface {
	Notify(message string)
}

// Workflow coordinates reveal submissions: local precondition checks,
// explicit confirmation, single-flight per answer id, and
// decrement-after-success bookkeeping.
type Workflow struct {
	api       API
	store     *session.Store
	refresher Refresher
	confirmer Confirmer
	notifier  Notifier

	mu         sync.Mutex
	inFlight   map[int64]bool
	requestIDs map[int64]string
}

// NewWorkflow creates a reveal workflow over the given store.
func NewWorkflow(api API, store *session.Store, refresher Refresher, confirmer Confirmer, notifier Notifier) *Workflow {
	return &Workflow{
		api:        api,
		store:      store,
		refresher:  refresher,
		confirmer:  confirmer,
		notifier:   notifier,
		inFlight:   make(map[int64]bool),
		requestIDs: make(map[int64]string),
	}
}

// RequestReveal runs the workflow for one answer. Revealed answers are a
// no-op; zero credits and duplicate submissions are refused locally before
// any network call.
func (w *Workflow) RequestReveal(ctx context.Context, answerID int64) error {
	snap := w.store.Snapshot()

	answer, ok := snap.Answer(answerID)
	if !ok {
		return ErrAnswerNotFound
	}
	if answer.Revealed {
		// Terminal state for the session.
		return nil
	}
	if snap.User.Credits <= 0 {
		w.notifier.Notify("You have no reveal credits left.")
		return session.ErrNoCredits
	}

	w.mu.Lock()
	if w.inFlight[answerID] {
		w.mu.Unlock()
		return ErrRevealInFlight
	}
	w.inFlight[answerID] = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.inFlight, answerID)
		w.mu.Unlock()
	}()

	confirmed, err := w.confirmer.ConfirmReveal(ctx, answer)
	if err != nil {
		return fmt.Errorf("confirm reveal: %w", err)
	}
	if !confirmed {
		// Declined: back to hidden with no side effect.
		return nil
	}

	resp, err := w.api.SubmitReveal(ctx, snap.Room.ID, answer.RoundID, answerID, snap.User.ID, w.requestID(answerID))
	if err != nil {
		w.notifier.Notify(failureMessage(err))
		return fmt.Errorf("submit reveal: %w", err)
	}

	if err := w.store.ApplyReveal(answerID, resp.AuthorDisplay); err != nil {
		// The server accepted the spend but the local balance disagrees.
		// Record the reveal anyway; it is monotone either way.
		log.Warn().
			Err(err).
			Int64("answer_id", answerID).
			Msg("reveal succeeded but local state could not debit")
		w.store.MarkRevealed(answerID, resp.AuthorDisplay)
	}

	w.refresher.Refresh(ctx)
	return nil
}

// requestID returns the idempotency key for answerID, stable across
// retries so the server can deduplicate a double spend.
func (w *Workflow) requestID(answerID int64) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if id, ok := w.requestIDs[answerID]; ok {
		return id
	}
	id := uuid.New().String()
	w.requestIDs[answerID] = id
	return id
}

// failureMessage picks the collaborator-provided reason when available.
func failureMessage(err error) string {
	var apiErr *roomapi.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "Reveal failed. Please try again."
}
