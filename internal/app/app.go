// Package app wires the session store, REST client, realtime transport,
// sync controller and reveal workflow into one client engine and owns the
// local user actions.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/partyround/clients/roomapi"
	"github.com/mcdev12/partyround/internal/models"
	"github.com/mcdev12/partyround/internal/realtime"
	"github.com/mcdev12/partyround/internal/reveal"
	"github.com/mcdev12/partyround/internal/roundsync"
	"github.com/mcdev12/partyround/internal/session"
)

const (
	maxQuestionLen = 200
	maxAnswerLen   = 300
	roomCodeLen    = 6
)

var (
	// ErrNoRoom is returned for actions that need a loaded room.
	ErrNoRoom = errors.New("no room loaded")
	// ErrNoRound is returned for actions that need a current round.
	ErrNoRound = errors.New("no current round")
	// ErrRoundInactive is returned when the round no longer collects answers.
	ErrRoundInactive = errors.New("round is no longer collecting answers")
	// ErrEmptyText is returned for blank question or answer input.
	ErrEmptyText = errors.New("text must not be empty")
)

// RoomAPI defines what the app layer needs from the room server.
type RoomAPI interface {
	UpsertUser(ctx context.Context, externalID, name string) (*roomapi.UpsertUserResponse, error)
	CreateRoom(ctx context.Context, externalID, name string) (*roomapi.CreateRoomResponse, error)
	JoinRoom(ctx context.Context, code, externalID, name string) (*roomapi.JoinRoomResponse, error)
	GetRoom(ctx context.Context, roomID int64) (*roomapi.RoomState, error)
	GetQuestion(ctx context.Context, roomID int64) (*roomapi.QuestionResponse, error)
	SetQuestion(ctx context.Context, roomID int64, text string) (*roomapi.QuestionResponse, error)
	SubmitAnswer(ctx context.Context, roomID, roundID, authorID int64, text string) (*roomapi.SubmitAnswerResponse, error)
	CloseRound(ctx context.Context, roomID int64) error
	roundsync.Fetcher
	reveal.API
}

// Transport is the push-connection surface the app drives.
type Transport interface {
	Connect(ctx context.Context, roomID int64, onEvent realtime.Handler) error
	Close()
}

// Notifier surfaces presentation-only notices (toasts).
type Notifier interface {
	Notify(message string)
}

// EventPublisher mirrors room events to sibling processes. Optional.
type EventPublisher interface {
	PublishEvent(roomID int64, event realtime.Event) error
}

// Config identifies the local player.
type Config struct {
	ExternalID  string
	DisplayName string
}

// App is the assembled client engine.
type App struct {
	config     Config
	api        RoomAPI
	store      *session.Store
	transport  Transport
	controller *roundsync.Controller
	workflow   *reveal.Workflow
	notifier   Notifier
	publisher  EventPublisher

	eventCtx context.Context
}

// New assembles the engine. publisher may be nil.
func New(config Config, api RoomAPI, store *session.Store, transport Transport, confirmer reveal.Confirmer, notifier Notifier, publisher EventPublisher) *App {
	controller := roundsync.NewController(api, store)
	return &App{
		config:     config,
		api:        api,
		store:      store,
		transport:  transport,
		controller: controller,
		workflow:   reveal.NewWorkflow(api, store, controller, confirmer, notifier),
		notifier:   notifier,
		publisher:  publisher,
		eventCtx:   context.Background(),
	}
}

// Store exposes the read-only session snapshot surface.
func (a *App) Store() *session.Store {
	return a.store
}

// Bootstrap loads the room into the session: registers the user, reloads
// the room state, adopts the current question and refreshes its answers.
func (a *App) Bootstrap(ctx context.Context, roomID int64) error {
	user, err := a.api.UpsertUser(ctx, a.config.ExternalID, a.config.DisplayName)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	a.store.MergeUser(user.UserID, a.config.ExternalID, user.Name)

	state, err := a.api.GetRoom(ctx, roomID)
	if err != nil {
		return fmt.Errorf("fetch room: %w", err)
	}

	room := models.Room{
		ID:     state.RoomID,
		Code:   state.RoomCode,
		Status: models.RoomStatus(state.Status),
	}
	for _, p := range state.Players {
		room.Players = append(room.Players, models.Player{
			UserID:  p.UserID,
			Name:    p.Name,
			Credits: p.SuperCards,
		})
		if p.UserID == user.UserID {
			a.store.SetCredits(p.SuperCards)
		}
	}

	var round *models.Round
	if state.CurrentRound != nil {
		round = &models.Round{
			ID:       state.CurrentRound.ID,
			Question: state.CurrentRound.Question,
			Status:   models.RoundStatus(state.CurrentRound.Status),
		}
	}
	a.store.SetRoom(room, round)

	question, err := a.api.GetQuestion(ctx, roomID)
	if err != nil {
		return fmt.Errorf("fetch question: %w", err)
	}
	if question.RoundID != 0 {
		a.controller.SetRound(ctx, models.Round{
			ID:       question.RoundID,
			Question: question.Text,
			Status:   models.RoundStatus(question.Status),
		})
	}

	log.Info().
		Int64("room_id", roomID).
		Str("room_code", state.RoomCode).
		Msg("room session bootstrapped")
	return nil
}

// CreateRoom creates a room and bootstraps the session into it.
func (a *App) CreateRoom(ctx context.Context) (*roomapi.CreateRoomResponse, error) {
	resp, err := a.api.CreateRoom(ctx, a.config.ExternalID, a.config.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	if err := a.Bootstrap(ctx, resp.RoomID); err != nil {
		return nil, err
	}
	return resp, nil
}

// JoinRoom joins a room by its 6-character code and bootstraps the session.
func (a *App) JoinRoom(ctx context.Context, code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != roomCodeLen {
		return fmt.Errorf("room code must be %d characters", roomCodeLen)
	}

	resp, err := a.api.JoinRoom(ctx, code, a.config.ExternalID, a.config.DisplayName)
	if err != nil {
		return fmt.Errorf("join room: %w", err)
	}
	a.store.SetCredits(resp.SuperCards)
	return a.Bootstrap(ctx, resp.RoomID)
}

// Connect opens the push connection for the loaded room.
func (a *App) Connect(ctx context.Context) error {
	snap := a.store.Snapshot()
	if snap.Room.ID == 0 {
		return ErrNoRoom
	}
	a.eventCtx = ctx
	return a.transport.Connect(ctx, snap.Room.ID, a.HandleEvent)
}

// Close tears down the push connection.
func (a *App) Close() {
	a.transport.Close()
}

// HandleEvent routes a push event: sync controller first, presentation
// notices after, and the optional event mirror alongside.
func (a *App) HandleEvent(event realtime.Event) {
	ctx := a.eventCtx

	if a.publisher != nil && event.Type != realtime.EventTypeOpened && event.Type != realtime.EventTypeClosed {
		if err := a.publisher.PublishEvent(a.store.Snapshot().Room.ID, event); err != nil {
			log.Warn().Err(err).Str("type", string(event.Type)).Msg("failed to mirror room event")
		}
	}

	a.controller.HandleEvent(ctx, event)

	switch event.Type {
	case realtime.EventTypePlayerJoined:
		if payload, err := realtime.ParseEventPayload(event); err == nil {
			p := payload.(realtime.PlayerJoinedPayload)
			a.notifier.Notify(fmt.Sprintf("%s joined the room", p.Name))
		}
	case realtime.EventTypeRoundClosed:
		a.notifier.Notify("Round closed. Set a new question to start the next one.")
	case realtime.EventTypeClosed:
		a.notifier.Notify("Connection lost. Reconnect to keep playing.")
	}
}

// SetQuestion opens a new round. The returned round becomes current and its
// (empty) answer list is refreshed.
func (a *App) SetQuestion(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	if utf8.RuneCountInString(text) > maxQuestionLen {
		return fmt.Errorf("question is longer than %d characters", maxQuestionLen)
	}
	snap := a.store.Snapshot()
	if snap.Room.ID == 0 {
		return ErrNoRoom
	}

	resp, err := a.api.SetQuestion(ctx, snap.Room.ID, text)
	if err != nil {
		return fmt.Errorf("set question: %w", err)
	}
	a.controller.SetRound(ctx, models.Round{
		ID:       resp.RoundID,
		Question: resp.Text,
		Status:   models.RoundStatus(resp.Status),
	})
	return nil
}

// SubmitAnswer stores an anonymous answer for the current round. The
// answer_added push event drives the snapshot refresh.
func (a *App) SubmitAnswer(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	if utf8.RuneCountInString(text) > maxAnswerLen {
		return fmt.Errorf("answer is longer than %d characters", maxAnswerLen)
	}

	snap := a.store.Snapshot()
	if snap.Room.ID == 0 {
		return ErrNoRoom
	}
	if snap.Round == nil {
		return ErrNoRound
	}
	if !snap.Round.Active() {
		return ErrRoundInactive
	}

	if _, err := a.api.SubmitAnswer(ctx, snap.Room.ID, snap.Round.ID, snap.User.ID, text); err != nil {
		return fmt.Errorf("submit answer: %w", err)
	}
	return nil
}

// CloseRound ends answer collection for the current round.
func (a *App) CloseRound(ctx context.Context) error {
	snap := a.store.Snapshot()
	if snap.Room.ID == 0 {
		return ErrNoRoom
	}
	if snap.Round == nil {
		return ErrNoRound
	}
	if err := a.api.CloseRound(ctx, snap.Room.ID); err != nil {
		return fmt.Errorf("close round: %w", err)
	}
	a.store.SetRoundStatus(models.RoundStatusDiscussion)
	return nil
}

// RequestReveal runs the reveal workflow for one answer.
func (a *App) RequestReveal(ctx context.Context, answerID int64) error {
	return a.workflow.RequestReveal(ctx, answerID)
}

// Refresh forces an answer-list refresh for the current round.
func (a *App) Refresh(ctx context.Context) {
	a.controller.Refresh(ctx)
}
