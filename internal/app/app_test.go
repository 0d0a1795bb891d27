package app

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mcdev12/partyround/clients/roomapi"
	"github.com/mcdev12/partyround/internal/models"
	"github.com/mcdev12/partyround/internal/realtime"
	"github.com/mcdev12/partyround/internal/session"
)

type fakeRoomAPI struct {
	mu sync.Mutex

	roomState *roomapi.RoomState
	question  *roomapi.QuestionResponse
	answers   []models.Answer

	upsertedName   string
	joinedCode     string
	questionSet    string
	submittedText  string
	closedRoom     int64
	answerFetches  int
	revealRequests int
}

func (f *fakeRoomAPI) UpsertUser(ctx context.Context, externalID, name string) (*roomapi.UpsertUserResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upsertedName = name
	return &roomapi.UpsertUserResponse{UserID: 7, Name: name}, nil
}

func (f *fakeRoomAPI) CreateRoom(ctx context.Context, externalID, name string) (*roomapi.CreateRoomResponse, error) {
	return &roomapi.CreateRoomResponse{RoomID: 1, RoomCode: "XK2P9A"}, nil
}

func (f *fakeRoomAPI) JoinRoom(ctx context.Context, code, externalID, name string) (*roomapi.JoinRoomResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joinedCode = code
	return &roomapi.JoinRoomResponse{RoomID: 1, PlayerID: 2, SuperCards: 3}, nil
}

func (f *fakeRoomAPI) GetRoom(ctx context.Context, roomID int64) (*roomapi.RoomState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roomState, nil
}

func (f *fakeRoomAPI) GetQuestion(ctx context.Context, roomID int64) (*roomapi.QuestionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.question, nil
}

func (f *fakeRoomAPI) SetQuestion(ctx context.Context, roomID int64, text string) (*roomapi.QuestionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questionSet = text
	return &roomapi.QuestionResponse{RoundID: 20, Text: text, Status: string(models.RoundStatusCollecting)}, nil
}

func (f *fakeRoomAPI) SubmitAnswer(ctx context.Context, roomID, roundID, authorID int64, text string) (*roomapi.SubmitAnswerResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submittedText = text
	return &roomapi.SubmitAnswerResponse{AnswerID: 1}, nil
}

func (f *fakeRoomAPI) CloseRound(ctx context.Context, roomID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closedRoom = roomID
	return nil
}

func (f *fakeRoomAPI) ListAnswers(ctx context.Context, roomID, roundID int64) ([]models.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answerFetches++
	return f.answers, nil
}

func (f *fakeRoomAPI) SubmitReveal(ctx context.Context, roomID, roundID, answerID, actorID int64, requestID string) (*roomapi.RevealResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revealRequests++
	return &roomapi.RevealResponse{AnswerID: answerID, AuthorDisplay: "Alex"}, nil
}

func (f *fakeRoomAPI) fetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.answerFetches
}

type fakeTransport struct {
	connectedRoom int64
	handler       realtime.Handler
	closed        bool
}

func (f *fakeTransport) Connect(ctx context.Context, roomID int64, onEvent realtime.Handler) error {
	f.connectedRoom = roomID
	f.handler = onEvent
	return nil
}

func (f *fakeTransport) Close() { f.closed = true }

type fakeUI struct {
	mu       sync.Mutex
	messages []string
	confirm  bool
}

func (f *fakeUI) Notify(message string) {
	f.mu.Lock()
	f.messages = append(f.messages, message)
	f.mu.Unlock()
}

func (f *fakeUI) ConfirmReveal(ctx context.Context, answer models.Answer) (bool, error) {
	return f.confirm, nil
}

func (f *fakeUI) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *recordingPublisher) PublishEvent(roomID int64, event realtime.Event) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	return nil
}

func (p *recordingPublisher) published() []realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]realtime.Event(nil), p.events...)
}

func newTestAPI() *fakeRoomAPI {
	return &fakeRoomAPI{
		roomState: &roomapi.RoomState{
			RoomID:   1,
			RoomCode: "XK2P9A",
			Status:   string(models.RoomStatusActive),
			Players: []roomapi.PlayerState{
				{PlayerID: 2, UserID: 7, Name: "Ann", SuperCards: 2},
				{PlayerID: 3, UserID: 8, Name: "Bea", SuperCards: 3},
			},
			CurrentRound: &roomapi.RoundState{ID: 10, Question: "favorite snack?", Status: string(models.RoundStatusCollecting)},
		},
		question: &roomapi.QuestionResponse{RoundID: 10, Text: "favorite snack?", Status: string(models.RoundStatusCollecting)},
		answers:  []models.Answer{{ID: 1, Text: "chips"}},
	}
}

func newTestApp(t *testing.T, api *fakeRoomAPI, publisher EventPublisher) (*App, *session.Store, *fakeTransport, *fakeUI) {
	t.Helper()
	store := session.NewStore()
	transport := &fakeTransport{}
	ui := &fakeUI{confirm: true}
	engine := New(Config{ExternalID: "ext-7", DisplayName: "Ann"}, api, store, transport, ui, ui, publisher)
	return engine, store, transport, ui
}

func TestBootstrapLoadsRoomAndCredits(t *testing.T) {
	api := newTestAPI()
	engine, store, _, _ := newTestApp(t, api, nil)

	require.NoError(t, engine.Bootstrap(context.Background(), 1))

	snap := store.Snapshot()
	require.Equal(t, int64(7), snap.User.ID)
	require.Equal(t, "Ann", snap.User.Name)
	require.Equal(t, 2, snap.User.Credits)
	require.Equal(t, "XK2P9A", snap.Room.Code)
	require.Len(t, snap.Room.Players, 2)
	require.NotNil(t, snap.Round)
	require.Equal(t, int64(10), snap.Round.ID)

	// Adopting the current question refreshes its answer list.
	require.Eventually(t, func() bool {
		return len(store.Snapshot().Answers) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestBootstrapWithoutQuestion(t *testing.T) {
	api := newTestAPI()
	api.roomState.CurrentRound = nil
	api.question = &roomapi.QuestionResponse{}
	engine, store, _, _ := newTestApp(t, api, nil)

	require.NoError(t, engine.Bootstrap(context.Background(), 1))

	snap := store.Snapshot()
	require.Nil(t, snap.Round)
	require.Zero(t, api.fetches())
}

func TestJoinRoomNormalizesCode(t *testing.T) {
	api := newTestAPI()
	engine, _, _, _ := newTestApp(t, api, nil)

	require.NoError(t, engine.JoinRoom(context.Background(), "  xk2p9a "))
	require.Equal(t, "XK2P9A", api.joinedCode)
}

func TestJoinRoomRejectsBadCode(t *testing.T) {
	api := newTestAPI()
	engine, _, _, _ := newTestApp(t, api, nil)

	err := engine.JoinRoom(context.Background(), "ABC")
	require.Error(t, err)
	require.Contains(t, err.Error(), "6 characters")
	require.Empty(t, api.joinedCode)
}

func TestConnectRequiresLoadedRoom(t *testing.T) {
	engine, _, transport, _ := newTestApp(t, newTestAPI(), nil)

	require.ErrorIs(t, engine.Connect(context.Background()), ErrNoRoom)
	require.Zero(t, transport.connectedRoom)
}

func TestConnectUsesLoadedRoom(t *testing.T) {
	engine, _, transport, _ := newTestApp(t, newTestAPI(), nil)
	require.NoError(t, engine.Bootstrap(context.Background(), 1))

	require.NoError(t, engine.Connect(context.Background()))
	require.Equal(t, int64(1), transport.connectedRoom)
	require.NotNil(t, transport.handler)
}

func TestSetQuestionValidation(t *testing.T) {
	engine, _, _, _ := newTestApp(t, newTestAPI(), nil)
	ctx := context.Background()

	require.ErrorIs(t, engine.SetQuestion(ctx, "   "), ErrEmptyText)

	require.NoError(t, engine.Bootstrap(ctx, 1))
	err := engine.SetQuestion(ctx, strings.Repeat("x", maxQuestionLen+1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "200")
}

func TestSetQuestionRequiresRoom(t *testing.T) {
	engine, _, _, _ := newTestApp(t, newTestAPI(), nil)
	require.ErrorIs(t, engine.SetQuestion(context.Background(), "new question"), ErrNoRoom)
}

func TestSetQuestionReplacesRound(t *testing.T) {
	api := newTestAPI()
	engine, store, _, _ := newTestApp(t, api, nil)
	ctx := context.Background()
	require.NoError(t, engine.Bootstrap(ctx, 1))

	require.NoError(t, engine.SetQuestion(ctx, "best movie?"))
	require.Equal(t, "best movie?", api.questionSet)

	snap := store.Snapshot()
	require.Equal(t, int64(20), snap.Round.ID)
	require.Equal(t, "best movie?", snap.Round.Question)
}

func TestSubmitAnswerPreconditions(t *testing.T) {
	engine, store, _, _ := newTestApp(t, newTestAPI(), nil)
	ctx := context.Background()

	require.ErrorIs(t, engine.SubmitAnswer(ctx, "   "), ErrEmptyText)
	require.ErrorIs(t, engine.SubmitAnswer(ctx, "chips"), ErrNoRoom)

	store.SetRoom(models.Room{ID: 1, Code: "XK2P9A", Status: models.RoomStatusActive}, nil)
	require.ErrorIs(t, engine.SubmitAnswer(ctx, "chips"), ErrNoRound)

	store.SetRound(models.Round{ID: 10, Question: "q", Status: models.RoundStatusDiscussion})
	require.ErrorIs(t, engine.SubmitAnswer(ctx, "chips"), ErrRoundInactive)
}

func TestSubmitAnswerWhenCollecting(t *testing.T) {
	api := newTestAPI()
	engine, _, _, _ := newTestApp(t, api, nil)
	ctx := context.Background()
	require.NoError(t, engine.Bootstrap(ctx, 1))

	require.NoError(t, engine.SubmitAnswer(ctx, "  chips  "))
	require.Equal(t, "chips", api.submittedText)
}

func TestCloseRoundMovesToDiscussion(t *testing.T) {
	api := newTestAPI()
	engine, store, _, _ := newTestApp(t, api, nil)
	ctx := context.Background()
	require.NoError(t, engine.Bootstrap(ctx, 1))

	require.NoError(t, engine.CloseRound(ctx))
	require.Equal(t, int64(1), api.closedRoom)

	round, ok := store.Round()
	require.True(t, ok)
	require.Equal(t, models.RoundStatusDiscussion, round.Status)
}

func TestPlayerJoinedEventNotifies(t *testing.T) {
	engine, _, _, ui := newTestApp(t, newTestAPI(), nil)
	require.NoError(t, engine.Bootstrap(context.Background(), 1))

	payload, err := json.Marshal(realtime.PlayerJoinedPayload{UserID: 9, Name: "Cal"})
	require.NoError(t, err)
	engine.HandleEvent(realtime.Event{Type: realtime.EventTypePlayerJoined, Payload: payload})

	require.Equal(t, "Cal joined the room", ui.last())
}

func TestEventsMirroredExceptLifecycle(t *testing.T) {
	publisher := &recordingPublisher{}
	engine, _, _, _ := newTestApp(t, newTestAPI(), publisher)
	require.NoError(t, engine.Bootstrap(context.Background(), 1))

	engine.HandleEvent(realtime.Event{Type: realtime.EventTypeOpened})
	engine.HandleEvent(realtime.Event{Type: realtime.EventTypeRoundClosed})
	engine.HandleEvent(realtime.Event{Type: realtime.EventTypeClosed})

	events := publisher.published()
	require.Len(t, events, 1)
	require.Equal(t, realtime.EventTypeRoundClosed, events[0].Type)
}
