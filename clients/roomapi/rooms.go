package roomapi

import "context"

type joinRequest struct {
	RoomCode   string `json:"room_code"`
	ExternalID string `json:"tg_user_id"`
	Name       string `json:"name"`
}

// CreateRoomResponse identifies a freshly created room.
type CreateRoomResponse struct {
	RoomID   int64  `json:"room_id"`
	RoomCode string `json:"room_code"`
}

// JoinRoomResponse is the membership created by joining a room.
type JoinRoomResponse struct {
	RoomID     int64 `json:"room_id"`
	PlayerID   int64 `json:"player_id"`
	SuperCards int   `json:"super_cards"`
}

// PlayerState is one room member in a room state response.
type PlayerState struct {
	PlayerID   int64  `json:"player_id"`
	UserID     int64  `json:"user_id"`
	Name       string `json:"name"`
	SuperCards int    `json:"super_cards"`
}

// RoundState is the current round in a room state response.
type RoundState struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Status   string `json:"status"`
}

// RoomState is the full room view returned by a room reload.
type RoomState struct {
	RoomID       int64         `json:"room_id"`
	RoomCode     string        `json:"room_code"`
	Status       string        `json:"status"`
	Players      []PlayerState `json:"players"`
	CurrentRound *RoundState   `json:"current_round"`
}

// QuestionResponse is the current question of a room. RoundID is zero when
// no question has been set yet.
type QuestionResponse struct {
	RoundID int64  `json:"round_id"`
	Text    string `json:"text"`
	Status  string `json:"status"`
}

type setQuestionRequest struct {
	Text string `json:"text"`
}

// CreateRoom creates a room owned by the given user; the owner joins
// automatically server-side.
func (c *Client) CreateRoom(ctx context.Context, externalID, name string) (*CreateRoomResponse, error) {
	var resp CreateRoomResponse
	if err := c.post(ctx, roomsEndpoint, joinRequest{ExternalID: externalID, Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// JoinRoom joins the room identified by its 6-character code.
func (c *Client) JoinRoom(ctx context.Context, code, externalID, name string) (*JoinRoomResponse, error) {
	var resp JoinRoomResponse
	if err := c.post(ctx, joinRoomEndpoint, joinRequest{RoomCode: code, ExternalID: externalID, Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRoom fetches the full room state: code, status, players, current round.
func (c *Client) GetRoom(ctx context.Context, roomID int64) (*RoomState, error) {
	var resp RoomState
	if err := c.get(ctx, roomEndpoint(roomID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetQuestion fetches the room's current question.
func (c *Client) GetQuestion(ctx context.Context, roomID int64) (*QuestionResponse, error) {
	var resp QuestionResponse
	if err := c.get(ctx, questionEndpoint(roomID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetQuestion opens a new round with the given question text.
func (c *Client) SetQuestion(ctx context.Context, roomID int64, text string) (*QuestionResponse, error) {
	var resp QuestionResponse
	if err := c.post(ctx, questionEndpoint(roomID), setQuestionRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CloseRound ends answer collection for the current round.
func (c *Client) CloseRound(ctx context.Context, roomID int64) error {
	return c.post(ctx, closeRoundEndpoint(roomID), nil, nil)
}
