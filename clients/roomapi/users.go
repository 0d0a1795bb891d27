package roomapi

import "context"

type upsertUserRequest struct {
	ExternalID string `json:"tg_user_id"`
	Name       string `json:"name"`
}

// UpsertUserResponse is the server's view of the registered user.
type UpsertUserResponse struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// UpsertUser registers the user identified by externalID, or updates its
// display name.
func (c *Client) UpsertUser(ctx context.Context, externalID, name string) (*UpsertUserResponse, error) {
	var resp UpsertUserResponse
	if err := c.post(ctx, usersEndpoint, upsertUserRequest{ExternalID: externalID, Name: name}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
