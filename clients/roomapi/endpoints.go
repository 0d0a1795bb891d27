package roomapi

import "fmt"

const (
	usersEndpoint    = "/users"
	roomsEndpoint    = "/rooms"
	joinRoomEndpoint = "/rooms/join"

	// RequestIDHeader carries the client-side idempotency key for
	// destructive submissions.
	RequestIDHeader = "X-Request-Id"
)

func roomEndpoint(roomID int64) string {
	return fmt.Sprintf("/rooms/%d", roomID)
}

func questionEndpoint(roomID int64) string {
	return fmt.Sprintf("/rooms/%d/question", roomID)
}

func closeRoundEndpoint(roomID int64) string {
	return fmt.Sprintf("/rooms/%d/round/close", roomID)
}

func answersEndpoint(roomID int64) string {
	return fmt.Sprintf("/rooms/%d/answers", roomID)
}

func revealEndpoint(roomID int64) string {
	return fmt.Sprintf("/rooms/%d/reveal", roomID)
}
