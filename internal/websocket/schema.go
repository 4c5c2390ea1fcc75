package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing      Action = "ping"
	ActionSubscribe Action = "subscribe"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventTick  Event = "tick"
	EventPong  Event = "pong"
	EventEnded Event = "ended"
)

// MonitorTick is the periodic snapshot of a monitored session pushed to
// officer clients.
type MonitorTick struct {
	Event            Event  `json:"event"`
	SessionID        string `json:"session_id"`
	Status           string `json:"status"`
	RemainingSeconds int    `json:"remaining_seconds"`
	AnsweredCount    int    `json:"answered_count"`
	TotalQuestions   int    `json:"total_questions"`
	BookmarkedCount  int    `json:"bookmarked_count"`
}

// EndedResponse is sent once when the monitored session leaves the active
// state, after which the server closes the stream.
type EndedResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
