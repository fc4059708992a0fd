package domain

type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatTurn is one entry in an assistant transcript.
type ChatTurn struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}
