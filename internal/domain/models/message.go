package models

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FallbackReply is appended in place of a reply whenever the upstream call fails
const FallbackReply = "Sorry, there was an error processing your request."

// Message represents a single message in a flow's transcript
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Exchange is the pair of messages one submission appends to a transcript
type Exchange struct {
	User      Message `json:"user"`
	Assistant Message `json:"assistant"`
	// Failed is set when Assistant carries FallbackReply
	Failed bool `json:"failed"`
}

// Messages returns the exchange in transcript order
func (e Exchange) Messages() []Message {
	return []Message{e.User, e.Assistant}
}

// Transcript is the ordered, append-only message history of one flow
type Transcript struct {
	Messages []Message `json:"messages"`
}

// Append adds both halves of an exchange, user first
func (t *Transcript) Append(e Exchange) {
	t.Messages = append(t.Messages, e.User, e.Assistant)
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	return len(t.Messages)
}

// LatestReply returns the newest assistant message, if any
func (t *Transcript) LatestReply() (Message, bool) {
	for i := len(t.Messages) - 1; i >= 0; i-- {
		if t.Messages[i].Role == RoleAssistant {
			return t.Messages[i], true
		}
	}
	return Message{}, false
}

// Snapshot returns a copy safe to hand to callers
func (t *Transcript) Snapshot() []Message {
	out := make([]Message, len(t.Messages))
	copy(out, t.Messages)
	return out
}
