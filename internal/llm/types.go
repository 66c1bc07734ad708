package llm

// Role identifies a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a completion prompt.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest carries the parameters for one completion call.
// JSONMode asks the backend to emit a single JSON object; callers that set
// it still validate the output, since not every backend enforces it.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// CompletionResponse is the result of a completion call. FinishReason lets
// callers distinguish truncated output from a complete answer.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}
