package llms

// TurnRole describes who took a conversation turn.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
)

// Turn is a single turn taken in the conversation. In the user's turn the
// content is the prompt, in the assistant's turn it is the response.
type Turn struct {
	Role    TurnRole
	Content string
}
