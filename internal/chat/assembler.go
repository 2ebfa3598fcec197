package chat

import "fmt"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"

	SenderUser = "user"
	SenderAI   = "ai"

	DefaultName        = "AI Companion"
	DefaultPersonality = "friendly, caring, and engaging"

	// FallbackReply is returned when the completion carries no content.
	FallbackReply = "I apologize, but I could not generate a response. Please try again."
)

const systemPreamble = `You are a caring, intelligent AI companion who creates meaningful connections. Your personality is warm, empathetic, and engaging. You:

- Remember context from previous messages
- Show genuine interest in the user
- Express emotions appropriately
- Ask thoughtful questions
- Be supportive and encouraging
- Keep conversations engaging and natural
- Use emojis occasionally to express emotion
- Be friendly but not overly familiar unless appropriate

Always respond in a way that feels personal and authentic. Create a genuine connection.`

// Turn is one transcript entry as sent by the client.
type Turn struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

type PromptMessage struct {
	Role    string
	Content string
}

// Completion is the provider-neutral shape of a chat completion result.
type Completion struct {
	Choices []string
}

// SystemPrompt returns the persona preamble for a character.
func SystemPrompt(name, personality string) string {
	if name == "" {
		name = DefaultName
	}
	if personality == "" {
		personality = DefaultPersonality
	}
	return fmt.Sprintf("%s\n\nYour name is %s. Your personality is: %s", systemPreamble, name, personality)
}

// BuildPrompt prefixes the whole transcript with the system prompt. The
// transcript is neither truncated nor reordered.
func BuildPrompt(transcript []Turn, name, personality string) []PromptMessage {
	out := make([]PromptMessage, 0, len(transcript)+1)
	out = append(out, PromptMessage{Role: RoleSystem, Content: SystemPrompt(name, personality)})
	for _, t := range transcript {
		role := RoleUser
		if t.Sender == SenderAI {
			role = RoleAssistant
		}
		out = append(out, PromptMessage{Role: role, Content: t.Content})
	}
	return out
}

// ExtractReply returns the first choice, or FallbackReply when there is none.
func ExtractReply(c *Completion) string {
	if c == nil || len(c.Choices) == 0 || c.Choices[0] == "" {
		return FallbackReply
	}
	return c.Choices[0]
}
