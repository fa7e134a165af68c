package prompt

// ChatSystemPromptID identifies the conversational system prompt.
const ChatSystemPromptID = "chat_system"

func init() {
	DefaultRegistry().Register(&Prompt{
		ID:          ChatSystemPromptID,
		Content:     chatSystemPromptContent,
		Description: "System prompt for the session-scoped chat endpoint",
	})
}

const chatSystemPromptContent = `You are a helpful assistant. Answer all questions to the best of your ability.`

// ChatSystem returns the chat system prompt.
func ChatSystem() (string, error) {
	p, err := DefaultRegistry().Get(ChatSystemPromptID)
	if err != nil {
		return "", err
	}
	return p.Content, nil
}
