package chain

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"ragserve/internal/extract"
	"ragserve/internal/history"
	"ragserve/internal/llm"
	"ragserve/internal/prompt"
)

// ChatFunc answers one conversational turn for a session.
type ChatFunc func(ctx context.Context, sessionID, humanInput string) (string, error)

// NewChat builds the conversational chain. Each call loads the
// session transcript, generates a reply with the full context, and
// appends both sides of the exchange back to the store.
func NewChat(client llm.Client, store *history.Store, log zerolog.Logger) ChatFunc {
	return func(ctx context.Context, sessionID, humanInput string) (string, error) {
		turns, err := store.GetHistory(sessionID)
		if err != nil {
			return "", err
		}

		system, err := prompt.ChatSystem()
		if err != nil {
			return "", err
		}

		messages := make([]llm.Message, 0, len(turns)+2)
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: system})
		for _, turn := range turns {
			role := llm.RoleHuman
			if turn.Role == history.RoleAssistant {
				role = llm.RoleAssistant
			}
			messages = append(messages, llm.Message{Role: role, Content: turn.Content})
		}
		messages = append(messages, llm.Message{Role: llm.RoleHuman, Content: humanInput})

		output, err := client.Generate(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("generate reply: %w", err)
		}
		answer := extract.ExtractChatAnswer(output)

		if err := store.Append(sessionID, history.Turn{Role: history.RoleHuman, Content: humanInput}); err != nil {
			return "", err
		}
		if err := store.Append(sessionID, history.Turn{Role: history.RoleAssistant, Content: answer}); err != nil {
			return "", err
		}

		log.Debug().Str("session", sessionID).Int("turns", len(turns)).Msg("chat chain completed")
		return answer, nil
	}
}
