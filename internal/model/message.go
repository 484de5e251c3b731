package model

// Роли реплик в истории диалога
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message одна реплика истории диалога, уходит в контекст LLM
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
