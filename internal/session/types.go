package session

import "github.com/CrumleyG/dataklinik-bot/internal/model"

// State текущее состояние диалога записи
type State string

const (
	StateCollecting       State = ""                  // Собираем поля анкеты
	StateChoosingSlot     State = "choosing_slot"     // Клиенту показан список свободных слотов
	StateReschedulingSlot State = "rescheduling_slot" // Клиент выбирает новое время для существующей записи
)

// Session состояние одного чата: анкета, шаг диалога и история реплик.
// Живёт только в памяти процесса, источником истины по записям
// остаётся хранилище.
type Session struct {
	ChatID       int64
	State        State
	Form         model.Form
	Offered      []string        // Слоты, предложенные на последнем шаге выбора
	RescheduleID string          // Запись, для которой выбирается новое время
	History      []model.Message // Последние реплики, уходят в контекст LLM
}
