package session

import (
	"sync"

	"github.com/CrumleyG/dataklinik-bot/internal/model"
)

// HistoryLimit сколько последних реплик диалога храним на чат
const HistoryLimit = 30

// Manager управляет сессиями чатов
type Manager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session // chatID -> Session
}

// NewManager создаёт новый менеджер сессий
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[int64]*Session),
	}
}

// Get возвращает сессию чата, создавая пустую при первом обращении
func (m *Manager) Get(chatID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, exists := m.sessions[chatID]; exists {
		return s
	}
	s := &Session{ChatID: chatID}
	m.sessions[chatID] = s
	return s
}

// ResetForm очищает анкету и шаг диалога, историю реплик сохраняет:
// после успешной записи разговор продолжается с чистой анкетой
func (m *Manager) ResetForm(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, exists := m.sessions[chatID]; exists {
		s.Form = model.Form{}
		s.State = StateCollecting
		s.Offered = nil
		s.RescheduleID = ""
	}
}

// Clear полностью удаляет сессию чата
func (m *Manager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, chatID)
}

// AppendHistory добавляет реплику в историю чата, обрезая её до лимита
func (m *Manager) AppendHistory(chatID int64, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.sessions[chatID]
	if !exists {
		s = &Session{ChatID: chatID}
		m.sessions[chatID] = s
	}

	s.History = append(s.History, model.Message{Role: role, Content: content})
	if len(s.History) > HistoryLimit {
		s.History = s.History[len(s.History)-HistoryLimit:]
	}
}

// RecentHistory возвращает копию последних n реплик чата
func (m *Manager) RecentHistory(chatID int64, n int) []model.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, exists := m.sessions[chatID]
	if !exists || n <= 0 {
		return nil
	}

	start := 0
	if len(s.History) > n {
		start = len(s.History) - n
	}

	recent := make([]model.Message, len(s.History)-start)
	copy(recent, s.History[start:])
	return recent
}
