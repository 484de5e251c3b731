package service

import (
	"context"

	"github.com/CrumleyG/dataklinik-bot/internal/model"
)

// BookingStore хранилище записей. Единственный источник истины:
// память процесса ничего не кеширует между сообщениями.
type BookingStore interface {
	// Append добавляет подтверждённую запись
	Append(ctx context.Context, booking *model.Booking) error
	// All возвращает все активные записи
	All(ctx context.Context) ([]*model.Booking, error)
	// ByDate возвращает записи на указанную дату (ДД.ММ.ГГГГ)
	ByDate(ctx context.Context, date string) ([]*model.Booking, error)
	// LastByChat возвращает последнюю запись чата, nil если записей нет
	LastByChat(ctx context.Context, chatID int64) (*model.Booking, error)
	// UpdateTime меняет время записи на месте
	UpdateTime(ctx context.Context, id string, newTime string) error
	// Delete удаляет запись
	Delete(ctx context.Context, id string) error
}
