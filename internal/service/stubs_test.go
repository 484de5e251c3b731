package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/CrumleyG/dataklinik-bot/internal/model"
)

// fakeStore хранилище записей в памяти для тестов
type fakeStore struct {
	mu        sync.Mutex
	bookings  []*model.Booking
	appendErr error
	allErr    error
	seq       int
}

func (f *fakeStore) Append(ctx context.Context, booking *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.appendErr != nil {
		return f.appendErr
	}

	f.seq++
	stored := *booking
	stored.CreatedAt = time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.seq) * time.Minute)
	f.bookings = append(f.bookings, &stored)
	booking.CreatedAt = stored.CreatedAt
	return nil
}

func (f *fakeStore) All(ctx context.Context) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.allErr != nil {
		return nil, f.allErr
	}

	out := make([]*model.Booking, len(f.bookings))
	copy(out, f.bookings)
	return out, nil
}

func (f *fakeStore) ByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	all, err := f.All(ctx)
	if err != nil {
		return nil, err
	}
	var matched []*model.Booking
	for _, b := range all {
		if b.Date == date {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

func (f *fakeStore) LastByChat(ctx context.Context, chatID int64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var last *model.Booking
	for _, b := range f.bookings {
		if b.ChatID == chatID && (last == nil || b.CreatedAt.After(last.CreatedAt)) {
			last = b
		}
	}
	return last, nil
}

func (f *fakeStore) UpdateTime(ctx context.Context, id string, newTime string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.bookings {
		if b.ID == id {
			b.Time = newTime
			return nil
		}
	}
	return errors.New("booking not found")
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, b := range f.bookings {
		if b.ID == id {
			f.bookings = append(f.bookings[:i], f.bookings[i+1:]...)
			return nil
		}
	}
	return errors.New("booking not found")
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bookings)
}

// fakeOracle отдаёт фиксированный ответ или ошибку
type fakeOracle struct {
	reply string
	err   error
	calls int
}

func (f *fakeOracle) Reply(ctx context.Context, form model.Form, history []model.Message) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

// fakeStaff копит уведомления персоналу
type fakeStaff struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeStaff) NotifyStaff(ctx context.Context, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
}

func (f *fakeStaff) contains(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}
