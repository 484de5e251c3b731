package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/CrumleyG/dataklinik-bot/internal/extract"
	"github.com/CrumleyG/dataklinik-bot/internal/service"
)

// ReminderSender доставляет напоминание в чат клиента
type ReminderSender interface {
	Send(ctx context.Context, chatID int64, text string)
}

// Scheduler ежедневная рассылка напоминаний о записях на сегодня.
// Читает хранилище тем же путём, что и живые сессии, и ничего
// в нём не меняет.
type Scheduler struct {
	cron   gocron.Scheduler
	store  service.BookingStore
	sender ReminderSender
	logger *zap.Logger
}

// NewScheduler создаёт планировщик с задачей на hour:00 каждый день
func NewScheduler(store service.BookingStore, sender ReminderSender, hour int, logger *zap.Logger) (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	s := &Scheduler{
		cron:   cron,
		store:  store,
		sender: sender,
		logger: logger,
	}

	_, err = cron.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(hour), 0, 0))),
		gocron.NewTask(s.sendReminders),
	)
	if err != nil {
		return nil, fmt.Errorf("register reminder job: %w", err)
	}

	return s, nil
}

// Start запускает фоновые задачи
func (s *Scheduler) Start() {
	s.logger.Info("Starting reminder scheduler")
	s.cron.Start()
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler")
	if err := s.cron.Shutdown(); err != nil {
		s.logger.Error("Failed to shut down scheduler", zap.Error(err))
	}
}

// sendReminders шлёт по одному напоминанию на каждую сегодняшнюю запись
func (s *Scheduler) sendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	today := time.Now().Format(extract.DateLayout)

	bookings, err := s.store.ByDate(ctx, today)
	if err != nil {
		s.logger.Error("Failed to load bookings for reminders",
			zap.String("date", today),
			zap.Error(err))
		return
	}

	s.logger.Info("Sending reminders",
		zap.String("date", today),
		zap.Int("count", len(bookings)))

	for _, b := range bookings {
		text := fmt.Sprintf("Напоминаем: сегодня в %s вы записаны на %s. Ждём вас!", b.Time, b.Service)
		s.sender.Send(ctx, b.ChatID, text)
	}
}
