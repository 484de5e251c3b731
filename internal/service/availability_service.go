package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/CrumleyG/dataklinik-bot/internal/catalog"
)

// AvailabilityService считает свободные слоты по каталогу и текущим
// записям. Хранилище сканируется целиком на каждый запрос.
type AvailabilityService struct {
	catalog *catalog.Catalog
	store   BookingStore
	logger  *zap.Logger
}

func NewAvailabilityService(cat *catalog.Catalog, store BookingStore, logger *zap.Logger) *AvailabilityService {
	return &AvailabilityService{
		catalog: cat,
		store:   store,
		logger:  logger,
	}
}

// FreeSlots возвращает слоты услуги, не занятые на указанную дату.
// Порядок слотов повторяет каталог.
func (s *AvailabilityService) FreeSlots(ctx context.Context, serviceName, date string) ([]string, error) {
	svc, ok := s.catalog.FindByText(serviceName)
	if !ok {
		return nil, fmt.Errorf("unknown service %q", serviceName)
	}

	bookings, err := s.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	taken := make(map[string]bool)
	for _, b := range bookings {
		if strings.EqualFold(b.Service, svc.Name) && b.Date == date {
			taken[b.Time] = true
		}
	}

	var free []string
	for _, slot := range svc.Slots {
		if !taken[slot] {
			free = append(free, slot)
		}
	}

	s.logger.Debug("Computed free slots",
		zap.String("service", svc.Name),
		zap.String("date", date),
		zap.Int("free", len(free)),
		zap.Int("taken", len(taken)))

	return free, nil
}

// IsTaken проверяет, занят ли конкретный слот услуги на дату
func (s *AvailabilityService) IsTaken(ctx context.Context, serviceName, date, slotTime string) (bool, error) {
	bookings, err := s.store.All(ctx)
	if err != nil {
		return false, fmt.Errorf("load bookings: %w", err)
	}

	for _, b := range bookings {
		if strings.EqualFold(b.Service, serviceName) && b.Date == date && b.Time == slotTime {
			return true, nil
		}
	}
	return false, nil
}
