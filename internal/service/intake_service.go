package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CrumleyG/dataklinik-bot/internal/catalog"
	"github.com/CrumleyG/dataklinik-bot/internal/extract"
	"github.com/CrumleyG/dataklinik-bot/internal/model"
	"github.com/CrumleyG/dataklinik-bot/internal/session"
)

// OracleHistoryLimit сколько последних реплик уходит в контекст LLM
const OracleHistoryLimit = 10

// Oracle генерирует ответ, когда детерминированных правил не хватило.
// Его ответ никогда не прогоняется через экстрактор.
type Oracle interface {
	Reply(ctx context.Context, form model.Form, history []model.Message) (string, error)
}

// StaffNotifier доставляет служебные уведомления персоналу клиники
type StaffNotifier interface {
	NotifyStaff(ctx context.Context, text string)
}

const (
	msgStoreError  = "⚠️ Не получилось сохранить запись. Попробуйте ещё раз чуть позже."
	msgOracleError = "Извините, я на секунду отвлеклась. Повторите, пожалуйста, ваш вопрос."
	msgNoBooking   = "У вас нет активной записи."
)

// IntakeService машина состояний приёма: ведёт анкету по сообщениям
// клиента, проверяет слоты и фиксирует запись, когда анкета полна
type IntakeService struct {
	sessions     *session.Manager
	extractor    *extract.Extractor
	catalog      *catalog.Catalog
	availability *AvailabilityService
	store        BookingStore
	oracle       Oracle
	staff        StaffNotifier
	logger       *zap.Logger
}

func NewIntakeService(
	sessions *session.Manager,
	extractor *extract.Extractor,
	cat *catalog.Catalog,
	availability *AvailabilityService,
	store BookingStore,
	oracle Oracle,
	staff StaffNotifier,
	logger *zap.Logger,
) *IntakeService {
	return &IntakeService{
		sessions:     sessions,
		extractor:    extractor,
		catalog:      cat,
		availability: availability,
		store:        store,
		oracle:       oracle,
		staff:        staff,
		logger:       logger,
	}
}

// HandleMessage обрабатывает одно входящее сообщение и возвращает
// ответы бота в порядке отправки
func (s *IntakeService) HandleMessage(ctx context.Context, chatID int64, text string) []string {
	sess := s.sessions.Get(chatID)
	s.sessions.AppendHistory(chatID, model.RoleUser, text)

	replies := s.processTurn(ctx, sess, text)

	for _, reply := range replies {
		s.sessions.AppendHistory(chatID, model.RoleAssistant, reply)
	}
	return replies
}

// ResetDialog сбрасывает анкету и шаг диалога чата (команда /cancel)
func (s *IntakeService) ResetDialog(chatID int64) {
	s.sessions.ResetForm(chatID)
}

func (s *IntakeService) processTurn(ctx context.Context, sess *session.Session, text string) []string {
	// Намерения переноса и отмены важнее любого текущего шага диалога
	if hasRescheduleIntent(text) {
		return s.startReschedule(ctx, sess)
	}
	if hasCancelIntent(text) {
		return s.cancelBooking(ctx, sess)
	}

	switch sess.State {
	case session.StateChoosingSlot:
		return s.chooseSlot(ctx, sess, text)
	case session.StateReschedulingSlot:
		return s.chooseRescheduleSlot(ctx, sess, text)
	}

	update := s.extractor.Extract(text)
	if update.Empty() {
		// Полная анкета с пустым апдейтом означает повторную попытку
		// после ошибки сохранения, гоним её через обычный путь фиксации
		if sess.Form.Complete() {
			return s.advance(ctx, sess)
		}
		// Детерминированных правил нет: вопрос о ценах, услугах или
		// просто свободный разговор. Отдаём реплику LLM.
		return []string{s.oracleReply(ctx, sess)}
	}

	sess.Form.Merge(update)
	s.logger.Info("Form updated",
		zap.Int64("chat_id", sess.ChatID),
		zap.Strings("missing", sess.Form.Missing()))

	return s.advance(ctx, sess)
}

// advance делает следующий детерминированный шаг по анкете
func (s *IntakeService) advance(ctx context.Context, sess *session.Session) []string {
	form := &sess.Form

	// Услуга и дата известны, времени нет: предлагаем свободные слоты
	if form.Service != "" && form.Date != "" && form.Time == "" {
		return s.offerSlots(ctx, sess)
	}

	if missing := form.Missing(); len(missing) > 0 {
		return []string{s.promptFor(missing[0])}
	}

	return s.commitBooking(ctx, sess)
}

// offerSlots показывает нумерованный список свободных слотов
func (s *IntakeService) offerSlots(ctx context.Context, sess *session.Session) []string {
	free, err := s.availability.FreeSlots(ctx, sess.Form.Service, sess.Form.Date)
	if err != nil {
		s.logger.Error("Failed to compute free slots",
			zap.Int64("chat_id", sess.ChatID),
			zap.Error(err))
		return []string{msgStoreError}
	}

	if len(free) == 0 {
		// Дату сбрасываем, чтобы клиент назвал другую
		date := sess.Form.Date
		sess.Form.Date = ""
		return []string{fmt.Sprintf("На %s свободных окон по услуге «%s» не осталось. Назовите, пожалуйста, другую дату.", date, sess.Form.Service)}
	}

	sess.Offered = free
	sess.State = session.StateChoosingSlot

	return []string{fmt.Sprintf("Свободное время на %s, услуга «%s»:\n%s\nОтправьте номер варианта или само время.",
		sess.Form.Date, sess.Form.Service, formatSlotList(free))}
}

// chooseSlot обрабатывает выбор слота при первичной записи
func (s *IntakeService) chooseSlot(ctx context.Context, sess *session.Session, text string) []string {
	chosen, ok := pickSlot(text, sess.Offered)
	if !ok {
		return []string{fmt.Sprintf("Не поняла выбор. Отправьте номер из списка:\n%s", formatSlotList(sess.Offered))}
	}

	sess.Form.Time = chosen
	sess.State = session.StateCollecting
	sess.Offered = nil

	return s.advance(ctx, sess)
}

// commitBooking повторно проверяет слот и фиксирует запись
func (s *IntakeService) commitBooking(ctx context.Context, sess *session.Session) []string {
	form := &sess.Form

	// Слот могли занять из другого чата, пока клиент отвечал
	taken, err := s.availability.IsTaken(ctx, form.Service, form.Date, form.Time)
	if err != nil {
		s.logger.Error("Failed to re-check slot",
			zap.Int64("chat_id", sess.ChatID),
			zap.Error(err))
		return []string{msgStoreError}
	}
	if taken {
		lost := form.Time
		form.Time = ""
		s.logger.Warn("Slot taken between offer and commit",
			zap.Int64("chat_id", sess.ChatID),
			zap.String("slot", lost))
		replies := []string{fmt.Sprintf("К сожалению, время %s уже заняли. Давайте выберем другое.", lost)}
		return append(replies, s.offerSlots(ctx, sess)...)
	}

	booking := &model.Booking{
		ID:        uuid.NewString(),
		ChatID:    sess.ChatID,
		Name:      form.Name,
		Phone:     form.Phone,
		Service:   form.Service,
		Date:      form.Date,
		Time:      form.Time,
		Status:    model.StatusNew,
		CreatedAt: time.Now(),
	}

	if err := s.store.Append(ctx, booking); err != nil {
		// Анкету не трогаем: клиент может просто повторить попытку
		s.logger.Error("Failed to persist booking",
			zap.Int64("chat_id", sess.ChatID),
			zap.Error(err))
		return []string{msgStoreError}
	}

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.Int64("chat_id", booking.ChatID),
		zap.String("service", booking.Service),
		zap.String("date", booking.Date),
		zap.String("time", booking.Time))

	s.staff.NotifyStaff(ctx, fmt.Sprintf("🆕 Новая запись: %s, «%s», %s %s, тел. %s",
		booking.Name, booking.Service, booking.Date, booking.Time, booking.Phone))

	confirmation := fmt.Sprintf("✅ Записала вас, %s, на %s в %s %s. Спасибо! До встречи.",
		booking.Name, booking.Service, booking.Date, booking.Time)

	s.sessions.ResetForm(sess.ChatID)
	return []string{confirmation}
}

// cancelBooking отменяет последнюю запись чата
func (s *IntakeService) cancelBooking(ctx context.Context, sess *session.Session) []string {
	booking, err := s.store.LastByChat(ctx, sess.ChatID)
	if err != nil {
		s.logger.Error("Failed to look up booking for cancel",
			zap.Int64("chat_id", sess.ChatID),
			zap.Error(err))
		return []string{msgStoreError}
	}
	if booking == nil {
		return []string{msgNoBooking}
	}

	if err := s.store.Delete(ctx, booking.ID); err != nil {
		s.logger.Error("Failed to delete booking",
			zap.String("booking_id", booking.ID),
			zap.Error(err))
		return []string{msgStoreError}
	}

	s.logger.Info("Booking canceled",
		zap.String("booking_id", booking.ID),
		zap.Int64("chat_id", sess.ChatID))

	s.staff.NotifyStaff(ctx, fmt.Sprintf("❌ Отмена записи: %s, «%s», %s %s",
		booking.Name, booking.Service, booking.Date, booking.Time))

	s.sessions.ResetForm(sess.ChatID)
	return []string{fmt.Sprintf("Ваша запись на %s %s отменена. Будем рады видеть вас в другой раз!",
		booking.Date, booking.Time)}
}

// startReschedule предлагает новые слоты для существующей записи
func (s *IntakeService) startReschedule(ctx context.Context, sess *session.Session) []string {
	booking, err := s.store.LastByChat(ctx, sess.ChatID)
	if err != nil {
		s.logger.Error("Failed to look up booking for reschedule",
			zap.Int64("chat_id", sess.ChatID),
			zap.Error(err))
		return []string{msgStoreError}
	}
	if booking == nil {
		return []string{msgNoBooking}
	}

	free, err := s.availability.FreeSlots(ctx, booking.Service, booking.Date)
	if err != nil {
		s.logger.Error("Failed to compute free slots for reschedule",
			zap.String("booking_id", booking.ID),
			zap.Error(err))
		return []string{msgStoreError}
	}

	if len(free) == 0 {
		return []string{fmt.Sprintf("На %s других свободных окон нет, ваша запись на %s остаётся в силе.",
			booking.Date, booking.Time)}
	}

	sess.State = session.StateReschedulingSlot
	sess.Offered = free
	sess.RescheduleID = booking.ID

	return []string{fmt.Sprintf("Сейчас вы записаны на %s %s. Свободное время на эту дату:\n%s\nОтправьте номер варианта.",
		booking.Date, booking.Time, formatSlotList(free))}
}

// chooseRescheduleSlot переносит запись на выбранный слот
func (s *IntakeService) chooseRescheduleSlot(ctx context.Context, sess *session.Session, text string) []string {
	chosen, ok := pickSlot(text, sess.Offered)
	if !ok {
		return []string{fmt.Sprintf("Не поняла выбор. Отправьте номер из списка:\n%s", formatSlotList(sess.Offered))}
	}

	bookingID := sess.RescheduleID
	if err := s.store.UpdateTime(ctx, bookingID, chosen); err != nil {
		s.logger.Error("Failed to update booking time",
			zap.String("booking_id", bookingID),
			zap.Error(err))
		return []string{msgStoreError}
	}

	sess.State = session.StateCollecting
	sess.Offered = nil
	sess.RescheduleID = ""

	s.logger.Info("Booking rescheduled",
		zap.String("booking_id", bookingID),
		zap.String("new_time", chosen))

	s.staff.NotifyStaff(ctx, fmt.Sprintf("🔁 Перенос записи %s: новое время %s", bookingID, chosen))

	return []string{fmt.Sprintf("Готово, перенесла вашу запись на %s.", chosen)}
}

// oracleReply отдаёт реплику LLM, подмешав известные поля анкеты
func (s *IntakeService) oracleReply(ctx context.Context, sess *session.Session) string {
	history := s.sessions.RecentHistory(sess.ChatID, OracleHistoryLimit)
	reply, err := s.oracle.Reply(ctx, sess.Form, history)
	if err != nil {
		s.logger.Error("Oracle call failed",
			zap.Int64("chat_id", sess.ChatID),
			zap.Error(err))
		return msgOracleError
	}
	return reply
}

// promptFor возвращает вопрос ровно про одно недостающее поле
func (s *IntakeService) promptFor(field string) string {
	switch field {
	case model.FieldService:
		var b strings.Builder
		b.WriteString("На какую услугу вы хотите записаться?\n")
		for i, svc := range s.catalog.List() {
			fmt.Fprintf(&b, "%d. %s — %s\n", i+1, svc.Name, svc.Price)
		}
		b.WriteString("Отправьте номер или название.")
		return b.String()
	case model.FieldDate:
		return "На какую дату вам удобно? Например: завтра или 12.09."
	case model.FieldTime:
		return "В какое время вам удобно? Например: 14:00."
	case model.FieldName:
		return "Как вас зовут?"
	case model.FieldPhone:
		return "Оставьте, пожалуйста, номер телефона для подтверждения."
	}
	return "Расскажите, пожалуйста, подробнее."
}

// pickSlot сопоставляет ответ клиента со списком предложенных слотов:
// либо номер варианта, либо само время текстом
func pickSlot(text string, offered []string) (string, bool) {
	trimmed := strings.TrimSpace(text)

	if n, err := strconv.Atoi(trimmed); err == nil {
		if n >= 1 && n <= len(offered) {
			return offered[n-1], true
		}
		return "", false
	}

	if t := extract.ExtractTime(text); t != "" {
		for _, slot := range offered {
			if slot == t {
				return slot, true
			}
		}
	}

	for _, slot := range offered {
		if strings.Contains(trimmed, slot) {
			return slot, true
		}
	}

	return "", false
}

func formatSlotList(slots []string) string {
	var b strings.Builder
	for i, slot := range slots {
		fmt.Fprintf(&b, "%d. %s\n", i+1, slot)
	}
	return strings.TrimRight(b.String(), "\n")
}

func hasCancelIntent(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range []string{"отмени", "отмена", "удали запись", "удалить запись", "cancel"} {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

func hasRescheduleIntent(text string) bool {
	lowered := strings.ToLower(text)
	for _, kw := range []string{"перенес", "перенос", "изменить время", "поменять время", "другое время", "reschedule", "change time"} {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
