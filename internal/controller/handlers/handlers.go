package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/CrumleyG/dataklinik-bot/internal/notify"
	"github.com/CrumleyG/dataklinik-bot/internal/service"
)

const welcomeText = "👋 Здравствуйте! Я помощница стоматологической клиники.\n\n" +
	"Помогу записаться на приём: напишите, какая услуга вас интересует " +
	"и на какой день, а я подберу свободное время.\n\n" +
	"Команды:\n" +
	"/help - что я умею\n" +
	"/cancel - начать анкету заново"

const helpText = "🦷 Я записываю на приём в клинику.\n\n" +
	"Просто напишите обычным текстом, например:\n" +
	"«Хочу чистку завтра в 14:00, меня зовут Мария, телефон +79001234567»\n\n" +
	"Ещё я умею:\n" +
	"• «отменить запись» - отмена текущей записи\n" +
	"• «перенести запись» - выбор другого времени\n" +
	"• ответить на вопросы об услугах и ценах"

// Handlers обработчики входящих сообщений
type Handlers struct {
	intake   *service.IntakeService
	notifier *notify.Notifier
	logger   *zap.Logger
}

// NewHandlers создаёт обработчики
func NewHandlers(intake *service.IntakeService, notifier *notify.Notifier, logger *zap.Logger) *Handlers {
	return &Handlers{
		intake:   intake,
		notifier: notifier,
		logger:   logger,
	}
}

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	h.logger.Info("New dialog started", zap.Int64("chat_id", chatID))

	h.intake.ResetDialog(chatID)
	h.notifier.Send(ctx, chatID, welcomeText)
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	h.notifier.Send(ctx, update.Message.Chat.ID, helpText)
}

// HandleCancelDialog обрабатывает команду /cancel - сброс анкеты
func (h *Handlers) HandleCancelDialog(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	h.intake.ResetDialog(chatID)
	h.notifier.Send(ctx, chatID, "✅ Анкета очищена. Напишите, на какую услугу вас записать.")
}

// HandleTextMessage передаёт сообщение в машину приёма.
// Нетекстовые апдейты и команды сюда не попадают.
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Команды обрабатываются своими handlers
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	chatID := update.Message.Chat.ID

	h.logger.Info("Inbound message",
		zap.Int64("chat_id", chatID),
		zap.Int("length", len(update.Message.Text)))

	for _, reply := range h.intake.HandleMessage(ctx, chatID, update.Message.Text) {
		h.notifier.Send(ctx, chatID, reply)
	}
}
