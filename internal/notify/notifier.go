package notify

import (
	"context"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

// Notifier отправляет сообщения клиентам и служебные уведомления
// в чат персонала. Доставка best-effort: ошибка отправки логируется
// и никогда не прерывает обработку.
type Notifier struct {
	bot         *bot.Bot
	staffChatID int64
	logger      *zap.Logger
}

func New(botInstance *bot.Bot, staffChatID int64, logger *zap.Logger) *Notifier {
	return &Notifier{
		bot:         botInstance,
		staffChatID: staffChatID,
		logger:      logger,
	}
}

// Send отправляет сообщение в чат клиента
func (n *Notifier) Send(ctx context.Context, chatID int64, text string) {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		n.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// NotifyStaff отправляет уведомление в чат персонала
func (n *Notifier) NotifyStaff(ctx context.Context, text string) {
	if n.staffChatID == 0 {
		n.logger.Warn("Staff chat is not configured, dropping notification",
			zap.String("text", text))
		return
	}

	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: n.staffChatID,
		Text:   text,
	})
	if err != nil {
		n.logger.Error("Failed to notify staff",
			zap.Int64("staff_chat_id", n.staffChatID),
			zap.Error(err))
	}
}
