package bot

import (
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// replyEditor keeps one reply message per processed film and rewrites it
// with the accumulated progress log on every step. The first step creates
// the reply; if that send fails, the next step tries again.
type replyEditor struct {
	sender    sender
	chatID    int64
	replyTo   int
	messageID int
	lines     []string
	logger    *slog.Logger
}

func newReplyEditor(sender sender, chatID int64, replyTo int, logger *slog.Logger) *replyEditor {
	return &replyEditor{
		sender:  sender,
		chatID:  chatID,
		replyTo: replyTo,
		logger:  logger,
	}
}

func (e *replyEditor) step(line string) {
	e.lines = append(e.lines, line)
	text := strings.Join(e.lines, "\n")

	if e.messageID == 0 {
		message := tgbotapi.NewMessage(e.chatID, text)
		message.ReplyToMessageID = e.replyTo
		message.DisableWebPagePreview = true
		sent, err := e.sender.Send(message)
		if err != nil {
			e.logger.Warn("sending progress reply failed", "error", err)
			return
		}
		e.messageID = sent.MessageID
		return
	}

	edit := tgbotapi.NewEditMessageText(e.chatID, e.messageID, text)
	edit.DisableWebPagePreview = true
	if _, err := e.sender.Send(edit); err != nil {
		e.logger.Warn("editing progress reply failed", "error", err)
	}
}
