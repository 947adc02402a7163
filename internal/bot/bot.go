package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"film2trello/internal/progress"
	"film2trello/internal/services"
)

// pollTimeout is the long-polling timeout in seconds.
const pollTimeout = 30

// sender is the slice of the Telegram API the bot writes through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// messageProcessor runs the pipeline for one message.
type messageProcessor interface {
	ProcessMessage(ctx context.Context, reporter progress.Reporter, username, messageText, boardID string) (string, error)
}

// Config carries everything the bot needs besides the pipeline itself.
type Config struct {
	Token   string
	BoardID string
	// Users maps allowed Telegram user ids to Trello usernames.
	Users map[int64]string
	// Secrets are values that must never leak into replies.
	Secrets []string
}

// Bot is the Telegram front-end.
type Bot struct {
	api       *tgbotapi.BotAPI
	sender    sender
	processor messageProcessor
	users     map[int64]string
	boardID   string
	secrets   []string
	logger    *slog.Logger
}

// New connects to the Telegram API and builds the bot.
func New(cfg Config, processor messageProcessor, logger *slog.Logger) (*Bot, error) {
	if len(cfg.Users) == 0 {
		return nil, errors.New("no allowed telegram users configured")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		api:       api,
		sender:    api,
		processor: processor,
		users:     cfg.Users,
		boardID:   cfg.BoardID,
		secrets:   cfg.Secrets,
		logger:    logger,
	}, nil
}

// Run polls for updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("bot started",
		"bot_username", b.api.Self.UserName,
		"allowed_users", len(b.users))

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil {
		return
	}
	username, allowed := b.users[message.From.ID]
	if !allowed {
		b.logger.Info("ignoring message from unknown user",
			"telegram_id", message.From.ID)
		return
	}

	switch {
	case message.IsCommand() && message.Command() == "start":
		b.greet(message, username)
	case message.IsCommand():
		b.reply(message, "Pošli mi odkaz na film a já se postarám o zbytek.")
	default:
		b.save(ctx, message, username)
	}
}

func (b *Bot) greet(message *tgbotapi.Message, username string) {
	b.reply(message, greeting(message.From.FirstName, b.boardID, username))
}

func (b *Bot) save(ctx context.Context, message *tgbotapi.Message, username string) {
	logger := b.logger.With("telegram_id", message.From.ID, "trello_username", username)
	logger.Info("processing message")

	editor := newReplyEditor(b.sender, message.Chat.ID, message.MessageID, b.logger)
	_, err := b.processor.ProcessMessage(ctx, progress.Func(editor.step),
		username, message.Text, b.boardID)
	if err != nil {
		logger.Error("processing message failed", "error", err)
		editor.step("Chyba: " + services.Redact(err.Error(), b.secrets...))
		return
	}
	logger.Info("message processed")
}

func (b *Bot) reply(message *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(message.Chat.ID, text)
	reply.ReplyToMessageID = message.MessageID
	reply.DisableWebPagePreview = true
	if _, err := b.sender.Send(reply); err != nil {
		b.logger.Warn("sending reply failed", "error", err)
	}
}

// greeting renders the /start text.
func greeting(firstName, boardID, username string) string {
	return fmt.Sprintf(
		"Ahoj %s! Můžeš mi posílat odkazy na ČSFD a já je budu ukládat do tohoto Trella: %s "+
			"Na kartičku přiřadím Trello uživatele %s.",
		firstName, BoardURL(boardID), username)
}

// BoardURL returns the public URL of a board.
func BoardURL(boardID string) string {
	return "https://trello.com/b/" + boardID
}
