package bot

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"broadcaster/internal/gateway"
	"broadcaster/internal/gateway/telegram"
	"broadcaster/internal/recipients"
	"broadcaster/internal/storage"
)

// Options tunes the bot
type Options struct {
	ProbeConcurrency int
	UpdateTimeout    int // long polling timeout in seconds
}

// NewBot creates a new Telegram bot
func NewBot(token string, directory storage.Directory, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	b := newBot(telegram.New(api, logger), directory, opts, logger)
	b.api = api
	return b, nil
}

// newBot wires a bot around any gateway
func newBot(gw gateway.Gateway, directory storage.Directory, opts Options, logger *zap.Logger) *Bot {
	return &Bot{
		gateway:       gw,
		directory:     directory,
		resolver:      recipients.NewResolver(gw, directory, opts.ProbeConcurrency, logger),
		sessions:      newSessionStore(),
		validate:      validator.New(),
		logger:        logger,
		updateTimeout: opts.UpdateTimeout,
	}
}

// LiveSessions returns the number of broadcasts in progress
func (b *Bot) LiveSessions() int {
	return b.sessions.Live()
}

// KnownAccounts returns the size of the user directory
func (b *Bot) KnownAccounts() int {
	return b.directory.Len()
}
