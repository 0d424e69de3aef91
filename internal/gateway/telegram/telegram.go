package telegram

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"broadcaster/internal/gateway"
	"broadcaster/internal/models"
)

// API is the subset of *tgbotapi.BotAPI used by the gateway
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

type keyboardKey struct {
	chatID    int64
	messageID int
}

// Gateway implements gateway.Gateway on top of the Telegram Bot API
type Gateway struct {
	api    API
	logger *zap.Logger

	// Rendered keyboards, needed to re-send the full markup on append
	mu        sync.Mutex
	keyboards map[keyboardKey][]gateway.Control
}

// New creates a Telegram gateway
func New(api API, logger *zap.Logger) *Gateway {
	return &Gateway{
		api:       api,
		logger:    logger,
		keyboards: make(map[keyboardKey][]gateway.Control),
	}
}

// FetchAdmins returns the human administrators of a group in API order
func (g *Gateway) FetchAdmins(ctx context.Context, groupID int64) ([]models.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", gateway.ErrAdminFetchFailed, err)
	}

	admins, err := g.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: groupID},
	})
	if err != nil {
		g.logger.Warn("Failed to fetch chat administrators",
			zap.Error(err),
			zap.Int64("group_id", groupID),
		)
		return nil, fmt.Errorf("%w: chat %d: %w", gateway.ErrAdminFetchFailed, groupID, err)
	}

	// Bots cannot receive direct messages from other bots
	return lo.FilterMap(admins, func(m tgbotapi.ChatMember, _ int) (models.Member, bool) {
		if m.User == nil || m.User.IsBot {
			return models.Member{}, false
		}
		return MemberFromUser(m.User), true
	}), nil
}

// ProbeMembership reports the membership status of one account in a group
func (g *Gateway) ProbeMembership(ctx context.Context, groupID, accountID int64) (models.MemberStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", gateway.ErrMembershipProbeFailed, err)
	}

	member, err := g.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: groupID,
			UserID: accountID,
		},
	})
	if err != nil {
		g.logger.Debug("Membership probe failed",
			zap.Error(err),
			zap.Int64("group_id", groupID),
			zap.Int64("account_id", accountID),
		)
		return "", fmt.Errorf("%w: account %d in chat %d: %w", gateway.ErrMembershipProbeFailed, accountID, groupID, err)
	}

	return StatusOf(member), nil
}

// SendDirect sends text to the private chat of an account
func (g *Gateway) SendDirect(ctx context.Context, accountID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", gateway.ErrDeliveryFailed, err)
	}

	if _, err := g.api.Send(tgbotapi.NewMessage(accountID, text)); err != nil {
		return fmt.Errorf("%w: account %d: %w", gateway.ErrDeliveryFailed, accountID, err)
	}
	return nil
}

// SendNotice sends a plain message to a chat
func (g *Gateway) SendNotice(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := g.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("failed to send notice to chat %d: %w", chatID, err)
	}
	return nil
}

// RenderSelectionControls sends prompt with an inline keyboard, one button per row
func (g *Gateway) RenderSelectionControls(ctx context.Context, chatID int64, prompt string, controls []gateway.Control) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = inlineKeyboard(controls)

	sent, err := g.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("failed to render selection controls in chat %d: %w", chatID, err)
	}

	g.mu.Lock()
	g.keyboards[keyboardKey{chatID: chatID, messageID: sent.MessageID}] = append([]gateway.Control(nil), controls...)
	g.mu.Unlock()

	return sent.MessageID, nil
}

// AppendControl adds a button at the bottom of a rendered keyboard
func (g *Gateway) AppendControl(ctx context.Context, chatID int64, messageRef int, control gateway.Control) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := keyboardKey{chatID: chatID, messageID: messageRef}

	g.mu.Lock()
	controls, ok := g.keyboards[key]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("no keyboard rendered for message %d in chat %d", messageRef, chatID)
	}
	// Appending the same control twice leaves the keyboard unchanged
	if lo.Contains(controls, control) {
		g.mu.Unlock()
		return nil
	}
	controls = append(slices.Clip(controls), control)
	g.mu.Unlock()

	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, messageRef, inlineKeyboard(controls))
	if _, err := g.api.Request(edit); err != nil {
		return fmt.Errorf("failed to edit keyboard of message %d in chat %d: %w", messageRef, chatID, err)
	}

	// Recorded only once Telegram shows the button, so a failed edit can be retried
	g.mu.Lock()
	if _, ok := g.keyboards[key]; ok {
		g.keyboards[key] = controls
	}
	g.mu.Unlock()
	return nil
}

// AcknowledgeClick answers a callback query, showing feedback as a toast
func (g *Gateway) AcknowledgeClick(ctx context.Context, clickID, feedback string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := g.api.Request(tgbotapi.NewCallback(clickID, feedback)); err != nil {
		return fmt.Errorf("failed to answer callback query %s: %w", clickID, err)
	}
	return nil
}

// ReleaseControls drops the cached keyboard of a message that will not be edited again
func (g *Gateway) ReleaseControls(chatID int64, messageRef int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keyboards, keyboardKey{chatID: chatID, messageID: messageRef})
}

func inlineKeyboard(controls []gateway.Control) tgbotapi.InlineKeyboardMarkup {
	rows := lo.Map(controls, func(c gateway.Control, _ int) []tgbotapi.InlineKeyboardButton {
		return tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Data))
	})
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// StatusOf maps a Telegram chat member status onto models.MemberStatus
func StatusOf(member tgbotapi.ChatMember) models.MemberStatus {
	switch member.Status {
	case "creator", "administrator", "member":
		return models.StatusActive
	case "restricted":
		if member.IsMember {
			return models.StatusActive
		}
		return models.StatusLeft
	case "kicked":
		return models.StatusRemoved
	default:
		return models.StatusLeft
	}
}

// MemberFromUser converts a Telegram user into a models.Member
func MemberFromUser(user *tgbotapi.User) models.Member {
	return models.Member{
		AccountID:   user.ID,
		DisplayName: DisplayName(user),
		Handle:      user.UserName,
	}
}

// DisplayName joins the first and last name of a user
func DisplayName(user *tgbotapi.User) string {
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
