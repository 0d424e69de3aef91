package bot

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"broadcaster/internal/gateway/telegram"
)

const (
	selectPrefix = "select:"
	confirmData  = "confirm"
)

// Event is an inbound event. The set of implementations is closed.
type Event interface {
	isEvent()
}

// TextEvent is a plain text message typed by an operator
type TextEvent struct {
	OperatorID int64  `validate:"required"`
	ChatID     int64  `validate:"required"`
	Private    bool   // sent in a one-to-one chat with the bot
	Body       string `validate:"required"`
}

// SelectEvent is a click on a candidate button
type SelectEvent struct {
	ClickID     string `validate:"required"`
	OperatorID  int64  `validate:"required"`
	ChatID      int64  `validate:"required"`
	MessageRef  int    `validate:"required"`
	CandidateID int64  `validate:"required"`
}

// ConfirmEvent is a click on the "confirm send" button
type ConfirmEvent struct {
	ClickID    string `validate:"required"`
	OperatorID int64  `validate:"required"`
	ChatID     int64  `validate:"required"`
	MessageRef int    `validate:"required"`
}

// SightingEvent records that an account talked to the bot
type SightingEvent struct {
	AccountID   int64 `validate:"required"`
	DisplayName string
	Handle      string
}

func (TextEvent) isEvent()     {}
func (SelectEvent) isEvent()   {}
func (ConfirmEvent) isEvent()  {}
func (SightingEvent) isEvent() {}

// IsCommand reports whether the text is a bot command
func (e TextEvent) IsCommand() bool {
	return strings.HasPrefix(e.Body, "/") && len(e.Body) > 1
}

// Command returns the command name without the slash and bot mention
func (e TextEvent) Command() string {
	if !e.IsCommand() {
		return ""
	}
	name, _, _ := strings.Cut(e.Body[1:], " ")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name)
}

// CommandArguments returns the trimmed text following the command
func (e TextEvent) CommandArguments() string {
	if !e.IsCommand() {
		return ""
	}
	_, args, _ := strings.Cut(e.Body, " ")
	return strings.TrimSpace(args)
}

// selectData encodes the callback data of a candidate button
func selectData(accountID int64) string {
	return fmt.Sprintf("%s%d", selectPrefix, accountID)
}

// EventsFromUpdate converts a Telegram update into inbound events.
// The events are not validated here; Dispatch rejects malformed ones.
func EventsFromUpdate(update tgbotapi.Update) []Event {
	var events []Event

	if msg := update.Message; msg != nil && msg.From != nil {
		if !msg.From.IsBot {
			events = append(events, SightingEvent{
				AccountID:   msg.From.ID,
				DisplayName: telegram.DisplayName(msg.From),
				Handle:      msg.From.UserName,
			})
		}

		var chatID int64
		var private bool
		if msg.Chat != nil {
			chatID = msg.Chat.ID
			private = msg.Chat.IsPrivate()
		}
		events = append(events, TextEvent{
			OperatorID: msg.From.ID,
			ChatID:     chatID,
			Private:    private,
			Body:       strings.TrimSpace(msg.Text),
		})
	}

	if query := update.CallbackQuery; query != nil && query.From != nil {
		if evt, ok := clickEvent(query); ok {
			events = append(events, evt)
		}
	}

	return events
}

func clickEvent(query *tgbotapi.CallbackQuery) (Event, bool) {
	var chatID int64
	var messageRef int
	if query.Message != nil {
		messageRef = query.Message.MessageID
		if query.Message.Chat != nil {
			chatID = query.Message.Chat.ID
		}
	}

	switch {
	case query.Data == confirmData:
		return ConfirmEvent{
			ClickID:    query.ID,
			OperatorID: query.From.ID,
			ChatID:     chatID,
			MessageRef: messageRef,
		}, true
	case strings.HasPrefix(query.Data, selectPrefix):
		candidateID, err := strconv.ParseInt(strings.TrimPrefix(query.Data, selectPrefix), 10, 64)
		if err != nil {
			return nil, false
		}
		return SelectEvent{
			ClickID:     query.ID,
			OperatorID:  query.From.ID,
			ChatID:      chatID,
			MessageRef:  messageRef,
			CandidateID: candidateID,
		}, true
	default:
		return nil, false
	}
}
