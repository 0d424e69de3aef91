package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextEvent_Command(t *testing.T) {
	testCases := []struct {
		body      string
		isCommand bool
		command   string
		arguments string
	}{
		{body: "/startmsg", isCommand: true, command: "startmsg"},
		{body: "/startmsg -100500", isCommand: true, command: "startmsg", arguments: "-100500"},
		{body: "/StartMsg@BroadcastBot  -42 ", isCommand: true, command: "startmsg", arguments: "-42"},
		{body: "/", isCommand: false},
		{body: "hello /startmsg", isCommand: false},
		{body: "-100500", isCommand: false},
	}

	for _, tc := range testCases {
		t.Run(tc.body, func(t *testing.T) {
			e := TextEvent{Body: tc.body}
			assert.Equal(t, tc.isCommand, e.IsCommand())
			assert.Equal(t, tc.command, e.Command())
			assert.Equal(t, tc.arguments, e.CommandArguments())
		})
	}
}

func TestEventsFromUpdate_Message(t *testing.T) {
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			MessageID: 5,
			From:      &tgbotapi.User{ID: 123, FirstName: "Ann", LastName: "Lee", UserName: "ann"},
			Chat:      &tgbotapi.Chat{ID: 123, Type: "private"},
			Text:      "  -100500 ",
		},
	}

	events := EventsFromUpdate(update)

	require.Len(t, events, 2)
	assert.Equal(t, SightingEvent{AccountID: 123, DisplayName: "Ann Lee", Handle: "ann"}, events[0])
	assert.Equal(t, TextEvent{OperatorID: 123, ChatID: 123, Private: true, Body: "-100500"}, events[1])
}

func TestEventsFromUpdate_GroupMessage(t *testing.T) {
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 123, FirstName: "Ann"},
			Chat: &tgbotapi.Chat{ID: -100500, Type: "supergroup"},
			Text: "/startmsg",
		},
	}

	events := EventsFromUpdate(update)

	require.Len(t, events, 2)
	text, ok := events[1].(TextEvent)
	require.True(t, ok)
	assert.False(t, text.Private)
	assert.Equal(t, int64(-100500), text.ChatID)
}

func TestEventsFromUpdate_BotSenderIsNotRecorded(t *testing.T) {
	update := tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 777, FirstName: "Helper", IsBot: true},
			Chat: &tgbotapi.Chat{ID: -100500, Type: "group"},
			Text: "beep",
		},
	}

	events := EventsFromUpdate(update)

	require.Len(t, events, 1)
	assert.IsType(t, TextEvent{}, events[0])
}

func TestEventsFromUpdate_Callbacks(t *testing.T) {
	message := &tgbotapi.Message{MessageID: 101, Chat: &tgbotapi.Chat{ID: 123}}
	from := &tgbotapi.User{ID: 123}

	t.Run("select", func(t *testing.T) {
		events := EventsFromUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
			ID: "cb1", From: from, Message: message, Data: "select:42",
		}})
		require.Len(t, events, 1)
		assert.Equal(t, SelectEvent{ClickID: "cb1", OperatorID: 123, ChatID: 123, MessageRef: 101, CandidateID: 42}, events[0])
	})

	t.Run("confirm", func(t *testing.T) {
		events := EventsFromUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
			ID: "cb2", From: from, Message: message, Data: "confirm",
		}})
		require.Len(t, events, 1)
		assert.Equal(t, ConfirmEvent{ClickID: "cb2", OperatorID: 123, ChatID: 123, MessageRef: 101}, events[0])
	})

	t.Run("unknown data", func(t *testing.T) {
		for _, data := range []string{"book:1", "select:abc", ""} {
			events := EventsFromUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
				ID: "cb3", From: from, Message: message, Data: data,
			}})
			assert.Empty(t, events, data)
		}
	})
}

func TestBot_HandleUpdate(t *testing.T) {
	b, gw, dir := newTestBot()
	seedGroup(b, gw)

	b.HandleUpdate(t.Context(), tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: operatorID, FirstName: "Operator"},
			Chat: &tgbotapi.Chat{ID: chatID, Type: "private"},
			Text: "/startmsg",
		},
	})

	assert.Equal(t, 3, dir.Len())
	session := sessionOf(b, operatorID)
	require.NotNil(t, session)
	assert.Equal(t, StepAwaitingGroupID, session.Step)

	// Unknown buttons still get an answer
	b.HandleUpdate(t.Context(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID: "stale", From: &tgbotapi.User{ID: operatorID}, Data: "book:1",
	}})
	assert.Equal(t, "stale", gw.LastAck().ClickID)
	assert.Equal(t, "", gw.LastAck().Feedback)
}
