package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"broadcaster/internal/gateway"
	"broadcaster/internal/models"
)

// fakeAPI records every Chattable and answers with canned results
type fakeAPI struct {
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable

	admins      []tgbotapi.ChatMember
	adminsErr   error
	members     map[int64]tgbotapi.ChatMember
	sendErr     map[int64]error
	requestErr  error
	nextMessage int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		if err := f.sendErr[msg.ChatID]; err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.nextMessage++
	return tgbotapi.Message{MessageID: f.nextMessage}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error) {
	return f.admins, f.adminsErr
}

func (f *fakeAPI) GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error) {
	member, ok := f.members[config.UserID]
	if !ok {
		return tgbotapi.ChatMember{}, errors.New("Bad Request: user not found")
	}
	return member, nil
}

func newTestGateway(api *fakeAPI) *Gateway {
	return New(api, zap.NewNop())
}

func TestGateway_FetchAdminsSkipsBots(t *testing.T) {
	api := &fakeAPI{
		admins: []tgbotapi.ChatMember{
			{User: &tgbotapi.User{ID: 1, FirstName: "Alice", LastName: "Smith", UserName: "alice"}, Status: "creator"},
			{User: &tgbotapi.User{ID: 99, FirstName: "Broadcaster", IsBot: true}, Status: "administrator"},
			{User: &tgbotapi.User{ID: 2, FirstName: "Bob"}, Status: "administrator"},
		},
	}
	g := newTestGateway(api)

	admins, err := g.FetchAdmins(context.Background(), -100123)
	require.NoError(t, err)
	assert.Equal(t, []models.Member{
		{AccountID: 1, DisplayName: "Alice Smith", Handle: "alice"},
		{AccountID: 2, DisplayName: "Bob"},
	}, admins)
}

func TestGateway_FetchAdminsError(t *testing.T) {
	api := &fakeAPI{adminsErr: errors.New("Bad Request: chat not found")}
	g := newTestGateway(api)

	_, err := g.FetchAdmins(context.Background(), -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrAdminFetchFailed)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestGateway_ProbeMembership(t *testing.T) {
	api := &fakeAPI{
		members: map[int64]tgbotapi.ChatMember{
			1: {Status: "member"},
			2: {Status: "left"},
			3: {Status: "kicked"},
		},
	}
	g := newTestGateway(api)
	ctx := context.Background()

	status, err := g.ProbeMembership(ctx, -1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, status)

	status, err = g.ProbeMembership(ctx, -1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.StatusLeft, status)

	status, err = g.ProbeMembership(ctx, -1, 3)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRemoved, status)

	_, err = g.ProbeMembership(ctx, -1, 4)
	assert.ErrorIs(t, err, gateway.ErrMembershipProbeFailed)
}

func TestStatusOf(t *testing.T) {
	testCases := []struct {
		name     string
		member   tgbotapi.ChatMember
		expected models.MemberStatus
	}{
		{"creator", tgbotapi.ChatMember{Status: "creator"}, models.StatusActive},
		{"administrator", tgbotapi.ChatMember{Status: "administrator"}, models.StatusActive},
		{"member", tgbotapi.ChatMember{Status: "member"}, models.StatusActive},
		{"restricted member", tgbotapi.ChatMember{Status: "restricted", IsMember: true}, models.StatusActive},
		{"restricted non-member", tgbotapi.ChatMember{Status: "restricted"}, models.StatusLeft},
		{"left", tgbotapi.ChatMember{Status: "left"}, models.StatusLeft},
		{"kicked", tgbotapi.ChatMember{Status: "kicked"}, models.StatusRemoved},
		{"unknown", tgbotapi.ChatMember{Status: "something"}, models.StatusLeft},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StatusOf(tc.member))
		})
	}
}

func TestGateway_SendDirectFailure(t *testing.T) {
	api := &fakeAPI{sendErr: map[int64]error{42: errors.New("Forbidden: bot can't initiate conversation with a user")}}
	g := newTestGateway(api)
	ctx := context.Background()

	require.NoError(t, g.SendDirect(ctx, 41, "hello"))

	err := g.SendDirect(ctx, 42, "hello")
	assert.ErrorIs(t, err, gateway.ErrDeliveryFailed)
	assert.Contains(t, err.Error(), "Forbidden")
}

func TestGateway_RenderAndAppendControl(t *testing.T) {
	api := &fakeAPI{}
	g := newTestGateway(api)
	ctx := context.Background()

	controls := []gateway.Control{
		{Label: "Alice", Data: "select:1"},
		{Label: "Bob", Data: "select:2"},
	}
	ref, err := g.RenderSelectionControls(ctx, 500, "Pick", controls)
	require.NoError(t, err)
	require.Len(t, api.sent, 1)

	msg, ok := api.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "Alice", markup.InlineKeyboard[0][0].Text)

	confirm := gateway.Control{Label: "Send", Data: "confirm"}
	require.NoError(t, g.AppendControl(ctx, 500, ref, confirm))
	require.NoError(t, g.AppendControl(ctx, 500, ref, confirm))

	// The second append is a no-op
	require.Len(t, api.requests, 1)
	edit, ok := api.requests[0].(tgbotapi.EditMessageReplyMarkupConfig)
	require.True(t, ok)
	require.Len(t, edit.ReplyMarkup.InlineKeyboard, 3)
	assert.Equal(t, "confirm", *edit.ReplyMarkup.InlineKeyboard[2][0].CallbackData)
}

func TestGateway_AppendControlRetryAfterFailure(t *testing.T) {
	api := &fakeAPI{requestErr: errors.New("Bad Request: message is not modified")}
	g := newTestGateway(api)
	ctx := context.Background()

	ref, err := g.RenderSelectionControls(ctx, 500, "Pick", []gateway.Control{{Label: "Alice", Data: "select:1"}})
	require.NoError(t, err)

	confirm := gateway.Control{Label: "Send", Data: "confirm"}
	require.Error(t, g.AppendControl(ctx, 500, ref, confirm))

	api.requestErr = nil
	require.NoError(t, g.AppendControl(ctx, 500, ref, confirm))

	require.Len(t, api.requests, 2)
	edit, ok := api.requests[1].(tgbotapi.EditMessageReplyMarkupConfig)
	require.True(t, ok)
	assert.Len(t, edit.ReplyMarkup.InlineKeyboard, 2)
}

func TestGateway_AppendControlUnknownMessage(t *testing.T) {
	g := newTestGateway(&fakeAPI{})

	err := g.AppendControl(context.Background(), 1, 7, gateway.Control{Label: "Send", Data: "confirm"})
	assert.Error(t, err)
}

func TestGateway_ReleaseControls(t *testing.T) {
	api := &fakeAPI{}
	g := newTestGateway(api)
	ctx := context.Background()

	ref, err := g.RenderSelectionControls(ctx, 1, "Pick", []gateway.Control{{Label: "A", Data: "select:1"}})
	require.NoError(t, err)

	g.ReleaseControls(1, ref)

	assert.Error(t, g.AppendControl(ctx, 1, ref, gateway.Control{Label: "Send", Data: "confirm"}))
}

func TestGateway_AcknowledgeClick(t *testing.T) {
	api := &fakeAPI{}
	g := newTestGateway(api)

	require.NoError(t, g.AcknowledgeClick(context.Background(), "cb-1", "Added"))
	require.Len(t, api.requests, 1)

	callback, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb-1", callback.CallbackQueryID)
	assert.Equal(t, "Added", callback.Text)
}
