package stubs

import (
	"context"
	"fmt"
	"sync"

	"broadcaster/internal/gateway"
	"broadcaster/internal/models"
)

// Notice is a message posted to a chat through SendNotice
type Notice struct {
	ChatID int64
	Text   string
}

// Rendered is a keyboard posted through RenderSelectionControls
type Rendered struct {
	ChatID   int64
	Ref      int
	Prompt   string
	Controls []gateway.Control
	Released bool
}

// Ack is a callback acknowledgement
type Ack struct {
	ClickID  string
	Feedback string
}

// Delivery is a direct message handed to SendDirect
type Delivery struct {
	AccountID int64
	Text      string
	Err       error
}

// MockGateway is an in-memory implementation of gateway.Gateway for testing
type MockGateway struct {
	mu sync.Mutex

	admins      map[int64][]models.Member
	adminErrs   map[int64]error
	memberships map[int64]map[int64]models.MemberStatus
	failSend    map[int64]bool

	AdminCalls []int64
	Probes     []int64
	Deliveries []Delivery
	Notices    []Notice
	Keyboards  []*Rendered
	Appends    []gateway.Control
	Acks       []Ack

	nextRef int

	// BeforeSend, when set, runs before every SendDirect call
	BeforeSend func(accountID int64)
}

// NewMockGateway creates an empty mock gateway
func NewMockGateway() *MockGateway {
	return &MockGateway{
		admins:      make(map[int64][]models.Member),
		adminErrs:   make(map[int64]error),
		memberships: make(map[int64]map[int64]models.MemberStatus),
		failSend:    make(map[int64]bool),
		nextRef:     100,
	}
}

// SetAdmins configures the admin list of a group
func (m *MockGateway) SetAdmins(groupID int64, admins ...models.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[groupID] = admins
}

// FailAdmins makes FetchAdmins fail for a group
func (m *MockGateway) FailAdmins(groupID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adminErrs[groupID] = fmt.Errorf("%w: chat %d not found", gateway.ErrAdminFetchFailed, groupID)
}

// SetMembership configures the probe answer for an account in a group.
// Accounts without a configured status fail the probe.
func (m *MockGateway) SetMembership(groupID, accountID int64, status models.MemberStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.memberships[groupID] == nil {
		m.memberships[groupID] = make(map[int64]models.MemberStatus)
	}
	m.memberships[groupID][accountID] = status
}

// FailDelivery makes SendDirect fail for an account
func (m *MockGateway) FailDelivery(accountID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSend[accountID] = true
}

// FetchAdmins returns the configured admins of a group
func (m *MockGateway) FetchAdmins(ctx context.Context, groupID int64) ([]models.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AdminCalls = append(m.AdminCalls, groupID)
	if err := m.adminErrs[groupID]; err != nil {
		return nil, err
	}
	admins, ok := m.admins[groupID]
	if !ok {
		return nil, fmt.Errorf("%w: chat %d not found", gateway.ErrAdminFetchFailed, groupID)
	}
	return append([]models.Member(nil), admins...), nil
}

// ProbeMembership returns the configured membership status
func (m *MockGateway) ProbeMembership(ctx context.Context, groupID, accountID int64) (models.MemberStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Probes = append(m.Probes, accountID)
	status, ok := m.memberships[groupID][accountID]
	if !ok {
		return "", fmt.Errorf("%w: user %d not found", gateway.ErrMembershipProbeFailed, accountID)
	}
	return status, nil
}

// SendDirect records the delivery, failing for accounts marked with FailDelivery
func (m *MockGateway) SendDirect(ctx context.Context, accountID int64, text string) error {
	if m.BeforeSend != nil {
		m.BeforeSend(accountID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.failSend[accountID] {
		err = fmt.Errorf("%w: account %d blocked the bot", gateway.ErrDeliveryFailed, accountID)
	}
	m.Deliveries = append(m.Deliveries, Delivery{AccountID: accountID, Text: text, Err: err})
	return err
}

// SendNotice records the notice
func (m *MockGateway) SendNotice(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notices = append(m.Notices, Notice{ChatID: chatID, Text: text})
	return nil
}

// RenderSelectionControls records the keyboard and returns a fresh reference
func (m *MockGateway) RenderSelectionControls(ctx context.Context, chatID int64, prompt string, controls []gateway.Control) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextRef++
	m.Keyboards = append(m.Keyboards, &Rendered{
		ChatID:   chatID,
		Ref:      m.nextRef,
		Prompt:   prompt,
		Controls: append([]gateway.Control(nil), controls...),
	})
	return m.nextRef, nil
}

// AppendControl records the appended control
func (m *MockGateway) AppendControl(ctx context.Context, chatID int64, messageRef int, control gateway.Control) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range m.Keyboards {
		if k.ChatID == chatID && k.Ref == messageRef {
			k.Controls = append(k.Controls, control)
			m.Appends = append(m.Appends, control)
			return nil
		}
	}
	return fmt.Errorf("no keyboard rendered for message %d in chat %d", messageRef, chatID)
}

// ReleaseControls marks a keyboard as released
func (m *MockGateway) ReleaseControls(chatID int64, messageRef int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range m.Keyboards {
		if k.ChatID == chatID && k.Ref == messageRef {
			k.Released = true
		}
	}
}

// AcknowledgeClick records the acknowledgement
func (m *MockGateway) AcknowledgeClick(ctx context.Context, clickID, feedback string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Acks = append(m.Acks, Ack{ClickID: clickID, Feedback: feedback})
	return nil
}

// LastNotice returns the most recent notice, or an empty one
func (m *MockGateway) LastNotice() Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Notices) == 0 {
		return Notice{}
	}
	return m.Notices[len(m.Notices)-1]
}

// LastKeyboard returns the most recently rendered keyboard, or nil
func (m *MockGateway) LastKeyboard() *Rendered {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Keyboards) == 0 {
		return nil
	}
	return m.Keyboards[len(m.Keyboards)-1]
}

// LastAck returns the most recent acknowledgement, or an empty one
func (m *MockGateway) LastAck() Ack {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Acks) == 0 {
		return Ack{}
	}
	return m.Acks[len(m.Acks)-1]
}
