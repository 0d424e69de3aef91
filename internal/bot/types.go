package bot

import (
	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"broadcaster/internal/gateway"
	"broadcaster/internal/models"
	"broadcaster/internal/recipients"
	"broadcaster/internal/storage"
)

// Bot represents the Telegram bot wrapper
type Bot struct {
	api       *tgbotapi.BotAPI // nil in tests
	gateway   gateway.Gateway
	directory storage.Directory
	resolver  *recipients.Resolver
	sessions  *sessionStore
	validate  *validator.Validate
	logger    *zap.Logger

	updateTimeout int
}

// Step is the position of a broadcast session in the workflow
type Step int

const (
	StepAwaitingGroupID Step = iota + 1
	StepAwaitingMessageBody
	StepSelectingRecipients
)

func (s Step) String() string {
	switch s {
	case StepAwaitingGroupID:
		return "awaiting_group_id"
	case StepAwaitingMessageBody:
		return "awaiting_message_body"
	case StepSelectingRecipients:
		return "selecting_recipients"
	default:
		return "unknown"
	}
}

// BroadcastSession tracks one operator's way through the broadcast workflow
type BroadcastSession struct {
	ID         string // correlates log lines of one session
	OperatorID int64
	ChatID     int64 // chat the operator drives the workflow from
	Step       Step

	TargetGroupID int64
	MessageBody   string

	// Candidates from the most recent resolution, keyed by account id
	Candidates map[int64]models.Candidate
	// Selected holds unique candidate ids in selection order
	Selected []int64

	ControlsMessageID      int
	ConfirmControlRendered bool
}

func newBroadcastSession(operatorID, chatID int64) *BroadcastSession {
	return &BroadcastSession{
		ID:                     uuid.NewString(),
		OperatorID:             operatorID,
		ChatID:                 chatID,
		Step:                   StepAwaitingGroupID,
		TargetGroupID:          0,
		MessageBody:            "",
		Candidates:             make(map[int64]models.Candidate),
		Selected:               make([]int64, 0),
		ControlsMessageID:      0,
		ConfirmControlRendered: false,
	}
}

// Select adds a candidate to the selection. It reports false when the
// candidate was already selected.
func (s *BroadcastSession) Select(accountID int64) bool {
	if lo.Contains(s.Selected, accountID) {
		return false
	}
	s.Selected = append(s.Selected, accountID)
	return true
}

// setCandidates replaces the candidate set and drops selections that are no
// longer candidates
func (s *BroadcastSession) setCandidates(candidates []models.Candidate) {
	s.Candidates = lo.KeyBy(candidates, func(c models.Candidate) int64 {
		return c.AccountID
	})
	s.Selected = lo.Filter(s.Selected, func(id int64, _ int) bool {
		_, ok := s.Candidates[id]
		return ok
	})
}

func (s *BroadcastSession) logFields() []zap.Field {
	return []zap.Field{
		zap.String("session_id", s.ID),
		zap.Int64("operator_id", s.OperatorID),
		zap.Int64("chat_id", s.ChatID),
		zap.Stringer("step", s.Step),
	}
}
