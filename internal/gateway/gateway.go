package gateway

import (
	"context"
	"errors"

	"broadcaster/internal/models"
)

var (
	// ErrAdminFetchFailed is returned when the group admin list cannot be read
	// (unknown chat, missing bot permissions, transport error)
	ErrAdminFetchFailed = errors.New("admin fetch failed")

	// ErrMembershipProbeFailed is returned when the membership of a single
	// account cannot be determined. Callers treat it as "not a member".
	ErrMembershipProbeFailed = errors.New("membership probe failed")

	// ErrDeliveryFailed is returned when a direct message could not be sent
	ErrDeliveryFailed = errors.New("delivery failed")
)

// Control is a single button rendered under a bot message
type Control struct {
	Label string
	Data  string
}

// Gateway is the set of messaging capabilities the broadcaster needs.
// Implementations own their transport errors and map them to the
// sentinel errors above; nothing they return is fatal to the caller.
type Gateway interface {
	FetchAdmins(ctx context.Context, groupID int64) ([]models.Member, error)
	ProbeMembership(ctx context.Context, groupID, accountID int64) (models.MemberStatus, error)
	SendDirect(ctx context.Context, accountID int64, text string) error

	// SendNotice posts prompts, warnings and summaries to the operator's chat
	SendNotice(ctx context.Context, chatID int64, text string) error

	// RenderSelectionControls posts prompt with one button per control and
	// returns the reference of the posted message
	RenderSelectionControls(ctx context.Context, chatID int64, prompt string, controls []Control) (int, error)

	// AppendControl adds a button to a message previously posted by
	// RenderSelectionControls
	AppendControl(ctx context.Context, chatID int64, messageRef int, control Control) error

	// ReleaseControls tells the gateway the message will not be edited again
	ReleaseControls(chatID int64, messageRef int)

	AcknowledgeClick(ctx context.Context, clickID, feedback string) error
}
