package bot

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"broadcaster/internal/models"
)

// handleConversation advances the session with text typed by its operator
func (b *Bot) handleConversation(ctx context.Context, slot *operatorSlot, session *BroadcastSession, text string) {
	switch session.Step {
	case StepAwaitingGroupID:
		b.handleGroupIDConversation(ctx, slot, session, text)
	case StepAwaitingMessageBody:
		b.handleMessageBodyConversation(ctx, slot, session, text)
	default:
		// Selection happens through buttons, text is ignored
	}
}

// handleGroupIDConversation parses the group id and checks the operator against it
func (b *Bot) handleGroupIDConversation(ctx context.Context, slot *operatorSlot, session *BroadcastSession, text string) {
	groupID, err := ParseGroupID(text)
	if err != nil {
		b.abort(ctx, slot, session, err)
		return
	}
	b.authorizeOperator(ctx, slot, session, groupID)
}

// authorizeOperator moves the session on only if its operator administers groupID
func (b *Bot) authorizeOperator(ctx context.Context, slot *operatorSlot, session *BroadcastSession, groupID int64) {
	session.TargetGroupID = groupID

	admins, err := b.gateway.FetchAdmins(ctx, groupID)
	if err != nil {
		b.abort(ctx, slot, session, fmt.Errorf("%w: %w", ErrGroupLookupFailed, err))
		return
	}

	isAdmin := lo.ContainsBy(admins, func(m models.Member) bool {
		return m.AccountID == session.OperatorID
	})
	if !isAdmin {
		b.abort(ctx, slot, session, ErrPermissionDenied)
		return
	}

	session.Step = StepAwaitingMessageBody
	b.logger.Info("Operator verified as group admin",
		append(session.logFields(), zap.Int64("group_id", groupID))...,
	)
	b.sendNotice(ctx, session.ChatID, "📝 Please send the message you'd like to broadcast:")
}

// handleMessageBodyConversation stores the message and shows the candidates
func (b *Bot) handleMessageBodyConversation(ctx context.Context, slot *operatorSlot, session *BroadcastSession, text string) {
	session.MessageBody = text

	resolution, err := b.resolver.Resolve(ctx, session.TargetGroupID)
	if err != nil {
		b.abort(ctx, slot, session, fmt.Errorf("%w: %w", ErrRecipientLookupFailed, err))
		return
	}
	if resolution.Len() == 0 {
		b.abort(ctx, slot, session, ErrNoCandidates)
		return
	}

	candidates := resolution.All()
	session.setCandidates(candidates)

	ref, err := b.gateway.RenderSelectionControls(ctx, session.ChatID,
		"👤 Select user(s) to send the message to:", CandidateControls(candidates))
	if err != nil {
		b.abort(ctx, slot, session, err)
		return
	}

	session.ControlsMessageID = ref
	session.Step = StepSelectingRecipients
	b.logger.Info("Showing broadcast candidates",
		append(session.logFields(),
			zap.Int64("group_id", session.TargetGroupID),
			zap.Int("candidate_count", len(candidates)),
		)...,
	)
}
