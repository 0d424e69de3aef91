package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"broadcaster/internal/models"
)

const busyFeedback = "⏳ Still working on your previous request"

// handleSelect adds a candidate to the selection
func (b *Bot) handleSelect(ctx context.Context, session *BroadcastSession, e SelectEvent) {
	candidate, ok := session.Candidates[e.CandidateID]
	if !ok {
		b.acknowledge(ctx, e.ClickID, "")
		return
	}

	if session.Select(candidate.AccountID) {
		b.acknowledge(ctx, e.ClickID, fmt.Sprintf("✅ Added %s", candidate.Label()))
	} else {
		b.acknowledge(ctx, e.ClickID, fmt.Sprintf("%s is already selected", candidate.Label()))
	}

	if session.ConfirmControlRendered {
		return
	}
	if err := b.gateway.AppendControl(ctx, session.ChatID, session.ControlsMessageID, confirmControl); err != nil {
		// Retried on the next selection
		b.logger.Warn("Failed to append confirm control",
			append(session.logFields(), zap.Error(err))...,
		)
		return
	}
	session.ConfirmControlRendered = true
}

// handleConfirm delivers the message to every selected recipient and ends the session
func (b *Bot) handleConfirm(ctx context.Context, slot *operatorSlot, session *BroadcastSession, e ConfirmEvent) {
	if len(session.Selected) == 0 {
		b.logger.Debug("Confirm rejected", append(session.logFields(), zap.Error(ErrEmptySelection))...)
		b.acknowledge(ctx, e.ClickID, "⚠️ Select at least one recipient first")
		return
	}

	b.acknowledge(ctx, e.ClickID, "📤 Sending...")

	report := b.deliver(ctx, session)
	b.logger.Info("Broadcast delivered",
		append(session.logFields(),
			zap.Int64("group_id", session.TargetGroupID),
			zap.Int("delivered", report.Delivered),
			zap.Int("failed", report.Failed),
		)...,
	)

	b.sendNotice(ctx, session.ChatID, FormatSummary(report))
	b.endSession(slot)
}

// deliver sends the message body to each selected recipient independently.
// The loop is not interrupted by cancellation of ctx.
func (b *Bot) deliver(ctx context.Context, session *BroadcastSession) models.DeliveryReport {
	ctx = context.WithoutCancel(ctx)

	var report models.DeliveryReport
	for _, accountID := range session.Selected {
		if err := b.gateway.SendDirect(ctx, accountID, session.MessageBody); err != nil {
			report.Failed++
			b.logger.Warn("Failed to deliver broadcast",
				append(session.logFields(),
					zap.Error(err),
					zap.Int64("account_id", accountID),
				)...,
			)
			continue
		}
		report.Delivered++
	}
	return report
}
