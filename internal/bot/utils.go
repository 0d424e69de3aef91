package bot

import (
	"context"

	"go.uber.org/zap"
)

// sendNotice posts text to a chat, logging failures
func (b *Bot) sendNotice(ctx context.Context, chatID int64, text string) {
	if err := b.gateway.SendNotice(ctx, chatID, text); err != nil {
		b.logger.Warn("Failed to send notice",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

// acknowledge answers a button click, logging failures
func (b *Bot) acknowledge(ctx context.Context, clickID, feedback string) {
	if err := b.gateway.AcknowledgeClick(ctx, clickID, feedback); err != nil {
		b.logger.Warn("Failed to acknowledge click",
			zap.Error(err),
			zap.String("click_id", clickID),
		)
	}
}

// abort reports err to the operator and destroys the session
func (b *Bot) abort(ctx context.Context, slot *operatorSlot, session *BroadcastSession, err error) {
	b.logger.Info("Broadcast session aborted",
		append(session.logFields(),
			zap.Error(err),
			zap.Int64("group_id", session.TargetGroupID),
		)...,
	)
	b.sendNotice(ctx, session.ChatID, noticeFor(err))
	b.endSession(slot)
}

// endSession destroys the session held in slot and releases its controls
func (b *Bot) endSession(slot *operatorSlot) {
	session := slot.session
	if session == nil {
		return
	}
	if session.ControlsMessageID != 0 {
		b.gateway.ReleaseControls(session.ChatID, session.ControlsMessageID)
	}
	b.sessions.clear(slot)
}
