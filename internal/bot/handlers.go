package bot

import (
	"context"

	"go.uber.org/zap"
)

// Dispatch validates an inbound event and routes it
func (b *Bot) Dispatch(ctx context.Context, evt Event) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in Dispatch",
				zap.Any("panic", r),
				zap.Any("event", evt),
			)
		}
	}()

	if evt == nil {
		return
	}
	if err := b.validate.Struct(evt); err != nil {
		b.logger.Debug("Dropping malformed event",
			zap.Error(err),
			zap.Any("event", evt),
		)
		return
	}

	switch e := evt.(type) {
	case SightingEvent:
		b.directory.RecordSighting(e.AccountID, e.DisplayName, e.Handle)
	case TextEvent:
		b.handleText(ctx, e)
	case SelectEvent:
		b.handleSelectCallback(ctx, e)
	case ConfirmEvent:
		b.handleConfirmCallback(ctx, e)
	}
}

// handleText processes a single text message
func (b *Bot) handleText(ctx context.Context, e TextEvent) {
	// Commands always win over an ongoing conversation
	if e.IsCommand() {
		switch e.Command() {
		case "start", "help":
			b.handleStart(ctx, e)
		case "startmsg":
			b.handleStartBroadcast(ctx, e)
		case "cancel":
			b.handleCancel(ctx, e)
		default:
			if e.Private {
				b.sendNotice(ctx, e.ChatID, "Unknown command. Use /start to see available commands.")
			}
		}
		return
	}

	slot := b.sessions.acquire(e.OperatorID)
	defer slot.release()

	session := slot.session
	// Text from other chats is unrelated activity
	if session == nil || session.ChatID != e.ChatID {
		return
	}
	b.handleConversation(ctx, slot, session, e.Body)
}

// handleSelectCallback processes a click on a candidate button
func (b *Bot) handleSelectCallback(ctx context.Context, e SelectEvent) {
	slot, ok := b.sessions.tryAcquire(e.OperatorID)
	if !ok {
		b.acknowledge(ctx, e.ClickID, busyFeedback)
		return
	}
	defer slot.release()

	session := slot.session
	if !clickMatches(session, e.ChatID, e.MessageRef) {
		b.acknowledge(ctx, e.ClickID, "")
		return
	}
	b.handleSelect(ctx, session, e)
}

// handleConfirmCallback processes a click on the confirm button
func (b *Bot) handleConfirmCallback(ctx context.Context, e ConfirmEvent) {
	slot, ok := b.sessions.tryAcquire(e.OperatorID)
	if !ok {
		b.acknowledge(ctx, e.ClickID, busyFeedback)
		return
	}
	defer slot.release()

	session := slot.session
	if !clickMatches(session, e.ChatID, e.MessageRef) {
		b.acknowledge(ctx, e.ClickID, "")
		return
	}
	b.handleConfirm(ctx, slot, session, e)
}

// clickMatches reports whether a click belongs to the session's current keyboard
func clickMatches(session *BroadcastSession, chatID int64, messageRef int) bool {
	return session != nil &&
		session.Step == StepSelectingRecipients &&
		session.ChatID == chatID &&
		session.ControlsMessageID == messageRef
}
