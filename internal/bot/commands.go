package bot

import (
	"context"
)

// handleStart shows welcome message and available commands
func (b *Bot) handleStart(ctx context.Context, e TextEvent) {
	text := `Welcome to the Broadcast Bot! 📣

Available commands:
/startmsg - Broadcast a message to members of a group you administer
/startmsg <group id> - Same, skipping the group id prompt
/cancel - Cancel the broadcast in progress

Recipients must have sent me a message before, or be admins of the group.`

	b.sendNotice(ctx, e.ChatID, text)
}

// handleStartBroadcast initiates a broadcast session, replacing any previous one
func (b *Bot) handleStartBroadcast(ctx context.Context, e TextEvent) {
	slot := b.sessions.acquire(e.OperatorID)
	defer slot.release()

	if previous := slot.session; previous != nil {
		b.logger.Info("Discarding previous broadcast session", previous.logFields()...)
		b.endSession(slot)
	}

	session := newBroadcastSession(e.OperatorID, e.ChatID)
	b.sessions.replace(slot, session)
	b.logger.Info("Broadcast session started", session.logFields()...)

	switch {
	case e.CommandArguments() != "":
		b.handleGroupIDConversation(ctx, slot, session, e.CommandArguments())
	case !e.Private:
		// Started inside a group: that group is the target
		b.authorizeOperator(ctx, slot, session, e.ChatID)
	default:
		b.sendNotice(ctx, e.ChatID, "🆔 Please send the id of the group you'd like to broadcast to:")
	}
}

// handleCancel destroys the caller's session
func (b *Bot) handleCancel(ctx context.Context, e TextEvent) {
	slot := b.sessions.acquire(e.OperatorID)
	defer slot.release()

	session := slot.session
	if session == nil {
		b.sendNotice(ctx, e.ChatID, "Nothing to cancel.")
		return
	}

	b.logger.Info("Broadcast session cancelled", session.logFields()...)
	b.endSession(slot)
	b.sendNotice(ctx, e.ChatID, "❎ Broadcast cancelled.")
}
