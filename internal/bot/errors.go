package bot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var (
	ErrPermissionDenied      = errors.New("operator is not an admin of the group")
	ErrGroupLookupFailed     = errors.New("group lookup failed")
	ErrInvalidGroupID        = errors.New("invalid group id")
	ErrRecipientLookupFailed = errors.New("recipient lookup failed")
	ErrNoCandidates          = errors.New("no candidates in group")
	ErrEmptySelection        = errors.New("no recipients selected")
)

var groupIDPattern = regexp.MustCompile(`^-?[0-9]+$`)

// ParseGroupID parses a chat id typed by an operator. Only signed decimal
// integers are accepted; the sign carries no meaning here.
func ParseGroupID(text string) (int64, error) {
	if !groupIDPattern.MatchString(text) {
		return 0, fmt.Errorf("%w: %w %q", ErrGroupLookupFailed, ErrInvalidGroupID, text)
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %w %q", ErrGroupLookupFailed, ErrInvalidGroupID, text)
	}
	return id, nil
}

// noticeFor turns a workflow error into the text shown to the operator
func noticeFor(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return "⛔ Only group admins can broadcast to this group."
	case errors.Is(err, ErrInvalidGroupID):
		return "⚠️ That doesn't look like a group id. Group ids are numbers such as -1001234567890.\n\nStart again with /startmsg"
	case errors.Is(err, ErrGroupLookupFailed):
		return "⚠️ Could not read the admins of that group. Check the id and make sure the bot is a member, then start again with /startmsg"
	case errors.Is(err, ErrRecipientLookupFailed):
		return "⚠️ Could not load the recipients of the group. Start again with /startmsg"
	case errors.Is(err, ErrNoCandidates):
		return "⚠️ No known users available."
	default:
		return "An error occurred while processing your request. Please try again."
	}
}
