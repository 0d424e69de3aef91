package bot

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"broadcaster/internal/gateway"
	"broadcaster/internal/models"
)

var confirmControl = gateway.Control{Label: "✅ Send message", Data: confirmData}

// CandidateControls builds one selection button per candidate.
//
// Labeling rules:
// 1. The first name is used when known
// 2. Otherwise the @handle, otherwise "ID <n>"
// 3. Admins are prefixed with a crown
func CandidateControls(candidates []models.Candidate) []gateway.Control {
	return lo.Map(candidates, func(c models.Candidate, _ int) gateway.Control {
		return gateway.Control{
			Label: candidateLabel(c),
			Data:  selectData(c.AccountID),
		}
	})
}

func candidateLabel(c models.Candidate) string {
	if c.IsAdmin {
		return "👑 " + c.Label()
	}
	return "👤 " + c.Label()
}

// FormatSummary renders the outcome of a fan-out for the operator
func FormatSummary(report models.DeliveryReport) string {
	var text strings.Builder
	text.WriteString("📬 Broadcast finished\n\n")
	text.WriteString(fmt.Sprintf("✅ Delivered: %d\n", report.Delivered))
	text.WriteString(fmt.Sprintf("❌ Failed: %d", report.Failed))
	if report.Failed > 0 {
		text.WriteString("\n\nRecipients who never started a chat with the bot or blocked it cannot be reached.")
	}
	return text.String()
}
