package sheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ukydev/fm-control/internal/models"
)

// AuditAssetTag is the asset tag written on Admin Panel audit rows.
const AuditAssetTag = "ADMIN"

var pointsPattern = regexp.MustCompile(`\d+`)

// FormatDemerit encodes a point deduction into ticket details text.
func FormatDemerit(points int, reason string) string {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return fmt.Sprintf("DEMERIT -%d pts", points)
	}
	return fmt.Sprintf("DEMERIT -%d pts: %s", points, reason)
}

// ParseDemeritPoints extracts the deduction from audit details: the first
// run of digits. ok is false when the text carries no number.
func ParseDemeritPoints(details string) (points int, ok bool) {
	m := pointsPattern.FindString(details)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

// DemeritFromTicket turns an Admin Panel ticket into an audit record.
func DemeritFromTicket(t models.Ticket) models.Demerit {
	points, _ := ParseDemeritPoints(t.Details)
	reason := t.Details
	if strings.HasPrefix(reason, "DEMERIT") {
		reason = ""
		if i := strings.Index(t.Details, ": "); i >= 0 {
			reason = t.Details[i+2:]
		}
	}
	return models.Demerit{
		TicketID:   t.ID,
		RowIndex:   t.RowIndex,
		Technician: t.AssignedTo,
		Points:     points,
		Reason:     reason,
		Timestamp:  t.Timestamp,
		Closed:     t.Status == models.TicketResolved,
	}
}
