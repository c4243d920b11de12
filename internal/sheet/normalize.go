package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/ukydev/fm-control/internal/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// titleCase builds a fresh Caser per call; Casers carry state and must not
// be shared between goroutines.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(s)))
}

// HistoryEntry is one row of the checklist completion log.
type HistoryEntry struct {
	AssetTag string
	Task     models.ChecklistCategory
}

// Stats is the parsed get_stats payload.
type Stats struct {
	Tickets []models.Ticket
	History []HistoryEntry
	// HasHistory is false when the payload carried neither a checklists nor
	// a history key; callers keep their previous checked set in that case.
	HasHistory bool
}

// Snapshot is the canonical state rebuilt from one sync.
type Snapshot struct {
	Assets   []models.Asset
	Tickets  []models.Ticket
	Demerits []models.Demerit
	Checked  map[string]bool
	// HasHistory mirrors Stats.HasHistory.
	HasHistory bool
}

// NormalizeAssets maps raw asset rows onto the canonical Asset shape and
// assigns zones by quartile.
func NormalizeAssets(body []byte) ([]models.Asset, error) {
	rows, err := parseArray(gjson.ParseBytes(body), body)
	if err != nil {
		return nil, err
	}

	assets := make([]models.Asset, 0, len(rows))
	for i, r := range rows {
		row := r.Map()
		status := str(row, string(models.AssetActive), "status")
		assets = append(assets, models.Asset{
			ID:       intOr(row, i+1, "id", "ID"),
			Tag:      str(row, fmt.Sprintf("AC-%d", i), "assestTag", "assetTag", "tag"),
			Brand:    str(row, "Elite FM", "brandName", "brand"),
			Capacity: str(row, "1.5 Ton", "capacity", "Capacity( in Ton )"),
			Room:     str(row, "N/A", "currentRoom", "Current Room #"),
			Location: str(row, "Campus", "currentLocation", "Current Location"),
			Campus:   str(row, "Main", "campus"),
			Floor:    str(row, "G", "floor"),
			Status:   models.AssetStatus(titleCase(status)),
			Zone:     models.ZoneForIndex(i, len(rows)),
		})
	}
	return assets, nil
}

// ParseStats parses the get_stats payload.
func ParseStats(body []byte) (*Stats, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformed
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, ErrMalformed
	}

	stats := &Stats{}

	complaints := root.Get("complaints")
	if complaints.Exists() && complaints.Type != gjson.Null {
		if !complaints.IsArray() {
			return nil, fmt.Errorf("%w: complaints is not a list", ErrMalformed)
		}
		for i, r := range complaints.Array() {
			stats.Tickets = append(stats.Tickets, normalizeTicket(r.Map(), i))
		}
	}

	history := root.Get("checklists")
	if !history.Exists() || history.Type == gjson.Null {
		history = root.Get("history")
	}
	if history.Exists() && history.Type != gjson.Null {
		if !history.IsArray() {
			return nil, fmt.Errorf("%w: checklist history is not a list", ErrMalformed)
		}
		stats.HasHistory = true
		for _, r := range history.Array() {
			row := r.Map()
			stats.History = append(stats.History, HistoryEntry{
				AssetTag: str(row, "", "assetTag", "tag", "asset_tag"),
				Task:     models.ChecklistCategory(str(row, string(models.DailyRoutine), "task", "task_type", "type")),
			})
		}
	}

	return stats, nil
}

// BuildSnapshot joins assets and stats: it resolves ticket asset ids by tag,
// moves Admin Panel entries into demerit records and rebuilds the checked set.
func BuildSnapshot(assets []models.Asset, stats *Stats) Snapshot {
	byTag := make(map[string]models.Asset, len(assets))
	for _, a := range assets {
		if _, dup := byTag[a.Tag]; !dup {
			byTag[a.Tag] = a
		}
	}

	snap := Snapshot{
		Assets:     assets,
		Tickets:    []models.Ticket{},
		Demerits:   []models.Demerit{},
		Checked:    make(map[string]bool),
		HasHistory: stats.HasHistory,
	}

	for _, t := range stats.Tickets {
		if t.IsAudit() {
			snap.Demerits = append(snap.Demerits, DemeritFromTicket(t))
			continue
		}
		if t.AssetID == 0 {
			if a, ok := byTag[t.AssetTag]; ok {
				t.AssetID = a.ID
			}
		}
		snap.Tickets = append(snap.Tickets, t)
	}

	for _, h := range stats.History {
		if a, ok := byTag[h.AssetTag]; ok {
			snap.Checked[models.CheckKey(a.ID, h.Task)] = true
		}
	}
	return snap
}

func normalizeTicket(row map[string]gjson.Result, i int) models.Ticket {
	t := models.Ticket{
		AssetTag:   str(row, "", "assetTag", "assestTag", "tag", "asset_tag"),
		AssetID:    intOr(row, 0, "assetId", "asset_id"),
		Location:   str(row, "", "location"),
		Details:    str(row, "", "details", "description", "complaint"),
		Status:     normalizeTicketStatus(str(row, "", "status")),
		Severity:   normalizeSeverity(str(row, "", "severity")),
		AssignedTo: str(row, "Admin", "assignedTo", "assignedTech", "technician", "tech"),
		Timestamp:  str(row, "", "timestamp", "date"),
	}
	if v, ok := pick(row, "rowIndex", "row", "row_index"); ok {
		if n := int(v.Int()); n > 0 {
			t.RowIndex = &n
		}
	}
	fallback := i + 1
	if t.RowIndex != nil {
		fallback = *t.RowIndex
	}
	t.ID = intOr(row, fallback, "id", "ID")
	return t
}

func normalizeTicketStatus(s string) models.TicketStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in progress", "in_progress", "inprogress", "wip":
		return models.TicketInProgress
	case "resolved", "closed", "done", "completed":
		return models.TicketResolved
	default:
		return models.TicketOpen
	}
}

func normalizeSeverity(s string) models.Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "major", "high", "critical":
		return models.SeverityMajor
	default:
		return models.SeverityMinor
	}
}

func parseArray(root gjson.Result, raw []byte) ([]gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrMalformed
	}
	if root.Type == gjson.Null {
		return nil, nil
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a list", ErrMalformed)
	}
	return root.Array(), nil
}

// pick returns the first alias holding a non-empty value. Empty strings,
// zero, false and null are skipped so that a blank column falls through to
// the next alias.
func pick(row map[string]gjson.Result, keys ...string) (gjson.Result, bool) {
	for _, k := range keys {
		v, ok := row[k]
		if !ok {
			continue
		}
		switch v.Type {
		case gjson.Null, gjson.False:
			continue
		case gjson.String:
			if strings.TrimSpace(v.Str) == "" {
				continue
			}
		case gjson.Number:
			if v.Num == 0 {
				continue
			}
		}
		return v, true
	}
	return gjson.Result{}, false
}

func str(row map[string]gjson.Result, def string, keys ...string) string {
	v, ok := pick(row, keys...)
	if !ok {
		return def
	}
	if v.Type == gjson.String {
		return strings.TrimSpace(v.Str)
	}
	return v.Raw
}

func intOr(row map[string]gjson.Result, def int, keys ...string) int {
	v, ok := pick(row, keys...)
	if !ok {
		return def
	}
	if v.Type == gjson.String {
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil || n == 0 {
			return def
		}
		return n
	}
	if n := int(v.Int()); n != 0 {
		return n
	}
	return def
}
