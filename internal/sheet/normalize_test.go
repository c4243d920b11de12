package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fm-control/internal/models"
)

const assetsFixture = `[
	{"ID": 7, "assestTag": "AC-101", "brandName": "Gree", "Capacity( in Ton )": "2 Ton",
	 "Current Room #": "R-12", "Current Location": "Block A", "status": "maintenance"},
	{"assetTag": "AC-102", "brand": "Haier", "currentRoom": "R-2", "currentLocation": "Block B"},
	{"tag": "", "status": ""},
	{"id": "40", "tag": "AC-104", "status": "Spare", "campus": "North", "floor": 3}
]`

const statsFixture = `{
	"complaints": [
		{"rowIndex": 5, "assetTag": "AC-101", "location": "Block A", "details": "Leaking",
		 "status": "Open", "severity": "Major", "assignedTo": "Asad", "timestamp": "2026-10-01"},
		{"id": 9, "row": 6, "tag": "AC-102", "description": "Noisy", "status": "WIP", "assignedTech": "Bilal"},
		{"rowIndex": 7, "location": "Admin Panel", "assetTag": "ADMIN",
		 "details": "DEMERIT -5 pts: late for shift", "status": "Resolved", "assignedTo": "Asad"}
	],
	"checklists": [
		{"assetTag": "AC-101", "task": "Monthly Deep Clean"},
		{"tag": "AC-102"},
		{"asset_tag": "UNKNOWN", "type": "Quarterly Audit"}
	]
}`

func TestNormalizeAssets(t *testing.T) {
	assets, err := NormalizeAssets([]byte(assetsFixture))
	require.NoError(t, err)
	require.Len(t, assets, 4)

	assert.Equal(t, models.Asset{
		ID: 7, Tag: "AC-101", Brand: "Gree", Capacity: "2 Ton", Room: "R-12",
		Location: "Block A", Campus: "Main", Floor: "G",
		Status: models.AssetMaintenance, Zone: models.ZoneA,
	}, assets[0])

	assert.Equal(t, models.Asset{
		ID: 2, Tag: "AC-102", Brand: "Haier", Capacity: "1.5 Ton", Room: "R-2",
		Location: "Block B", Campus: "Main", Floor: "G",
		Status: models.AssetActive, Zone: models.ZoneB,
	}, assets[1])

	// blank columns fall through to defaults
	assert.Equal(t, 3, assets[2].ID)
	assert.Equal(t, "AC-2", assets[2].Tag)
	assert.Equal(t, "Elite FM", assets[2].Brand)
	assert.Equal(t, models.AssetActive, assets[2].Status)
	assert.Equal(t, models.ZoneC, assets[2].Zone)

	assert.Equal(t, 40, assets[3].ID)
	assert.Equal(t, "North", assets[3].Campus)
	assert.Equal(t, "3", assets[3].Floor)
	assert.Equal(t, models.AssetSpare, assets[3].Status)
	assert.Equal(t, models.ZoneD, assets[3].Zone)
}

func TestNormalizeAssets_EdgeCases(t *testing.T) {
	assets, err := NormalizeAssets([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, assets)

	_, err = NormalizeAssets([]byte(`{"error": "quota"}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = NormalizeAssets([]byte(`<html>`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParseStats(t *testing.T) {
	stats, err := ParseStats([]byte(statsFixture))
	require.NoError(t, err)
	require.Len(t, stats.Tickets, 3)
	assert.True(t, stats.HasHistory)
	assert.Len(t, stats.History, 3)

	first := stats.Tickets[0]
	assert.Equal(t, 5, first.ID)
	require.NotNil(t, first.RowIndex)
	assert.Equal(t, 5, *first.RowIndex)
	assert.Equal(t, models.SeverityMajor, first.Severity)
	assert.Equal(t, models.TicketOpen, first.Status)
	assert.Equal(t, "Asad", first.AssignedTo)

	second := stats.Tickets[1]
	assert.Equal(t, 9, second.ID)
	require.NotNil(t, second.RowIndex)
	assert.Equal(t, 6, *second.RowIndex)
	assert.Equal(t, "AC-102", second.AssetTag)
	assert.Equal(t, "Noisy", second.Details)
	assert.Equal(t, models.TicketInProgress, second.Status)
	assert.Equal(t, models.SeverityMinor, second.Severity)
	assert.Equal(t, "Bilal", second.AssignedTo)

	assert.Equal(t, models.DailyRoutine, stats.History[1].Task)
}

func TestParseStats_HistoryFallbacks(t *testing.T) {
	stats, err := ParseStats([]byte(`{"complaints": [], "history": [{"tag": "AC-1"}]}`))
	require.NoError(t, err)
	assert.True(t, stats.HasHistory)
	assert.Len(t, stats.History, 1)

	stats, err = ParseStats([]byte(`{"complaints": []}`))
	require.NoError(t, err)
	assert.False(t, stats.HasHistory)

	// an empty list still replaces the checked set
	stats, err = ParseStats([]byte(`{"checklists": []}`))
	require.NoError(t, err)
	assert.True(t, stats.HasHistory)

	_, err = ParseStats([]byte(`{"complaints": "none"}`))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = ParseStats([]byte(`[]`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestBuildSnapshot(t *testing.T) {
	assets, err := NormalizeAssets([]byte(assetsFixture))
	require.NoError(t, err)
	stats, err := ParseStats([]byte(statsFixture))
	require.NoError(t, err)

	snap := BuildSnapshot(assets, stats)

	require.Len(t, snap.Tickets, 2, "audit rows are not fault tickets")
	assert.Equal(t, 7, snap.Tickets[0].AssetID)
	assert.Equal(t, 2, snap.Tickets[1].AssetID)
	for _, tk := range snap.Tickets {
		assert.False(t, tk.IsAudit())
	}

	require.Len(t, snap.Demerits, 1)
	d := snap.Demerits[0]
	assert.Equal(t, "Asad", d.Technician)
	assert.Equal(t, 5, d.Points)
	assert.Equal(t, "late for shift", d.Reason)
	assert.True(t, d.Closed)

	assert.Equal(t, map[string]bool{
		"7-Monthly Deep Clean": true,
		"2-Daily Routine":      true,
	}, snap.Checked)
}

func TestNormalizeTicketStatus(t *testing.T) {
	tests := map[string]models.TicketStatus{
		"":            models.TicketOpen,
		"Open":        models.TicketOpen,
		"In Progress": models.TicketInProgress,
		"wip":         models.TicketInProgress,
		"Closed":      models.TicketResolved,
		"resolved":    models.TicketResolved,
		"weird":       models.TicketOpen,
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeTicketStatus(in), "status %q", in)
	}
}
