package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTechnician_Score(t *testing.T) {
	tests := []struct {
		name string
		tech Technician
		want int
	}{
		{"fresh technician", Technician{}, 100},
		{"merit only", Technician{Merit: 4}, 120},
		{"bonus and demerit", Technician{Merit: 2, BonusPoints: 10, Demerit: 7}, 113},
		{"no floor", Technician{Demerit: 250}, -150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.tech.Score()
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 100+5*tt.tech.Merit+tt.tech.BonusPoints-tt.tech.Demerit, got)
		})
	}
}

func TestZoneForIndex(t *testing.T) {
	// 8 assets: two per quartile
	want := []Zone{ZoneA, ZoneA, ZoneB, ZoneB, ZoneC, ZoneC, ZoneD, ZoneD}
	for i, z := range want {
		assert.Equal(t, z, ZoneForIndex(i, 8), "index %d", i)
	}

	// 10 assets: quartile width 2.5
	assert.Equal(t, ZoneA, ZoneForIndex(2, 10))
	assert.Equal(t, ZoneB, ZoneForIndex(3, 10))
	assert.Equal(t, ZoneD, ZoneForIndex(9, 10))

	// fewer assets than zones
	assert.Equal(t, ZoneA, ZoneForIndex(0, 1))
	assert.Equal(t, ZoneC, ZoneForIndex(1, 2))
	assert.Equal(t, ZoneA, ZoneForIndex(0, 0))
}

func TestCheckKey(t *testing.T) {
	assert.Equal(t, "12-Daily Routine", CheckKey(12, DailyRoutine))
	assert.Equal(t, "3-Quarterly Audit", CheckKey(3, QuarterlyAudit))
	assert.True(t, IsValidCategory(MonthlyDeepClean))
	assert.False(t, IsValidCategory("Weekly"))
}

func TestResolutionClass_Severity(t *testing.T) {
	assert.Equal(t, SeverityMinor, ResolutionStandard.Severity())
	assert.Equal(t, SeverityMajor, ResolutionMechanical.Severity())
	assert.Equal(t, SeverityMajor, ResolutionGasService.Severity())
	assert.False(t, ResolutionClass("Patch").IsValid())
}

func TestTicket_IsAudit(t *testing.T) {
	assert.True(t, Ticket{Location: AdminPanelLocation}.IsAudit())
	assert.False(t, Ticket{Location: "Block B"}.IsAudit())
	assert.True(t, Ticket{Status: TicketInProgress}.IsOpen())
	assert.False(t, Ticket{Status: TicketResolved}.IsOpen())
}
