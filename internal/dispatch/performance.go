package dispatch

import (
	"sort"

	"github.com/ukydev/fm-control/internal/models"
)

// ApplyPerformance returns a copy of techs with merit and demerit recomputed.
// Merit counts resolved fault tickets; demerit sums the points of audit
// records. Bonus points and attendance are left as they are.
func ApplyPerformance(techs []models.Technician, tickets []models.Ticket, demerits []models.Demerit) []models.Technician {
	merit := make(map[string]int)
	for _, t := range tickets {
		if t.IsAudit() || t.Status != models.TicketResolved {
			continue
		}
		merit[t.AssignedTo]++
	}

	demerit := make(map[string]int)
	for _, d := range demerits {
		demerit[d.Technician] += d.Points
	}

	out := make([]models.Technician, len(techs))
	for i, t := range techs {
		t.Merit = merit[t.Name]
		t.Demerit = demerit[t.Name]
		out[i] = t
	}
	return out
}

// Rank orders technicians by score, highest first. Equal scores keep
// roster order.
func Rank(techs []models.Technician) []models.RankedTechnician {
	ranked := make([]models.RankedTechnician, len(techs))
	for i, t := range techs {
		ranked[i] = models.RankedTechnician{Technician: t, Score: t.Score()}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
