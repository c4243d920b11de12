package control

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fm-control/internal/config"
	"github.com/ukydev/fm-control/internal/events"
	"github.com/ukydev/fm-control/internal/models"
	"github.com/ukydev/fm-control/internal/sheet"
)

// zoneRoster has one technician in zone A, two in zone B and one in zone C.
func zoneRoster() config.Roster {
	r := config.DefaultRoster()
	r.Technicians = []config.RosterEntry{
		{Name: "Ali", Zone: models.ZoneA},
		{Name: "Bina", Zone: models.ZoneB},
		{Name: "Omar", Zone: models.ZoneB},
		{Name: "Dana", Zone: models.ZoneC},
	}
	return r
}

// openTickets returns one open fault ticket per name.
func openTickets(names ...string) []models.Ticket {
	tickets := make([]models.Ticket, len(names))
	for i, n := range names {
		tickets[i] = models.Ticket{
			ID:         i + 1,
			RowIndex:   row(i + 2),
			AssetTag:   "AC-101",
			AssetID:    1,
			Location:   "Block 1",
			Details:    "Not cooling",
			Status:     models.TicketOpen,
			AssignedTo: n,
		}
	}
	return tickets
}

func setPresent(c *Controller, name string, present bool) {
	c.techs[c.findTechLocked(name)].IsPresent = present
}

func expectComplaint(f *fixture, assignee string, severity models.Severity) {
	f.remote.On("Complain", mock.Anything, mock.MatchedBy(func(c sheet.Complaint) bool {
		return c.AssignedTech == assignee && c.Severity == severity &&
			c.AssetTag == "AC-103" && c.Location == "Block 1"
	})).Return(nil).Once()
}

func TestCreateTicket_PrefersLeastLoadedInZone(t *testing.T) {
	f := newFixture(t, zoneRoster())
	f.offline()
	f.seed(testAssets(), openTickets("Ali", "Ali", "Bina", "Bina", "Bina", "Omar", "Dana"))
	expectComplaint(f, "Omar", models.SeverityMinor)

	ticket, err := f.ctrl.CreateTicket(context.Background(), models.NewTicket{AssetID: 3, Details: " Water leaking "})
	require.NoError(t, err)

	assert.Equal(t, "Omar", ticket.AssignedTo)
	assert.Equal(t, 8, ticket.ID)
	assert.Equal(t, "Water leaking", ticket.Details)
	assert.Equal(t, models.TicketOpen, ticket.Status)
	assert.Equal(t, models.SeverityMinor, ticket.Severity)
	assert.Equal(t, "2025-03-14T09:30:00Z", ticket.Timestamp)
	assert.Contains(t, f.ctrl.Tickets(true), ticket)

	f.remote.AssertExpectations(t)
	f.publisher.AssertCalled(t, "Publish", events.TopicTickets, events.TicketCreated, ticket)
	f.remote.AssertCalled(t, "FetchAssets", mock.Anything)
}

func TestCreateTicket_FallsBackToGlobalLeastLoaded(t *testing.T) {
	f := newFixture(t, zoneRoster())
	f.offline()
	f.seed(testAssets(), openTickets("Ali", "Ali", "Dana"))
	setPresent(f.ctrl, "Bina", false)
	setPresent(f.ctrl, "Omar", false)
	expectComplaint(f, "Dana", models.SeverityMinor)

	ticket, err := f.ctrl.CreateTicket(context.Background(), models.NewTicket{AssetID: 3, Details: "Tripping"})
	require.NoError(t, err)
	assert.Equal(t, "Dana", ticket.AssignedTo)
}

func TestCreateTicket_NobodyPresent(t *testing.T) {
	f := newFixture(t, zoneRoster())
	f.offline()
	f.seed(testAssets(), nil)
	for _, n := range []string{"Ali", "Bina", "Omar", "Dana"} {
		setPresent(f.ctrl, n, false)
	}
	expectComplaint(f, "Admin", models.SeverityMajor)

	ticket, err := f.ctrl.CreateTicket(context.Background(), models.NewTicket{
		AssetID:  3,
		Details:  "Compressor dead",
		Severity: models.SeverityMajor,
	})
	require.NoError(t, err)
	assert.Equal(t, "Admin", ticket.AssignedTo)
}

func TestCreateTicket_AuditEntriesDoNotCountAsLoad(t *testing.T) {
	f := newFixture(t, zoneRoster())
	f.offline()
	tickets := openTickets("Bina")
	for i := 0; i < 3; i++ {
		tickets = append(tickets, models.Ticket{
			ID:         10 + i,
			Location:   models.AdminPanelLocation,
			Details:    sheet.FormatDemerit(5, "Late"),
			Status:     models.TicketOpen,
			AssignedTo: "Omar",
		})
	}
	f.seed(testAssets(), tickets)
	expectComplaint(f, "Omar", models.SeverityMinor)

	ticket, err := f.ctrl.CreateTicket(context.Background(), models.NewTicket{AssetID: 3, Details: "Noise"})
	require.NoError(t, err)
	assert.Equal(t, "Omar", ticket.AssignedTo)
}

func TestCreateTicket_AISuggestion(t *testing.T) {
	t.Run("present suggestion is used and high priority escalates", func(t *testing.T) {
		f := newFixture(t, zoneRoster())
		f.offline()
		f.seed(testAssets(), nil)
		setPresent(f.ctrl, "Dana", false)
		f.suggester.suggestion = models.Suggestion{SuggestedTech: "Ali", Priority: models.PriorityHigh}
		expectComplaint(f, "Ali", models.SeverityMajor)

		ticket, err := f.ctrl.CreateTicket(context.Background(), models.NewTicket{AssetID: 3, Details: "Smoke", UseAI: true})
		require.NoError(t, err)
		assert.Equal(t, "Ali", ticket.AssignedTo)
		assert.Equal(t, models.SeverityMajor, ticket.Severity)
		assert.Equal(t, []string{"Ali", "Bina", "Omar"}, f.suggester.present)
	})

	t.Run("absent suggestion falls back to heuristic", func(t *testing.T) {
		f := newFixture(t, zoneRoster())
		f.offline()
		f.seed(testAssets(), openTickets("Bina"))
		setPresent(f.ctrl, "Ali", false)
		f.suggester.suggestion = models.Suggestion{SuggestedTech: "Ali", Priority: models.PriorityLow}
		expectComplaint(f, "Omar", models.SeverityMinor)

		ticket, err := f.ctrl.CreateTicket(context.Background(), models.NewTicket{AssetID: 3, Details: "Drip", UseAI: true})
		require.NoError(t, err)
		assert.Equal(t, "Omar", ticket.AssignedTo)
	})

	t.Run("unknown suggestion falls back to heuristic", func(t *testing.T) {
		f := newFixture(t, zoneRoster())
		f.offline()
		f.seed(testAssets(), nil)
		f.suggester.suggestion = models.Suggestion{SuggestedTech: "Zed", Priority: models.PriorityMedium}
		expectComplaint(f, "Bina", models.SeverityMinor)

		ticket, err := f.ctrl.CreateTicket(context.Background(), models.NewTicket{AssetID: 3, Details: "Drip", UseAI: true})
		require.NoError(t, err)
		assert.Equal(t, "Bina", ticket.AssignedTo)
	})

	t.Run("explicit assignee wins", func(t *testing.T) {
		f := newFixture(t, zoneRoster())
		f.offline()
		f.seed(testAssets(), nil)
		f.suggester.suggestion = models.Suggestion{SuggestedTech: "Ali", Priority: models.PriorityHigh}
		expectComplaint(f, "Dana", models.SeverityMajor)

		ticket, err := f.ctrl.CreateTicket(context.Background(), models.NewTicket{
			AssetID:    3,
			Details:    "Smoke",
			AssignedTo: "Dana",
			UseAI:      true,
		})
		require.NoError(t, err)
		assert.Equal(t, "Dana", ticket.AssignedTo)
	})
}

func TestCreateTicket_Validation(t *testing.T) {
	f := newFixture(t, zoneRoster())
	f.seed(testAssets(), nil)

	_, err := f.ctrl.CreateTicket(context.Background(), models.NewTicket{AssetID: 3, Details: "   "})
	assert.ErrorIs(t, err, ErrInvalidTicket)

	_, err = f.ctrl.CreateTicket(context.Background(), models.NewTicket{AssetID: 3, Details: "x", Severity: "Catastrophic"})
	assert.ErrorIs(t, err, ErrInvalidTicket)

	_, err = f.ctrl.CreateTicket(context.Background(), models.NewTicket{AssetID: 99, Details: "x"})
	assert.ErrorIs(t, err, ErrAssetNotFound)

	f.remote.AssertNotCalled(t, "Complain", mock.Anything, mock.Anything)
}

func TestCreateTicket_RemoteFailure(t *testing.T) {
	f := newFixture(t, zoneRoster())
	f.seed(testAssets(), nil)
	f.remote.On("Complain", mock.Anything, mock.Anything).Return(sheet.ErrRejected)

	_, err := f.ctrl.CreateTicket(context.Background(), models.NewTicket{AssetID: 3, Details: "Leak"})
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.ErrorIs(t, err, sheet.ErrRejected)
	assert.Empty(t, f.ctrl.Tickets(false))
	f.publisher.AssertNotCalled(t, "Publish", events.TopicTickets, events.TicketCreated, mock.Anything)
}

func TestResolveTicket_GasServiceFloorsAtZero(t *testing.T) {
	f := newFixture(t, config.DefaultRoster())
	f.offline()
	tickets := openTickets("Bilal")
	tickets[0].RowIndex = row(7)
	f.seed(testAssets(), tickets)
	f.remote.On("CloseComplaint", mock.Anything, mock.MatchedBy(func(c sheet.Closure) bool {
		return c.RowIndex == 7 && c.Technician == "Bilal" &&
			strings.HasPrefix(c.Details, "[Gas Service/Major] [R22 50.00kg]")
	})).Return(nil).Once()

	ticket, err := f.ctrl.ResolveTicket(context.Background(), 1, models.Resolution{
		TechnicianName: "Bilal",
		Class:          models.ResolutionGasService,
		Details:        "Recharged",
		Gas:            "R22",
		Amount:         50,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TicketResolved, ticket.Status)

	inv := f.ctrl.Inventory()
	assert.Equal(t, models.InventoryItem{Name: "R22", Kg: 0, Type: models.GasAC}, inv[0])
	assert.Equal(t, 38.0, inv[1].Kg)
	f.inventory.AssertCalled(t, "SaveItem", mock.Anything, models.InventoryItem{Name: "R22", Kg: 0, Type: models.GasAC})
	f.remote.AssertExpectations(t)
}

func TestResolveTicket_GasMatchesBySubstring(t *testing.T) {
	f := newFixture(t, config.DefaultRoster())
	f.offline()
	f.seed(testAssets(), openTickets("Bilal"))
	f.remote.On("CloseComplaint", mock.Anything, mock.Anything).Return(nil)

	_, err := f.ctrl.ResolveTicket(context.Background(), 1, models.Resolution{
		TechnicianName: "Bilal",
		Class:          models.ResolutionGasService,
		Gas:            "R410",
		Amount:         2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 35.5, f.ctrl.Inventory()[1].Kg)
}

func TestResolveTicket_UnknownGasLeavesStock(t *testing.T) {
	f := newFixture(t, config.DefaultRoster())
	f.offline()
	f.seed(testAssets(), openTickets("Bilal"))
	f.remote.On("CloseComplaint", mock.Anything, mock.Anything).Return(nil)
	before := f.ctrl.Inventory()

	_, err := f.ctrl.ResolveTicket(context.Background(), 1, models.Resolution{
		TechnicianName: "Bilal",
		Class:          models.ResolutionGasService,
		Gas:            "R999",
		Amount:         1,
	})
	require.NoError(t, err)
	assert.Equal(t, before, f.ctrl.Inventory())
	f.inventory.AssertNotCalled(t, "SaveItem", mock.Anything, mock.Anything)
}

func TestResolveTicket_UpdatesMerit(t *testing.T) {
	f := newFixture(t, config.DefaultRoster())
	f.offline()
	f.seed(testAssets(), openTickets("Saboor"))
	f.remote.On("CloseComplaint", mock.Anything, mock.Anything).Return(nil)

	_, err := f.ctrl.ResolveTicket(context.Background(), 1, models.Resolution{
		TechnicianName: "Saboor",
		Class:          models.ResolutionStandard,
		Details:        "Filter cleaned",
	})
	require.NoError(t, err)

	top := f.ctrl.Technicians()[0]
	assert.Equal(t, "Saboor", top.Name)
	assert.Equal(t, 1, top.Merit)
	assert.Equal(t, 105, top.Score)
	f.publisher.AssertCalled(t, "Publish", events.TopicTickets, events.TicketResolved, mock.Anything)
}

func TestResolveTicket_Rejections(t *testing.T) {
	f := newFixture(t, config.DefaultRoster())
	tickets := openTickets("Bilal", "Asad", "Taimoor")
	tickets[1].Status = models.TicketResolved
	tickets[2].RowIndex = nil
	f.seed(testAssets(), tickets)
	ok := models.Resolution{TechnicianName: "Bilal", Class: models.ResolutionStandard}

	_, err := f.ctrl.ResolveTicket(context.Background(), 99, ok)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	_, err = f.ctrl.ResolveTicket(context.Background(), 2, ok)
	assert.ErrorIs(t, err, ErrTicketResolved)

	_, err = f.ctrl.ResolveTicket(context.Background(), 3, ok)
	assert.ErrorIs(t, err, ErrMissingRowIndex)

	for name, res := range map[string]models.Resolution{
		"no technician":  {Class: models.ResolutionStandard},
		"unknown class":  {TechnicianName: "Bilal", Class: "Magic"},
		"gas without kg": {TechnicianName: "Bilal", Class: models.ResolutionGasService, Gas: "R22"},
		"kg without gas": {TechnicianName: "Bilal", Class: models.ResolutionGasService, Amount: 2},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.ctrl.ResolveTicket(context.Background(), 1, res)
			assert.ErrorIs(t, err, ErrInvalidResolution)
		})
	}

	f.remote.AssertNotCalled(t, "CloseComplaint", mock.Anything, mock.Anything)
}

func TestResolveTicket_RemoteFailure(t *testing.T) {
	f := newFixture(t, config.DefaultRoster())
	f.seed(testAssets(), openTickets("Bilal"))
	f.remote.On("CloseComplaint", mock.Anything, mock.Anything).Return(errors.New("timeout"))

	_, err := f.ctrl.ResolveTicket(context.Background(), 1, models.Resolution{
		TechnicianName: "Bilal",
		Class:          models.ResolutionGasService,
		Gas:            "R22",
		Amount:         1,
	})
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, models.TicketOpen, f.ctrl.Tickets(false)[0].Status)
	assert.Equal(t, 45.0, f.ctrl.Inventory()[0].Kg)
}

func TestClosureDetails(t *testing.T) {
	assert.Equal(t, "[Standard/Minor] Filter cleaned", closureDetails(models.Resolution{
		Class:   models.ResolutionStandard,
		Details: "Filter cleaned",
	}))
	assert.Equal(t, "[Mechanical/Major]", closureDetails(models.Resolution{Class: models.ResolutionMechanical}))
	assert.Equal(t, "[Gas Service/Major] [R32 1.25kg] Topped up", closureDetails(models.Resolution{
		Class:   models.ResolutionGasService,
		Details: "Topped up",
		Gas:     "R32",
		Amount:  1.25,
	}))
}

func TestSuggest(t *testing.T) {
	f := newFixture(t, config.DefaultRoster())
	setPresent(f.ctrl, "Asad", false)
	f.suggester.suggestion = models.Suggestion{SuggestedTech: "Taimoor", Priority: models.PriorityLow, Explanation: "nearest"}

	s, err := f.ctrl.Suggest(context.Background(), "Fan noise")
	require.NoError(t, err)
	assert.Equal(t, "Taimoor", s.SuggestedTech)
	assert.Equal(t, []string{"Bilal", "Taimoor", "Saboor"}, f.suggester.present)

	_, err = f.ctrl.Suggest(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidTicket)
}
