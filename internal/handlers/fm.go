package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fm-control/internal/control"
	"github.com/ukydev/fm-control/internal/middleware"
	"github.com/ukydev/fm-control/internal/models"
)

// Facility is the controller surface served over HTTP.
type Facility interface {
	Refresh(ctx context.Context) (control.SyncReport, error)
	Dashboard() control.Dashboard
	Assets(status models.AssetStatus) []models.Asset
	Tickets(openOnly bool) []models.Ticket
	CreateTicket(ctx context.Context, in models.NewTicket) (models.Ticket, error)
	ResolveTicket(ctx context.Context, id int, res models.Resolution) (models.Ticket, error)
	Suggest(ctx context.Context, details string) (models.Suggestion, error)
	Technicians() []models.RankedTechnician
	ToggleAttendance(ctx context.Context, name string) (models.Technician, error)
	Takeover(ctx context.Context, name string, zone models.Zone) (models.Technician, error)
	IssueDemerit(ctx context.Context, technician string, points int, reason string) (models.Demerit, error)
	Demerits() []models.Demerit
	PendingChecks() []models.PendingCheck
	MarkChecklistOK(ctx context.Context, assetID int, technician string, category models.ChecklistCategory) (models.ChecklistResult, error)
	ZoneChecklist(zone models.Zone) ([]models.ZoneAssetChecks, error)
	Inventory() []models.InventoryItem
	UpdateGas(ctx context.Context, name string, kg float64) (models.InventoryItem, error)
	Tools() []models.Tool
}

// FMHandler serves the facility views and operations.
type FMHandler struct {
	facility Facility
}

// NewFMHandler creates a new facility handler
func NewFMHandler(facility Facility) *FMHandler {
	return &FMHandler{facility: facility}
}

type checklistRequest struct {
	AssetID    int                      `json:"assetId"`
	Technician string                   `json:"technician"`
	Category   models.ChecklistCategory `json:"category"`
}

type suggestRequest struct {
	Details string `json:"details"`
}

type takeoverRequest struct {
	Zone models.Zone `json:"zone"`
}

type demeritRequest struct {
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

type gasRequest struct {
	Kg float64 `json:"kg"`
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Sync pulls a fresh snapshot from the remote store.
func (h *FMHandler) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.facility.Refresh(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Dashboard returns the overview.
func (h *FMHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.facility.Dashboard())
}

// GetAssets lists assets, optionally filtered by ?status=.
func (h *FMHandler) GetAssets(w http.ResponseWriter, r *http.Request) {
	status := models.AssetStatus(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, h.facility.Assets(status))
}

// GetTickets lists tickets; ?open=true hides resolved ones.
func (h *FMHandler) GetTickets(w http.ResponseWriter, r *http.Request) {
	openOnly, _ := strconv.ParseBool(r.URL.Query().Get("open"))
	writeJSON(w, http.StatusOK, h.facility.Tickets(openOnly))
}

// CreateTicket raises a fault against an asset.
func (h *FMHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req models.NewTicket
	if !decode(w, r, &req) {
		return
	}
	ticket, err := h.facility.CreateTicket(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

// ResolveTicket closes a ticket with the resolve wizard outcome.
func (h *FMHandler) ResolveTicket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Invalid ticket ID", http.StatusBadRequest)
		return
	}
	var req models.Resolution
	if !decode(w, r, &req) {
		return
	}
	if req.TechnicianName == "" {
		req.TechnicianName = currentUser(r)
	}
	ticket, err := h.facility.ResolveTicket(r.Context(), id, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// Suggest asks the assignment assistant about a fault description.
func (h *FMHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.facility.Suggest(r.Context(), req.Details)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// GetTechnicians returns the leaderboard.
func (h *FMHandler) GetTechnicians(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.facility.Technicians())
}

// ToggleAttendance flips a technician's presence.
func (h *FMHandler) ToggleAttendance(w http.ResponseWriter, r *http.Request) {
	tech, err := h.facility.ToggleAttendance(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tech)
}

// Takeover moves a technician to cover another zone.
func (h *FMHandler) Takeover(w http.ResponseWriter, r *http.Request) {
	var req takeoverRequest
	if !decode(w, r, &req) {
		return
	}
	tech, err := h.facility.Takeover(r.Context(), mux.Vars(r)["name"], req.Zone)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tech)
}

// IssueDemerit records a penalty against a technician.
func (h *FMHandler) IssueDemerit(w http.ResponseWriter, r *http.Request) {
	var req demeritRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := h.facility.IssueDemerit(r.Context(), mux.Vars(r)["name"], req.Points, req.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// GetDemerits lists the audit log.
func (h *FMHandler) GetDemerits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.facility.Demerits())
}

// GetPendingChecks lists checklist completions the remote store never
// acknowledged.
func (h *FMHandler) GetPendingChecks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.facility.PendingChecks())
}

// SubmitChecklist marks a checklist as done for an asset.
func (h *FMHandler) SubmitChecklist(w http.ResponseWriter, r *http.Request) {
	var req checklistRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Technician == "" {
		req.Technician = currentUser(r)
	}
	res, err := h.facility.MarkChecklistOK(r.Context(), req.AssetID, req.Technician, req.Category)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.AlreadyChecked {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

// GetZoneChecklist lists a zone's assets with their completed categories.
func (h *FMHandler) GetZoneChecklist(w http.ResponseWriter, r *http.Request) {
	checks, err := h.facility.ZoneChecklist(models.Zone(mux.Vars(r)["zone"]))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, checks)
}

// GetInventory lists gas stock.
func (h *FMHandler) GetInventory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.facility.Inventory())
}

// UpdateGas sets the stock of one gas.
func (h *FMHandler) UpdateGas(w http.ResponseWriter, r *http.Request) {
	var req gasRequest
	if !decode(w, r, &req) {
		return
	}
	item, err := h.facility.UpdateGas(r.Context(), mux.Vars(r)["name"], req.Kg)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GetTools lists the tool catalogue.
func (h *FMHandler) GetTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.facility.Tools())
}

func (h *FMHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"path":       r.URL.Path,
			"request_id": middleware.RequestID(r.Context()),
		}).Error("Facility operation failed")
	}
	http.Error(w, msg, status)
}

// statusFor maps controller errors onto an HTTP status and message.
func statusFor(err error) (int, string) {
	var syncErr *control.SyncError
	var remoteErr *control.RemoteError
	switch {
	case errors.As(err, &syncErr), errors.As(err, &remoteErr):
		return http.StatusBadGateway, "remote store unavailable"
	case errors.Is(err, control.ErrAssetNotFound),
		errors.Is(err, control.ErrTicketNotFound),
		errors.Is(err, control.ErrUnknownTechnician),
		errors.Is(err, control.ErrUnknownGas):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, control.ErrTicketResolved),
		errors.Is(err, control.ErrMissingRowIndex),
		errors.Is(err, control.ErrNotPresent):
		return http.StatusConflict, err.Error()
	case errors.Is(err, control.ErrInvalidTicket),
		errors.Is(err, control.ErrInvalidResolution),
		errors.Is(err, control.ErrInvalidCategory),
		errors.Is(err, control.ErrInvalidZone),
		errors.Is(err, control.ErrInvalidDemerit),
		errors.Is(err, control.ErrInvalidAmount):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

func currentUser(r *http.Request) string {
	if claims, ok := middleware.GetStaffFromContext(r.Context()); ok {
		return claims.Username
	}
	return ""
}
