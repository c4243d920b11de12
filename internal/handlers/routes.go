package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ukydev/fm-control/internal/middleware"
	"github.com/ukydev/fm-control/internal/models"
)

// NewRouter wires the API routes behind the middleware chain.
func NewRouter(authH *AuthHandler, fmH *FMHandler, authMW *middleware.AuthMiddleware, limiter *middleware.RateLimitMiddleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging, middleware.Recovery, middleware.CORS, limiter.RateLimit, authMW.Authenticate)

	// Preflights match here first so CORS answers them on every path.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", authH.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", authH.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/profile", authH.GetProfile).Methods(http.MethodGet)

	view := func(h http.HandlerFunc) http.Handler { return authMW.Permit(models.ActionView, h) }

	api.Handle("/sync", authMW.Permit(models.ActionSync, fmH.Sync)).Methods(http.MethodPost)
	api.Handle("/dashboard", view(fmH.Dashboard)).Methods(http.MethodGet)
	api.Handle("/assets", view(fmH.GetAssets)).Methods(http.MethodGet)

	api.Handle("/tickets", view(fmH.GetTickets)).Methods(http.MethodGet)
	api.Handle("/tickets", authMW.Permit(models.ActionCreateTicket, fmH.CreateTicket)).Methods(http.MethodPost)
	api.Handle("/tickets/{id:[0-9]+}/resolve", authMW.Permit(models.ActionResolveTicket, fmH.ResolveTicket)).Methods(http.MethodPost)
	api.Handle("/suggestions", authMW.Permit(models.ActionCreateTicket, fmH.Suggest)).Methods(http.MethodPost)

	api.Handle("/technicians", view(fmH.GetTechnicians)).Methods(http.MethodGet)
	api.Handle("/technicians/{name}/attendance", authMW.Permit(models.ActionManageFieldForce, fmH.ToggleAttendance)).Methods(http.MethodPost)
	api.Handle("/technicians/{name}/takeover", authMW.Permit(models.ActionManageFieldForce, fmH.Takeover)).Methods(http.MethodPost)
	api.Handle("/technicians/{name}/demerits", authMW.Permit(models.ActionIssueDemerit, fmH.IssueDemerit)).Methods(http.MethodPost)
	api.Handle("/demerits", view(fmH.GetDemerits)).Methods(http.MethodGet)

	api.Handle("/checklists", view(fmH.GetPendingChecks)).Methods(http.MethodGet)
	api.Handle("/checklists", authMW.Permit(models.ActionSubmitChecklist, fmH.SubmitChecklist)).Methods(http.MethodPost)
	api.Handle("/zones/{zone}/checklists", view(fmH.GetZoneChecklist)).Methods(http.MethodGet)

	api.Handle("/inventory", view(fmH.GetInventory)).Methods(http.MethodGet)
	api.Handle("/inventory/{name}", authMW.Permit(models.ActionAdjustInventory, fmH.UpdateGas)).Methods(http.MethodPut)
	api.Handle("/tools", view(fmH.GetTools)).Methods(http.MethodGet)

	return r
}
