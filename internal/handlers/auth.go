package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fm-control/internal/auth"
	"github.com/ukydev/fm-control/internal/db"
	"github.com/ukydev/fm-control/internal/middleware"
	"github.com/ukydev/fm-control/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles staff authentication requests
type AuthHandler struct {
	authService *auth.Service
	staff       db.StaffCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, staff db.StaffCollection) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		staff:       staff,
	}
}

// Login handles staff login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var loginReq models.LoginRequest
	if err := json.Unmarshal(body, &loginReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if loginReq.Username == "" || loginReq.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	staff, err := h.staff.FindStaffByUsername(r.Context(), loginReq.Username)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).Error("Failed to look up staff account")
		}
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if !staff.IsActive {
		http.Error(w, "Account is deactivated", http.StatusUnauthorized)
		return
	}

	if !h.authService.CheckPassword(loginReq.Password, staff.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(staff)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	if err := h.staff.UpdateLastLogin(r.Context(), staff.ID.Hex()); err != nil {
		log.WithError(err).WithField("username", staff.Username).Warn("Failed to update last login")
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{Token: token, Staff: *staff})
}

// Register creates a field account. Only technician and viewer accounts can
// be self-registered; the role defaults to viewer.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req models.RegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleViewer
	}

	if err := h.authService.ValidateUsername(req.Username); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !models.IsValidRole(req.Role) {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}
	if req.Role != models.RoleTechnician && req.Role != models.RoleViewer {
		http.Error(w, "Role cannot be self-registered", http.StatusForbidden)
		return
	}

	staff, err := h.create(r.Context(), req)
	switch {
	case errors.Is(err, errUsernameTaken), errors.Is(err, errEmailTaken):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		log.WithError(err).Error("Failed to register staff account")
		http.Error(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	token, err := h.authService.GenerateToken(staff)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	log.WithFields(log.Fields{
		"username": staff.Username,
		"role":     staff.Role,
	}).Info("Staff account registered")
	writeJSON(w, http.StatusCreated, models.LoginResponse{Token: token, Staff: *staff})
}

// GetProfile returns the current staff account
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetStaffFromContext(r.Context())
	if !ok {
		http.Error(w, "Staff context not found", http.StatusUnauthorized)
		return
	}

	staff, err := h.staff.FindStaffByID(r.Context(), claims.StaffID)
	if err != nil {
		http.Error(w, "Staff account not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, staff)
}

// EnsureAdmin creates the bootstrap admin account unless the username is
// already taken. It does nothing when username is empty.
func (h *AuthHandler) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if username == "" {
		return nil
	}
	if err := h.authService.ValidatePassword(password); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	_, err := h.create(ctx, models.RegisterRequest{
		Username:    username,
		Email:       email,
		Password:    password,
		DisplayName: "Administrator",
		Role:        models.RoleAdmin,
	})
	if errors.Is(err, errUsernameTaken) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	log.WithField("username", username).Info("Created bootstrap admin account")
	return nil
}

var (
	errUsernameTaken = errors.New("username already exists")
	errEmailTaken    = errors.New("email already exists")
)

func (h *AuthHandler) create(ctx context.Context, req models.RegisterRequest) (*models.Staff, error) {
	if _, err := h.staff.FindStaffByUsername(ctx, req.Username); err == nil {
		return nil, errUsernameTaken
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}
	if req.Email != "" {
		if _, err := h.staff.FindStaffByEmail(ctx, req.Email); err == nil {
			return nil, errEmailTaken
		} else if !errors.Is(err, db.ErrNotFound) {
			return nil, err
		}
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	staff := models.Staff{
		ID:           primitive.NewObjectID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		DisplayName:  req.DisplayName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if staff.DisplayName == "" {
		staff.DisplayName = staff.Username
	}
	if err := h.staff.InsertStaff(ctx, staff); err != nil {
		return nil, err
	}
	return &staff, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("Failed to encode response")
	}
}
