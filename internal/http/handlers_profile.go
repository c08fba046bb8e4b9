package httpx

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/target/dash-console/internal/service"
)

// ProfileHandlers serves the signed-in user's profile and quick menu.
// Routes are mounted behind RequireAuth.
type ProfileHandlers struct {
	Profile *service.ProfileService
	Auth    *service.AuthService
	Logger  *slog.Logger
}

// Me handles GET /me. With ?refresh=true the profile is reloaded from the API first.
func (h *ProfileHandlers) Me(w http.ResponseWriter, r *http.Request) {
	if refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh")); refresh {
		user, err := h.Profile.Refresh(r.Context())
		if err != nil {
			writeServiceError(w, r, loggerOr(h.Logger), err)
			return
		}
		WriteJSON(w, http.StatusOK, user)
		return
	}
	if user, ok := UserFromContext(r.Context()); ok {
		WriteJSON(w, http.StatusOK, user)
		return
	}
	WriteJSON(w, http.StatusOK, h.Auth.CurrentUser())
}

// Update handles PATCH /me.
func (h *ProfileHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if !DecodeJSON(w, r, &patch) {
		return
	}
	user, err := h.Profile.Update(r.Context(), patch)
	if err != nil {
		writeServiceError(w, r, loggerOr(h.Logger), err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles POST /me/status.
func (h *ProfileHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	user, err := h.Profile.UpdateStatus(r.Context(), req.Status)
	if err != nil {
		writeServiceError(w, r, loggerOr(h.Logger), err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// Menu handles GET /menu.
func (h *ProfileHandlers) Menu(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, h.Auth.Menu())
}
