package httpx

import (
	"fmt"
	"net/http"

	apperrors "github.com/target/dash-console/internal/errors"
	"github.com/target/dash-console/internal/service"
)

// PanelHandlers exposes the panel registry so a UI shell can register its
// panels and drive them by name.
type PanelHandlers struct {
	Registry *service.PanelRegistry
}

type panelView struct {
	Name string `json:"name"`
	Open bool   `json:"open"`
}

type registerPanelRequest struct {
	Open bool `json:"open"`
}

// List handles GET /panels.
func (h *PanelHandlers) List(w http.ResponseWriter, _ *http.Request) {
	names := h.Registry.Names()
	out := make([]panelView, 0, len(names))
	for _, name := range names {
		if p, ok := h.Registry.Get(name); ok {
			out = append(out, panelView{Name: name, Open: p.IsOpen()})
		}
	}
	WriteJSON(w, http.StatusOK, out)
}

// Get handles GET /panels/{name}.
func (h *PanelHandlers) Get(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	p, ok := h.Registry.Get(name)
	if !ok {
		writePanelNotFound(w, name)
		return
	}
	WriteJSON(w, http.StatusOK, panelView{Name: name, Open: p.IsOpen()})
}

// Register handles PUT /panels/{name}. A later registration replaces an earlier one.
func (h *PanelHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerPanelRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	name := r.PathValue("name")
	h.Registry.Register(name, service.NewPanelState(req.Open))
	WriteJSON(w, http.StatusOK, panelView{Name: name, Open: req.Open})
}

// Deregister handles DELETE /panels/{name}.
func (h *PanelHandlers) Deregister(w http.ResponseWriter, r *http.Request) {
	h.Registry.Deregister(r.Context(), r.PathValue("name"))
	w.WriteHeader(http.StatusNoContent)
}

// Action handles POST /panels/{name}/{action} where action is open, close or toggle.
func (h *PanelHandlers) Action(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	p, ok := h.Registry.Get(name)
	if !ok {
		writePanelNotFound(w, name)
		return
	}
	switch action := r.PathValue("action"); action {
	case "open":
		p.Open()
	case "close":
		p.Close()
	case "toggle":
		p.Toggle()
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_action",
			Err:     fmt.Errorf("unknown panel action %q", action),
			Field:   "action",
		})
		return
	}
	WriteJSON(w, http.StatusOK, panelView{Name: name, Open: p.IsOpen()})
}

func writePanelNotFound(w http.ResponseWriter, name string) {
	WriteError(w, ErrorParams{
		Code:    http.StatusNotFound,
		ErrCode: "panel_not_found",
		Err:     apperrors.NotFoundf("panel %q not registered", name),
	})
}
