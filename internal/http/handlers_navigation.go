package httpx

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	domainauth "github.com/target/dash-console/internal/domain/auth"
	nav "github.com/target/dash-console/internal/domain/navigation"
	apperrors "github.com/target/dash-console/internal/errors"
	"github.com/target/dash-console/internal/ports"
	"github.com/target/dash-console/internal/service"
)

const defaultKeepAlive = 25 * time.Second

// NavigationHandlers exposes the navigation store, the resolver and the change stream.
type NavigationHandlers struct {
	Store   *service.NavigationStore
	Catalog ports.NavigationCatalog
	Logger  *slog.Logger
	// KeepAlive is the interval of SSE comment frames (default 25s).
	KeepAlive time.Duration
	// OriginPatterns are the cross-origin hosts allowed to open the WebSocket feed.
	OriginPatterns []string
}

func (h *NavigationHandlers) slot(w http.ResponseWriter, r *http.Request) (string, bool) {
	slot := r.PathValue("slot")
	if !h.Store.Has(slot) {
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "slot_not_found",
			Err:     apperrors.NotFoundf("navigation slot %q not found", slot),
		})
		return "", false
	}
	return slot, true
}

// List handles GET /navigation and returns every populated slot.
func (h *NavigationHandlers) List(w http.ResponseWriter, _ *http.Request) {
	out := make(map[string][]nav.Item)
	for _, slot := range h.Store.Slots() {
		out[slot] = h.Store.Get(slot)
	}
	WriteJSON(w, http.StatusOK, out)
}

// Get handles GET /navigation/{slot}.
func (h *NavigationHandlers) Get(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, h.Store.Get(slot))
}

// Put handles PUT /navigation/{slot} with a JSON array of items.
func (h *NavigationHandlers) Put(w http.ResponseWriter, r *http.Request) {
	var tree []nav.Item
	if !DecodeJSON(w, r, &tree) {
		return
	}
	slot := r.PathValue("slot")
	if err := h.Store.Store(r.Context(), slot, tree); err != nil {
		writeServiceError(w, r, loggerOr(h.Logger), err)
		return
	}
	WriteJSON(w, http.StatusOK, h.Store.Get(slot))
}

// Delete handles DELETE /navigation/{slot}. Deleting a missing slot is not an error.
func (h *NavigationHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	h.Store.Delete(r.Context(), r.PathValue("slot"))
	w.WriteHeader(http.StatusNoContent)
}

// Item handles GET /navigation/{slot}/items/{id}.
func (h *NavigationHandlers) Item(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	item, found := nav.FindByID(id, h.Store.Get(slot))
	if !found {
		writeItemNotFound(w, slot, id)
		return
	}
	WriteJSON(w, http.StatusOK, item)
}

type parentResponse struct {
	Root bool `json:"root"`
	// Parent is the containing item; omitted for top-level matches.
	Parent   *nav.Item  `json:"parent,omitempty"`
	Siblings []nav.Item `json:"siblings"`
}

// Parent handles GET /navigation/{slot}/items/{id}/parent.
func (h *NavigationHandlers) Parent(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	p, found := nav.FindParent(id, h.Store.Get(slot))
	if !found {
		writeItemNotFound(w, slot, id)
		return
	}
	resp := parentResponse{Root: p.IsRoot(), Siblings: nav.Clone(p.Children)}
	if !p.IsRoot() {
		parent := p.Item.Clone()
		parent.Children = nil
		resp.Parent = &parent
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Leaves handles GET /navigation/{slot}/leaves.
func (h *NavigationHandlers) Leaves(w http.ResponseWriter, r *http.Request) {
	slot, ok := h.slot(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, nav.Flatten(h.Store.Get(slot)))
}

type resolveResponse struct {
	Main       []nav.Item `json:"main"`
	ReportProd []nav.Item `json:"reportprod"`
}

// Resolve handles GET /navigation/resolve?role=&sub_role=. It previews the
// catalog without touching the store.
func (h *NavigationHandlers) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	role := domainauth.Role(q.Get("role"))
	sub := domainauth.SubRole(q.Get("sub_role"))
	if role != "" && !role.Valid() {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_role",
			Err: fmt.Errorf("unknown role %q", role), Field: "role"})
		return
	}
	if sub != domainauth.SubRoleNone && !sub.Valid() {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_sub_role",
			Err: fmt.Errorf("unknown sub-role %q", sub), Field: "sub_role"})
		return
	}
	WriteJSON(w, http.StatusOK, resolveResponse{
		Main:       h.Catalog.Resolve(role, sub),
		ReportProd: h.Catalog.ResolveChild(role, sub),
	})
}

// Events handles GET /navigation/events as a Server-Sent Events stream of
// navigation changes. Only changes after the subscription are sent.
func (h *NavigationHandlers) Events(w http.ResponseWriter, r *http.Request) {
	sub, err := h.Store.Subscribe()
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusServiceUnavailable, ErrCode: "feed_closed", Err: err})
		return
	}
	defer sub.Close()

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, ": connected\n\n"); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		loggerOr(h.Logger).WarnContext(r.Context(), "event stream cannot flush", "error", err)
		return
	}

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = defaultKeepAlive
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case change, ok := <-sub.C():
			if !ok {
				return
			}
			if err := writeEvent(w, "navigation", change); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func writeItemNotFound(w http.ResponseWriter, slot, id string) {
	WriteError(w, ErrorParams{
		Code:    http.StatusNotFound,
		ErrCode: "item_not_found",
		Err:     apperrors.NotFoundf("navigation item %q not found in slot %q", id, slot),
	})
}
