package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Panel is a named UI control that layout code can open and close.
type Panel interface {
	Open()
	Close()
	Toggle()
	IsOpen() bool
}

// PanelState is a concurrency-safe Panel that only tracks openness.
type PanelState struct {
	mu   sync.Mutex
	open bool
}

var _ Panel = (*PanelState)(nil)

// NewPanelState returns a panel in the given state.
func NewPanelState(open bool) *PanelState {
	return &PanelState{open: open}
}

func (p *PanelState) Open() {
	p.mu.Lock()
	p.open = true
	p.mu.Unlock()
}

func (p *PanelState) Close() {
	p.mu.Lock()
	p.open = false
	p.mu.Unlock()
}

func (p *PanelState) Toggle() {
	p.mu.Lock()
	p.open = !p.open
	p.mu.Unlock()
}

func (p *PanelState) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// PanelRegistry maps names to live panels. Registration is last-wins and
// lookups must tolerate a panel that is not registered yet.
type PanelRegistry struct {
	logger *slog.Logger

	mu     sync.RWMutex
	panels map[string]Panel
}

// NewPanelRegistry constructs an empty registry.
func NewPanelRegistry(logger *slog.Logger) *PanelRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &PanelRegistry{logger: logger.With("component", "panels"), panels: make(map[string]Panel)}
}

// Register stores panel under name, replacing any previous one.
func (r *PanelRegistry) Register(name string, panel Panel) {
	r.mu.Lock()
	r.panels[name] = panel
	r.mu.Unlock()
}

// Deregister removes name. Unknown names are logged and ignored.
func (r *PanelRegistry) Deregister(ctx context.Context, name string) {
	r.mu.Lock()
	_, ok := r.panels[name]
	delete(r.panels, name)
	r.mu.Unlock()
	if !ok {
		r.logger.WarnContext(ctx, "panel not registered", "name", name)
	}
}

// Get returns the panel registered under name.
func (r *PanelRegistry) Get(name string) (Panel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.panels[name]
	return p, ok
}

// Names returns the registered names in sorted order.
func (r *PanelRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.panels))
	for n := range r.panels {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
