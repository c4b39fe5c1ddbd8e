package ggsurface

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/ggsurface/platform"
)

// recipe is everything needed to build a surface again. parent is the
// order of the managed surface the window is a child of, or -1.
type recipe struct {
	title         string
	width, height int
	customize     func(*platform.WindowAttributes)
	parent        int
}

type managed struct {
	surface *Surface
	recipe  recipe
	order   int
}

// Manager keeps a set of surfaces and rebuilds them when their GPU
// resources are lost: on Suspend/Resume and after a fatal Present error.
//
// Window ids change when a surface is rebuilt. Look surfaces up by the id
// passed to Handler.WindowEvent rather than caching them. A child of a
// managed surface is rebuilt as a child of that surface's new window.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	cfg       Config
	surfaces  map[platform.WindowID]*managed
	suspended []managed
	next      int
}

// NewManager returns an empty manager building surfaces with cfg.
func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg, surfaces: make(map[platform.WindowID]*managed)}
}

// Open creates a surface and keeps it with its recipe.
func (m *Manager) Open(loop platform.EventLoop, title string, width, height int,
	customize func(*platform.WindowAttributes)) (*Surface, error) {
	rc := recipe{title: title, width: width, height: height, customize: customize, parent: -1}
	s, err := m.build(loop, &rc, true)
	if err != nil {
		return nil, err
	}
	m.surfaces[s.ID()] = &managed{surface: s, recipe: rc, order: m.next}
	m.next++
	return s, nil
}

// build creates the surface of rc. The first build records which managed
// surface the customizer chose as parent; later builds point Parent at
// that surface's current window.
func (m *Manager) build(loop platform.EventLoop, rc *recipe, first bool) (*Surface, error) {
	customize := func(attrs *platform.WindowAttributes) {
		if rc.customize != nil {
			rc.customize(attrs)
		}
		switch {
		case first:
			rc.parent = m.orderOf(attrs.Parent)
		case rc.parent >= 0:
			attrs.Parent = m.windowOf(rc.parent)
			if attrs.Parent == 0 {
				slogger().Debug("ggsurface: parent gone, rebuilding as top-level", "title", rc.title)
			}
		}
	}
	return NewSurfaceWith(loop, m.cfg, rc.title, rc.width, rc.height, customize)
}

// orderOf returns the order of the managed surface of window id, or -1.
func (m *Manager) orderOf(id platform.WindowID) int {
	if e, ok := m.surfaces[id]; ok && id != 0 {
		return e.order
	}
	return -1
}

// windowOf returns the current window of the managed surface with order,
// or 0 when it is not open.
func (m *Manager) windowOf(order int) platform.WindowID {
	for id, e := range m.surfaces {
		if e.order == order {
			return id
		}
	}
	return 0
}

// Get returns the surface of window id.
func (m *Manager) Get(id platform.WindowID) (*Surface, bool) {
	e, ok := m.surfaces[id]
	if !ok {
		return nil, false
	}
	return e.surface, true
}

// Len returns the number of open surfaces.
func (m *Manager) Len() int { return len(m.surfaces) }

// IDs returns the window ids of the open surfaces in opening order.
func (m *Manager) IDs() []platform.WindowID {
	list := m.ordered()
	ids := make([]platform.WindowID, len(list))
	for i, e := range list {
		ids[i] = e.surface.ID()
	}
	return ids
}

func (m *Manager) ordered() []*managed {
	list := make([]*managed, 0, len(m.surfaces))
	for _, e := range m.surfaces {
		list = append(list, e)
	}
	slices.SortFunc(list, func(a, b *managed) int { return a.order - b.order })
	return list
}

// Close closes the surface of window id and forgets it.
func (m *Manager) Close(id platform.WindowID) error {
	e, ok := m.surfaces[id]
	if !ok {
		return nil
	}
	delete(m.surfaces, id)
	return e.surface.Close()
}

// CloseAll closes every surface and forgets the suspended recipes.
func (m *Manager) CloseAll() error {
	var errs []error
	for _, e := range m.ordered() {
		delete(m.surfaces, e.surface.ID())
		errs = append(errs, e.surface.Close())
	}
	m.suspended = nil
	return errors.Join(errs...)
}

// Suspend closes every surface, keeping the recipes for Resume.
func (m *Manager) Suspend() error {
	var errs []error
	for _, e := range m.ordered() {
		errs = append(errs, e.surface.Close())
		m.suspended = append(m.suspended, managed{recipe: e.recipe, order: e.order})
	}
	clear(m.surfaces)
	slogger().Info("ggsurface: surfaces suspended", "count", len(m.suspended))
	return errors.Join(errs...)
}

// Resume builds every suspended surface again in opening order, so parents
// exist before their children. Recipes that fail stay suspended for the
// next Resume.
func (m *Manager) Resume(loop platform.EventLoop) error {
	pending := m.suspended
	m.suspended = nil
	slices.SortFunc(pending, func(a, b managed) int { return a.order - b.order })
	var errs []error
	for _, e := range pending {
		s, err := m.build(loop, &e.recipe, false)
		if err != nil {
			errs = append(errs, fmt.Errorf("resume %q: %w", e.recipe.title, err))
			m.suspended = append(m.suspended, e)
			continue
		}
		m.surfaces[s.ID()] = &managed{surface: s, recipe: e.recipe, order: e.order}
	}
	if len(pending) > 0 {
		slogger().Info("ggsurface: surfaces resumed", "count", len(pending)-len(m.suspended))
	}
	return errors.Join(errs...)
}

// Present presents the surface of window id. A transient failure is
// logged and the frame skipped. After a fatal failure the surface is
// closed and built again from its recipe; the new surface has a new id
// and gets a redraw request.
func (m *Manager) Present(loop platform.EventLoop, id platform.WindowID) error {
	e, ok := m.surfaces[id]
	if !ok {
		return fmt.Errorf("ggsurface: no surface for %s", id)
	}
	err := e.surface.Present()
	switch {
	case err == nil:
		return nil
	case !IsDeviceLost(err):
		slogger().Warn("ggsurface: frame skipped", "window", id, "err", err)
		return nil
	}

	slogger().Warn("ggsurface: device lost, rebuilding surface", "window", id, "err", err)
	delete(m.surfaces, id)
	if cerr := e.surface.Close(); cerr != nil {
		slogger().Warn("ggsurface: closing lost surface", "window", id, "err", cerr)
	}
	s, berr := m.build(loop, &e.recipe, false)
	if berr != nil {
		m.suspended = append(m.suspended, managed{recipe: e.recipe, order: e.order})
		return fmt.Errorf("rebuild %q: %w", e.recipe.title, berr)
	}
	m.surfaces[s.ID()] = &managed{surface: s, recipe: e.recipe, order: e.order}
	s.RequestRedraw()
	return nil
}

// Dispatch applies the events a managed surface handles by itself:
// Resized resizes it and CloseRequested closes it. It reports whether ev
// was consumed.
func (m *Manager) Dispatch(id platform.WindowID, ev platform.Event) (bool, error) {
	e, ok := m.surfaces[id]
	if !ok {
		return false, nil
	}
	if ev.Kind == platform.EventCloseRequested {
		return true, m.Close(id)
	}
	return e.surface.HandleEvent(ev)
}
