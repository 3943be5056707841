package screen

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"bus-locator/internal/bridge"
)

var ErrNotFound = errors.New("screen: not found")

// Manager keeps the mounted screens of the process by id.
type Manager struct {
	bridge *bridge.Bridge
	poller LocationPoller
	opts   Options

	mu      sync.Mutex
	screens map[string]*Controller
}

func NewManager(b *bridge.Bridge, poller LocationPoller, opts Options) *Manager {
	return &Manager{
		bridge:  b,
		poller:  poller,
		opts:    opts,
		screens: make(map[string]*Controller),
	}
}

// Mount creates a screen for routeKey in the inline-only state.
func (m *Manager) Mount(routeKey string) (*Controller, error) {
	c := NewController(uuid.NewString(), m.bridge, m.poller, m.opts)
	if err := c.Mount(routeKey); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.screens[c.ID()] = c
	m.mu.Unlock()
	return c, nil
}

func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.screens[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// Unmount closes the screen and forgets it.
func (m *Manager) Unmount(id string) error {
	m.mu.Lock()
	c, ok := m.screens[id]
	delete(m.screens, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	c.Unmount()
	return nil
}

// List returns views of every mounted screen.
func (m *Manager) List() []View {
	m.mu.Lock()
	cs := make([]*Controller, 0, len(m.screens))
	for _, c := range m.screens {
		cs = append(cs, c)
	}
	m.mu.Unlock()

	out := make([]View, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.View())
	}
	return out
}

// Close unmounts every screen.
func (m *Manager) Close() {
	m.mu.Lock()
	cs := m.screens
	m.screens = make(map[string]*Controller)
	m.mu.Unlock()

	for _, c := range cs {
		c.Unmount()
	}
}
