package connection

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/skyezerfox/magma/protocol"
)

// Manager tracks live connections and the players logged in through them.
type Manager struct {
	sync.RWMutex
	conns   map[*Connection]struct{}
	players map[uuid.UUID]*Connection
}

func NewManager() *Manager {
	return &Manager{
		conns:   make(map[*Connection]struct{}),
		players: make(map[uuid.UUID]*Connection),
	}
}

// Track registers a connection so CloseAll reaches it.
func (m *Manager) Track(c *Connection) {
	m.Lock()
	defer m.Unlock()
	m.conns[c] = struct{}{}
}

func (m *Manager) Untrack(c *Connection) {
	m.Lock()
	defer m.Unlock()
	delete(m.conns, c)
}

// AddPlayer registers a logged in connection under its profile UUID and
// returns the connection it replaced, if any.
func (m *Manager) AddPlayer(c *Connection) *Connection {
	id := c.Profile().ID

	m.Lock()
	defer m.Unlock()
	previous := m.players[id]
	m.players[id] = c
	if previous == c {
		return nil
	}
	return previous
}

// RemovePlayer reports whether c was still the registered connection of its
// player.
func (m *Manager) RemovePlayer(c *Connection) bool {
	profile := c.Profile()
	if profile == nil {
		return false
	}

	m.Lock()
	defer m.Unlock()
	if m.players[profile.ID] != c {
		return false
	}
	delete(m.players, profile.ID)
	return true
}

func (m *Manager) Player(id uuid.UUID) (*Connection, bool) {
	m.RLock()
	defer m.RUnlock()
	c, ok := m.players[id]
	return c, ok
}

func (m *Manager) Online() int {
	m.RLock()
	defer m.RUnlock()
	return len(m.players)
}

// Players returns the logged in players sorted by name.
func (m *Manager) Players() []Player {
	m.RLock()
	out := make([]Player, 0, len(m.players))
	for _, c := range m.players {
		out = append(out, c.snapshot())
	}
	m.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (m *Manager) connections() []*Connection {
	m.RLock()
	defer m.RUnlock()
	out := make([]*Connection, 0, len(m.players))
	for _, c := range m.players {
		out = append(out, c)
	}
	return out
}

// Broadcast sends p to every logged in player.
func (m *Manager) Broadcast(p protocol.Packet) error {
	var err error
	for _, c := range m.connections() {
		err = multierr.Append(err, c.Send(p))
	}
	return err
}

// CloseAll closes every tracked connection.
func (m *Manager) CloseAll() error {
	m.RLock()
	conns := make([]*Connection, 0, len(m.conns))
	for c := range m.conns {
		conns = append(conns, c)
	}
	m.RUnlock()

	var err error
	for _, c := range conns {
		err = multierr.Append(err, c.Close())
	}
	return err
}
