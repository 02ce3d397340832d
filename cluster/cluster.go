// Package cluster tracks peer nodes and decides which node owns a key.
//
// Ownership uses rendezvous (highest random weight) hashing over the nodes that were
// alive at the last Refresh, so adding or losing a node only moves the keys it owned.
package cluster

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	rendezvous "github.com/dgryski/go-rendezvous"
	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"
)

// Node is a peer as seen by this process.
type Node interface {
	// Alive reports the last known liveness of the node.
	Alive() bool

	// Ping probes the node and updates its liveness.
	Ping(ctx context.Context) error

	// Address identifies the node; it is also its identity on the hash ring.
	Address() string
}

// Manager holds cluster membership and answers ownership questions.
type Manager struct {
	id     string
	local  string
	logger *slog.Logger

	mu     sync.RWMutex
	nodes  map[string]Node
	ring   *rendezvous.Rendezvous
	active []string
}

// NewManager creates a manager for the node reachable at localAddr.
// The local node is always considered alive and is part of the ring.
func NewManager(localAddr string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manager{
		id:     uuid.NewString(),
		local:  localAddr,
		logger: logger,
		nodes:  make(map[string]Node),
	}
	m.rebuildLocked()
	return m
}

// ID is a random identifier for this manager instance, useful in logs.
func (m *Manager) ID() string { return m.id }

// LocalAddress returns the address this manager treats as itself.
func (m *Manager) LocalAddress() string { return m.local }

// AddNode registers a peer. Registering an address twice replaces the previous node.
func (m *Manager) AddNode(n Node) error {
	addr := n.Address()
	if addr == "" {
		return errors.New(errors.CodeInvalidInput, "node address must not be empty")
	}
	if addr == m.local {
		return errors.WithContext(
			errors.New(errors.CodeAlreadyExists, "node address is the local address"),
			"address", addr,
		)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nodes[addr] = n
	m.rebuildLocked()
	m.logger.Debug("cluster node added", "address", addr, "nodes", len(m.nodes))
	return nil
}

// RemoveNode forgets a peer. Removing an unknown address is a no-op.
func (m *Manager) RemoveNode(addr string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[addr]; !ok {
		return
	}
	delete(m.nodes, addr)
	m.rebuildLocked()
	m.logger.Debug("cluster node removed", "address", addr, "nodes", len(m.nodes))
}

// ActiveNodes returns the peers currently reporting alive, sorted by address.
func (m *Manager) ActiveNodes() []Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		if n.Alive() {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address() < out[j].Address() })
	return out
}

// Refresh pings every peer and rebuilds the ring from the ones that are alive.
// Ping failures are logged and mark the node as down; they are not returned.
func (m *Manager) Refresh(ctx context.Context) {
	m.mu.RLock()
	nodes := make([]Node, 0, len(m.nodes))
	for _, n := range m.nodes {
		nodes = append(nodes, n)
	}
	m.mu.RUnlock()

	for _, n := range nodes {
		if err := n.Ping(ctx); err != nil {
			m.logger.WarnContext(ctx, "cluster node ping failed", "address", n.Address(), "error", err)
		}
	}

	m.mu.Lock()
	m.rebuildLocked()
	m.mu.Unlock()
}

// Members returns the addresses on the ring, including the local one, sorted.
func (m *Manager) Members() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.active...)
}

// Owner returns the address of the node owning key.
func (m *Manager) Owner(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ring.Lookup(key)
}

// IsLocal reports whether key is owned by this node.
func (m *Manager) IsLocal(key string) bool {
	return m.Owner(key) == m.local
}

// rebuildLocked recomputes the ring from the local node and the live peers. Caller holds mu.
func (m *Manager) rebuildLocked() {
	active := []string{m.local}
	for addr, n := range m.nodes {
		if n.Alive() {
			active = append(active, addr)
		}
	}
	sort.Strings(active)
	m.active = active
	m.ring = rendezvous.New(active, xxhash.Sum64String)
}
