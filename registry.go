package main

import (
	"sort"
	"sync"
)

// outbound is the send half of a connection as seen by the registry and
// the broadcaster.
type outbound interface {
	send(payload []byte) error
	close()
}

type member struct {
	id  string
	ch  outbound
	seq uint64
}

type registry struct {
	mu      sync.RWMutex
	members map[string]member
	seq     uint64
}

func newRegistry() *registry {
	return &registry{
		members: make(map[string]member),
	}
}

func (r *registry) add(id string, ch outbound) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; ok {
		return &DuplicateIDError{ID: id}
	}
	r.seq++
	r.members[id] = member{id: id, ch: ch, seq: r.seq}
	return nil
}

// remove reports whether id was registered. Disconnects can race with
// shutdown, so a missing id is not an error.
func (r *registry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[id]; !ok {
		return false
	}
	delete(r.members, id)
	return true
}

func (r *registry) has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.members[id]
	return ok
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.members)
}

// snapshot copies the membership in registration order. The copy is safe to
// iterate while connects and disconnects proceed.
func (r *registry) snapshot() []member {
	r.mu.RLock()
	members := make([]member, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, m)
	}
	r.mu.RUnlock()

	sort.Slice(members, func(i, j int) bool { return members[i].seq < members[j].seq })
	return members
}

// closeAll empties the registry and closes every channel.
func (r *registry) closeAll() int {
	r.mu.Lock()
	members := r.members
	r.members = make(map[string]member)
	r.mu.Unlock()

	for _, m := range members {
		m.ch.close()
	}
	return len(members)
}
