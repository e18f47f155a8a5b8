// Package confirm tracks destructive operations that are waiting for an
// explicit second step from the user.
package confirm

import "sync"

// Pending is a set of IDs with an outstanding confirmation request.
// The zero value is ready to use and safe for concurrent use.
type Pending struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// Request marks id as awaiting confirmation.
func (p *Pending) Request(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ids == nil {
		p.ids = make(map[string]struct{})
	}
	p.ids[id] = struct{}{}
}

// Cancel drops any request for id. It reports whether one existed.
func (p *Pending) Cancel(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.ids[id]
	delete(p.ids, id)
	return ok
}

// Has reports whether id is awaiting confirmation.
func (p *Pending) Has(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.ids[id]
	return ok
}
