package access

import "sync"

// Memberships answers whether a user may touch boards of a project. The
// real membership data lives with the project service; servers embed an
// implementation of this interface.
type Memberships interface {
	IsMember(userID, projectID string) bool
}

// Roster is an in-memory membership table. With Open set, projects the
// roster has never heard of admit any authenticated user, which lets a
// standalone deployment run without the project service.
type Roster struct {
	mu      sync.RWMutex
	members map[string]map[string]struct{}
	open    bool
}

func NewRoster(open bool) *Roster {
	return &Roster{members: make(map[string]map[string]struct{}), open: open}
}

func (r *Roster) Grant(userID, projectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[projectID] == nil {
		r.members[projectID] = make(map[string]struct{})
	}
	r.members[projectID][userID] = struct{}{}
}

func (r *Roster) Revoke(userID, projectID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members[projectID], userID)
}

func (r *Roster) IsMember(userID, projectID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, known := r.members[projectID]
	if !known {
		return r.open
	}
	_, ok := set[userID]
	return ok
}
