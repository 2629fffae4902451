package remote

import (
	"maps"
	"sync"

	"github.com/inamate/whiteboard/internal/document"
)

// PresenceManager tracks where each connected client's pointer is.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]PresencePayload // clientID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]PresencePayload),
	}
}

// Update records a client's cursor in world coordinates. It reports whether
// anything changed.
func (pm *PresenceManager) Update(clientID string, cursor document.Point, session string) (PresencePayload, bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	p := PresencePayload{ClientID: clientID, Cursor: cursor, Session: session}
	if old, ok := pm.presences[clientID]; ok && old == p {
		return p, false
	}
	pm.presences[clientID] = p
	return p, true
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, clientID)
}

func (pm *PresenceManager) GetAll() map[string]PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return maps.Clone(pm.presences)
}

func (pm *PresenceManager) StateMessage() (*Message, error) {
	return newMessage(TypePresenceState, PresenceStatePayload{Presences: pm.GetAll()})
}
