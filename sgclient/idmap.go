package sgclient

import (
	"fmt"

	"github.com/grailbio/base/errors"
)

// IDMap maps server sequence ids to the dense local ids assigned by a
// SideGraph, and back. Local ids are contiguous and assigned in first-seen
// order, so the reverse direction is a slice indexed by local id.
type IDMap struct {
	toLocal  map[int64]int64
	toRemote []int64
}

// NewIDMap creates an empty map.
func NewIDMap() *IDMap {
	return &IDMap{toLocal: make(map[int64]int64)}
}

// Add records remote -> local. local must be the next unused local id, and
// remote must not already be mapped.
func (m *IDMap) Add(remote, local int64) error {
	if prev, ok := m.toLocal[remote]; ok {
		return errors.E(errors.Exists, fmt.Sprintf("sequence %d is already mapped to %d", remote, prev))
	}
	if local != int64(len(m.toRemote)) {
		return errors.E(errors.Precondition, fmt.Sprintf("local id %d is not the next id %d", local, len(m.toRemote)))
	}
	m.toLocal[remote] = local
	m.toRemote = append(m.toRemote, remote)
	return nil
}

// Local returns the local id for a server id.
func (m *IDMap) Local(remote int64) (int64, bool) {
	local, ok := m.toLocal[remote]
	return local, ok
}

// Remote returns the server id for a local id.
func (m *IDMap) Remote(local int64) (int64, bool) {
	if local < 0 || local >= int64(len(m.toRemote)) {
		return 0, false
	}
	return m.toRemote[local], true
}

// Len returns the number of mapped ids.
func (m *IDMap) Len() int { return len(m.toRemote) }
