// Copyright (C) 2008-2019 by Nicolas Piganeau and the TS2 TEAM
// (See AUTHORS file)
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program; if not, write to the
// Free Software Foundation, Inc.,
// 59 Temple Place - Suite 330, Boston, MA  02111-1307, USA.

package network

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one recorded mutation of a Network: an applied event or
// action, kept so callers can reconstruct what happened without re-deriving
// it from the current state alone. ID is the ring buffer's sequential
// position, used for Since queries; TraceID is a globally unique identifier
// suitable for correlating an entry across exported logs.
type AuditEntry struct {
	ID        string                 `json:"id"`
	TraceID   string                 `json:"trace_id"`
	Timestamp string                 `json:"timestamp"`
	Category  string                 `json:"category"`
	TrainID   string                 `json:"train_id,omitempty"`
	TrackID   string                 `json:"track_id,omitempty"`
	Details   map[string]interface{} `json:"details"`
}

// auditLog is a fixed-capacity ring buffer of audit entries, safe for
// concurrent use. It replaces the print-statement trail of the original
// implementation with a queryable in-memory history.
type auditLog struct {
	mu       sync.RWMutex
	entries  []AuditEntry
	capacity int
	nextID   int64
}

func newAuditLog(capacity int) *auditLog {
	if capacity <= 0 {
		capacity = 500
	}
	return &auditLog{capacity: capacity, entries: make([]AuditEntry, 0, capacity)}
}

func (a *auditLog) append(category, trainID, trackID string, details map[string]interface{}) AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	entry := AuditEntry{
		ID:        strconv.FormatInt(a.nextID, 10),
		TraceID:   uuid.New().String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Category:  category,
		TrainID:   trainID,
		TrackID:   trackID,
		Details:   details,
	}
	if len(a.entries) == a.capacity {
		copy(a.entries[0:], a.entries[1:])
		a.entries[len(a.entries)-1] = entry
	} else {
		a.entries = append(a.entries, entry)
	}
	return entry
}

// Since returns up to limit entries with ID strictly greater than sinceID.
func (a *auditLog) Since(sinceID int64, limit int) []AuditEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if limit <= 0 {
		limit = len(a.entries)
	}
	out := make([]AuditEntry, 0, limit)
	for _, e := range a.entries {
		id, _ := strconv.ParseInt(e.ID, 10, 64)
		if id > sinceID {
			out = append(out, e)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

// clone returns an independent copy of the log's current contents; a cloned
// Network starts with its own copy of the history, not a shared writer, so
// entries appended to one log never appear in the other.
func (a *auditLog) clone() *auditLog {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c := newAuditLog(a.capacity)
	c.entries = append(c.entries, a.entries...)
	c.nextID = a.nextID
	return c
}
