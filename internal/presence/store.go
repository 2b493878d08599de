// Package presence tracks which users are online via heartbeats with a TTL.
// A user is online while their last heartbeat is younger than the TTL; absence
// of heartbeats is the only way to go offline. Governance never reads this.
package presence

import (
	"sort"
	"sync"
	"time"
)

// Store is an in-memory heartbeat store.
type Store struct {
	mu   sync.RWMutex
	m    map[string]time.Time // user id -> last heartbeat
	ttl  time.Duration
	nowF func() time.Time
}

// NewStore returns a Store with the given TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		m:    make(map[string]time.Time),
		ttl:  ttl,
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// Heartbeat records that userID is online now.
func (s *Store) Heartbeat(userID string) {
	if userID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[userID] = s.nowF()
}

// IsOnline reports whether userID heartbeated within the TTL. Expired entries
// are removed on read.
func (s *Store) IsOnline(userID string) bool {
	s.mu.RLock()
	last, ok := s.m[userID]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	if s.nowF().Sub(last) >= s.ttl {
		s.mu.Lock()
		delete(s.m, userID)
		s.mu.Unlock()
		return false
	}
	return true
}

// OnlineAmong returns the subset of userIDs currently online, sorted.
func (s *Store) OnlineAmong(userIDs []string) []string {
	now := s.nowF()
	var online []string
	s.mu.RLock()
	for _, id := range userIDs {
		if last, ok := s.m[id]; ok && now.Sub(last) < s.ttl {
			online = append(online, id)
		}
	}
	s.mu.RUnlock()
	sort.Strings(online)
	return online
}
