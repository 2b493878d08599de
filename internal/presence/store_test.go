package presence

import (
	"testing"
	"time"
)

func TestHeartbeatAndExpiry(t *testing.T) {
	s := NewStore(30 * time.Second)
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	s.nowF = func() time.Time { return now }

	if s.IsOnline("u1") {
		t.Error("u1 should start offline")
	}
	s.Heartbeat("u1")
	if !s.IsOnline("u1") {
		t.Error("u1 should be online after heartbeat")
	}

	now = now.Add(29 * time.Second)
	if !s.IsOnline("u1") {
		t.Error("u1 should still be online just inside the TTL")
	}
	now = now.Add(2 * time.Second)
	if s.IsOnline("u1") {
		t.Error("u1 should be offline after the TTL")
	}
	// Expired entry was pruned.
	s.mu.RLock()
	_, ok := s.m["u1"]
	s.mu.RUnlock()
	if ok {
		t.Error("expired entry should be removed")
	}
}

func TestOnlineAmong(t *testing.T) {
	s := NewStore(time.Minute)
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	s.nowF = func() time.Time { return now }

	s.Heartbeat("u3")
	s.Heartbeat("u1")
	now = now.Add(2 * time.Minute)
	s.Heartbeat("u2")

	got := s.OnlineAmong([]string{"u1", "u2", "u3", "u4"})
	if len(got) != 1 || got[0] != "u2" {
		t.Errorf("OnlineAmong = %v, want [u2]", got)
	}
}

func TestDefaultClockAdvances(t *testing.T) {
	s := NewStore(30 * time.Millisecond)

	first := s.nowF()
	time.Sleep(5 * time.Millisecond)
	if !s.nowF().After(first) {
		t.Fatal("default clock did not advance between calls")
	}

	s.Heartbeat("u1")
	if !s.IsOnline("u1") {
		t.Error("u1 should be online right after heartbeat")
	}
	time.Sleep(60 * time.Millisecond)
	if s.IsOnline("u1") {
		t.Error("u1 should have expired under the default clock")
	}
}

func TestEmptyUserIgnored(t *testing.T) {
	s := NewStore(time.Minute)
	s.Heartbeat("")
	if s.IsOnline("") {
		t.Error("empty user id must never be online")
	}
}
