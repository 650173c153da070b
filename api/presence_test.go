package api

import (
	"testing"
	"time"

	"github.com/agiliza2b-source/tasks2/domain"
)

func loginEventCount(store *mockStore) int {
	store.mu.Lock()
	defer store.mu.Unlock()
	n := 0
	for _, ev := range store.events {
		if ev.Action == domain.ActionLogin {
			n++
		}
	}
	return n
}

func waitForLoginEvent(t *testing.T, store *mockStore) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for loginEventCount(store) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("login event not recorded")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPresenceFirstTouchRecordsLogin(t *testing.T) {
	store := &mockStore{}
	tracker := newPresenceTracker(store)

	tracker.Touch("user-1")
	waitForLoginEvent(t, store)

	// A second touch inside the window neither repeats the login event
	// nor refreshes the profile.
	tracker.Touch("user-1")
	time.Sleep(50 * time.Millisecond)

	if n := loginEventCount(store); n != 1 {
		t.Fatalf("expected a single login event, got %d", n)
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.touches != 1 {
		t.Fatalf("expected a single profile touch, got %d", store.touches)
	}
}

func TestPresenceDistinctUsersEachLogIn(t *testing.T) {
	store := &mockStore{}
	tracker := newPresenceTracker(store)

	tracker.Touch("user-1")
	tracker.Touch("user-2")

	deadline := time.Now().Add(time.Second)
	for loginEventCount(store) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 login events, got %d", loginEventCount(store))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
