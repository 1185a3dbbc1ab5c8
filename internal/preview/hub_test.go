package preview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHubBroadcastSkipsUnchangedHash(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Shutdown()

	c := &hubClient{id: 0, ch: make(chan string, 8), done: make(chan struct{})}
	hub.clients[c.id] = c

	hub.Broadcast("aaa")
	hub.Broadcast("aaa")
	hub.Broadcast("")
	hub.Broadcast("bbb")

	require.Equal(t, "aaa", <-c.ch)
	require.Equal(t, "bbb", <-c.ch)
	select {
	case extra := <-c.ch:
		t.Fatalf("expected no further broadcast, got %q", extra)
	default:
	}
}

func TestHubDropsClientWithFullChannel(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Shutdown()

	stuck := &hubClient{id: 0, ch: make(chan string), done: make(chan struct{})}
	healthy := &hubClient{id: 1, ch: make(chan string, 8), done: make(chan struct{})}
	hub.clients[stuck.id] = stuck
	hub.clients[healthy.id] = healthy
	hub.nextID = 2

	hub.Broadcast("ccc")

	require.Equal(t, 1, hub.Clients())
	require.Equal(t, "ccc", <-healthy.ch)
	select {
	case <-stuck.done:
	case <-time.After(time.Second):
		t.Fatal("expected dropped client to be closed")
	}
}

func TestHubShutdownDisconnectsEverything(t *testing.T) {
	hub := NewHub(nil)

	c := &hubClient{id: 0, ch: make(chan string, 8), done: make(chan struct{})}
	hub.clients[c.id] = c
	hub.nextID = 1

	hub.Shutdown()
	require.Equal(t, 0, hub.Clients())
	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("expected client to be closed on shutdown")
	}

	// Later broadcasts are no-ops.
	hub.Broadcast("after")
	require.Equal(t, 0, hub.Clients())
}
