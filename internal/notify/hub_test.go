package notify_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hash066/bcm-approval/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *notify.Hub, role string) *notify.Client {
	return &notify.Client{
		ID:      "client-" + role,
		ActorID: "actor-" + role,
		Role:    role,
		Hub:     hub,
		Send:    make(chan []byte, 8),
	}
}

func registerAndWait(t *testing.T, hub *notify.Hub, client *notify.Client, want int) {
	t.Helper()
	hub.Register <- client
	require.Eventually(t, func() bool {
		return hub.ClientCount() == want
	}, time.Second, 5*time.Millisecond)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := notify.NewHub()
	go hub.Run()

	client := newTestClient(hub, "department_head")
	registerAndWait(t, hub, client, 1)

	hub.Unregister <- client
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, time.Second, 5*time.Millisecond)

	// The send channel closes on unregister.
	_, open := <-client.Send
	assert.False(t, open)
}

// A pending event reaches only the role whose queue grew.
func TestHub_PublishEvent_RoutesToRole(t *testing.T) {
	hub := notify.NewHub()
	go hub.Run()

	deptHead := newTestClient(hub, "department_head")
	orgHead := newTestClient(hub, "organization_head")
	registerAndWait(t, hub, deptHead, 1)
	registerAndWait(t, hub, orgHead, 2)

	hub.PublishEvent(&notify.Event{
		RequestID:           "req-1",
		RequestType:         "clause_edit",
		Status:              "pending",
		CurrentApproverRole: "department_head",
		OccurredAt:          time.Now(),
	})

	select {
	case msg := <-deptHead.Send:
		var ev notify.Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, "req-1", ev.RequestID)
	case <-time.After(time.Second):
		t.Fatal("department head never received the event")
	}

	select {
	case <-orgHead.Send:
		t.Fatal("organization head should not receive a department head event")
	case <-time.After(50 * time.Millisecond):
	}
}

// Terminal events fan out to every subscriber so open dashboards refresh.
func TestHub_PublishEvent_TerminalFansOut(t *testing.T) {
	hub := notify.NewHub()
	go hub.Run()

	deptHead := newTestClient(hub, "department_head")
	admin := newTestClient(hub, "admin")
	registerAndWait(t, hub, deptHead, 1)
	registerAndWait(t, hub, admin, 2)

	hub.PublishEvent(&notify.Event{
		RequestID:   "req-1",
		RequestType: "clause_edit",
		Status:      "rejected",
		Decision:    "rejected",
		OccurredAt:  time.Now(),
	})

	for _, client := range []*notify.Client{deptHead, admin} {
		select {
		case msg := <-client.Send:
			var ev notify.Event
			require.NoError(t, json.Unmarshal(msg, &ev))
			assert.Equal(t, "rejected", ev.Status)
		case <-time.After(time.Second):
			t.Fatalf("client %s never received the terminal event", client.ID)
		}
	}
}

// A client whose buffer is full gets dropped instead of blocking delivery to
// everyone else.
func TestHub_SlowClientDropped(t *testing.T) {
	hub := notify.NewHub()
	go hub.Run()

	slow := &notify.Client{
		ID:   "slow",
		Role: "department_head",
		Hub:  hub,
		Send: make(chan []byte), // unbuffered and never read
	}
	registerAndWait(t, hub, slow, 1)

	hub.BroadcastToRole("department_head", []byte(`{}`))

	assert.Zero(t, hub.ClientCount())
}
