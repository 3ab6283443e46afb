package hostchannel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fae-dev/fae-core/internal/permissions"
)

func newTestRouter() (*Router, *Hub) {
	hub := NewHub()
	return NewRouter(hub, permissions.New()), hub
}

func TestHostPingReturnsPong(t *testing.T) {
	r, _ := newTestRouter()
	resp := r.Dispatch(CommandEnvelope{V: 1, RequestID: "r1", Command: "host.ping"})
	assert.True(t, resp.OK)
	assert.Equal(t, true, resp.Payload["pong"])
}

func TestUnknownCommandReturnsError(t *testing.T) {
	r, _ := newTestRouter()
	resp := r.Dispatch(CommandEnvelope{V: 1, RequestID: "r1", Command: "bogus.command"})
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
}

func TestMismatchedContractVersionRejected(t *testing.T) {
	r, _ := newTestRouter()
	resp := r.Dispatch(CommandEnvelope{V: 2, RequestID: "r1", Command: "host.ping"})
	assert.False(t, resp.OK)
}

func TestOrbPaletteSetUnknownPaletteRejectedNoEvent(t *testing.T) {
	r, hub := newTestRouter()
	events, cancel := hub.Subscribe()
	defer cancel()

	resp := r.Dispatch(CommandEnvelope{V: 1, RequestID: "r1", Command: "orb.palette.set", Payload: map[string]any{"palette": "nonexistent"}})
	assert.False(t, resp.OK)
	select {
	case ev := <-events:
		t.Fatalf("expected no event for rejected command, got %+v", ev)
	default:
	}
}

func TestOrbPaletteSetKnownPaletteAcceptedAndBroadcasts(t *testing.T) {
	r, hub := newTestRouter()
	events, cancel := hub.Subscribe()
	defer cancel()

	resp := r.Dispatch(CommandEnvelope{V: 1, RequestID: "r1", Command: "orb.palette.set", Payload: map[string]any{"palette": "calm"}})
	require.True(t, resp.OK)
	ev := <-events
	assert.Equal(t, "orb.palette_set_requested", ev.Event)
}

func TestConversationLinkDetectedRejectsNonHTTPScheme(t *testing.T) {
	r, _ := newTestRouter()
	resp := r.Dispatch(CommandEnvelope{V: 1, RequestID: "r1", Command: "conversation.link_detected", Payload: map[string]any{"url": "ftp://example.com"}})
	assert.False(t, resp.OK)
}

func TestConversationInjectTextRejectsEmpty(t *testing.T) {
	r, _ := newTestRouter()
	resp := r.Dispatch(CommandEnvelope{V: 1, RequestID: "r1", Command: "conversation.inject_text", Payload: map[string]any{"text": "  "}})
	assert.False(t, resp.OK)
}

func TestCapabilityGrantUpdatesSharedStoreAndBroadcastsTwoEvents(t *testing.T) {
	hub := NewHub()
	store := permissions.New()
	r := NewRouter(hub, store)
	events, cancel := hub.Subscribe()
	defer cancel()

	resp := r.Dispatch(CommandEnvelope{V: 1, RequestID: "r1", Command: "capability.grant", Payload: map[string]any{"capability": "microphone"}})
	require.True(t, resp.OK)
	assert.True(t, store.IsGranted(permissions.Microphone))

	first := <-events
	second := <-events
	assert.Equal(t, "capability.granted", first.Event)
	assert.Equal(t, "permissions.changed", second.Event)
}

func TestOrbUrgencySetRejectsOutOfRange(t *testing.T) {
	r, _ := newTestRouter()
	resp := r.Dispatch(CommandEnvelope{V: 1, RequestID: "r1", Command: "orb.urgency.set", Payload: map[string]any{"urgency": 1.5}})
	assert.False(t, resp.OK)
}

func TestHubDropsEventsForSlowSubscriber(t *testing.T) {
	hub := NewHub()
	_, cancel := hub.Subscribe()
	defer cancel()
	for i := 0; i < defaultEventBufferCap+10; i++ {
		hub.Publish(EventEnvelope{V: 1, EventID: "x", Event: "test"})
	}
}
