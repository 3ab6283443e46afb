package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantVisibleAcrossHandles(t *testing.T) {
	store := New()
	handle1 := store
	handle2 := store // same *Store: two "handles" to the shared state

	handle1.Grant(Contacts)
	assert.True(t, handle2.IsGranted(Contacts))
}

func TestDenyRevokesExistingGrant(t *testing.T) {
	store := New()
	store.Grant(Mail)
	require.True(t, store.IsGranted(Mail))
	store.Deny(Mail)
	assert.False(t, store.IsGranted(Mail))
}

func TestUnknownKindNotGranted(t *testing.T) {
	store := New()
	assert.False(t, store.IsGranted(Camera))
}

func TestParseKindAcceptsBothForms(t *testing.T) {
	k, ok := ParseKind("desktop_automation")
	require.True(t, ok)
	assert.Equal(t, DesktopAutomation, k)

	k, ok = ParseKind("desktopautomation")
	require.True(t, ok)
	assert.Equal(t, DesktopAutomation, k)

	_, ok = ParseKind("not_a_kind")
	assert.False(t, ok)
}

func TestSubscribeReceivesChangeEvents(t *testing.T) {
	store := New()
	ch, cancel := store.Subscribe()
	defer cancel()

	store.Grant(Location)
	ev := <-ch
	assert.Equal(t, Location, ev.Kind)
	assert.True(t, ev.Granted)
}
