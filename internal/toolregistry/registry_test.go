package toolregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fae-dev/fae-core/internal/permissions"
)

type stubTool struct {
	name  string
	modes map[Mode]bool
}

func (s *stubTool) Name() string            { return s.name }
func (s *stubTool) Description() string     { return "stub" }
func (s *stubTool) Schema() map[string]any  { return map[string]any{"type": "object"} }
func (s *stubTool) AllowedInMode(m Mode) bool { return s.modes[m] }
func (s *stubTool) Execute(args any) ToolResult { return ToolResult{Success: true, Content: "ok"} }

func TestModeGatingFiltersListAvailable(t *testing.T) {
	reg := New(ReadOnly)
	reg.Register(&stubTool{name: "read_file", modes: map[Mode]bool{ReadOnly: true, Full: true}})
	reg.Register(&stubTool{name: "write_file", modes: map[Mode]bool{Full: true}})

	assert.Equal(t, []string{"read_file"}, reg.ListAvailable())
	_, ok := reg.Get("write_file")
	assert.False(t, ok)
	assert.True(t, reg.IsBlockedByMode("write_file"))

	reg.SetMode(Full)
	assert.ElementsMatch(t, []string{"read_file", "write_file"}, reg.ListAvailable())
}

func TestExistsIgnoresMode(t *testing.T) {
	reg := New(ReadOnly)
	reg.Register(&stubTool{name: "write_file", modes: map[Mode]bool{Full: true}})
	assert.True(t, reg.Exists("write_file"))
	assert.False(t, reg.IsBlockedByMode("missing_tool"))
}

func TestSchemasForAPIOnlyAllowedTools(t *testing.T) {
	reg := New(Full)
	reg.Register(&stubTool{name: "b_tool", modes: map[Mode]bool{Full: true}})
	reg.Register(&stubTool{name: "a_tool", modes: map[Mode]bool{Full: true}})
	schemas := reg.SchemasForAPI()
	require.Len(t, schemas, 2)
	assert.Equal(t, "a_tool", schemas[0].Name) // alphabetical
}

func TestGatedToolDeniedWithoutGrant(t *testing.T) {
	store := permissions.New()
	gated := &Gated{
		Inner:    &stubTool{name: "search_contacts", modes: map[Mode]bool{Full: true}},
		Required: permissions.Contacts,
		Store:    store,
	}
	result := gated.Execute(nil)
	assert.False(t, result.Success)
	assert.Equal(t, "Permission not granted: contacts", result.Error)
}

func TestGatedToolProceedsAfterGrant(t *testing.T) {
	store := permissions.New()
	gated := &Gated{
		Inner:    &stubTool{name: "search_contacts", modes: map[Mode]bool{Full: true}},
		Required: permissions.Contacts,
		Store:    store,
	}
	store.Grant(permissions.Contacts)
	result := gated.Execute(nil)
	assert.True(t, result.Success)
}
