package toolregistry

import (
	"fmt"

	"github.com/fae-dev/fae-core/internal/permissions"
)

// CapabilityRequester is notified when a gated tool is denied because its
// required permission has not been granted, so the host can surface a
// just-in-time permission dialog. No type in this module implements it; the
// host channel publishes capability.requested events only from its own
// capability.request command handler.
type CapabilityRequester interface {
	RequestCapability(kind permissions.Kind, toolName string)
}

// Gated wraps a Tool with a required permission, consulting a shared
// permission store on every execution. Because the store is shared, a grant
// made after a denial is observed by the next execution without rewrapping.
type Gated struct {
	Inner      Tool
	Required   permissions.Kind
	Store      *permissions.Store
	Requester  CapabilityRequester
}

func (g *Gated) Name() string                     { return g.Inner.Name() }
func (g *Gated) Description() string              { return g.Inner.Description() }
func (g *Gated) Schema() map[string]any           { return g.Inner.Schema() }
func (g *Gated) AllowedInMode(mode Mode) bool      { return g.Inner.AllowedInMode(mode) }

// Execute checks the shared permission store before delegating. A denial
// never reaches the inner tool; it returns a synthetic failure result and
// notifies the requester so the host can prompt the user.
func (g *Gated) Execute(args any) ToolResult {
	if !g.Store.IsGranted(g.Required) {
		if g.Requester != nil {
			g.Requester.RequestCapability(g.Required, g.Inner.Name())
		}
		return ToolResult{
			Success: false,
			Error:   fmt.Sprintf("Permission not granted: %s", g.Required),
		}
	}
	return g.Inner.Execute(args)
}
