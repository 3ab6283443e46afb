package hostchannel

import (
	"fmt"
	"strings"

	"github.com/fae-dev/fae-core/internal/permissions"
)

var knownPalettes = map[string]bool{"calm": true, "focus": true, "alert": true, "playful": true, "night": true}
var knownFeelings = map[string]bool{"neutral": true, "happy": true, "curious": true, "concerned": true, "excited": true}
var knownDevices = map[string]bool{"watch": true, "phone": true, "mac": true, "speaker": true}
var knownFlashTypes = map[string]bool{"success": true, "error": true, "notice": true}

// Router dispatches CommandEnvelopes against the closed command alphabet
// of each host command, publishing the matching events on hub as a side
// effect of an accepted command.
type Router struct {
	hub   *Hub
	perms *permissions.Store
}

// NewRouter builds a router backed by hub for event broadcast and perms
// for capability.* commands.
func NewRouter(hub *Hub, perms *permissions.Store) *Router {
	return &Router{hub: hub, perms: perms}
}

// Dispatch processes one CommandEnvelope and returns its ResponseEnvelope.
// Unknown commands, wrong contract versions, and out-of-range enum values
// all yield error responses and never publish an event.
func (r *Router) Dispatch(cmd CommandEnvelope) ResponseEnvelope {
	if cmd.V != ContractVersion {
		return errorResponse(cmd.RequestID, fmt.Sprintf("unsupported contract version %d", cmd.V))
	}

	handler, ok := handlers[cmd.Command]
	if !ok {
		return errorResponse(cmd.RequestID, fmt.Sprintf("unknown command %q", cmd.Command))
	}
	if err := validatePayload(cmd.Command, cmd.Payload); err != nil {
		return errorResponse(cmd.RequestID, "payload validation failed: "+err.Error())
	}
	return handler(r, cmd)
}

type handlerFunc func(r *Router, cmd CommandEnvelope) ResponseEnvelope

var handlers = map[string]handlerFunc{
	"host.ping":                    handleHostPing,
	"host.version":                 handleHostVersion,
	"device.move":                  handleDeviceMove,
	"device.go_home":               handleDeviceGoHome,
	"orb.palette.set":              handleOrbPaletteSet,
	"orb.palette.clear":            handleOrbPaletteClear,
	"orb.feeling.set":              handleOrbFeelingSet,
	"orb.urgency.set":              handleOrbUrgencySet,
	"orb.flash":                    handleOrbFlash,
	"conversation.inject_text":     handleConversationInjectText,
	"conversation.gate_set":        handleConversationGateSet,
	"conversation.link_detected":   handleConversationLinkDetected,
	"capability.request":           handleCapabilityRequest,
	"capability.grant":             handleCapabilityGrant,
	"capability.deny":              handleCapabilityDeny,
}

func stringField(payload map[string]any, key string) (string, bool) {
	v, ok := payload[key].(string)
	return v, ok
}

func handleHostPing(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	return okResponse(cmd.RequestID, map[string]any{"pong": true})
}

func handleHostVersion(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	return okResponse(cmd.RequestID, map[string]any{"contract_version": ContractVersion, "channel": "stdio"})
}

func handleDeviceMove(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	target, ok := stringField(cmd.Payload, "target")
	if !ok || !knownDevices[target] {
		return errorResponse(cmd.RequestID, fmt.Sprintf("unknown device target %q", target))
	}
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "device.transfer_requested", Payload: map[string]any{"target": target}})
	return okResponse(cmd.RequestID, map[string]any{"accepted": true, "target": target})
}

func handleDeviceGoHome(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "device.home_requested"})
	return okResponse(cmd.RequestID, map[string]any{"accepted": true, "target": "mac"})
}

func handleOrbPaletteSet(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	palette, ok := stringField(cmd.Payload, "palette")
	if !ok || !knownPalettes[palette] {
		return errorResponse(cmd.RequestID, fmt.Sprintf("unknown palette %q", palette))
	}
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "orb.palette_set_requested", Payload: map[string]any{"palette": palette}})
	return okResponse(cmd.RequestID, map[string]any{"accepted": true, "palette": palette})
}

func handleOrbPaletteClear(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "orb.palette_cleared"})
	return okResponse(cmd.RequestID, map[string]any{"accepted": true})
}

func handleOrbFeelingSet(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	feeling, ok := stringField(cmd.Payload, "feeling")
	if !ok || !knownFeelings[feeling] {
		return errorResponse(cmd.RequestID, fmt.Sprintf("unknown feeling %q", feeling))
	}
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "orb.feeling_set_requested", Payload: map[string]any{"feeling": feeling}})
	return okResponse(cmd.RequestID, map[string]any{"accepted": true, "feeling": feeling})
}

func handleOrbUrgencySet(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	urgency, ok := cmd.Payload["urgency"].(float64)
	if !ok || urgency < 0.0 || urgency > 1.0 {
		return errorResponse(cmd.RequestID, "urgency must be a number in [0.0, 1.0]")
	}
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "orb.urgency_set_requested", Payload: map[string]any{"urgency": urgency}})
	return okResponse(cmd.RequestID, map[string]any{"accepted": true, "urgency": urgency})
}

func handleOrbFlash(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	flashType, ok := stringField(cmd.Payload, "flash_type")
	if !ok || !knownFlashTypes[flashType] {
		return errorResponse(cmd.RequestID, fmt.Sprintf("unknown flash_type %q", flashType))
	}
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "orb.flash_requested", Payload: map[string]any{"flash_type": flashType}})
	return okResponse(cmd.RequestID, map[string]any{"accepted": true, "flash_type": flashType})
}

func handleConversationInjectText(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	text, ok := stringField(cmd.Payload, "text")
	if !ok || strings.TrimSpace(text) == "" {
		return errorResponse(cmd.RequestID, "text must be non-empty")
	}
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "conversation.text_injected", Payload: map[string]any{"text": text}})
	return okResponse(cmd.RequestID, map[string]any{"accepted": true, "text": text})
}

func handleConversationGateSet(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	active, ok := cmd.Payload["active"].(bool)
	if !ok {
		return errorResponse(cmd.RequestID, "active must be a boolean")
	}
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "conversation.gate_set", Payload: map[string]any{"active": active}})
	return okResponse(cmd.RequestID, map[string]any{"accepted": true, "active": active})
}

func handleConversationLinkDetected(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	url, ok := stringField(cmd.Payload, "url")
	if !ok || !(strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")) {
		return errorResponse(cmd.RequestID, "url must use http or https")
	}
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "conversation.link_detected", Payload: map[string]any{"url": url}})
	return okResponse(cmd.RequestID, map[string]any{"accepted": true, "url": url})
}

func handleCapabilityRequest(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	kindStr, ok := stringField(cmd.Payload, "capability")
	kind, parsedOK := permissions.ParseKind(kindStr)
	if !ok || !parsedOK {
		return errorResponse(cmd.RequestID, fmt.Sprintf("unknown capability %q", kindStr))
	}
	payload := map[string]any{"capability": string(kind)}
	for _, passthrough := range []string{"reason", "jit", "tool_name", "tool_action", "scope"} {
		if v, present := cmd.Payload[passthrough]; present {
			payload[passthrough] = v
		}
	}
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "capability.requested", Payload: payload})
	resp := map[string]any{"accepted": true, "capability": string(kind)}
	if scope, present := cmd.Payload["scope"]; present {
		resp["scope"] = scope
	}
	return okResponse(cmd.RequestID, resp)
}

func handleCapabilityGrant(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	kindStr, ok := stringField(cmd.Payload, "capability")
	kind, parsedOK := permissions.ParseKind(kindStr)
	if !ok || !parsedOK {
		return errorResponse(cmd.RequestID, fmt.Sprintf("unknown capability %q", kindStr))
	}
	r.perms.Grant(kind)
	payload := map[string]any{"capability": string(kind)}
	if scope, present := cmd.Payload["scope"]; present {
		payload["scope"] = scope
	}
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "capability.granted", Payload: payload})
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "permissions.changed", Payload: payload})
	return okResponse(cmd.RequestID, map[string]any{"accepted": true, "capability": string(kind)})
}

func handleCapabilityDeny(r *Router, cmd CommandEnvelope) ResponseEnvelope {
	kindStr, ok := stringField(cmd.Payload, "capability")
	kind, parsedOK := permissions.ParseKind(kindStr)
	if !ok || !parsedOK {
		return errorResponse(cmd.RequestID, fmt.Sprintf("unknown capability %q", kindStr))
	}
	r.perms.Deny(kind)
	payload := map[string]any{"capability": string(kind)}
	if scope, present := cmd.Payload["scope"]; present {
		payload["scope"] = scope
	}
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "capability.denied", Payload: payload})
	r.hub.Publish(EventEnvelope{V: ContractVersion, EventID: r.hub.nextEventID(), Event: "permissions.changed", Payload: payload})
	return okResponse(cmd.RequestID, map[string]any{"accepted": true, "capability": string(kind)})
}
