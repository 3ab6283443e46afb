// Package hostchannel implements the host command/event channel (C12):
// a versioned envelope contract, a closed command catalog, a bounded
// lossy event broadcast hub, and transports (stdio, with a gRPC/websocket
// seam) that expose it to an embedding host application.
package hostchannel

// ContractVersion is the only envelope version this build accepts.
const ContractVersion = 1

// CommandEnvelope is a request from the host to the core.
type CommandEnvelope struct {
	V         int            `json:"v"`
	RequestID string         `json:"request_id"`
	Command   string         `json:"command"`
	Payload   map[string]any `json:"payload"`
}

// ResponseEnvelope answers exactly one CommandEnvelope.
type ResponseEnvelope struct {
	V         int            `json:"v"`
	RequestID string         `json:"request_id"`
	OK        bool           `json:"ok"`
	Payload   map[string]any `json:"payload,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// EventEnvelope is an unsolicited broadcast from the core to subscribers.
type EventEnvelope struct {
	V       int            `json:"v"`
	EventID string         `json:"event_id"`
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload,omitempty"`
}

func errorResponse(requestID, errMsg string) ResponseEnvelope {
	return ResponseEnvelope{V: ContractVersion, RequestID: requestID, OK: false, Error: errMsg}
}

func okResponse(requestID string, payload map[string]any) ResponseEnvelope {
	return ResponseEnvelope{V: ContractVersion, RequestID: requestID, OK: true, Payload: payload}
}
