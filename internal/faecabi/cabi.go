// Package faecabi exposes the runtime as a C ABI so a native shell (Swift,
// or any C-compatible host) can embed it directly. The opaque handle type
// is a uint64 into a process-global registry rather than a raw pointer, so
// the Go runtime's garbage collector never has to reason about a C-held
// reference to Go memory.
package faecabi

/*
#include <stdlib.h>

typedef void (*fae_event_callback)(const char* event_json, void* user_data);

static inline void fae_invoke_callback(fae_event_callback cb, const char* json, void* user_data) {
	if (cb != NULL) {
		cb(json, user_data);
	}
}
*/
import "C"

import (
	"encoding/json"
	"sync"
	"unsafe"

	"github.com/fae-dev/fae-core/internal/hostchannel"
	"github.com/fae-dev/fae-core/internal/permissions"
)

// initConfig is parsed from the JSON string passed to fae_core_init. Neither
// field changes behaviour: the event hub always uses its fixed per-subscriber
// buffer, and log_level is not applied to any logger.
type initConfig struct {
	LogLevel        string `json:"log_level"`
	EventBufferSize int    `json:"event_buffer_size"`
}

type runtime struct {
	mu       sync.Mutex
	router   *hostchannel.Router
	hub      *hostchannel.Hub
	perms    *permissions.Store
	events   <-chan hostchannel.EventEnvelope
	cancel   func()
	callback C.fae_event_callback
	userData unsafe.Pointer
	started  bool
}

var (
	registryMu sync.Mutex
	registry   = map[C.ulonglong]*runtime{}
	nextHandle C.ulonglong = 1
)

func lookup(handle C.ulonglong) *runtime {
	registryMu.Lock()
	defer registryMu.Unlock()
	return registry[handle]
}

// cString allocates a caller-owned C string the host must release via
// fae_string_free.
func cString(s string) *C.char { return C.CString(s) }

//export fae_core_init
func fae_core_init(configJSON *C.char) C.ulonglong {
	var cfg initConfig
	if configJSON != nil {
		_ = json.Unmarshal([]byte(C.GoString(configJSON)), &cfg)
	}

	perms := permissions.New()
	hub := hostchannel.NewHub()
	router := hostchannel.NewRouter(hub, perms)
	events, cancel := hub.Subscribe()

	rt := &runtime{router: router, hub: hub, perms: perms, events: events, cancel: cancel}

	registryMu.Lock()
	handle := nextHandle
	nextHandle++
	registry[handle] = rt
	registryMu.Unlock()

	return handle
}

//export fae_core_start
func fae_core_start(handle C.ulonglong) C.int {
	rt := lookup(handle)
	if rt == nil {
		return -1
	}
	rt.mu.Lock()
	rt.started = true
	rt.mu.Unlock()
	return 0
}

//export fae_core_send_command
func fae_core_send_command(handle C.ulonglong, commandJSON *C.char) *C.char {
	rt := lookup(handle)
	if rt == nil || commandJSON == nil {
		return cString(`{"v":1,"request_id":"unknown","ok":false,"error":"invalid handle"}`)
	}

	var cmd hostchannel.CommandEnvelope
	if err := json.Unmarshal([]byte(C.GoString(commandJSON)), &cmd); err != nil {
		return cString(`{"v":1,"request_id":"unknown","ok":false,"error":"malformed command envelope"}`)
	}

	resp := rt.router.Dispatch(cmd)
	data, err := json.Marshal(resp)
	if err != nil {
		return cString(`{"v":1,"request_id":"unknown","ok":false,"error":"failed to encode response"}`)
	}

	// Drain and fire the event callback synchronously, matching the
	// original's "callback invoked from inside send_command" contract.
	// Callers must not call back into this handle from the callback.
	rt.drainEvents()

	return cString(string(data))
}

//export fae_core_poll_event
func fae_core_poll_event(handle C.ulonglong) *C.char {
	rt := lookup(handle)
	if rt == nil {
		return nil
	}
	select {
	case ev, ok := <-rt.events:
		if !ok {
			return nil
		}
		data, err := json.Marshal(ev)
		if err != nil {
			return nil
		}
		return cString(string(data))
	default:
		return nil
	}
}

//export fae_core_set_event_callback
func fae_core_set_event_callback(handle C.ulonglong, cb C.fae_event_callback, userData unsafe.Pointer) {
	rt := lookup(handle)
	if rt == nil {
		return
	}
	rt.mu.Lock()
	rt.callback = cb
	rt.userData = userData
	rt.mu.Unlock()
}

func (rt *runtime) drainEvents() {
	rt.mu.Lock()
	cb := rt.callback
	userData := rt.userData
	rt.mu.Unlock()
	if cb == nil {
		return
	}
	for {
		select {
		case ev, ok := <-rt.events:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			cjson := cString(string(data))
			C.fae_invoke_callback(cb, cjson, userData)
			C.free(unsafe.Pointer(cjson))
		default:
			return
		}
	}
}

//export fae_core_stop
func fae_core_stop(handle C.ulonglong) {
	rt := lookup(handle)
	if rt == nil {
		return
	}
	rt.mu.Lock()
	rt.started = false
	rt.mu.Unlock()
}

//export fae_core_destroy
func fae_core_destroy(handle C.ulonglong) {
	registryMu.Lock()
	rt, ok := registry[handle]
	if ok {
		delete(registry, handle)
	}
	registryMu.Unlock()
	if ok && rt.cancel != nil {
		rt.cancel()
	}
}

//export fae_string_free
func fae_string_free(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}
