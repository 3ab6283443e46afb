package hostchannel

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// payloadSchemas holds a compiled JSON Schema per command, used as a
// defense-in-depth structural check ahead of the per-command semantic
// validation in catalog.go (which enforces the closed enums catalog.go's
// handlers can't express in a generic schema, like "known palette name").
var payloadSchemas = map[string]*jsonschema.Schema{}

func init() {
	compiler := jsonschema.NewCompiler()
	for name, src := range payloadSchemaSources {
		if err := compiler.AddResource(name+".json", bytes.NewReader([]byte(src))); err != nil {
			continue
		}
		if sch, err := compiler.Compile(name + ".json"); err == nil {
			payloadSchemas[name] = sch
		}
	}
}

var payloadSchemaSources = map[string]string{
	"device.move":       `{"type":"object","required":["target"],"properties":{"target":{"type":"string"}}}`,
	"orb.urgency.set":    `{"type":"object","required":["urgency"],"properties":{"urgency":{"type":"number","minimum":0,"maximum":1}}}`,
	"conversation.inject_text": `{"type":"object","required":["text"],"properties":{"text":{"type":"string","minLength":1}}}`,
}

// validatePayload runs the optional schema check for command, if one is
// registered. Commands without a registered schema skip this layer and
// rely solely on the handler's own field checks.
func validatePayload(command string, payload map[string]any) error {
	sch, ok := payloadSchemas[command]
	if !ok {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return sch.Validate(v)
}
