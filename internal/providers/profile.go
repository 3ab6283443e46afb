// Package providers implements the C3 provider adapter: per-provider wire
// compatibility profiles plus a uniform streaming Adapter interface that
// normalizes every backend's responses into faeevents.LlmEvent.
package providers

// ReasoningMode selects how a provider surfaces chain-of-thought content.
type ReasoningMode string

const (
	ReasoningNone             ReasoningMode = "none"
	ReasoningOpenAIO1         ReasoningMode = "openai_o1"
	ReasoningDeepSeekThinking ReasoningMode = "deepseek_thinking"
)

// ToolCallFormat selects how a provider expects/returns tool invocations.
type ToolCallFormat string

const (
	ToolCallStandard    ToolCallFormat = "standard"
	ToolCallNoStreaming ToolCallFormat = "no_streaming"
	ToolCallUnsupported ToolCallFormat = "unsupported"
)

// Profile fixes the wire-format quirks of one provider family. Unknown
// provider names fall back to openAICompatibleProfile.
type Profile struct {
	Name               string
	MaxTokensField     string
	ReasoningMode      ReasoningMode
	ToolCallFormat     ToolCallFormat
	StopSequenceField  string
	SupportsSystem     bool
	SupportsStreaming  bool
	SupportsStreamUsage bool
	SupportsStreamOpts bool
	APIPathOverride    string
}

var openAICompatibleProfile = Profile{
	Name:                "openai-compatible",
	MaxTokensField:      "max_tokens",
	ReasoningMode:       ReasoningNone,
	ToolCallFormat:      ToolCallStandard,
	StopSequenceField:   "stop",
	SupportsSystem:      true,
	SupportsStreaming:   true,
	SupportsStreamUsage: true,
	SupportsStreamOpts:  true,
}

var profiles = map[string]Profile{
	"openai": openAICompatibleProfile,
	"openai-o1": {
		Name:              "openai-o1",
		MaxTokensField:    "max_completion_tokens",
		ReasoningMode:     ReasoningOpenAIO1,
		ToolCallFormat:    ToolCallNoStreaming,
		StopSequenceField: "stop",
		SupportsSystem:    false,
		SupportsStreaming: false,
	},
	"anthropic": {
		Name:              "anthropic",
		MaxTokensField:    "max_tokens",
		ReasoningMode:     ReasoningNone,
		ToolCallFormat:    ToolCallStandard,
		StopSequenceField: "stop_sequences",
		SupportsSystem:    true,
		SupportsStreaming: true,
		APIPathOverride:   "/v1/messages",
	},
	"bedrock": {
		Name:              "bedrock",
		MaxTokensField:    "max_tokens",
		ReasoningMode:     ReasoningNone,
		ToolCallFormat:    ToolCallStandard,
		StopSequenceField: "stop_sequences",
		SupportsSystem:    true,
		SupportsStreaming: true,
	},
	"gemini": {
		Name:                "gemini",
		MaxTokensField:      "maxOutputTokens",
		ReasoningMode:       ReasoningNone,
		ToolCallFormat:      ToolCallStandard,
		StopSequenceField:   "stopSequences",
		SupportsSystem:      true,
		SupportsStreaming:   true,
		SupportsStreamUsage: true,
		APIPathOverride:     "/v1beta/models",
	},
	"deepseek": {
		Name:              "deepseek",
		MaxTokensField:    "max_tokens",
		ReasoningMode:     ReasoningDeepSeekThinking,
		ToolCallFormat:    ToolCallStandard,
		StopSequenceField: "stop",
		SupportsSystem:    true,
		SupportsStreaming: true,
	},
	"ollama": {
		Name:              "ollama",
		MaxTokensField:    "num_predict",
		ReasoningMode:     ReasoningNone,
		ToolCallFormat:    ToolCallUnsupported,
		StopSequenceField: "stop",
		SupportsSystem:    true,
		SupportsStreaming: true,
		APIPathOverride:   "/api/chat",
	},
}

// ProfileFor looks up a provider's compatibility profile by name, falling
// back to the OpenAI-compatible profile for anything unregistered.
func ProfileFor(providerName string) Profile {
	if p, ok := profiles[providerName]; ok {
		return p
	}
	return openAICompatibleProfile
}
