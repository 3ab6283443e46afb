// Package voicecommand detects runtime model-switch phrases in a user
// transcription before it reaches the LLM, so "switch to Claude" or "use
// the local model" can be intercepted and routed directly to model
// selection instead of being sent as a chat turn.
package voicecommand

import "strings"

// Kind discriminates the detected command.
type Kind string

const (
	KindSwitchModel  Kind = "switch_model"
	KindListModels   Kind = "list_models"
	KindCurrentModel Kind = "current_model"
)

// TargetKind discriminates how a SwitchModel command names its target.
type TargetKind string

const (
	TargetByName     TargetKind = "by_name"
	TargetByProvider TargetKind = "by_provider"
	TargetLocal      TargetKind = "local"
	TargetBest       TargetKind = "best"
)

// Target is the resolved destination of a SwitchModel command.
type Target struct {
	Kind     TargetKind
	Name     string // set when Kind == TargetByName
	Provider string // set when Kind == TargetByProvider
}

// Command is a detected voice command.
type Command struct {
	Kind   Kind
	Target Target // meaningful only when Kind == KindSwitchModel
}

var wakePrefixes = []string{"hey fae ", "fae, ", "fae "}

var listModelPhrases = []string{"list models", "show models", "available models", "what models"}

var currentModelPhrases = []string{
	"what model", "which model", "current model",
	"what model are you using", "which model are you using",
}

var switchPrefixes = []string{"switch to ", "change to ", "swap to "}

var modelKeywords = []string{
	"model", "local", "best", "flagship", "offline",
	"claude", "anthropic", "gpt", "openai", "gemini", "google",
	"llama", "qwen", "mistral", "deepseek",
}

// Parse attempts to detect a voice command in text. It returns nil if text
// reads as ordinary conversation. Matching is case-insensitive and strips
// an optional "fae"/"hey fae" wake prefix.
func Parse(text string) *Command {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return nil
	}

	stripped := stripWakePrefix(text)

	if matchesAny(stripped, listModelPhrases) {
		return &Command{Kind: KindListModels}
	}
	if matchesAny(stripped, currentModelPhrases) {
		return &Command{Kind: KindCurrentModel}
	}
	if targetText, ok := extractSwitchTarget(stripped); ok {
		return &Command{Kind: KindSwitchModel, Target: parseTarget(targetText)}
	}
	return nil
}

func stripWakePrefix(text string) string {
	for _, prefix := range wakePrefixes {
		if rest, ok := strings.CutPrefix(text, prefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return text
}

func matchesAny(text string, patterns []string) bool {
	for _, p := range patterns {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

func extractSwitchTarget(text string) (string, bool) {
	for _, prefix := range switchPrefixes {
		if rest, ok := strings.CutPrefix(text, prefix); ok {
			rest = strings.TrimPrefix(strings.TrimSpace(rest), "the ")
			return strings.TrimSpace(rest), true
		}
	}
	if rest, ok := strings.CutPrefix(text, "use "); ok {
		rest = strings.TrimPrefix(strings.TrimSpace(rest), "the ")
		rest = strings.TrimSpace(rest)
		if looksLikeModelRef(rest) {
			return rest, true
		}
	}
	return "", false
}

func looksLikeModelRef(text string) bool {
	for _, kw := range modelKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func parseTarget(text string) Target {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, " model")
	text = strings.TrimSuffix(text, " please")

	switch text {
	case "local", "offline", "on-device", "on device", "fae-qwen3", "qwen":
		return Target{Kind: TargetLocal}
	case "best", "flagship", "top", "most capable":
		return Target{Kind: TargetBest}
	case "claude", "anthropic":
		return Target{Kind: TargetByProvider, Provider: "anthropic"}
	case "gpt", "openai", "chatgpt":
		return Target{Kind: TargetByProvider, Provider: "openai"}
	case "gemini", "google":
		return Target{Kind: TargetByProvider, Provider: "google"}
	case "llama", "meta":
		return Target{Kind: TargetByProvider, Provider: "meta"}
	case "mistral":
		return Target{Kind: TargetByProvider, Provider: "mistral"}
	case "deepseek":
		return Target{Kind: TargetByProvider, Provider: "deepseek"}
	default:
		return Target{Kind: TargetByName, Name: text}
	}
}

// localProvider is the provider key used by the on-device model.
const localProvider = "fae-local"

// ModelCandidate is one entry in a pre-sorted (by capability tier)
// candidate list that Resolve chooses from.
type ModelCandidate struct {
	Provider string
	Model    string
}

// Resolve maps a parsed Target to an index into candidates (already sorted
// best-first), or -1 if nothing matches.
func Resolve(target Target, candidates []ModelCandidate) int {
	if len(candidates) == 0 {
		return -1
	}
	switch target.Kind {
	case TargetBest:
		return 0
	case TargetLocal:
		for i, c := range candidates {
			if c.Provider == localProvider {
				return i
			}
		}
	case TargetByProvider:
		for i, c := range candidates {
			if strings.EqualFold(c.Provider, target.Provider) {
				return i
			}
		}
	case TargetByName:
		for i, c := range candidates {
			if strings.Contains(strings.ToLower(c.Model), strings.ToLower(target.Name)) {
				return i
			}
		}
	}
	return -1
}
