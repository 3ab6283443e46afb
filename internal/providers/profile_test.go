package providers

import "testing"

func TestUnknownProviderFallsBackToOpenAICompatible(t *testing.T) {
	p := ProfileFor("some-unheard-of-gateway")
	if p.Name != openAICompatibleProfile.Name {
		t.Fatalf("expected fallback profile, got %+v", p)
	}
}

func TestOpenAIO1ProfileUsesMaxCompletionTokens(t *testing.T) {
	p := ProfileFor("openai-o1")
	if p.MaxTokensField != "max_completion_tokens" {
		t.Fatalf("expected max_completion_tokens, got %s", p.MaxTokensField)
	}
	if p.ReasoningMode != ReasoningOpenAIO1 {
		t.Fatalf("expected openai_o1 reasoning mode, got %s", p.ReasoningMode)
	}
	if p.SupportsStreaming {
		t.Fatalf("openai-o1 profile should not claim streaming support")
	}
}

func TestAnthropicProfileUsesStopSequencesField(t *testing.T) {
	p := ProfileFor("anthropic")
	if p.StopSequenceField != "stop_sequences" {
		t.Fatalf("expected stop_sequences, got %s", p.StopSequenceField)
	}
	if p.APIPathOverride != "/v1/messages" {
		t.Fatalf("expected /v1/messages override, got %s", p.APIPathOverride)
	}
}

func TestRegistryGetUnknownProviderErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("nonexistent"); err == nil {
		t.Fatalf("expected error for unregistered provider")
	}
}

func TestCallIDCounterIsMonotonicAndUnique(t *testing.T) {
	c := newCallIDCounter()
	first := c.next()
	second := c.next()
	if first == second {
		t.Fatalf("expected distinct synthesized call ids, got %s twice", first)
	}
}
