// Package agentloop drives the user<->assistant<->tool turn cycle: calling
// a provider adapter, accumulating its stream into a turn, dispatching any
// requested tool calls, and persisting the resulting session.
package agentloop

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fae-dev/fae-core/internal/accumulator"
	"github.com/fae-dev/fae-core/internal/breaker"
	"github.com/fae-dev/fae-core/internal/faeerrors"
	"github.com/fae-dev/fae-core/internal/faeevents"
	"github.com/fae-dev/fae-core/internal/providers"
	"github.com/fae-dev/fae-core/internal/sessions"
	"github.com/fae-dev/fae-core/internal/toolregistry"
	"github.com/fae-dev/fae-core/internal/toolvalidate"
)

// tracer is a side channel only: turns and tool calls run identically
// whether or not a Tracer SDK/exporter is ever registered.
var tracer = otel.Tracer("github.com/fae-dev/fae-core/internal/agentloop")

// Config bounds a loop run. max_turns counts each provider call as one
// turn.
type Config struct {
	MaxTurns          int
	RequestTimeout    time.Duration
	ToolTimeout       time.Duration
}

// DefaultConfig matches the donor's conservative defaults for an
// interactive on-device assistant.
func DefaultConfig() Config {
	return Config{MaxTurns: 25, RequestTimeout: 60 * time.Second, ToolTimeout: 30 * time.Second}
}

// Sink is how the loop emits observable side effects (assistant sentences,
// tool calls, tool results) so a host UI can show progress as it happens.
type Sink interface {
	AssistantText(sessionID, text string)
	ToolCallStarted(sessionID, callID, functionName string)
	ToolCallResult(sessionID, callID string, result toolregistry.ToolResult)
}

type noopSink struct{}

func (noopSink) AssistantText(string, string)                            {}
func (noopSink) ToolCallStarted(string, string, string)                  {}
func (noopSink) ToolCallResult(string, string, toolregistry.ToolResult) {}

// Loop wires together a provider registry, tool registry, breaker
// registry, and session store into the turn cycle.
type Loop struct {
	cfg       Config
	providers *providers.Registry
	tools     *toolregistry.Registry
	breakers  *breaker.Registry
	store     sessions.Store
	retry     breaker.RetryConfig
	sink      Sink
	logger    *slog.Logger
	sleep     func(time.Duration)
}

// New builds a Loop. A nil logger falls back to slog.Default; a nil sink
// discards observable events.
func New(cfg Config, providerRegistry *providers.Registry, toolRegistry *toolregistry.Registry, breakerRegistry *breaker.Registry, store sessions.Store, sink Sink, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = noopSink{}
	}
	return &Loop{
		cfg:       cfg,
		providers: providerRegistry,
		tools:     toolRegistry,
		breakers:  breakerRegistry,
		store:     store,
		retry:     breaker.DefaultRetryConfig(),
		sink:      sink,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// HaltReason explains why Run stopped before a natural Stop/Length finish.
type HaltReason string

const (
	HaltNone               HaltReason = ""
	HaltMaxTurnsExceeded   HaltReason = "max_turns_exceeded"
	HaltCircuitBreakerOpen HaltReason = "circuit_breaker_open"
)

// Result is what Run returns once the loop stops, one way or another.
type Result struct {
	Session *sessions.Session
	Halt    HaltReason
	Err     error
}

// Run drives the loop against sess until a terminal finish reason, a halt
// condition, or an unrecoverable error.
func (l *Loop) Run(ctx context.Context, sess *sessions.Session, providerName string, opts providers.Options) Result {
	adapter, err := l.providers.Get(providerName)
	if err != nil {
		return Result{Session: sess, Err: err}
	}
	br := l.breakers.Get(providerName)

	for turn := 0; ; turn++ {
		if turn >= l.cfg.MaxTurns {
			return Result{Session: sess, Halt: HaltMaxTurnsExceeded, Err: faeerrors.New(faeerrors.KindMaxTurnsExceeded, "max turns exceeded", nil).WithSessionID(sess.Meta.ID)}
		}

		if !br.IsRequestAllowed() {
			return Result{Session: sess, Halt: HaltCircuitBreakerOpen, Err: faeerrors.New(faeerrors.KindCircuitBreakerOpen, "provider circuit breaker is open", nil).
				WithSessionID(sess.Meta.ID).WithRetryAfter(br.RetryAfterSecs())}
		}

		turnResult, err := l.runOneTurn(ctx, adapter, br, sess, opts)
		if err != nil {
			return Result{Session: sess, Err: err}
		}

		done, err := l.applyTurn(ctx, sess, turnResult)
		if err != nil {
			return Result{Session: sess, Err: err}
		}
		if err := l.store.Save(sess); err != nil {
			l.logger.Error("agentloop: failed to save session", "session_id", sess.Meta.ID, "error", err)
		}
		if done {
			return Result{Session: sess, Halt: HaltNone}
		}
	}
}

// runOneTurn calls the adapter (with the breaker-gated retry policy) and
// accumulates its stream into a single Turn.
func (l *Loop) runOneTurn(ctx context.Context, adapter providers.Adapter, br *breaker.Breaker, sess *sessions.Session, opts providers.Options) (accumulator.Turn, error) {
	ctx, span := tracer.Start(ctx, "agentloop.turn", trace.WithAttributes(
		attribute.String("fae.session_id", sess.Meta.ID),
		attribute.String("fae.provider", adapter.Name()),
	))
	defer span.End()

	messages := toProviderMessages(sess)
	tools := toToolSpecs(l.tools.SchemasForAPI())

	var lastErr error
	for attempt := 0; attempt < l.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			l.sleep(l.retry.DelayForAttempt(attempt))
		}

		reqCtx, cancel := context.WithTimeout(ctx, l.cfg.RequestTimeout)
		turn, err := l.consumeStream(reqCtx, adapter.Send(reqCtx, messages, opts, tools))
		cancel()

		if err == nil {
			br.RecordSuccess()
			span.SetStatus(codes.Ok, "")
			return turn, nil
		}

		lastErr = err
		kind := faeerrors.ClassifyError(err)
		if !kind.IsRetryable() {
			br.RecordFailure()
			span.SetStatus(codes.Error, err.Error())
			return accumulator.Turn{}, err
		}
		br.RecordFailure()
	}
	span.SetStatus(codes.Error, lastErr.Error())
	return accumulator.Turn{}, fmt.Errorf("agentloop: retries exhausted for session %s: %w", sess.Meta.ID, lastErr)
}

// consumeStream feeds every event from ch into a fresh accumulator. A
// StreamError marks the turn partial but does not abort accumulation.
func (l *Loop) consumeStream(ctx context.Context, ch <-chan faeevents.LlmEvent) (accumulator.Turn, error) {
	acc := accumulator.New()
	var streamErr error
	for {
		select {
		case <-ctx.Done():
			return acc.Finish(), ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				return acc.Finish(), streamErr
			}
			if ev.Type == faeevents.EventStreamError {
				streamErr = fmt.Errorf("agentloop: provider stream error: %s", ev.Error)
			}
			acc.Push(ev)
		}
	}
}

// applyTurn appends the assistant message for turn, dispatches any tool
// calls in start order, and reports whether the loop should stop (true)
// or continue to another provider call (false, i.e. tool calls ran).
func (l *Loop) applyTurn(ctx context.Context, sess *sessions.Session, turn accumulator.Turn) (bool, error) {
	sess.Meta.TurnCount++

	if turn.Text != "" {
		l.sink.AssistantText(sess.Meta.ID, turn.Text)
	}

	assistantMsg := sessions.Message{Role: sessions.RoleAssistant, Content: sessions.Content{Text: turn.Text}}
	for _, tc := range turn.ToolCalls {
		assistantMsg.ToolCalls = append(assistantMsg.ToolCalls, sessions.AssistantToolCall{
			CallID: tc.CallID, FunctionName: tc.FunctionName, Arguments: tc.ArgumentsJSON,
		})
	}
	sess.Messages = append(sess.Messages, assistantMsg)

	if turn.FinishReason != faeevents.FinishToolCalls || len(turn.ToolCalls) == 0 {
		return true, nil
	}

	for _, tc := range turn.ToolCalls {
		result := l.dispatchTool(ctx, sess.Meta.ID, tc)
		sess.Messages = append(sess.Messages, sessions.Message{
			Role: sessions.RoleTool,
			Content: sessions.Content{
				ToolCallID: tc.CallID,
				ToolResult: result.Content,
			},
		})
	}
	return false, nil
}

func (l *Loop) dispatchTool(ctx context.Context, sessionID string, tc accumulator.ToolCall) toolregistry.ToolResult {
	_, span := tracer.Start(ctx, "agentloop.tool_call", trace.WithAttributes(
		attribute.String("fae.session_id", sessionID),
		attribute.String("fae.tool", tc.FunctionName),
	))
	defer span.End()

	l.sink.ToolCallStarted(sessionID, tc.CallID, tc.FunctionName)

	finish := func(result toolregistry.ToolResult) toolregistry.ToolResult {
		if !result.Success {
			span.SetStatus(codes.Error, result.Error)
		}
		l.sink.ToolCallResult(sessionID, tc.CallID, result)
		return result
	}

	tool, ok := l.tools.Get(tc.FunctionName)
	if !ok {
		return finish(toolregistry.ToolResult{Success: false, Error: fmt.Sprintf("tool '%s': not found or not allowed in current mode", tc.FunctionName)})
	}

	if _, err := toolvalidate.Validate(tc.FunctionName, tc.ArgumentsJSON, toolvalidate.FromMap(tool.Schema())); err != nil {
		return finish(toolregistry.ToolResult{Success: false, Error: fmt.Sprintf("tool '%s': %v", tc.FunctionName, err)})
	}

	var args any
	_ = json.Unmarshal([]byte(tc.ArgumentsJSON), &args)

	resultCh := make(chan toolregistry.ToolResult, 1)
	go func() { resultCh <- tool.Execute(args) }()

	select {
	case result := <-resultCh:
		return finish(result)
	case <-time.After(l.cfg.ToolTimeout):
		return finish(toolregistry.ToolResult{Success: false, Error: fmt.Sprintf("tool '%s': timed out after %s", tc.FunctionName, l.cfg.ToolTimeout)})
	}
}

func toProviderMessages(sess *sessions.Session) []providers.Message {
	var out []providers.Message
	if sess.Meta.SystemPrompt != "" {
		out = append(out, providers.Message{Role: providers.RoleSystem, Text: sess.Meta.SystemPrompt})
	}
	for _, m := range sess.Messages {
		switch m.Role {
		case sessions.RoleUser:
			out = append(out, providers.Message{Role: providers.RoleUser, Text: m.Content.Text})
		case sessions.RoleAssistant:
			out = append(out, providers.Message{Role: providers.RoleAssistant, Text: m.Content.Text})
		case sessions.RoleTool:
			out = append(out, providers.Message{Role: providers.RoleTool, ToolCallID: m.Content.ToolCallID, ToolResult: m.Content.ToolResult})
		case sessions.RoleSystem:
			out = append(out, providers.Message{Role: providers.RoleSystem, Text: m.Content.Text})
		}
	}
	return out
}

func toToolSpecs(schemas []toolregistry.APISchema) []providers.ToolSpec {
	out := make([]providers.ToolSpec, 0, len(schemas))
	for _, s := range schemas {
		out = append(out, providers.ToolSpec{Name: s.Name, Description: s.Description, Parameters: s.Parameters})
	}
	return out
}
