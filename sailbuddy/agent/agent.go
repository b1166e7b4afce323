// Package agent runs the JSON-blob tool loop that turns a query into a final
// answer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/olusolaa/sailbuddy/foundation/tools"
)

const (
	DefaultMaxSteps = 15

	// StoppedOutput is the output of a query that ran out of steps.
	StoppedOutput = "Agent stopped due to iteration limit or time limit."

	invalidStepObservation = "Invalid or incomplete response"
)

// Response keys.
const (
	KeyInput  = "input"
	KeyOutput = "output"
)

// Agent answers queries by alternating model steps and tool calls. Invoke is
// not meant to run concurrently; callers serialize queries.
type Agent struct {
	step     compose.Runnable[map[string]any, *schema.Message]
	registry *tools.Registry
	memory   *Memory
	maxSteps int
	logger   *zap.Logger
}

type Option func(*Agent)

func WithMaxSteps(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxSteps = n
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// New creates and initializes an Agent. It compiles the step chain once.
func New(ctx context.Context, chatModel model.BaseChatModel, registry *tools.Registry, memory *Memory, opts ...Option) (*Agent, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if memory == nil {
		memory = NewMemory(0)
	}

	step, err := buildStepChain(ctx, chatModel)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		step:     step,
		registry: registry,
		memory:   memory,
		maxSteps: DefaultMaxSteps,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Invoke runs one query to completion and returns {"input": query, "output":
// answer}. Tool failures and unparseable steps are fed back to the model as
// observations. Only a chat model failure is returned as an error, in which
// case the memory is left unchanged.
func (a *Agent) Invoke(ctx context.Context, query string) (map[string]any, error) {
	log := LoggerFrom(ctx, a.logger)
	handler := NewRunLogger(log).Build()

	var (
		toolNames  = strings.Join(a.registry.Names(), ", ")
		toolDescs  = a.registry.Describe()
		history    = a.memory.Messages()
		scratchpad []*schema.Message
	)

	log.Info("query started", zap.String("query", query), zap.Int("history", len(history)))

	for n := 1; n <= a.maxSteps; n++ {
		reply, err := a.step.Invoke(ctx,
			stepVariables(toolNames, toolDescs, query, history, scratchpad),
			compose.WithCallbacks(handler),
			compose.WithChatModelOption(model.WithStop([]string{StopMarker})),
		)
		if err != nil {
			return nil, fmt.Errorf("agent step %d: %w", n, err)
		}

		decision := Parse(reply.Content)

		var observation string
		switch decision.Kind {
		case DecisionFinish:
			a.memory.Append(schema.UserMessage(query), schema.AssistantMessage(answerText(decision.Step.Input), nil))
			log.Info("query finished", zap.Int("steps", n))
			return map[string]any{KeyInput: query, KeyOutput: decodeOutput(decision.Step.Input)}, nil
		case DecisionAction:
			observation = a.runTool(ctx, handler, decision.Step)
		default:
			log.Warn("unparseable step", zap.Int("step", n), zap.Error(decision.Err))
			observation = invalidStepObservation
		}
		log.Info("step",
			zap.Int("step", n),
			zap.Stringer("kind", decision.Kind),
			zap.String("action", decision.Step.Action),
			zap.String("thought", decision.Step.Thought),
			zap.Int("observation_bytes", len(observation)),
		)

		scratchpad = append(scratchpad,
			schema.AssistantMessage(reply.Content, nil),
			schema.UserMessage(observation),
		)
	}

	log.Warn("query stopped", zap.Int("max_steps", a.maxSteps))
	return map[string]any{KeyInput: query, KeyOutput: StoppedOutput}, nil
}

// runTool executes step and returns what the model observes. It never fails.
func (a *Agent) runTool(ctx context.Context, handler callbacks.Handler, step Step) string {
	if _, ok := a.registry.Lookup(step.Action); !ok {
		return fmt.Sprintf("%s is not a valid tool, try one of [%s].", step.Action, strings.Join(a.registry.Names(), ", "))
	}

	input := step.InputText()
	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      step.Action,
		Type:      "SailBuddyTool",
		Component: components.ComponentOfTool,
	}, handler)
	ctx = callbacks.OnStart(ctx, &tool.CallbackInput{ArgumentsInJSON: input})

	out, err := a.registry.Invoke(ctx, step.Action, input)
	if err != nil {
		callbacks.OnError(ctx, err)
		return "Error: " + err.Error()
	}
	callbacks.OnEnd(ctx, &tool.CallbackOutput{Response: out})
	return out
}

// Memory returns the conversation history the agent reads and extends.
func (a *Agent) Memory() *Memory { return a.memory }

type loggerKey struct{}

// ContextWithLogger attaches a request scoped logger that Invoke uses instead
// of its own.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func LoggerFrom(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return fallback
}
