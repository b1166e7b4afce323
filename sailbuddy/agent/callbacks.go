package agent

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"go.uber.org/zap"
)

type startKey struct{}

// RunLogger reports model and tool calls of one query. It implements the
// callbacks of callbacks.Handler.
type RunLogger struct {
	logger *zap.Logger
}

func NewRunLogger(logger *zap.Logger) *RunLogger {
	return &RunLogger{logger: logger}
}

// OnStartFn is called when a model or tool call starts.
func (l *RunLogger) OnStartFn(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	switch info.Component {
	case components.ComponentOfChatModel:
		if in := model.ConvCallbackInput(input); in != nil {
			l.logger.Debug("model call started", zap.String("model", info.Type), zap.Int("messages", len(in.Messages)))
		}
	case components.ComponentOfTool:
		if in := tool.ConvCallbackInput(input); in != nil {
			l.logger.Info("tool call started", zap.String("tool", info.Name), zap.String("input", in.ArgumentsInJSON))
		}
	}
	return context.WithValue(ctx, startKey{}, time.Now())
}

// OnEndFn is called when a call finishes.
func (l *RunLogger) OnEndFn(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	fields := []zap.Field{zap.Duration("elapsed", elapsed(ctx))}

	switch info.Component {
	case components.ComponentOfChatModel:
		out := model.ConvCallbackOutput(output)
		if out != nil && out.TokenUsage != nil {
			fields = append(fields,
				zap.Int("prompt_tokens", out.TokenUsage.PromptTokens),
				zap.Int("completion_tokens", out.TokenUsage.CompletionTokens),
			)
		}
		l.logger.Debug("model call finished", fields...)
	case components.ComponentOfTool:
		if out := tool.ConvCallbackOutput(output); out != nil {
			fields = append(fields, zap.Int("bytes", len(out.Response)))
		}
		l.logger.Info("tool call finished", append(fields, zap.String("tool", info.Name))...)
	}
	return ctx
}

// OnErrorFn is called when a call fails.
func (l *RunLogger) OnErrorFn(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	switch info.Component {
	case components.ComponentOfChatModel:
		l.logger.Error("model call failed", zap.Error(err), zap.Duration("elapsed", elapsed(ctx)))
	case components.ComponentOfTool:
		l.logger.Warn("tool call failed", zap.String("tool", info.Name), zap.Error(err), zap.Duration("elapsed", elapsed(ctx)))
	}
	return ctx
}

// Build creates the callbacks.Handler from the logger methods.
func (l *RunLogger) Build() callbacks.Handler {
	builder := callbacks.NewHandlerBuilder()
	builder.OnStartFn(l.OnStartFn)
	builder.OnEndFn(l.OnEndFn)
	builder.OnErrorFn(l.OnErrorFn)
	return builder.Build()
}

func elapsed(ctx context.Context) time.Duration {
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		return time.Since(start)
	}
	return 0
}
