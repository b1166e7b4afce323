package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const (
	nodeTemplate  = "StepTemplate"
	nodeChatModel = "StepModel"
)

// buildStepChain compiles the prompt-to-model pipeline that produces one step.
// The loop around it lives in Agent.Invoke.
func buildStepChain(ctx context.Context, chatModel model.BaseChatModel) (compose.Runnable[map[string]any, *schema.Message], error) {
	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.
		AppendChatTemplate(newChatTemplate(), compose.WithNodeName(nodeTemplate)).
		AppendChatModel(chatModel, compose.WithNodeName(nodeChatModel))

	runnable, err := chain.Compile(ctx, compose.WithGraphName("SailBuddyStep"))
	if err != nil {
		return nil, fmt.Errorf("failed to compile step chain: %w", err)
	}
	return runnable, nil
}

// stepVariables fills the template for one step.
func stepVariables(toolNames, toolDescriptions, query string, history, scratchpad []*schema.Message) map[string]any {
	return map[string]any{
		varToolNames:  toolNames,
		varTools:      toolDescriptions,
		varInput:      query,
		varHistory:    history,
		varScratchpad: scratchpad,
	}
}
