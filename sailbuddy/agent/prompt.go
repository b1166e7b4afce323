package agent

import (
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// StopMarker ends every step the model writes. It is also passed to the model
// as a stop sequence.
const StopMarker = "STOP"

// Template variables.
const (
	varTools      = "tools"
	varToolNames  = "tool_names"
	varInput      = "input"
	varHistory    = "chat_history"
	varScratchpad = "agent_scratchpad"
)

const persona = `You are a chatbot having a conversation with a human. You love making references to French culture in your answers.`

const protocol = `
You are designed to solve tasks. Each task requires multiple steps that are represented by a markdown code snippet of a json blob.
The json structure should contain the following keys:
thought -> your thoughts
action -> name of a tool
action_input -> parameters to send to the tool

These are the tools you can use: {tool_names}.

These are the tools descriptions:

{tools}

If you have enough information to answer the query use the tool "Final Answer". Its parameters is the solution.
If there is not enough information, keep trying.
`

const humanTurn = `
Add the word "` + StopMarker + `" after each markdown snippet. Example:

` + "```json" + `
{{"thought": "<your thoughts>",
 "action": "<tool name or Final Answer to give a final answer>",
 "action_input": "<tool parameters or the final output"}}
` + StopMarker + `

This is my query="{input}". Write only the next step needed to solve it.
Your answer should be based in the previous tools executions, even if you think you know the answer.
Remember to add ` + StopMarker + ` after each snippet.

These were the previous steps given to solve this query and the information you already gathered:
`

// newChatTemplate lays out one step: persona and protocol, prior turns, the
// query, then this run's steps and observations.
func newChatTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(persona+"\n"+protocol),
		schema.MessagesPlaceholder(varHistory, true),
		schema.UserMessage(humanTurn),
		schema.MessagesPlaceholder(varScratchpad, true),
	)
}
