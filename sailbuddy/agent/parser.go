package agent

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// FinalAnswer is the reserved action that ends a query.
const FinalAnswer = "Final Answer"

// DecisionKind classifies a parsed model reply.
type DecisionKind int

const (
	DecisionInvalid DecisionKind = iota
	DecisionAction
	DecisionFinish
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionAction:
		return "action"
	case DecisionFinish:
		return "finish"
	default:
		return "invalid"
	}
}

// Step is one JSON blob the model produced.
type Step struct {
	Thought string
	Action  string
	Input   json.RawMessage
}

// InputText is the tool input: strings are passed unquoted, other JSON values
// as their JSON text.
func (s Step) InputText() string {
	r := gjson.ParseBytes(s.Input)
	switch r.Type {
	case gjson.String:
		return r.String()
	case gjson.Null:
		return ""
	default:
		return r.Raw
	}
}

// Decision is the outcome of parsing one reply. Err is set only for
// DecisionInvalid.
type Decision struct {
	Kind DecisionKind
	Step Step
	Err  error
}

var fencedBlob = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)(?:```|$)")

// Parse reads a reply of the form "```json {...} ```" followed by an optional
// StopMarker. The fence may be left unclosed and a list of blobs is reduced
// to its first element.
func Parse(text string) Decision {
	if i := strings.Index(text, StopMarker); i >= 0 {
		text = text[:i]
	}

	blob, ok := extractBlob(text)
	if !ok {
		return invalid(errors.New("no JSON blob found"))
	}

	r := gjson.Parse(blob)
	if r.IsArray() {
		items := r.Array()
		if len(items) == 0 {
			return invalid(errors.New("empty JSON list"))
		}
		r = items[0]
	}
	if !r.IsObject() {
		return invalid(errors.New("JSON blob is not an object"))
	}

	action := r.Get("action")
	if action.Type != gjson.String || strings.TrimSpace(action.String()) == "" {
		return invalid(errors.New(`missing "action"`))
	}
	input := r.Get("action_input")
	if !input.Exists() {
		return invalid(errors.New(`missing "action_input"`))
	}

	step := Step{
		Thought: r.Get("thought").String(),
		Action:  strings.TrimSpace(action.String()),
		Input:   json.RawMessage(input.Raw),
	}
	if step.Action == FinalAnswer {
		return Decision{Kind: DecisionFinish, Step: step}
	}
	return Decision{Kind: DecisionAction, Step: step}
}

func invalid(err error) Decision {
	return Decision{Kind: DecisionInvalid, Err: err}
}

// extractBlob prefers a fenced snippet and falls back to the outermost braces
// or brackets in text.
func extractBlob(text string) (string, bool) {
	if m := fencedBlob.FindStringSubmatch(text); m != nil {
		if blob := strings.TrimSpace(m[1]); gjson.Valid(blob) {
			return blob, true
		}
	}

	text = strings.TrimSpace(text)
	if gjson.Valid(text) {
		return text, true
	}
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start, end := strings.Index(text, pair[0]), strings.LastIndex(text, pair[1])
		if start >= 0 && end > start {
			if blob := text[start : end+1]; gjson.Valid(blob) {
				return blob, true
			}
		}
	}
	return "", false
}
