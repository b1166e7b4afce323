package agent

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Answer is a final answer object with its keys in the order the model wrote
// them.
type Answer = orderedmap.OrderedMap[string, any]

// decodeOutput turns a Final Answer input into the query output. Objects
// keep their key order. A string that is entirely an object, fenced or not,
// is decoded as that object. Anything else is returned as plain JSON values.
func decodeOutput(raw json.RawMessage) any {
	r := gjson.ParseBytes(raw)

	if r.IsObject() {
		if answer, ok := decodeAnswer(r.Raw); ok {
			return answer
		}
	}
	if r.Type == gjson.String {
		blob := strings.TrimSpace(r.String())
		if strings.HasPrefix(blob, "```") {
			if m := fencedBlob.FindStringSubmatch(blob); m != nil {
				blob = strings.TrimSpace(m[1])
			}
		}
		if gjson.Valid(blob) && gjson.Parse(blob).IsObject() {
			if answer, ok := decodeAnswer(blob); ok {
				return answer
			}
		}
		return r.String()
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return r.String()
	}
	return v
}

func decodeAnswer(blob string) (*Answer, bool) {
	answer := orderedmap.New[string, any]()
	if err := answer.UnmarshalJSON([]byte(blob)); err != nil {
		return nil, false
	}
	return answer, true
}

// answerText is the final answer as remembered in the conversation.
func answerText(raw json.RawMessage) string {
	r := gjson.ParseBytes(raw)
	if r.Type == gjson.String {
		return r.String()
	}
	return strings.TrimSpace(r.Raw)
}
