// Package ui serves the single SailBuddy page and renders agent answers.
package ui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/olusolaa/sailbuddy/sailbuddy/agent"
)

// NoOutputNotice is shown when a response has no mapping to display.
const NoOutputNotice = "No output available."

// View is a rendered agent response.
type View struct {
	Sections []Section
	Empty    bool
}

// Section is one category of the answer. List sections have Items, the
// others carry a single Value.
type Section struct {
	Label   string
	Heading string
	List    bool
	Items   []Item
	Value   string
}

// Item is one bullet. Records with a name and link become links.
type Item struct {
	Text string
	Link string
}

func (i Item) IsLink() bool { return i.Link != "" }

// Render lays out response["output"] category by category, in the order the
// answer lists them.
func Render(response map[string]any) View {
	output, ok := response[agent.KeyOutput]
	if !ok {
		return View{Empty: true}
	}

	var view View
	switch out := output.(type) {
	case *agent.Answer:
		if out == nil {
			return View{Empty: true}
		}
		for pair := out.Oldest(); pair != nil; pair = pair.Next() {
			view.Sections = append(view.Sections, renderSection(pair.Key, pair.Value))
		}
	case map[string]any:
		keys := make([]string, 0, len(out))
		for k := range out {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			view.Sections = append(view.Sections, renderSection(k, out[k]))
		}
	default:
		return View{Empty: true}
	}
	return view
}

func renderSection(label string, value any) Section {
	s := Section{Label: label, Heading: capitalize(label)}

	list, ok := value.([]any)
	if !ok {
		s.Value = scalarText(value)
		return s
	}

	s.List = true
	for _, entry := range list {
		record, ok := entry.(map[string]any)
		if !ok {
			s.Items = append(s.Items, Item{Text: scalarText(entry)})
			continue
		}
		s.Items = append(s.Items, Item{
			Text: fieldOr(record, "name", "Unknown"),
			Link: fieldOr(record, "link", "#"),
		})
	}
	return s
}

func fieldOr(record map[string]any, key, fallback string) string {
	v, ok := record[key]
	if !ok || v == nil {
		return fallback
	}
	return scalarText(v)
}

func scalarText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool, float64, int, int64, json.Number:
		return fmt.Sprint(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// Markdown renders the view the way it is logged.
func (v View) Markdown() string {
	if v.Empty {
		return NoOutputNotice
	}

	var b strings.Builder
	for i, s := range v.Sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### %s\n", s.Heading)
		if !s.List {
			fmt.Fprintf(&b, "**%s**: %s\n", s.Heading, s.Value)
			continue
		}
		for _, item := range s.Items {
			if item.IsLink() {
				fmt.Fprintf(&b, "- [%s](%s)\n", item.Text, item.Link)
			} else {
				fmt.Fprintf(&b, "- %s\n", item.Text)
			}
		}
	}
	return b.String()
}
