package mockup

import (
	"fmt"
	"regexp"
	"strings"
)

// ActionType classifies the change a prompt asks for.
type ActionType string

const (
	// ActionAdd requests new UI elements.
	ActionAdd ActionType = "add"
	// ActionRemove requests removal of UI elements.
	ActionRemove ActionType = "remove"
	// ActionModify requests changes to existing elements. Also the fallback
	// when no action keyword matches.
	ActionModify ActionType = "modify"
	// ActionMove requests repositioning of elements.
	ActionMove ActionType = "move"
)

// Properties holds the visual attributes mentioned in a prompt, in the order
// they appear.
type Properties struct {
	Colors    []string `json:"colors,omitempty"`
	Sizes     []string `json:"sizes,omitempty"`
	Positions []string `json:"positions,omitempty"`
}

// Empty reports whether no visual properties were detected.
func (p Properties) Empty() bool {
	return len(p.Colors) == 0 && len(p.Sizes) == 0 && len(p.Positions) == 0
}

// Requirements is the structured form of a natural-language change request.
type Requirements struct {
	RawPrompt      string     `json:"raw_prompt"`
	ActionType     ActionType `json:"action_type"`
	Targets        []string   `json:"targets"`
	Properties     Properties `json:"properties"`
	Clarifications []string   `json:"clarifications,omitempty"`
}

// Valid reports whether the requirements carry enough signal to drive
// mockup generation.
func (r Requirements) Valid() bool {
	return r.ActionType != "" && len(r.Targets) > 0
}

// Summary renders a short human-readable description of the requirements.
func (r Requirements) Summary() string {
	targets := "component"
	if len(r.Targets) > 0 {
		targets = strings.Join(r.Targets, ", ")
	}
	action := string(r.ActionType)
	if action == "" {
		action = string(ActionModify)
	}
	summary := strings.ToUpper(action[:1]) + action[1:] + " " + targets

	var props []string
	if len(r.Properties.Colors) > 0 {
		props = append(props, fmt.Sprintf("colors: %s", strings.Join(r.Properties.Colors, "/")))
	}
	if len(r.Properties.Sizes) > 0 {
		props = append(props, fmt.Sprintf("sizes: %s", strings.Join(r.Properties.Sizes, "/")))
	}
	if len(r.Properties.Positions) > 0 {
		props = append(props, fmt.Sprintf("positions: %s", strings.Join(r.Properties.Positions, "/")))
	}
	if len(props) > 0 {
		summary += " with " + strings.Join(props, ", ")
	}
	return summary
}

// Keyword tables for intent detection. Matching is case-insensitive and
// substring-based, mirroring how loosely users phrase change requests.
var (
	addWords    = []string{"add", "create", "insert", "new"}
	removeWords = []string{"remove", "delete", "hide"}
	modifyWords = []string{"change", "modify", "update", "make"}
	moveWords   = []string{"move", "relocate", "reposition"}

	commonTargets = []string{
		"header", "footer", "sidebar", "button", "navbar", "menu",
		"dashboard", "card", "table", "form", "input", "search",
		"logo", "icon", "image", "text", "title", "link", "modal",
		"dropdown", "tab", "panel", "section", "container",
	}

	colorRe    = regexp.MustCompile(`\b(red|blue|green|yellow|orange|purple|pink|black|white|gray|grey|dark|light)\b`)
	sizeRe     = regexp.MustCompile(`\b(large|small|big|tiny|medium|huge)\b`)
	positionRe = regexp.MustCompile(`\b(top|bottom|left|right|center|middle)\b`)
)

// ParseIntent extracts structured requirements from a natural-language
// prompt. It never fails; ambiguous prompts yield clarifying questions in
// Requirements.Clarifications instead of an error.
func ParseIntent(prompt string) Requirements {
	raw := strings.TrimSpace(prompt)
	lower := strings.ToLower(raw)

	req := Requirements{
		RawPrompt:  raw,
		ActionType: detectActionType(lower),
		Targets:    extractTargets(lower),
		Properties: extractProperties(lower),
	}
	req.Clarifications = clarifications(raw, req)
	return req
}

func detectActionType(lower string) ActionType {
	switch {
	case containsAny(lower, addWords):
		return ActionAdd
	case containsAny(lower, removeWords):
		return ActionRemove
	case containsAny(lower, modifyWords):
		return ActionModify
	case containsAny(lower, moveWords):
		return ActionMove
	default:
		return ActionModify
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func extractTargets(lower string) []string {
	var targets []string
	for _, t := range commonTargets {
		if strings.Contains(lower, t) {
			targets = append(targets, t)
		}
	}
	if len(targets) == 0 {
		return []string{"component"}
	}
	return targets
}

func extractProperties(lower string) Properties {
	return Properties{
		Colors:    colorRe.FindAllString(lower, -1),
		Sizes:     sizeRe.FindAllString(lower, -1),
		Positions: positionRe.FindAllString(lower, -1),
	}
}

func clarifications(raw string, req Requirements) []string {
	var out []string
	if len(strings.Fields(raw)) < 5 {
		out = append(out, "Could you provide more details about the desired changes?")
	}
	if req.Properties.Empty() {
		out = append(out, "What visual changes are you looking for?")
	}
	return out
}
