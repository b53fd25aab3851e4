package mockup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/collabmesh/collabmesh/core"
	"github.com/collabmesh/collabmesh/internal/util"
	"github.com/collabmesh/collabmesh/logging"
	"github.com/collabmesh/collabmesh/model"
)

// Options configures a Generator.
type Options struct {
	// Logger provides structured logging. Defaults to NoOp if nil.
	Logger logging.Logger

	// ImageMIMEType is sent with reference screenshots. Defaults to
	// "image/png".
	ImageMIMEType string

	// Clock supplies generation timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithImageMIMEType overrides the mime type attached to reference images.
func WithImageMIMEType(mime string) func(o *Options) {
	return func(o *Options) { o.ImageMIMEType = mime }
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) func(o *Options) {
	return func(o *Options) { o.Clock = clock }
}

// Generator turns a screenshot plus a natural-language change request into a
// self-contained HTML mockup. It parses the prompt into structured
// requirements, drives a model.Model with a design-focused system prompt,
// extracts the HTML from the response and persists the result in a
// core.MockupStore.
type Generator struct {
	model model.Model
	store core.MockupStore
	opts  Options
}

// NewGenerator wires a Generator to a model and a store.
func NewGenerator(m model.Model, store core.MockupStore, optFns ...func(o *Options)) *Generator {
	opts := Options{
		Logger:        logging.NoOpLogger{},
		ImageMIMEType: "image/png",
		Clock:         time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Generator{model: m, store: store, opts: opts}
}

// Generate produces and stores a mockup. The image is an optional reference
// screenshot; prompt is the user's description of the desired changes. On
// model failure a failed-status record is stored so callers polling by id can
// observe the outcome, and the error is returned.
func (g *Generator) Generate(ctx context.Context, image []byte, prompt string) (core.Mockup, error) {
	req := ParseIntent(prompt)
	mockupID := core.NewID()

	resp, err := g.model.Generate(ctx, model.Request{
		Instructions:  buildSystemPrompt(req),
		Prompt:        "User Request: " + prompt,
		Image:         image,
		ImageMIMEType: g.opts.ImageMIMEType,
	})
	if err != nil {
		failed := core.Mockup{
			ID:           mockupID,
			Prompt:       prompt,
			Requirements: requirementsMap(req),
			GeneratedAt:  g.opts.Clock().UTC(),
			Status:       core.MockupStatusFailed,
			Metadata:     map[string]string{"error": err.Error()},
		}
		if saveErr := g.store.Save(failed); saveErr != nil {
			g.opts.Logger.Error("failed to record mockup failure", "error", saveErr.Error(), "mockup_id", mockupID)
		}
		return core.Mockup{}, fmt.Errorf("mockup generation: %w", err)
	}

	m := core.Mockup{
		ID:           mockupID,
		HTML:         ExtractHTML(resp.Text),
		Prompt:       prompt,
		Requirements: requirementsMap(req),
		GeneratedAt:  g.opts.Clock().UTC(),
		Status:       core.MockupStatusComplete,
		Metadata:     map[string]string{"model": g.model.Info().Name},
	}
	if err := g.store.Save(m); err != nil {
		return core.Mockup{}, fmt.Errorf("save mockup: %w", err)
	}

	g.opts.Logger.Info("mockup generated",
		"mockup_id", m.ID,
		"action", string(req.ActionType),
		"targets", strings.Join(req.Targets, ","),
	)
	return m, nil
}

// requirementsMap flattens Requirements into the loosely-typed form stored on
// the mockup record.
func requirementsMap(req Requirements) map[string]any {
	out := map[string]any{
		"raw_prompt":  req.RawPrompt,
		"action_type": string(req.ActionType),
		"targets":     req.Targets,
	}
	if !req.Properties.Empty() {
		props := map[string]any{}
		if len(req.Properties.Colors) > 0 {
			props["colors"] = req.Properties.Colors
		}
		if len(req.Properties.Sizes) > 0 {
			props["sizes"] = req.Properties.Sizes
		}
		if len(req.Properties.Positions) > 0 {
			props["positions"] = req.Properties.Positions
		}
		out["properties"] = props
	}
	if len(req.Clarifications) > 0 {
		out["clarifications"] = req.Clarifications
	}
	return out
}

const systemPromptTemplate = `You are a UI/UX designer and frontend developer.
Your task is to generate a complete, production-ready HTML mockup based on the provided screenshot and user requirements.

**Requirements:**
- Action: {{.Action}}
- Target elements: {{default "general UI" .Targets}}
- Visual properties: {{default "none specified" .Properties}}

**Instructions:**
1. Analyze the provided screenshot carefully
2. Generate a complete HTML page with inline CSS
3. Make the requested changes while preserving the overall design
4. Use modern CSS (Flexbox, Grid) for layouts
5. Make it responsive and visually appealing
6. Include all necessary styling inline
7. Do NOT include any explanatory text - output ONLY the HTML

**Output Format:**
Return ONLY the complete HTML, starting with <!DOCTYPE html> and ending with </html>.
Include all CSS inline in <style> tags.
Make sure the mockup is fully self-contained and can be opened in a browser immediately.`

// buildSystemPrompt renders the design instructions sent as the system turn.
func buildSystemPrompt(req Requirements) string {
	var props []string
	if len(req.Properties.Colors) > 0 {
		props = append(props, "colors: "+strings.Join(req.Properties.Colors, ", "))
	}
	if len(req.Properties.Sizes) > 0 {
		props = append(props, "sizes: "+strings.Join(req.Properties.Sizes, ", "))
	}
	if len(req.Properties.Positions) > 0 {
		props = append(props, "positions: "+strings.Join(req.Properties.Positions, ", "))
	}
	return util.MustRenderTemplate(systemPromptTemplate, map[string]any{
		"Action":     string(req.ActionType),
		"Targets":    strings.Join(req.Targets, ", "),
		"Properties": strings.Join(props, "; "),
	})
}

// ExtractHTML strips markdown code fences and leading chatter from a model
// response, returning the HTML document.
func ExtractHTML(responseText string) string {
	text := strings.TrimSpace(responseText)

	if idx := strings.Index(text, "```html"); idx >= 0 {
		text = text[idx+len("```html"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+len("```"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		text = strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "<!DOCTYPE") || strings.HasPrefix(text, "<html") {
		return text
	}
	// Drop any preamble before the document starts.
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html") {
			if idx := strings.Index(text, trimmed); idx >= 0 {
				return text[idx:]
			}
		}
	}
	return text
}
