package model

import (
	"context"
	"fmt"
)

// Request captures a single-shot generation call: optional system
// instructions, the user prompt, and an optional reference image the model
// should ground the mockup on.
type Request struct {
	// Instructions is the system prompt. Empty means provider default.
	Instructions string `json:"instructions,omitempty"`

	// Prompt is the user's request text.
	Prompt string `json:"prompt"`

	// Image is an optional reference screenshot or sketch, raw bytes.
	Image []byte `json:"image,omitempty"`

	// ImageMIMEType identifies the image encoding, e.g. "image/png".
	// Required when Image is set.
	ImageMIMEType string `json:"image_mime_type,omitempty"`
}

// TokenUsage captures token accounting for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the model's completed answer.
type Response struct {
	Text  string      `json:"text"`
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface the mockup generator needs to drive
// generation.
type Model interface {
	Generate(ctx context.Context, req Request) (Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
type MockModel struct {
	info      Info
	responses map[string]string

	// Err, when set, is returned by every Generate call.
	Err error
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for a prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (Response, error) {
	if m.Err != nil {
		return Response{}, m.Err
	}
	select {
	case <-ctx.Done():
		return Response{}, ctx.Err()
	default:
	}
	if resp, ok := m.responses[req.Prompt]; ok {
		return Response{Text: resp}, nil
	}
	return Response{Text: fmt.Sprintf("Mock response to: %s", req.Prompt)}, nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
