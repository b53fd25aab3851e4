// Package mockup turns natural-language change requests into stored HTML
// mockups.
//
// It has two halves: ParseIntent, which extracts structured requirements
// (action, targets, visual properties, clarifying questions) from a prompt
// without calling any model, and Generator, which drives a model.Model with
// a design-focused system prompt, extracts the HTML document from the
// response and persists it through a core.MockupStore.
//
// The collaboration engine treats mockup ids as opaque; this package is the
// only place mockup content is produced or interpreted.
package mockup
