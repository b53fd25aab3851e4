// Package model defines the provider-agnostic abstractions for the language
// models that generate and edit UI mockups.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Support multimodal prompts (text plus an optional reference image)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (e.g. OpenAI, Anthropic) implement the Model interface from this
// package so the mockup generator remains decoupled from vendor SDKs.
package model
