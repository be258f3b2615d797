// Package summary turns a transcript into a structured digest: a one-line
// TL;DR, key points, and per-topic summaries.
//
// The Summarizer is provider-agnostic. It sends a JSON-only prompt to any
// Completer (the OpenRouter client in services/llm or the Gemini client in
// services/gemini) and validates the decoded result. NewFromConfig picks the
// provider from the [llm] section.
package summary
