// Package gemini talks to Google's Gemini API through the genai SDK.
//
// Client.CompleteJSON mirrors the llm package so the summarizer can use either
// provider. Several API keys may be configured as a comma-separated list; the
// client rotates to the next key when one is rate limited or out of quota.
package gemini
