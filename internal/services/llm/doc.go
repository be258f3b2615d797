// Package llm provides an OpenRouter (OpenAI-compatible) chat client used for
// transcript summarization.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive a JSON response.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON: tolerant decoding of model output (code fences, stray prose).
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, network timeouts, and empty
// completions with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Context cancellation aborts retries immediately.
//
// Failures are tagged with the services error markers: rejected credentials
// become ErrConfiguration, provider throttling ErrRateLimited, deadlines
// ErrTimeout, and everything else ErrExternalTool.
package llm
