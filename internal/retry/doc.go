// Package retry holds the backoff policy shared by the HTTP clients: the LLM
// chat client and the caption downloader.
//
// Delays double from BaseDelay up to MaxDelay. Retry-After headers are
// honoured but capped. Context cancellation aborts any pending sleep.
package retry
