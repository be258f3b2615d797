// Package services defines shared utilities consumed by the digest pipeline,
// the HTTP API, and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation IDs, video IDs, and
//     pipeline stage names for logging.
//   - Structured error markers plus the Wrap helper; HTTPStatus translates
//     the markers into API responses.
//
// Subpackages hold the summarization provider clients.
package services
