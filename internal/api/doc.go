// Package api serves the summarization pipeline over HTTP.
//
// Routes:
//
//	GET  /api/health      liveness probe, always {"status":"healthy"}
//	POST /api/summarize   {"url": "..."} -> digest.Result
//	POST /api/transcript  {"url": "..."} -> digest.TranscriptResult
//
// Every response carries an X-Request-ID header (echoed from the request or
// generated). The POST routes are rate limited per client IP, accept an
// optional bearer token, and answer CORS preflights for the configured
// origins. Errors are JSON objects with a single "error" key; the status code
// comes from services.HTTPStatus.
package api
