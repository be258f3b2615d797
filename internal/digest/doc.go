// Package digest runs the end-to-end flow behind `tldw summarize` and the
// HTTP API: resolve the video, fetch its metadata, pick and download a
// caption track, normalize it into a transcript, and ask the model for a
// summary. Each intermediate result is cached when a Store is configured.
package digest
