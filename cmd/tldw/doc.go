// Package main hosts the tldw CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the logger from
// it, and wires the digest service (yt-dlp, caption download, cache,
// summarizer) for the commands that need it. `serve` and `watch` are the
// long-running modes; both hold a lock file so only one instance of each runs
// per cache directory.
//
// Keep this package lean: add functionality in the internal packages first,
// then surface it through a command or flag here.
package main
