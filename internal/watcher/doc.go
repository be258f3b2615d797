// Package watcher converts WebVTT files dropped into an input directory into
// plain-text transcripts.
//
// Watcher listens for create and write events through fsnotify, waits for a
// file to settle, then hands it to a Handler with bounded concurrency.
// Converter is the standard Handler: it runs the caption pipeline and writes
// <name>.txt into the output directory atomically.
package watcher
