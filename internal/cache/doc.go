// Package cache persists fetched video metadata, normalized transcripts, and
// model summaries in a SQLite database under the cache directory.
//
// Open applies WAL mode and the schema; writes retry on SQLITE_BUSY so the
// API server and CLI can share one database file. Entries are keyed by video
// ID, and summaries additionally by model name.
package cache
