// Package ytdlp fetches video metadata through the yt-dlp CLI and downloads
// the caption track chosen by the captions package.
//
// Client shells out to yt-dlp through an injectable Executor so tests can
// feed canned JSON. Downloader fetches the caption payload over HTTP with the
// shared retry policy.
package ytdlp
