package digest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tldw/internal/cache"
	"tldw/internal/captions"
	"tldw/internal/services"
	"tldw/internal/summary"
	"tldw/internal/ytdlp"
)

const videoURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

const infoJSON = `{
  "id": "dQw4w9WgXcQ",
  "title": "Never",
  "fulltitle": "Never Gonna",
  "description": "A song.",
  "duration": 212,
  "aspect_ratio": 1.33,
  "thumbnails": [{"url": "https://i.ytimg.com/a.jpg", "preference": -1}, {"url": "https://i.ytimg.com/b.jpg", "preference": 5}],
  "subtitles": {"en": [{"ext": "vtt", "name": "English", "url": "https://example.com/en.vtt"}]},
  "automatic_captions": {}
}`

const payload = `WEBVTT

00:00:00.000 --> 00:00:01.000
never gonna

00:00:03.500 --> 00:00:04.000
give you up
`

type fakeInfo struct {
	calls int
	raw   string
	err   error
}

func (f *fakeInfo) Info(context.Context, string) (*ytdlp.VideoInfo, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return ytdlp.ParseInfo([]byte(f.raw))
}

type fakeDownloader struct {
	calls int
	body  string
	track captions.TrackDescriptor
}

func (f *fakeDownloader) Download(_ context.Context, track captions.TrackDescriptor) (string, error) {
	f.calls++
	f.track = track
	return f.body, nil
}

type fakeSummarizer struct {
	calls int
	req   summary.Request
	err   error
}

func (f *fakeSummarizer) Summarize(_ context.Context, req summary.Request) (summary.Summary, error) {
	f.calls++
	f.req = req
	if f.err != nil {
		return summary.Summary{}, f.err
	}
	return summary.Summary{TLDR: "A promise.", KeyPoints: []string{"never gives you up"}}, nil
}

func (f *fakeSummarizer) Model() string { return "test-model" }

func newStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.OpenPath(filepath.Join(t.TempDir(), "tldw.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSummarizeEndToEnd(t *testing.T) {
	info := &fakeInfo{raw: infoJSON}
	dl := &fakeDownloader{body: payload}
	sum := &fakeSummarizer{}
	svc := New(info, dl, sum)

	res, err := svc.Summarize(context.Background(), videoURL)
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if res.VideoID != "dQw4w9WgXcQ" || res.Title != "Never" {
		t.Fatalf("unexpected identity %+v", res)
	}
	if res.ThumbnailURL != "https://i.ytimg.com/b.jpg" || res.AspectRatio != 1.33 {
		t.Fatalf("unexpected presentation fields %+v", res)
	}
	if res.WebpageURL != videoURL {
		t.Fatalf("expected fallback webpage url, got %q", res.WebpageURL)
	}
	if res.Summary.TLDR != "A promise." || res.Model != "test-model" {
		t.Fatalf("unexpected summary %+v", res)
	}
	if dl.track.URL != "https://example.com/en.vtt" {
		t.Fatalf("unexpected track %+v", dl.track)
	}
	if sum.req.Title != "Never Gonna" || sum.req.Description != "A song." {
		t.Fatalf("unexpected request %+v", sum.req)
	}
	if sum.req.Transcript != "never gonna\n\ngive you up" {
		t.Fatalf("unexpected transcript %q", sum.req.Transcript)
	}
}

func TestSummarizeUsesCache(t *testing.T) {
	store := newStore(t)
	info := &fakeInfo{raw: infoJSON}
	dl := &fakeDownloader{body: payload}
	sum := &fakeSummarizer{}
	svc := New(info, dl, sum, WithStore(store))

	for range 2 {
		if _, err := svc.Summarize(context.Background(), "https://youtu.be/dQw4w9WgXcQ"); err != nil {
			t.Fatalf("Summarize returned error: %v", err)
		}
	}
	if info.calls != 1 || dl.calls != 1 || sum.calls != 1 {
		t.Fatalf("expected one call each, got info=%d download=%d summarize=%d", info.calls, dl.calls, sum.calls)
	}

	fresh := New(info, dl, sum, WithStore(store), WithNoCache(true))
	if _, err := fresh.Summarize(context.Background(), videoURL); err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if info.calls != 2 || dl.calls != 2 || sum.calls != 2 {
		t.Fatalf("expected cache bypass, got info=%d download=%d summarize=%d", info.calls, dl.calls, sum.calls)
	}

	tr, err := svc.Transcript(context.Background(), videoURL)
	if err != nil {
		t.Fatalf("Transcript returned error: %v", err)
	}
	if !tr.Cached || tr.ParsedCues != 2 || tr.FinalCues != 2 {
		t.Fatalf("expected cached transcript with stats, got %+v", tr)
	}
}

func TestSummarizeRejectsLongVideos(t *testing.T) {
	raw := strings.Replace(infoJSON, `"duration": 212`, `"duration": 9000`, 1)
	svc := New(&fakeInfo{raw: raw}, &fakeDownloader{}, &fakeSummarizer{}, WithMaxVideoDuration(9000*time.Second))
	if _, err := svc.Summarize(context.Background(), videoURL); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSummarizeWithoutCaptions(t *testing.T) {
	raw := strings.Replace(infoJSON, `"subtitles": {"en": [{"ext": "vtt", "name": "English", "url": "https://example.com/en.vtt"}]}`, `"subtitles": {"fr": [{"ext": "vtt", "name": "French", "url": "https://example.com/fr.vtt"}]}`, 1)
	svc := New(&fakeInfo{raw: raw}, &fakeDownloader{}, &fakeSummarizer{})
	_, err := svc.Summarize(context.Background(), videoURL)
	if !errors.Is(err, ErrCaptionsUnavailable) || !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected captions unavailable, got %v", err)
	}
	if services.HTTPStatus(err) != 404 {
		t.Fatalf("expected 404 mapping, got %d", services.HTTPStatus(err))
	}
}

func TestSummarizeRejectsInvalidURL(t *testing.T) {
	info := &fakeInfo{raw: infoJSON}
	svc := New(info, &fakeDownloader{}, &fakeSummarizer{})
	if _, err := svc.Summarize(context.Background(), "https://vimeo.com/1"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if info.calls != 0 {
		t.Fatal("expected no metadata fetch for an invalid url")
	}
}

func TestSummarizePropagatesProviderError(t *testing.T) {
	providerErr := services.Wrap(services.ErrRateLimited, "llm", "complete", "", nil)
	svc := New(&fakeInfo{raw: infoJSON}, &fakeDownloader{body: payload}, &fakeSummarizer{err: providerErr})
	if _, err := svc.Summarize(context.Background(), videoURL); !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
}

func TestSummarizeRequiresSummarizer(t *testing.T) {
	svc := New(&fakeInfo{raw: infoJSON}, &fakeDownloader{body: payload}, nil)
	if _, err := svc.Summarize(context.Background(), videoURL); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	tr, err := svc.Transcript(context.Background(), videoURL)
	if err != nil {
		t.Fatalf("Transcript returned error: %v", err)
	}
	if tr.Title != "Never Gonna" || tr.Cached {
		t.Fatalf("unexpected transcript result %+v", tr)
	}
}
