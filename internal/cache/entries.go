package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tldw/internal/summary"
)

// InfoRecord is cached yt-dlp metadata.
type InfoRecord struct {
	VideoID   string
	Title     string
	InfoJSON  json.RawMessage
	FetchedAt time.Time
}

// TranscriptRecord is a normalized transcript and the track it came from.
type TranscriptRecord struct {
	VideoID    string
	TrackURL   string
	Language   string
	Transcript string
	ParsedCues int
	FinalCues  int
	CreatedAt  time.Time
}

// SummaryRecord is a model summary for one video.
type SummaryRecord struct {
	VideoID   string
	Model     string
	Summary   summary.Summary
	CreatedAt time.Time
}

// Entry describes one cached video for listings.
type Entry struct {
	VideoID       string    `json:"video_id" yaml:"video_id"`
	Title         string    `json:"title" yaml:"title"`
	HasTranscript bool      `json:"has_transcript" yaml:"has_transcript"`
	Summaries     int       `json:"summaries" yaml:"summaries"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// PutInfo stores metadata, replacing any previous copy.
func (s *Store) PutInfo(ctx context.Context, videoID, title string, infoJSON []byte) error {
	if videoID == "" {
		return errors.New("video id is required")
	}
	if !json.Valid(infoJSON) {
		return errors.New("info json is not valid")
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO video_info (video_id, title, info_json, fetched_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(video_id) DO UPDATE SET title = excluded.title, info_json = excluded.info_json, fetched_at = excluded.fetched_at`,
		videoID, title, string(infoJSON), s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("put info: %w", err)
	}
	return nil
}

// Info returns cached metadata, or nil when absent.
func (s *Store) Info(ctx context.Context, videoID string) (*InfoRecord, error) {
	var (
		rec     = InfoRecord{VideoID: videoID}
		raw     string
		fetched string
	)
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT title, info_json, fetched_at FROM video_info WHERE video_id = ?`, videoID,
	).Scan(&rec.Title, &raw, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get info: %w", err)
	}
	rec.InfoJSON = json.RawMessage(raw)
	rec.FetchedAt = parseTimeString(fetched)
	return &rec, nil
}

// PutTranscript stores a transcript, replacing any previous copy.
func (s *Store) PutTranscript(ctx context.Context, rec TranscriptRecord) error {
	if rec.VideoID == "" {
		return errors.New("video id is required")
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO transcripts (video_id, track_url, language, transcript, parsed_cues, final_cues, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(video_id) DO UPDATE SET track_url = excluded.track_url, language = excluded.language,
             transcript = excluded.transcript, parsed_cues = excluded.parsed_cues,
             final_cues = excluded.final_cues, created_at = excluded.created_at`,
		rec.VideoID, nullableString(rec.TrackURL), nullableString(rec.Language), rec.Transcript,
		rec.ParsedCues, rec.FinalCues, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("put transcript: %w", err)
	}
	return nil
}

// Transcript returns a cached transcript, or nil when absent.
func (s *Store) Transcript(ctx context.Context, videoID string) (*TranscriptRecord, error) {
	var (
		rec      = TranscriptRecord{VideoID: videoID}
		trackURL sql.NullString
		language sql.NullString
		created  string
	)
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT track_url, language, transcript, parsed_cues, final_cues, created_at FROM transcripts WHERE video_id = ?`, videoID,
	).Scan(&trackURL, &language, &rec.Transcript, &rec.ParsedCues, &rec.FinalCues, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	rec.TrackURL = trackURL.String
	rec.Language = language.String
	rec.CreatedAt = parseTimeString(created)
	return &rec, nil
}

// PutSummary stores a summary for videoID produced by model.
func (s *Store) PutSummary(ctx context.Context, videoID, model string, sum summary.Summary) error {
	if videoID == "" {
		return errors.New("video id is required")
	}
	payload, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	err = s.execWithRetry(ctx,
		`INSERT INTO summaries (video_id, model, summary_json, created_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(video_id, model) DO UPDATE SET summary_json = excluded.summary_json, created_at = excluded.created_at`,
		videoID, model, string(payload), s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("put summary: %w", err)
	}
	return nil
}

// Summary returns the cached summary for videoID and model, or nil when absent.
func (s *Store) Summary(ctx context.Context, videoID, model string) (*SummaryRecord, error) {
	var (
		raw     string
		created string
	)
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT summary_json, created_at FROM summaries WHERE video_id = ? AND model = ?`, videoID, model,
	).Scan(&raw, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get summary: %w", err)
	}
	rec := &SummaryRecord{VideoID: videoID, Model: model, CreatedAt: parseTimeString(created)}
	if err := json.Unmarshal([]byte(raw), &rec.Summary); err != nil {
		return nil, fmt.Errorf("decode cached summary: %w", err)
	}
	return rec, nil
}

// List returns one entry per cached video, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `
        WITH ids AS (
            SELECT video_id, fetched_at AS ts FROM video_info
            UNION ALL SELECT video_id, created_at FROM transcripts
            UNION ALL SELECT video_id, created_at FROM summaries
        )
        SELECT ids.video_id,
               COALESCE((SELECT title FROM video_info v WHERE v.video_id = ids.video_id), ''),
               EXISTS(SELECT 1 FROM transcripts t WHERE t.video_id = ids.video_id),
               (SELECT COUNT(*) FROM summaries s WHERE s.video_id = ids.video_id),
               MAX(ids.ts)
        FROM ids
        GROUP BY ids.video_id
        ORDER BY MAX(ids.ts) DESC, ids.video_id`)
	if err != nil {
		return nil, fmt.Errorf("list cache: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry         Entry
			hasTranscript int
			updated       string
		)
		if err := rows.Scan(&entry.VideoID, &entry.Title, &hasTranscript, &entry.Summaries, &updated); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		entry.HasTranscript = hasTranscript != 0
		entry.UpdatedAt = parseTimeString(updated)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
