// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.yaml.in/yaml/v3"
)

const defaultHistory = 20

// Run is the metadata of one digest run.
type Run struct {
	ID             string    `json:"id" yaml:"id"`
	StartedAt      time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time `json:"finished_at" yaml:"finished_at"`
	Query          string    `json:"query,omitempty" yaml:"query,omitempty"`
	Country        string    `json:"country,omitempty" yaml:"country,omitempty"`
	Topic          string    `json:"topic,omitempty" yaml:"topic,omitempty"`
	ArticleCount   int       `json:"article_count" yaml:"article_count"`
	DigestLength   int       `json:"digest_length" yaml:"digest_length"`
	Fallback       bool      `json:"fallback,omitempty" yaml:"fallback,omitempty"`
	ProviderErrors []string  `json:"provider_errors,omitempty" yaml:"provider_errors,omitempty"`
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// RecordRun inserts or replaces the run with r.ID.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	if r.ID == "" {
		return fmt.Errorf("recording run: empty id")
	}
	errorsJSON, err := json.Marshal(r.ProviderErrors)
	if err != nil {
		return fmt.Errorf("marshaling provider errors: %w", err)
	}
	fallback := 0
	if r.Fallback {
		fallback = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, query, country, topic, article_count, digest_length, fallback, provider_errors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			started_at=excluded.started_at, finished_at=excluded.finished_at,
			query=excluded.query, country=excluded.country, topic=excluded.topic,
			article_count=excluded.article_count, digest_length=excluded.digest_length,
			fallback=excluded.fallback, provider_errors=excluded.provider_errors`,
		r.ID, formatTime(r.StartedAt), formatTime(r.FinishedAt),
		r.Query, r.Country, r.Topic, r.ArticleCount, r.DigestLength,
		fallback, string(errorsJSON),
	)
	if err != nil {
		return fmt.Errorf("recording run %s: %w", r.ID, err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first. A limit of zero or
// less uses the default of 20.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultHistory
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, query, country, topic,
		        article_count, digest_length, fallback, provider_errors
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                   Run
			started             string
			finished, errsJSON  sql.NullString
			query, country, top sql.NullString
			fallback            int
		)
		if err := rows.Scan(&r.ID, &started, &finished, &query, &country, &top,
			&r.ArticleCount, &r.DigestLength, &fallback, &errsJSON); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = parseTime(started)
		r.FinishedAt = parseTime(finished.String)
		r.Query, r.Country, r.Topic = query.String, country.String, top.String
		r.Fallback = fallback != 0
		if errsJSON.String != "" {
			_ = json.Unmarshal([]byte(errsJSON.String), &r.ProviderErrors)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ExportRuns writes the most recent runs to w as "yaml" or "json".
func (s *Store) ExportRuns(ctx context.Context, w io.Writer, format string, limit int) error {
	runs, err := s.RecentRuns(ctx, limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []Run{}
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(runs); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
	case "yaml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(runs); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
	return nil
}
