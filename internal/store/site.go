package store

import (
	"context"
	"database/sql"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// SaveSiteInfo stores the single site metadata row.
func (s *Store) SaveSiteInfo(ctx context.Context, si model.SiteInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "save site info", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO site_info
			(id, title, author, description, logo, favicon, theme_default, theme_light, theme_dark,
			 language, github_url, footer_text, header)
			VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			si.Title, si.Author, si.Description, si.Logo, si.Favicon, si.ThemeDefault, si.ThemeLight,
			si.ThemeDark, si.Language, si.GitHubURL, si.FooterText, si.Header)
		if err != nil {
			return queryErr(err, "insert site info")
		}
		return nil
	})
}

// SiteInfo returns the stored site metadata, or ErrNotFound.
func (s *Store) SiteInfo(ctx context.Context) (model.SiteInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var si model.SiteInfo
	var f [12]sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT title, author, description, logo, favicon, theme_default,
		theme_light, theme_dark, language, github_url, footer_text, header FROM site_info WHERE id = 1`).
		Scan(&f[0], &f[1], &f[2], &f[3], &f[4], &f[5], &f[6], &f[7], &f[8], &f[9], &f[10], &f[11])
	if err == sql.ErrNoRows {
		return si, ErrNotFound.WithContext("query", "site info")
	}
	if err != nil {
		return si, queryErr(err, "site info")
	}
	si = model.SiteInfo{
		Title: f[0].String, Author: f[1].String, Description: f[2].String, Logo: f[3].String,
		Favicon: f[4].String, ThemeDefault: f[5].String, ThemeLight: f[6].String, ThemeDark: f[7].String,
		Language: f[8].String, GitHubURL: f[9].String, FooterText: f[10].String, Header: f[11].String,
	}
	return si, nil
}

// SaveSourceInfo replaces the provenance rows for the given nodes.
func (s *Store) SaveSourceInfo(ctx context.Context, infos []model.SourceInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "save source info", func(tx *sql.Tx) error {
		for _, in := range infos {
			var lm sql.NullInt64
			if !in.LastModified.IsZero() {
				lm = sql.NullInt64{Int64: in.LastModified.Unix(), Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO source_info
				(content_id, fingerprint, size, last_modified, last_modified_source, missing)
				VALUES (?, ?, ?, ?, ?, ?)`,
				in.ContentID, nullable(in.Fingerprint), in.Size, lm, nullable(in.LastModifiedSource), boolInt(in.Missing)); err != nil {
				return queryErr(err, "insert source info")
			}
		}
		return nil
	})
}

// SourceInfo returns provenance for one node.
func (s *Store) SourceInfo(ctx context.Context, contentID int64) (model.SourceInfo, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		in      = model.SourceInfo{ContentID: contentID}
		fp, src sql.NullString
		lm      sql.NullInt64
		missing int
	)
	err := s.db.QueryRowContext(ctx, `SELECT fingerprint, size, last_modified, last_modified_source, missing
		FROM source_info WHERE content_id = ?`, contentID).Scan(&fp, &in.Size, &lm, &src, &missing)
	if err == sql.ErrNoRows {
		return in, false, nil
	}
	if err != nil {
		return in, false, queryErr(err, "source info")
	}
	in.Fingerprint, in.LastModifiedSource, in.Missing = fp.String, src.String, missing == 1
	if lm.Valid {
		in.LastModified = time.Unix(lm.Int64, 0)
	}
	return in, true, nil
}

// StartBuild records the start of a run.
func (s *Store) StartBuild(ctx context.Context, id string, started time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "start build", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO builds (id, started_at) VALUES (?, ?)", id, started.UnixMilli())
		if err != nil {
			return queryErr(err, "insert build")
		}
		return nil
	})
}

// FinishBuild records the outcome of a run.
func (s *Store) FinishBuild(ctx context.Context, b model.BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "finish build", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"UPDATE builds SET finished_at = ?, outcome = ?, nodes = ?, pages = ? WHERE id = ?",
			b.FinishedAt.UnixMilli(), string(b.Outcome), b.Nodes, b.Pages, b.ID)
		if err != nil {
			return queryErr(err, "update build")
		}
		return nil
	})
}

// LastBuild returns the most recently started run.
func (s *Store) LastBuild(ctx context.Context) (model.BuildRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		b        model.BuildRecord
		started  int64
		finished sql.NullInt64
		outcome  sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, finished_at, outcome, nodes, pages FROM builds ORDER BY started_at DESC LIMIT 1").
		Scan(&b.ID, &started, &finished, &outcome, &b.Nodes, &b.Pages)
	if err == sql.ErrNoRows {
		return b, false, nil
	}
	if err != nil {
		return b, false, queryErr(err, "last build")
	}
	b.StartedAt = time.UnixMilli(started)
	if finished.Valid {
		b.FinishedAt = time.UnixMilli(finished.Int64)
	}
	b.Outcome = model.BuildOutcome(outcome.String)
	return b, true, nil
}
