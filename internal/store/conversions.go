package store

import (
	"context"
	"database/sql"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// SeedCapabilities replaces the capability matrix.
func (s *Store) SeedCapabilities(ctx context.Context, caps []model.ConversionCapability) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "seed capabilities", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM conversion_capabilities"); err != nil {
			return queryErr(err, "clear capabilities")
		}
		for _, c := range caps {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO conversion_capabilities (source_format, target_format, is_enabled)
				 VALUES (?, ?, ?)
				 ON CONFLICT(source_format, target_format) DO UPDATE SET is_enabled = excluded.is_enabled`,
				string(c.SourceFormat), string(c.TargetFormat), boolInt(c.Enabled)); err != nil {
				return queryErr(err, "insert capability")
			}
		}
		return nil
	})
}

// Capabilities returns the full matrix ordered by source then target.
func (s *Store) Capabilities(ctx context.Context) ([]model.ConversionCapability, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT source_format, target_format, is_enabled FROM conversion_capabilities ORDER BY source_format, target_format")
	if err != nil {
		return nil, queryErr(err, "capabilities")
	}
	defer func() { _ = rows.Close() }()

	var out []model.ConversionCapability
	for rows.Next() {
		var src, dst string
		var enabled int
		if err := rows.Scan(&src, &dst, &enabled); err != nil {
			return nil, queryErr(err, "scan capability")
		}
		out = append(out, model.ConversionCapability{
			SourceFormat: model.Format(src), TargetFormat: model.Format(dst), Enabled: enabled == 1,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err, "iterate capabilities")
	}
	return out, nil
}

// EnabledTargets returns the enabled target formats for source.
func (s *Store) EnabledTargets(ctx context.Context, source model.Format) ([]model.Format, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT target_format FROM conversion_capabilities
		 WHERE source_format = ? AND is_enabled = 1 ORDER BY target_format`, string(source))
	if err != nil {
		return nil, queryErr(err, "enabled targets")
	}
	defer func() { _ = rows.Close() }()

	var out []model.Format
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, queryErr(err, "scan target")
		}
		out = append(out, model.Format(f))
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err, "iterate targets")
	}
	return out, nil
}

// RecordConversion stores one conversion attempt and returns its ID.
func (s *Store) RecordConversion(ctx context.Context, r model.ConversionResult) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ConvertedAt.IsZero() {
		r.ConvertedAt = time.Now()
	}
	var id int64
	err := s.withTx(ctx, "record conversion", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO conversion_results
			 (content_id, source_format, target_format, output_path, status, message, duration_ms, converted_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ContentID, string(r.SourceFormat), string(r.TargetFormat), nullable(r.OutputPath),
			string(r.Status), nullable(r.Message), r.Duration.Milliseconds(), r.ConvertedAt.UnixMilli())
		if err != nil {
			return queryErr(err, "insert conversion result")
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// SuccessfulConversions returns the successful results for one node,
// ordered by target format.
func (s *Store) SuccessfulConversions(ctx context.Context, contentID int64) ([]model.ConversionResult, error) {
	return s.queryConversions(ctx, "successful conversions",
		`SELECT id, content_id, source_format, target_format, output_path, status, message, duration_ms, converted_at
		 FROM conversion_results WHERE content_id = ? AND status = ? ORDER BY target_format`,
		contentID, string(model.ConversionSuccess))
}

// ConversionResults returns every recorded attempt.
func (s *Store) ConversionResults(ctx context.Context) ([]model.ConversionResult, error) {
	return s.queryConversions(ctx, "conversion results",
		`SELECT id, content_id, source_format, target_format, output_path, status, message, duration_ms, converted_at
		 FROM conversion_results ORDER BY id`)
}

func (s *Store) queryConversions(ctx context.Context, what, query string, args ...any) ([]model.ConversionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryErr(err, what)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ConversionResult
	for rows.Next() {
		var (
			r            model.ConversionResult
			src, dst, st string
			outPath, msg sql.NullString
			durMS, atMS  int64
		)
		if err := rows.Scan(&r.ID, &r.ContentID, &src, &dst, &outPath, &st, &msg, &durMS, &atMS); err != nil {
			return nil, queryErr(err, "scan conversion result")
		}
		r.SourceFormat, r.TargetFormat = model.Format(src), model.Format(dst)
		r.Status = model.ConversionStatus(st)
		r.OutputPath, r.Message = outPath.String, msg.String
		r.Duration = time.Duration(durMS) * time.Millisecond
		r.ConvertedAt = time.UnixMilli(atMS)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err, "iterate conversion results")
	}
	return out, nil
}
