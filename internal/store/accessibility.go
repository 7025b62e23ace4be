package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// RecordAccessibility stores a check result, replacing any earlier result
// for the same node and WCAG level.
func (s *Store) RecordAccessibility(ctx context.Context, r model.AccessibilityResult) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	issues, err := json.Marshal(r.Issues)
	if err != nil {
		return 0, queryErr(err, "marshal issues")
	}
	if r.CheckedAt.IsZero() {
		r.CheckedAt = time.Now()
	}

	var id int64
	err = s.withTx(ctx, "record accessibility", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM accessibility_results WHERE content_id = ? AND wcag_level = ?",
			r.ContentID, r.WCAGLevel); err != nil {
			return queryErr(err, "delete previous accessibility result")
		}
		res, err := tx.ExecContext(ctx,
			`INSERT INTO accessibility_results
			 (content_id, output_path, checker, wcag_level, issues_json, error_count, warning_count,
			  notice_count, badge_html, failure, checked_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ContentID, r.OutputPath, r.Checker, r.WCAGLevel, string(issues), r.ErrorCount, r.WarningCount,
			r.NoticeCount, r.BadgeHTML, nullable(r.Failure), r.CheckedAt.UnixMilli())
		if err != nil {
			return queryErr(err, "insert accessibility result")
		}
		id, err = res.LastInsertId()
		return err
	})
	return id, err
}

// AccessibilityResults returns every result ordered by output path.
func (s *Store) AccessibilityResults(ctx context.Context) ([]model.AccessibilityResult, error) {
	return s.queryAccessibility(ctx, "accessibility results",
		accessibilitySelect+" ORDER BY output_path, wcag_level")
}

// LatestAccessibility returns the most recent result for a node.
func (s *Store) LatestAccessibility(ctx context.Context, contentID int64) (model.AccessibilityResult, bool, error) {
	rs, err := s.queryAccessibility(ctx, "latest accessibility",
		accessibilitySelect+" WHERE content_id = ? ORDER BY checked_at DESC, id DESC LIMIT 1", contentID)
	if err != nil || len(rs) == 0 {
		return model.AccessibilityResult{}, false, err
	}
	return rs[0], true, nil
}

// ClearAccessibility removes every stored result.
func (s *Store) ClearAccessibility(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.withTx(ctx, "clear accessibility", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM accessibility_results")
		return err
	})
}

const accessibilitySelect = `SELECT id, content_id, output_path, checker, wcag_level, issues_json,
	error_count, warning_count, notice_count, badge_html, failure, checked_at FROM accessibility_results`

func (s *Store) queryAccessibility(ctx context.Context, what, query string, args ...any) ([]model.AccessibilityResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryErr(err, what)
	}
	defer func() { _ = rows.Close() }()

	var out []model.AccessibilityResult
	for rows.Next() {
		var (
			r                    model.AccessibilityResult
			level, issues, badge sql.NullString
			failure              sql.NullString
			atMS                 int64
		)
		if err := rows.Scan(&r.ID, &r.ContentID, &r.OutputPath, &r.Checker, &level, &issues,
			&r.ErrorCount, &r.WarningCount, &r.NoticeCount, &badge, &failure, &atMS); err != nil {
			return nil, queryErr(err, "scan accessibility result")
		}
		r.WCAGLevel, r.BadgeHTML, r.Failure = level.String, badge.String, failure.String
		r.CheckedAt = time.UnixMilli(atMS)
		if issues.String != "" && issues.String != "null" {
			if err := json.Unmarshal([]byte(issues.String), &r.Issues); err != nil {
				return nil, queryErr(err, "decode issues")
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err, "iterate accessibility results")
	}
	return out, nil
}
