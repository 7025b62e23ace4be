package store

import (
	"context"
	"database/sql"
	stderrors "errors"

	"git.home.luguber.info/inful/sitebuilder/internal/hierarchy"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

const contentColumns = `id, title, source_path, output_path, is_autobuilt, mime_type,
	parent_output_path, slug, sort_order, level, relative_link, menu_context,
	can_convert_md, can_convert_txt, can_convert_tex, can_convert_pdf,
	can_convert_docx, can_convert_ppt, can_convert_jupyter, can_convert_ipynb`

// ReplaceContent deletes every content node, and every record attached to
// one, then inserts nodes in a single transaction. The returned slice
// carries the assigned IDs.
func (s *Store) ReplaceContent(ctx context.Context, nodes []model.ContentNode) ([]model.ContentNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ContentNode, len(nodes))
	copy(out, nodes)

	err := s.withTx(ctx, "replace content", func(tx *sql.Tx) error {
		for _, table := range []string{"files", "source_info", "conversion_results", "accessibility_results", "content"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return queryErr(err, "clear "+table)
			}
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO content (
			title, source_path, output_path, is_autobuilt, mime_type,
			parent_output_path, slug, sort_order, level, relative_link, menu_context,
			can_convert_md, can_convert_txt, can_convert_tex, can_convert_pdf,
			can_convert_docx, can_convert_ppt, can_convert_jupyter, can_convert_ipynb
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return queryErr(err, "prepare content insert")
		}
		defer func() { _ = stmt.Close() }()

		for i := range out {
			n := &out[i]
			c := n.Capabilities
			res, err := stmt.ExecContext(ctx,
				n.Title, nullable(n.SourcePath), n.OutputPath, boolInt(n.IsAutobuilt), n.MimeType,
				nullable(n.ParentOutputPath), n.Slug, n.Order, n.Level, n.RelativeLink, n.MenuContext,
				boolInt(c.Markdown), boolInt(c.Text), boolInt(c.TeX), boolInt(c.PDF),
				boolInt(c.DOCX), boolInt(c.PPT), boolInt(c.Jupyter), boolInt(c.Notebook),
			)
			if err != nil {
				return queryErr(err, "insert content "+n.OutputPath)
			}
			if n.ID, err = res.LastInsertId(); err != nil {
				return queryErr(err, "content id")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListContent returns every node in insertion (table of contents) order.
func (s *Store) ListContent(ctx context.Context) ([]model.ContentNode, error) {
	return s.queryContent(ctx, "list content", "SELECT "+contentColumns+" FROM content ORDER BY id")
}

// ContentByID returns one node.
func (s *Store) ContentByID(ctx context.Context, id int64) (model.ContentNode, error) {
	return s.oneContent(ctx, "content by id", "SELECT "+contentColumns+" FROM content WHERE id = ?", id)
}

// ContentByOutputPath returns the node owning outputPath. When a section
// and its index page share a path, the section wins.
func (s *Store) ContentByOutputPath(ctx context.Context, outputPath string) (model.ContentNode, error) {
	return s.oneContent(ctx, "content by output path",
		`SELECT `+contentColumns+` FROM content WHERE output_path = ?
		 ORDER BY CASE WHEN parent_output_path = output_path THEN 1 ELSE 0 END, id LIMIT 1`, outputPath)
}

// ContentBySource returns every node backed by sourcePath.
func (s *Store) ContentBySource(ctx context.Context, sourcePath string) ([]model.ContentNode, error) {
	return s.queryContent(ctx, "content by source",
		"SELECT "+contentColumns+" FROM content WHERE source_path = ? ORDER BY id", sourcePath)
}

// TopLevelMenu returns root nodes in menuContext ordered by sibling order.
func (s *Store) TopLevelMenu(ctx context.Context, menuContext string) ([]model.ContentNode, error) {
	return s.queryContent(ctx, "top level menu",
		`SELECT `+contentColumns+` FROM content
		 WHERE (parent_output_path IS NULL OR parent_output_path = '') AND menu_context = ?
		 ORDER BY sort_order, id`, menuContext)
}

// Children returns the direct children of parentOutputPath by sibling order.
func (s *Store) Children(ctx context.Context, parentOutputPath string) ([]model.ContentNode, error) {
	return s.queryContent(ctx, "children",
		"SELECT "+contentColumns+" FROM content WHERE parent_output_path = ? ORDER BY sort_order, id",
		parentOutputPath)
}

// GetDescendants returns every node below parentOutputPath with levels
// relative to it, ordered by level then output path. An unknown path
// yields an empty slice.
func (s *Store) GetDescendants(ctx context.Context, parentOutputPath string) ([]model.HierarchyRow, error) {
	nodes, err := s.ListContent(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.NewIndex(nodes).Descendants(parentOutputPath), nil
}

// GetAncestors returns the chain from the root to the parent of outputPath.
func (s *Store) GetAncestors(ctx context.Context, outputPath string) ([]model.HierarchyRow, error) {
	nodes, err := s.ListContent(ctx)
	if err != nil {
		return nil, err
	}
	return hierarchy.NewIndex(nodes).Ancestors(outputPath), nil
}

func (s *Store) oneContent(ctx context.Context, what, query string, args ...any) (model.ContentNode, error) {
	nodes, err := s.queryContent(ctx, what, query, args...)
	if err != nil {
		return model.ContentNode{}, err
	}
	if len(nodes) == 0 {
		return model.ContentNode{}, ErrNotFound.WithContext("query", what)
	}
	return nodes[0], nil
}

func (s *Store) queryContent(ctx context.Context, what, query string, args ...any) ([]model.ContentNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryErr(err, what)
	}
	defer func() { _ = rows.Close() }()
	return scanContent(rows)
}

func scanContent(rows *sql.Rows) ([]model.ContentNode, error) {
	var out []model.ContentNode
	for rows.Next() {
		var (
			n                         model.ContentNode
			source, parent, mime, rel sql.NullString
			slug                      sql.NullString
			auto                      int
			md, txt, tex, pdf         int
			docx, ppt, jup, nb        int
		)
		if err := rows.Scan(&n.ID, &n.Title, &source, &n.OutputPath, &auto, &mime,
			&parent, &slug, &n.Order, &n.Level, &rel, &n.MenuContext,
			&md, &txt, &tex, &pdf, &docx, &ppt, &jup, &nb); err != nil {
			return nil, queryErr(err, "scan content")
		}
		n.SourcePath = source.String
		n.ParentOutputPath = parent.String
		n.MimeType = mime.String
		n.RelativeLink = rel.String
		n.Slug = slug.String
		n.IsAutobuilt = auto == 1
		n.Capabilities = model.CapabilityFlags{
			Markdown: md == 1, Text: txt == 1, TeX: tex == 1, PDF: pdf == 1,
			DOCX: docx == 1, PPT: ppt == 1, Jupyter: jup == 1, Notebook: nb == 1,
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err, "iterate content")
	}
	return out, nil
}

// IsNotFound reports whether err means no row matched.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}
