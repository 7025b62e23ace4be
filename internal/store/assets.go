package store

import (
	"context"
	"database/sql"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

const fileColumns = `id, content_id, filename, extension, mime_type, is_image, is_remote,
	is_embedded, is_code_generated, url, referenced_page, relative_path, absolute_path, cell_type`

// ReplaceAssets replaces the whole asset set.
func (s *Store) ReplaceAssets(ctx context.Context, assets []model.AssetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, "replace assets", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM files"); err != nil {
			return queryErr(err, "clear files")
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO files (
			content_id, filename, extension, mime_type, is_image, is_remote, is_embedded,
			is_code_generated, url, referenced_page, relative_path, absolute_path, cell_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return queryErr(err, "prepare file insert")
		}
		defer func() { _ = stmt.Close() }()

		for _, a := range assets {
			var contentID sql.NullInt64
			if a.ContentID != 0 {
				contentID = sql.NullInt64{Int64: a.ContentID, Valid: true}
			}
			if _, err := stmt.ExecContext(ctx,
				contentID, a.Filename, a.Extension, a.MimeType, boolInt(a.IsImage), boolInt(a.IsRemote),
				boolInt(a.IsEmbedded), boolInt(a.IsCodeGenerated), nullable(a.URL), a.ReferencedPage,
				nullable(a.RelativePath), nullable(a.AbsolutePath), nullable(a.CellType),
			); err != nil {
				return queryErr(err, "insert file "+a.Filename)
			}
		}
		return nil
	})
}

// Assets returns every asset ordered by insertion.
func (s *Store) Assets(ctx context.Context) ([]model.AssetRecord, error) {
	return s.queryAssets(ctx, "assets", "SELECT "+fileColumns+" FROM files ORDER BY id")
}

// AssetsForPage returns the assets referenced by the page at sourcePath.
func (s *Store) AssetsForPage(ctx context.Context, sourcePath string) ([]model.AssetRecord, error) {
	return s.queryAssets(ctx, "assets for page",
		"SELECT "+fileColumns+" FROM files WHERE referenced_page = ? ORDER BY id", sourcePath)
}

// ImagesForPage returns the images referenced by the page at sourcePath.
func (s *Store) ImagesForPage(ctx context.Context, sourcePath string) ([]model.AssetRecord, error) {
	return s.queryAssets(ctx, "images for page",
		"SELECT "+fileColumns+" FROM files WHERE referenced_page = ? AND is_image = 1 ORDER BY id", sourcePath)
}

// LocalImages returns every non-remote image, used to mirror the flat
// images directory.
func (s *Store) LocalImages(ctx context.Context) ([]model.AssetRecord, error) {
	return s.queryAssets(ctx, "local images",
		"SELECT "+fileColumns+" FROM files WHERE is_image = 1 AND is_remote = 0 ORDER BY id")
}

func (s *Store) queryAssets(ctx context.Context, what, query string, args ...any) ([]model.AssetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryErr(err, what)
	}
	defer func() { _ = rows.Close() }()

	var out []model.AssetRecord
	for rows.Next() {
		var (
			a                              model.AssetRecord
			contentID                      sql.NullInt64
			ext, mime, url, rel, abs, cell sql.NullString
			image, remote, embedded, gen   int
		)
		if err := rows.Scan(&a.ID, &contentID, &a.Filename, &ext, &mime, &image, &remote,
			&embedded, &gen, &url, &a.ReferencedPage, &rel, &abs, &cell); err != nil {
			return nil, queryErr(err, "scan file")
		}
		a.ContentID = contentID.Int64
		a.Extension, a.MimeType, a.URL = ext.String, mime.String, url.String
		a.RelativePath, a.AbsolutePath, a.CellType = rel.String, abs.String, cell.String
		a.IsImage, a.IsRemote = image == 1, remote == 1
		a.IsEmbedded, a.IsCodeGenerated = embedded == 1, gen == 1
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, queryErr(err, "iterate files")
	}
	return out, nil
}
