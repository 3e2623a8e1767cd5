package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PostRow represents a row in the posts table.
type PostRow struct {
	Path      string
	ID        string
	Title     string
	Status    string
	Checksum  string
	Tags      []string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// UpsertPost inserts or replaces a post row and its FTS entry.
func (db *DB) UpsertPost(row PostRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(row.Tags)
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO posts (path, id, title, status, checksum, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			id         = excluded.id,
			title      = excluded.title,
			status     = excluded.status,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, row.Path, row.ID, row.Title, row.Status, row.Checksum, string(tagsJSON), body, row.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert post: %w", err)
	}

	if err := ftsUpsert(tx, row.Path, row.Title, body, row.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// DeletePost removes a post row and its FTS entry.
func (db *DB) DeletePost(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM posts WHERE path = ?`, path)

	return tx.Commit()
}

func scanRow(scan func(...any) error) (*PostRow, error) {
	var r PostRow
	var tagsJSON string
	if err := scan(&r.Path, &r.ID, &r.Title, &r.Status, &r.Checksum, &tagsJSON, &r.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &r.Tags)
	return &r, nil
}

const rowColumns = `path, id, title, status, checksum, tags, updated_at`

// GetPost returns the row for a path, or nil when not indexed.
func (db *DB) GetPost(path string) (*PostRow, error) {
	row := db.conn.QueryRow(`SELECT `+rowColumns+` FROM posts WHERE path = ?`, path)
	r, err := scanRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get post: %w", err)
	}
	return r, nil
}

// FindByID returns the row for a post UUID, or nil when not indexed.
func (db *DB) FindByID(id string) (*PostRow, error) {
	row := db.conn.QueryRow(`SELECT `+rowColumns+` FROM posts WHERE id = ?`, id)
	r, err := scanRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: find by id: %w", err)
	}
	return r, nil
}

// ListPosts returns paginated rows with optional status and tag filters.
// sort is one of updated_at (default, newest first), title, path.
func (db *DB) ListPosts(limit, offset int, status, tag, sort string) ([]PostRow, int, error) {
	if limit <= 0 {
		limit = 50
	}

	where := `WHERE 1=1`
	var args []any
	if status != "" {
		where += ` AND status = ?`
		args = append(args, status)
	}
	if tag != "" {
		where += ` AND tags LIKE ?`
		args = append(args, `%"`+tag+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM posts `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count posts: %w", err)
	}

	orderBy := `updated_at DESC`
	switch sort {
	case "title":
		orderBy = `title COLLATE NOCASE ASC`
	case "path":
		orderBy = `path ASC`
	}

	query := `SELECT ` + rowColumns + ` FROM posts ` + where +
		` ORDER BY ` + orderBy + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list posts: %w", err)
	}
	defer rows.Close()

	var out []PostRow
	for rows.Next() {
		r, err := scanRow(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	return out, total, rows.Err()
}

// AllChecksums returns path → checksum for every indexed post.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
