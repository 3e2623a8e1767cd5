package index

import (
	"log/slog"

	"github.com/PlebOne/blogster/internal/checksum"
	"github.com/PlebOne/blogster/internal/postfile"
	"github.com/PlebOne/blogster/internal/storage"
)

// Sync walks the posts directory and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	infos, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(infos))
	for _, info := range infos {
		disk[info.Path] = struct{}{}

		if checksums[info.Path] == info.Checksum {
			continue
		}

		data, err := store.Read(info.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", info.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, info.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", info.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", info.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeletePost(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses a post file and upserts it into the DB.
func indexFile(db *DB, path string, data []byte) error {
	post, err := postfile.Unmarshal(data, path)
	if err != nil {
		return err
	}

	row := PostRow{
		Path:      path,
		ID:        post.ID.String(),
		Title:     post.Title,
		Status:    string(post.Status),
		Checksum:  checksum.Sum(data),
		Tags:      post.Tags,
		UpdatedAt: post.UpdatedAt,
	}
	return db.UpsertPost(row, post.Content)
}
