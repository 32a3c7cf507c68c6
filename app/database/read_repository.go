package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ ReadArticleRepository = (*ReadRepository)(nil)

type ReadRepository struct {
	db *DB
}

func NewReadRepository(db *DB) *ReadRepository {
	return &ReadRepository{db: db}
}

// MarkRead records an article as read. Marking the same URL again refreshes
// the metadata but keeps the original read timestamp and flag.
func (r *ReadRepository) MarkRead(article ReadArticle) error {
	dateRead := article.DateRead
	if dateRead.IsZero() {
		dateRead = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO read_articles (url, title, category, publication, date_read, is_flagged)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO UPDATE SET
			title = excluded.title,
			category = excluded.category,
			publication = excluded.publication
	`, article.URL, article.Title, article.Category, article.Publication,
		dateRead, article.IsFlagged)

	if err != nil {
		return fmt.Errorf("failed to mark article read: %w", err)
	}

	return nil
}

func (r *ReadRepository) SetFlag(url string, flagged bool) error {
	result, err := r.db.Exec(`UPDATE read_articles SET is_flagged = ? WHERE url = ?`,
		flagged, url)
	if err != nil {
		return fmt.Errorf("failed to set flag: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check flag update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("article not found: %s", url)
	}

	return nil
}

// ReadURLs returns the set of read article URLs, the only view of the store
// the ingestion side consumes.
func (r *ReadRepository) ReadURLs() (map[string]bool, error) {
	rows, err := r.db.Query(`SELECT url FROM read_articles`)
	if err != nil {
		return nil, fmt.Errorf("failed to query read URLs: %w", err)
	}
	defer rows.Close()

	urls := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan read URL: %w", err)
		}
		urls[url] = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate read URLs: %w", err)
	}

	return urls, nil
}

func (r *ReadRepository) List() ([]ReadArticle, error) {
	rows, err := r.db.Query(`
		SELECT id, url, title, category, publication, date_read, is_flagged
		FROM read_articles
		ORDER BY date_read DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query read articles: %w", err)
	}
	defer rows.Close()

	var articles []ReadArticle
	for rows.Next() {
		var a ReadArticle
		if err := rows.Scan(&a.ID, &a.URL, &a.Title, &a.Category,
			&a.Publication, &a.DateRead, &a.IsFlagged); err != nil {
			return nil, fmt.Errorf("failed to scan read article: %w", err)
		}
		articles = append(articles, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate read articles: %w", err)
	}

	return articles, nil
}

func (r *ReadRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM read_articles`).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to count read articles: %w", err)
	}
	return count, nil
}
