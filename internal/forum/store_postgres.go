package forum

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is the PostgreSQL-backed comment store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed comment store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) List(ctx context.Context, nodeID string) ([]Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, node_id, author, content, image_url, is_admin, created_at
		 FROM comments
		 WHERE node_id = $1
		 ORDER BY created_at ASC`,
		nodeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var out []Comment
	for rows.Next() {
		var c Comment
		var imageURL *string
		if err := rows.Scan(&c.ID, &c.NodeID, &c.Author, &c.Content, &imageURL, &c.IsAdmin, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if imageURL != nil {
			c.ImageURL = *imageURL
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Insert(ctx context.Context, c Comment) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO comments (id, node_id, author, content, image_url, is_admin, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.NodeID, c.Author, c.Content, nullIfEmpty(c.ImageURL), c.IsAdmin, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var nodeID string
	err := s.pool.QueryRow(ctx,
		`DELETE FROM comments WHERE id = $1 RETURNING node_id`, id,
	).Scan(&nodeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCommentNotFound
		}
		return "", fmt.Errorf("delete comment: %w", err)
	}
	return nodeID, nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
