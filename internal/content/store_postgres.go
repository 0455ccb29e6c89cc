package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lop-hoc/lophoc-server/internal/quiz"
)

const dbTimeout = 5 * time.Second

// PostgresStore keeps every document as a {id, data jsonb} row: the course
// aggregate at row 1 and one bank row per lesson at BankKey(lessonID).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed document store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) LoadAppData(ctx context.Context) (AppData, error) {
	var data AppData
	if err := s.loadRow(ctx, AppDataRowID, &data); err != nil {
		return AppData{}, err
	}
	return data, nil
}

func (s *PostgresStore) SaveAppData(ctx context.Context, data AppData) error {
	return s.saveRow(ctx, AppDataRowID, data)
}

func (s *PostgresStore) LoadBank(ctx context.Context, lessonID string) ([]quiz.Question, error) {
	var bank []quiz.Question
	if err := s.loadRow(ctx, BankKey(lessonID), &bank); err != nil {
		return nil, err
	}
	return bank, nil
}

func (s *PostgresStore) SaveBank(ctx context.Context, lessonID string, bank []quiz.Question) error {
	if bank == nil {
		bank = []quiz.Question{}
	}
	return s.saveRow(ctx, BankKey(lessonID), bank)
}

func (s *PostgresStore) DeleteBank(ctx context.Context, lessonID string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, BankKey(lessonID))
	if err != nil {
		return fmt.Errorf("delete bank: %w", err)
	}
	return nil
}

func (s *PostgresStore) loadRow(ctx context.Context, id int64, out any) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM documents WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("load document %d: %w", id, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode document %d: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) saveRow(ctx context.Context, id int64, v any) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document %d: %w", id, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, data) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
		id, raw,
	)
	if err != nil {
		return fmt.Errorf("save document %d: %w", id, err)
	}
	return nil
}
