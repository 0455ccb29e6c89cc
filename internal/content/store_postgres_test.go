package content_test

import (
	"errors"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/lop-hoc/lophoc-server/internal/content"
	"github.com/lop-hoc/lophoc-server/internal/platform/database"
	"github.com/lop-hoc/lophoc-server/internal/quiz"
	"github.com/lop-hoc/lophoc-server/internal/tree"
)

// startPostgres spins up a throwaway postgres container and returns a
// migrated store backed by it.
func startPostgres(t *testing.T) *content.PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := t.Context()
	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("lophoc"),
		tcpostgres.WithUsername("lophoc"),
		tcpostgres.WithPassword("lophoc"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("starting postgres container: %v", err)
	}

	url, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	db, err := database.New(ctx, url, 5, 1)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	store, err := content.NewPostgresStore(db.Pool)
	if err != nil {
		t.Fatalf("NewPostgresStore() error = %v", err)
	}
	return store
}

func TestPostgresStore_AppDataRoundTrip(t *testing.T) {
	store := startPostgres(t)
	ctx := t.Context()

	if _, err := store.LoadAppData(ctx); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("LoadAppData() on empty table error = %v, want ErrNotFound", err)
	}

	data := content.AppData{
		HomeURL: "https://example.com",
		Nodes: []tree.Node{
			{ID: "c1", Title: "Chương 1", Type: tree.TypeFolder, Order: 0},
			{ID: "b1", Title: "Bài 1", Type: tree.TypeLesson, ParentID: "c1", URL: "https://x", Order: 0},
		},
		GlobalResources: []tree.ResourceLink{{ID: "r1", Title: "Tài liệu", URL: "https://y"}},
	}
	if err := store.SaveAppData(ctx, data); err != nil {
		t.Fatalf("SaveAppData() error = %v", err)
	}

	got, err := store.LoadAppData(ctx)
	if err != nil {
		t.Fatalf("LoadAppData() error = %v", err)
	}
	if len(got.Nodes) != 2 || got.HomeURL != data.HomeURL || len(got.GlobalResources) != 1 {
		t.Errorf("LoadAppData() = %+v", got)
	}

	// Full-document upsert: a second save replaces the row.
	data.HomeURL = "https://example.com/v2"
	if err := store.SaveAppData(ctx, data); err != nil {
		t.Fatalf("SaveAppData() upsert error = %v", err)
	}
	got, err = store.LoadAppData(ctx)
	if err != nil {
		t.Fatalf("LoadAppData() error = %v", err)
	}
	if got.HomeURL != "https://example.com/v2" {
		t.Errorf("HomeURL = %q after upsert, want v2", got.HomeURL)
	}
}

func TestPostgresStore_BankRows(t *testing.T) {
	store := startPostgres(t)
	ctx := t.Context()

	if _, err := store.LoadBank(ctx, "bai-1"); !errors.Is(err, content.ErrNotFound) {
		t.Fatalf("LoadBank() error = %v, want ErrNotFound (no quiz authored)", err)
	}

	bank := []quiz.Question{
		{Question: "Tính $1+1$", Options: []string{"1", "2", "3", "4"}, CorrectIndex: 1, Explanation: "1+1=2"},
	}
	if err := store.SaveBank(ctx, "bai-1", bank); err != nil {
		t.Fatalf("SaveBank() error = %v", err)
	}

	got, err := store.LoadBank(ctx, "bai-1")
	if err != nil {
		t.Fatalf("LoadBank() error = %v", err)
	}
	if len(got) != 1 || got[0].Question != bank[0].Question {
		t.Errorf("LoadBank() = %+v", got)
	}

	// Banks for different lessons live in different rows.
	if _, err := store.LoadBank(ctx, "bai-2"); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("LoadBank(bai-2) error = %v, want ErrNotFound", err)
	}

	if err := store.DeleteBank(ctx, "bai-1"); err != nil {
		t.Fatalf("DeleteBank() error = %v", err)
	}
	if _, err := store.LoadBank(ctx, "bai-1"); !errors.Is(err, content.ErrNotFound) {
		t.Errorf("LoadBank() after delete error = %v, want ErrNotFound", err)
	}
}
