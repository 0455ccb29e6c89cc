package cache

import (
	"fmt"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid-redis", "redis://localhost:6379", false},
		{"valid-with-db", "redis://localhost:6379/0", false},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_UnreachableHost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping unreachable host test in short mode")
	}

	ctx := t.Context()
	_, err := New(ctx, "redis://localhost:59999")
	if err == nil {
		t.Fatal("New() should return error for unreachable host")
	}
}

func TestVisitorCounter(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := t.Context()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("mapped port: %v", err)
	}

	c, err := New(ctx, fmt.Sprintf("redis://%s:%s", host, port.Port()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	// A fresh counter reads zero before any visit.
	count, err := c.Visitors(ctx)
	if err != nil {
		t.Fatalf("Visitors() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Visitors() = %d, want 0", count)
	}

	for want := int64(1); want <= 3; want++ {
		got, err := c.IncrementVisitors(ctx)
		if err != nil {
			t.Fatalf("IncrementVisitors() error = %v", err)
		}
		if got != want {
			t.Errorf("IncrementVisitors() = %d, want %d", got, want)
		}
	}

	count, err = c.Visitors(ctx)
	if err != nil {
		t.Fatalf("Visitors() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Visitors() = %d, want 3", count)
	}
}
