package db

import (
	"context"
	"os"
	"testing"
)

func TestConnect_RejectsBadDSN(t *testing.T) {
	if _, err := Connect(context.Background(), "postgres://%zz", Options{}); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestConnect_AppliesOptions(t *testing.T) {
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := Connect(context.Background(), dsn, Options{AppName: "restaurant-ops-test", MaxConns: 3})
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	defer pool.Close()

	if got := pool.Config().MaxConns; got != 3 {
		t.Fatalf("expected max conns 3, got %d", got)
	}
	var app string
	if err := pool.QueryRow(context.Background(), `SELECT current_setting('application_name')`).Scan(&app); err != nil {
		t.Fatalf("query application_name: %v", err)
	}
	if app != "restaurant-ops-test" {
		t.Fatalf("expected application_name restaurant-ops-test, got %q", app)
	}
}
