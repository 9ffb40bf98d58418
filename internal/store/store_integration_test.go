//go:build integration

package store

import (
	"context"
	"os"
	"testing"
)

func setupTestStore(t *testing.T) Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	if err := Migrate(dbURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	ctx := context.Background()
	s, err := NewPostgres(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	truncate := func() {
		s.pool.Exec(ctx, "TRUNCATE votes, voting_sessions, analysis_settings, themes, transcripts, projects RESTART IDENTITY CASCADE")
	}
	truncate()
	t.Cleanup(func() {
		truncate()
		s.Close()
	})
	return s
}

func TestIntegration_Postgres(t *testing.T) {
	runStoreSuite(t, setupTestStore)
}

func TestIntegration_MigrationStatus(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	if err := Migrate(dbURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	status, err := GetMigrationStatus(dbURL)
	if err != nil {
		t.Fatalf("GetMigrationStatus: %v", err)
	}
	if status.Pending || status.Dirty {
		t.Errorf("expected clean, up-to-date schema, got %+v", status)
	}
	if status.CurrentVersion != status.LatestVersion {
		t.Errorf("expected version %d, got %d", status.LatestVersion, status.CurrentVersion)
	}
}
