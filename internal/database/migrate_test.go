package database

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestMigrate_Success(t *testing.T) {
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := Migrate(db, DriverSQLite); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	if err != nil {
		t.Fatalf("querying migrations: %v", err)
	}
	want, err := migrationFileCount(DriverSQLite)
	if err != nil {
		t.Fatalf("counting migration files: %v", err)
	}

	if count != want {
		t.Errorf("expected %d migrations, got %d", want, count)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := Migrate(db, DriverSQLite); err != nil {
		t.Fatalf("first migration: %v", err)
	}

	if err := Migrate(db, DriverSQLite); err != nil {
		t.Fatalf("second migration should not fail: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	want, err := migrationFileCount(DriverSQLite)
	if err != nil {
		t.Fatalf("counting migration files: %v", err)
	}
	if count != want {
		t.Errorf("expected %d migrations after double run, got %d", want, count)
	}
}

func TestMigrate_DialectsStayInStep(t *testing.T) {
	sqliteCount, err := migrationFileCount(DriverSQLite)
	if err != nil {
		t.Fatalf("counting sqlite migrations: %v", err)
	}
	mysqlCount, err := migrationFileCount(DriverMySQL)
	if err != nil {
		t.Fatalf("counting mysql migrations: %v", err)
	}
	if sqliteCount != mysqlCount {
		t.Errorf("expected the same number of migrations per driver, got sqlite=%d mysql=%d", sqliteCount, mysqlCount)
	}
}

func migrationFileCount(driver string) (int, error) {
	_, thisFile, _, _ := runtime.Caller(0)
	migrationsDir := filepath.Join(filepath.Dir(thisFile), "migrations", driver)
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return 0, err
	}
	want := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			want++
		}
	}
	return want, nil
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if err := Migrate(db, DriverSQLite); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	expectedTables := []string{"profiles", "scheduled_habits", "history_entries"}
	for _, table := range expectedTables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table '%s' not found: %v", table, err)
		}
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "x"); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestSplitStatements(t *testing.T) {
	statements := splitStatements("CREATE TABLE a (id INT);\n\n CREATE TABLE b (id INT);\n")
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(statements))
	}
	if statements[1] != "CREATE TABLE b (id INT)" {
		t.Errorf("unexpected statement %q", statements[1])
	}
}
