package testutil

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"net"
	"net/url"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	// Register the pgx database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/vetdesk/vetdesk/internal/migrate"
)

// TestDBConfig locates the Postgres used by integration tests.
// The default port matches the test profile of the local compose stack.
type TestDBConfig struct {
	Host     string `env:"TEST_DB_HOST"     envDefault:"localhost"`
	Port     string `env:"TEST_DB_PORT"     envDefault:"55432"`
	User     string `env:"TEST_DB_USER"     envDefault:"vetdesk"`
	Password string `env:"TEST_DB_PASSWORD" envDefault:"vetdesk"`
	DBName   string `env:"TEST_DB_NAME"     envDefault:"vetdesk"`
	SSLMode  string `env:"DB_SSL_MODE"      envDefault:"disable"`
}

// TestInfra controls whether missing infrastructure skips or fails a test.
type TestInfra struct {
	RequireDB    bool   `env:"TEST_REQUIRE_DB"`
	RequireRedis bool   `env:"TEST_REQUIRE_REDIS"`
	RequireAll   bool   `env:"TEST_REQUIRE_INFRA"`
	RedisAddr    string `env:"TEST_REDIS_ADDR" envDefault:"localhost:56379"`
	RedisDB      int    `env:"TEST_REDIS_DB"   envDefault:"15"`
}

// DefaultTestDBConfig reads TestDBConfig from the environment.
func DefaultTestDBConfig() TestDBConfig {
	var cfg TestDBConfig
	_ = env.Parse(&cfg)
	return cfg
}

func infra() TestInfra {
	var in TestInfra
	_ = env.Parse(&in)
	return in
}

// DSN returns a pgx connection string, optionally pinned to schema.
func (c TestDBConfig) DSN(schema string) string {
	q := url.Values{"sslmode": {c.SSLMode}}
	if schema != "" {
		q.Set("search_path", schema)
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

func unavailable(t testing.TB, required bool, what string, err error) {
	t.Helper()
	if required {
		t.Fatalf("%s not available: %v", what, err)
	}
	t.Skipf("%s not available: %v", what, err)
}

func ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

// WithAutoDB runs fn against a migrated schema private to this test.
// The schema is dropped on cleanup. The test is skipped when Postgres is unreachable
// unless TEST_REQUIRE_DB or TEST_REQUIRE_INFRA is set.
func WithAutoDB(t testing.TB, fn func(*sql.DB)) {
	t.Helper()
	fn(SetupSchemaDB(t))
}

// SetupSchemaDB creates a throwaway schema, applies migrations into it and
// returns a pool whose search_path points at it.
func SetupSchemaDB(t testing.TB) *sql.DB {
	t.Helper()
	cfg := DefaultTestDBConfig()
	in := infra()
	ctx := context.Background()

	admin, err := sql.Open("pgx", cfg.DSN(""))
	if err == nil {
		err = ping(ctx, admin)
	}
	if err != nil {
		if admin != nil {
			_ = admin.Close()
		}
		unavailable(t, in.RequireDB || in.RequireAll, "test database", err)
	}

	schema := schemaName()
	if _, err := admin.ExecContext(ctx, "CREATE SCHEMA "+schema); err != nil {
		_ = admin.Close()
		t.Fatalf("create schema %s: %v", schema, err)
	}

	// pgcrypto lives in public; keep it on the path for gen_random_uuid.
	db, err := sql.Open("pgx", cfg.DSN(schema+",public"))
	if err != nil {
		_ = admin.Close()
		t.Fatalf("open schema db: %v", err)
	}
	db.SetMaxOpenConns(8)

	t.Cleanup(func() {
		_ = db.Close()
		dropCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := admin.ExecContext(dropCtx, "DROP SCHEMA IF EXISTS "+schema+" CASCADE"); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
		_ = admin.Close()
	})

	migrateCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := migrate.Run(migrateCtx, db); err != nil {
		t.Fatalf("migrate schema %s: %v", schema, err)
	}
	return db
}

func schemaName() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "t_" + time.Now().Format("150405000000")
	}
	return "t_" + hex.EncodeToString(b)
}

// SetupTestRedis returns a client on the dedicated test database, flushed before use.
// The test is skipped when Redis is unreachable unless TEST_REQUIRE_REDIS or
// TEST_REQUIRE_INFRA is set.
func SetupTestRedis(t testing.TB) *redis.Client {
	t.Helper()
	in := infra()
	client := redis.NewClient(&redis.Options{Addr: in.RedisAddr, DB: in.RedisDB})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		unavailable(t, in.RequireRedis || in.RequireAll, "test redis at "+in.RedisAddr, err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush test redis: %v", err)
	}
	return client
}
