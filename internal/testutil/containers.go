package testutil

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	cookiifydb "github.com/windoze95/cookiify-api/internal/db"
	"github.com/windoze95/cookiify-api/internal/normalize"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// requireDocker skips container-backed tests in -short mode or when docker
// is not installed.
func requireDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}
}

func startContainer(t *testing.T, req testcontainers.ContainerRequest) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("failed to start %s container: %v", req.Image, err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("failed to get container endpoint: %v", err)
	}
	return endpoint
}

// StartRedis runs a throwaway Redis server and returns a connected client.
func StartRedis(t *testing.T) *redis.Client {
	t.Helper()
	requireDocker(t)

	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	})

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("failed to ping redis: %v", err)
	}
	return client
}

// StartPostgres runs a throwaway PostgreSQL server and returns a migrated
// gorm handle.
func StartPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	requireDocker(t)

	addr := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "cookiify",
			"POSTGRES_PASSWORD": "cookiify",
			"POSTGRES_DB":       "cookiify",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithStartupTimeout(60 * time.Second),
	})

	dsn := fmt.Sprintf("postgres://cookiify:cookiify@%s/cookiify?sslmode=disable", addr)
	database, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}
	if err := cookiifydb.Migrate(database, normalize.New(nil, normalize.FirstPicker())); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return database
}
