//go:build integration

package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/techwatch-auth/internal/migrations"
)

const postgresPort nat.Port = "5432/tcp"

// TestDataFactory inserts rows directly, bypassing the store.
type TestDataFactory struct {
	storage *Storage
}

func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage}
}

// CreateUser inserts a user with the given role and verification state.
func (f *TestDataFactory) CreateUser(t *testing.T, userUID, pseudo, email, role string, verified bool) {
	t.Helper()
	_, err := f.storage.DB.Exec(`INSERT INTO users (uid, pseudo, email, password_hash, role, verified)
		VALUES ($1, $2, $3, 'hashedpassword', $4, $5)`,
		userUID, pseudo, email, role, verified)
	require.NoError(t, err)
}

// setupTestDatabase starts a PostgreSQL container and applies the migrations.
func setupTestDatabase(t *testing.T) (*Storage, func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{string(postgresPort)},
		Env: map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(postgresPort),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(3 * time.Minute),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "failed to start container")

	host, err := postgresContainer.Host(ctx)
	require.NoError(t, err)
	port, err := postgresContainer.MappedPort(ctx, postgresPort)
	require.NoError(t, err, "failed to get port")

	connStr := fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port())

	var storage *Storage
	for range 10 {
		storage, err = New(ctx, connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")

	migrationsPath, err := filepath.Abs("../../../migrations")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, migrationsPath))

	cleanup := func() {
		_ = storage.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
	return storage, cleanup
}
