package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/phonebook/internal/config"
)

func TestMigrationFilesAreOrderedSQLOnly(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_contacts.sql", "0001_identities.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700))

	files, err := migrationFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_identities.sql", "0002_contacts.sql"}, files)
}

func TestRepositoryMigrationsExist(t *testing.T) {
	files, err := migrationFiles(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	assert.NotEmpty(t, files)
}

func TestNewPostgresWithoutDSN(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, pg)
	assert.ErrorIs(t, pg.Ping(context.Background()), ErrNotConfigured)
	pg.Close()
}

func TestRedisLifecycle(t *testing.T) {
	assert.Nil(t, NewRedis(context.Background(), config.RedisConfig{}, zap.NewNop()))

	srv := miniredis.RunT(t)
	r := NewRedis(context.Background(), config.RedisConfig{Addr: srv.Addr()}, zap.NewNop())
	require.NotNil(t, r)
	defer r.Close()

	assert.NoError(t, r.Ping(context.Background()))
	assert.NotNil(t, r.ClientHandle())

	var disabled *Redis
	assert.ErrorIs(t, disabled.Ping(context.Background()), ErrNotConfigured)
	assert.Nil(t, disabled.ClientHandle())
}
