package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/nettap/internal/config"
	"github.com/neomorfeo/nettap/internal/seed"
	"github.com/neomorfeo/nettap/internal/storage"
	"github.com/neomorfeo/nettap/internal/storage/storagetest"
)

func testConfig(t *testing.T, dbType string) config.Config {
	dir := t.TempDir()
	return config.Config{
		DatabaseType:       dbType,
		DatabasePath:       filepath.Join(dir, "nettap.db"),
		DatabaseURL:        os.Getenv("NETTAP_TEST_POSTGRES_URL"),
		SheetsWorkbookPath: filepath.Join(dir, "nettap.xlsx"),
		SeedData:           true,
	}
}

func opener(dbType string) storagetest.Opener {
	return func(t *testing.T, _ seed.Data) storagetest.Repos {
		store, err := storage.Open(context.Background(), testConfig(t, dbType), storagetest.PlainHasher{})
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })

		return storagetest.Repos{
			Cities:    store.Cities,
			Districts: store.Districts,
			ISPs:      store.ISPs,
			Tariffs:   store.Tariffs,
			Leads:     store.Leads,
			Users:     store.Users,
		}
	}
}

func TestOpen_Contract(t *testing.T) {
	for _, dbType := range []string{config.DatabaseMemory, config.DatabaseSQLite, config.DatabaseSheets} {
		t.Run(dbType, func(t *testing.T) {
			storagetest.Run(t, opener(dbType))
		})
	}
}

func TestOpen_Postgres(t *testing.T) {
	if os.Getenv("NETTAP_TEST_POSTGRES_URL") == "" {
		t.Skip("NETTAP_TEST_POSTGRES_URL not set")
	}
	store, err := storage.Open(context.Background(), testConfig(t, config.DatabasePostgres), storagetest.PlainHasher{})
	require.NoError(t, err)
	defer store.Close()

	assert.NoError(t, store.Ping(context.Background()))
	isps, err := store.ISPs.FindActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, isps, 3)
}

func TestOpen_SQLiteWithoutSeed(t *testing.T) {
	cfg := testConfig(t, config.DatabaseSQLite)
	cfg.SeedData = false

	store, err := storage.Open(context.Background(), cfg, storagetest.PlainHasher{})
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, config.DatabaseSQLite, store.Type)
	assert.NoError(t, store.Ping(context.Background()))
	cities, err := store.Cities.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cities)
}

func TestOpen_MemoryAlwaysSeeds(t *testing.T) {
	cfg := testConfig(t, config.DatabaseMemory)
	cfg.SeedData = false

	store, err := storage.Open(context.Background(), cfg, storagetest.PlainHasher{})
	require.NoError(t, err)

	cities, err := store.Cities.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, cities, 3)
}

func TestOpen_UnknownType(t *testing.T) {
	_, err := storage.Open(context.Background(), testConfig(t, "mongo"), storagetest.PlainHasher{})
	assert.Error(t, err)
}
