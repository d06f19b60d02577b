package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"catalog/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStores_SQLite(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:  config.DriverSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "catalog.db"),
		StoreTimeout: time.Second,
	}

	st, err := openStores(context.Background(), cfg)
	require.NoError(t, err)
	defer st.close()

	assert.NotNil(t, st.content)
	assert.NotNil(t, st.feedback)
	assert.NotNil(t, st.settings)
}

func TestOpenStores_SQLiteUnopenable(t *testing.T) {
	cfg := &config.Config{
		StoreDriver:  config.DriverSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "missing", "dir", "catalog.db"),
		StoreTimeout: time.Second,
	}

	st, err := openStores(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, st)
}

func TestOpenStores_MongoUnreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for mongodb ping retries")
	}

	cfg := &config.Config{
		StoreDriver:   config.DriverMongo,
		MongoURI:      "mongodb://127.0.0.1:1/?directConnection=true",
		MongoDatabase: "catalog_test",
		StoreTimeout:  200 * time.Millisecond,
	}

	st, err := openStores(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, st)
	assert.Contains(t, err.Error(), "failed to ping mongodb")
}

func TestOpenStores_UnknownDriver(t *testing.T) {
	_, err := openStores(context.Background(), &config.Config{StoreDriver: "postgres"})
	assert.Error(t, err)
}
