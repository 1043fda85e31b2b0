package storage

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printcalc/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.Database{
		Host:     "db",
		Port:     5432,
		User:     "calc",
		Password: "secret",
		Name:     "printcalc",
		SSLMode:  "disable",
	})
	assert.Equal(t, "host=db port=5432 user=calc password=secret dbname=printcalc sslmode=disable", dsn)
}

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(migrationsFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Contains(t, files, "migrations/00001_price_tables.sql")
}
