package migration

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces become underscores", "add lot tracking", "add_lot_tracking"},
		{"mixed case lowers", "Create-Stock-Records", "create_stock_records"},
		{"runs of separators collapse", "fix -- reservation  index", "fix_reservation_index"},
		{"symbols drop", "v2: transfers!", "v2_transfers"},
		{"trailing separator trims", "add transfers_", "add_transfers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeName(tt.in))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	t.Run("writes an up and down pair", func(t *testing.T) {
		dir := t.TempDir()

		mf, err := CreateMigration(dir, "add lot tracking", "track inbound receipts per lot")
		require.NoError(t, err)

		assert.True(t, strings.HasSuffix(mf.UpPath, "_add_lot_tracking.up.sql"))
		assert.True(t, strings.HasSuffix(mf.DownPath, "_add_lot_tracking.down.sql"))

		up, err := os.ReadFile(mf.UpPath)
		require.NoError(t, err)
		assert.Contains(t, string(up), "add lot tracking")
		assert.Contains(t, string(up), "track inbound receipts per lot")

		down, err := os.ReadFile(mf.DownPath)
		require.NoError(t, err)
		assert.Contains(t, string(down), "Rollback")
	})

	t.Run("creates the directory when missing", func(t *testing.T) {
		dir := t.TempDir() + "/nested/migrations"

		_, err := CreateMigration(dir, "init", "first schema")
		require.NoError(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

func TestListMigrations(t *testing.T) {
	t.Run("lists one entry per pair", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"000001_init.up.sql", "000001_init.down.sql",
			"000002_reservations.up.sql", "000002_reservations.down.sql",
			"README.md",
		} {
			require.NoError(t, os.WriteFile(dir+"/"+name, []byte("-- noop"), 0644))
		}

		migrations, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init", "000002_reservations"}, migrations)
	})

	t.Run("missing directory lists as empty", func(t *testing.T) {
		migrations, err := ListMigrations(t.TempDir() + "/does-not-exist")
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})
}
