package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListVersions_SortedSQLOnly(t *testing.T) {
	source := fstest.MapFS{
		"migrations/0002_credentials.sql": {Data: []byte("SELECT 1")},
		"migrations/0001_documents.sql":   {Data: []byte("SELECT 1")},
		"migrations/README.md":            {Data: []byte("notes")},
		"migrations/archive/0000_old.sql": {Data: []byte("SELECT 1")},
	}

	got, err := listVersions(source)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_documents", "0002_credentials"}, got)
}

func TestListVersions_Embedded(t *testing.T) {
	got, err := listVersions(migrationsFS)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "0001_documents", got[0])
	assert.IsIncreasing(t, got)
}

func TestMigration_Applied(t *testing.T) {
	assert.False(t, Migration{Version: "0001_documents"}.Applied())
}
