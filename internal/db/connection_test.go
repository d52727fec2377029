package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Migrate_BadDSN(t *testing.T) {
	t.Parallel()

	err := Migrate("whatever://not-a-database")

	require.Error(t, err)
	require.Contains(t, err.Error(), "error while preparing migrator", "migrator errors should carry context")
}

func Test_Connect_BadDSN(t *testing.T) {
	t.Parallel()

	_, err := Connect(t.Context(), "not a dsn at all")

	require.Error(t, err)
	require.Contains(t, err.Error(), "cant initialize connection pool", "pool errors should carry context")
}
