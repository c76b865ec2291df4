package repositories_test

import (
	"context"
	"github.com/myrjola/interviewprep/internal/sqlite"
	"github.com/myrjola/interviewprep/internal/testhelpers"
	"testing"
)

// newTestDB creates a new in-memory database for testing purposes.
func newTestDB(t *testing.T) *sqlite.Database {
	t.Helper()
	dbs, err := sqlite.NewDatabase(context.Background(), ":memory:", testhelpers.NewTestLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err = dbs.Close(); err != nil {
			t.Fatal(err)
		}
	})
	return dbs
}
