package sqlite_test

import (
	"context"
	"testing"

	"github.com/pricelens/pricewatch"
	"github.com/pricelens/pricewatch/sqlite"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestCompetitor inserts a competitor and returns it.
func createTestCompetitor(t *testing.T, db *sqlite.DB, name string) *pricewatch.Competitor {
	t.Helper()
	svc := sqlite.NewCompetitorService(db)
	c := &pricewatch.Competitor{
		Name:       name,
		PricingURL: "https://" + name + ".test/pricing",
	}
	require.NoError(t, svc.CreateCompetitor(context.Background(), c))
	return c
}
