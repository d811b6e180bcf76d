//go:build integration

package repository

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: go test -tags integration ./internal/repository
// against a database created by cmd/seeder (TEST_DATABASE_URL).

func TestConcurrentClaimSingleWinner(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Ping())

	var leadID int
	err = db.QueryRow(`
        INSERT INTO leads (full_name, email, preferred_channel)
        VALUES ('Claim Race', 'claim.race@test.invalid', 'email')
        RETURNING id
    `).Scan(&leadID)
	require.NoError(t, err)
	defer db.Exec(`DELETE FROM messages WHERE lead_id = $1`, leadID)
	defer db.Exec(`DELETE FROM leads WHERE id = $1`, leadID)

	repo := &LeadRepository{DB: db}

	const claimers = 8
	var wg sync.WaitGroup
	claims := make([]*ClaimedLead, claimers)
	errs := make([]error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			claims[i], errs[i] = repo.ClaimNew(context.Background())
		}(i)
	}
	wg.Wait()

	// All claims stay open until every claimer has run, so SKIP LOCKED is
	// what keeps the row from being handed out twice.
	winners := 0
	for i := 0; i < claimers; i++ {
		require.NoError(t, errs[i])
		if claims[i] != nil && claims[i].Lead().ID == leadID {
			winners++
		}
	}
	assert.Equal(t, 1, winners, "exactly one claimer may hold the lead")

	for _, c := range claims {
		if c != nil {
			require.NoError(t, c.Release())
		}
	}

	// Released rows are claimable again.
	reclaim, err := repo.ClaimNew(context.Background())
	require.NoError(t, err)
	require.NotNil(t, reclaim)
	require.NoError(t, reclaim.Release())
}
