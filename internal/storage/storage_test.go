package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db))

	var version int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&version))
	assert.Equal(t, SchemaVersion, version)
}

func TestResolveDBPathHonoursEnv(t *testing.T) {
	t.Setenv("CHRONOFORGE_DB_PATH", "/tmp/cf-test.db")
	p, err := ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cf-test.db", p)
}

func TestContractRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewContractRepo(db)

	c, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)

	require.NoError(t, repo.Insert(ctx, "0xowner", 1700000000))
	c, err = repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, int64(0), c.NextTokenID)
	assert.Equal(t, int64(0), c.Treasury)

	c.Treasury = 2_000_000
	c.NextTokenID = 3
	c.TotalMinted = 3
	c.TotalEvolved = 1
	require.NoError(t, repo.Update(ctx, c))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, *c, *got)

	assert.Error(t, repo.Insert(ctx, "0xother", 1700000001), "second deployment row must be rejected")
}

func TestTokenRepo(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewTokenRepo(db)

	tok := Token{ID: 0, Owner: "0xa", EnergyLevel: 100, Purity: 100, CoreElement: 2, LastEnergized: 10, CreationTime: 10}
	require.NoError(t, repo.Insert(ctx, tok))
	require.NoError(t, repo.Insert(ctx, Token{ID: 1, Owner: "0xb", EnergyLevel: 100, Purity: 100, CoreElement: 1}))
	require.NoError(t, repo.Insert(ctx, Token{ID: 2, Owner: "0xa", EnergyLevel: 100, Purity: 100, CoreElement: 3}))

	got, err := repo.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, tok, *got)

	got.EnergyLevel = 550
	got.Evolved = true
	got.Generation = 1
	got.CurrentStreak = 8
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, *got, *again)

	owned, err := repo.ListByOwner(ctx, "0xa")
	require.NoError(t, err)
	require.Len(t, owned, 2)
	assert.Equal(t, int64(0), owned[0].ID)
	assert.Equal(t, int64(2), owned[1].ID)

	n, err := repo.CountByOwner(ctx, "0xa")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, repo.Delete(ctx, 0))
	missing, err := repo.Get(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, missing)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestPurityCheckConstraint(t *testing.T) {
	db := openTestDB(t)
	err := NewTokenRepo(db).Insert(context.Background(), Token{ID: 7, Owner: "0xa", Purity: 101})
	assert.Error(t, err)
}

func TestTraitRepoOrderAndCascade(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tokens := NewTokenRepo(db)
	traits := NewTraitRepo(db)

	require.NoError(t, tokens.Insert(ctx, Token{ID: 0, Owner: "0xa", Purity: 100}))
	for _, name := range []string{"A", "B", "C", "D"} {
		_, err := traits.Append(ctx, 0, name, "0xp", 1)
		require.NoError(t, err)
	}

	second, err := traits.At(ctx, 0, 1)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "B", second.Trait)
	require.NoError(t, traits.Delete(ctx, second.ID))

	page, err := traits.Page(ctx, 0, 0, 10)
	require.NoError(t, err)
	names := make([]string, 0, len(page))
	for _, tr := range page {
		names = append(names, tr.Trait)
	}
	assert.Equal(t, []string{"A", "C", "D"}, names)

	past, err := traits.At(ctx, 0, 3)
	require.NoError(t, err)
	assert.Nil(t, past)

	require.NoError(t, tokens.Delete(ctx, 0))
	n, err := traits.Count(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n, "traits must be removed with their token")
}

func TestPartnerUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewPartnerRepo(db)

	p, err := repo.Get(ctx, "0xp")
	require.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, repo.Upsert(ctx, Partner{Address: "0xp", Whitelisted: true, UpdatedAt: 1}))
	require.NoError(t, repo.Upsert(ctx, Partner{Address: "0xq", Whitelisted: true, UpdatedAt: 1}))
	require.NoError(t, repo.Upsert(ctx, Partner{Address: "0xq", Whitelisted: false, UpdatedAt: 2}))

	list, err := repo.ListWhitelisted(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "0xp", list[0].Address)

	q, err := repo.Get(ctx, "0xq")
	require.NoError(t, err)
	assert.False(t, q.Whitelisted)
	assert.Equal(t, int64(2), q.UpdatedAt)
}

func TestEventRepoListAfter(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewEventRepo(db)

	id := int64(4)
	first, err := repo.Append(ctx, "Deployed", nil, `{"owner":"0xa"}`, 1)
	require.NoError(t, err)
	_, err = repo.Append(ctx, "Energized", &id, `{"token_id":4}`, 2)
	require.NoError(t, err)

	all, err := repo.ListAfter(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Nil(t, all[0].TokenID)
	require.NotNil(t, all[1].TokenID)
	assert.Equal(t, int64(4), *all[1].TokenID)

	tail, err := repo.ListAfter(ctx, first, 10)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "Energized", tail[0].Kind)
}

func TestWithTxRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, db, func(tx *sql.Tx) error {
		if err := NewTokenRepo(tx).Insert(ctx, Token{ID: 9, Owner: "0xa", Purity: 100}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := NewTokenRepo(db).Get(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, got)
}
