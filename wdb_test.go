package mooglife

import (
	"testing"
	"time"

	"github.com/mooglife/mooglife/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTouchApiKeyUsage(t *testing.T) {
	wdb := newTestWdb(t)
	key := seedKey(t, wdb, &schema.ApiKey{Token: "ml_touch", Tier: schema.TierFree})

	day := today()
	ok, err := wdb.TouchApiKeyUsage(key.ID, day, 10)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := wdb.GetApiKeyByToken("ml_touch")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.RequestsToday)
	assert.Equal(t, day, stored.DayWindowStart)

	// rollover: a different stored date restarts the counter at 1
	require.NoError(t, wdb.Db.Model(&schema.ApiKey{}).Where("id = ?", key.ID).
		Updates(map[string]interface{}{"requests_today": 500, "day_window_start": "2020-01-01"}).Error)
	ok, err = wdb.TouchApiKeyUsage(key.ID, day, 10)
	require.NoError(t, err)
	assert.True(t, ok)
	stored, err = wdb.GetApiKeyByToken("ml_touch")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.RequestsToday)

	// the guard refuses to advance a key sitting at its limit
	require.NoError(t, wdb.Db.Model(&schema.ApiKey{}).Where("id = ?", key.ID).
		Update("requests_today", 10).Error)
	ok, err = wdb.TouchApiKeyUsage(key.ID, day, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	// unlimited ignores the guard
	ok, err = wdb.TouchApiKeyUsage(key.ID, day, schema.UnlimitedDaily)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpsertHolders(t *testing.T) {
	wdb := newTestWdb(t)
	first := []schema.Holder{
		{Address: "moog1", Balance: decimal.NewFromInt(1000), Percent: 10, Rank: 1, FirstSeenAt: time.Now()},
		{Address: "moog2", Balance: decimal.NewFromInt(500), Percent: 5, Rank: 2, FirstSeenAt: time.Now()},
	}
	require.NoError(t, wdb.UpsertHolders(first))

	// re-sync updates balances in place, no duplicate rows
	second := []schema.Holder{
		{Address: "moog1", Balance: decimal.NewFromInt(1200), Percent: 12, Rank: 1, FirstSeenAt: time.Now()},
	}
	require.NoError(t, wdb.UpsertHolders(second))

	total, err := wdb.CountHolders()
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	h, err := wdb.GetHolder("moog1")
	require.NoError(t, err)
	assert.True(t, h.Balance.Equal(decimal.NewFromInt(1200)))
}

func TestGetHoldersPagination(t *testing.T) {
	wdb := newTestWdb(t)
	// insertion order (ids) deliberately diverges from rank order
	holders := []schema.Holder{
		{Address: "minnow", Balance: decimal.NewFromInt(10), Rank: 3, FirstSeenAt: time.Now()},
		{Address: "whale", Balance: decimal.NewFromInt(9000), Rank: 1, FirstSeenAt: time.Now()},
		{Address: "shark", Balance: decimal.NewFromInt(4000), Rank: 2, FirstSeenAt: time.Now()},
	}
	require.NoError(t, wdb.UpsertHolders(holders))

	// walking the id cursor reaches every holder exactly once
	seen := map[string]bool{}
	cursor := int64(0)
	for {
		page, err := wdb.GetHolders(cursor, 2)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, h := range page {
			assert.False(t, seen[h.Address])
			seen[h.Address] = true
		}
		cursor = int64(page[len(page)-1].ID)
	}
	assert.Len(t, seen, 3)
}

func TestRefreshHolderPercents(t *testing.T) {
	wdb := newTestWdb(t)

	// empty table is a no-op
	require.NoError(t, wdb.RefreshHolderPercents())

	// straight through the upstream parse, the way the sync job runs
	body := `{"data": {"items": [
		{"owner": "w1", "ui_amount": 750},
		{"owner": "w2", "ui_amount": 250}
	]}}`
	holders, err := ParseBirdeyeHolders([]byte(body), 0)
	require.NoError(t, err)
	require.NoError(t, wdb.UpsertHolders(holders))
	require.NoError(t, wdb.RefreshHolderPercents())

	h, err := wdb.GetHolder("w1")
	require.NoError(t, err)
	assert.InDelta(t, 75.0, h.Percent, 0.001)

	top, err := wdb.Top10Percent()
	require.NoError(t, err)
	assert.InDelta(t, 100.0, top, 0.001)
}

func TestSwapQueries(t *testing.T) {
	wdb := newTestWdb(t)

	latest, err := wdb.LatestSwapBlockTime()
	require.NoError(t, err)
	assert.Equal(t, int64(0), latest)

	now := time.Now().Unix()
	txs := []schema.SwapTx{
		{Sig: "sig1", BlockTime: now - 100, Side: schema.SwapSideBuy, AmountUsd: 10, Source: schema.SourceBirdeye},
		{Sig: "sig2", BlockTime: now - 50, Side: schema.SwapSideSell, AmountUsd: 20, Source: schema.SourceBirdeye},
		{Sig: "sig3", BlockTime: now - 10, Side: schema.SwapSideBuy, AmountUsd: 30, Source: schema.SourceBirdeye},
	}
	require.NoError(t, wdb.InsertSwaps(txs))
	// duplicate sigs are ignored
	require.NoError(t, wdb.InsertSwaps(txs))

	latest, err = wdb.LatestSwapBlockTime()
	require.NoError(t, err)
	assert.Equal(t, now-10, latest)

	buys, err := wdb.CountSwapsSince(schema.SwapSideBuy, now-3600)
	require.NoError(t, err)
	assert.Equal(t, int64(2), buys)

	vol, err := wdb.SumSwapVolumeSince(now - 3600)
	require.NoError(t, err)
	assert.Equal(t, float64(60), vol)

	page, err := wdb.GetSwaps(0, 2, "")
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "sig3", page[0].Sig)

	next, err := wdb.GetSwaps(int64(page[1].ID), 2, "")
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, "sig1", next[0].Sig)
}

func TestOgRewardRounds(t *testing.T) {
	wdb := newTestWdb(t)

	round, _, err := wdb.LatestRewardRound()
	require.NoError(t, err)
	assert.Equal(t, 0, round)

	rewards := []schema.OgReward{
		{Address: "moog1", Round: 1, Amount: decimal.NewFromInt(500), Status: schema.RewardPending},
		{Address: "moog2", Round: 1, Amount: decimal.NewFromInt(500), Status: schema.RewardPending},
	}
	require.NoError(t, wdb.InsertOgRewards(rewards))
	// address+round is unique, a re-run is a no-op
	require.NoError(t, wdb.InsertOgRewards(rewards))

	got, err := wdb.GetOgRewards(1, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	round, _, err = wdb.LatestRewardRound()
	require.NoError(t, err)
	assert.Equal(t, 1, round)

	byAddr, err := wdb.GetOgRewardsByAddress("moog1")
	require.NoError(t, err)
	require.Len(t, byAddr, 1)
	assert.Equal(t, schema.RewardPending, byAddr[0].Status)
}

func TestSnapshots(t *testing.T) {
	wdb := newTestWdb(t)
	require.NoError(t, wdb.InsertSnapshot(&schema.MarketSnapshot{Source: schema.SourceDexScreener, PriceUsd: 0.01}))
	require.NoError(t, wdb.InsertSnapshot(&schema.MarketSnapshot{Source: schema.SourceBirdeye, PriceUsd: 0.011}))

	sp, err := wdb.GetLatestSnapshot("")
	require.NoError(t, err)
	assert.Equal(t, schema.SourceBirdeye, sp.Source)

	sp, err = wdb.GetLatestSnapshot(schema.SourceDexScreener)
	require.NoError(t, err)
	assert.Equal(t, 0.01, sp.PriceUsd)

	sps, err := wdb.GetSnapshots(10)
	require.NoError(t, err)
	assert.Len(t, sps, 2)
}

func TestMarkOgHolders(t *testing.T) {
	wdb := newTestWdb(t)
	old := time.Now().Add(-48 * time.Hour)
	holders := []schema.Holder{
		{Address: "early-whale", Balance: decimal.NewFromInt(20000), Rank: 1, FirstSeenAt: old},
		{Address: "early-shrimp", Balance: decimal.NewFromInt(10), Rank: 3, FirstSeenAt: old},
		{Address: "late-whale", Balance: decimal.NewFromInt(30000), Rank: 2, FirstSeenAt: time.Now().Add(time.Hour)},
	}
	require.NoError(t, wdb.UpsertHolders(holders))

	marked, err := wdb.MarkOgHolders(decimal.NewFromInt(10000), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	ogs, err := wdb.GetOgHolders()
	require.NoError(t, err)
	require.Len(t, ogs, 1)
	assert.Equal(t, "early-whale", ogs[0].Address)
}
