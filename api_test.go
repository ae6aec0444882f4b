package mooglife

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mooglife/mooglife/cache"
	"github.com/mooglife/mooglife/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, keyRequired bool) *Mooglife {
	t.Helper()
	gin.SetMode(gin.TestMode)
	wdb := newTestWdb(t)
	localCache, err := cache.NewLocalCache(time.Minute)
	require.NoError(t, err)
	m := &Mooglife{
		engine:      gin.New(),
		wdb:         wdb,
		gate:        NewGate(wdb, nil),
		cache:       NewCache("MOOG", "MoogMint1111", "MoogPair1111"),
		localCache:  localCache,
		TokenSymbol: "MOOG",
		KeyRequired: keyRequired,
	}
	m.registerRoutes()
	return m
}

func doGet(m *Mooglife, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set(ApiKeyHeader, token)
	}
	w := httptest.NewRecorder()
	m.engine.ServeHTTP(w, req)
	return w
}

func doPost(m *Mooglife, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(ApiKeyHeader, token)
	}
	w := httptest.NewRecorder()
	m.engine.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) schema.RespErr {
	t.Helper()
	resp := schema.RespErr{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAnonymousOpenAccess(t *testing.T) {
	m := newTestApp(t, false)
	w := doGet(m, "/info", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
}

func TestKeyRequiredRejectsAnonymous(t *testing.T) {
	m := newTestApp(t, true)
	w := doGet(m, "/holders", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeErr(t, w)
	assert.False(t, resp.Ok)
	assert.Equal(t, schema.ErrKeyNotFound.Error(), resp.Err)
	assert.Equal(t, RejectUnauthorized, resp.Meta["kind"])
}

func TestDisabledKeyRejected(t *testing.T) {
	m := newTestApp(t, false)
	seedKey(t, m.wdb, &schema.ApiKey{Token: "ml_off", Tier: schema.TierPro, Status: schema.KeyStatusDisabled})

	w := doGet(m, "/holders", "ml_off")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, schema.ErrKeyDisabled.Error(), decodeErr(t, w).Err)
}

func TestIPAllowListRejected(t *testing.T) {
	m := newTestApp(t, false)
	seedKey(t, m.wdb, &schema.ApiKey{Token: "ml_pinned", Tier: schema.TierPro, AllowedIPs: "10.9.8.7"})

	// httptest requests come from 192.0.2.1
	w := doGet(m, "/holders", "ml_pinned")
	require.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeErr(t, w)
	assert.Equal(t, schema.ErrIPNotAllowed.Error(), resp.Err)
	assert.Equal(t, RejectForbidden, resp.Meta["kind"])
}

func TestQuotaExhaustionOverHTTP(t *testing.T) {
	m := newTestApp(t, false)
	two := int64(2)
	seedKey(t, m.wdb, &schema.ApiKey{Token: "ml_tiny", Tier: schema.TierFree, DailyLimit: &two})

	assert.Equal(t, http.StatusOK, doGet(m, "/info", "ml_tiny").Code)
	assert.Equal(t, http.StatusOK, doGet(m, "/info", "ml_tiny").Code)

	w := doGet(m, "/info", "ml_tiny")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	resp := decodeErr(t, w)
	assert.Equal(t, schema.ErrQuotaExceeded.Error(), resp.Err)
	assert.Equal(t, RejectQuotaExceeded, resp.Meta["kind"])
	assert.Equal(t, float64(2), resp.Meta["limit"])
}

func TestListRowCapClamped(t *testing.T) {
	m := newTestApp(t, false)
	seedKey(t, m.wdb, &schema.ApiKey{Token: "ml_free", Tier: schema.TierFree})

	holders := make([]schema.Holder, 0, 250)
	for i := 0; i < 250; i++ {
		holders = append(holders, schema.Holder{
			Address: fmt.Sprintf("addr-%03d", i), Balance: decimal.NewFromInt(int64(i)), Rank: i + 1,
		})
	}
	require.NoError(t, m.wdb.UpsertHolders(holders))

	w := doGet(m, "/holders?limit=9999", "ml_free")
	require.Equal(t, http.StatusOK, w.Code)
	resp := schema.RespList{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, schema.FreeRowCap, resp.Limit)
	assert.Equal(t, schema.FreeRowCap, resp.Total)
}

func TestMarketHistoryTierGated(t *testing.T) {
	m := newTestApp(t, false)
	seedKey(t, m.wdb, &schema.ApiKey{Token: "ml_free", Tier: schema.TierFree})
	seedKey(t, m.wdb, &schema.ApiKey{Token: "ml_pro", Tier: schema.TierPro})
	require.NoError(t, m.wdb.InsertSnapshot(&schema.MarketSnapshot{Source: schema.SourceDexScreener, PriceUsd: 0.02}))

	w := doGet(m, "/market/history", "ml_free")
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	resp := decodeErr(t, w)
	assert.Equal(t, schema.ErrTierTooLow.Error(), resp.Err)
	assert.Equal(t, RejectTierTooLow, resp.Meta["kind"])

	w = doGet(m, "/market/history", "ml_pro")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok":true`)
}

func TestGetHolderNotFound(t *testing.T) {
	m := newTestApp(t, false)
	w := doGet(m, "/holder/nobody", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, schema.ErrNotFound.Error(), decodeErr(t, w).Err)
}

func TestTransactionsBadParams(t *testing.T) {
	m := newTestApp(t, false)
	assert.Equal(t, http.StatusBadRequest, doGet(m, "/transactions?limit=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, doGet(m, "/transactions?side=hold", "").Code)
	assert.Equal(t, http.StatusBadRequest, doGet(m, "/transactions?cursor=-5", "").Code)
}

func TestStatsSummaryCaches(t *testing.T) {
	m := newTestApp(t, false)
	seedKey(t, m.wdb, &schema.ApiKey{Token: "ml_pro", Tier: schema.TierPro})
	require.NoError(t, m.wdb.UpsertHolders([]schema.Holder{
		{Address: "a", Balance: decimal.NewFromInt(10), Percent: 60, Rank: 1},
		{Address: "b", Balance: decimal.NewFromInt(5), Percent: 40, Rank: 2},
	}))

	w := doGet(m, "/stats/summary", "ml_pro")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"holderCount":2`)

	// the first response is cached; later writes are not visible yet
	require.NoError(t, m.wdb.UpsertHolders([]schema.Holder{
		{Address: "c", Balance: decimal.NewFromInt(1), Rank: 3},
	}))
	w = doGet(m, "/stats/summary", "ml_pro")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"holderCount":2`)

	// free keys have no access to the summary
	seedKey(t, m.wdb, &schema.ApiKey{Token: "ml_free", Tier: schema.TierFree})
	assert.Equal(t, http.StatusPaymentRequired, doGet(m, "/stats/summary", "ml_free").Code)
}

func TestAdminLifecycle(t *testing.T) {
	m := newTestApp(t, false)
	seedKey(t, m.wdb, &schema.ApiKey{Token: "ml_root", Tier: schema.TierInternal})
	seedKey(t, m.wdb, &schema.ApiKey{Token: "ml_pro", Tier: schema.TierPro})

	// anonymous and non-internal callers never reach the admin handlers
	assert.Equal(t, http.StatusUnauthorized, doGet(m, "/admin/apikeys", "").Code)
	assert.Equal(t, http.StatusPaymentRequired, doGet(m, "/admin/apikeys", "ml_pro").Code)

	w := doPost(m, "/admin/apikey", "ml_root", `{"label":"partner","tier":"pro"}`)
	require.Equal(t, http.StatusOK, w.Code)
	created := struct {
		Ok   bool                 `json:"ok"`
		Data schema.RespNewApiKey `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, strings.HasPrefix(created.Data.Token, "ml_"))
	assert.Equal(t, schema.TierPro, created.Data.Tier)

	// the minted token works immediately
	assert.Equal(t, http.StatusOK, doGet(m, "/info", created.Data.Token).Code)

	w = doGet(m, "/admin/apikeys", "ml_root")
	require.Equal(t, http.StatusOK, w.Code)
	list := schema.RespList{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 3, list.Total)
	// raw tokens never appear in listings
	assert.NotContains(t, w.Body.String(), created.Data.Token)

	w = doPost(m, fmt.Sprintf("/admin/apikey/%d/disable", created.Data.ID), "ml_root", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(m, "/info", created.Data.Token).Code)

	w = doPost(m, fmt.Sprintf("/admin/apikey/%d/enable", created.Data.ID), "ml_root", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusOK, doGet(m, "/info", created.Data.Token).Code)

	assert.Equal(t, http.StatusBadRequest, doPost(m, "/admin/apikey", "ml_root", `{"tier":"vip"}`).Code)
}

func TestAdminAirdrops(t *testing.T) {
	m := newTestApp(t, false)
	seedKey(t, m.wdb, &schema.ApiKey{Token: "ml_root", Tier: schema.TierInternal})
	seedKey(t, m.wdb, &schema.ApiKey{Token: "ml_pro", Tier: schema.TierPro})

	body := `{"round": 1, "drops": [
		{"recipient": "moog1", "amount": "500"},
		{"recipient": "moog2", "amount": "250.5"}
	]}`
	assert.Equal(t, http.StatusPaymentRequired, doPost(m, "/admin/airdrops", "ml_pro", body).Code)

	w := doPost(m, "/admin/airdrops", "ml_root", body)
	require.Equal(t, http.StatusOK, w.Code)

	// recorded rounds show up on the public read side
	w = doGet(m, "/airdrops?round=1", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := schema.RespList{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Total)

	drops, err := m.wdb.GetAirdrops("moog2", 1, 10)
	require.NoError(t, err)
	require.Len(t, drops, 1)
	assert.Equal(t, schema.RewardPending, drops[0].Status)
	assert.True(t, drops[0].Amount.Equal(decimal.RequireFromString("250.5")))

	assert.Equal(t, http.StatusBadRequest,
		doPost(m, "/admin/airdrops", "ml_root", `{"round": 0, "drops": [{"recipient": "x", "amount": "1"}]}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		doPost(m, "/admin/airdrops", "ml_root", `{"round": 2, "drops": []}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		doPost(m, "/admin/airdrops", "ml_root", `{"round": 2, "drops": [{"recipient": "x", "amount": "-1"}]}`).Code)
}
