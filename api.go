package mooglife

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mooglife/mooglife/common"
	"github.com/mooglife/mooglife/schema"
	"gorm.io/gorm"
)

const (
	statsSummaryCacheKey = "stats_summary"
)

// history/summary are pro-and-above features; tiers outside the table reject
// outright instead of clamping
var historyRowCaps = map[string]int{
	schema.TierPro:      1000,
	schema.TierInternal: 5000,
	"default":           0,
}

func (m *Mooglife) runAPI(port string) {
	m.registerRoutes()
	if err := m.engine.Run(port); err != nil {
		panic(err)
	}
}

func (m *Mooglife) registerRoutes() {
	r := m.engine
	r.Use(common.CORSMiddleware())

	v1 := r.Group("/")
	v1.Use(common.LimiterMiddleware(600, "M", m.config.GetIPWhiteList))
	v1.Use(m.GateMiddleware())
	{
		v1.GET("/info", m.getInfo)

		v1.GET("/holders", m.getHolders)
		v1.GET("/holder/:address", m.getHolder)

		v1.GET("/transactions", m.getTransactions)
		v1.GET("/transaction/:sig", m.getTransaction)

		v1.GET("/airdrops", m.getAirdrops)
		v1.GET("/rewards", m.getRewards)
		v1.GET("/reward/:address", m.getRewardsByAddress)

		v1.GET("/market", m.getMarket)
		v1.GET("/market/history", m.getMarketHistory)
		v1.GET("/stats/summary", m.getStatsSummary)
	}

	admin := r.Group("/admin")
	admin.Use(m.GateMiddleware(), m.InternalOnlyMiddleware())
	{
		admin.POST("/apikey", m.createApiKey)
		admin.GET("/apikeys", m.listApiKeys)
		admin.POST("/apikey/:id/disable", m.disableApiKey)
		admin.POST("/apikey/:id/enable", m.enableApiKey)
		admin.POST("/airdrops", m.createAirdrops)
	}
}

func (m *Mooglife) getInfo(c *gin.Context) {
	c.JSON(http.StatusOK, schema.RespData{Ok: true, Data: m.cache.GetInfo()})
}

func (m *Mooglife) getHolders(c *gin.Context) {
	auth := authFrom(c)
	num, cursor, ok := listParams(c, 50)
	if !ok {
		return
	}
	num, rej := CapLimit(num, auth.Tier, m.gate.RowCaps(), false)
	if rej != nil {
		rejectionResponse(c, rej)
		return
	}
	holders, err := m.wdb.GetHolders(cursor, num)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	next := int64(0)
	if len(holders) == num {
		next = int64(holders[len(holders)-1].ID)
	}
	c.JSON(http.StatusOK, schema.RespList{Ok: true, Total: len(holders), Limit: num, Cursor: next, Data: holders})
}

func (m *Mooglife) getHolder(c *gin.Context) {
	address := c.Param("address")
	holder, err := m.wdb.GetHolder(address)
	if err == gorm.ErrRecordNotFound {
		notFoundResponse(c)
		return
	}
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespData{Ok: true, Data: holder})
}

func (m *Mooglife) getTransactions(c *gin.Context) {
	auth := authFrom(c)
	num, cursor, ok := listParams(c, 50)
	if !ok {
		return
	}
	side := c.Query("side")
	if side != "" && side != schema.SwapSideBuy && side != schema.SwapSideSell {
		errorResponse(c, "invalid_side")
		return
	}
	num, rej := CapLimit(num, auth.Tier, m.gate.RowCaps(), false)
	if rej != nil {
		rejectionResponse(c, rej)
		return
	}
	txs, err := m.wdb.GetSwaps(cursor, num, side)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	next := int64(0)
	if len(txs) == num {
		next = int64(txs[len(txs)-1].ID)
	}
	c.JSON(http.StatusOK, schema.RespList{Ok: true, Total: len(txs), Limit: num, Cursor: next, Data: txs})
}

func (m *Mooglife) getTransaction(c *gin.Context) {
	sig := c.Param("sig")
	tx, err := m.wdb.GetSwapBySig(sig)
	if err == gorm.ErrRecordNotFound {
		notFoundResponse(c)
		return
	}
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespData{Ok: true, Data: tx})
}

func (m *Mooglife) getAirdrops(c *gin.Context) {
	auth := authFrom(c)
	num, _, ok := listParams(c, 50)
	if !ok {
		return
	}
	round, err := strconv.Atoi(c.DefaultQuery("round", "0"))
	if err != nil {
		errorResponse(c, "invalid_round")
		return
	}
	num, rej := CapLimit(num, auth.Tier, m.gate.RowCaps(), false)
	if rej != nil {
		rejectionResponse(c, rej)
		return
	}
	drops, err := m.wdb.GetAirdrops(c.Query("recipient"), round, num)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespList{Ok: true, Total: len(drops), Limit: num, Data: drops})
}

func (m *Mooglife) getRewards(c *gin.Context) {
	auth := authFrom(c)
	num, _, ok := listParams(c, 50)
	if !ok {
		return
	}
	round, err := strconv.Atoi(c.DefaultQuery("round", "0"))
	if err != nil {
		errorResponse(c, "invalid_round")
		return
	}
	num, rej := CapLimit(num, auth.Tier, m.gate.RowCaps(), false)
	if rej != nil {
		rejectionResponse(c, rej)
		return
	}
	rewards, err := m.wdb.GetOgRewards(round, num)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespList{Ok: true, Total: len(rewards), Limit: num, Data: rewards})
}

func (m *Mooglife) getRewardsByAddress(c *gin.Context) {
	rewards, err := m.wdb.GetOgRewardsByAddress(c.Param("address"))
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespList{Ok: true, Total: len(rewards), Limit: len(rewards), Data: rewards})
}

func (m *Mooglife) getMarket(c *gin.Context) {
	sp, err := m.wdb.GetLatestSnapshot(c.Query("source"))
	if err == gorm.ErrRecordNotFound {
		notFoundResponse(c)
		return
	}
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespData{Ok: true, Data: sp})
}

func (m *Mooglife) getMarketHistory(c *gin.Context) {
	auth := authFrom(c)
	num, _, ok := listParams(c, 100)
	if !ok {
		return
	}
	num, rej := CapLimit(num, auth.Tier, historyRowCaps, true)
	if rej != nil {
		rejectionResponse(c, rej)
		return
	}
	sps, err := m.wdb.GetSnapshots(num)
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespList{Ok: true, Total: len(sps), Limit: num, Data: sps})
}

func (m *Mooglife) getStatsSummary(c *gin.Context) {
	auth := authFrom(c)
	if _, rej := CapLimit(1, auth.Tier, historyRowCaps, true); rej != nil {
		rejectionResponse(c, rej)
		return
	}

	if by, err := m.localCache.Cache.Get(statsSummaryCacheKey); err == nil {
		summary := schema.RespStatsSummary{}
		if err = json.Unmarshal(by, &summary); err == nil {
			c.JSON(http.StatusOK, schema.RespData{Ok: true, Data: summary})
			return
		}
	}

	summary, err := m.buildStatsSummary()
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	if by, err := json.Marshal(summary); err == nil {
		if err = m.localCache.Cache.Set(statsSummaryCacheKey, by); err != nil {
			log.Error("set stats summary cache", "err", err)
		}
	}
	c.JSON(http.StatusOK, schema.RespData{Ok: true, Data: summary})
}

func (m *Mooglife) buildStatsSummary() (schema.RespStatsSummary, error) {
	summary := schema.RespStatsSummary{}
	var err error
	if summary.HolderCount, err = m.wdb.CountHolders(); err != nil {
		return summary, err
	}
	if summary.OgHolderCount, err = m.wdb.CountOgHolders(); err != nil {
		return summary, err
	}
	if summary.Top10Percent, err = m.wdb.Top10Percent(); err != nil {
		return summary, err
	}
	since := time.Now().Add(-24 * time.Hour).Unix()
	if summary.BuyCount24h, err = m.wdb.CountSwapsSince(schema.SwapSideBuy, since); err != nil {
		return summary, err
	}
	if summary.SellCount24h, err = m.wdb.CountSwapsSince(schema.SwapSideSell, since); err != nil {
		return summary, err
	}
	if summary.VolumeUsd24h, err = m.wdb.SumSwapVolumeSince(since); err != nil {
		return summary, err
	}
	summary.PriceUsd = m.cache.GetInfo().PriceUsd
	return summary, nil
}

func listParams(c *gin.Context, defNum int) (num int, cursor int64, ok bool) {
	num, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defNum)))
	if err != nil || num <= 0 {
		errorResponse(c, "invalid_limit")
		return 0, 0, false
	}
	cursor, err = strconv.ParseInt(c.DefaultQuery("cursor", "0"), 10, 64)
	if err != nil || cursor < 0 {
		errorResponse(c, "invalid_cursor")
		return 0, 0, false
	}
	return num, cursor, true
}

func errorResponse(c *gin.Context, err string) {
	// client error
	c.JSON(http.StatusBadRequest, schema.RespErr{Err: err})
}

func notFoundResponse(c *gin.Context) {
	c.JSON(http.StatusNotFound, schema.RespErr{Err: schema.ErrNotFound.Error()})
}

func internalErrorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, schema.RespErr{Err: err})
}
