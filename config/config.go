package config

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/mooglife/mooglife/config/schema"
)

type Config struct {
	wdb       *Wdb
	scheduler *gocron.Scheduler

	lock        sync.RWMutex
	tierLimits  map[string]int64
	rowCaps     map[string]int
	ipWhiteList map[string]struct{}
	param       schema.Param
}

func New(dsn string, sqliteDir string, useSqlite bool) *Config {
	wdb := NewWdb(dsn, sqliteDir, useSqlite)
	err := wdb.Migrate()
	if err != nil {
		panic(err)
	}
	param, err := wdb.GetParam()
	if err != nil {
		panic(err)
	}
	c := &Config{
		wdb:         wdb,
		scheduler:   gocron.NewScheduler(time.UTC),
		tierLimits:  make(map[string]int64),
		rowCaps:     make(map[string]int),
		ipWhiteList: make(map[string]struct{}),
		param:       param,
	}
	c.updateTierQuotas()
	c.updateIPWhiteList()
	return c
}

// TierDailyLimit returns the configured daily quota for a tier; ok is false
// when no row covers it and the caller should use the compiled default.
func (c *Config) TierDailyLimit(tier string) (int64, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	limit, ok := c.tierLimits[tier]
	return limit, ok
}

func (c *Config) RowCaps() map[string]int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	caps := make(map[string]int, len(c.rowCaps))
	for tier, rows := range c.rowCaps {
		caps[tier] = rows
	}
	return caps
}

// GetIPWhiteList returns a copy; the reload job swaps the underlying map
// concurrently, so the shared reference must never escape the lock.
func (c *Config) GetIPWhiteList() map[string]struct{} {
	if c == nil {
		return nil
	}
	c.lock.RLock()
	defer c.lock.RUnlock()
	list := make(map[string]struct{}, len(c.ipWhiteList))
	for ip := range c.ipWhiteList {
		list[ip] = struct{}{}
	}
	return list
}

func (c *Config) GetParam() schema.Param {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.param
}

func (c *Config) Run() {
	go c.runJobs()
}

func (c *Config) Close() {
	c.wdb.Close()
}
