package mooglife

import (
	"sync"

	"github.com/mooglife/mooglife/schema"
)

// Cache holds the most recent market state so /info style reads never touch
// the database.
type Cache struct {
	lock sync.RWMutex
	info schema.RespTokenInfo
}

func NewCache(symbol, mint, pairAddress string) *Cache {
	return &Cache{
		info: schema.RespTokenInfo{
			Symbol:      symbol,
			Mint:        mint,
			PairAddress: pairAddress,
		},
	}
}

func (c *Cache) GetInfo() schema.RespTokenInfo {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.info
}

func (c *Cache) UpdateMarket(sp *schema.MarketSnapshot) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.info.PriceUsd = sp.PriceUsd
	c.info.LiquidityUsd = sp.LiquidityUsd
	c.info.Volume24h = sp.Volume24h
	c.info.MarketCap = sp.MarketCap
	c.info.UpdatedAt = sp.CreatedAt.Unix()
	if sp.PairAddress != "" {
		c.info.PairAddress = sp.PairAddress
	}
}
