package mooglife

import (
	"fmt"

	"github.com/mooglife/mooglife/schema"
	"github.com/tidwall/gjson"
	"gopkg.in/h2non/gentleman.v2"
	"gorm.io/datatypes"
)

const defaultDexScreenerUrl = "https://api.dexscreener.com"

type DexScreenerCli struct {
	cli *gentleman.Client
}

func NewDexScreenerCli(dexUrl string) *DexScreenerCli {
	if dexUrl == "" {
		dexUrl = defaultDexScreenerUrl
	}
	return &DexScreenerCli{
		cli: gentleman.New().URL(dexUrl),
	}
}

func (d *DexScreenerCli) GetPair(chain, pairAddress string) (*schema.MarketSnapshot, error) {
	if pairAddress == "" {
		return nil, schema.ErrNullPairAddr
	}
	req := d.cli.Get()
	req.AddPath(fmt.Sprintf("/latest/dex/pairs/%s/%s", chain, pairAddress))
	resp, err := req.Send()
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	if !resp.Ok {
		return nil, fmt.Errorf("%w: dexscreener status %d", schema.ErrUpstreamStatus, resp.StatusCode)
	}
	return ParseDexScreenerPair(resp.Bytes())
}

// ParseDexScreenerPair picks the market fields out of a /latest/dex/pairs
// response. priceUsd comes back as a string, gjson coerces it.
func ParseDexScreenerPair(body []byte) (*schema.MarketSnapshot, error) {
	pair := gjson.GetBytes(body, "pair")
	if !pair.Exists() {
		pair = gjson.GetBytes(body, "pairs.0")
	}
	if !pair.Exists() {
		return nil, schema.ErrNotFound
	}
	sp := &schema.MarketSnapshot{
		Source:       schema.SourceDexScreener,
		PairAddress:  pair.Get("pairAddress").String(),
		PriceUsd:     pair.Get("priceUsd").Float(),
		PriceNative:  pair.Get("priceNative").Float(),
		LiquidityUsd: pair.Get("liquidity.usd").Float(),
		Volume24h:    pair.Get("volume.h24").Float(),
		Fdv:          pair.Get("fdv").Float(),
		MarketCap:    pair.Get("marketCap").Float(),
		Raw:          datatypes.JSON(body),
	}
	return sp, nil
}
