package mooglife

import (
	"fmt"
	"time"

	"github.com/mooglife/mooglife/schema"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"gopkg.in/h2non/gentleman.v2"
	"gorm.io/datatypes"
)

const defaultBirdeyeUrl = "https://public-api.birdeye.so"

type BirdeyeCli struct {
	cli    *gentleman.Client
	apiKey string
}

func NewBirdeyeCli(birdeyeUrl, apiKey string) *BirdeyeCli {
	if birdeyeUrl == "" {
		birdeyeUrl = defaultBirdeyeUrl
	}
	return &BirdeyeCli{
		cli:    gentleman.New().URL(birdeyeUrl),
		apiKey: apiKey,
	}
}

func (b *BirdeyeCli) get(path string, query map[string]string) ([]byte, error) {
	req := b.cli.Get()
	req.AddPath(path)
	for k, v := range query {
		req.AddQuery(k, v)
	}
	req.SetHeader("X-API-KEY", b.apiKey)
	resp, err := req.Send()
	if err != nil {
		return nil, err
	}
	defer resp.Close()
	if !resp.Ok {
		return nil, fmt.Errorf("%w: birdeye status %d", schema.ErrUpstreamStatus, resp.StatusCode)
	}
	return resp.Bytes(), nil
}

func (b *BirdeyeCli) GetPrice(mint string) (*schema.MarketSnapshot, error) {
	body, err := b.get("/defi/price", map[string]string{
		"address":           mint,
		"include_liquidity": "true",
	})
	if err != nil {
		return nil, err
	}
	return ParseBirdeyePrice(body)
}

func (b *BirdeyeCli) GetHolders(mint string, offset, limit int) ([]schema.Holder, error) {
	body, err := b.get("/defi/v3/token/holder", map[string]string{
		"address": mint,
		"offset":  fmt.Sprintf("%d", offset),
		"limit":   fmt.Sprintf("%d", limit),
	})
	if err != nil {
		return nil, err
	}
	return ParseBirdeyeHolders(body, offset)
}

func (b *BirdeyeCli) GetRecentSwaps(mint string, limit int) ([]schema.SwapTx, error) {
	body, err := b.get("/defi/txs/token", map[string]string{
		"address":   mint,
		"tx_type":   "swap",
		"sort_type": "desc",
		"limit":     fmt.Sprintf("%d", limit),
	})
	if err != nil {
		return nil, err
	}
	return ParseBirdeyeSwaps(body)
}

func ParseBirdeyePrice(body []byte) (*schema.MarketSnapshot, error) {
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return nil, schema.ErrNotFound
	}
	sp := &schema.MarketSnapshot{
		Source:       schema.SourceBirdeye,
		PriceUsd:     data.Get("value").Float(),
		LiquidityUsd: data.Get("liquidity").Float(),
		Raw:          datatypes.JSON(body),
	}
	return sp, nil
}

func ParseBirdeyeHolders(body []byte, offset int) ([]schema.Holder, error) {
	items := gjson.GetBytes(body, "data.items")
	if !items.Exists() {
		return nil, schema.ErrNotFound
	}
	now := time.Now()
	holders := make([]schema.Holder, 0, 100)
	for i, item := range items.Array() {
		holders = append(holders, schema.Holder{
			Address:     item.Get("owner").String(),
			Balance:     decimal.NewFromFloat(item.Get("ui_amount").Float()),
			Rank:        offset + i + 1,
			FirstSeenAt: now,
		})
	}
	return holders, nil
}

func ParseBirdeyeSwaps(body []byte) ([]schema.SwapTx, error) {
	items := gjson.GetBytes(body, "data.items")
	if !items.Exists() {
		return nil, schema.ErrNotFound
	}
	txs := make([]schema.SwapTx, 0, 50)
	for _, item := range items.Array() {
		side := item.Get("side").String()
		if side != schema.SwapSideBuy && side != schema.SwapSideSell {
			continue
		}
		amountTok := item.Get("base.ui_change_amount").Float()
		if amountTok < 0 {
			amountTok = -amountTok
		}
		txs = append(txs, schema.SwapTx{
			Sig:       item.Get("tx_hash").String(),
			BlockTime: item.Get("block_unix_time").Int(),
			Side:      side,
			Maker:     item.Get("owner").String(),
			AmountTok: decimal.NewFromFloat(amountTok),
			AmountUsd: item.Get("volume_usd").Float(),
			PriceUsd:  item.Get("base_price").Float(),
			Source:    schema.SourceBirdeye,
		})
	}
	return txs, nil
}
