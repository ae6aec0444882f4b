package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	SwapSideBuy  = "buy"
	SwapSideSell = "sell"

	// airdrop / reward status
	RewardPending = "pending"
	RewardSent    = "sent"
	RewardFailed  = "failed"

	SourceDexScreener = "dexscreener"
	SourceBirdeye     = "birdeye"
)

type Holder struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Address string          `gorm:"index:holder01,unique" json:"address"`
	Balance decimal.Decimal `gorm:"type:decimal(38,9)" json:"balance"`
	Percent float64         `json:"percent"` // share of supply
	Rank    int             `gorm:"column:holder_rank;index:holder02" json:"rank"` // "rank" is reserved in mysql 8

	IsOG        bool      `json:"isOg"` // bought before the OG cutoff and never fully exited
	FirstSeenAt time.Time `json:"firstSeenAt"`
}

type SwapTx struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Sig       string          `gorm:"index:swap01,unique" json:"sig"`
	BlockTime int64           `gorm:"index:swap02" json:"blockTime"` // unix s
	Side      string          `json:"side"`                          // "buy","sell"
	Maker     string          `gorm:"index:swap03" json:"maker"`
	AmountTok decimal.Decimal `gorm:"type:decimal(38,9)" json:"amountToken"`
	AmountUsd float64         `json:"amountUsd"`
	PriceUsd  float64         `json:"priceUsd"`
	Source    string          `json:"source"`
}

type Airdrop struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Recipient string          `gorm:"index:airdrop01" json:"recipient"`
	Amount    decimal.Decimal `gorm:"type:decimal(38,9)" json:"amount"`
	Round     int             `gorm:"index:airdrop02" json:"round"`
	Status    string          `json:"status"` // "pending","sent","failed"
	TxSig     string          `json:"txSig"`
	SentAt    *time.Time      `json:"sentAt"`
}

type OgReward struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Address string          `gorm:"index:ogrwd01,unique,composite:addr_round" json:"address"`
	Round   int             `gorm:"index:ogrwd01,unique,composite:addr_round" json:"round"`
	Amount  decimal.Decimal `gorm:"type:decimal(38,9)" json:"amount"`
	Status  string          `json:"status"` // "pending","sent","failed"
	TxSig   string          `json:"txSig"`
}

type MarketSnapshot struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:market01" json:"createdAt"`

	Source       string  `gorm:"index:market02" json:"source"` // "dexscreener","birdeye"
	PairAddress  string  `json:"pairAddress"`
	PriceUsd     float64 `json:"priceUsd"`
	PriceNative  float64 `json:"priceNative"`
	LiquidityUsd float64 `json:"liquidityUsd"`
	Volume24h    float64 `json:"volume24h"`
	Fdv          float64 `json:"fdv"`
	MarketCap    float64 `json:"marketCap"`

	Raw datatypes.JSON `json:"-"` // upstream payload as received
}
