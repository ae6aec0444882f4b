package schema

type KafkaSwapEvent struct {
	Sig       string  `json:"sig"`
	BlockTime int64   `json:"blockTime"`
	Side      string  `json:"side"`
	Maker     string  `json:"maker"`
	AmountTok string  `json:"amountToken"`
	AmountUsd float64 `json:"amountUsd"`
	PriceUsd  float64 `json:"priceUsd"`
	Source    string  `json:"source"`
}

type KafkaSnapshotEvent struct {
	Source       string  `json:"source"`
	PairAddress  string  `json:"pairAddress"`
	PriceUsd     float64 `json:"priceUsd"`
	LiquidityUsd float64 `json:"liquidityUsd"`
	Volume24h    float64 `json:"volume24h"`
	Timestamp    int64   `json:"timestamp"` // unix s
}
