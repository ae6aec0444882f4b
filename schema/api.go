package schema

type RespErr struct {
	Ok   bool                   `json:"ok"`
	Err  string                 `json:"error"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

type RespList struct {
	Ok     bool        `json:"ok"`
	Total  int         `json:"total"`
	Limit  int         `json:"limit"`
	Cursor int64       `json:"cursor,omitempty"` // pass back to fetch the next page
	Data   interface{} `json:"data"`
}

type RespData struct {
	Ok   bool        `json:"ok"`
	Data interface{} `json:"data"`
}

type RespTokenInfo struct {
	Symbol       string  `json:"symbol"`
	Mint         string  `json:"mint"`
	PairAddress  string  `json:"pairAddress"`
	PriceUsd     float64 `json:"priceUsd"`
	LiquidityUsd float64 `json:"liquidityUsd"`
	Volume24h    float64 `json:"volume24h"`
	MarketCap    float64 `json:"marketCap"`
	UpdatedAt    int64   `json:"updatedAt"` // unix s of last sync
}

type RespStatsSummary struct {
	HolderCount   int64   `json:"holderCount"`
	Top10Percent  float64 `json:"top10Percent"` // supply share of the ten largest holders
	BuyCount24h   int64   `json:"buyCount24h"`
	SellCount24h  int64   `json:"sellCount24h"`
	VolumeUsd24h  float64 `json:"volumeUsd24h"`
	PriceUsd      float64 `json:"priceUsd"`
	OgHolderCount int64   `json:"ogHolderCount"`
}

type RespNewApiKey struct {
	ID    uint   `json:"id"`
	Token string `json:"token"` // returned once, at creation
	Label string `json:"label"`
	Tier  string `json:"tier"`
}
