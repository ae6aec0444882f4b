package schema

type TierQuota struct {
	Tier       string `gorm:"primarykey"`
	DailyLimit int64  // <= 0 means unlimited
	RowCap     int    // max rows per request
	Available  bool   `gorm:"index:idx1"` // true means effective
}

type IpRateWhitelist struct {
	OriginOrIP  string // e.g "188.0.2.2"
	Available   bool   `gorm:"index:idx3"` // true means effective
	Description string
}

type Param struct {
	HolderPageSize int
	SwapPageSize   int
	OgBalanceFloor string // token amount, decimal string
	OgCutoff       int64  // unix s, buys before this may earn OG rewards
	RewardPerOg    string // token amount per round, decimal string
}
