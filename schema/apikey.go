package schema

import (
	"strings"
	"time"
)

const (
	TierFree     = "free"
	TierPro      = "pro"
	TierInternal = "internal"

	KeyStatusActive   = "active"
	KeyStatusDisabled = "disabled"

	// daily request quotas per tier; UnlimitedDaily means no cap
	FreeDailyLimit = 1000
	ProDailyLimit  = 50000
	UnlimitedDaily = int64(-1)

	// per-request row caps per tier
	FreeRowCap     = 200
	ProRowCap      = 1000
	InternalRowCap = 5000

	DayWindowLayout = "2006-01-02"
)

type ApiKey struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Token string `gorm:"index:apikey01,unique" json:"-"`
	Label string `json:"label"`
	Owner string `json:"owner"` // optional owner reference

	Tier   string `gorm:"index:apikey02" json:"tier"`
	Status string `json:"status"` // "active","disabled"

	// DailyLimit nil means use the tier default; a value <= 0 means unlimited
	DailyLimit     *int64 `json:"dailyLimit"`
	RequestsToday  int64  `json:"requestsToday"`
	DayWindowStart string `json:"dayWindowStart"` // "2006-01-02", empty until first use

	AllowedIPs string     `json:"allowedIps"` // comma-separated, empty means any
	LastUsedAt *time.Time `json:"lastUsedAt"`
}

// TierDailyLimit returns the built-in daily quota for a tier. Unknown tiers
// fall back to the free quota.
func TierDailyLimit(tier string) int64 {
	switch tier {
	case TierPro:
		return ProDailyLimit
	case TierInternal:
		return UnlimitedDaily
	default:
		return FreeDailyLimit
	}
}

// EffectiveDailyLimit resolves the key's quota: per-key override first, tier
// default otherwise. A negative result means unlimited.
func (k *ApiKey) EffectiveDailyLimit() int64 {
	if k.DailyLimit != nil {
		if *k.DailyLimit <= 0 {
			return UnlimitedDaily
		}
		return *k.DailyLimit
	}
	return TierDailyLimit(k.Tier)
}

// IPAllowed reports whether ip passes the key's allow-list. An empty list
// allows any source.
func (k *ApiKey) IPAllowed(ip string) bool {
	if strings.TrimSpace(k.AllowedIPs) == "" {
		return true
	}
	for _, allowed := range strings.Split(k.AllowedIPs, ",") {
		if strings.TrimSpace(allowed) == ip {
			return true
		}
	}
	return false
}

func DefaultRowCaps() map[string]int {
	return map[string]int{
		TierFree:     FreeRowCap,
		TierPro:      ProRowCap,
		TierInternal: InternalRowCap,
		"default":    FreeRowCap,
	}
}
