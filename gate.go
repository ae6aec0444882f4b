package mooglife

import (
	"net/http"
	"strings"
	"time"

	"github.com/mooglife/mooglife/config"
	"github.com/mooglife/mooglife/schema"
	"gorm.io/gorm"
)

const (
	ApiKeyHeader = "X-API-KEY"
	ApiKeyQuery  = "api_key"
)

const (
	RejectUnauthorized  = "unauthorized"
	RejectForbidden     = "forbidden"
	RejectQuotaExceeded = "quota_exceeded"
	RejectTierTooLow    = "tier_insufficient"
	RejectConfiguration = "configuration_error"
)

// Credential is the raw token extracted from a request; an empty token is a
// valid anonymous credential.
type Credential struct {
	Token    string
	ClientIP string
}

func (c Credential) Anonymous() bool {
	return c.Token == ""
}

// AuthContext is the per-request authentication result. It is returned from
// the gate and passed down explicitly, never stored between requests.
type AuthContext struct {
	Anonymous bool   `json:"anonymous"`
	KeyID     uint   `json:"keyId,omitempty"`
	Label     string `json:"label,omitempty"`
	Tier      string `json:"tier"`

	Limit      int64  `json:"limit"` // negative means unlimited
	Count      int64  `json:"count"`
	WindowDate string `json:"windowDate,omitempty"`
}

// Rejection is a terminal authentication failure. It is never retried; the
// handler translates it straight into the error envelope.
type Rejection struct {
	Kind   string
	Status int
	Msg    string
	Meta   map[string]interface{}
}

func (r *Rejection) Error() string {
	return r.Msg
}

type Gate struct {
	wdb *Wdb
	cfg *config.Config // nil falls back to compiled tier defaults
}

func NewGate(wdb *Wdb, cfg *config.Config) *Gate {
	return &Gate{wdb: wdb, cfg: cfg}
}

// ResolveCredential extracts a token from the custom header, a Bearer
// Authorization header or the api_key query param, in that order.
func ResolveCredential(req *http.Request, clientIP string) Credential {
	token := req.Header.Get(ApiKeyHeader)
	if token == "" {
		auth := req.Header.Get("Authorization")
		if parts := strings.SplitN(auth, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
		}
	}
	if token == "" {
		token = req.URL.Query().Get(ApiKeyQuery)
	}
	return Credential{Token: token, ClientIP: clientIP}
}

// Authenticate decides whether the request may proceed and records it. The
// quota is consumed here, on successful authentication, regardless of what the
// handler does afterwards. Rejected attempts never mutate the store.
func (g *Gate) Authenticate(cred Credential, keyRequired bool) (*AuthContext, *Rejection) {
	if cred.Anonymous() {
		if !keyRequired {
			return &AuthContext{Anonymous: true, Tier: schema.TierFree, Limit: schema.UnlimitedDaily}, nil
		}
		return nil, &Rejection{
			Kind:   RejectUnauthorized,
			Status: http.StatusUnauthorized,
			Msg:    schema.ErrKeyNotFound.Error(),
		}
	}

	key, err := g.wdb.GetApiKeyByToken(cred.Token)
	if err == gorm.ErrRecordNotFound {
		return nil, &Rejection{
			Kind:   RejectUnauthorized,
			Status: http.StatusUnauthorized,
			Msg:    schema.ErrKeyNotFound.Error(),
		}
	}
	if err != nil {
		// fail closed on storage trouble
		return nil, &Rejection{
			Kind:   RejectConfiguration,
			Status: http.StatusInternalServerError,
			Msg:    schema.ErrStoreNotReady.Error(),
		}
	}
	if key.Status != schema.KeyStatusActive {
		return nil, &Rejection{
			Kind:   RejectUnauthorized,
			Status: http.StatusUnauthorized,
			Msg:    schema.ErrKeyDisabled.Error(),
		}
	}
	if !key.IPAllowed(cred.ClientIP) {
		return nil, &Rejection{
			Kind:   RejectForbidden,
			Status: http.StatusForbidden,
			Msg:    schema.ErrIPNotAllowed.Error(),
			Meta:   map[string]interface{}{"ip": cred.ClientIP},
		}
	}

	tier := key.Tier
	if tier == "" {
		tier = schema.TierFree
	}
	limit := g.dailyLimit(&key, tier)

	today := time.Now().Format(schema.DayWindowLayout)
	count := key.RequestsToday
	if key.DayWindowStart != today {
		// new calendar day: the stored counter is logically zero; the reset is
		// persisted together with the increment below, never on its own
		count = 0
	}
	if limit >= 0 && count >= limit {
		return nil, g.quotaRejection(limit, count, today)
	}

	ok, err := g.wdb.TouchApiKeyUsage(key.ID, today, limit)
	if err != nil {
		return nil, &Rejection{
			Kind:   RejectConfiguration,
			Status: http.StatusInternalServerError,
			Msg:    schema.ErrStoreNotReady.Error(),
		}
	}
	if !ok {
		// lost the increment race to concurrent requests on the same key
		return nil, g.quotaRejection(limit, count, today)
	}

	metricGateAllowed(tier)
	return &AuthContext{
		KeyID:      key.ID,
		Label:      key.Label,
		Tier:       tier,
		Limit:      limit,
		Count:      count + 1,
		WindowDate: today,
	}, nil
}

func (g *Gate) quotaRejection(limit, count int64, today string) *Rejection {
	metricGateRejected(RejectQuotaExceeded)
	return &Rejection{
		Kind:   RejectQuotaExceeded,
		Status: http.StatusTooManyRequests,
		Msg:    schema.ErrQuotaExceeded.Error(),
		Meta: map[string]interface{}{
			"limit": limit,
			"count": count,
			"date":  today,
		},
	}
}

func (g *Gate) dailyLimit(key *schema.ApiKey, tier string) int64 {
	if key.DailyLimit != nil {
		return key.EffectiveDailyLimit()
	}
	if g.cfg != nil {
		if limit, ok := g.cfg.TierDailyLimit(tier); ok {
			return limit
		}
	}
	return schema.TierDailyLimit(tier)
}

// RowCaps returns the tier -> max rows table: the compiled defaults overlaid
// with whatever the hot-reloaded config carries.
func (g *Gate) RowCaps() map[string]int {
	caps := schema.DefaultRowCaps()
	if g.cfg != nil {
		for tier, rows := range g.cfg.RowCaps() {
			caps[tier] = rows
		}
	}
	return caps
}

// CapLimit clamps a caller-requested row count to the tier's cap. With
// hardBlock the caller wants a rejection instead of a silent clamp; a cap of
// zero then means the tier has no access to the feature at all.
func CapLimit(requested int, tier string, table map[string]int, hardBlock bool) (int, *Rejection) {
	maxRows, ok := table[tier]
	if !ok {
		maxRows = table["default"]
	}
	if requested <= maxRows {
		return requested, nil
	}
	if hardBlock {
		return 0, &Rejection{
			Kind:   RejectTierTooLow,
			Status: http.StatusPaymentRequired,
			Msg:    schema.ErrTierTooLow.Error(),
			Meta:   map[string]interface{}{"tier": tier, "cap": maxRows},
		}
	}
	return maxRows, nil
}
