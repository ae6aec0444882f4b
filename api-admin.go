package mooglife

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mooglife/mooglife/schema"
	"github.com/shopspring/decimal"
)

const apiKeyTokenPrefix = "ml_"

type reqNewApiKey struct {
	Label      string `json:"label"`
	Owner      string `json:"owner"`
	Tier       string `json:"tier"`
	DailyLimit *int64 `json:"dailyLimit"`
	AllowedIPs string `json:"allowedIps"`
}

func (m *Mooglife) createApiKey(c *gin.Context) {
	req := reqNewApiKey{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	if req.Tier == "" {
		req.Tier = schema.TierFree
	}
	switch req.Tier {
	case schema.TierFree, schema.TierPro, schema.TierInternal:
	default:
		errorResponse(c, "invalid_tier")
		return
	}

	token, err := NewApiKeyToken()
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	key := &schema.ApiKey{
		Token:      token,
		Label:      req.Label,
		Owner:      req.Owner,
		Tier:       req.Tier,
		Status:     schema.KeyStatusActive,
		DailyLimit: req.DailyLimit,
		AllowedIPs: req.AllowedIPs,
	}
	if err := m.wdb.CreateApiKey(key); err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	log.Info("api key created", "id", key.ID, "label", key.Label, "tier", key.Tier)

	// the raw token is only ever returned here
	c.JSON(http.StatusOK, schema.RespData{Ok: true, Data: schema.RespNewApiKey{
		ID:    key.ID,
		Token: token,
		Label: key.Label,
		Tier:  key.Tier,
	}})
}

func (m *Mooglife) listApiKeys(c *gin.Context) {
	keys, err := m.wdb.GetApiKeys()
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespList{Ok: true, Total: len(keys), Limit: len(keys), Data: keys})
}

func (m *Mooglife) disableApiKey(c *gin.Context) {
	m.setApiKeyStatus(c, schema.KeyStatusDisabled)
}

func (m *Mooglife) enableApiKey(c *gin.Context) {
	m.setApiKeyStatus(c, schema.KeyStatusActive)
}

func (m *Mooglife) setApiKeyStatus(c *gin.Context, status string) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		errorResponse(c, "invalid_id")
		return
	}
	if err := m.wdb.UpdateApiKeyStatus(uint(id), status); err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	log.Info("api key status updated", "id", id, "status", status)
	c.JSON(http.StatusOK, schema.RespData{Ok: true, Data: gin.H{"id": id, "status": status}})
}

type reqAirdrop struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"` // decimal string
}

type reqNewAirdrops struct {
	Round int          `json:"round"`
	Drops []reqAirdrop `json:"drops"`
}

// createAirdrops records a distribution round as pending rows; settlement
// happens off-system and is reported back later.
func (m *Mooglife) createAirdrops(c *gin.Context) {
	req := reqNewAirdrops{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	if req.Round <= 0 {
		errorResponse(c, "invalid_round")
		return
	}
	if len(req.Drops) == 0 {
		errorResponse(c, "empty_drops")
		return
	}
	drops := make([]schema.Airdrop, 0, len(req.Drops))
	for _, d := range req.Drops {
		if d.Recipient == "" {
			errorResponse(c, "invalid_recipient")
			return
		}
		amount, err := decimal.NewFromString(d.Amount)
		if err != nil || amount.LessThanOrEqual(decimal.Zero) {
			errorResponse(c, "invalid_amount")
			return
		}
		drops = append(drops, schema.Airdrop{
			Recipient: d.Recipient,
			Amount:    amount,
			Round:     req.Round,
			Status:    schema.RewardPending,
		})
	}
	if err := m.wdb.InsertAirdrops(drops); err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	log.Info("airdrop round recorded", "round", req.Round, "num", len(drops))
	c.JSON(http.StatusOK, schema.RespData{Ok: true, Data: gin.H{"round": req.Round, "num": len(drops)}})
}

func NewApiKeyToken() (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return apiKeyTokenPrefix + hex.EncodeToString(raw), nil
}
