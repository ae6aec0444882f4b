package mooglife

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mooglife/mooglife/schema"
)

const authCtxKey = "mooglife-auth"

// GateMiddleware authenticates every request through the access gate and
// hangs the resulting AuthContext on the request context. Loopback clients
// may stay anonymous even when key_required is on.
func (m *Mooglife) GateMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		cred := ResolveCredential(c.Request, ip)
		keyRequired := m.KeyRequired && !isLoopback(ip)
		auth, rej := m.gate.Authenticate(cred, keyRequired)
		if rej != nil {
			rejectionResponse(c, rej)
			return
		}
		c.Set(authCtxKey, auth)
		c.Next()
	}
}

// InternalOnlyMiddleware guards the admin surface; runs after GateMiddleware.
func (m *Mooglife) InternalOnlyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := authFrom(c)
		if auth == nil || auth.Anonymous {
			c.AbortWithStatusJSON(http.StatusUnauthorized, schema.RespErr{
				Err: schema.ErrKeyNotFound.Error(),
			})
			return
		}
		if auth.Tier != schema.TierInternal {
			metricGateRejected(RejectTierTooLow)
			c.AbortWithStatusJSON(http.StatusPaymentRequired, schema.RespErr{
				Err:  schema.ErrTierTooLow.Error(),
				Meta: map[string]interface{}{"kind": RejectTierTooLow, "tier": auth.Tier},
			})
			return
		}
		c.Next()
	}
}

func authFrom(c *gin.Context) *AuthContext {
	val, ok := c.Get(authCtxKey)
	if !ok {
		return nil
	}
	auth, ok := val.(*AuthContext)
	if !ok {
		return nil
	}
	return auth
}

func rejectionResponse(c *gin.Context, rej *Rejection) {
	meta := map[string]interface{}{"kind": rej.Kind}
	for k, v := range rej.Meta {
		meta[k] = v
	}
	c.AbortWithStatusJSON(rej.Status, schema.RespErr{
		Err:  rej.Msg,
		Meta: meta,
	})
}

func isLoopback(ip string) bool {
	parsed := net.ParseIP(ip)
	return parsed != nil && parsed.IsLoopback()
}
