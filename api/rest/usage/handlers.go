package usage

import (
	"net/http"

	"codeberg.org/boomline/server/internal/auth"
	"codeberg.org/boomline/server/internal/errors"
	"codeberg.org/boomline/server/internal/generator"
	"github.com/gin-gonic/gin"
)

// reports today's quota for the caller without spending any of it
func Handler(gen *generator.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		quota, premium, err := gen.Quota(c.Request.Context(), auth.GetOwner(c), auth.GetEmail(c))
		if err != nil {
			errors.Respond(c, err)
			return
		}

		resp := Response{
			Allowed:   quota.Allowed,
			Remaining: quota.Remaining,
			Limit:     quota.Limit,
			Count:     quota.Count,
			Date:      quota.Date,
			Premium:   premium,
		}

		if !quota.Allowed {
			resp.UpgradeURL = gen.Ledger().UpgradeURL()
		}

		c.JSON(http.StatusOK, resp)
	}
}
