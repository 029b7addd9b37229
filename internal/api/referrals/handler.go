package referrals

import (
	"net/http"

	"agency-platform/database"
	"agency-platform/internal/app/http/middleware"
	"agency-platform/internal/apperr"
	domainreferrals "agency-platform/internal/domain/referrals"
	"agency-platform/internal/domain/users"

	"github.com/gin-gonic/gin"
)

type Handler struct{}

// Summary answers the caller's referral code, how many users signed up
// with it, and the commissions earned so far.
func (h *Handler) Summary(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var referredCount int64
	if err := database.DB.Model(&users.User{}).
		Where("referred_by_id = ?", user.ID).
		Count(&referredCount).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	var list []domainreferrals.Referral
	if err := database.DB.Where("referrer_id = ?", user.ID).
		Order("created_at DESC").Find(&list).Error; err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"referralCode":  user.ReferralCode,
		"referredCount": referredCount,
		"earnings":      user.ReferralEarnings,
		"referrals":     list,
	})
}
