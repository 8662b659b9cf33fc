package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"travel-admin/services"
	"travel-admin/utils"
	"travel-admin/validators"
)

type ProfileController struct {
	Accounts *services.AccountService
	Trips    *services.TripService
}

func NewProfileController(accounts *services.AccountService, trips *services.TripService) *ProfileController {
	return &ProfileController{Accounts: accounts, Trips: trips}
}

// GET /admin/profile
func (pc *ProfileController) GetProfile(c *gin.Context) {
	admin, err := pc.Accounts.Profile(c.Request.Context(), currentAdminID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, admin)
}

// PUT /admin/profile
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	var req validators.UpdateProfileRequest
	if !bind(c, &req) {
		return
	}

	res, err := pc.Accounts.UpdateProfile(c.Request.Context(), currentAdminID(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !res.Changed {
		utils.JSONMessage(c, http.StatusOK, services.MsgNoChanges)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"admin":   res.Admin,
	})
}

// GET /dashboard
func (pc *ProfileController) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	admin, err := pc.Accounts.Profile(ctx, currentAdminID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	summary, err := pc.Trips.Summary(ctx)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"admin":       admin,
		"tripCount":   summary.TripCount,
		"recentTrips": summary.RecentTrips,
	})
}
