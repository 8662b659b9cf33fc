package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"travel-admin/middleware"
	"travel-admin/services"
	"travel-admin/utils"
	"travel-admin/validators"
)

const MsgInvalidPayload = "Invalid request payload"

// CookieConfig controls the session cookie attributes.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type AuthController struct {
	Accounts *services.AccountService
	Cookie   CookieConfig
}

func NewAuthController(accounts *services.AccountService, cookie CookieConfig) *AuthController {
	if cookie.MaxAge <= 0 {
		cookie.MaxAge = 24 * time.Hour
	}
	return &AuthController{Accounts: accounts, Cookie: cookie}
}

func (ac *AuthController) setSessionCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ac.Cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   ac.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (ac *AuthController) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ac.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		utils.RespondError(c, utils.BadRequest(MsgInvalidPayload))
		return false
	}
	return true
}

func currentAdminID(c *gin.Context) uint {
	claims, ok := middleware.CurrentAdmin(c)
	if !ok {
		return 0
	}
	return claims.AdminID
}

// ----------------------------------------------------
// POST /auth/login
// ----------------------------------------------------

func (ac *AuthController) Login(c *gin.Context) {
	var req validators.LoginRequest
	if !bind(c, &req) {
		return
	}

	res, err := ac.Accounts.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	ac.setSessionCookie(c, res.Token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"admin":   res.Admin,
	})
}

// ----------------------------------------------------
// POST /auth/logout
// ----------------------------------------------------

func (ac *AuthController) Logout(c *gin.Context) {
	ac.Accounts.Logout(c.Request.Context(), currentAdminID(c))
	ac.clearSessionCookie(c)
	utils.JSONMessage(c, http.StatusOK, "Logout successful")
}

// ----------------------------------------------------
// POST /auth/change-password
// ----------------------------------------------------

func (ac *AuthController) ChangePassword(c *gin.Context) {
	var req validators.ChangePasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := ac.Accounts.ChangePassword(c.Request.Context(), currentAdminID(c), req); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Password changed successfully")
}

// ----------------------------------------------------
// POST /auth/change-email
// ----------------------------------------------------

func (ac *AuthController) ChangeEmail(c *gin.Context) {
	var req validators.ChangeEmailRequest
	if !bind(c, &req) {
		return
	}
	if err := ac.Accounts.ChangeEmail(c.Request.Context(), currentAdminID(c), req); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Email updated successfully")
}

// ----------------------------------------------------
// POST /auth/forgot-password
// ----------------------------------------------------

func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req validators.ForgotPasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := ac.Accounts.ForgotPassword(c.Request.Context(), req); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "If the email exists, a reset link has been sent.")
}

// ----------------------------------------------------
// POST /auth/reset-password
// ----------------------------------------------------

func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req validators.ResetPasswordRequest
	if !bind(c, &req) {
		return
	}
	if err := ac.Accounts.ResetPassword(c.Request.Context(), req); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "Password reset successful")
}
