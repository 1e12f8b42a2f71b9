package controllers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/louismrng/veil-backend/services"
	"github.com/louismrng/veil-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

type AccountController struct {
	Accounts  *services.AccountService
	JWTSecret []byte
}

func NewAccountController(accounts *services.AccountService, jwtSecret []byte) *AccountController {
	return &AccountController{Accounts: accounts, JWTSecret: jwtSecret}
}

type accountCredentialsReq struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// POST /api/v1/account/register
func (ac *AccountController) Register(c *gin.Context) {
	var req accountCredentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !usernamePattern.MatchString(req.Username) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username may only contain letters, digits, and underscores"})
		return
	}

	jid, err := ac.Accounts.Register(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "That username is already taken."})
			return
		}
		log.Error().Err(err).Msg("account registration failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Registration failed. Please try again later."})
		return
	}

	token, err := utils.GenerateJWT(jid, ac.JWTSecret)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign JWT")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"jid": jid, "status": "registered", "token": token})
}

// POST /api/v1/account/login
func (ac *AccountController) Login(c *gin.Context) {
	var req accountCredentialsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jid, err := ac.Accounts.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password."})
			return
		}
		log.Error().Err(err).Msg("login failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Authentication service unavailable."})
		return
	}

	token, err := utils.GenerateJWT(jid, ac.JWTSecret)
	if err != nil {
		log.Error().Err(err).Msg("failed to sign JWT")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jid": jid, "token": token})
}

type accountDeleteReq struct {
	JID      string `json:"jid" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// DELETE /api/v1/account — password-confirmed, cascades push registrations.
func (ac *AccountController) Delete(c *gin.Context) {
	var req accountDeleteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.JID != c.GetString("jid") {
		c.JSON(http.StatusForbidden, gin.H{"error": "token JID does not match request JID"})
		return
	}

	if err := ac.Accounts.Delete(req.JID, req.Password); err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid password."})
			return
		}
		log.Error().Err(err).Msg("account deletion failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "account deletion failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
