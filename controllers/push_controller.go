package controllers

import (
	"net/http"
	"strings"

	"github.com/louismrng/veil-backend/metrics"
	"github.com/louismrng/veil-backend/models"
	"github.com/louismrng/veil-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type PushController struct {
	Registry   *services.Registry
	Dispatcher *services.Dispatcher
	XMPPDomain string
}

func NewPushController(registry *services.Registry, dispatcher *services.Dispatcher, xmppDomain string) *PushController {
	return &PushController{Registry: registry, Dispatcher: dispatcher, XMPPDomain: xmppDomain}
}

type registerPushReq struct {
	JID       string `json:"jid" binding:"required"`
	DeviceID  string `json:"device_id" binding:"required"`
	Platform  string `json:"platform" binding:"required,oneof=ios android"`
	PushToken string `json:"push_token" binding:"required"`
	AppID     string `json:"app_id" binding:"required"`
}

// POST /api/v1/push/register
func (pc *PushController) Register(c *gin.Context) {
	var req registerPushReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.JID != c.GetString("jid") {
		c.JSON(http.StatusForbidden, gin.H{"error": "token JID does not match request JID"})
		return
	}

	if err := pc.Registry.Upsert(req.JID, req.DeviceID, req.Platform, req.PushToken, req.AppID); err != nil {
		log.Error().Err(err).Msg("push registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "registered"})
}

type deregisterPushReq struct {
	JID      string `json:"jid" binding:"required"`
	DeviceID string `json:"device_id" binding:"required"`
}

// DELETE /api/v1/push/register — idempotent, 200 even when no row exists.
func (pc *PushController) Deregister(c *gin.Context) {
	var req deregisterPushReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.JID != c.GetString("jid") {
		c.JSON(http.StatusForbidden, gin.H{"error": "token JID does not match request JID"})
		return
	}

	if err := pc.Registry.Remove(req.JID, req.DeviceID); err != nil {
		log.Error().Err(err).Msg("push deregistration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deregistration failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deregistered"})
}

type callNotifyReq struct {
	CalleeUsername    string `json:"callee_username" binding:"required"`
	CallerUsername    string `json:"caller_username" binding:"required"`
	CallerDisplayName string `json:"caller_display_name"`
	CallID            string `json:"call_id" binding:"required"`
	CallType          string `json:"call_type" binding:"omitempty,oneof=audio video"`
}

// POST /api/v1/push/call-notify
//
// Kamailio's webhook when the callee has no SIP registration. Not
// JWT-protected: the trust boundary is the internal compose network.
// The proxy only needs an acknowledgment, so any validated request
// answers 200 no matter how individual sends went.
func (pc *PushController) CallNotify(c *gin.Context) {
	metrics.CallNotifyTotal.Inc()

	var req callNotifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.CallNotifyInvalidTotal.Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	calleeJID := req.CalleeUsername
	if !strings.Contains(calleeJID, "@") {
		calleeJID = calleeJID + "@" + pc.XMPPDomain
	}
	callerName := req.CallerDisplayName
	if callerName == "" {
		callerName = req.CallerUsername
	}
	callType := req.CallType
	if callType == "" {
		callType = models.CallTypeAudio
	}

	res, err := pc.Dispatcher.Dispatch(c.Request.Context(), calleeJID, models.CallNotification{
		CallerName: callerName,
		CallID:     req.CallID,
		CallType:   callType,
	})
	if err != nil {
		log.Error().Err(err).Msg("call push dispatch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "push dispatch unavailable"})
		return
	}

	if res.Registrations == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "no_registrations", "sent": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "sent",
		"sent":    res.Sent,
		"skipped": res.Skipped,
		"failed":  res.Failed,
		"removed": res.Removed,
	})
}
