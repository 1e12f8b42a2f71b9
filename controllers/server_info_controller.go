package controllers

import (
	"net/http"

	"github.com/louismrng/veil-backend/config"

	"github.com/gin-gonic/gin"
)

type ServerInfoController struct {
	Cfg *config.Config
}

func NewServerInfoController(cfg *config.Config) *ServerInfoController {
	return &ServerInfoController{Cfg: cfg}
}

// GET /api/v1/server/info — unauthenticated; the first call a client
// makes to discover XMPP, SIP, TURN, and upload endpoints.
func (sc *ServerInfoController) Info(c *gin.Context) {
	cfg := sc.Cfg
	c.JSON(http.StatusOK, gin.H{
		"xmpp_domain":        cfg.XMPPDomain,
		"xmpp_host":          cfg.XMPPHost,
		"xmpp_port_tls":      5223,
		"xmpp_port_starttls": 5222,
		"xmpp_ws_url":        cfg.XMPPWSURL,
		"sip_domain":         cfg.SIPDomain,
		"sip_port_tls":       5061,
		"turn_server":        cfg.TURNDomain + ":3478",
		"turn_server_tls":    cfg.TURNDomain + ":5349",
		"http_upload_host":   cfg.HTTPUploadDomain,
		"server_version":     cfg.ServerVersion,
		"min_client_version": cfg.MinClientVersion,
	})
}
