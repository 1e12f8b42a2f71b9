package routes

import (
	"github.com/louismrng/veil-backend/controllers"
	"github.com/louismrng/veil-backend/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRouter(
	jwtSecret []byte,
	push *controllers.PushController,
	accounts *controllers.AccountController,
	serverInfo *controllers.ServerInfoController,
) *gin.Engine {
	r := gin.Default()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	auth := middlewares.AuthMiddleware(jwtSecret)

	p := api.Group("/push")
	{
		// Kamailio webhook — internal network, no JWT.
		p.POST("/call-notify", push.CallNotify)
		p.POST("/register", auth, push.Register)
		p.DELETE("/register", auth, push.Deregister)
	}

	account := api.Group("/account")
	{
		account.POST("/register", accounts.Register)
		account.POST("/login", accounts.Login)
		account.DELETE("", auth, accounts.Delete)
	}

	api.GET("/server/info", serverInfo.Info)

	return r
}
