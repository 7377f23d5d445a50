package handlers

import (
	"time"

	"arcadesync/internal/infrastructure/security"
	"arcadesync/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(
	usr *UsrHandler,
	eacoin *EacoinHandler,
	shop *ShopHandler,
	admin *AdminHandler,
	limiter *middleware.RateLimiter,
	tokens *security.TokenManager,
) *gin.Engine {
	r := gin.Default()

	// Протокол автоматов: диспетчеризация usr по атрибуту method,
	// остальные модули — по пути, как их шлет клиент.
	r.POST("/polaris/usr", usr.Dispatch)
	r.POST("/polaris/usr/*path", usr.Dispatch)

	r.POST("/core/:gameinfo/eacoin/checkin", eacoin.Checkin)
	r.POST("/core/:gameinfo/eacoin/checkout", eacoin.Checkout)
	r.POST("/core/:gameinfo/eacoin/consume", eacoin.Consume)
	r.POST("/core/:gameinfo/eacoin/getbalance", eacoin.GetBalance)

	r.POST("/local/:gameinfo/shop/getname", shop.GetName)
	r.POST("/local/:gameinfo/shop/savename", shop.SaveName)
	r.POST("/local/:gameinfo/shop/getconvention", shop.GetConvention)
	r.POST("/local/:gameinfo/shop/sentinfo", shop.SentInfo)
	r.POST("/local/:gameinfo/shop/sendescapepackageinfo", shop.SendEscapePackageInfo)
	r.POST("/local/:gameinfo/shop/getclosingtime", shop.GetClosingTime)
	r.POST("/local/:gameinfo/shop/saveclosingtime", shop.SaveClosingTime)

	// Операторский API — браузерный, поэтому CORS и JWT.
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}

	api := r.Group("/api/v1", cors.New(config))
	{
		api.POST("/admin/login", limiter.Limit("admin_login", 5, 1*time.Minute), admin.Login)
		protected := api.Group("/admin")
		protected.Use(middleware.AuthMiddleware(tokens))
		{
			protected.GET("/profiles/:card", admin.GetProfile)
			protected.PUT("/paseli/:cardid", admin.SetBalance)
		}
	}

	return r
}
