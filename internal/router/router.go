package router

import (
	"net/http"
	"time"

	"dukapay/config"
	"dukapay/internal/handler"
	"dukapay/internal/middleware"
	"dukapay/internal/repository"
	"dukapay/pkg/mpesa"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, client *mpesa.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	// Skip gin.Logger() to reduce log noise; handlers log what matters
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	txRepo := repository.NewTransactionRepository(db)

	stkHandler := handler.NewSTKPushHandler(txRepo, client)
	callbackHandler := handler.NewCallbackHandler(txRepo)
	statusHandler := handler.NewStatusHandler(txRepo)

	r.LoadHTMLGlob("templates/*.html")
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", nil)
	})

	api := r.Group("/api")
	{
		api.POST("/stkpush", stkHandler.Initiate)
		api.POST("/mpesa_callback", callbackHandler.Handle)
		api.GET("/payment_status/:merchantRef", statusHandler.Get)
	}

	return r
}
