package rest

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jupiterclapton/tenx/services/feed-service/internal/core/ports"
)

// Handler est l'adapter primaire HTTP : parsing et mapping uniquement,
// toute la logique vit dans les services du core.
type Handler struct {
	feeds    ports.FeedService
	identity ports.IdentityService
}

func NewHandler(feeds ports.FeedService, identity ports.IdentityService) *Handler {
	return &Handler{feeds: feeds, identity: identity}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/feeds/uploadFeed", h.UploadFeed)
		api.GET("/feeds/getUserFeeds", h.GetUserFeeds)
		api.GET("/users/create", h.CreateUser)
	}
}

// NewRouter assemble le routeur avec le tracing et le recovery.
func NewRouter(h *Handler, serviceName string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	h.RegisterRoutes(r)
	return r
}
