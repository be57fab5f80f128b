package routes

import (
	"time"

	"wanderly/handlers"
	"wanderly/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// AuthConfig controls the JWT middleware on the user-facing groups.
type AuthConfig struct {
	Secret   string
	Required bool
}

// RegisterAgentRoutes registers the conversation endpoints.
func RegisterAgentRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth AuthConfig) {
	api := r.Group("/api/agent")
	{
		api.GET("/graph", hb.GraphHandler)

		// Thread ids are scoped to the token subject when one is present.
		api.Use(middleware.JWTAuthMiddleware(auth.Secret, auth.Required))
		api.POST("/chat", hb.ChatHandler)
		api.POST("/stream", hb.StreamHandler)
		api.GET("/state/:threadID", hb.GetStateHandler)
		api.DELETE("/state/:threadID", hb.ResetStateHandler)
		api.GET("/orders/:threadID", hb.OrdersHandler)
	}
}

// RegisterPaymentRoutes registers the endpoints that resume a paused conversation.
func RegisterPaymentRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth AuthConfig) {
	api := r.Group("/api/payments")
	{
		// Stripe authenticates itself with the webhook signature.
		api.POST("/stripe/webhook", hb.StripeWebhookHandler)
		// The unsigned callback only exists for simulated payments.
		if hb.PaymentCallbackHandler != nil {
			api.POST("/callback", middleware.JWTAuthMiddleware(auth.Secret, auth.Required), hb.PaymentCallbackHandler)
		}
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, auth AuthConfig) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAgentRoutes(r, hb, auth)
	RegisterPaymentRoutes(r, hb, auth)
	RegisterHealthRoute(r, hb)
}
