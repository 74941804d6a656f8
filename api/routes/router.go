package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatcartlabs/chatcart-backend/api/controllers"
	externalcontrollers "github.com/chatcartlabs/chatcart-backend/api/controllers/external"
	ordercontrollers "github.com/chatcartlabs/chatcart-backend/api/controllers/orders"
	"github.com/chatcartlabs/chatcart-backend/api/middleware"
	"github.com/chatcartlabs/chatcart-backend/internal/catalog"
	"github.com/chatcartlabs/chatcart-backend/internal/conversations"
	externalsvc "github.com/chatcartlabs/chatcart-backend/internal/external"
	"github.com/chatcartlabs/chatcart-backend/internal/orders"
	"github.com/chatcartlabs/chatcart-backend/pkg/config"
	"github.com/chatcartlabs/chatcart-backend/pkg/db"
	"github.com/chatcartlabs/chatcart-backend/pkg/logger"
	"github.com/chatcartlabs/chatcart-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	ordersSvc orders.Service,
	externalSvc externalsvc.Service,
	catalogSvc catalog.Service,
	conversationsSvc conversations.Directory,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbClient, redisClient))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RateLimit(cfg.RateLimit, redisClient, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(ordersSvc, logg))
			r.Post("/", ordercontrollers.Create(ordersSvc, logg))
			r.Post("/draft", ordercontrollers.StartDraft(ordersSvc, logg))
			r.Get("/code/{oid}", ordercontrollers.DetailByCode(ordersSvc, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", ordercontrollers.Detail(ordersSvc, logg))
				r.Post("/items", ordercontrollers.AddItem(ordersSvc, logg))
				r.Patch("/items", ordercontrollers.UpdateItemQuantity(ordersSvc, logg))
				r.Delete("/items", ordercontrollers.RemoveItem(ordersSvc, logg))
				r.Post("/confirm", ordercontrollers.Confirm(ordersSvc, logg))
				r.Post("/status", ordercontrollers.UpdateStatus(ordersSvc, logg))
			})
		})

		r.Route("/external/orders", func(r chi.Router) {
			r.Post("/", externalcontrollers.Ingest(externalSvc, logg))
			r.Route("/{orderId}", func(r chi.Router) {
				r.Put("/", externalcontrollers.Replace(externalSvc, logg))
				r.Patch("/", externalcontrollers.Merge(externalSvc, logg))
				r.Post("/confirm", externalcontrollers.Confirm(externalSvc, logg))
				r.Post("/web-push", externalcontrollers.RecordWebPush(externalSvc, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(catalogSvc, logg))
			r.Get("/sku/{sku}", controllers.GetProductBySKU(catalogSvc, logg))
			r.Get("/{productId}", controllers.GetProduct(catalogSvc, logg))
			r.Post("/{productId}/restock", controllers.RestockProduct(catalogSvc, logg))
		})
		r.Get("/packages/{packageId}", controllers.GetPackage(catalogSvc, logg))

		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", controllers.StartConversation(conversationsSvc, logg))
			r.Get("/lookup", controllers.FindConversation(conversationsSvc, logg))
			r.Get("/{conversationId}", controllers.GetConversation(conversationsSvc, logg))
		})
	})

	return r
}
