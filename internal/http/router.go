package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/libraryhub/internal/http/handlers"
	"github.com/geocoder89/libraryhub/internal/http/middlewares"
	"github.com/geocoder89/libraryhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps are the services the router mounts. Prom and Gatherer may be nil.
type Deps struct {
	Accounts handlers.AccountService
	Catalog  handlers.CatalogService
	Loans    handlers.LoanService
	Auth     *middlewares.AuthMiddleware
	Checks   map[string]handlers.Pinger

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

type RouterConfig struct {
	Env                string
	ServiceName        string
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	LoginRateLimit     int
	LoginRateWindow    time.Duration
}

func NewRouter(log *slog.Logger, deps Deps, cfg RouterConfig) *gin.Engine {
	if cfg.Env != "dev" && cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(middlewares.RequestLogger(log))
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	if cfg.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	}
	r.Use(middlewares.RequireJSON())
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health
	h := handlers.NewHealthHandler(deps.Checks)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	users := handlers.NewUsersHandler(deps.Accounts)
	books := handlers.NewBooksHandler(deps.Catalog)
	loans := handlers.NewLoansHandler(deps.Loans)

	requireUser := deps.Auth.RequireUser()
	requireAdmin := deps.Auth.RequireAdmin()

	loginLimiter := middlewares.NewRateLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)

	r.GET("/install", users.Install)

	// users
	r.POST("/usuarios", users.Register)
	r.POST("/usuarios/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), users.Login)
	r.PUT("/usuarios", requireUser, users.UpdateSelf)

	adminUsers := r.Group("/usuarios", requireAdmin)
	{
		adminUsers.GET("", users.List)
		adminUsers.POST("/admin", users.CreateAdmin)
		adminUsers.PUT("/admin/:id", users.UpdateByAdmin)
		adminUsers.DELETE("/admin/:id", users.DeleteByAdmin)
	}

	// books
	r.GET("/livros", requireUser, books.List)
	r.GET("/livros/disponiveis", requireUser, books.ListAvailable)

	adminBooks := r.Group("/livros", requireAdmin)
	{
		adminBooks.POST("", books.Create)
		adminBooks.PUT("/:id", books.Update)
		adminBooks.DELETE("/:id", books.Delete)
	}

	// loans
	r.GET("/emprestimos/meus", requireUser, loans.ListMine)
	r.DELETE("/emprestimos/meus/:id", requireUser, loans.DeleteMine)

	adminLoans := r.Group("/emprestimos", requireAdmin)
	{
		adminLoans.POST("", loans.Create)
		adminLoans.GET("", loans.List)
		adminLoans.DELETE("/:id", loans.Delete)
	}

	return r
}
