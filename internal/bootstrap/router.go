package bootstrap

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/BatStateU-CoE/pap-tracker-backend/internal/api/http"
	apimiddleware "github.com/BatStateU-CoE/pap-tracker-backend/internal/api/http/middleware"
	authhttp "github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/http"
	authmiddleware "github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/middleware"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/repository"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/service"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/auth/session"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/gateway"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/ownership"
	"github.com/BatStateU-CoE/pap-tracker-backend/internal/paps"
	papshttp "github.com/BatStateU-CoE/pap-tracker-backend/internal/paps/http"
	taxonomyhttp "github.com/BatStateU-CoE/pap-tracker-backend/internal/taxonomy/http"
	"github.com/BatStateU-CoE/pap-tracker-backend/config"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	Config      *config.Config
	DB          *pgxpool.Pool
	SQL         *sql.DB
	Redis       *redis.Client
}

// Wiring holds the long-lived components the router is built around, so
// the caller can reach them for background jobs and shutdown.
type Wiring struct {
	Router   *gin.Engine
	Hub      *paps.Hub
	Feed     *gateway.RedisChangeFeed
	Sessions *session.Store
}

// BuildRouter wires repositories, services, and handlers into a gin
// engine. The ownership resolver's admin lookup is the auth service's
// session-validated admin listing; the hub hands each identity its own
// collection manager.
func BuildRouter(dep RouterDeps) *Wiring {
	r := gin.Default()

	r.Use(apimiddleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Session-Email", "X-Request-Id"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	sessions := session.NewStore(dep.Redis,
		dep.Config.Session.Secret,
		dep.Config.Session.TTL,
		dep.Config.Session.LockoutAttempts,
		dep.Config.Session.LockoutWindow)

	userRepo := repository.NewUserRepo(dep.DB)
	allowRepo := repository.NewAllowlistRepo(dep.DB)
	authSvc := service.NewAuthService(userRepo, allowRepo, sessions)

	feed := gateway.NewRedisChangeFeed(dep.Redis)
	store := gateway.NewSQLRowStore(dep.SQL, feed)
	resolver := ownership.NewResolver(authSvc.AdminEmails)
	hub := paps.NewHub(store, feed, resolver)

	api := r.Group("/api/v1")

	authHandler := authhttp.NewHandler(authSvc, hub)
	authHandler.Register(api.Group("/auth"), sessions)

	authed := api.Group("")
	authed.Use(authmiddleware.RequireSession(sessions))

	papsHandler := papshttp.NewHandler(hub)
	papsHandler.Register(authed.Group("/paps"))

	taxonomyhttp.NewHandler().Register(authed.Group("/taxonomy"))

	return &Wiring{Router: r, Hub: hub, Feed: feed, Sessions: sessions}
}
