package server

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stagetrade/stagetrade-backend/internal/handler"
	"github.com/stagetrade/stagetrade-backend/internal/media"
	appmw "github.com/stagetrade/stagetrade-backend/internal/middleware"
	"github.com/stagetrade/stagetrade-backend/internal/moderation"
	"github.com/stagetrade/stagetrade-backend/internal/push"
	"github.com/stagetrade/stagetrade-backend/internal/repository"
	"github.com/stagetrade/stagetrade-backend/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	e     *echo.Echo
	repos []interface{ SetDB(*gorm.DB) }
	sha   string
	build string
}

func New(db *gorm.DB, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			host := u.Hostname()
			if strings.HasSuffix(host, "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	ctx := context.Background()

	listingRepo := repository.NewListingRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	pushRepo := repository.NewPushRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	connRepo := repository.NewConnectionRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	revenueRepo := repository.NewUserRevenueRepository(db)

	notifSvc := service.NewNotificationService(notifRepo)
	revenueSvc := service.NewRevenueService(revenueRepo)

	var scorer service.BotScorer
	if os.Getenv("GEMINI_API_KEY") != "" {
		scorer = moderation.NewScoreClient(nil)
	} else {
		log.Printf("[server] GEMINI_API_KEY not set, listing moderation disabled")
	}
	listingSvc := service.NewListingService(listingRepo, scorer, notifSvc)
	connSvc := service.NewConnectionService(connRepo, listingRepo, notifSvc)
	purchaseSvc := service.NewPurchaseService(purchaseRepo, listingRepo, connRepo, revenueSvc, notifSvc)

	// Channels stay nil-interfaced when unconfigured so the fan-out job can
	// report itself skipped instead of failing every run.
	var tokens service.TokenSender
	if ch, err := push.NewFCMChannel(ctx); err != nil {
		log.Printf("[server] fcm channel disabled: %v", err)
	} else {
		tokens = ch
	}
	var web service.SubscriptionSender
	vapidKey := ""
	if ch, err := push.NewWebPushChannel(); err != nil {
		log.Printf("[server] web push channel disabled: %v", err)
	} else {
		web = ch
		vapidKey = ch.PublicKey()
	}
	fanout := service.NewPushFanoutService(notifRepo, pushRepo, alertRepo, listingRepo, tokens, web)

	var mediaStore *media.Store
	if ms, err := media.NewStore(ctx); err != nil {
		log.Printf("[server] media store disabled: %v", err)
	} else {
		mediaStore = ms
	}

	listingHandler := handler.NewListingHandler(listingSvc, mediaStore)
	connHandler := handler.NewConnectionHandler(connSvc)
	purchaseHandler := handler.NewPurchaseHandler(purchaseSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc)
	pushHandler := handler.NewPushHandler(pushRepo, alertRepo, vapidKey)
	revenueHandler := handler.NewRevenueHandler(revenueSvc)
	cronHandler := handler.NewCronHandler(fanout, os.Getenv("CRON_SECRET"))

	authMw, err := appmw.NewAuthMiddleware(ctx)
	if err != nil {
		log.Printf("[server] firebase auth disabled: %v", err)
		authMw = nil
	}
	profileHandler := handler.NewProfileHandler(profileRepo, nil)
	if authMw != nil {
		profileHandler = handler.NewProfileHandler(profileRepo, authMw.Client())
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")

	// Scheduler triggers authenticate with the shared secret, not Firebase.
	api.POST("/cron/process", cronHandler.ProcessPush)
	api.POST("/notifications/process-push", cronHandler.ProcessPush)

	api.GET("/listings", listingHandler.List)
	api.GET("/listings/:id", listingHandler.Get)
	api.GET("/push/vapid-key", pushHandler.VAPIDKey)

	if authMw != nil {
		auth := authMw.RequireAuth
		api.POST("/listings", listingHandler.Create, auth)
		api.PUT("/listings/:id", listingHandler.Update, auth)
		api.DELETE("/listings/:id", listingHandler.Remove, auth)
		api.POST("/listings/:id/photo", listingHandler.UploadPhoto, auth)
		api.GET("/me/listings", listingHandler.ListMine, auth)
		api.POST("/listings/:id/connections", connHandler.CreateFromListing, auth)
		api.POST("/listings/:id/purchase", purchaseHandler.PurchaseListing, auth)
		api.GET("/listings/:id/purchase", purchaseHandler.GetByListing, auth)
		api.GET("/connections", connHandler.List, auth)
		api.GET("/connections/:id", connHandler.Get, auth)
		api.GET("/connections/:id/messages", connHandler.ListMessages, auth)
		api.POST("/connections/:id/messages", connHandler.CreateMessage, auth)
		api.POST("/connections/:id/end", connHandler.End, auth)
		api.POST("/purchases/:id/ship", purchaseHandler.MarkShipped, auth)
		api.POST("/purchases/:id/receive", purchaseHandler.MarkDelivered, auth)
		api.POST("/purchases/:id/cancel", purchaseHandler.Cancel, auth)
		api.GET("/me/purchases", purchaseHandler.ListMine, auth)
		api.GET("/me/sales", purchaseHandler.ListSales, auth)
		api.GET("/notifications", notifHandler.List, auth)
		api.POST("/notifications/read-all", notifHandler.MarkAllRead, auth)
		api.POST("/push/tokens", pushHandler.RegisterToken, auth)
		api.DELETE("/push/tokens", pushHandler.UnregisterToken, auth)
		api.POST("/push/subscriptions", pushHandler.Subscribe, auth)
		api.DELETE("/push/subscriptions", pushHandler.Unsubscribe, auth)
		api.GET("/push/preferences", pushHandler.GetPreferences, auth)
		api.PUT("/push/preferences", pushHandler.PutPreferences, auth)
		api.GET("/push/alert-preference", pushHandler.GetAlertPreference, auth)
		api.PUT("/push/alert-preference", pushHandler.PutAlertPreference, auth)
		api.GET("/me/profile", profileHandler.GetMe, auth)
		api.PUT("/me/profile", profileHandler.UpsertMe, auth)
		api.GET("/users/:uid/public", profileHandler.GetPublic)
		api.GET("/me/revenue", revenueHandler.Get, auth)
		api.POST("/me/revenue/withdraw", revenueHandler.Withdraw, auth)
		api.GET("/admin/cron-status", cronHandler.CronStatus, auth, authMw.RequireAdmin(profileRepo))
	}

	repos := []interface{ SetDB(*gorm.DB) }{
		listingRepo, notifRepo, pushRepo, alertRepo,
		connRepo, purchaseRepo, profileRepo, revenueRepo,
	}

	return &Server{e: e, repos: repos, sha: sha, build: buildTime}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

// SetDB hands the late-connected database to every repository. The server
// starts before the connection is up so health checks pass during deploys.
func (s *Server) SetDB(db *gorm.DB) {
	for _, r := range s.repos {
		r.SetDB(db)
	}
}
