package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ecorewards/ecorewards-backend/internal/ai"
	"github.com/ecorewards/ecorewards-backend/internal/audit"
	"github.com/ecorewards/ecorewards-backend/internal/cache"
	"github.com/ecorewards/ecorewards-backend/internal/config"
	"github.com/ecorewards/ecorewards-backend/internal/handler"
	appmw "github.com/ecorewards/ecorewards-backend/internal/middleware"
	"github.com/ecorewards/ecorewards-backend/internal/repository"
	"github.com/ecorewards/ecorewards-backend/internal/service"
	"github.com/ecorewards/ecorewards-backend/internal/storage"
)

type Server struct {
	e      *echo.Echo
	logger *zap.Logger
	sha    string
	build  string
}

func New(cfg *config.Config, db *gorm.DB, logger *zap.Logger, sha, buildTime string) (*Server, error) {
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
			return strings.HasSuffix(u.Hostname(), "vercel.app"), nil
		},
	}))

	ctx := context.Background()

	auditLog := audit.NewNoopLogger()
	if cfg.MongoURI != "" {
		ml, err := audit.NewMongoLogger(ctx, cfg.MongoURI, cfg.MongoDB, logger)
		if err != nil {
			logger.Warn("audit log store unavailable, continuing without it", zap.Error(err))
		} else {
			auditLog = ml
		}
	}

	var taxonomy *cache.TaxonomyCache
	if cfg.RedisAddr != "" {
		tc, err := cache.New(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, continuing without taxonomy cache", zap.Error(err))
		} else {
			taxonomy = tc
		}
	}

	var classifier ai.Classifier
	if cfg.ClassifierMode == "gemini" {
		classifier = ai.NewGeminiClassifier(cfg.GeminiModel, logger)
	} else {
		classifier = ai.NewMockClassifier()
	}

	var uploader *storage.Uploader
	if cfg.StorageBucket != "" {
		up, err := storage.NewUploader(ctx, cfg.StorageBucket, logger)
		if err != nil {
			logger.Warn("storage unavailable, continuing without photo uploads", zap.Error(err))
		} else {
			uploader = up
		}
	}

	wasteTypeRepo := repository.NewWasteTypeRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	userRepo := repository.NewUserRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	recyclingRepo := repository.NewRecyclingRepository(db)
	rewardRepo := repository.NewRewardRepository(db)

	wasteTypeSvc := service.NewWasteTypeService(wasteTypeRepo, taxonomy, logger)
	branchSvc := service.NewBranchService(branchRepo)
	userSvc := service.NewUserService(userRepo, recyclingRepo)
	purchaseSvc := service.NewPurchaseService(purchaseRepo, branchRepo, wasteTypeRepo, logger)
	recyclingSvc := service.NewRecyclingService(recyclingRepo, purchaseRepo, branchRepo, classifier, auditLog, uploader, logger)
	rewardSvc := service.NewRewardService(rewardRepo, userRepo, logger)
	adminSvc := service.NewAdminService(recyclingRepo, branchRepo, userRepo)

	wasteTypeHandler := handler.NewWasteTypeHandler(wasteTypeSvc)
	branchHandler := handler.NewBranchHandler(branchSvc)
	userHandler := handler.NewUserHandler(userSvc)
	purchaseHandler := handler.NewPurchaseHandler(purchaseSvc)
	recyclingHandler := handler.NewRecyclingHandler(recyclingSvc)
	rewardHandler := handler.NewRewardHandler(rewardSvc)
	adminHandler := handler.NewAdminHandler(adminSvc)

	authMw, err := appmw.NewAuthMiddleware(ctx, cfg.FirebaseProjectID, userSvc)
	if err != nil {
		return nil, err
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api/v1")

	api.GET("/waste-types", wasteTypeHandler.List)
	api.GET("/waste-types/tips/:category", wasteTypeHandler.Tips)
	api.GET("/waste-types/:id", wasteTypeHandler.Get)
	api.GET("/branches", branchHandler.List)
	api.GET("/branches/:id", branchHandler.Get)
	api.GET("/rewards", rewardHandler.Catalog)
	api.GET("/rewards/:id", rewardHandler.Get)

	api.GET("/me", userHandler.Me, authMw.RequireAuth)
	api.GET("/me/points", userHandler.Points, authMw.RequireAuth)
	api.GET("/me/stats", userHandler.Stats, authMw.RequireAuth)

	api.POST("/purchases", purchaseHandler.Create, authMw.RequireAuth)
	api.GET("/purchases", purchaseHandler.List, authMw.RequireAuth)
	api.GET("/purchases/:id", purchaseHandler.Get, authMw.RequireAuth)
	api.GET("/purchases/:id/qr", purchaseHandler.GetQR, authMw.RequireAuth)

	api.POST("/recycling/scan-qr", recyclingHandler.ScanQR, authMw.RequireAuth)
	api.POST("/recycling/validate", recyclingHandler.Validate, authMw.RequireAuth)
	api.GET("/recycling/history", recyclingHandler.History, authMw.RequireAuth)
	api.GET("/recycling/:id", recyclingHandler.Get, authMw.RequireAuth)

	api.POST("/rewards/redeem", rewardHandler.Redeem, authMw.RequireAuth)
	api.GET("/rewards/my", rewardHandler.MyRewards, authMw.RequireAuth)
	api.GET("/rewards/my/:id", rewardHandler.GetMyReward, authMw.RequireAuth)
	api.POST("/rewards/my/:id/use", rewardHandler.Use, authMw.RequireAuth)

	api.GET("/admin/dashboard", adminHandler.Dashboard, authMw.RequireAuth, authMw.RequireAdmin)

	return &Server{e: e, logger: logger, sha: sha, build: buildTime}, nil
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
