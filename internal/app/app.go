// Package app wires the state store, the offline worker and the HTTP routes
// into one application.
package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"cakebook/internal/config"
	apperrors "cakebook/internal/errors"
	"cakebook/internal/handlers"
	"cakebook/internal/logger"
	"cakebook/internal/middleware"
	"cakebook/internal/offline"
	"cakebook/internal/seed"
	"cakebook/internal/services"
	"cakebook/internal/storage"
)

// App holds the running application.
type App struct {
	Store  services.StateServicer
	Audit  services.AuditServicer
	Worker *offline.Worker
	Router *gin.Engine
}

// Options configures New.
type Options struct {
	Config *config.Config
	DB     *gorm.DB
	// Seed overrides the embedded catalog used on first launch.
	Seed *seed.Dataset

	// Client is the worker's network client. Nil means a plain *http.Client
	// with Config.UpstreamTimeout.
	Client         offline.Doer
	TracerProvider trace.TracerProvider
	// SecretCost is the bcrypt cost for the editor secret. Zero means the default.
	SecretCost int
}

// New builds the store, the audit log, the offline worker and the router.
// The worker is left in the parsed state; call Start to install it.
func New(opts Options) (*App, error) {
	cfg := opts.Config

	store, err := services.NewStateService(storage.NewSnapshotRepository(opts.DB), services.StateOptions{
		StorageKey:       cfg.StorageKey,
		EditorSecret:     cfg.EditorSecret,
		PlaceholderImage: cfg.PlaceholderImage,
		Seed:             opts.Seed,
		SecretCost:       opts.SecretCost,

		RequireListedCategory: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create state store: %w", err)
	}

	worker, err := offline.NewWorker(offline.NewStorage(opts.DB), offline.Options{
		Origin:         cfg.ShellOrigin,
		CacheName:      cfg.CacheName,
		OfflinePage:    cfg.OfflinePage,
		Precache:       cfg.Precache,
		Client:         opts.Client,
		Timeout:        cfg.UpstreamTimeout,
		TracerProvider: opts.TracerProvider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create offline worker: %w", err)
	}

	audit := services.NewAuditService(opts.DB)
	shareURL := strings.TrimRight(cfg.ShellOrigin, "/") + "/"

	return &App{
		Store:  store,
		Audit:  audit,
		Worker: worker,
		Router: NewRouter(store, audit, worker, shareURL),
	}, nil
}

// Start installs and activates the offline worker. A failed precache is
// logged and the worker is activated anyway.
func (a *App) Start(ctx context.Context) error {
	if err := a.Worker.Install(ctx); err != nil {
		logger.Get().Warnw("offline worker installed without a complete shell", "error", err)
	}
	if err := a.Worker.Activate(ctx); err != nil {
		return fmt.Errorf("failed to activate offline worker: %w", err)
	}
	return nil
}

// Shutdown stops the worker and waits for pending cache writes.
func (a *App) Shutdown() {
	a.Worker.Terminate()
	a.Worker.Wait()
}

// NewRouter registers every API route. Paths outside /api and /swagger are
// forwarded to the shell through the offline worker.
func NewRouter(store services.StateServicer, audit services.AuditServicer, worker *offline.Worker, shareURL string) *gin.Engine {
	stateHandler := handlers.NewStateHandler(store)
	recipeHandler := handlers.NewRecipeHandler(store, audit, shareURL)
	categoryHandler := handlers.NewCategoryHandler(store, audit)
	editorHandler := handlers.NewEditorHandler(store, audit)
	workerHandler := handlers.NewWorkerHandler(worker)
	auditHandler := handlers.NewAuditHandler(audit)

	router := gin.New()
	// Category names travel in the path; route on the escaped form so a
	// stored name containing %2F still reaches /categories/:name.
	router.UseRawPath = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "worker": worker.State().String()})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	v1.GET("/state", stateHandler.GetState)
	v1.GET("/stats", stateHandler.GetStats)
	v1.PUT("/state/category", stateHandler.SetCategoryFilter)
	v1.PUT("/state/search", stateHandler.SetSearchTerm)
	v1.POST("/state/theme", stateHandler.ToggleTheme)

	v1.GET("/recipes", recipeHandler.ListRecipes)
	v1.GET("/recipes/search", recipeHandler.SearchRecipes)
	v1.GET("/recipes/favorites", recipeHandler.FavoriteRecipes)
	v1.GET("/recipes/:id", recipeHandler.GetRecipe)
	v1.GET("/recipes/:id/share", recipeHandler.ShareRecipe)
	v1.POST("/recipes/:id/favorite", recipeHandler.ToggleFavorite)

	v1.GET("/categories", categoryHandler.ListCategories)

	v1.GET("/editor", editorHandler.Status)
	v1.POST("/editor/login", editorHandler.Login)
	v1.POST("/editor/logout", editorHandler.Logout)

	v1.POST("/sw/message", workerHandler.PostMessage)
	v1.GET("/sw/status", workerHandler.Status)

	// Editor routes
	editor := v1.Group("/")
	editor.Use(middleware.EditorMiddleware(store))

	editor.POST("/recipes", recipeHandler.CreateRecipe)
	editor.PUT("/recipes/:id", recipeHandler.UpdateRecipe)
	editor.DELETE("/recipes/:id", recipeHandler.DeleteRecipe)

	editor.POST("/categories", categoryHandler.CreateCategory)
	editor.PUT("/categories/:name", categoryHandler.RenameCategory)
	editor.DELETE("/categories/:name", categoryHandler.DeleteCategory)

	editor.GET("/audit-logs", auditHandler.ListAuditLogs)

	// App shell
	proxy := offline.NewProxy(worker)
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(apperrors.ErrNotFound.StatusCode, gin.H{"error": gin.H{
				"code":    apperrors.ErrNotFound.Code,
				"message": apperrors.ErrNotFound.Message,
			}})
			return
		}
		proxy.ServeHTTP(c.Writer, c.Request)
	})

	return router
}
