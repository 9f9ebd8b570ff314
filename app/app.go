package app

import (
	"context"
	"embed"
	"log"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"Hauler/app/services"
	"Hauler/internal/core"
)

//go:embed all:frontend_dist
var assets embed.FS

// App holds the application state and services.
type App struct {
	ctx           context.Context
	copyService   *services.CopyService
	logService    *services.LogService
	systemService *services.SystemService
	jobManager    *core.JobManager
	logger        *log.Logger
}

// NewApp creates a new App instance.
func NewApp() *App {
	logger := log.New(os.Stderr, "[Hauler] ", log.LstdFlags|log.Lshortfile)
	return &App{
		logger: logger,
	}
}

// OnStartup is called when the app starts.
func (a *App) OnStartup(ctx context.Context) {
	a.ctx = ctx

	configService, err := services.NewConfigService(a.logger)
	if err != nil {
		a.logger.Printf("[App] OnStartup: Failed to create config service: %v", err)
		// Continue without config service
	}

	// Wire the frontend into the job event stream.
	a.jobManager.AddEmitter(services.NewWailsEmitter(ctx))

	a.copyService.SetContext(ctx)
	if configService != nil {
		a.copyService.SetConfig(configService)
	}
	a.logService.SetContext(ctx)
	a.systemService.SetContext(ctx)

	a.logger.Printf("[App] OnStartup: Services initialized")
}

// OnShutdown is called when the app is shutting down.
func (a *App) OnShutdown(ctx context.Context) {
	a.logger.Printf("[App] OnShutdown: Shutting down...")

	if a.jobManager != nil {
		if err := a.jobManager.CancelActiveJob(); err != nil {
			a.logger.Printf("[App] OnShutdown: %v", err)
		}
	}
}

// Run starts the Wails application.
func Run() error {
	appInstance := NewApp()

	ctx := context.Background()
	logger := appInstance.logger

	// Pre-initialize services so Wails can generate bindings; contexts are
	// refreshed in OnStartup.
	jobManager := core.NewJobManager(nil)
	copyService := services.NewCopyService(ctx, logger, jobManager)
	logService := services.NewLogService(ctx, logger)
	systemService := services.NewSystemService(ctx, logger)

	appInstance.jobManager = jobManager
	appInstance.copyService = copyService
	appInstance.logService = logService
	appInstance.systemService = systemService

	return wails.Run(&options.App{
		Title:  "Hauler",
		Width:  760,
		Height: 520,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  appInstance.OnStartup,
		OnShutdown: appInstance.OnShutdown,
		Bind: []interface{}{
			copyService,
			logService,
			systemService,
		},
	})
}
