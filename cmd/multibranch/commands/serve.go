package commands

import (
	"context"
	"log"
	"time"

	"github.com/haatos/freestyle-multibranch/internal"
	"github.com/haatos/freestyle-multibranch/internal/handler"
	"github.com/haatos/freestyle-multibranch/internal/service"
	"github.com/haatos/freestyle-multibranch/internal/settings"
	"github.com/haatos/freestyle-multibranch/internal/steps"
	"github.com/haatos/freestyle-multibranch/internal/store"
	"github.com/haatos/freestyle-multibranch/internal/workspace"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	svc := openServices()
	defer svc.Close()

	ctx := context.Background()
	if _, err := svc.nodes.GetNode(ctx, internal.ControllerNodeName); err != nil {
		if _, err := svc.nodeStore.CreateControllerNode(ctx, settings.Settings.Workspace); err != nil {
			log.Fatal("err creating controller node: ", err)
		}
	}

	workspaces := workspace.NewList()
	builds := service.NewBuildService(
		svc.projects,
		svc.nodes,
		store.NewBuildSQLiteStore(svc.rdb, svc.rwdb),
		workspaces,
		time.Duration(internal.Config.LeaseWait),
	)
	cleaner := service.NewWorkspaceCleaner(svc.projects, workspaces, settings.Settings.Workspace)

	scheduler := service.NewScheduler()
	defer scheduler.Shutdown()
	if _, err := service.ScheduleWorkspaceCleanup(
		scheduler,
		internal.Config.CleanupHour,
		cleaner.Cleanup,
	); err != nil {
		log.Fatal("err scheduling workspace cleanup: ", err)
	}
	scheduler.Start()

	e := setupEcho()
	g := e.Group("/api")
	handler.SetupAppRoutes(g, steps.Default, configPath)
	handler.SetupProjectRoutes(g, svc.projects, svc.nodes, steps.Default)
	handler.SetupBuildRoutes(g, builds)
	handler.SetupNodeRoutes(g, svc.nodes)

	log.Printf("serving on %s\n", settings.Settings.BaseURL())
	internal.GracefulShutdown(e, settings.Settings.Port)
	return nil
}

func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handler.ErrorHandler
	e.Use(
		middleware.Recover(),
		middleware.CORSWithConfig(internal.GetCORSConfig()),
		middleware.RateLimiterWithConfig(internal.GetRateLimiterConfig()),
	)
	return e
}
