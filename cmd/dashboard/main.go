package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/mbecker-dev/study-dashboard/internal/console"
	"github.com/mbecker-dev/study-dashboard/internal/repository"
	"github.com/mbecker-dev/study-dashboard/internal/service"
	"github.com/mbecker-dev/study-dashboard/pkg/config"
	"github.com/mbecker-dev/study-dashboard/pkg/logger"
	"github.com/mbecker-dev/study-dashboard/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	store, err := storage.NewFileStore(cfg.Exports.Dir)
	if err != nil {
		logr.Sugar().Fatalw("storage init failed", "error", err)
	}

	validate := validator.New()
	repo := repository.NewJSONProgramRepository(cfg.Data.File, store, validate, logr)

	dashboard := service.NewDashboardService(service.DashboardServiceConfig{
		TargetGrade:   cfg.Dashboard.TargetGrade,
		HorizonDays:   cfg.Dashboard.HorizonDays,
		CriticalLimit: cfg.Dashboard.CriticalLimit,
	}, logr)
	planner := service.NewPlannerService(validate, logr)
	exports := service.NewExportService(store, logr, nil, nil)

	view := console.NewView(os.Stdin, os.Stdout)
	controller := console.NewController(repo, dashboard, planner, exports, view, logr)

	logr.Sugar().Infow("dashboard starting", "data", cfg.Data.File, "env", cfg.Env)
	if err := controller.Run(context.Background()); err != nil {
		logr.Sugar().Fatalw("session failed", "error", err)
	}
}
