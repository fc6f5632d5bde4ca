package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ogurasousui/codex-employee-reconcile/internal/adapters/repository/postgres"
	"github.com/ogurasousui/codex-employee-reconcile/internal/core/employee"
	"github.com/ogurasousui/codex-employee-reconcile/internal/core/importer"
	"github.com/ogurasousui/codex-employee-reconcile/internal/platform/config"
	pg "github.com/ogurasousui/codex-employee-reconcile/internal/platform/db/postgres"
	"github.com/ogurasousui/codex-employee-reconcile/internal/platform/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
		filePath   = flag.String("file", "", "path to the CSV file to import")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(log)

	if *filePath == "" {
		log.Error("missing -file flag")
		os.Exit(1)
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Error("failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	repo := postgres.NewEmployeeRepository(dbPool)
	txManager := pg.NewTransactionManager(dbPool)
	svc := employee.NewService(repo, nil, txManager, employee.Defaults{
		Position:        cfg.Reconcile.DefaultPosition,
		Department:      cfg.Reconcile.DefaultDepartment,
		Address:         cfg.Reconcile.DefaultAddress,
		Phone:           cfg.Reconcile.DefaultPhone,
		EducationLevel:  cfg.Reconcile.DefaultEducationLevel,
		Profile:         cfg.Reconcile.DefaultProfile,
		Departments:     cfg.Reconcile.Departments,
		Positions:       cfg.Reconcile.Positions,
		EducationLevels: cfg.Reconcile.EducationLevels,
	})

	f, err := os.Open(*filePath)
	if err != nil {
		log.Error("failed to open import file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer f.Close()

	summary, err := importer.New(svc, log).ImportCSV(ctx, f)
	if err != nil {
		log.Error("import aborted",
			slog.String("error", err.Error()),
			slog.Int("created", summary.Created),
			slog.Int("merged", summary.Merged),
		)
		os.Exit(1)
	}

	log.Info("import completed",
		slog.String("file", *filePath),
		slog.Int("created", summary.Created),
		slog.Int("merged", summary.Merged),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
	)
}
