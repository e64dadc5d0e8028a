// Command schemafleet manages tenant schemas: provisioning tenants, running
// migrations from a directory of SQL files, rolling them back, and reporting
// per-tenant migration status.
//
// Usage:
//
//	schemafleet [-config config.yaml] [-migrations ./migrations] <command> [args]
//
// Commands:
//
//	create-tenant -name NAME -subdomain SUB -email EMAIL [-phone PHONE] [-plan PLAN]
//	migrate TENANT
//	migrate-all
//	rollback TENANT [VERSION]
//	status TENANT
//	list
//
// TENANT may be a tenant ID or a subdomain. Configuration comes from an
// optional YAML file plus environment variables (DATABASE_URL, METRICS_ADDR,
// LOG_LEVEL, FLEET_WORKERS).
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/getpup/schemafleet"
	"github.com/getpup/schemafleet/engine"
	"github.com/getpup/schemafleet/internal/config"
	"github.com/getpup/schemafleet/metrics"
	"github.com/getpup/schemafleet/store/postgres"
)

func main() {
	var (
		configPath    = flag.String("config", "", "Path to YAML config file (optional)")
		migrationsDir = flag.String("migrations", "migrations", "Directory of versioned SQL migration files")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *migrationsDir, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}

func run(cfg *config.Config, logger *zap.Logger, migrationsDir string, args []string) error {
	ctx := context.Background()

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	collector := metrics.NewCollector()
	if cfg.Metrics.Enabled {
		srv := metrics.NewServer(cfg.Metrics.Addr)
		srv.Start()
		defer srv.Shutdown(ctx)
		logger.Info("metrics endpoint listening", zap.String("addr", cfg.Metrics.Addr))
	}

	pgStore := postgres.New(db)

	tenants := engine.NewTenantRegistry(engine.TenantRegistryConfig{
		Store:    pgStore,
		CacheTTL: cfg.Provision.CacheTTL,
		Logger:   logger,
	})

	command, args := args[0], args[1:]
	switch command {
	case "create-tenant":
		return createTenant(ctx, cfg, logger, collector, pgStore, args)
	case "migrate":
		if len(args) != 1 {
			return fmt.Errorf("usage: schemafleet migrate TENANT")
		}
		runner, err := buildRunner(cfg, logger, collector, pgStore, tenants, migrationsDir)
		if err != nil {
			return err
		}
		applied, err := runner.RunPending(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Applied %d migration(s)\n", applied)
		return nil
	case "migrate-all":
		runner, err := buildRunner(cfg, logger, collector, pgStore, tenants, migrationsDir)
		if err != nil {
			return err
		}
		fleet := engine.NewFleetRunner(engine.FleetConfig{
			Store:   pgStore,
			Runner:  runner,
			Workers: cfg.Migration.FleetWorkers,
			Logger:  logger,
			Metrics: collector,
		})
		report, err := fleet.RunAll(ctx)
		if err != nil {
			return err
		}
		printFleetReport(report)
		if len(report.Failed()) > 0 {
			return fmt.Errorf("%d tenant(s) failed", len(report.Failed()))
		}
		return nil
	case "rollback":
		if len(args) < 1 || len(args) > 2 {
			return fmt.Errorf("usage: schemafleet rollback TENANT [VERSION]")
		}
		registry, err := loadRegistry(migrationsDir)
		if err != nil {
			return err
		}
		coordinator := engine.NewRollbackCoordinator(engine.RollbackConfig{
			Registry:         registry,
			Tenants:          tenants,
			Ledger:           pgStore,
			Executor:         pgStore.Executor(),
			StatementTimeout: cfg.Migration.StatementTimeout,
			Logger:           logger,
			Metrics:          collector,
		})
		version := ""
		if len(args) == 2 {
			version = args[1]
		}
		if err := coordinator.Rollback(ctx, args[0], version); err != nil {
			return err
		}
		fmt.Println("Rolled back")
		return nil
	case "status":
		if len(args) != 1 {
			return fmt.Errorf("usage: schemafleet status TENANT")
		}
		registry, err := loadRegistry(migrationsDir)
		if err != nil {
			return err
		}
		reporter := engine.NewStatusReporter(registry, tenants, pgStore)
		report, err := reporter.Status(ctx, args[0])
		if err != nil {
			return err
		}
		printStatus(report)
		return nil
	case "list":
		active, err := pgStore.ListActiveTenants(ctx)
		if err != nil {
			return err
		}
		for _, tenant := range active {
			fmt.Printf("%s\t%s\t%s\t%s\n", tenant.ID, tenant.Subdomain, tenant.Schema, tenant.Status)
		}
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func buildRunner(cfg *config.Config, logger *zap.Logger, collector *metrics.Collector,
	pgStore *postgres.Store, tenants *engine.TenantRegistry, migrationsDir string) (*engine.Runner, error) {

	registry, err := loadRegistry(migrationsDir)
	if err != nil {
		return nil, err
	}

	return engine.NewRunner(engine.RunnerConfig{
		Registry:         registry,
		Tenants:          tenants,
		Ledger:           pgStore,
		Executor:         pgStore.Executor(),
		StatementTimeout: cfg.Migration.StatementTimeout,
		Logger:           logger,
		Metrics:          collector,
	}), nil
}

func createTenant(ctx context.Context, cfg *config.Config, logger *zap.Logger,
	collector *metrics.Collector, pgStore *postgres.Store, args []string) error {

	fs := flag.NewFlagSet("create-tenant", flag.ExitOnError)
	var (
		name      = fs.String("name", "", "Tenant display name (required)")
		subdomain = fs.String("subdomain", "", "Tenant subdomain (required)")
		email     = fs.String("email", "", "Contact email (required)")
		phone     = fs.String("phone", "", "Contact phone")
		plan      = fs.String("plan", "", "Subscription plan")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	provisioner := engine.NewProvisioner(engine.ProvisionerConfig{
		Store:       pgStore,
		TrialPeriod: cfg.Provision.TrialPeriod,
		DefaultPlan: cfg.Provision.DefaultPlan,
		Logger:      logger,
		Metrics:     collector,
	})

	tenant, err := provisioner.CreateTenant(ctx, engine.CreateTenantParams{
		Name:         *name,
		Subdomain:    *subdomain,
		ContactEmail: *email,
		ContactPhone: *phone,
		Plan:         *plan,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created tenant %s\n", tenant.ID)
	fmt.Printf("  subdomain: %s\n", tenant.Subdomain)
	fmt.Printf("  schema:    %s\n", tenant.Schema)
	fmt.Printf("  plan:      %s\n", tenant.Plan)
	fmt.Printf("  trial to:  %s\n", tenant.TrialEndsAt.Format("2006-01-02"))
	return nil
}

func printFleetReport(report schemafleet.FleetReport) {
	fmt.Printf("Fleet sweep: %d tenant(s), %d migration(s) applied\n",
		len(report.Outcomes), report.Applied())
	for _, outcome := range report.Outcomes {
		if outcome.Err != nil {
			fmt.Printf("  %s: FAILED after %d applied: %v\n", outcome.TenantID, outcome.Applied, outcome.Err)
		} else if outcome.Applied > 0 {
			fmt.Printf("  %s: applied %d\n", outcome.TenantID, outcome.Applied)
		}
	}
}

func printStatus(report schemafleet.StatusReport) {
	fmt.Printf("Tenant %s: %d/%d executed\n", report.TenantID, len(report.Executed), report.Total)
	for _, v := range report.Executed {
		fmt.Printf("  [x] %s\n", v)
	}
	for _, v := range report.Pending {
		fmt.Printf("  [ ] %s\n", v)
	}
}
