// cmd/analytics/main.go
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/config"
	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository/mongodb"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/pharmacare/backend-go/internal/service"
	"github.com/andresuchdata/pharmacare/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Postgres connection string for alert history (defaults to DB_* settings)",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)

	app := &cli.App{
		Name:  "analytics",
		Usage: "Pharmacist analytics and inventory alert maintenance",
		Commands: []*cli.Command{
			{
				Name:  "report",
				Usage: "Print the analytics report of a pharmacist as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "pharmacist",
						Usage:    "Pharmacist account id or email",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error { return runReport(c, cfg) },
			},
			{
				Name:  "sweep",
				Usage: "Run the inventory alert sweep once",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Pharmacists swept concurrently",
						Value: cfg.Jobs.SweepWorkers,
					},
				},
				Action: func(c *cli.Context) error { return runSweep(c, cfg) },
			},
			{
				Name:  "migrate",
				Usage: "Apply the alert history schema to Postgres",
				Flags: []cli.Flag{newDBURLFlag()},
				Action: func(c *cli.Context) error {
					db, err := openPostgres(c, cfg)
					if err != nil {
						return err
					}
					defer db.Close()
					if err := db.Migrate(c.Context); err != nil {
						return err
					}
					log.Println("alert history schema is up to date")
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func connectMongo(ctx context.Context, cfg *config.Config) (*mongodb.Store, func(), error) {
	store, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = store.Close(closeCtx)
	}
	return store, closeFn, nil
}

// openPostgres opens the alert history database through the pgx stdlib driver
func openPostgres(c *cli.Context, cfg *config.Config) (*postgres.DB, error) {
	dsn := c.String("db-url")
	if dsn == "" {
		dsn = postgres.DSN(&cfg.Database)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return postgres.Wrap(sqlx.NewDb(db, "pgx")), nil
}

func runReport(c *cli.Context, cfg *config.Config) error {
	store, closeStore, err := connectMongo(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	accounts := mongodb.NewAccountRepository(store.DB)
	pharmacist, err := findPharmacist(c.Context, accounts, c.String("pharmacist"))
	if err != nil {
		return err
	}

	analyticsService := service.NewAnalyticsService(
		mongodb.NewOrderRepository(store.DB),
		mongodb.NewMedicineRepository(store.DB),
		nil,
		service.NewClock(cfg.Server.Location()),
	)
	report, err := analyticsService.PharmacistReport(c.Context, pharmacist.ID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func findPharmacist(ctx context.Context, accounts repository.AccountRepository, ref string) (*domain.Account, error) {
	ref = strings.TrimSpace(ref)
	var (
		account *domain.Account
		err     error
	)
	if strings.Contains(ref, "@") {
		account, err = accounts.FindByEmail(ctx, strings.ToLower(ref))
	} else {
		account, err = accounts.FindByID(ctx, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("find pharmacist %s: %w", ref, err)
	}
	if !account.IsPharmacist() {
		return nil, fmt.Errorf("%s is not a pharmacist account", ref)
	}
	return account, nil
}

func runSweep(c *cli.Context, cfg *config.Config) error {
	store, closeStore, err := connectMongo(c.Context, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	snapshots := postgres.NewNoopAlertSnapshotRepository()
	if cfg.Database.Enabled || c.String("db-url") != "" {
		db, err := openPostgres(c, cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		snapshots = postgres.NewAlertSnapshotRepository(db)
	}

	sweeper := service.NewAlertSweeper(
		mongodb.NewAccountRepository(store.DB),
		mongodb.NewMedicineRepository(store.DB),
		snapshots,
		service.NewNotificationService(mongodb.NewNotificationRepository(store.DB)),
		c.Int("workers"),
		service.NewClock(cfg.Server.Location()),
	)

	start := time.Now()
	result, err := sweeper.Run(c.Context)
	if err != nil {
		return err
	}
	log.Printf("swept %d pharmacists in %v: %d notifications, %d snapshots, %d failures",
		result.Pharmacists, time.Since(start), result.Notifications, result.Snapshots, result.Failures)
	return nil
}
