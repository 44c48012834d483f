package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/config"
	"github.com/andresuchdata/pharmacare/backend-go/internal/repository/mongodb"
	"github.com/andresuchdata/pharmacare/backend-go/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type storeKey struct{}

func newMongoURIFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "mongo-uri",
		Usage:   "MongoDB connection string",
		EnvVars: []string{"MONGO_URI"},
	}
}

func newDatabaseFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "database",
		Usage:   "MongoDB database name",
		EnvVars: []string{"MONGO_DATABASE"},
	}
}

func initStore(c *cli.Context) error {
	cfg := config.Load().Mongo
	if uri := c.String("mongo-uri"); uri != "" {
		cfg.URI = uri
	}
	if name := c.String("database"); name != "" {
		cfg.Database = name
	}

	store, err := mongodb.Connect(c.Context, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := mongodb.EnsureIndexes(c.Context, store.DB); err != nil {
		_ = store.Close(context.Background())
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	c.Context = context.WithValue(c.Context, storeKey{}, store)
	return nil
}

func closeStore(c *cli.Context) error {
	if store, ok := c.Context.Value(storeKey{}).(*mongodb.Store); ok && store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return store.Close(ctx)
	}
	return nil
}

func storeFrom(c *cli.Context) (*mongodb.Store, error) {
	store, ok := c.Context.Value(storeKey{}).(*mongodb.Store)
	if !ok || store == nil {
		return nil, fmt.Errorf("mongo store not initialised")
	}
	return store, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}
	cfg := config.Load()
	logger.Setup(cfg.Server.Mode, cfg.Server.LogLevel)

	storeFlags := []cli.Flag{newMongoURIFlag(), newDatabaseFlag()}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the PharmaCare database",
		Commands: []*cli.Command{
			{
				Name:  "demo",
				Usage: "Seed demo accounts, inventory and order history",
				Flags: append(storeFlags,
					&cli.StringFlag{
						Name:    "password",
						Usage:   "Password given to every demo account",
						Value:   "password123",
						EnvVars: []string{"SEED_PASSWORD"},
					},
					&cli.IntFlag{
						Name:  "days",
						Usage: "How many days of order history to generate",
						Value: 14,
					},
					&cli.BoolFlag{
						Name:  "reset",
						Usage: "Drop the database before seeding",
					},
				),
				Before: initStore,
				After:  closeStore,
				Action: runDemoSeed,
			},
			{
				Name:  "catalog",
				Usage: "Import a medicine catalog CSV into a pharmacist's inventory",
				Flags: append(storeFlags,
					&cli.StringFlag{
						Name:     "pharmacist",
						Usage:    "Email of the pharmacist owning the inventory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "file",
						Usage:   "CSV file with name,batch_number,category,manufacturer,stock,reorder_level,price,expiry_date",
						Value:   "./data/seeds/medicines.csv",
						EnvVars: []string{"SEED_CATALOG_FILE"},
					},
				),
				Before: initStore,
				After:  closeStore,
				Action: runCatalogSeed,
			},
			{
				Name:  "admin",
				Usage: "Create an admin account",
				Flags: append(storeFlags,
					&cli.StringFlag{Name: "name", Value: "Administrator"},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"SEED_ADMIN_PASSWORD"}},
				),
				Before: initStore,
				After:  closeStore,
				Action: runAdminSeed,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
