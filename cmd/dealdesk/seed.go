package main

import (
	"context"
	"fmt"

	"dealdesk/internal/db"
	"dealdesk/internal/seed"
	"dealdesk/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo users and listings",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		userRepo := store.NewUserRepository(pool)
		listingRepo := store.NewListingRepository(pool)
		progressRepo := store.NewProgressRepository(pool)

		logrus.Info("Seeding demo portal data...")
		if err := seed.SeedPortal(ctx, userRepo, listingRepo, progressRepo); err != nil {
			return fmt.Errorf("failed to seed portal data: %w", err)
		}

		logrus.Info("Demo data seeded successfully")

		return nil
	},
}
