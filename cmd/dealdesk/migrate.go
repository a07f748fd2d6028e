package main

import (
	"context"
	"fmt"

	"dealdesk/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Run database migrations",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := db.Migrate(context.Background(), cfg); err != nil {
			return err
		}

		logrus.Info("migrations applied")
		return nil
	},
}
