package main

import (
	"errors"
	"portfolio/internal/model"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin account from SEED_ADMIN_* if it does not exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if strings.TrimSpace(cfg.SeedAdminPassword) == "" {
			return errors.New("SEED_ADMIN_PASSWORD must be set")
		}

		repo, err := model.InitRepository(&cfg)
		if err != nil {
			return err
		}

		created, err := model.SeedAdmin(cmd.Context(), repo, cfg)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"email":   cfg.SeedAdminEmail,
			"created": created,
		}).Info("admin seed finished")
		return nil
	},
}
