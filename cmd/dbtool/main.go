package main

import (
	"delivery-eta-service/internal/adapters/repositories"
	"delivery-eta-service/internal/config"
	"delivery-eta-service/internal/platform/db"
	"delivery-eta-service/internal/platform/logger"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// dbtool creates the deliveries schema and loads seed records for local runs.
func main() {
	var (
		cfgFile  string
		seedPath string
		skipSeed bool
	)
	v := viper.New()

	cmd := &cobra.Command{
		Use:          "dbtool",
		Short:        "Initialize and seed the deliveries database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cfgFile)
			if err != nil {
				return err
			}
			if cfg.Database.URL == "" {
				return errors.New("DATABASE_URL is required")
			}

			log := logger.New(cfg.Log.Level, cfg.Log.Format).WithComponent("dbtool")

			conn, err := db.Open(cfg.Database.URL)
			if err != nil {
				return err
			}
			defer conn.Close()

			log.Info("initializing database schema")
			if err := repositories.InitSchema(cmd.Context(), conn); err != nil {
				return fmt.Errorf("schema initialization failed: %w", err)
			}
			log.Info("schema ready")

			if skipSeed {
				return nil
			}

			log.WithField("path", seedPath).Info("seeding database")
			n, err := repositories.SeedFromJSON(cmd.Context(), conn, seedPath)
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			log.WithField("deliveries", n).Info("seeding complete")
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file")
	cmd.Flags().StringVar(&seedPath, "seed", "data/seeds/deliveries.json", "JSON file of delivery records")
	cmd.Flags().BoolVar(&skipSeed, "schema-only", false, "create the schema without seeding")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
