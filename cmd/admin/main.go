package main

import (
	"fmt"
	"os"

	"github.com/agrifarma/agrifarma-backend/config"
	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	"github.com/agrifarma/agrifarma-backend/internal/db"
	"github.com/agrifarma/agrifarma-backend/internal/storage"
	"github.com/agrifarma/agrifarma-backend/pkg/logger"
	"github.com/spf13/cobra"
)

// deps are the services shared by every subcommand. They are opened lazily
// so that --help works without a database.
type deps struct {
	cfg      *config.Config
	products service.ProductService
	users    repository.UserRepository
}

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "agrifarma-admin",
	Short: "Maintenance commands for the AgriFarma backend",
	Long: `Operator tooling for the AgriFarma backend.

Available subcommands:
  purge           - Delete products older than a number of days
  export-products - Write every product to an XLSX workbook
  import-products - Create products from an XLSX workbook
  create-admin    - Create the admin account from ADMIN_* settings`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.Initialize(logger.Config{Level: level, Format: "console", Output: cmd.ErrOrStderr()})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	purgeCmd.Flags().Int("days", 0, "Age in days (defaults to PRODUCT_MAX_DAYS)")

	rootCmd.AddCommand(purgeCmd, exportCmd, importCmd, createAdminCmd)
}

// openDeps loads configuration, connects to the database and runs
// migrations. The returned closer releases the connection.
func openDeps() (*deps, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := db.Initialize(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closer := func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}
	if err := db.Migrate(); err != nil {
		closer()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	files, err := storage.NewFromConfig(cfg.Storage, cfg.S3)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	database := db.GetDB()
	return &deps{
		cfg: cfg,
		products: service.NewProductService(
			repository.NewProductRepository(database),
			repository.NewCategoryRepository(database),
			files,
			cfg.Shop.DefaultPerPage,
		),
		users: repository.NewUserRepository(database),
	}, closer, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
