package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/agrifarma/agrifarma-backend/internal/app/repository"
	"github.com/agrifarma/agrifarma-backend/internal/app/service"
	"github.com/agrifarma/agrifarma-backend/internal/db"
	"github.com/agrifarma/agrifarma-backend/internal/spreadsheet"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete products older than --days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, closer, err := openDeps()
		if err != nil {
			return err
		}
		defer closer()

		days, _ := cmd.Flags().GetInt("days")
		if days == 0 {
			days = d.cfg.Shop.ProductMaxDays
		}
		return runPurge(cmd.Context(), d.products, days, cmd.OutOrStdout())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export-products FILE",
	Short: "Write every product to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, closer, err := openDeps()
		if err != nil {
			return err
		}
		defer closer()

		out, err := os.Create(args[0])
		if err != nil {
			return err
		}
		n, err := runExport(d.products, out)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d products to %s\n", n, args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import-products FILE",
	Short: "Create products from an XLSX workbook",
	Long: `Create one product per row of the first worksheet.

Title and Price columns are required. Description, Active, Category ID,
Subcategory ID and Seller Email are optional. Rows naming a registered
seller email are attributed to that user.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, closer, err := openDeps()
		if err != nil {
			return err
		}
		defer closer()

		in, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		rows, err := spreadsheet.ReadProducts(in)
		if err != nil {
			return err
		}
		result := runImport(cmd.Context(), d.products, d.users, rows)
		result.print(cmd.OutOrStdout())
		if len(result.failures) > 0 {
			return fmt.Errorf("%d of %d rows failed", len(result.failures), len(rows))
		}
		return nil
	},
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create the admin account from ADMIN_EMAIL and ADMIN_PASSWORD",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, closer, err := openDeps()
		if err != nil {
			return err
		}
		defer closer()

		if d.cfg.Admin.Email == "" || d.cfg.Admin.Password == "" {
			return errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
		}
		if err := db.EnsureAdmin(db.GetDB(), d.cfg.Admin); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Admin account ready: %s\n", strings.ToLower(d.cfg.Admin.Email))
		return nil
	},
}

func runPurge(ctx context.Context, products service.ProductService, days int, out io.Writer) error {
	removed, err := products.PurgeOlderThan(ctx, days)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %d products older than %d days.\n", removed, days)
	return nil
}

func runExport(products service.ProductService, out io.Writer) (int, error) {
	all, err := products.ExportProducts()
	if err != nil {
		return 0, err
	}
	if err := spreadsheet.WriteProducts(out, all); err != nil {
		return 0, err
	}
	return len(all), nil
}

type rowFailure struct {
	line int
	err  error
}

type importResult struct {
	created  int
	failures []rowFailure
}

func (r importResult) print(out io.Writer) {
	for _, f := range r.failures {
		fmt.Fprintf(out, "row %d: %v\n", f.line, f.err)
	}
	fmt.Fprintf(out, "Imported %d products, %d failed\n", r.created, len(r.failures))
}

// runImport creates products row by row. A failing row is recorded and
// does not stop the import.
func runImport(ctx context.Context, products service.ProductService, users repository.UserRepository, rows []spreadsheet.ProductRow) importResult {
	var result importResult
	for _, row := range rows {
		active := row.Active
		input := service.ProductInput{
			Title:         row.Title,
			Description:   row.Description,
			Price:         row.Price,
			Active:        &active,
			SellerEmail:   row.SellerEmail,
			CategoryID:    row.CategoryID,
			SubCategoryID: row.SubCategoryID,
		}

		sellerID, err := lookupSeller(users, row.SellerEmail)
		if err != nil {
			result.failures = append(result.failures, rowFailure{line: row.Line, err: err})
			continue
		}

		if _, err := products.CreateProduct(ctx, sellerID, input, nil); err != nil {
			result.failures = append(result.failures, rowFailure{line: row.Line, err: err})
			continue
		}
		result.created++
	}
	return result
}

// lookupSeller returns the id of the user registered under email, or nil
// when the email is empty or unknown.
func lookupSeller(users repository.UserRepository, email string) (*uint, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	user, err := users.FindByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user.ID, nil
}
