package cmd

import (
	"encoding/csv"
	"os"

	"expense-reconciliation-service/internal/categorizer"
	"expense-reconciliation-service/internal/models"
	"expense-reconciliation-service/internal/parsers"
	"expense-reconciliation-service/pkg/errors"

	"github.com/spf13/cobra"
)

var (
	categorizeInput   string
	categorizeCatalog string
	categorizeOutput  string
	categorizeSource  string
)

// categorizeCmd represents the categorize command
var categorizeCmd = &cobra.Command{
	Use:   "categorize",
	Short: "Assign spending categories to transactions",
	Long: `Categorize labels each transaction in a CSV file with a spending
category from the catalog. Without --catalog the built-in catalog is used.

Examples:
  reconciler categorize --transactions-file transactions.csv
  reconciler categorize --transactions-file tx.csv --catalog catalog.yaml --output-file labeled.csv`,

	RunE: runCategorize,
}

func init() {
	rootCmd.AddCommand(categorizeCmd)

	categorizeCmd.Flags().StringVarP(&categorizeInput, "transactions-file", "t", "", "path to transaction CSV file (required)")
	categorizeCmd.Flags().StringVar(&categorizeCatalog, "catalog", "", "category catalog YAML file (default: built-in)")
	categorizeCmd.Flags().StringVarP(&categorizeOutput, "output-file", "o", "", "output file path (default: stdout)")
	categorizeCmd.Flags().StringVar(&categorizeSource, "source", "bank", "origin of the transactions: bank or manual")

	categorizeCmd.MarkFlagRequired("transactions-file")
}

func runCategorize(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	if err := doCategorize(); err != nil {
		os.Exit(handler.HandleError(err))
	}
	return nil
}

func doCategorize() error {
	var catalog *categorizer.Catalog
	if categorizeCatalog != "" {
		loaded, err := categorizer.LoadCatalog(categorizeCatalog)
		if err != nil {
			return err
		}
		catalog = loaded
	}

	cat, err := categorizer.New(catalog)
	if err != nil {
		return err
	}

	source, err := models.ParseSourceTag(categorizeSource)
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "source flag", err)
	}
	fileConfig := parsers.DefaultBankFileConfig()
	if source == models.SourceManual {
		fileConfig = parsers.DefaultExpenseFileConfig()
	}

	parser, err := parsers.NewTransactionParser(fileConfig)
	if err != nil {
		return err
	}
	transactions, stats, err := parser.Parse(categorizeInput)
	if err != nil {
		return err
	}
	reportSkipped(stats, categorizeInput)

	writer, closer, err := openOutput(categorizeOutput)
	if err != nil {
		return err
	}
	defer closer()

	w := csv.NewWriter(writer)
	if err := w.Write([]string{"id", "date", "amount", "merchant", "description", "source", "category"}); err != nil {
		return errors.InternalError("categorize output", err)
	}

	for _, tx := range transactions {
		if tx.Category == "" {
			tx.Category = cat.Categorize(tx)
		}
		row := []string{
			tx.ID,
			tx.Date.String(),
			tx.Amount.Magnitude.StringFixed(2),
			tx.Merchant.Raw,
			tx.Description,
			string(tx.Source),
			tx.Category.String(),
		}
		if err := w.Write(row); err != nil {
			return errors.InternalError("categorize output", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.InternalError("categorize output", err)
	}
	return nil
}
