package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"expense-reconciliation-service/cmd/reconciler/config"
	"expense-reconciliation-service/internal/models"
	"expense-reconciliation-service/internal/parsers"
	"expense-reconciliation-service/internal/reconciler"
	"expense-reconciliation-service/internal/reporter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the match command
var (
	receiptsFile string
	bankFile     string
	expensesFile string
	catalogFile  string

	outputFormat string
	outputFile   string

	bankThreshold    float64
	expenseThreshold float64
	ambiguityEpsilon float64
	noCategorize     bool
)

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match receipts against bank transactions and manual expenses",
	Long: `Match reconciles scanned receipts against two transaction pools: the
bank feed and manually entered expenses. The pools are ranked independently,
the bank pool with stricter tiers since an unambiguous bank match links the
records automatically.

Every accepted match carries a confidence score and the reasons behind it.
Receipts with two or more indistinguishable candidates are routed to manual
review instead of being auto-linked.

Examples:
  # Match against the bank feed only
  reconciler match --receipts-file receipts.csv --bank-file transactions.csv

  # Both pools, JSON report to a file
  reconciler match --receipts-file r.csv --bank-file b.csv --expenses-file e.csv \
    --output-format json --output-file report.json

  # Loosen the bank threshold
  reconciler match --receipts-file r.csv --bank-file b.csv --bank-threshold 0.7`,

	PreRunE: validateMatchFlags,
	RunE:    runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringVarP(&receiptsFile, "receipts-file", "r", "", "path to receipts CSV file (required)")
	matchCmd.Flags().StringVarP(&bankFile, "bank-file", "b", "", "path to bank transaction CSV file")
	matchCmd.Flags().StringVarP(&expensesFile, "expenses-file", "e", "", "path to manual expense CSV file")
	matchCmd.Flags().StringVar(&catalogFile, "catalog", "", "category catalog YAML file (default: built-in)")

	matchCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	matchCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")

	matchCmd.Flags().Float64Var(&bankThreshold, "bank-threshold", 0, "minimum confidence for bank matches (default 0.8)")
	matchCmd.Flags().Float64Var(&expenseThreshold, "expense-threshold", 0, "minimum confidence for expense matches (default 0.7)")
	matchCmd.Flags().Float64Var(&ambiguityEpsilon, "ambiguity-epsilon", 0, "score margin treated as a tie (default 0.01)")
	matchCmd.Flags().BoolVar(&noCategorize, "no-categorize", false, "skip transaction categorization")

	matchCmd.MarkFlagRequired("receipts-file")

	viper.BindPFlag("receipts-file", matchCmd.Flags().Lookup("receipts-file"))
	viper.BindPFlag("bank-file", matchCmd.Flags().Lookup("bank-file"))
	viper.BindPFlag("expenses-file", matchCmd.Flags().Lookup("expenses-file"))
	viper.BindPFlag("output-format", matchCmd.Flags().Lookup("output-format"))
}

func buildMatchConfig() *config.AppConfig {
	return &config.AppConfig{
		ReceiptsFile: receiptsFile,
		BankFile:     bankFile,
		ExpensesFile: expensesFile,
		CatalogFile:  catalogFile,
		Overrides: config.MatchingOverrides{
			BankThreshold:    bankThreshold,
			ExpenseThreshold: expenseThreshold,
			AmbiguityEpsilon: ambiguityEpsilon,
		},
		Categorize:   !noCategorize,
		OutputFormat: outputFormat,
		OutputFile:   outputFile,
	}
}

func validateMatchFlags(cmd *cobra.Command, args []string) error {
	return buildMatchConfig().Validate()
}

func runMatch(cmd *cobra.Command, args []string) error {
	handler := NewCLIErrorHandler()

	appConfig := buildMatchConfig()
	if err := doMatch(cmd.Context(), appConfig); err != nil {
		os.Exit(handler.HandleError(err))
	}
	return nil
}

func doMatch(ctx context.Context, appConfig *config.AppConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}

	receiptConfig, bankConfig, expenseConfig := appConfig.BuildParserConfigs()

	receiptParser, err := parsers.NewReceiptParser(receiptConfig)
	if err != nil {
		return err
	}
	receipts, receiptStats, err := receiptParser.ParseWithContext(ctx, appConfig.ReceiptsFile)
	if err != nil {
		return err
	}
	reportSkipped(receiptStats, appConfig.ReceiptsFile)

	var bank, expenses []*models.TransactionRecord

	if appConfig.BankFile != "" {
		parser, err := parsers.NewTransactionParser(bankConfig)
		if err != nil {
			return err
		}
		var stats *parsers.ParseStats
		bank, stats, err = parser.ParseWithContext(ctx, appConfig.BankFile)
		if err != nil {
			return err
		}
		reportSkipped(stats, appConfig.BankFile)
	}

	if appConfig.ExpensesFile != "" {
		parser, err := parsers.NewTransactionParser(expenseConfig)
		if err != nil {
			return err
		}
		var stats *parsers.ParseStats
		expenses, stats, err = parser.ParseWithContext(ctx, appConfig.ExpensesFile)
		if err != nil {
			return err
		}
		reportSkipped(stats, appConfig.ExpensesFile)
	}

	sessionConfig, err := appConfig.BuildSessionConfig()
	if err != nil {
		return err
	}
	session, err := reconciler.NewSession(sessionConfig)
	if err != nil {
		return err
	}

	result, err := session.Reconcile(ctx, receipts, expenses, bank)
	if err != nil {
		return err
	}

	generator, err := reporter.NewReportGenerator(appConfig.BuildReportConfig())
	if err != nil {
		return err
	}

	writer, closer, err := openOutput(appConfig.OutputFile)
	if err != nil {
		return err
	}
	defer closer()

	return generator.GenerateReport(result, writer)
}

func reportSkipped(stats *parsers.ParseStats, path string) {
	if stats != nil && stats.HasErrors() {
		fmt.Fprintf(os.Stderr, "Warning: %s in %s\n", stats, path)
	}
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return file, func() { file.Close() }, nil
}
