package parsers

import (
	"context"
	"io"

	"expense-reconciliation-service/internal/models"
	"expense-reconciliation-service/internal/normalize"
	"expense-reconciliation-service/pkg/errors"
	"expense-reconciliation-service/pkg/logger"

	"github.com/google/uuid"
)

// transactionFields are the canonical columns, with the header aliases seen
// across bank feed and bookkeeping exports.
var transactionFields = []FieldSpec{
	{Name: "id", Aliases: []string{"id", "transaction_id", "txn_id", "reference"}},
	{Name: "date", Aliases: []string{"date", "transaction_date", "posted_date", "posting_date"}, Required: true},
	{Name: "amount", Aliases: []string{"amount", "value", "debit_amount", "transaction_amount"}, Required: true},
	{Name: "merchant", Aliases: []string{"merchant", "merchant_name", "payee", "vendor"}},
	{Name: "description", Aliases: []string{"description", "memo", "details", "narrative"}},
	{Name: "category", Aliases: []string{"category", "category_label"}},
	{Name: "merchant_category", Aliases: []string{"merchant_category", "merchant_type", "mcc_description", "category_hint"}},
}

// TransactionParser parses transaction CSV files into TransactionRecord
// values for one pool.
type TransactionParser struct {
	*BaseParser
	config *TransactionFileConfig
	logger logger.Logger
}

// NewTransactionParser creates a parser for the given file configuration.
func NewTransactionParser(config *TransactionFileConfig) (*TransactionParser, error) {
	if config == nil {
		config = DefaultBankFileConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &TransactionParser{
		BaseParser: NewBaseParser(&ParseConfig{
			HasHeader:        config.HasHeader,
			Delimiter:        config.Delimiter,
			TrimLeadingSpace: true,
			SkipEmptyRows:    true,
		}),
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("transaction_parser"),
	}, nil
}

// Parse reads the file without cancellation support.
func (tp *TransactionParser) Parse(path string) ([]*models.TransactionRecord, *ParseStats, error) {
	return tp.ParseWithContext(context.Background(), path)
}

// ParseWithContext reads transactions from the CSV file. Rows that fail
// validation are skipped and recorded in the stats; only file-level problems
// (missing file, missing required columns) are returned as errors.
func (tp *TransactionParser) ParseWithContext(ctx context.Context, path string) ([]*models.TransactionRecord, *ParseStats, error) {
	tp.logger.WithField("file_path", path).Info("Parsing transaction file")

	file, reader, err := tp.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	headers, err := tp.ReadHeaders(reader, path, transactionFields)
	if err != nil {
		return nil, nil, err
	}

	stats := NewParseStats()
	var transactions []*models.TransactionRecord

	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return transactions, stats, errors.MatchingError(errors.CodeProcessingError, "transaction parsing", err)
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			stats.TotalLines++
			stats.AddError(errors.ParseError(errors.CodeInvalidFormat, path, line, "record", "", err))
			continue
		}
		if IsEmptyRecord(record) {
			continue
		}
		stats.TotalLines++

		tx, parseErr := tp.buildRecord(headers, record, path, line)
		if parseErr != nil {
			stats.AddError(parseErr)
			continue
		}

		transactions = append(transactions, tx)
		stats.ParsedRecords++
	}

	tp.logger.WithFields(logger.Fields{
		"file_path": path,
		"parsed":    stats.ParsedRecords,
		"skipped":   stats.SkippedRecords,
	}).Info("Transaction file parsed")

	return transactions, stats, nil
}

func (tp *TransactionParser) buildRecord(headers *HeaderMap, record []string, path string, line int) (*models.TransactionRecord, *errors.Error) {
	date, err := models.ParseCalendarDate(headers.Field(record, "date"))
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, line, "date",
			headers.Field(record, "date"), err)
	}

	amount, err := models.ParseMoney(headers.Field(record, "amount"), tp.config.Currency)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, line, "amount",
			headers.Field(record, "amount"), err)
	}

	id := headers.Field(record, "id")
	if id == "" {
		// Exports frequently omit stable identifiers.
		id = uuid.NewString()
	}

	tx := &models.TransactionRecord{
		ID:                   id,
		Date:                 date,
		Amount:               amount,
		Merchant:             normalize.Merchant(headers.Field(record, "merchant")),
		Description:          headers.Field(record, "description"),
		Source:               tp.config.Source,
		Category:             models.CategoryLabel(headers.Field(record, "category")),
		MerchantCategoryHint: headers.Field(record, "merchant_category"),
	}

	if err := tx.Validate(); err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, line, "record", tx.ID, err)
	}

	return tx, nil
}
