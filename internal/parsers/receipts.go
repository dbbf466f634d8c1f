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

// receiptFields are the canonical receipt columns with their export aliases.
// OCR pipelines emit inconsistent headers, hence the wide alias lists.
var receiptFields = []FieldSpec{
	{Name: "id", Aliases: []string{"id", "receipt_id", "reference"}},
	{Name: "date", Aliases: []string{"date", "receipt_date", "purchase_date"}, Required: true},
	{Name: "total", Aliases: []string{"total", "amount", "grand_total", "total_amount"}, Required: true},
	{Name: "merchant", Aliases: []string{"merchant", "merchant_name", "store", "vendor"}},
	{Name: "tax", Aliases: []string{"tax", "tax_amount", "sales_tax"}},
}

// ReceiptParser parses receipt CSV exports into ReceiptRecord values.
type ReceiptParser struct {
	*BaseParser
	config *ReceiptFileConfig
	logger logger.Logger
}

// NewReceiptParser creates a parser for the given file configuration.
func NewReceiptParser(config *ReceiptFileConfig) (*ReceiptParser, error) {
	if config == nil {
		config = DefaultReceiptFileConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &ReceiptParser{
		BaseParser: NewBaseParser(&ParseConfig{
			HasHeader:        config.HasHeader,
			Delimiter:        config.Delimiter,
			TrimLeadingSpace: true,
			SkipEmptyRows:    true,
		}),
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("receipt_parser"),
	}, nil
}

// Parse reads the file without cancellation support.
func (rp *ReceiptParser) Parse(path string) ([]*models.ReceiptRecord, *ParseStats, error) {
	return rp.ParseWithContext(context.Background(), path)
}

// ParseWithContext reads receipts from the CSV file with the same
// per-line error accumulation as the transaction parser.
func (rp *ReceiptParser) ParseWithContext(ctx context.Context, path string) ([]*models.ReceiptRecord, *ParseStats, error) {
	rp.logger.WithField("file_path", path).Info("Parsing receipt file")

	file, reader, err := rp.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	headers, err := rp.ReadHeaders(reader, path, receiptFields)
	if err != nil {
		return nil, nil, err
	}

	stats := NewParseStats()
	var receipts []*models.ReceiptRecord

	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return receipts, stats, errors.MatchingError(errors.CodeProcessingError, "receipt parsing", err)
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

		receipt, parseErr := rp.buildRecord(headers, record, path, line)
		if parseErr != nil {
			stats.AddError(parseErr)
			continue
		}

		receipts = append(receipts, receipt)
		stats.ParsedRecords++
	}

	rp.logger.WithFields(logger.Fields{
		"file_path": path,
		"parsed":    stats.ParsedRecords,
		"skipped":   stats.SkippedRecords,
	}).Info("Receipt file parsed")

	return receipts, stats, nil
}

func (rp *ReceiptParser) buildRecord(headers *HeaderMap, record []string, path string, line int) (*models.ReceiptRecord, *errors.Error) {
	date, err := models.ParseCalendarDate(headers.Field(record, "date"))
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, line, "date",
			headers.Field(record, "date"), err)
	}

	total, err := models.ParseMoney(headers.Field(record, "total"), rp.config.Currency)
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, line, "total",
			headers.Field(record, "total"), err)
	}

	id := headers.Field(record, "id")
	if id == "" {
		id = uuid.NewString()
	}

	receipt := &models.ReceiptRecord{
		ID:       id,
		Date:     date,
		Total:    total,
		Merchant: normalize.Merchant(headers.Field(record, "merchant")),
	}

	if taxField := headers.Field(record, "tax"); taxField != "" {
		tax, err := models.ParseMoney(taxField, rp.config.Currency)
		if err != nil {
			return nil, errors.ParseError(errors.CodeInvalidData, path, line, "tax", taxField, err)
		}
		receipt.Tax = &tax
	}

	if err := receipt.Validate(); err != nil {
		return nil, errors.ParseError(errors.CodeInvalidData, path, line, "record", receipt.ID, err)
	}

	return receipt, nil
}
