package parsers

import (
	"expense-reconciliation-service/internal/models"
	"expense-reconciliation-service/pkg/errors"
)

// TransactionFileConfig describes one transaction CSV source: which pool it
// feeds, the currency assumed for amounts without one, and CSV shape.
type TransactionFileConfig struct {
	HasHeader bool             `json:"has_header"`
	Delimiter rune             `json:"delimiter"`
	Source    models.SourceTag `json:"source"`
	Currency  string           `json:"currency"`
}

// DefaultBankFileConfig returns the configuration for bank feed exports.
func DefaultBankFileConfig() *TransactionFileConfig {
	return &TransactionFileConfig{
		HasHeader: true,
		Delimiter: ',',
		Source:    models.SourceBank,
		Currency:  models.DefaultCurrency,
	}
}

// DefaultExpenseFileConfig returns the configuration for manual expense
// exports.
func DefaultExpenseFileConfig() *TransactionFileConfig {
	return &TransactionFileConfig{
		HasHeader: true,
		Delimiter: ',',
		Source:    models.SourceManual,
		Currency:  models.DefaultCurrency,
	}
}

// Validate checks the configuration.
func (c *TransactionFileConfig) Validate() error {
	if !c.Source.IsValid() {
		return errors.ConfigurationError(errors.CodeInvalidConfig,
			"transaction file source tag", nil).
			WithContext("source", string(c.Source))
	}
	if c.Delimiter == 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig,
			"transaction file delimiter", nil)
	}
	return nil
}

// ReceiptFileConfig describes one receipt CSV source.
type ReceiptFileConfig struct {
	HasHeader bool   `json:"has_header"`
	Delimiter rune   `json:"delimiter"`
	Currency  string `json:"currency"`
}

// DefaultReceiptFileConfig returns the configuration for receipt exports.
func DefaultReceiptFileConfig() *ReceiptFileConfig {
	return &ReceiptFileConfig{
		HasHeader: true,
		Delimiter: ',',
		Currency:  models.DefaultCurrency,
	}
}

// Validate checks the configuration.
func (c *ReceiptFileConfig) Validate() error {
	if c.Delimiter == 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig,
			"receipt file delimiter", nil)
	}
	return nil
}
