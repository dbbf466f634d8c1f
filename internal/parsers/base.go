// Package parsers provides CSV ingestion adapters that translate external
// transaction and receipt exports into the canonical record types. Parsing
// failures are accumulated per line; a bad row never aborts the file.
package parsers

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"expense-reconciliation-service/pkg/errors"
)

// ParseConfig controls low-level CSV reading behavior shared by all parsers.
type ParseConfig struct {
	HasHeader        bool
	Delimiter        rune
	TrimLeadingSpace bool
	SkipEmptyRows    bool
}

// DefaultParseConfig returns the settings that fit typical bank and
// bookkeeping exports.
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		HasHeader:        true,
		Delimiter:        ',',
		TrimLeadingSpace: true,
		SkipEmptyRows:    true,
	}
}

// BaseParser implements file opening, header mapping, and record reading for
// the concrete parsers.
type BaseParser struct {
	config *ParseConfig
}

// NewBaseParser creates a BaseParser with the given configuration.
func NewBaseParser(config *ParseConfig) *BaseParser {
	if config == nil {
		config = DefaultParseConfig()
	}
	return &BaseParser{config: config}
}

// OpenFile opens the CSV file and returns a configured reader.
func (bp *BaseParser) OpenFile(path string) (*os.File, *csv.Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, nil, errors.FileError(errors.CodeFileNotFound, path, err)
	}

	reader := csv.NewReader(file)
	reader.Comma = bp.config.Delimiter
	reader.TrimLeadingSpace = bp.config.TrimLeadingSpace
	// Bank exports pad short rows; leave per-record length checks to the
	// field accessors.
	reader.FieldsPerRecord = -1

	return file, reader, nil
}

// HeaderMap resolves canonical field names to column indexes, tolerating the
// header aliases different providers use.
type HeaderMap struct {
	index map[string]int
}

// ReadHeaders consumes the header row and resolves each canonical field
// through its alias list. Missing required fields fail the whole file.
func (bp *BaseParser) ReadHeaders(reader *csv.Reader, path string, fields []FieldSpec) (*HeaderMap, error) {
	if !bp.config.HasHeader {
		// Positional mapping in declaration order.
		hm := &HeaderMap{index: make(map[string]int, len(fields))}
		for i, f := range fields {
			hm.index[f.Name] = i
		}
		return hm, nil
	}

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.ParseError(errors.CodeInvalidFormat, path, 1, "headers", "", err)
	}

	normalized := make(map[string]int, len(headers))
	for i, h := range headers {
		normalized[normalizeHeader(h)] = i
	}

	hm := &HeaderMap{index: make(map[string]int, len(fields))}
	var missing []string
	for _, f := range fields {
		idx, found := -1, false
		for _, alias := range f.Aliases {
			if i, ok := normalized[normalizeHeader(alias)]; ok {
				idx, found = i, true
				break
			}
		}
		if found {
			hm.index[f.Name] = idx
		} else if f.Required {
			missing = append(missing, f.Name)
		}
	}

	if len(missing) > 0 {
		return nil, errors.ParseError(errors.CodeMissingColumn, path, 1,
			strings.Join(missing, ", "), "", nil).
			WithSuggestion(fmt.Sprintf("expected columns (or aliases): %v", missing))
	}

	return hm, nil
}

// Field returns the named field from the record, or "" when the column is
// absent or the row is short.
func (hm *HeaderMap) Field(record []string, name string) string {
	idx, ok := hm.index[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// FieldSpec declares one canonical field a parser extracts, with the header
// aliases providers use for it.
type FieldSpec struct {
	Name     string
	Aliases  []string
	Required bool
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\uFEFF") // BOM on the first header of Windows exports
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	return h
}

// IsEmptyRecord reports whether every field in the row is blank.
func IsEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// ParseStats accumulates the outcome of one file parse.
type ParseStats struct {
	TotalLines     int             `json:"total_lines"`
	ParsedRecords  int             `json:"parsed_records"`
	SkippedRecords int             `json:"skipped_records"`
	Errors         []*errors.Error `json:"errors,omitempty"`
}

// NewParseStats creates empty stats.
func NewParseStats() *ParseStats {
	return &ParseStats{}
}

// AddError records a per-line failure.
func (ps *ParseStats) AddError(err *errors.Error) {
	ps.Errors = append(ps.Errors, err)
	ps.SkippedRecords++
}

// HasErrors reports whether any line failed.
func (ps *ParseStats) HasErrors() bool {
	return len(ps.Errors) > 0
}

// Summary wraps the accumulated errors for reporting.
func (ps *ParseStats) Summary() *errors.Summary {
	return errors.NewSummary(ps.Errors)
}

// String returns a one-line account of the parse.
func (ps *ParseStats) String() string {
	return fmt.Sprintf("parsed %d of %d lines (%d skipped)",
		ps.ParsedRecords, ps.TotalLines, ps.SkippedRecords)
}
