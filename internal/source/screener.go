package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tkrause/symsync/internal/model"
)

// ScreenerFile reads a headered screener CSV export. Recognized columns
// (case-insensitive): ticker/symbol, name/company_name, exchange, sector,
// industry, country, market_cap, description. Only the ticker column is
// required; unrecognized columns are ignored.
type ScreenerFile struct {
	name   string
	path   string
	logger *slog.Logger
}

// NewScreenerFile creates a screener-file source.
func NewScreenerFile(name, path string, logger *slog.Logger) *ScreenerFile {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScreenerFile{name: name, path: path, logger: logger}
}

func (s *ScreenerFile) Name() string { return s.name }

// Available reports whether the screener file exists and is a regular file.
func (s *ScreenerFile) Available(ctx context.Context) bool {
	info, err := os.Stat(s.path)
	return err == nil && info.Mode().IsRegular()
}

// Companies parses the screener export. Rows with a malformed market cap
// keep their listing fields; rows with the wrong column count are skipped
// with a warning rather than failing the file.
func (s *ScreenerFile) Companies(ctx context.Context) ([]model.CompanyRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open screener %q: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read screener header %q: %w", s.path, err)
	}

	cols := indexColumns(header)
	if cols.ticker < 0 {
		return nil, fmt.Errorf("screener %q: no ticker column in header %v", s.path, header)
	}

	var records []model.CompanyRecord
	for line := 2; ; line++ {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.logger.Warn("skipping malformed screener row", "source", s.name, "line", line, "error", err)
			continue
		}

		rec := model.CompanyRecord{
			Ticker:      field(row, cols.ticker),
			Name:        field(row, cols.name),
			Exchange:    field(row, cols.exchange),
			Sector:      field(row, cols.sector),
			Industry:    field(row, cols.industry),
			Country:     field(row, cols.country),
			Description: field(row, cols.description),
		}
		if raw := field(row, cols.marketCap); raw != "" {
			mc, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
			if err != nil {
				s.logger.Warn("unparsable market cap", "source", s.name, "line", line, "value", raw)
			} else {
				rec.MarketCap = mc
			}
		}
		records = append(records, rec)
	}

	return records, nil
}

// columnIndexes maps recognized header names to positions; -1 = absent.
type columnIndexes struct {
	ticker      int
	name        int
	exchange    int
	sector      int
	industry    int
	country     int
	marketCap   int
	description int
}

func indexColumns(header []string) columnIndexes {
	cols := columnIndexes{-1, -1, -1, -1, -1, -1, -1, -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "ticker", "symbol":
			cols.ticker = i
		case "name", "company_name", "company name":
			cols.name = i
		case "exchange":
			cols.exchange = i
		case "sector":
			cols.sector = i
		case "industry":
			cols.industry = i
		case "country":
			cols.country = i
		case "market_cap", "market cap", "marketcap":
			cols.marketCap = i
		case "description":
			cols.description = i
		}
	}
	return cols
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
