package ingest

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/tkrause/symsync/internal/model"
)

// Clean validates and deduplicates an aggregated working set. Records with
// no usable ticker are dropped; within the batch the first record seen for a
// symbol wins and later duplicates are dropped. Ticker and exchange codes
// are uppercased, names canonicalized. Pure: no I/O, deterministic given
// input order. Returns the cleaned set and the number of dropped records.
func Clean(records []model.CompanyRecord) ([]model.CompanyRecord, int) {
	cleaned := make([]model.CompanyRecord, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	skipped := 0

	for _, rec := range records {
		symbol := NormalizeSymbol(rec.Ticker)
		if symbol == "" {
			skipped++
			continue
		}
		if _, dup := seen[symbol]; dup {
			skipped++
			continue
		}
		seen[symbol] = struct{}{}

		rec.Ticker = symbol
		rec.Exchange = NormalizeExchange(rec.Exchange)
		rec.Name = CanonicalName(rec.Name)
		cleaned = append(cleaned, rec)
	}

	return cleaned, skipped
}

// NormalizeSymbol uppercases and trims a ticker symbol. Returns "" for
// unusable input.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeExchange canonicalizes an exchange code: trimmed, uppercased,
// common long forms mapped to their codes.
func NormalizeExchange(s string) string {
	code := strings.ToUpper(strings.Join(strings.Fields(s), " "))
	switch code {
	case "NASDAQ STOCK MARKET", "NASDAQ GLOBAL SELECT", "NASDAQ NMS - GLOBAL MARKET":
		return "NASDAQ"
	case "NEW YORK STOCK EXCHANGE", "NEW YORK STOCK EXCHANGE, INC.":
		return "NYSE"
	case "NYSE AMERICAN", "AMERICAN STOCK EXCHANGE":
		return "AMEX"
	}
	return code
}

// CanonicalName normalizes a company name: NFC composition, full-width
// characters folded to their narrow forms, and runs of whitespace collapsed
// to single spaces.
func CanonicalName(s string) string {
	s = width.Fold.String(norm.NFC.String(s))
	return strings.Join(strings.Fields(s), " ")
}
