// Package statement parses monthly-statement page text into candidate
// transactions. The source documents do not guarantee that a transaction's
// date and fields share one physical line, so parsing runs as a single-pass,
// line-oriented state machine: a current-date register carried across lines
// plus an ordered pattern table, first match wins.
//
// Patterns, in priority order:
//
//  1. a standalone date line updates the current date,
//  2. a dense single-line record carries its own timestamp,
//  3. a line opening with a date followed by a symbol updates the current
//     date without emitting a record,
//  4. a record line without a date borrows the current date, with an optional
//     inline time token (midnight when absent).
//
// Lines matching no pattern are ignored silently; only lines that match a
// record pattern but fail value parsing count as parse errors.
package statement

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finledger/portfolio-tracker/internal/model"
)

var (
	reDateLine    = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})$`)
	reDenseRecord = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})\s+([A-Z0-9]{1,6})\s+\S+\s+\S+\s+\d+\s+\d+\s+(Buy|Sell)\s+([\d.]+)\s+([\d.]+)`)
	reContextDate = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})\s+[A-Z0-9]{1,6}\b`)
	reSplitRecord = regexp.MustCompile(`^([A-Z0-9]{1,6})\s+.*?\b(Buy|Sell)\s+([\d.]+)\s+([\d.]+)`)
	reTimeToken   = regexp.MustCompile(`\d{2}:\d{2}:\d{2}`)
)

// Record is one parsed candidate transaction. Statements carry no fee column;
// candidates import with fee zero.
type Record struct {
	Symbol   string
	Side     model.TransactionType
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Date     time.Time
}

// Parser is the line state machine. The zero value is ready to use; a Parser
// is single-use per document because the current-date register carries over
// between pages.
type Parser struct {
	currentDate string
}

// ParsePages runs the state machine over extracted page texts and returns the
// emitted records plus the parse-error messages of lines that matched a
// record pattern but carried unparsable values.
func (p *Parser) ParsePages(pages []string) ([]Record, []string) {
	records := []Record{}
	errors := []string{}

	for _, page := range pages {
		for _, line := range strings.Split(page, "\n") {
			rec, err := p.ParseLine(strings.TrimSpace(line))
			if err != nil {
				errors = append(errors, err.Error())
				continue
			}
			if rec != nil {
				records = append(records, *rec)
			}
		}
	}

	return records, errors
}

// ParseLine feeds one line through the pattern table. It returns a non-nil
// Record when the line emits one, a nil Record for context and ignored lines,
// and an error only when a record pattern matched but a value failed to parse.
func (p *Parser) ParseLine(line string) (*Record, error) {
	if line == "" {
		return nil, nil
	}

	// Pattern 1: standalone date line updates the register.
	if m := reDateLine.FindStringSubmatch(line); m != nil {
		p.currentDate = m[1]
		return nil, nil
	}

	// Pattern 2: dense record, complete on one line.
	if m := reDenseRecord.FindStringSubmatch(line); m != nil {
		return parseDenseRecord(m)
	}

	// Pattern 3: date-led line updates the register but emits nothing itself.
	// Not exclusive with pattern 4 by construction: pattern 4 anchors on a
	// symbol token, which a digit-led line cannot satisfy.
	if m := reContextDate.FindStringSubmatch(line); m != nil {
		p.currentDate = m[1]
	}

	// Pattern 4: split record borrowing the current date.
	if strings.Contains(line, "Buy") || strings.Contains(line, "Sell") {
		if m := reSplitRecord.FindStringSubmatch(line); m != nil && p.currentDate != "" {
			return parseSplitRecord(m, p.currentDate, line)
		}
	}

	return nil, nil
}

func parseDenseRecord(m []string) (*Record, error) {
	date, err := time.Parse("2006-01-02 15:04:05", m[1])
	if err != nil {
		return nil, fmt.Errorf("line parse error: %v", err)
	}
	return buildRecord(m[2], m[3], m[4], m[5], date)
}

func parseSplitRecord(m []string, currentDate, line string) (*Record, error) {
	var date time.Time
	var err error

	// An inline time token attaches to the carried date; otherwise midnight.
	if t := reTimeToken.FindString(line); t != "" {
		date, err = time.Parse("2006-01-02 15:04:05", currentDate+" "+t)
	} else {
		date, err = time.Parse("2006-01-02", currentDate)
	}
	if err != nil {
		return nil, fmt.Errorf("line parse error: %v", err)
	}

	return buildRecord(m[1], m[2], m[3], m[4], date)
}

func buildRecord(symbol, direction, qtyStr, priceStr string, date time.Time) (*Record, error) {
	quantity, err := decimal.NewFromString(qtyStr)
	if err != nil {
		return nil, fmt.Errorf("line parse error: invalid quantity %q", qtyStr)
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("line parse error: invalid price %q", priceStr)
	}

	side := model.Buy
	if direction == "Sell" {
		side = model.Sell
	}

	return &Record{
		Symbol:   symbol,
		Side:     side,
		Quantity: quantity,
		Price:    price,
		Date:     date.UTC(),
	}, nil
}
