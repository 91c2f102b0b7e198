// Package ingest turns the text of a government registry export into raw
// establishment records. Extraction is a prioritized list of strategies tried
// in order; the first one to produce records wins. Each strategy is pure and
// independently testable, which keeps the fragile document heuristics out of
// the registry store.
package ingest

import (
	"encoding/csv"
	"errors"
	"log/slog"
	"regexp"
	"strings"
)

// RawRecord is what a strategy pulls out of the document before the registry
// applies defaults. Name is the only required field.
type RawRecord struct {
	Name     string
	Address  string
	CertType string
	RegNum   string
}

// Strategy extracts raw records from one document layout.
type Strategy interface {
	Name() string
	Extract(text string) ([]RawRecord, error)
}

// Extractor runs strategies in priority order.
type Extractor struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewExtractor builds an extractor with the default strategy order:
// well-formed CSV first, then column-aligned text, then the loose line
// heuristic for degraded PDF extractions.
func NewExtractor(logger *slog.Logger) *Extractor {
	return &Extractor{
		strategies: []Strategy{CSVStrategy{}, ColumnarStrategy{}, LooseLineStrategy{}},
		logger:     logger,
	}
}

// NewExtractorWithStrategies builds an extractor with an explicit order.
func NewExtractorWithStrategies(logger *slog.Logger, strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies, logger: logger}
}

// Extract tries each strategy in order and returns the first non-empty
// result along with the winning strategy name. An empty result from every
// strategy is not an error here; the registry store treats it as degradation.
func (e *Extractor) Extract(text string) ([]RawRecord, string) {
	for _, s := range e.strategies {
		records, err := s.Extract(text)
		if err != nil {
			if e.logger != nil {
				e.logger.Debug("extraction strategy failed", "strategy", s.Name(), "error", err)
			}
			continue
		}
		if len(records) > 0 {
			if e.logger != nil {
				e.logger.Info("registry document extracted", "strategy", s.Name(), "records", len(records))
			}
			return records, s.Name()
		}
	}
	return nil, ""
}

// ----------------------------------------------------------------------------
// CSV strategy
// ----------------------------------------------------------------------------

// CSVStrategy parses a comma-separated export with or without a header row.
type CSVStrategy struct{}

func (CSVStrategy) Name() string { return "csv" }

func (CSVStrategy) Extract(text string) ([]RawRecord, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := columnIndexes{name: 0, address: 1, certType: 2, regNum: 3}
	start := 0
	if idx, ok := headerIndexes(rows[0]); ok {
		cols = idx
		start = 1
	}

	var records []RawRecord
	for _, row := range rows[start:] {
		rec := RawRecord{
			Name:     field(row, cols.name),
			Address:  field(row, cols.address),
			CertType: field(row, cols.certType),
			RegNum:   field(row, cols.regNum),
		}
		if rec.Name == "" {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, nil
	}
	// A single column means this was not really comma-separated; let a later
	// strategy have a go instead of producing address-less records.
	if allAddressless(records) {
		return nil, errors.New("csv rows carry no address column")
	}
	// Tabs or aligned spaces inside a name mean the document is columnar text
	// that happens to contain commas, not a CSV export.
	for _, r := range records {
		if columnSplitRe.MatchString(r.Name) {
			return nil, errors.New("columns are not comma-separated")
		}
	}
	return records, nil
}

type columnIndexes struct {
	name, address, certType, regNum int
}

func headerIndexes(row []string) (columnIndexes, bool) {
	idx := columnIndexes{name: -1, address: -1, certType: -1, regNum: -1}
	for i, cell := range row {
		h := strings.ToLower(strings.TrimSpace(cell))
		switch {
		case idx.name < 0 && (strings.Contains(h, "name") || strings.Contains(h, "establishment")):
			idx.name = i
		case idx.address < 0 && (strings.Contains(h, "address") || strings.Contains(h, "location")):
			idx.address = i
		case idx.certType < 0 && (strings.Contains(h, "cert") || strings.Contains(h, "type")):
			idx.certType = i
		case idx.regNum < 0 && (strings.Contains(h, "reg") || strings.Contains(h, "license") || strings.Contains(h, "number")):
			idx.regNum = i
		}
	}
	return idx, idx.name >= 0
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func allAddressless(records []RawRecord) bool {
	for _, r := range records {
		if r.Address != "" {
			return false
		}
	}
	return true
}

// ----------------------------------------------------------------------------
// Columnar text strategy
// ----------------------------------------------------------------------------

var columnSplitRe = regexp.MustCompile(`\t+| {2,}`)

// ColumnarStrategy handles table text where columns are separated by tabs or
// runs of spaces, the usual shape of text lifted from the registry PDF.
type ColumnarStrategy struct{}

func (ColumnarStrategy) Name() string { return "columnar" }

func (ColumnarStrategy) Extract(text string) ([]RawRecord, error) {
	var records []RawRecord
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cells := columnSplitRe.Split(line, -1)
		if len(cells) < 2 {
			continue
		}
		name := strings.TrimSpace(cells[0])
		if name == "" || isHeaderText(name) {
			continue
		}
		rec := RawRecord{Name: name, Address: strings.TrimSpace(cells[1])}
		if len(cells) > 2 {
			rec.CertType = strings.TrimSpace(cells[2])
		}
		if len(cells) > 3 {
			rec.RegNum = strings.TrimSpace(cells[3])
		}
		records = append(records, rec)
	}
	return records, nil
}

// ----------------------------------------------------------------------------
// Loose line strategy
// ----------------------------------------------------------------------------

var addressStartRe = regexp.MustCompile(`\d+[ ]+[A-Za-z]`)

// LooseLineStrategy is the last resort for degraded extractions: any line
// that contains something shaped like a street address is split at the start
// of that address, with everything before it taken as the name.
type LooseLineStrategy struct{}

func (LooseLineStrategy) Name() string { return "loose-line" }

func (LooseLineStrategy) Extract(text string) ([]RawRecord, error) {
	var records []RawRecord
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isHeaderText(line) {
			continue
		}
		loc := addressStartRe.FindStringIndex(line)
		if loc == nil || loc[0] == 0 {
			continue
		}
		name := strings.Trim(strings.TrimSpace(line[:loc[0]]), "-–:,")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		records = append(records, RawRecord{
			Name:    name,
			Address: strings.TrimSpace(line[loc[0]:]),
		})
	}
	return records, nil
}

func isHeaderText(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "name") ||
		strings.HasPrefix(l, "establishment") ||
		strings.HasPrefix(l, "page ")
}
