package ingestion

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/assetbeta/internal/domain/models"
	"github.com/guttosm/assetbeta/internal/storage"
)

// dateHeader must be the first column of every returns file.
const dateHeader = "Date"

// dateLayouts are tried in order for the Date column.
var dateLayouts = []string{"2006-01-02", "2006-01", "2006/01/02", "01/2006"}

// missingTokens are cell values treated as "no data for this month".
var missingTokens = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "nan": {}, "null": {}, "-": {},
}

// ParseReturns reads a wide returns table: a Date column followed by one
// column per asset, one row per month.
//
// It fails on:
//   - a header whose first column is not Date, or with empty/duplicate asset names
//   - rows with a column count different from the header
//   - unparseable dates or values
//   - two rows for the same month
//
// It tolerates:
//   - empty or NA-like cells (the asset is absent for that month)
//   - ';' as separator, in which case ',' is the decimal mark
//
// Dates are normalised to the first day of the month and records are
// returned in ascending date order.
func ParseReturns(r io.Reader) (models.ReturnSeries, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return models.ReturnSeries{}, fmt.Errorf("read header: %w", err)
	}
	first = strings.TrimPrefix(first, "\ufeff")
	if strings.TrimSpace(first) == "" {
		return models.ReturnSeries{}, fmt.Errorf("read header: empty input")
	}

	comma := detectDelimiter(first)
	cr := csv.NewReader(io.MultiReader(strings.NewReader(first), br))
	cr.Comma = comma
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // checked explicitly for better messages

	header, err := cr.Read()
	if err != nil {
		return models.ReturnSeries{}, fmt.Errorf("read header: %w", err)
	}
	assets, err := validateHeader(header)
	if err != nil {
		return models.ReturnSeries{}, err
	}

	series := models.ReturnSeries{Assets: assets}
	months := map[time.Time]int{}
	lineNumber := 1

	for {
		rec, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return models.ReturnSeries{}, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		if len(rec) != len(header) {
			return models.ReturnSeries{}, fmt.Errorf("invalid column count on line %d: expected %d got %d", lineNumber, len(header), len(rec))
		}

		row, err := recordToReturns(rec, assets, comma == ';')
		if err != nil {
			return models.ReturnSeries{}, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		if prev, dup := months[row.Date]; dup {
			return models.ReturnSeries{}, fmt.Errorf("line %d: month %s already defined on line %d", lineNumber, row.Date.Format("2006-01"), prev)
		}
		months[row.Date] = lineNumber
		series.Records = append(series.Records, row)
	}

	sort.SliceStable(series.Records, func(i, j int) bool {
		return series.Records[i].Date.Before(series.Records[j].Date)
	})
	return series, nil
}

// ParseReturnsFile opens path and parses it with ParseReturns.
func ParseReturnsFile(path string) (models.ReturnSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ReturnSeries{}, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := ParseReturns(f)
	if err != nil {
		return models.ReturnSeries{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func detectDelimiter(headerLine string) rune {
	if strings.Count(headerLine, ";") > strings.Count(headerLine, ",") {
		return ';'
	}
	return ','
}

func validateHeader(header []string) ([]string, error) {
	if len(header) < 2 {
		return nil, fmt.Errorf("invalid header: expected %q plus at least one asset column, got %d columns", dateHeader, len(header))
	}
	if !strings.EqualFold(strings.TrimSpace(header[0]), dateHeader) {
		return nil, fmt.Errorf("invalid header at col 1: expected %q, got %q", dateHeader, header[0])
	}

	assets := make([]string, 0, len(header)-1)
	seen := map[string]bool{}
	for i, h := range header[1:] {
		name := strings.TrimSpace(h)
		if name == "" {
			return nil, fmt.Errorf("invalid header at col %d: empty asset name", i+2)
		}
		if seen[name] {
			return nil, fmt.Errorf("invalid header at col %d: duplicate asset %q", i+2, name)
		}
		seen[name] = true
		assets = append(assets, name)
	}
	return assets, nil
}

// recordToReturns converts one validated row into a ReturnRecord.
// decimalComma switches the decimal mark from '.' to ','.
func recordToReturns(rec []string, assets []string, decimalComma bool) (models.ReturnRecord, error) {
	d, err := parseMonth(strings.TrimSpace(rec[0]))
	if err != nil {
		return models.ReturnRecord{}, err
	}
	out := models.ReturnRecord{Date: d, Values: make(map[string]float64, len(assets))}

	for j, asset := range assets {
		s := strings.TrimSpace(rec[j+1])
		if _, missing := missingTokens[strings.ToLower(s)]; missing {
			continue
		}
		if decimalComma {
			s = strings.ReplaceAll(s, ",", ".")
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.ReturnRecord{}, fmt.Errorf("invalid value for %s: %v", asset, err)
		}
		if math.IsInf(v, 0) {
			continue
		}
		out.Values[asset] = v
	}
	return out, nil
}

func parseMonth(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid Date: empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.MonthStart(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid Date: %q", s)
}

// parseAndPersistFile parses one returns file and persists it in batches.
//
// Parameters:
//   - ctx:    context for cancellation/timeouts.
//   - path:   file path.
//   - repo:   repository for DB insertion.
//   - batch:  batch size for inserts (e.g., 5000).
//   - source: value stored in asset_returns.source (the file name).
func parseAndPersistFile(ctx context.Context, path string, repo storage.ReturnsRepository, batch int, source string) (int, error) {
	series, err := ParseReturnsFile(path)
	if err != nil {
		return 0, err
	}

	buf := make([]models.ReturnObservation, 0, batch)
	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := repo.InsertReturnsBatch(buf); err != nil {
			return err
		}
		buf = buf[:0]
		return nil
	}

	total := 0
	for _, rec := range series.Records {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		for _, asset := range series.Assets {
			v, ok := rec.Value(asset)
			if !ok {
				continue
			}
			buf = append(buf, models.ReturnObservation{Period: rec.Date, Asset: asset, Value: v, Source: source})
			total++
			if len(buf) >= batch {
				if err := flush(); err != nil {
					return 0, fmt.Errorf("flush batch ending %s: %w", rec.Date.Format("2006-01"), err)
				}
			}
		}
	}

	if err := flush(); err != nil {
		return 0, fmt.Errorf("final flush: %w", err)
	}
	return total, nil
}
