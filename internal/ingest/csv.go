// Package ingest parses device CSV exports into a normalized event bundle.
// Device families are detected from header content, columns are mapped by
// name heuristics, and malformed rows are skipped rather than failing the
// whole file.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/vm799/Diabetes-Data-Analytics-Platform/internal/model"
)

var (
	ErrEmptyFile       = errors.New("csv file has no data rows")
	ErrNoTimestamp     = errors.New("no timestamp column found")
	ErrNoGlucoseColumn = errors.New("no glucose column found")
	ErrNoValidReadings = errors.New("no valid glucose readings found")
	errUnparseableCSV  = errors.New("unparseable csv content")
)

// timestampLayouts are tried in order for every timestamp cell. Device
// exports disagree on ordering, so the unambiguous layouts come first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"01/02/2006 15:04",
	"02/01/2006 15:04",
	"01/02/2006 3:04 PM",
}

// column name fragments, matched case-insensitively against header cells.
var (
	timestampPatterns = []string{"timestamp", "time", "datetime", "date"}
	glucosePatterns   = []string{"glucose", "bg_value", "blood_glucose", "historic_glucose", "bg"}
	bolusPatterns     = []string{"bolus", "insulin_bolus", "rapid_insulin"}
	basalPatterns     = []string{"basal", "insulin_basal", "long_insulin"}
	carbPatterns      = []string{"carbs", "carbohydrates", "carb_grams"}
	mealTagPatterns   = []string{"meal_type", "meal_tag", "meal"}
)

// columnMap holds the resolved index per logical field; -1 means absent.
type columnMap struct {
	timestamp int
	glucose   int
	bolus     int
	basal     int
	carbs     int
	mealTag   int
}

// Result carries the parsed bundle plus row-level accounting so callers can
// report how lossy the parse was.
type Result struct {
	Bundle      model.Bundle
	RowsTotal   int
	RowsSkipped int
}

// Parser converts CSV exports to bundles. Zero value is not usable; use New.
type Parser struct {
	log *slog.Logger
}

func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{log: logger.With("component", "ingest")}
}

// DetectDevice inspects the first lines of the export for device-family
// markers. The suggested type, when known, always wins over detection.
func DetectDevice(content string, suggested model.DeviceType) model.DeviceType {
	if suggested != model.DeviceUnknown && suggested != "" {
		return suggested
	}
	head := content
	if idx := nthLineEnd(content, 5); idx > 0 {
		head = content[:idx]
	}
	head = strings.ToLower(head)
	switch {
	case strings.Contains(head, "dexcom") || strings.Contains(head, "cgm"):
		return model.DeviceDexcom
	case strings.Contains(head, "libre") || strings.Contains(head, "abbott"):
		return model.DeviceLibreView
	case strings.Contains(head, "glooko"):
		return model.DeviceGlooko
	case strings.Contains(head, "tandem"):
		return model.DeviceTandem
	case strings.Contains(head, "medtronic"):
		return model.DeviceMedtronic
	case strings.Contains(head, "omnipod"):
		return model.DeviceOmnipod
	}
	return model.DeviceUnknown
}

// Parse reads the full CSV export and returns the normalized bundle. Rows
// with unparseable timestamps or values are skipped; the parse only fails
// when the header is unusable or no glucose reading survives.
func (p *Parser) Parse(r io.Reader, suggested model.DeviceType) (Result, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("read csv: %w", err)
	}
	content := string(raw)
	device := DetectDevice(content, suggested)

	cr := csv.NewReader(strings.NewReader(content))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", errUnparseableCSV, err)
	}
	cols := mapColumns(header)
	if cols.timestamp < 0 {
		return Result{}, ErrNoTimestamp
	}
	if cols.glucose < 0 && cols.bolus < 0 && cols.basal < 0 && cols.carbs < 0 {
		return Result{}, ErrNoGlucoseColumn
	}

	var (
		glucose []model.GlucoseReading
		insulin []model.InsulinEvent
		carbs   []model.CarbEvent
		res     Result
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.RowsSkipped++
			continue
		}
		res.RowsTotal++

		ts, ok := parseTimestamp(cell(row, cols.timestamp))
		if !ok {
			res.RowsSkipped++
			continue
		}

		used := false
		if v, ok := parseFloat(cell(row, cols.glucose)); ok {
			if g, err := model.NewGlucoseReading(ts, v, device); err == nil {
				glucose = append(glucose, g)
				used = true
			}
		}
		if v, ok := parseFloat(cell(row, cols.bolus)); ok && v > 0 {
			if e, err := model.NewInsulinEvent(ts, model.InsulinBolus, v); err == nil {
				insulin = append(insulin, e)
				used = true
			}
		}
		if v, ok := parseFloat(cell(row, cols.basal)); ok && v > 0 {
			if e, err := model.NewInsulinEvent(ts, model.InsulinBasal, v); err == nil {
				insulin = append(insulin, e)
				used = true
			}
		}
		if v, ok := parseFloat(cell(row, cols.carbs)); ok && v > 0 {
			if c, err := model.NewCarbEvent(ts, v, cell(row, cols.mealTag)); err == nil {
				carbs = append(carbs, c)
				used = true
			}
		}
		if !used {
			res.RowsSkipped++
		}
	}

	if res.RowsTotal == 0 {
		return res, ErrEmptyFile
	}
	if len(glucose) == 0 {
		return res, ErrNoValidReadings
	}

	res.Bundle = model.NewBundle(glucose, insulin, carbs, device)
	p.log.Info("csv parsed",
		"device", device,
		"rows", res.RowsTotal,
		"skipped", res.RowsSkipped,
		"glucose", len(glucose),
		"insulin", len(insulin),
		"carbs", len(carbs))
	return res, nil
}

// mapColumns resolves each logical field to the first header cell containing
// one of its name fragments. Each column serves at most one field.
func mapColumns(header []string) columnMap {
	cols := columnMap{timestamp: -1, glucose: -1, bolus: -1, basal: -1, carbs: -1, mealTag: -1}
	claimed := make(map[int]bool, len(header))

	assign := func(target *int, patterns []string) {
		if *target >= 0 {
			return
		}
		for i, raw := range header {
			if claimed[i] {
				continue
			}
			name := strings.ToLower(strings.TrimSpace(raw))
			for _, p := range patterns {
				if strings.Contains(name, p) {
					*target = i
					claimed[i] = true
					return
				}
			}
		}
	}

	// Glucose before timestamp: "historic_glucose" would otherwise be
	// claimed by the bare "time" fragment. Bolus/basal before carbs for the
	// same reason with combined pump columns.
	assign(&cols.glucose, glucosePatterns)
	assign(&cols.bolus, bolusPatterns)
	assign(&cols.basal, basalPatterns)
	assign(&cols.carbs, carbPatterns)
	assign(&cols.mealTag, mealTagPatterns)
	assign(&cols.timestamp, timestampPatterns)
	return cols
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func nthLineEnd(s string, n int) int {
	pos := 0
	for i := 0; i < n; i++ {
		next := strings.IndexByte(s[pos:], '\n')
		if next < 0 {
			return -1
		}
		pos += next + 1
	}
	return pos
}
