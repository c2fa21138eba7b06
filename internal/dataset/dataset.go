// Package dataset loads the NRI county extract into immutable CountyRecords.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/FoxyGramps930/Capstone-Loss-Forecast-Dashboard/internal/domain"
)

// Identity and text columns understood by the decoder.
const (
	ColNRIID       = "NRI_ID"
	ColSTCOFIPS    = "STCOFIPS"
	ColCounty      = "COUNTY"
	ColState       = "STATE"
	ColStateAbbrev = "STATEABBRV"
	ColRegion      = "REGION"
)

// Table is raw tabular data as read from a CSV file or a database query.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Dataset is the full county set plus the schema it was decoded from.
type Dataset struct {
	Source  string
	Records []domain.CountyRecord

	columns        []string
	numericColumns map[string]bool
}

// StateOption is one entry of the state filter.
type StateOption struct {
	Name   string `json:"name"`
	Abbrev string `json:"abbrev,omitempty"`
	Region string `json:"region"`
}

// Load reads and decodes the CSV dataset at path. Every failure is a
// *domain.DataError.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.DataError{Source: path, Err: err}
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, &domain.DataError{Source: path, Err: err}
	}
	return Decode(path, t)
}

// ReadCSV reads a header row followed by data rows.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return Table{}, errors.New("empty file")
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return Table{Columns: header, Rows: rows[1:]}, nil
}

// Decode validates the table schema and builds one CountyRecord per row.
func Decode(source string, t Table) (*Dataset, error) {
	fail := func(err error) (*Dataset, error) {
		return nil, &domain.DataError{Source: source, Err: err}
	}

	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if _, dup := idx[c]; dup {
			return fail(fmt.Errorf("duplicate column %q", c))
		}
		idx[c] = i
	}

	if err := checkRequired(idx); err != nil {
		return fail(err)
	}
	if len(t.Rows) == 0 {
		return fail(errors.New("no county rows"))
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fail(fmt.Errorf("row %d: expected %d fields, got %d", i+1, len(t.Columns), len(row)))
		}
	}

	numeric := numericColumns(t, idx)

	records := make([]domain.CountyRecord, 0, len(t.Rows))
	seen := make(map[string]int, len(t.Rows))
	for i, row := range t.Rows {
		rec, err := decodeRow(row, idx, numeric)
		if err != nil {
			return fail(fmt.Errorf("row %d: %w", i+1, err))
		}
		if prev, dup := seen[rec.ID]; dup {
			return fail(fmt.Errorf("row %d: duplicate county id %q (first seen on row %d)", i+1, rec.ID, prev))
		}
		seen[rec.ID] = i + 1
		records = append(records, rec)
	}

	return &Dataset{
		Source:         source,
		Records:        records,
		columns:        append([]string(nil), t.Columns...),
		numericColumns: numeric,
	}, nil
}

func checkRequired(idx map[string]int) error {
	var missing []string
	_, hasNRI := idx[ColNRIID]
	_, hasFIPS := idx[ColSTCOFIPS]
	if !hasNRI && !hasFIPS {
		missing = append(missing, ColNRIID+" or "+ColSTCOFIPS)
	}
	if _, ok := idx[ColCounty]; !ok {
		missing = append(missing, ColCounty)
	}
	_, hasState := idx[ColState]
	_, hasAbbrev := idx[ColStateAbbrev]
	if !hasState && !hasAbbrev {
		missing = append(missing, ColState+" or "+ColStateAbbrev)
	}
	for _, h := range domain.AllHazards() {
		if _, ok := idx[h.Column()]; !ok {
			missing = append(missing, h.Column())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing expected columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// numericColumns returns every column, other than the identity and text
// columns, whose non-empty cells all parse as numbers. Hazard columns are
// always numeric; a bad hazard cell is reported by decodeRow.
func numericColumns(t Table, idx map[string]int) map[string]bool {
	text := map[string]bool{
		ColNRIID: true, ColSTCOFIPS: true, ColCounty: true,
		ColState: true, ColStateAbbrev: true, ColRegion: true,
	}

	out := make(map[string]bool, len(t.Columns))
	for col, i := range idx {
		if text[col] {
			continue
		}
		if _, ok := domain.ParseHazard(col); ok {
			out[col] = true
			continue
		}
		ok := true
		for _, row := range t.Rows {
			if _, err := parseCell(row[i]); err != nil {
				ok = false
				break
			}
		}
		if ok {
			out[col] = true
		}
	}
	return out
}

func decodeRow(row []string, idx map[string]int, numeric map[string]bool) (domain.CountyRecord, error) {
	get := func(col string) string {
		if i, ok := idx[col]; ok {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	rec := domain.CountyRecord{
		ID:          countyID(get(ColNRIID), get(ColSTCOFIPS)),
		County:      get(ColCounty),
		State:       get(ColState),
		StateAbbrev: get(ColStateAbbrev),
		Region:      get(ColRegion),
	}
	if rec.ID == "" {
		return rec, errors.New("empty county identifier")
	}
	if rec.State == "" {
		rec.State = rec.StateAbbrev
	}
	if rec.StateAbbrev == "" {
		rec.StateAbbrev, _ = domain.StateAbbrevFor(rec.State)
	}
	if rec.Region == "" {
		rec.Region = domain.RegionForState(rec.StateAbbrev)
	}

	for _, h := range domain.AllHazards() {
		v, err := parseCell(row[idx[h.Column()]])
		if err != nil {
			return rec, fmt.Errorf("column %s: %w", h.Column(), err)
		}
		rec.Hazards[h] = v
	}

	rec.Aux = make(map[string]float64, len(numeric))
	for col := range numeric {
		if _, ok := domain.ParseHazard(col); ok {
			continue
		}
		v, _ := parseCell(row[idx[col]])
		rec.Aux[col] = v
	}
	return rec, nil
}

// countyID strips the leading "C" from NRI_ID, falling back to STCOFIPS
// zero-padded to five digits.
func countyID(nriID, stcofips string) string {
	if len(nriID) > 1 {
		return nriID[1:]
	}
	if stcofips == "" {
		return ""
	}
	if len(stcofips) < 5 {
		stcofips = strings.Repeat("0", 5-len(stcofips)) + stcofips
	}
	return stcofips
}

// parseCell reads a numeric cell. Empty and NaN cells are zero, matching the
// fill applied when the model was trained.
func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "na", "nan", "null":
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(v) {
		return 0, nil
	}
	if math.IsInf(v, 0) {
		return 0, fmt.Errorf("infinite value: %q", s)
	}
	return v, nil
}

// Columns returns the header the dataset was decoded from.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// HasFeature reports whether every record carries a numeric value for the
// named column, i.e. whether a model may use it as an input feature.
func (d *Dataset) HasFeature(column string) bool {
	return d.numericColumns[column]
}

// Regions returns the distinct regions in the dataset, sorted.
func (d *Dataset) Regions() []string {
	set := make(map[string]struct{})
	for _, r := range d.Records {
		set[r.Region] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// States returns the distinct states in the dataset, sorted by name.
func (d *Dataset) States() []StateOption {
	set := make(map[string]StateOption)
	for _, r := range d.Records {
		if _, ok := set[r.State]; !ok {
			set[r.State] = StateOption{Name: r.State, Abbrev: r.StateAbbrev, Region: r.Region}
		}
	}
	out := make([]StateOption, 0, len(set))
	for _, s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
