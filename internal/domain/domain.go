package domain

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// StatusAttribute is the attribute Classify writes the verdict to.
const StatusAttribute = "狀態"

type Classification string

const (
	StatusOK Classification = "OK"
	StatusNG Classification = "NG"
)

// Value is a single cell: string, float64, an integer kind or time.Time.
type Value = any

type Record map[string]Value

// Clone returns a shallow copy that can be modified without touching r.
func (r Record) Clone() Record {
	out := make(Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

type Table struct {
	Name    string
	Columns []string
	Records []Record
}

// WithRecords returns a table sharing t's name and columns.
func (t Table) WithRecords(records []Record) Table {
	return Table{
		Name:    t.Name,
		Columns: slices.Clone(t.Columns),
		Records: records,
	}
}

// WithColumn returns the columns of t with name appended once.
func (t Table) WithColumn(name string) []string {
	if slices.Contains(t.Columns, name) {
		return slices.Clone(t.Columns)
	}
	return append(slices.Clone(t.Columns), name)
}

type Workbook struct {
	Source string
	Order  []string
	Sheets map[string]Table
}

func (w Workbook) Sheet(name string) (Table, bool) {
	t, ok := w.Sheets[name]
	return t, ok
}

type Threshold struct {
	Attribute string  `yaml:"attribute"`
	Low       float64 `yaml:"low"`
	High      float64 `yaml:"high"`
}

// Contains reports whether v coerces to a number within [Low, High].
// Non-numeric values are never contained.
func (th Threshold) Contains(v Value) bool {
	f, ok := Float(v)
	if !ok {
		return false
	}
	return th.Low <= f && f <= th.High
}

func (th Threshold) String() string {
	return fmt.Sprintf("%s [%g, %g]", th.Attribute, th.Low, th.High)
}

type Thresholds []Threshold

func (ts Thresholds) Attributes() []string {
	names := make([]string, 0, len(ts))
	for _, th := range ts {
		names = append(names, th.Attribute)
	}
	return names
}

// Float coerces v to a finite float64.
func Float(v Value) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"1/2/06 15:04",
	"01-02-06",
}

// Time coerces v to a timestamp. Strings are tried against the layouts
// spreadsheet exports commonly produce.
func Time(v Value) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Text renders v the way tables and CSV exports show it.
func Text(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	case Classification:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
