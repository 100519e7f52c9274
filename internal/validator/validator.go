// Package validator checks plating records against concentration thresholds.
//
// Every function here is a pure transformation: input tables are never
// modified and results are recomputed on each call.
package validator

import (
	"platingreport/internal/domain"
)

// Cell identifies a single out-of-range value for highlighting.
type Cell struct {
	Row       int
	Attribute string
}

// CoerceAndFilter converts every named attribute to float64 and keeps only
// the records where all of them converted.
func CoerceAndFilter(t domain.Table, attributes []string) domain.Table {
	kept := make([]domain.Record, 0, len(t.Records))

	for _, rec := range t.Records {
		coerced, ok := coerceRecord(rec, attributes)
		if !ok {
			continue
		}
		kept = append(kept, coerced)
	}

	return t.WithRecords(kept)
}

func coerceRecord(rec domain.Record, attributes []string) (domain.Record, bool) {
	out := rec.Clone()
	for _, attr := range attributes {
		f, ok := domain.Float(rec[attr])
		if !ok {
			return nil, false
		}
		out[attr] = f
	}
	return out, true
}

// Classify returns a copy of t where each record carries its verdict under
// domain.StatusAttribute. No record is removed.
func Classify(t domain.Table, thresholds domain.Thresholds) domain.Table {
	classified := make([]domain.Record, 0, len(t.Records))

	for _, rec := range t.Records {
		out := rec.Clone()
		out[domain.StatusAttribute] = ClassifyRecord(rec, thresholds)
		classified = append(classified, out)
	}

	return domain.Table{
		Name:    t.Name,
		Columns: t.WithColumn(domain.StatusAttribute),
		Records: classified,
	}
}

// ClassifyRecord is OK iff every threshold contains the record's value.
func ClassifyRecord(rec domain.Record, thresholds domain.Thresholds) domain.Classification {
	if InSpec(rec, thresholds) {
		return domain.StatusOK
	}
	return domain.StatusNG
}

func InSpec(rec domain.Record, thresholds domain.Thresholds) bool {
	for _, th := range thresholds {
		if !th.Contains(rec[th.Attribute]) {
			return false
		}
	}
	return true
}

// SelectOutOfSpec keeps the records failing at least one threshold. Values
// that do not coerce to a number count as out of range.
func SelectOutOfSpec(t domain.Table, thresholds domain.Thresholds) domain.Table {
	var oos []domain.Record

	for _, rec := range t.Records {
		if !InSpec(rec, thresholds) {
			oos = append(oos, rec)
		}
	}

	return t.WithRecords(oos)
}

// MarkOutOfRangeCells lists every (row, attribute) pair failing its threshold,
// row-major and in threshold order.
func MarkOutOfRangeCells(t domain.Table, thresholds domain.Thresholds) []Cell {
	var cells []Cell

	for i, rec := range t.Records {
		for _, th := range thresholds {
			if !th.Contains(rec[th.Attribute]) {
				cells = append(cells, Cell{Row: i, Attribute: th.Attribute})
			}
		}
	}

	return cells
}

// Marks is a lookup set built from MarkOutOfRangeCells.
type Marks map[Cell]struct{}

func NewMarks(cells []Cell) Marks {
	m := make(Marks, len(cells))
	for _, c := range cells {
		m[c] = struct{}{}
	}
	return m
}

func (m Marks) Has(row int, attribute string) bool {
	_, ok := m[Cell{Row: row, Attribute: attribute}]
	return ok
}
