// Package report computes the tables behind the dashboard charts. Nothing
// here draws; renderers consume the results.
package report

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"platingreport/internal/domain"
)

// YearMonthAttribute holds the first instant of the record's month.
const YearMonthAttribute = "year_month"

// ParseYearMonth keeps the records whose dateAttr parses as a timestamp and
// adds YearMonthAttribute to each of them.
func ParseYearMonth(t domain.Table, dateAttr string) domain.Table {
	kept := make([]domain.Record, 0, len(t.Records))

	for _, rec := range t.Records {
		ts, ok := domain.Time(rec[dateAttr])
		if !ok {
			continue
		}

		out := rec.Clone()
		out[dateAttr] = ts
		out[YearMonthAttribute] = monthStart(ts)
		kept = append(kept, out)
	}

	return domain.Table{
		Name:    t.Name,
		Columns: t.WithColumn(YearMonthAttribute),
		Records: kept,
	}
}

func monthStart(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Point is one x position with a value per series; a missing value is NaN.
type Point struct {
	X      domain.Value
	Values []float64
}

type Series struct {
	X      string
	Y      []string
	Points []Point
}

// LineSeries drops the records where every y attribute is missing.
func LineSeries(t domain.Table, x string, ys []string) Series {
	s := Series{X: x, Y: slices.Clone(ys)}

	for _, rec := range t.Records {
		values := make([]float64, len(ys))
		present := 0
		for i, y := range ys {
			if f, ok := domain.Float(rec[y]); ok {
				values[i] = f
				present++
			} else {
				values[i] = math.NaN()
			}
		}
		if present == 0 {
			continue
		}
		s.Points = append(s.Points, Point{X: rec[x], Values: values})
	}

	return s
}

type Share struct {
	Status  domain.Classification
	Count   int
	Percent float64
}

func (s Share) String() string {
	return fmt.Sprintf("%s %d (%.1f%%)", s.Status, s.Count, s.Percent*100)
}

// StatusShare counts records per classification, largest first.
func StatusShare(t domain.Table) []Share {
	counts := make(map[domain.Classification]int)
	total := 0

	for _, rec := range t.Records {
		status, ok := rec[domain.StatusAttribute].(domain.Classification)
		if !ok {
			continue
		}
		counts[status]++
		total++
	}

	shares := make([]Share, 0, len(counts))
	for status, n := range counts {
		shares = append(shares, Share{
			Status:  status,
			Count:   n,
			Percent: float64(n) / float64(total),
		})
	}
	slices.SortFunc(shares, func(a, b Share) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Status, b.Status)
	})

	return shares
}

type XY struct {
	X, Y float64
}

// Fit is the linear least-squares trend of Y over X.
type Fit struct {
	X, Y      string
	Points    []XY
	Slope     float64
	Intercept float64
	Valid     bool
}

func (f Fit) At(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// Trend fits y = slope*x + intercept over the records where both are
// numeric. Valid is false with fewer than two distinct x values.
func Trend(t domain.Table, x, y string) Fit {
	fit := Fit{X: x, Y: y}

	for _, rec := range t.Records {
		fx, okX := domain.Float(rec[x])
		fy, okY := domain.Float(rec[y])
		if okX && okY {
			fit.Points = append(fit.Points, XY{X: fx, Y: fy})
		}
	}

	n := float64(len(fit.Points))
	if n < 2 {
		return fit
	}

	var sumX, sumY float64
	for _, p := range fit.Points {
		sumX += p.X
		sumY += p.Y
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, sxy float64
	for _, p := range fit.Points {
		dx := p.X - meanX
		sxx += dx * dx
		sxy += dx * (p.Y - meanY)
	}
	if sxx == 0 {
		return fit
	}

	fit.Slope = sxy / sxx
	fit.Intercept = meanY - fit.Slope*meanX
	fit.Valid = true

	return fit
}

type MonthTotal struct {
	Month time.Time
	Count int
	Total float64
}

func (m MonthTotal) Label() string {
	return m.Month.Format("2006-01")
}

// Rounded is Total rounded half away from zero, as shown on the bar labels.
func (m MonthTotal) Rounded() int {
	return int(math.Round(m.Total))
}

// MonthlyCount counts plating batches per month.
func MonthlyCount(t domain.Table, dateAttr string) []MonthTotal {
	return monthly(ParseYearMonth(t, dateAttr), "")
}

// MonthlyMaterial sums materialAttr per month; non-numeric quantities
// contribute nothing but the record still counts as a batch.
func MonthlyMaterial(t domain.Table, dateAttr, materialAttr string) []MonthTotal {
	return monthly(ParseYearMonth(t, dateAttr), materialAttr)
}

func monthly(t domain.Table, materialAttr string) []MonthTotal {
	byMonth := make(map[time.Time]*MonthTotal)

	for _, rec := range t.Records {
		month := rec[YearMonthAttribute].(time.Time)

		m, ok := byMonth[month]
		if !ok {
			m = &MonthTotal{Month: month}
			byMonth[month] = m
		}
		m.Count++

		if materialAttr != "" {
			if f, ok := domain.Float(rec[materialAttr]); ok {
				m.Total += f
			}
		}
	}

	out := make([]MonthTotal, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b MonthTotal) int {
		return a.Month.Compare(b.Month)
	})

	return out
}
