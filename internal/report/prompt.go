package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"platingreport/internal/domain"
)

const analysisPromptTemplate = `你是一位資深電鍍分析師。請根據以下電鍍資料（包含日期、濃度、電鍍次數），
提出這%d筆資料的趨勢判斷與改善建議：
%s`

// Latest returns the last n records of t.
func Latest(t domain.Table, n int) domain.Table {
	if n <= 0 {
		return t.WithRecords(nil)
	}
	start := max(len(t.Records)-n, 0)
	return t.WithRecords(t.Records[start:])
}

// LatestCSV renders the last n records as CSV with a header row.
func LatestCSV(t domain.Table, n int) (string, error) {
	latest := Latest(t, n)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(latest.Columns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(latest.Columns))
	for _, rec := range latest.Records {
		for i, col := range latest.Columns {
			row[i] = domain.Text(rec[col])
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush CSV: %w", err)
	}

	return buf.String(), nil
}

// AnalysisPrompt asks for a trend judgement over the last n records.
func AnalysisPrompt(t domain.Table, n int) (string, error) {
	data, err := LatestCSV(t, n)
	if err != nil {
		return "", err
	}

	shown := min(n, len(t.Records))
	return fmt.Sprintf(analysisPromptTemplate, shown, data), nil
}
