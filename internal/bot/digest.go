package bot

import (
	"fmt"
	"strings"

	"platingreport/internal/domain"
	"platingreport/internal/markdown"
	"platingreport/internal/pipeline"
	"platingreport/internal/summarizer"
)

const maxDigestCells = 20

// Digest renders r as MarkdownV2 messages: headline counts, the failing
// cells and the analysis reply when one is given.
func Digest(r pipeline.Result, reply string) []string {
	ok, ng := r.Counts()

	blocks := []string{
		markdown.Bold(fmt.Sprintf("🧪 %s", r.Sheet)),
		markdown.EscapeV2(fmt.Sprintf("OK %d / NG %d / 缺值剔除 %d", ok, ng, r.Dropped())),
	}

	if cells := failingCells(r); len(cells) > 0 {
		blocks = append(blocks, markdown.Bold("🚨 超標"))
		blocks = append(blocks, markdown.Pre(strings.Join(cells, "\n")))
	}

	if reply != "" {
		title := "🧠 分析回覆"
		if summarizer.IsErrorReply(reply) {
			title = "⚠️ 分析失敗"
		}
		blocks = append(blocks, markdown.Bold(title))
		blocks = append(blocks, replyBlocks(reply)...)
	}

	return pack(blocks)
}

func failingCells(r pipeline.Result) []string {
	bounds := make(map[string]domain.Threshold, len(r.Thresholds))
	for _, th := range r.Thresholds {
		bounds[th.Attribute] = th
	}

	var lines []string
	for i, c := range r.OOSMarks {
		if i == maxDigestCells {
			lines = append(lines, fmt.Sprintf("… +%d", len(r.OOSMarks)-maxDigestCells))
			break
		}

		rec := r.OutOfSpec.Records[c.Row]
		th := bounds[c.Attribute]
		lines = append(lines, fmt.Sprintf("#%d %s=%s [%g, %g]",
			c.Row+1,
			c.Attribute,
			domain.Text(rec[c.Attribute]),
			th.Low,
			th.High))
	}

	return lines
}
