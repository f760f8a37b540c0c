package report

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LJTian/AINewsTracker/internal/collector"
	"github.com/LJTian/AINewsTracker/internal/leaderboard"
)

// 文章摘要在日报里的截断长度
const reportSummaryRunes = 300

// MarkdownReport 渲染 Markdown 日报并写到输出目录
type MarkdownReport struct {
	outputDir string
	now       func() time.Time
}

func NewMarkdownReport(outputDir string) *MarkdownReport {
	if outputDir == "" {
		outputDir = "output"
	}
	return &MarkdownReport{outputDir: outputDir, now: time.Now}
}

// Build 渲染日报正文，dateStr 形如 2006-01-02
func (r *MarkdownReport) Build(articles []collector.Article, summary, dateStr string, board *leaderboard.Summary) string {
	lines := []string{
		fmt.Sprintf("# %s 国产大模型日报", dateStr),
		"",
		summary,
		"",
	}

	if board != nil {
		lines = append(lines, r.formatBoard(board)...)
	}

	lines = append(lines,
		"---",
		"",
		"## 详细资讯",
		"",
	)

	if len(articles) == 0 {
		lines = append(lines, "暂无相关资讯。")
	} else {
		for _, a := range articles {
			lines = append(lines, r.formatArticle(a)...)
		}
	}

	lines = append(lines,
		"",
		"---",
		"",
		fmt.Sprintf("*本日报由 AI News Tracker 自动生成，更新时间: %s*", r.now().Format("2006-01-02 15:04:05")),
	)

	return strings.Join(lines, "\n")
}

// Write 把日报内容写到 <outputDir>/<dateStr>.md，返回文件路径
func (r *MarkdownReport) Write(dateStr, content string) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("report: create output dir: %w", err)
	}
	path := filepath.Join(r.outputDir, dateStr+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	log.Printf("report: saved %s", path)
	return path, nil
}

func (r *MarkdownReport) formatBoard(board *leaderboard.Summary) []string {
	lines := []string{
		"---",
		"",
		"## 国产模型排行榜 (LM Arena)",
		"",
	}

	if len(board.TopGlobal) > 0 {
		lines = append(lines,
			"### 全球 Top 5",
			"",
			"| 排名 | 模型 | ELO 分数 |",
			"|-----|------|---------|",
		)
		for _, m := range board.TopGlobal {
			lines = append(lines, fmt.Sprintf("| %d | %s | %.0f |", m.Rank, capName(m.Name, 45, 42), m.Score))
		}
		lines = append(lines, "")
	}

	if len(board.ChineseModels) > 0 {
		lines = append(lines,
			"### 国产模型排名",
			"",
			"| 全球排名 | 模型 | ELO 分数 |",
			"|---------|------|---------|",
		)
		for _, m := range board.ChineseModels {
			lines = append(lines, fmt.Sprintf("| %d | %s | %.0f |", m.Rank, capName(m.Name, 45, 42), m.Score))
		}
		lines = append(lines,
			"",
			fmt.Sprintf("*数据来源: [%s](https://lmarena.ai/) | [原始数据](https://github.com/nakasyou/lmarena-history) | 更新时间: %s*", board.Source, board.UpdatedAt),
			"",
		)
	} else {
		lines = append(lines, "暂无排行榜数据。", "")
	}

	return lines
}

func (r *MarkdownReport) formatArticle(a collector.Article) []string {
	title := a.Title
	if title == "" {
		title = "无标题"
	}
	source := a.Source
	if source == "" {
		source = "未知来源"
	}

	lines := []string{fmt.Sprintf("### %s", title), ""}

	meta := fmt.Sprintf("**来源**: %s", source)
	if !a.Published.IsZero() {
		meta += fmt.Sprintf(" | **时间**: %s", a.Published.Format("2006-01-02 15:04"))
	}
	lines = append(lines, meta, "")

	if summary := clipRunes(a.Summary, reportSummaryRunes); summary != "" {
		lines = append(lines, summary, "")
	}
	if a.Link != "" {
		lines = append(lines, fmt.Sprintf("[阅读原文](%s)", a.Link), "")
	}

	return lines
}

// capName 超过 max 个字符的模型名截到 cut 并加省略号，保持表格不被撑爆
func capName(name string, max, cut int) string {
	rs := []rune(name)
	if len(rs) <= max {
		return name
	}
	return string(rs[:cut]) + "..."
}

func clipRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
