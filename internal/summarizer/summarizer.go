package summarizer

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/LJTian/AINewsTracker/internal/collector"
)

const systemPrompt = `你是一个专业的 AI 资讯分析师，专注于国产大模型领域。
你的任务是分析当日的 AI 资讯，并生成简洁的中文摘要。

要求：
1. 总结要点：提炼 3-5 条最重要的资讯要点
2. 语言简洁：每条要点不超过 50 字
3. 突出重点：优先关注模型发布、技术突破、重要合作等
4. 客观中立：只陈述事实，不添加主观评价`

const promptTemplate = `以下是今日收集的 AI 资讯列表：

%s

请根据以上资讯，生成今日要点总结。格式如下：

## 今日要点

1. [要点1]
2. [要点2]
3. [要点3]
...

如果资讯较少或没有特别重要的内容，可以适当减少要点数量。`

// 各种情况下的兜底总结，保证日报里总有"今日要点"板块
const (
	EmptySummary      = "## 今日要点\n\n暂无相关资讯。"
	FailedSummary     = "## 今日要点\n\n总结生成失败，请查看详细资讯列表。"
	MissingKeySummary = "## 今日要点\n\n（AI 总结未生成，请配置 GLM_API_KEY）"
)

const (
	// 进 prompt 的文章数与单篇摘要长度上限，避免超出上下文
	maxPromptArticles     = 20
	maxPromptSummaryRunes = 200
	summaryTemperature    = 0.5
)

// Summarizer 调用 GLM 把当日文章压成"今日要点"总结
type Summarizer struct {
	client *GLMClient
}

// NewSummarizer 创建总结器；apiKey 为空时降级为固定提示文案
func NewSummarizer(apiKey string) *Summarizer {
	s := &Summarizer{}
	if apiKey != "" {
		client, err := NewGLMClient(apiKey)
		if err == nil {
			s.client = client
		}
	}
	return s
}

// Summarize 生成总结文本。任何失败都退回兜底文案，不向上返回错误，
// 保证日报和通知总能发出去。
func (s *Summarizer) Summarize(ctx context.Context, articles []collector.Article) string {
	if len(articles) == 0 {
		return EmptySummary
	}
	if s.client == nil {
		log.Println("summarizer: glm api key not configured, skip ai summary")
		return MissingKeySummary
	}

	prompt := fmt.Sprintf(promptTemplate, buildArticlesText(articles))

	log.Println("summarizer: generating ai summary...")
	summary, err := s.client.Chat(ctx, systemPrompt, prompt, summaryTemperature)
	if err != nil {
		log.Printf("summarizer: %v", err)
		return FailedSummary
	}
	log.Println("summarizer: summary generated")
	return summary
}

// buildArticlesText 把文章列表排成编号清单，最多取前 20 篇
func buildArticlesText(articles []collector.Article) string {
	var b strings.Builder
	for i, a := range articles {
		if i == maxPromptArticles {
			break
		}
		title := a.Title
		if title == "" {
			title = "无标题"
		}
		source := a.Source
		if source == "" {
			source = "未知来源"
		}
		fmt.Fprintf(&b, "%d. 【%s】%s\n", i+1, source, title)
		if summary := clipRunes(a.Summary, maxPromptSummaryRunes); summary != "" {
			fmt.Fprintf(&b, "   摘要：%s\n", summary)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func clipRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
