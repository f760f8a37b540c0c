package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/LJTian/AINewsTracker/internal/collector"
	"github.com/LJTian/AINewsTracker/internal/leaderboard"
)

const (
	// 飞书卡片消息上限 30KB，预留余量
	maxCardSize            = 25000
	feishuClientTimeout    = 30 * time.Second
	feishuMaxResponseBytes = 64 * 1024
	maxCardArticles        = 5
	cardSummaryRunes       = 150
	cardBoardTop           = 5
)

// FeishuNotifier 往飞书群机器人 webhook 推送日报卡片
type FeishuNotifier struct {
	webhookURL string
	client     *http.Client
	now        func() time.Time
}

func NewFeishuNotifier(webhookURL string) *FeishuNotifier {
	return &FeishuNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: feishuClientTimeout},
		now:        time.Now,
	}
}

type cardTitle struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type cardHeader struct {
	Title    cardTitle `json:"title"`
	Template string    `json:"template"`
}

type feishuCard struct {
	Config   map[string]any   `json:"config"`
	Header   cardHeader       `json:"header"`
	Elements []map[string]any `json:"elements"`
}

// SendReport 推送日报通知，卡片超过大小限制时自动拆成两条发送。
// webhook 未配置时跳过，不算错误。
func (n *FeishuNotifier) SendReport(ctx context.Context, summary string, articles []collector.Article, reportURL string, board *leaderboard.Summary) error {
	if n.webhookURL == "" {
		log.Println("feishu: webhook url not configured, skip notify")
		return nil
	}

	cards := n.buildCards(summary, articles, reportURL, board)

	for i, card := range cards {
		if len(cards) > 1 {
			log.Printf("feishu: sending card %d/%d...", i+1, len(cards))
		}
		if err := n.sendCard(ctx, card); err != nil {
			return err
		}
	}
	return nil
}

// SendText 发送纯文本消息，卡片失败时的降级通道
func (n *FeishuNotifier) SendText(ctx context.Context, text string) error {
	if n.webhookURL == "" {
		log.Println("feishu: webhook url not configured, skip notify")
		return nil
	}
	return n.post(ctx, map[string]any{
		"msg_type": "text",
		"content":  map[string]any{"text": text},
	})
}

func (n *FeishuNotifier) sendCard(ctx context.Context, card *feishuCard) error {
	return n.post(ctx, map[string]any{
		"msg_type": "interactive",
		"card":     card,
	})
}

func (n *FeishuNotifier) post(ctx context.Context, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("feishu: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("feishu: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("feishu: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feishu: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, feishuMaxResponseBytes)).Decode(&result); err != nil {
		return fmt.Errorf("feishu: decode response: %w", err)
	}
	if result.Code != 0 {
		return fmt.Errorf("feishu: webhook rejected: code=%d msg=%s", result.Code, result.Msg)
	}

	log.Println("feishu: notify sent")
	return nil
}

// buildCards 先按单卡构建，超限时拆成"总结+排行榜"和"资讯列表"两张
func (n *FeishuNotifier) buildCards(summary string, articles []collector.Article, reportURL string, board *leaderboard.Summary) []*feishuCard {
	full := n.buildCard(summary, articles, reportURL, board)

	size := cardSize(full)
	if size <= maxCardSize {
		log.Printf("feishu: card size %.1fKB, single message", float64(size)/1000)
		return []*feishuCard{full}
	}

	log.Printf("feishu: card size %.1fKB over limit, split into two", float64(size)/1000)

	first := n.buildCard(summary, nil, "", board)
	second := n.buildCard("", articles, reportURL, nil)
	second.Header.Title.Content = fmt.Sprintf("📰 详细资讯 (%d 条)", len(articles))

	return []*feishuCard{first, second}
}

func (n *FeishuNotifier) buildCard(summary string, articles []collector.Article, reportURL string, board *leaderboard.Summary) *feishuCard {
	elements := make([]map[string]any, 0, maxCardArticles+6)

	elements = append(elements,
		map[string]any{"tag": "markdown", "content": summary},
		map[string]any{"tag": "hr"},
	)

	if board != nil {
		if content := formatBoard(board); content != "" {
			elements = append(elements,
				map[string]any{"tag": "markdown", "content": content},
				map[string]any{"tag": "hr"},
			)
		}
	}

	if len(articles) > 0 {
		elements = append(elements, map[string]any{"tag": "markdown", "content": "**📰 详细资讯**"})

		for i, a := range articles {
			if i == maxCardArticles {
				break
			}
			elements = append(elements, map[string]any{"tag": "markdown", "content": formatArticle(a)})
		}

		if len(articles) > maxCardArticles {
			elements = append(elements, map[string]any{
				"tag":     "markdown",
				"content": fmt.Sprintf("*... 共 %d 条资讯*", len(articles)),
			})
		}
	}

	if reportURL != "" {
		elements = append(elements,
			map[string]any{"tag": "hr"},
			map[string]any{
				"tag": "action",
				"actions": []map[string]any{
					{
						"tag":  "button",
						"text": map[string]any{"tag": "plain_text", "content": "查看完整日报"},
						"type": "primary",
						"url":  reportURL,
					},
				},
			},
		)
	}

	return &feishuCard{
		Config: map[string]any{"wide_screen_mode": true},
		Header: cardHeader{
			Title: cardTitle{
				Tag:     "plain_text",
				Content: fmt.Sprintf("🤖 %s 国产大模型日报", n.now().Format("2006-01-02")),
			},
			Template: "blue",
		},
		Elements: elements,
	}
}

func formatArticle(a collector.Article) string {
	title := a.Title
	if title == "" {
		title = "无标题"
	}

	content := fmt.Sprintf("**[%s](%s)**\n", title, a.Link)
	content += fmt.Sprintf("*%s*", a.Source)
	if !a.Published.IsZero() {
		content += fmt.Sprintf(" | *%s*", a.Published.Format("15:04"))
	}
	if summary := clipRunes(a.Summary, cardSummaryRunes); summary != "" {
		content += fmt.Sprintf("\n%s...", summary)
	}
	return content
}

func formatBoard(board *leaderboard.Summary) string {
	lines := []string{"**📊 国产模型排行榜 (LM Arena)**\n"}

	if len(board.TopGlobal) > 0 {
		lines = append(lines, "**全球 Top 5**")
		for i, m := range board.TopGlobal {
			if i == cardBoardTop {
				break
			}
			lines = append(lines, fmt.Sprintf("%d. %s (%.0f)", m.Rank, capName(m.Name, 30, 27), m.Score))
		}
		lines = append(lines, "")
	}

	if len(board.ChineseModels) > 0 {
		lines = append(lines, "**国产模型 Top 5**")
		for i, m := range board.ChineseModels {
			if i == cardBoardTop {
				break
			}
			lines = append(lines, fmt.Sprintf("#%d %s (%.0f)", m.Rank, capName(m.Name, 30, 27), m.Score))
		}
	}

	return strings.Join(lines, "\n")
}

func cardSize(card *feishuCard) int {
	data, err := json.Marshal(card)
	if err != nil {
		return 0
	}
	return len(data)
}

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
