package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LJTian/AINewsTracker/internal/collector"
	"github.com/LJTian/AINewsTracker/internal/leaderboard"
)

func fixedNotifier(url string) *FeishuNotifier {
	n := NewFeishuNotifier(url)
	n.now = func() time.Time { return time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC) }
	return n
}

func TestSendReportSkipsWithoutWebhook(t *testing.T) {
	n := NewFeishuNotifier("")
	if err := n.SendReport(context.Background(), "总结", nil, "", nil); err != nil {
		t.Fatalf("missing webhook should not be an error, got %v", err)
	}
}

func TestSendReportSingleCard(t *testing.T) {
	var payload struct {
		MsgType string     `json:"msg_type"`
		Card    feishuCard `json:"card"`
	}
	posts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts++
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		fmt.Fprint(w, `{"code": 0}`)
	}))
	defer srv.Close()

	n := fixedNotifier(srv.URL)

	articles := []collector.Article{
		{Title: "DeepSeek发布新版本", Link: "https://example.com/1", Source: "机器之心",
			Summary: "推理提升", Published: time.Date(2025, 6, 2, 7, 30, 0, 0, time.UTC)},
	}
	board := &leaderboard.Summary{
		TopGlobal:     []leaderboard.Model{{Rank: 1, Name: "gpt-x", Score: 1400}},
		ChineseModels: []leaderboard.Model{{Rank: 3, Name: "deepseek-v3", Score: 1380}},
	}

	if err := n.SendReport(context.Background(), "## 今日要点", articles, "https://pages.example.com", board); err != nil {
		t.Fatalf("SendReport: %v", err)
	}
	if posts != 1 {
		t.Fatalf("expected single card, got %d posts", posts)
	}

	if payload.MsgType != "interactive" {
		t.Errorf("msg_type = %q", payload.MsgType)
	}
	if payload.Card.Header.Title.Content != "🤖 2025-06-02 国产大模型日报" {
		t.Errorf("header = %q", payload.Card.Header.Title.Content)
	}
	if payload.Card.Header.Template != "blue" {
		t.Errorf("template = %q", payload.Card.Header.Template)
	}

	var all strings.Builder
	for _, el := range payload.Card.Elements {
		if c, ok := el["content"].(string); ok {
			all.WriteString(c)
			all.WriteString("\n")
		}
	}
	for _, want := range []string{
		"## 今日要点",
		"**📊 国产模型排行榜 (LM Arena)**",
		"1. gpt-x (1400)",
		"#3 deepseek-v3 (1380)",
		"**[DeepSeek发布新版本](https://example.com/1)**",
		"*机器之心* | *07:30*",
	} {
		if !strings.Contains(all.String(), want) {
			t.Errorf("card missing %q in contents:\n%s", want, all.String())
		}
	}

	// 最后一个元素是查看完整日报按钮
	last := payload.Card.Elements[len(payload.Card.Elements)-1]
	if last["tag"] != "action" {
		t.Errorf("last element tag = %v, want action", last["tag"])
	}
}

func TestSendReportSplitsOversizedCard(t *testing.T) {
	var titles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Card feishuCard `json:"card"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		titles = append(titles, payload.Card.Header.Title.Content)
		fmt.Fprint(w, `{"code": 0}`)
	}))
	defer srv.Close()

	n := fixedNotifier(srv.URL)

	// 超长总结把卡片撑过 25KB，触发分批
	hugeSummary := strings.Repeat("大模型资讯要点汇总。", 3000)
	articles := make([]collector.Article, 8)
	for i := range articles {
		articles[i] = collector.Article{Title: fmt.Sprintf("文章%d", i+1), Link: "https://example.com", Source: "测试"}
	}

	if err := n.SendReport(context.Background(), hugeSummary, articles, "https://pages.example.com", nil); err != nil {
		t.Fatalf("SendReport: %v", err)
	}

	if len(titles) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(titles))
	}
	if titles[0] != "🤖 2025-06-02 国产大模型日报" {
		t.Errorf("first card title = %q", titles[0])
	}
	if titles[1] != "📰 详细资讯 (8 条)" {
		t.Errorf("second card title = %q", titles[1])
	}
}

func TestSendReportWebhookRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": 19001, "msg": "param invalid"}`)
	}))
	defer srv.Close()

	n := fixedNotifier(srv.URL)
	err := n.SendReport(context.Background(), "总结", nil, "", nil)
	if err == nil || !strings.Contains(err.Error(), "19001") {
		t.Fatalf("expected rejection error, got %v", err)
	}
}

func TestSendText(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		fmt.Fprint(w, `{"code": 0}`)
	}))
	defer srv.Close()

	n := fixedNotifier(srv.URL)
	if err := n.SendText(context.Background(), "降级通知"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if payload["msg_type"] != "text" {
		t.Errorf("msg_type = %v", payload["msg_type"])
	}
}
