package storage

import (
	"testing"

	"github.com/LJTian/AINewsTracker/internal/collector"
)

func TestArticleIDDeterministicAndDistinct(t *testing.T) {
	a := collector.Article{Title: "标题", Link: "https://example.com/a", Source: "rss"}
	b := collector.Article{Title: "标题", Link: "https://example.com/b", Source: "rss"}

	if articleID(a) != articleID(a) {
		t.Fatal("articleID not deterministic")
	}
	if articleID(a) == articleID(b) {
		t.Fatal("articleID should differ for different links")
	}

	// 链接仅查询串不同时视为同一篇
	c := collector.Article{Title: "转载标题", Link: "https://example.com/a?utm_source=x", Source: "gnews"}
	if articleID(a) != articleID(c) {
		t.Fatal("normalized links should share one id")
	}
}

func TestArticleIDWithoutLink(t *testing.T) {
	a := collector.Article{Title: "标题一", Source: "rss"}
	b := collector.Article{Title: "标题二", Source: "rss"}

	if articleID(a) == "" {
		t.Fatal("empty link should still produce an id")
	}
	if articleID(a) == articleID(b) {
		t.Fatal("different titles should produce different ids")
	}
}

func TestTruncateRunesDBHandlesChinese(t *testing.T) {
	s := "你好，世界，这是一个很长的中文句子，用来测试截断逻辑。"
	out := truncateRunesDB(s, 5)
	if len([]rune(out)) != 5 {
		t.Fatalf("truncateRunesDB length = %d, want 5: %q", len([]rune(out)), out)
	}

	full := truncateRunesDB("短文本", 10)
	if full != "短文本" {
		t.Fatalf("should keep original when under limit: %q", full)
	}
}

func TestNormalizeTopic(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  DeepSeek  ", "DeepSeek"},
		{"大  模型", "大 模型"},
		{"a,b", ""},
		{"逗，号", ""},
		{"", ""},
		{"   ", ""},
	}

	for _, tc := range cases {
		if got := NormalizeTopic(tc.in); got != tc.want {
			t.Errorf("NormalizeTopic(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
