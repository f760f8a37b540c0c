package processor

import (
	"math"
	"testing"

	"github.com/LJTian/AINewsTracker/internal/collector"
)

func TestNewDeduplicatorThreshold(t *testing.T) {
	for _, bad := range []float64{-0.1, 1.5} {
		if _, err := NewDeduplicator(bad); err == nil {
			t.Errorf("threshold %v should be rejected", bad)
		}
	}
	for _, ok := range []float64{0, 0.8, 1} {
		if _, err := NewDeduplicator(ok); err != nil {
			t.Errorf("threshold %v should be accepted, got %v", ok, err)
		}
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://example.com/a?utm=1", "https://example.com/a"},
		{"https://example.com/a/", "https://example.com/a"},
		{"https://example.com/a#section", "https://example.com/a"},
		{"http://example.com/a/b/?q=x&y=z", "http://example.com/a/b"},
		{"https://example.com/", "https://example.com"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeURL(tc.in); got != tc.want {
			t.Errorf("NormalizeURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		// 仅差一个全角感叹号：11/12
		{"OpenAI发布新模型", "OpenAI发布新模型！", 11.0 / 12.0},
		// 交集 e、发、布：3/15
		{"DeepSeek发布R2", "Qwen发布新版本", 0.2},
		{"相同标题", "相同标题", 1},
		{"", "任意", 0},
		{"任意", "", 0},
	}

	for _, tc := range cases {
		got := similarity(tc.a, tc.b)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("similarity(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDeduplicateByURL(t *testing.T) {
	d, err := NewDeduplicator(DefaultSimilarityThreshold)
	if err != nil {
		t.Fatal(err)
	}

	articles := []collector.Article{
		{Title: "今日科技早报", Link: "https://example.com/a?utm=1", Source: "rss"},
		{Title: "明日产品周刊", Link: "https://example.com/a/", Source: "gnews"},
		{Title: "另一条新闻速递", Link: "https://example.com/b"},
	}

	got := d.Deduplicate(articles)

	if len(got) != 2 {
		t.Fatalf("expected 2 articles after url dedup, got %d", len(got))
	}
	// 保留首次出现的那条
	if got[0].Source != "rss" {
		t.Errorf("first occurrence should win, got source %q", got[0].Source)
	}
	if got[1].Link != "https://example.com/b" {
		t.Errorf("unrelated article should survive, got %q", got[1].Link)
	}
}

func TestDeduplicateBySimilarTitle(t *testing.T) {
	d, err := NewDeduplicator(0.8)
	if err != nil {
		t.Fatal(err)
	}

	articles := []collector.Article{
		{Title: "OpenAI发布新模型", Link: "https://a.com/1"},
		{Title: "OpenAI发布新模型！", Link: "https://b.com/1"},
		{Title: "Qwen发布新版本", Link: "https://c.com/1"},
	}

	got := d.Deduplicate(articles)

	if len(got) != 2 {
		t.Fatalf("expected 2 articles after title dedup, got %d", len(got))
	}
	if got[0].Title != "OpenAI发布新模型" {
		t.Errorf("first occurrence should win, got %q", got[0].Title)
	}
	if got[1].Title != "Qwen发布新版本" {
		t.Errorf("dissimilar title should survive, got %q", got[1].Title)
	}
}

func TestDeduplicateEmptyLink(t *testing.T) {
	d, err := NewDeduplicator(0.8)
	if err != nil {
		t.Fatal(err)
	}

	// 链接为空的文章不做 URL 判重，互不相似就都保留
	articles := []collector.Article{
		{Title: "彼此无关的第一条"},
		{Title: "完全不同的第二篇报道"},
		{Title: "彼此无关的第一条！"},
	}

	got := d.Deduplicate(articles)

	if len(got) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(got))
	}
	if got[0].Title != "彼此无关的第一条" || got[1].Title != "完全不同的第二篇报道" {
		t.Errorf("unexpected survivors: %q, %q", got[0].Title, got[1].Title)
	}
}

func TestDeduplicateIdempotent(t *testing.T) {
	d, err := NewDeduplicator(0.8)
	if err != nil {
		t.Fatal(err)
	}

	articles := []collector.Article{
		{Title: "OpenAI发布新模型", Link: "https://a.com/1"},
		{Title: "OpenAI发布新模型！", Link: "https://b.com/1"},
		{Title: "Qwen发布新版本", Link: "https://c.com/1"},
		{Title: "重复链接", Link: "https://c.com/1?from=feed"},
	}

	once := d.Deduplicate(articles)
	twice := d.Deduplicate(once)

	if len(once) != len(twice) {
		t.Fatalf("second pass changed length: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Errorf("second pass changed article %d: %+v -> %+v", i, once[i], twice[i])
		}
	}
}
