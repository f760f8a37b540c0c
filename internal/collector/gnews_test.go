package collector

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGNewsFetcherNoAPIKey(t *testing.T) {
	f := NewGNewsFetcher("", []string{"AI"})
	articles, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("missing api key should not be an error, got %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("missing api key should yield no articles, got %d", len(articles))
	}
}

func TestGNewsFetcherSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("apikey") != "test-key" {
			t.Errorf("apikey = %q, want test-key", q.Get("apikey"))
		}
		if q.Get("lang") != "zh" {
			t.Errorf("lang = %q, want zh", q.Get("lang"))
		}
		if q.Get("max") != "10" {
			t.Errorf("max = %q, want 10", q.Get("max"))
		}
		fmt.Fprintf(w, `{
			"articles": [
				{
					"title": "%s相关新闻",
					"description": "一段描述",
					"url": "https://news.example.com/%s",
					"publishedAt": "2025-06-01T08:00:00Z",
					"source": {"name": "机器之心"}
				},
				{
					"title": "",
					"description": "无标题应被跳过",
					"url": "https://news.example.com/skip"
				}
			]
		}`, q.Get("q"), q.Get("q"))
	}))
	defer srv.Close()

	f := NewGNewsFetcher("test-key", []string{"DeepSeek", "Qwen"})
	f.baseURL = srv.URL

	articles, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// 每个关键词各返回 1 条有效文章，且按关键词配置顺序拼接
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].Title != "DeepSeek相关新闻" {
		t.Errorf("articles[0].Title = %q, want DeepSeek 在前", articles[0].Title)
	}
	if articles[1].Title != "Qwen相关新闻" {
		t.Errorf("articles[1].Title = %q, want Qwen 在后", articles[1].Title)
	}
	if articles[0].Source != "GNews/机器之心" {
		t.Errorf("Source = %q, want GNews/机器之心", articles[0].Source)
	}
	want := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	if !articles[0].Published.Equal(want) {
		t.Errorf("Published = %v, want %v", articles[0].Published, want)
	}
}

func TestGNewsFetcherServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewGNewsFetcher("test-key", []string{"AI"})
	f.baseURL = srv.URL

	// 单关键词失败只打日志，整体不报错
	articles, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("keyword-level failure should not surface as fetch error, got %v", err)
	}
	if len(articles) != 0 {
		t.Fatalf("expected 0 articles on server error, got %d", len(articles))
	}
}
