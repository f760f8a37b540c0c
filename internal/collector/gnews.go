package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	gnewsBaseURL = "https://gnews.io/api/v4/search"
	// 免费档单次请求最多返回 10 条
	gnewsMaxPerKeyword    = 10
	gnewsConcurrency      = 3
	gnewsClientTimeout    = 30 * time.Second
	gnewsMaxResponseBytes = 1 << 20
)

// GNewsFetcher 通过 GNews API 按关键词搜索中文资讯
type GNewsFetcher struct {
	apiKey   string
	keywords []string
	baseURL  string
	client   *http.Client
}

func NewGNewsFetcher(apiKey string, keywords []string) *GNewsFetcher {
	return &GNewsFetcher{
		apiKey:   apiKey,
		keywords: keywords,
		baseURL:  gnewsBaseURL,
		client:   &http.Client{Timeout: gnewsClientTimeout},
	}
}

func (g *GNewsFetcher) Name() string {
	return "GNews"
}

// Fetch 并发搜索各关键词，结果按关键词配置顺序拼接，保证输出顺序稳定。
// 单个关键词失败只打日志，不影响其它关键词。
func (g *GNewsFetcher) Fetch(ctx context.Context) ([]Article, error) {
	if g.apiKey == "" {
		log.Println("gnews: api key not configured, skip")
		return nil, nil
	}

	batches := make([][]Article, len(g.keywords))
	sem := make(chan struct{}, gnewsConcurrency)
	var wg sync.WaitGroup
	for i, kw := range g.keywords {
		idx, keyword := i, kw
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			articles, err := g.search(ctx, keyword)
			if err != nil {
				log.Printf("gnews %q: %v", keyword, err)
				return
			}
			log.Printf("gnews %q: fetched %d articles", keyword, len(articles))
			batches[idx] = articles
		}()
	}
	wg.Wait()

	var out []Article
	for _, b := range batches {
		out = append(out, b...)
	}
	return out, nil
}

func (g *GNewsFetcher) search(ctx context.Context, keyword string) ([]Article, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("lang", "zh")
	params.Set("max", strconv.Itoa(gnewsMaxPerKeyword))
	params.Set("apikey", g.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Articles []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, gnewsMaxResponseBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	articles := make([]Article, 0, len(payload.Articles))
	for _, it := range payload.Articles {
		title := CleanText(it.Title)
		link := strings.TrimSpace(it.URL)
		if title == "" || link == "" {
			continue
		}
		sourceName := it.Source.Name
		if sourceName == "" {
			sourceName = "Unknown"
		}
		articles = append(articles, Article{
			Title:     title,
			Summary:   truncateRunes(CleanText(it.Description), summaryMaxRunes),
			Link:      link,
			Published: parseFeedTime(it.PublishedAt),
			Source:    "GNews/" + sourceName,
		})
	}
	return articles, nil
}

// parseFeedTime 宽松解析接口返回的时间串，解析失败返回零值（视为无发布时间）
func parseFeedTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z0700",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
