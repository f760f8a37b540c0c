package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const rssFetchTimeout = 15 * time.Second

// RSSSource 单个 RSS 源的配置，来自 config/sources.yaml
type RSSSource struct {
	Name string
	URL  string
	// Translate 为 true 时把外文标题翻译成中文
	Translate bool
}

// RSSFetcher 抓取单个 RSS/Atom 源
type RSSFetcher struct {
	source     RSSSource
	parser     *gofeed.Parser
	translator *Translator
}

func NewRSSFetcher(source RSSSource) *RSSFetcher {
	f := &RSSFetcher{source: source, parser: gofeed.NewParser()}
	if source.Translate {
		f.translator = NewTranslator()
	}
	return f
}

func (r *RSSFetcher) Name() string {
	return r.source.Name
}

func (r *RSSFetcher) Fetch(ctx context.Context) ([]Article, error) {
	ctx, cancel := context.WithTimeout(ctx, rssFetchTimeout)
	defer cancel()

	feed, err := r.parser.ParseURLWithContext(r.source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("rss %s: %w", r.source.Name, err)
	}

	articles := make([]Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		title := CleanText(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		if r.translator != nil {
			title = r.translator.ToChinese(ctx, title)
		}
		articles = append(articles, Article{
			Title:     title,
			Summary:   truncateRunes(CleanText(itemSummary(item)), summaryMaxRunes),
			Link:      link,
			Published: itemPublished(item),
			Source:    r.source.Name,
		})
	}
	return articles, nil
}

// itemSummary 优先取正文 content:encoded，其次 description
func itemSummary(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	return item.Description
}

// itemPublished 取发布时间，缺失时退回更新时间，都没有则返回零值
func itemPublished(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}
