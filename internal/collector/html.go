package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const htmlFetchTimeout = 10 * time.Second

// HTMLSource 无 RSS 站点的列表页抓取配置，选择器来自 config/sources.yaml
type HTMLSource struct {
	Name string
	URL  string
	// ItemSelector 匹配列表中的单个条目
	ItemSelector string
	// TitleSelector / LinkSelector / SummarySelector 均相对条目内部
	TitleSelector   string
	LinkSelector    string
	SummarySelector string
}

// HTMLListFetcher 用 colly 抓取静态列表页，适配没有 RSS 的资讯站。
// 列表页一般拿不到发布时间，Published 留零值，由时间过滤器按“无时间保留”处理。
type HTMLListFetcher struct {
	source HTMLSource
}

func NewHTMLListFetcher(source HTMLSource) *HTMLListFetcher {
	return &HTMLListFetcher{source: source}
}

func (h *HTMLListFetcher) Name() string {
	return h.source.Name
}

func (h *HTMLListFetcher) Fetch(ctx context.Context) ([]Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(h.source.URL)
	if err != nil {
		return nil, fmt.Errorf("html %s: parse url: %w", h.source.Name, err)
	}

	c := colly.NewCollector(
		colly.AllowedDomains(base.Host),
		colly.UserAgent("AINewsTrackerBot/1.0"),
	)
	c.SetRequestTimeout(htmlFetchTimeout)

	results := make([]Article, 0, 50)

	// 站点改版时选择器可能失配，这里按“尽力而为”解析，空条目直接跳过
	c.OnHTML(h.source.ItemSelector, func(e *colly.HTMLElement) {
		title := strings.TrimSpace(e.ChildText(h.source.TitleSelector))
		if title == "" {
			return
		}

		href := e.ChildAttr(h.source.LinkSelector, "href")
		if href == "" {
			href = e.ChildAttr("a", "href")
		}
		link := absoluteLink(base, href)
		if link == "" {
			return
		}

		summary := ""
		if h.source.SummarySelector != "" {
			summary = strings.TrimSpace(e.ChildText(h.source.SummarySelector))
		}
		if summary == "" {
			summary = longestItemText(e, title)
		}

		results = append(results, Article{
			Title:   CleanText(title),
			Summary: truncateRunes(CleanText(summary), summaryMaxRunes),
			Link:    link,
			Source:  h.source.Name,
		})
	})

	if err := c.Visit(h.source.URL); err != nil {
		return nil, fmt.Errorf("html %s: %w", h.source.Name, err)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("html %s: selector %q matched nothing", h.source.Name, h.source.ItemSelector)
	}
	return results, nil
}

// absoluteLink 把相对链接补全成绝对链接
func absoluteLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// longestItemText 摘要选择器失配时的兜底：取条目内非标题的最长文本段
func longestItemText(e *colly.HTMLElement, title string) string {
	var best string
	minLen := 20

	e.DOM.Find("div, p, span").Each(func(i int, s *goquery.Selection) {
		t := strings.TrimSpace(s.Text())
		if t == "" || t == title || len(t) < minLen {
			return
		}
		if len(t) > len(best) {
			best = t
		}
	})
	return best
}
