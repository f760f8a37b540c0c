package processor

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/LJTian/AINewsTracker/internal/collector"
)

// DefaultSimilarityThreshold 标题相似度判重的默认阈值
const DefaultSimilarityThreshold = 0.8

// Deduplicator 按规范化 URL 和标题相似度去除重复报道
type Deduplicator struct {
	threshold float64
}

// NewDeduplicator 创建去重器，threshold 取值范围 [0,1]
func NewDeduplicator(threshold float64) (*Deduplicator, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("dedup: similarity threshold %v out of range [0,1]", threshold)
	}
	return &Deduplicator{threshold: threshold}, nil
}

// Deduplicate 去重并保留每个故事的首次出现，输出保持输入的相对顺序。
// 先按规范化 URL 精确判重，再与所有已保留的标题比相似度；
// 链接为空的文章不参与 URL 判重，只会被标题相似度淘汰。
// 判重状态只在一次调用内有效，重复调用结果幂等。
func (d *Deduplicator) Deduplicate(articles []collector.Article) []collector.Article {
	seenURLs := make(map[string]struct{}, len(articles))
	seenTitles := make([]string, 0, len(articles))
	unique := make([]collector.Article, 0, len(articles))

	for _, a := range articles {
		key := NormalizeURL(a.Link)
		if key != "" {
			if _, dup := seenURLs[key]; dup {
				continue
			}
		}
		if d.similarToAny(a.Title, seenTitles) {
			continue
		}
		if key != "" {
			seenURLs[key] = struct{}{}
		}
		seenTitles = append(seenTitles, a.Title)
		unique = append(unique, a)
	}

	if removed := len(articles) - len(unique); removed > 0 {
		log.Printf("dedup: removed %d duplicate articles", removed)
	}
	return unique
}

func (d *Deduplicator) similarToAny(title string, seen []string) bool {
	for _, s := range seen {
		if similarity(title, s) >= d.threshold {
			return true
		}
	}
	return false
}

// NormalizeURL 规范化链接用作文章身份：只保留 scheme://host/path，
// 去掉查询串、锚点和末尾斜杠。解析失败时原样返回。
func NormalizeURL(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	normalized := fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, u.Path)
	return strings.TrimRight(normalized, "/")
}

// similarity 计算两个标题的字符集 Jaccard 相似度（0~1），按 rune 而非字节比较
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}

	setA := runeSet(a)
	setB := runeSet(b)

	inter := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}
