package processor

import (
	"log"
	"strings"

	"github.com/LJTian/AINewsTracker/internal/collector"
)

// KeywordFilter 按主题词过滤文章；主题解析（环境变量、配置文件、默认词表）
// 由 config 层完成后注入，这里只做匹配
type KeywordFilter struct {
	topics []string
}

func NewKeywordFilter(topics []string) *KeywordFilter {
	return &KeywordFilter{topics: topics}
}

// Topics 返回当前生效的主题词
func (k *KeywordFilter) Topics() []string {
	return k.topics
}

// Filter 保留标题或摘要命中任意主题词的文章，顺序不变。
// 主题列表为空时直接放行全部文章。
// 匹配是朴素的小写子串包含：主题词嵌在更长的词里（如 "AI" 之于 "AICore"）同样算命中。
func (k *KeywordFilter) Filter(articles []collector.Article) []collector.Article {
	if len(k.topics) == 0 {
		log.Println("keyword: no topics configured, pass all articles through")
		return articles
	}

	matched := make([]collector.Article, 0, len(articles))
	for _, a := range articles {
		if k.matches(a) {
			matched = append(matched, a)
		}
	}

	log.Printf("keyword: matched %d/%d articles", len(matched), len(articles))
	return matched
}

func (k *KeywordFilter) matches(a collector.Article) bool {
	text := strings.ToLower(a.Title) + " " + strings.ToLower(a.Summary)
	for _, topic := range k.topics {
		if strings.Contains(text, strings.ToLower(topic)) {
			return true
		}
	}
	return false
}
