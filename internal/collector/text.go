package collector

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// summaryMaxRunes 摘要入库前的统一截断长度
const summaryMaxRunes = 500

var (
	stripPolicy  = bluemonday.StrictPolicy()
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanText 去掉 HTML 标签、解码实体并压缩多余空白
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = stripPolicy.Sanitize(s)
	s = html.UnescapeString(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// truncateRunes 按 rune 截断，避免把多字节字符截成乱码，超长时末尾补省略号
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
