package processor

import (
	"fmt"
	"log"
	"time"

	"github.com/LJTian/AINewsTracker/internal/collector"
)

// DefaultFilterHours 时间过滤的默认窗口（小时）
const DefaultFilterHours = 24

// TimeFilter 只保留最近 N 小时内发布的文章
type TimeFilter struct {
	hours float64
	// now 可替换，便于测试固定时间
	now func() time.Time
}

// NewTimeFilter 创建时间过滤器，hours 必须为正数
func NewTimeFilter(hours float64) (*TimeFilter, error) {
	if hours <= 0 {
		return nil, fmt.Errorf("timefilter: hours must be positive, got %v", hours)
	}
	return &TimeFilter{hours: hours, now: time.Now}, nil
}

// Filter 过滤出发布时间落在 [now-hours, now] 内的文章，顺序不变。
// 没有发布时间的文章一律保留，宁多勿漏；
// 带时区偏移的时间先丢掉偏移，按墙上钟面放到本地时区再比较，
// 沿用“源时间可与本地时间直接对齐”的既有假设。
func (f *TimeFilter) Filter(articles []collector.Article) []collector.Article {
	now := f.now()
	cutoff := now.Add(-time.Duration(f.hours * float64(time.Hour)))

	kept := make([]collector.Article, 0, len(articles))
	noDate := 0
	expired := 0
	for _, a := range articles {
		if a.Published.IsZero() {
			noDate++
			kept = append(kept, a)
			continue
		}
		if wallClock(a.Published, now.Location()).Before(cutoff) {
			expired++
			continue
		}
		kept = append(kept, a)
	}

	if expired > 0 || noDate > 0 {
		log.Printf("timefilter: kept %d/%d articles (%d outside %gh window, %d without publish time)",
			len(kept), len(articles), expired, f.hours, noDate)
	}
	return kept
}

// wallClock 丢弃时区偏移，把钟面读数原样放进 loc
func wallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
