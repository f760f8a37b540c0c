package processor

import (
	"testing"
	"time"

	"github.com/LJTian/AINewsTracker/internal/collector"
)

func fixedTimeFilter(t *testing.T, hours float64, now time.Time) *TimeFilter {
	t.Helper()
	f, err := NewTimeFilter(hours)
	if err != nil {
		t.Fatal(err)
	}
	f.now = func() time.Time { return now }
	return f
}

func TestNewTimeFilterValidation(t *testing.T) {
	for _, bad := range []float64{0, -1} {
		if _, err := NewTimeFilter(bad); err == nil {
			t.Errorf("hours %v should be rejected", bad)
		}
	}
	if _, err := NewTimeFilter(DefaultFilterHours); err != nil {
		t.Fatalf("default hours should be accepted, got %v", err)
	}
}

func TestTimeFilterWindow(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, loc)
	f := fixedTimeFilter(t, 24, now)

	articles := []collector.Article{
		{Title: "一小时前", Published: now.Add(-time.Hour)},
		{Title: "二十五小时前", Published: now.Add(-25 * time.Hour)},
		{Title: "恰好窗口边界", Published: now.Add(-24 * time.Hour)},
		{Title: "没有发布时间"},
	}

	got := f.Filter(articles)

	want := []string{"一小时前", "恰好窗口边界", "没有发布时间"}
	if len(got) != len(want) {
		t.Fatalf("expected %d articles, got %d", len(want), len(got))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("got[%d].Title = %q, want %q", i, got[i].Title, title)
		}
	}
}

// 带时区偏移的发布时间按钟面读数放进本地时区比较，偏移本身被忽略
func TestTimeFilterIgnoresOffset(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, loc)
	f := fixedTimeFilter(t, 24, now)

	articles := []collector.Article{
		// 瞬时时间在窗口内（06-01 13:00 UTC+8），但钟面 05:00 已在窗口外
		{Title: "UTC凌晨五点", Published: time.Date(2025, 6, 1, 5, 0, 0, 0, time.UTC)},
		// 瞬时时间在窗口外（06-01 07:00 UTC+8），但钟面 13:00 在窗口内
		{Title: "UTC+14下午一点", Published: time.Date(2025, 6, 1, 13, 0, 0, 0, time.FixedZone("UTC+14", 14*3600))},
	}

	got := f.Filter(articles)

	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
	if got[0].Title != "UTC+14下午一点" {
		t.Errorf("wall clock comparison should keep %q, got %q", "UTC+14下午一点", got[0].Title)
	}
}

func TestTimeFilterKeepsOrder(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	f := fixedTimeFilter(t, 24, now)

	articles := []collector.Article{
		{Title: "第一", Published: now.Add(-time.Hour)},
		{Title: "第二"},
		{Title: "第三", Published: now.Add(-2 * time.Hour)},
	}

	got := f.Filter(articles)

	if len(got) != 3 {
		t.Fatalf("expected 3 articles, got %d", len(got))
	}
	for i, want := range []string{"第一", "第二", "第三"} {
		if got[i].Title != want {
			t.Errorf("got[%d].Title = %q, want %q", i, got[i].Title, want)
		}
	}
}
