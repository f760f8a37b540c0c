package processor

import (
	"sort"

	"github.com/LJTian/AINewsTracker/internal/collector"
)

// Merge 把多个来源的文章批次合并成一个按发布时间倒序的序列。
// 排序稳定：时间相同的文章保持批次先后与批次内的相对顺序；
// 没有发布时间（零值）的文章视为最早，统一排在末尾。
func Merge(batches ...[]collector.Article) []collector.Article {
	total := 0
	for _, b := range batches {
		total += len(b)
	}

	merged := make([]collector.Article, 0, total)
	for _, b := range batches {
		merged = append(merged, b...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Published.After(merged[j].Published)
	})
	return merged
}
