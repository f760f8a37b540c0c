package collector

import (
	"context"
	"log"
	"sync"
	"time"
)

// Article 统一抓取后的文章结构，贯穿整个处理管线
type Article struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Link    string `json:"link"`
	// Published 为零值表示来源没有给出发布时间
	Published time.Time `json:"published"`
	Source    string    `json:"source"`
}

// Fetcher 抽象每一个资讯源
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]Article, error)
}

// FetchResult 单个资讯源的抓取结果：成功分支带文章，失败分支带错误，
// 由调用方决定只合并成功分支
type FetchResult struct {
	Source   string
	Articles []Article
	Err      error
}

// Aggregator 并发聚合多个资讯源
type Aggregator struct {
	fetchers []Fetcher
}

func NewAggregator(fetchers ...Fetcher) *Aggregator {
	return &Aggregator{fetchers: fetchers}
}

// Add 注册一个资讯源
func (a *Aggregator) Add(f Fetcher) {
	a.fetchers = append(a.fetchers, f)
}

// FetchAll 并发抓取所有资讯源，按注册顺序返回每个源的结果。
// 单个源失败只记录在对应的 FetchResult 里，不影响其它源。
func (a *Aggregator) FetchAll(ctx context.Context) []FetchResult {
	results := make([]FetchResult, len(a.fetchers))

	var wg sync.WaitGroup
	for i, f := range a.fetchers {
		idx, fetcher := i, f
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fetcher.Name()
			log.Printf("fetch from %s...", name)
			articles, err := fetcher.Fetch(ctx)
			if err != nil {
				log.Printf("fetch %s error: %v", name, err)
				results[idx] = FetchResult{Source: name, Err: err}
				return
			}
			log.Printf("%s done, fetched %d articles", name, len(articles))
			results[idx] = FetchResult{Source: name, Articles: articles}
		}()
	}
	wg.Wait()

	return results
}
