package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/LJTian/AINewsTracker/internal/collector"
	"github.com/LJTian/AINewsTracker/internal/config"
	"github.com/LJTian/AINewsTracker/internal/leaderboard"
	"github.com/LJTian/AINewsTracker/internal/notify"
	"github.com/LJTian/AINewsTracker/internal/processor"
	"github.com/LJTian/AINewsTracker/internal/report"
	"github.com/LJTian/AINewsTracker/internal/storage"
	"github.com/LJTian/AINewsTracker/internal/summarizer"
)

// boardTopN 排行榜取国产模型前多少名
const boardTopN = 10

// Pipeline 一次完整的追踪流程：抓取 → 去重 → 过滤 → 总结 → 日报 → 推送。
// store 为 nil 时跳过所有落库和快照步骤，纯文件模式照样能跑。
type Pipeline struct {
	cfg     *config.Config
	sources *config.Sources
	static  []collector.Fetcher

	dedup      *processor.Deduplicator
	timeFilter *processor.TimeFilter

	arena  leaderboard.Fetcher
	boards *leaderboard.Cache

	summarizer *summarizer.Summarizer
	report     *report.MarkdownReport
	notifier   *notify.FeishuNotifier

	store *storage.Store
	now   func() time.Time
}

func NewPipeline(cfg *config.Config, store *storage.Store) (*Pipeline, error) {
	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return nil, err
	}

	dedup, err := processor.NewDeduplicator(cfg.SimilarityThreshold)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	timeFilter, err := processor.NewTimeFilter(cfg.FilterHours)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}

	// RSS 和 HTML 源在启动时固定，GNews 依赖主题词，每轮在 Run 里构建
	var static []collector.Fetcher
	for _, src := range sources.EnabledRSS() {
		static = append(static, collector.NewRSSFetcher(src))
	}
	for _, src := range sources.EnabledHTML() {
		static = append(static, collector.NewHTMLListFetcher(src))
	}

	p := &Pipeline{
		cfg:        cfg,
		sources:    sources,
		static:     static,
		dedup:      dedup,
		timeFilter: timeFilter,
		arena:      leaderboard.NewLMArenaFetcher(),
		summarizer: summarizer.NewSummarizer(cfg.GLMAPIKey),
		report:     report.NewMarkdownReport(cfg.OutputDir),
		notifier:   notify.NewFeishuNotifier(cfg.FeishuWebhookURL),
		store:      store,
		now:        time.Now,
	}
	if store != nil {
		p.boards = leaderboard.NewCache(store.Redis, 0)
	} else {
		p.boards = leaderboard.NewCache(nil, 0)
	}
	return p, nil
}

// Run 执行一轮追踪。抓不到文章或过滤后为空都不算错误，只记日志退出。
func (p *Pipeline) Run(ctx context.Context) error {
	start := p.now()
	dateStr := start.Format("2006-01-02")
	log.Printf("track job start, date=%s", dateStr)

	searchTopics, filterTopics := p.resolveTopics()

	agg := collector.NewAggregator(p.static...)
	if p.cfg.GNewsAPIKey != "" && len(searchTopics) > 0 {
		agg.Add(collector.NewGNewsFetcher(p.cfg.GNewsAPIKey, searchTopics))
	}

	results := agg.FetchAll(ctx)
	batches := make([][]collector.Article, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		batches = append(batches, r.Articles)
	}
	articles := processor.Merge(batches...)
	if len(articles) == 0 {
		log.Println("track job: no articles fetched, nothing to do")
		return nil
	}

	board := p.loadBoard(ctx)

	articles = p.dedup.Deduplicate(articles)
	articles = p.timeFilter.Filter(articles)
	articles = processor.NewKeywordFilter(filterTopics).Filter(articles)
	if len(articles) == 0 {
		log.Println("track job: no articles left after filtering")
		return nil
	}

	if p.store != nil {
		if err := p.store.SaveArticles(articles); err != nil {
			log.Printf("track job: save articles: %v", err)
		}
	}

	summary := p.summarizer.Summarize(ctx, articles)

	content := p.report.Build(articles, summary, dateStr, board)
	path, err := p.report.Write(dateStr, content)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	if p.store != nil {
		if err := p.store.SaveReport(dateStr, content, path, len(articles)); err != nil {
			log.Printf("track job: save report: %v", err)
		}
	}

	if err := p.notifier.SendReport(ctx, summary, articles, p.cfg.ReportURL, board); err != nil {
		log.Printf("track job: send feishu card: %v", err)
		// 卡片被拒时退化成纯文本，至少把日报位置推出去
		target := path
		if p.cfg.ReportURL != "" {
			target = p.cfg.ReportURL
		}
		text := fmt.Sprintf("%s 国产大模型日报已生成：%s", dateStr, target)
		if terr := p.notifier.SendText(ctx, text); terr != nil {
			log.Printf("track job: send feishu text: %v", terr)
		}
	}

	log.Printf("track job done, %d articles, took %s", len(articles), p.now().Sub(start).Round(time.Millisecond))
	return nil
}

// resolveTopics 返回 GNews 搜索词和关键词过滤词。
// 显式主题（SEARCH_TOPICS 或关注主题表）同时作用于两者；
// 都没有时搜索词退回配置文件 default_topics 再退内置词表，
// 过滤词保持为空，让关键词过滤直接放行。
func (p *Pipeline) resolveTopics() (search, filter []string) {
	explicit := p.cfg.SearchTopics
	if len(explicit) == 0 && p.store != nil {
		explicit = p.store.ListWatchTopics()
	}
	if len(explicit) > 0 {
		return explicit, explicit
	}

	search = p.sources.DefaultTopics
	if len(search) == 0 {
		search = config.DefaultTopics()
	}
	return search, nil
}

// loadBoard 拉排行榜摘要，失败退回数据库里上一次成功的快照。
// 排行榜挂了不影响日报主流程，返回 nil 表示本期没有榜单区。
func (p *Pipeline) loadBoard(ctx context.Context) *leaderboard.Summary {
	board, err := p.boards.GetOrLoad(ctx, p.arena, boardTopN)
	if err == nil {
		if p.store != nil {
			if data, merr := json.Marshal(board); merr == nil {
				if serr := p.store.SaveLeaderboardSnapshot(p.arena.Name(), data); serr != nil {
					log.Printf("track job: save leaderboard snapshot: %v", serr)
				}
			}
		}
		return board
	}

	log.Printf("track job: leaderboard fetch failed: %v", err)
	if p.store == nil {
		return nil
	}
	data, fetchedAt, ok := p.store.GetLeaderboardSnapshot(p.arena.Name())
	if !ok {
		return nil
	}
	var snap leaderboard.Summary
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("track job: bad leaderboard snapshot: %v", err)
		return nil
	}
	log.Printf("track job: using leaderboard snapshot from %s", fetchedAt.Format("2006-01-02 15:04"))
	return &snap
}
