package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"time"
)

const (
	// lmarena-history 项目每日归档的全量榜单
	lmArenaDataURL          = "https://raw.githubusercontent.com/nakasyou/lmarena-history/main/output/scores.json"
	lmArenaClientTimeout    = 30 * time.Second
	lmArenaMaxResponseBytes = 32 << 20
	lmArenaGlobalTop        = 5
)

// lmArenaChineseKeywords 国产模型的名称关键词
var lmArenaChineseKeywords = []string{
	"deepseek",
	"qwen",
	"glm",
	"zhipu",
	"chatglm",
	"baichuan",
	"yi-",
	"internlm",
	"minimax",
	"moonshot",
	"kimi",
	"doubao",
	"ernie",
	"hunyuan",
	"sensechat",
	"step",
	"alibaba",
	"abab",
}

// LMArenaFetcher 从 lmarena-history 归档抓取 LM Arena 对战榜
type LMArenaFetcher struct {
	dataURL string
	client  *http.Client
	now     func() time.Time
}

func NewLMArenaFetcher() *LMArenaFetcher {
	return &LMArenaFetcher{
		dataURL: lmArenaDataURL,
		client:  &http.Client{Timeout: lmArenaClientTimeout},
		now:     time.Now,
	}
}

func (f *LMArenaFetcher) Name() string {
	return "lmarena"
}

// Summary 拉取最新一天的 text/overall 榜，生成国产模型 topN + 全球前五摘要
func (f *LMArenaFetcher) Summary(ctx context.Context, topN int) (*Summary, error) {
	overall, date, err := f.loadLatest(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("lmarena: using snapshot %s, %d models", date, len(overall))

	models := make([]Model, 0, len(overall))
	for name, score := range overall {
		models = append(models, Model{Name: name, Score: score})
	}
	ranked := rankModels(models)

	return &Summary{
		ChineseModels: filterChinese(ranked, lmArenaChineseKeywords, topN),
		TopGlobal:     head(ranked, lmArenaGlobalTop),
		UpdatedAt:     f.now().Format("2006-01-02 15:04"),
		Source:        "LM Arena (lmarena.ai)",
	}, nil
}

// loadLatest 拉全量历史数据，取最新日期的 text/overall 分数表。
// 数据结构是 {日期: {"text": {"overall": {模型: 分数}}}}，非数值分数直接丢弃。
func (f *LMArenaFetcher) loadLatest(ctx context.Context) (map[string]float64, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.dataURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("lmarena: build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("lmarena: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("lmarena: unexpected status %d", resp.StatusCode)
	}

	var raw map[string]struct {
		Text struct {
			Overall map[string]any `json:"overall"`
		} `json:"text"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, lmArenaMaxResponseBytes)).Decode(&raw); err != nil {
		return nil, "", fmt.Errorf("lmarena: decode response: %w", err)
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("lmarena: empty dataset")
	}

	// 日期是 YYYY-MM-DD 格式，字典序即时间序
	dates := make([]string, 0, len(raw))
	for d := range raw {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	latest := dates[len(dates)-1]

	overall := make(map[string]float64, len(raw[latest].Text.Overall))
	for name, v := range raw[latest].Text.Overall {
		if score, ok := v.(float64); ok {
			overall[name] = score
		}
	}
	return overall, latest, nil
}
