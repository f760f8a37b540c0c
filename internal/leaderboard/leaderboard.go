package leaderboard

import (
	"context"
	"sort"
	"strings"
)

// Model 排行榜上的一个模型条目，Score 在 LM Arena 榜是 ELO 分，
// 在 Open LLM 榜是六项基准的平均分
type Model struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"model_name"`
	Score float64 `json:"score"`
	// 细分基准分，仅 Open LLM 榜提供
	Benchmarks   *Benchmarks `json:"benchmarks,omitempty"`
	Architecture string      `json:"architecture,omitempty"`
	Precision    string      `json:"precision,omitempty"`
	ParamsB      float64     `json:"params_b,omitempty"`
}

// Benchmarks Open LLM 榜的六项基准分
type Benchmarks struct {
	IFEval  float64 `json:"ifeval"`
	BBH     float64 `json:"bbh"`
	Math    float64 `json:"math"`
	GPQA    float64 `json:"gpqa"`
	MUSR    float64 `json:"musr"`
	MMLUPro float64 `json:"mmlu_pro"`
}

// Summary 日报使用的排行榜摘要：国产模型榜 + 全球前五
type Summary struct {
	ChineseModels []Model `json:"chinese_models"`
	TopGlobal     []Model `json:"top_global"`
	UpdatedAt     string  `json:"updated_at"`
	Source        string  `json:"source"`
}

// Fetcher 抽象一个模型排行榜数据源
type Fetcher interface {
	// Name 是数据源标识（lmarena / openllm），用作缓存键和 API 参数
	Name() string
	// Summary 拉取数据并生成摘要，topN 控制国产模型条数
	Summary(ctx context.Context, topN int) (*Summary, error)
}

// rankModels 按分数倒序排出全球名次。分数相同按名称排序，
// 避免输出顺序随 map 遍历变化。
func rankModels(models []Model) []Model {
	sort.Slice(models, func(i, j int) bool {
		if models[i].Score != models[j].Score {
			return models[i].Score > models[j].Score
		}
		return models[i].Name < models[j].Name
	})
	for i := range models {
		models[i].Rank = i + 1
	}
	return models
}

// filterChinese 从全球榜中筛出国产模型，保留其全球名次
func filterChinese(models []Model, keywords []string, topN int) []Model {
	chinese := make([]Model, 0, topN)
	for _, m := range models {
		if isChineseModel(m.Name, keywords) {
			chinese = append(chinese, m)
			if len(chinese) == topN {
				break
			}
		}
	}
	return chinese
}

func isChineseModel(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// head 取全球榜前 n 名
func head(models []Model, n int) []Model {
	if len(models) <= n {
		return models
	}
	return models[:n]
}
