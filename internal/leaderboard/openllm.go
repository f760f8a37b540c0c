package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// Hugging Face datasets-server 的分页行接口
	openLLMRowsURL          = "https://datasets-server.huggingface.co/rows"
	openLLMDataset          = "open-llm-leaderboard/contents"
	openLLMPageSize         = 100
	openLLMMaxRows          = 5000
	openLLMClientTimeout    = 30 * time.Second
	openLLMMaxResponseBytes = 8 << 20
	openLLMGlobalTop        = 5
)

// openLLMChineseKeywords 国产模型关键词，比 LM Arena 的词表多机构名
var openLLMChineseKeywords = []string{
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
	"aquila",
	"tigerbot",
	"moss",
	"chinese",
	"alibaba",
	"tsinghua",
	"tencent",
	"baidu",
	"bytedance",
}

// OpenLLMFetcher 从 Hugging Face Open LLM Leaderboard 数据集抓取基准分榜
type OpenLLMFetcher struct {
	rowsURL string
	client  *http.Client
	now     func() time.Time
}

func NewOpenLLMFetcher() *OpenLLMFetcher {
	return &OpenLLMFetcher{
		rowsURL: openLLMRowsURL,
		client:  &http.Client{Timeout: openLLMClientTimeout},
		now:     time.Now,
	}
}

func (f *OpenLLMFetcher) Name() string {
	return "openllm"
}

// Summary 分页拉取数据集全部行，生成国产模型 topN + 全球前五摘要
func (f *OpenLLMFetcher) Summary(ctx context.Context, topN int) (*Summary, error) {
	models, err := f.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	log.Printf("openllm: loaded %d models", len(models))

	ranked := rankModels(models)

	return &Summary{
		ChineseModels: filterChinese(ranked, openLLMChineseKeywords, topN),
		TopGlobal:     head(ranked, openLLMGlobalTop),
		UpdatedAt:     f.now().Format("2006-01-02 15:04"),
		Source:        "Hugging Face Open LLM Leaderboard",
	}, nil
}

func (f *OpenLLMFetcher) loadAll(ctx context.Context) ([]Model, error) {
	models := make([]Model, 0, openLLMPageSize)

	for offset := 0; offset < openLLMMaxRows; offset += openLLMPageSize {
		rows, total, err := f.loadPage(ctx, offset)
		if err != nil {
			// 首页失败整体失败，后续页失败用已有数据
			if offset == 0 {
				return nil, err
			}
			log.Printf("openllm: page at offset %d failed: %v, continue with %d models", offset, err, len(models))
			break
		}
		models = append(models, rows...)
		if offset+openLLMPageSize >= total || len(rows) == 0 {
			break
		}
	}

	if len(models) == 0 {
		return nil, fmt.Errorf("openllm: empty dataset")
	}
	return models, nil
}

func (f *OpenLLMFetcher) loadPage(ctx context.Context, offset int) ([]Model, int, error) {
	params := url.Values{}
	params.Set("dataset", openLLMDataset)
	params.Set("config", "default")
	params.Set("split", "train")
	params.Set("offset", strconv.Itoa(offset))
	params.Set("length", strconv.Itoa(openLLMPageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.rowsURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("openllm: build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("openllm: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("openllm: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Rows []struct {
			Row map[string]any `json:"row"`
		} `json:"rows"`
		NumRowsTotal int `json:"num_rows_total"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, openLLMMaxResponseBytes)).Decode(&payload); err != nil {
		return nil, 0, fmt.Errorf("openllm: decode response: %w", err)
	}

	models := make([]Model, 0, len(payload.Rows))
	for _, r := range payload.Rows {
		if m, ok := parseOpenLLMRow(r.Row); ok {
			models = append(models, m)
		}
	}
	return models, payload.NumRowsTotal, nil
}

// parseOpenLLMRow 解析一行。列名带空格和 emoji（如 "Average ⬆️"），
// 结构体 tag 表达不了，只能从 map 里按键取
func parseOpenLLMRow(row map[string]any) (Model, bool) {
	name, _ := row["fullname"].(string)
	if name == "" {
		return Model{}, false
	}
	return Model{
		Name:  name,
		Score: toFloat(row["Average ⬆️"]),
		Benchmarks: &Benchmarks{
			IFEval:  toFloat(row["IFEval"]),
			BBH:     toFloat(row["BBH"]),
			Math:    toFloat(row["MATH Lvl 5"]),
			GPQA:    toFloat(row["GPQA"]),
			MUSR:    toFloat(row["MUSR"]),
			MMLUPro: toFloat(row["MMLU-PRO"]),
		},
		Architecture: toString(row["Architecture"]),
		Precision:    toString(row["Precision"]),
		ParamsB:      toFloat(row["#Params (B)"]),
	}, true
}

func toFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0
		}
		return f
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
