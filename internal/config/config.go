package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// 本地开发的兜底连接串，线上用环境变量覆盖
const (
	DefaultPostgresDSN = "host=localhost user=ainews password=ainews dbname=ainews port=5432 sslmode=disable TimeZone=UTC"
	DefaultRedisAddr   = "localhost:6379"
)

type Config struct {
	AppPort string

	PostgresDSN string
	RedisAddr   string

	// CronSpec 定时追踪任务的调度表达式，默认每天早上 8 点
	CronSpec string

	GNewsAPIKey      string
	GLMAPIKey        string
	FeishuWebhookURL string
	// ReportURL 飞书卡片"查看完整日报"按钮指向的地址（如 GitHub Pages）
	ReportURL string

	// SearchTopics 来自 SEARCH_TOPICS 环境变量，未设置时为 nil，
	// 由调用方沿"关注主题 → 配置文件 → 内置词表"继续兜底
	SearchTopics []string

	FilterHours         float64
	SimilarityThreshold float64

	OutputDir   string
	SourcesFile string
}

func Load() *Config {
	// 本地开发时从 .env 读取，线上（容器/CI）直接用环境变量
	if err := godotenv.Load(); err == nil {
		log.Println("config: .env loaded")
	}

	cfg := &Config{
		AppPort:             getEnv("APP_PORT", "9000"),
		PostgresDSN:         getEnv("POSTGRES_DSN", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
		CronSpec:            getEnv("CRON_SPEC", "0 8 * * *"),
		GNewsAPIKey:         getEnv("GNEWS_API_KEY", ""),
		GLMAPIKey:           getEnv("GLM_API_KEY", ""),
		FeishuWebhookURL:    getEnv("FEISHU_WEBHOOK_URL", ""),
		ReportURL:           getEnv("REPORT_URL", ""),
		SearchTopics:        ParseTopics(os.Getenv("SEARCH_TOPICS")),
		FilterHours:         getEnvFloat("FILTER_HOURS", 24),
		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.8),
		OutputDir:           getEnv("OUTPUT_DIR", "output"),
		SourcesFile:         getEnv("SOURCES_FILE", "config/sources.yaml"),
	}

	log.Printf("config loaded: port=%s cron=%q filter=%gh threshold=%g",
		cfg.AppPort, cfg.CronSpec, cfg.FilterHours, cfg.SimilarityThreshold)
	return cfg
}

// ParseTopics 解析 SEARCH_TOPICS：优先按 JSON 数组；不是合法 JSON 时按逗号分隔；
// 是合法 JSON 但不是数组时视为无效。解析不出内容返回 nil，继续走默认主题链。
func ParseTopics(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		list, ok := parsed.([]any)
		if !ok {
			return nil
		}
		topics := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				topics = append(topics, s)
			}
		}
		if len(topics) == 0 {
			return nil
		}
		return topics
	}

	parts := strings.Split(raw, ",")
	topics := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			topics = append(topics, p)
		}
	}
	if len(topics) == 0 {
		return nil
	}
	return topics
}

// defaultTopics 所有配置都缺失时的内置主题词表
var defaultTopics = []string{
	"DeepSeek",
	"Qwen",
	"通义千问",
	"Kimi",
	"月之暗面",
	"豆包",
	"GLM",
	"智谱",
	"文心一言",
	"混元",
	"MiniMax",
	"阶跃星辰",
	"大模型",
}

// DefaultTopics 返回内置主题词表的副本
func DefaultTopics() []string {
	topics := make([]string, len(defaultTopics))
	copy(topics, defaultTopics)
	return topics
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: invalid %s=%q, using default %g", key, v, def)
		return def
	}
	return f
}
