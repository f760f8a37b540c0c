package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/LJTian/AINewsTracker/internal/collector"
)

// Sources 对应 config/sources.yaml
type Sources struct {
	RSSSources    []RSSSourceConfig  `yaml:"rss_sources"`
	HTMLSources   []HTMLSourceConfig `yaml:"html_sources"`
	DefaultTopics []string           `yaml:"default_topics"`
}

// RSSSourceConfig enabled 缺省时视为启用
type RSSSourceConfig struct {
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	Enabled   *bool  `yaml:"enabled"`
	Translate bool   `yaml:"translate"`
}

type HTMLSourceConfig struct {
	Name            string `yaml:"name"`
	URL             string `yaml:"url"`
	Enabled         *bool  `yaml:"enabled"`
	ItemSelector    string `yaml:"item_selector"`
	TitleSelector   string `yaml:"title_selector"`
	LinkSelector    string `yaml:"link_selector"`
	SummarySelector string `yaml:"summary_selector"`
}

// LoadSources 读取新闻源配置。文件不存在不算错误，返回空配置继续跑，
// 这样只用 GNews 的部署可以不带 yaml。
func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("config: sources file %s not found, using empty source list", path)
			return &Sources{}, nil
		}
		return nil, fmt.Errorf("config: read sources %s: %w", path, err)
	}

	var s Sources
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("config: parse sources %s: %w", path, err)
	}

	log.Printf("config: loaded %d rss sources, %d html sources from %s",
		len(s.RSSSources), len(s.HTMLSources), path)
	return &s, nil
}

// EnabledRSS 过滤掉关闭的源，转换成抓取器配置
func (s *Sources) EnabledRSS() []collector.RSSSource {
	out := make([]collector.RSSSource, 0, len(s.RSSSources))
	for _, src := range s.RSSSources {
		if !enabled(src.Enabled) || src.URL == "" {
			continue
		}
		out = append(out, collector.RSSSource{
			Name:      src.Name,
			URL:       src.URL,
			Translate: src.Translate,
		})
	}
	return out
}

func (s *Sources) EnabledHTML() []collector.HTMLSource {
	out := make([]collector.HTMLSource, 0, len(s.HTMLSources))
	for _, src := range s.HTMLSources {
		if !enabled(src.Enabled) || src.URL == "" {
			continue
		}
		out = append(out, collector.HTMLSource{
			Name:            src.Name,
			URL:             src.URL,
			ItemSelector:    src.ItemSelector,
			TitleSelector:   src.TitleSelector,
			LinkSelector:    src.LinkSelector,
			SummarySelector: src.SummarySelector,
		})
	}
	return out
}

func enabled(flag *bool) bool {
	return flag == nil || *flag
}
