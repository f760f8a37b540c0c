package storage

import (
	"strings"
	"time"
)

// WatchTopic 关注主题：通过 API 添加的搜索关键词，追踪任务取它做关键词过滤
type WatchTopic struct {
	Topic     string    `gorm:"primaryKey;size:64" json:"topic"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListWatchTopics 返回所有关注主题（按添加顺序）
func (s *Store) ListWatchTopics() []string {
	var list []WatchTopic
	if err := s.DB.Order("created_at ASC").Find(&list).Error; err != nil {
		return nil
	}
	topics := make([]string, 0, len(list))
	for _, r := range list {
		topics = append(topics, r.Topic)
	}
	return topics
}

// AddWatchTopic 添加关注主题（已存在则忽略）
func (s *Store) AddWatchTopic(topic string) error {
	topic = NormalizeTopic(topic)
	if topic == "" {
		return nil
	}
	r := WatchTopic{Topic: topic, CreatedAt: time.Now()}
	return s.DB.Where("topic = ?", topic).FirstOrCreate(&r).Error
}

// RemoveWatchTopic 移除关注主题
func (s *Store) RemoveWatchTopic(topic string) error {
	topic = NormalizeTopic(topic)
	if topic == "" {
		return nil
	}
	return s.DB.Where("topic = ?", topic).Delete(&WatchTopic{}).Error
}

// NormalizeTopic 规范主题词：去首尾空白、压缩内部空白、去掉逗号（留作分隔符），
// 超过 64 个字符的视为无效，供 API 校验使用
func NormalizeTopic(topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return ""
	}
	topic = strings.Join(strings.Fields(topic), " ")
	if strings.ContainsAny(topic, ",，") {
		return ""
	}
	if len([]rune(topic)) > 64 {
		return ""
	}
	return topic
}
