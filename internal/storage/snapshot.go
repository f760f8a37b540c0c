package storage

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LeaderboardSnapshot 排行榜快照表，按数据源存最近一次成功拉取的摘要 JSON，
// 数据源临时不可用时日报和 API 用它兜底
type LeaderboardSnapshot struct {
	Source    string         `gorm:"primaryKey;size:32" json:"source"`
	Data      datatypes.JSON `gorm:"type:jsonb" json:"data"`
	FetchedAt time.Time      `gorm:"index" json:"fetchedAt"`
}

// GetLeaderboardSnapshot 取指定数据源的快照，不做过期判断，由调用方看 FetchedAt 取舍
func (s *Store) GetLeaderboardSnapshot(source string) ([]byte, time.Time, bool) {
	var snap LeaderboardSnapshot
	silent := s.DB.Session(&gorm.Session{Logger: s.DB.Logger.LogMode(logger.Silent)})
	if err := silent.Where("source = ?", source).First(&snap).Error; err != nil {
		return nil, time.Time{}, false
	}
	return []byte(snap.Data), snap.FetchedAt, true
}

// SaveLeaderboardSnapshot 写入或更新指定数据源的快照
func (s *Store) SaveLeaderboardSnapshot(source string, data []byte) error {
	snap := LeaderboardSnapshot{
		Source:    source,
		Data:      datatypes.JSON(data),
		FetchedAt: time.Now(),
	}
	return s.DB.Save(&snap).Error
}
