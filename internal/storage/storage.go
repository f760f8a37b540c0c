package storage

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/LJTian/AINewsTracker/internal/collector"
	"github.com/LJTian/AINewsTracker/internal/processor"
)

// Article 入库的文章记录。ID 是规范化链接的 sha1，
// 没有链接的文章退化为标题+来源的 sha1。
type Article struct {
	ID      string `gorm:"primaryKey;size:40" json:"id"`
	Title   string `gorm:"size:512" json:"title"`
	Summary string `gorm:"size:600" json:"summary"`
	Link    string `gorm:"size:1024;index" json:"link"`
	Source  string `gorm:"size:64;index" json:"source"`
	// Published 为零值表示来源没有发布时间，此时 PublishedDate 为空串
	Published     time.Time `gorm:"index" json:"published"`
	PublishedDate string    `gorm:"size:10;index" json:"publishedDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Report 每日生成的 Markdown 日报
type Report struct {
	Date         string `gorm:"primaryKey;size:10" json:"date"`
	Content      string `gorm:"type:text" json:"content"`
	Path         string `gorm:"size:256" json:"path"`
	ArticleCount int    `json:"articleCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStore 连接 PostgreSQL 并完成建表；redisAddr 为空时不启用缓存，
// Redis 连不上只告警，不阻塞启动。
func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Article{}, &Report{}, &WatchTopic{}, &LeaderboardSnapshot{}); err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: redisAddr,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("warn: redis ping failed: %v", err)
		}
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// 东八区，用于日期展示与筛选
var locEast8 *time.Location

func init() {
	locEast8, _ = time.LoadLocation("Asia/Shanghai")
	if locEast8 == nil {
		locEast8 = time.FixedZone("CST", 8*3600)
	}
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 PostgreSQL invalid byte sequence 错误
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunesDB 按 rune 数截断字符串，确保不会超过数据库字段长度。
// 这是对上游清洗的双保险，防止外部服务返回异常长文本导致入库失败。
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// articleID 计算文章的稳定主键：有链接用规范化链接，没有则用标题+来源
func articleID(a collector.Article) string {
	key := processor.NormalizeURL(a.Link)
	if key == "" {
		key = "title:" + a.Title + "|source:" + a.Source
	}
	sum := sha1.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}

// SaveArticles 保存一批文章，以 ID 作为幂等键；已存在时刷新标题与摘要
func (s *Store) SaveArticles(items []collector.Article) error {
	for _, it := range items {
		id := articleID(it)
		pubDate := ""
		if !it.Published.IsZero() {
			pubDate = it.Published.In(locEast8).Format("2006-01-02")
		}
		title := truncateRunesDB(toValidUTF8(it.Title), 512)
		summary := truncateRunesDB(toValidUTF8(it.Summary), 600)

		a := &Article{
			ID:            id,
			Title:         title,
			Summary:       summary,
			Link:          it.Link,
			Source:        it.Source,
			Published:     it.Published,
			PublishedDate: pubDate,
		}

		if err := s.DB.Where("id = ?", id).FirstOrCreate(a).Error; err != nil {
			return err
		}
		_ = s.DB.Model(a).Updates(map[string]any{
			"title":          title,
			"summary":        summary,
			"published":      it.Published,
			"published_date": pubDate,
		}).Error
	}

	// 不做按 key 通配删除，依赖短 TTL 的列表缓存自然过期
	return nil
}

// ListArticles 按来源和日期返回文章列表（最新在前），并用 Redis 做短缓存
func (s *Store) ListArticles(source string, limit int, date string) ([]Article, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("articles:list:%s:%d:%s", source, limit, date)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Article
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []Article
	db := s.DB.Model(&Article{})
	if source != "" {
		db = db.Where("source = ?", source)
	}
	if date != "" {
		db = db.Where("published_date = ?", date)
	}
	if err := db.Order("published DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}

	const listCacheTTL = 5 * time.Minute
	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}

	return list, nil
}

// ListArticleDates 返回有文章的日期列表（倒序），结果缓存 5 分钟
func (s *Store) ListArticleDates(source string, limit int) ([]string, error) {
	if limit <= 0 || limit > 365 {
		limit = 31
	}
	ctx := context.Background()
	cacheKey := fmt.Sprintf("articles:dates:%s:%d", source, limit)
	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []string
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	sql := `SELECT DISTINCT published_date AS d FROM articles WHERE TRIM(COALESCE(published_date, '')) <> ''`
	args := []interface{}{}
	if source != "" {
		sql += ` AND source = ?`
		args = append(args, source)
	}
	sql += ` ORDER BY d DESC LIMIT ?`
	args = append(args, limit)

	var rows []struct{ D string }
	if err := s.DB.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.D != "" {
			dates = append(dates, r.D)
		}
	}
	if s.Redis != nil && len(dates) > 0 {
		if bs, err := json.Marshal(dates); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, 5*time.Minute).Err()
		}
	}
	return dates, nil
}

// SaveReport 保存（或刷新）某天的日报
func (s *Store) SaveReport(date, content, path string, articleCount int) error {
	r := &Report{
		Date:         date,
		Content:      content,
		Path:         path,
		ArticleCount: articleCount,
	}
	if err := s.DB.Where("date = ?", date).FirstOrCreate(r).Error; err != nil {
		return err
	}
	return s.DB.Model(r).Updates(map[string]any{
		"content":       content,
		"path":          path,
		"article_count": articleCount,
	}).Error
}

// GetReport 取某天的日报
func (s *Store) GetReport(date string) (*Report, error) {
	var r Report
	if err := s.DB.Where("date = ?", date).First(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// ListReportDates 返回已有日报的日期列表（倒序）
func (s *Store) ListReportDates(limit int) ([]string, error) {
	if limit <= 0 || limit > 365 {
		limit = 31
	}
	var dates []string
	err := s.DB.Model(&Report{}).
		Order("date DESC").
		Limit(limit).
		Pluck("date", &dates).Error
	return dates, err
}
