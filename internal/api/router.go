package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/LJTian/AINewsTracker/internal/leaderboard"
	"github.com/LJTian/AINewsTracker/internal/storage"
)

type Server struct {
	store   *storage.Store
	boards  *leaderboard.Cache
	arena   leaderboard.Fetcher
	openllm leaderboard.Fetcher
	// track 触发一轮追踪任务，由调用方注入（通常是 scheduler.RunOnce）
	track func()
}

func NewServer(store *storage.Store, boards *leaderboard.Cache, track func()) *Server {
	return &Server{
		store:   store,
		boards:  boards,
		arena:   leaderboard.NewLMArenaFetcher(),
		openllm: leaderboard.NewOpenLLMFetcher(),
		track:   track,
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/articles", s.listArticles)
		v1.GET("/articles/dates", s.listArticleDates)
		v1.GET("/reports", s.listReports)
		v1.GET("/reports/:date", s.getReport)
		v1.GET("/leaderboard", s.getLeaderboard)
		v1.GET("/topics", s.listTopics)
		v1.POST("/topics", s.addTopic)
		v1.DELETE("/topics/:topic", s.removeTopic)
		v1.POST("/track", s.triggerTrack)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listArticles(c *gin.Context) {
	source := c.Query("source")
	date := c.Query("date")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	items, err := s.store.ListArticles(source, limit, date)
	if err != nil {
		internalError(c)
		return
	}
	ok(c, items)
}

func (s *Server) listArticleDates(c *gin.Context) {
	source := c.Query("source")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "31"))
	if err != nil || limit <= 0 {
		limit = 31
	}

	dates, err := s.store.ListArticleDates(source, limit)
	if err != nil {
		internalError(c)
		return
	}
	ok(c, dates)
}

func (s *Server) listReports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "31"))
	if err != nil || limit <= 0 {
		limit = 31
	}

	dates, err := s.store.ListReportDates(limit)
	if err != nil {
		internalError(c)
		return
	}
	ok(c, dates)
}

func (s *Server) getReport(c *gin.Context) {
	date := c.Param("date")

	report, err := s.store.GetReport(date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "not_found",
				"message": "report not found",
			})
			return
		}
		internalError(c)
		return
	}
	ok(c, report)
}

func (s *Server) getLeaderboard(c *gin.Context) {
	top, err := strconv.Atoi(c.DefaultQuery("top", "10"))
	if err != nil || top <= 0 {
		top = 10
	}

	var fetcher leaderboard.Fetcher
	switch c.DefaultQuery("source", "lmarena") {
	case "lmarena":
		fetcher = s.arena
	case "openllm":
		fetcher = s.openllm
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": "source must be lmarena or openllm",
		})
		return
	}

	summary, err := s.boards.GetOrLoad(c.Request.Context(), fetcher, top)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    "upstream_error",
			"message": "leaderboard fetch failed",
		})
		return
	}
	ok(c, summary)
}

func (s *Server) listTopics(c *gin.Context) {
	ok(c, s.store.ListWatchTopics())
}

func (s *Server) addTopic(c *gin.Context) {
	var body struct {
		Topic string `json:"topic"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": "invalid json body",
		})
		return
	}

	topic := storage.NormalizeTopic(body.Topic)
	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": "invalid topic",
		})
		return
	}

	if err := s.store.AddWatchTopic(topic); err != nil {
		internalError(c)
		return
	}
	ok(c, topic)
}

func (s *Server) removeTopic(c *gin.Context) {
	topic := storage.NormalizeTopic(c.Param("topic"))
	if topic == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": "invalid topic",
		})
		return
	}

	if err := s.store.RemoveWatchTopic(topic); err != nil {
		internalError(c)
		return
	}
	ok(c, topic)
}

// triggerTrack 异步触发一轮追踪，立即返回
func (s *Server) triggerTrack(c *gin.Context) {
	if s.track == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"code":    "unavailable",
			"message": "track job not configured",
		})
		return
	}
	go s.track()
	c.JSON(http.StatusAccepted, gin.H{
		"code":    "ok",
		"message": "track job started",
	})
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    data,
	})
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "internal_error",
		"message": "internal server error",
	})
}
