package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// 单轮追踪的总超时，抓取、总结、推送都在这个窗口内完成
const jobTimeout = 10 * time.Minute

// Scheduler 按 cron 表达式定时跑追踪流程
type Scheduler struct {
	cron     *cron.Cron
	pipeline *Pipeline
}

func New(spec string, pipeline *Pipeline) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{cron: c, pipeline: pipeline}
	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

// Start 启动定时任务。日报按天推送，重启进程不补跑，
// 需要立即出报告走 RunOnce 或 /api/v1/track
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("scheduler started")
}

// RunOnce 对外暴露的单次执行入口，方便手动触发
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.pipeline.Run(ctx); err != nil {
		log.Printf("track job error: %v", err)
	}
}
