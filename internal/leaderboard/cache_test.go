package leaderboard

import (
	"context"
	"testing"
)

type stubBoard struct {
	name  string
	calls int
}

func (s *stubBoard) Name() string { return s.name }

func (s *stubBoard) Summary(ctx context.Context, topN int) (*Summary, error) {
	s.calls++
	return &Summary{Source: s.name, UpdatedAt: "2025-06-02 08:00"}, nil
}

// 未配置 Redis 时每次直接回源
func TestCacheWithoutRedis(t *testing.T) {
	c := NewCache(nil, 0)
	stub := &stubBoard{name: "stub"}

	for i := 0; i < 3; i++ {
		s, err := c.GetOrLoad(context.Background(), stub, 10)
		if err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
		if s.Source != "stub" {
			t.Errorf("Source = %q", s.Source)
		}
	}

	if stub.calls != 3 {
		t.Fatalf("expected 3 direct loads without redis, got %d", stub.calls)
	}
}

func TestCacheDefaultTTL(t *testing.T) {
	c := NewCache(nil, 0)
	if c.ttl != DefaultCacheTTL {
		t.Fatalf("ttl = %v, want %v", c.ttl, DefaultCacheTTL)
	}
}
