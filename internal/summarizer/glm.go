package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	glmBaseURL = "https://open.bigmodel.cn/api/paas/v4/chat/completions"
	// glm-4-flash 免费档足够做每日摘要
	glmModel            = "glm-4-flash"
	glmMaxTokens        = 4096
	glmClientTimeout    = 60 * time.Second
	glmMaxResponseBytes = 1 << 20
)

// GLMClient 智谱 GLM 对话接口客户端
type GLMClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGLMClient(apiKey string) (*GLMClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("glm: api key not configured")
	}
	return &GLMClient{
		apiKey:  apiKey,
		baseURL: glmBaseURL,
		client:  &http.Client{Timeout: glmClientTimeout},
	}, nil
}

type glmMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat 单轮对话，返回首个 choice 的内容
func (c *GLMClient) Chat(ctx context.Context, systemPrompt, prompt string, temperature float64) (string, error) {
	messages := make([]glmMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, glmMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, glmMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(map[string]any{
		"model":       glmModel,
		"messages":    messages,
		"max_tokens":  glmMaxTokens,
		"temperature": temperature,
		"stream":      false,
	})
	if err != nil {
		return "", fmt.Errorf("glm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("glm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("glm: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("glm: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, glmMaxResponseBytes)).Decode(&result); err != nil {
		return "", fmt.Errorf("glm: decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("glm: response has no choices")
	}
	return result.Choices[0].Message.Content, nil
}
