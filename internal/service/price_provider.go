package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"trendies_market_v1/pkg/utils"
)

// TextGenerator 文本生成上游
type TextGenerator interface {
	Name() string
	Model() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// classifyCallError 区分超时与其他上游错误
func classifyCallError(ctx context.Context, err error) error {
	var se *SuggestionError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &SuggestionError{Kind: FailureTimeout, Err: err}
	}
	return &SuggestionError{Kind: FailureUpstream, Err: err}
}

// ==================== Chat Completions 上游 ====================

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// ChatProvider 兼容 chat completions 协议的 HTTP 上游
type ChatProvider struct {
	client   *resty.Client
	endpoint string
	apiKey   string
	model    string
}

// NewChatProvider 创建 chat 上游，超时由调用方 context 控制
func NewChatProvider(endpoint, apiKey, model string) *ChatProvider {
	return &ChatProvider{
		client:   utils.NewHTTPClient(0),
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
	}
}

func (p *ChatProvider) Name() string  { return "chat" }
func (p *ChatProvider) Model() string { return p.model }

func (p *ChatProvider) Generate(ctx context.Context, prompt string) (string, error) {
	req := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(chatRequest{
			Model:    p.model,
			Messages: []chatMessage{{Role: "user", Content: prompt}},
		})
	if p.apiKey != "" {
		req.SetAuthToken(p.apiKey)
	}

	resp, err := req.Post(p.endpoint)
	if err != nil {
		return "", classifyCallError(ctx, err)
	}
	if resp.IsError() {
		return "", upstreamError(FailureUpstream, "上游返回状态 %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	var body chatResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", upstreamError(FailureMalformed, "响应解析失败: %v", err)
	}
	if len(body.Choices) == 0 || strings.TrimSpace(body.Choices[0].Message.Content) == "" {
		return "", upstreamError(FailureMalformed, "响应中没有内容")
	}
	return body.Choices[0].Message.Content, nil
}

// ==================== Gemini 上游 ====================

// GeminiProvider Google Gemini
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider 初始化 Gemini 客户端
func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string  { return "gemini" }
func (p *GeminiProvider) Model() string { return p.model }

func (p *GeminiProvider) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.GenerativeModel(p.model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyCallError(ctx, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", upstreamError(FailureMalformed, "Gemini 返回为空")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", upstreamError(FailureMalformed, "Gemini 返回中没有文本")
	}
	return sb.String(), nil
}

// Close 释放客户端
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// 回退到字符边界，避免写出非法 UTF-8
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
