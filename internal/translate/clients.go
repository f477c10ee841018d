// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const httpTimeout = 120 * time.Second

// defaultConfidence is reported for chat-based providers, which return no
// usable per-result confidence signal.
const defaultConfidence = 0.9

func systemPrompt(sourceLang, targetLang string) string {
	return fmt.Sprintf(
		"You are a professional translator for a Vietnamese furniture storefront. "+
			"Translate the user's text from %s to %s. "+
			"Keep product terminology natural for e-commerce. "+
			"Reply with the translation only, no explanations or quotes.",
		langName(sourceLang), langName(targetLang))
}

func userPrompt(text, note string) string {
	if note == "" {
		return text
	}
	return fmt.Sprintf("Context: %s\n\nText: %s", note, text)
}

// openAIProvider translates through the OpenAI chat completions API.
type openAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider builds a Provider backed by OpenAI.
func NewOpenAIProvider(apiKey, model string) Provider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &openAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (p *openAIProvider) ID() string { return ProviderOpenAI }

func (p *openAIProvider) Translate(ctx context.Context, text, sourceLang, targetLang, note string) (*Result, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt(sourceLang, targetLang)),
			openai.UserMessage(userPrompt(text, note)),
		},
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices returned")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return nil, fmt.Errorf("openai: empty translation")
	}
	return &Result{Translation: out, Confidence: defaultConfidence, Provider: p.ID()}, nil
}

// compatProvider speaks the OpenAI-compatible chat completions wire format
// against a custom base URL, which covers Groq and local Ollama deployments.
type compatProvider struct {
	baseURL string
	apiKey  string
	model   string
}

// NewCompatProvider builds a Provider for an OpenAI-compatible endpoint.
func NewCompatProvider(baseURL, apiKey, model string) Provider {
	return &compatProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

func (p *compatProvider) ID() string { return ProviderCompat }

func (p *compatProvider) Translate(ctx context.Context, text, sourceLang, targetLang, note string) (*Result, error) {
	body := map[string]any{
		"model": p.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt(sourceLang, targetLang)},
			{"role": "user", "content": userPrompt(text, note)},
		},
		"temperature": 0.2,
	}

	respBody, err := doJSONRequest(ctx, p.baseURL+"/chat/completions", p.apiKey, body)
	if err != nil {
		return nil, fmt.Errorf("compat chat: %w", err)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("compat decode: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("compat: no choices returned")
	}

	out := strings.TrimSpace(result.Choices[0].Message.Content)
	if out == "" {
		return nil, fmt.Errorf("compat: empty translation")
	}
	return &Result{Translation: out, Confidence: defaultConfidence, Provider: p.ID()}, nil
}

// doJSONRequest posts body as JSON with Bearer auth and returns the raw
// response body. Non-2xx responses become errors carrying the body text.
func doJSONRequest(ctx context.Context, url, apiKey string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	client := &http.Client{Timeout: httpTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}
