package ai

import (
	"context"
	"errors"
	"fmt"
	"mindpath/therapy-app/internal/config"
	"strings"
	"time"

	"google.golang.org/genai"
)

const defaultGenerateTimeout = 60 * time.Second

// Every harm category blocks at medium and above.
var safetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove},
}

// GeminiGenerator implements Generator with the Gemini API.
type GeminiGenerator struct {
	client   *genai.Client
	model    string
	timeout  time.Duration
	observer Observer
}

// NewGeminiGenerator creates a Generator backed by the Gemini API.
func NewGeminiGenerator(ctx context.Context, cfg config.AIConfig, observer Observer) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai.api_key is required")
	}
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	if observer == nil {
		observer = NoopObserver{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	return &GeminiGenerator{
		client:   client,
		model:    cfg.Model,
		timeout:  timeout,
		observer: observer,
	}, nil
}

// Generate sends the prompt (and attachment, if any) and returns the reply text.
func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	start := time.Now()
	resp, err := g.generate(ctx, req)

	g.observer.OnCallComplete(ctx, CallEvent{
		Task:      req.Task,
		Model:     g.model,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorKind: Kind(err),
	})
	return resp, err
}

func (g *GeminiGenerator) generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	if req.Attachment != nil {
		parts = append(parts, genai.NewPartFromBytes(req.Attachment.Data, req.Attachment.MIMEType))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SafetySettings: safetySettings,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return responseText(resp, g.model)
}

// responseText pulls the reply text out of a Gemini response. Only safety
// blocks become *WithheldError; an empty reply is ErrNoStructuredPayload.
func responseText(resp *genai.GenerateContentResponse, model string) (*GenerateResponse, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", ErrNoStructuredPayload)
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return nil, &WithheldError{Reason: string(fb.BlockReason), Message: fb.BlockReasonMessage}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil, fmt.Errorf("%w: no candidates", ErrNoStructuredPayload)
	}

	cand := resp.Candidates[0]
	switch cand.FinishReason {
	case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent, genai.FinishReasonBlocklist, genai.FinishReasonSPII:
		return nil, &WithheldError{Reason: string(cand.FinishReason), Message: cand.FinishMessage}
	}

	var b strings.Builder
	if cand.Content != nil {
		for _, p := range cand.Content.Parts {
			if p != nil && !p.Thought {
				b.WriteString(p.Text)
			}
		}
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("%w: empty reply (finish reason %s)", ErrNoStructuredPayload, cand.FinishReason)
	}

	if resp.ModelVersion != "" {
		model = resp.ModelVersion
	}
	return &GenerateResponse{Text: b.String(), Model: model}, nil
}
