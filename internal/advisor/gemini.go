// Package advisor answers personal finance questions with Gemini, falling
// back to canned replies when the model is unavailable.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"spendwise/internal/ports"
)

const systemPrompt = `You are FinBot, a helpful and friendly AI finance assistant. Your expertise includes:

CORE RESPONSIBILITIES:
- Personal budgeting and expense tracking
- Investment advice for beginners to intermediate investors
- Savings strategies and financial planning
- Debt management and credit improvement
- Financial education and literacy
- Currency and market insights
- Tax planning basics (US-focused but mention international considerations)

PERSONALITY:
- Friendly, encouraging, and supportive
- Use simple language and avoid jargon
- Provide actionable, practical advice
- Always emphasize the importance of personal research
- Be optimistic but realistic about financial goals

RESPONSE GUIDELINES:
- Keep responses concise (under 200 words when possible)
- Use bullet points for multiple tips
- Include relevant emojis sparingly (💰 💡 📊 📈 ✅)
- Always add a disclaimer for investment advice
- Ask follow-up questions to provide better personalized advice
- Reference the user's expense tracking app when relevant

IMPORTANT DISCLAIMERS:
- Always mention that advice is for educational purposes
- Recommend consulting financial advisors for complex situations
- Emphasize personal research before making investment decisions

Remember: You're helping users improve their financial health through their expense tracking journey.`

const maxQuestionLen = 2000

var ErrEmptyQuestion = errors.New("message cannot be empty")

type Gemini struct {
	client   *genai.Client
	model    string
	fallback Fallback
}

var _ ports.Advisor = (*Gemini)(nil)

type Option func(*genai.ClientConfig)

// WithBaseURL points the client at a different API host.
func WithBaseURL(url string) Option {
	return func(c *genai.ClientConfig) { c.HTTPOptions.BaseURL = url }
}

func NewGemini(ctx context.Context, apiKey, model string, opts ...Option) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing Gemini API key")
	}
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Advise asks the model and degrades to the canned reply on any failure.
func (g *Gemini) Advise(ctx context.Context, question, spending string) (ports.Advice, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return ports.Advice{}, ErrEmptyQuestion
	}
	if len(question) > maxQuestionLen {
		question = question[:maxQuestionLen]
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(buildPrompt(question, spending)), generationConfig())
	if err != nil {
		slog.WarnContext(ctx, "Gemini request failed, using fallback reply", "model", g.model, "error", err)
		return g.fallback.Advise(ctx, question, spending)
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		slog.WarnContext(ctx, "Gemini returned no text, using fallback reply", "model", g.model)
		return g.fallback.Advise(ctx, question, spending)
	}
	return ports.Advice{Reply: reply, Source: SourceGemini}, nil
}

func buildPrompt(question, spending string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	if s := strings.TrimSpace(spending); s != "" {
		b.WriteString("\n\nUser Spending Summary:\n")
		b.WriteString(s)
	}
	b.WriteString("\n\nUser Question: ")
	b.WriteString(question)
	b.WriteString("\n\nPlease provide a helpful finance response:")
	return b.String()
}

func generationConfig() *genai.GenerateContentConfig {
	block := genai.HarmBlockThresholdBlockMediumAndAbove
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		TopK:            genai.Ptr[float32](40),
		TopP:            genai.Ptr[float32](0.95),
		MaxOutputTokens: 1024,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: block},
			{Category: genai.HarmCategoryHateSpeech, Threshold: block},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: block},
			{Category: genai.HarmCategoryDangerousContent, Threshold: block},
		},
	}
}
