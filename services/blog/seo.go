package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	blogTypes "healthcare-booking/types/blog"

	"google.golang.org/genai"
)

// SeoHelper proposes search metadata for a post.
type SeoHelper interface {
	Suggest(ctx context.Context, title, content string) (*blogTypes.SeoSuggestion, error)
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiSeo asks a Gemini model for SEO fields.
type GeminiSeo struct {
	models contentGenerator
	model  string
}

func NewGeminiSeo(ctx context.Context, apiKey, model string) (*GeminiSeo, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiSeo{models: client.Models, model: model}, nil
}

const maxPromptContent = 4000

const seoPrompt = `You are an SEO editor for a healthcare blog. Read the article below and return ONLY valid JSON:
{
"seo_title": string,        // at most 60 characters
"seo_description": string,  // at most 160 characters
"seo_keywords": [string],   // 3 to 8 lowercase keywords
"excerpt": string           // one or two sentences, at most 300 characters
}

Title: %s

Article:
%s`

func (g *GeminiSeo) Suggest(ctx context.Context, title, content string) (*blogTypes.SeoSuggestion, error) {
	if len(content) > maxPromptContent {
		content = content[:maxPromptContent]
	}
	prompt := &genai.Content{Parts: []*genai.Part{{Text: fmt.Sprintf(seoPrompt, title, content)}}}

	result, err := g.models.GenerateContent(ctx, g.model, []*genai.Content{prompt}, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.2)),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate SEO metadata: %w", err)
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content generated for SEO metadata")
	}

	var suggestion blogTypes.SeoSuggestion
	text := extractJSON(result.Candidates[0].Content.Parts[0].Text)
	if err := json.Unmarshal([]byte(text), &suggestion); err != nil {
		return nil, fmt.Errorf("failed to parse SEO response: %w", err)
	}
	return clampSuggestion(&suggestion), nil
}

// extractJSON strips a surrounding markdown code fence.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return strings.Trim(text, "`")
	}
	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n])
}

func clampSuggestion(s *blogTypes.SeoSuggestion) *blogTypes.SeoSuggestion {
	s.Title = truncate(s.Title, 255)
	s.Description = truncate(s.Description, 500)
	s.Excerpt = truncate(s.Excerpt, 300)
	keywords := make([]string, 0, len(s.Keywords))
	for _, k := range s.Keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	s.Keywords = keywords
	return s
}
