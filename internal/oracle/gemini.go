package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiScorer asks a Gemini model to grade the argument and parses its JSON reply.
type GeminiScorer struct {
	client *genai.Client
	model  string
}

// NewGeminiScorer builds one client for the process lifetime.
func NewGeminiScorer(ctx context.Context, apiKey, model string) (*GeminiScorer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is empty")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiScorer{client: client, model: model}, nil
}

type geminiVerdict struct {
	Clarity        int    `json:"clarity"`
	Relevance      int    `json:"relevance"`
	Logic          int    `json:"logic"`
	Evidence       int    `json:"evidence"`
	Persuasiveness int    `json:"persuasiveness"`
	Rebuttal       int    `json:"rebuttal"`
	Feedback       string `json:"feedback"`
}

func buildPrompt(req Request) string {
	return fmt.Sprintf(`You are an impartial debate judge. Grade one argument.

DEBATE TOPIC:
%s

SIDE ARGUED:
%s

ARGUMENT:
%s

Score each criterion with an integer from 1 to 10:
clarity, relevance, logic, evidence, persuasiveness, rebuttal.
Rebuttal measures how well the argument anticipates or answers the other side.

Respond in JSON format:
{
  "clarity": <1-10>,
  "relevance": <1-10>,
  "logic": <1-10>,
  "evidence": <1-10>,
  "persuasiveness": <1-10>,
  "rebuttal": <1-10>,
  "feedback": "<two sentences of constructive feedback>"
}`, req.Topic, req.Team, req.Argument)
}

// Score calls the model once; retries are left to the caller.
func (g *GeminiScorer) Score(ctx context.Context, req Request) (Assessment, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(buildPrompt(req), genai.RoleUser)},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"})
	if err != nil {
		return Assessment{}, fmt.Errorf("gemini generate: %w", err)
	}
	return parseVerdict(resp.Text())
}

func parseVerdict(raw string) (Assessment, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var v geminiVerdict
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &v); err != nil {
		return Assessment{}, fmt.Errorf("parse gemini verdict: %w", err)
	}
	a := Assessment{Feedback: v.Feedback}
	a.Criteria.Clarity = v.Clarity
	a.Criteria.Relevance = v.Relevance
	a.Criteria.Logic = v.Logic
	a.Criteria.Evidence = v.Evidence
	a.Criteria.Persuasiveness = v.Persuasiveness
	a.Criteria.Rebuttal = v.Rebuttal
	return a, nil
}
