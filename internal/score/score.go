// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package score rates stored papers for relevance and excitement with a
// chat model and writes the ratings back to the record store.
package score

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/papercrawl/internal/store"
	"github.com/pdiddy/papercrawl/pkg/types"
)

const (
	DefaultModel         = openai.GPT4oMini
	DefaultTopN          = 30
	DefaultMinExcitement = 7
	DefaultTemperature   = 0.7
)

// ErrInvalidScore is returned for responses outside the 1-10 scale.
var ErrInvalidScore = errors.New("score out of range")

// Rating is one model judgement.
type Rating struct {
	RelevanceScore  int
	ExcitementScore int
	Explanation     string
}

// Scorer rates a single paper. Implementations must be safe to call
// repeatedly; Run calls them sequentially.
type Scorer interface {
	Score(ctx context.Context, p types.Paper) (Rating, error)
}

// OpenAIScorer asks an OpenAI-compatible chat endpoint for a JSON rating.
type OpenAIScorer struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewOpenAIScorer builds a scorer from cfg. An API key is required.
func NewOpenAIScorer(cfg types.ScoreConfig) (*OpenAIScorer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("scoring requires an OpenAI API key")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	temp := cfg.Temperature
	if temp == 0 {
		temp = DefaultTemperature
	}
	return &OpenAIScorer{
		client:      openai.NewClientWithConfig(oc),
		model:       model,
		temperature: temp,
	}, nil
}

// modelRating is the JSON object the model is asked for. Scores decode as
// float64 so "8.0" is accepted and "8.5" rejected.
type modelRating struct {
	RelevanceScore  float64 `json:"relevance_score"`
	ExcitementScore float64 `json:"excitement_score"`
	Explanation     string  `json:"explanation"`
}

// Score implements Scorer.
func (s *OpenAIScorer) Score(ctx context.Context, p types.Paper) (Rating, error) {
	prompt, err := renderPrompt(p)
	if err != nil {
		return Rating{}, fmt.Errorf("rendering prompt: %w", err)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: s.temperature,
	})
	if err != nil {
		return Rating{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Rating{}, fmt.Errorf("chat completion returned no choices")
	}
	return parseRating(resp.Choices[0].Message.Content)
}

func parseRating(content string) (Rating, error) {
	var mr modelRating
	if err := json.Unmarshal([]byte(content), &mr); err != nil {
		return Rating{}, fmt.Errorf("parsing model response: %w", err)
	}
	rel, err := toScale(mr.RelevanceScore)
	if err != nil {
		return Rating{}, fmt.Errorf("relevance_score: %w", err)
	}
	exc, err := toScale(mr.ExcitementScore)
	if err != nil {
		return Rating{}, fmt.Errorf("excitement_score: %w", err)
	}
	return Rating{RelevanceScore: rel, ExcitementScore: exc, Explanation: mr.Explanation}, nil
}

func toScale(v float64) (int, error) {
	if v != math.Trunc(v) || v < 1 || v > 10 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidScore, v)
	}
	return int(v), nil
}

// Run scores the topN most recently saved papers and records each rating
// with SetScores. A paper the scorer fails on is logged and left out;
// store errors end the run.
func Run(ctx context.Context, s store.Store, sc Scorer, topN int, log logrus.FieldLogger, w io.Writer) ([]types.Score, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}
	papers, err := s.Recent(ctx, topN)
	if err != nil {
		return nil, fmt.Errorf("reading recent papers: %w", err)
	}
	log.WithField("papers", len(papers)).Info("scoring papers")

	var scores []types.Score
	var failed int
	for i, p := range papers {
		plog := log.WithField("id", p.ID)
		r, err := sc.Score(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return scores, ctx.Err()
			}
			plog.WithError(err).Warn("scoring failed")
			fmt.Fprintf(w, "failed:  %s (%v)\n", p.ID, err)
			failed++
			continue
		}

		if err := s.SetScores(ctx, p.ID, r.RelevanceScore, r.ExcitementScore); err != nil {
			return scores, fmt.Errorf("recording scores for %s: %w", p.ID, err)
		}

		plog.WithFields(logrus.Fields{
			"relevance":  r.RelevanceScore,
			"excitement": r.ExcitementScore,
		}).Info("scored paper")
		fmt.Fprintf(w, "scored:  %s [%d/%d] relevance %d, excitement %d\n",
			p.ID, i+1, len(papers), r.RelevanceScore, r.ExcitementScore)

		scores = append(scores, types.Score{
			ID:              p.ID,
			Title:           p.Title,
			RelevanceScore:  r.RelevanceScore,
			ExcitementScore: r.ExcitementScore,
			Explanation:     r.Explanation,
		})
	}

	fmt.Fprintf(w, "\nBatch summary: %d scored, %d failed (total: %d)\n", len(scores), failed, len(papers))
	return scores, nil
}

// Exciting returns the scores whose excitement is at least threshold, in order.
func Exciting(scores []types.Score, threshold int) []types.Score {
	var out []types.Score
	for _, s := range scores {
		if s.ExcitementScore >= threshold {
			out = append(out, s)
		}
	}
	return out
}

// WriteJSON writes scores to path as an indented JSON array.
func WriteJSON(path string, scores []types.Score) error {
	if scores == nil {
		scores = []types.Score{}
	}
	data, err := json.MarshalIndent(scores, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling scores: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
