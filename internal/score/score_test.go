// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/papercrawl/internal/store"
	"github.com/pdiddy/papercrawl/pkg/types"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func chatServer(t *testing.T, content string, gotReq *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if gotReq != nil {
			json.NewDecoder(r.Body).Decode(gotReq)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestOpenAIScorer(t *testing.T) {
	var req openai.ChatCompletionRequest
	ts := chatServer(t, `{"relevance_score": 8, "excitement_score": 9.0, "explanation": "Novel."}`, &req)

	sc, err := NewOpenAIScorer(types.ScoreConfig{APIKey: "test-key", BaseURL: ts.URL + "/v1"})
	require.NoError(t, err)

	r, err := sc.Score(context.Background(), types.Paper{
		ID:       "2403.00001",
		Title:    "Graph Neural Networks",
		Authors:  []string{"Alice Smith"},
		Abstract: "We study graphs.",
	})
	require.NoError(t, err)
	assert.Equal(t, Rating{RelevanceScore: 8, ExcitementScore: 9, Explanation: "Novel."}, r)

	assert.Equal(t, DefaultModel, req.Model)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, "Abstract: We study graphs.")
	assert.Contains(t, req.Messages[1].Content, "Authors: Alice Smith")
}

func TestOpenAIScorerRejectsBadResponses(t *testing.T) {
	for _, content := range []string{
		`not json`,
		`{"relevance_score": 0, "excitement_score": 5, "explanation": ""}`,
		`{"relevance_score": 5, "excitement_score": 11, "explanation": ""}`,
		`{"relevance_score": 5.5, "excitement_score": 5, "explanation": ""}`,
	} {
		t.Run(content, func(t *testing.T) {
			ts := chatServer(t, content, nil)
			sc, err := NewOpenAIScorer(types.ScoreConfig{APIKey: "k", BaseURL: ts.URL + "/v1"})
			require.NoError(t, err)
			_, err = sc.Score(context.Background(), types.Paper{ID: "x", Title: "t"})
			assert.Error(t, err)
		})
	}
}

func TestNewOpenAIScorerRequiresKey(t *testing.T) {
	_, err := NewOpenAIScorer(types.ScoreConfig{})
	assert.Error(t, err)
}

func TestParseRatingRange(t *testing.T) {
	_, err := parseRating(`{"relevance_score": 10, "excitement_score": 1}`)
	assert.NoError(t, err)

	_, err = parseRating(`{"relevance_score": 10}`)
	assert.ErrorIs(t, err, ErrInvalidScore)
}

// stubScorer rates by title and fails for titles containing "fail".
type stubScorer struct {
	calls []string
}

func (s *stubScorer) Score(_ context.Context, p types.Paper) (Rating, error) {
	s.calls = append(s.calls, p.ID)
	if strings.Contains(p.Title, "fail") {
		return Rating{}, errors.New("model unavailable")
	}
	n := len(p.Title)
	return Rating{RelevanceScore: 5, ExcitementScore: n, Explanation: p.Title}, nil
}

func seedStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "papers.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	for i, title := range []string{"abc", "please fail", "abcdefgh", "abcdefghi"} {
		p := types.Paper{
			ID:        fmt.Sprintf("2403.0000%d", i+1),
			Title:     title,
			DateSaved: time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, s.Upsert(ctx, p))
	}
	return s
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	s := seedStore(t)
	sc := &stubScorer{}
	var out bytes.Buffer

	scores, err := Run(ctx, s, sc, 3, quietLogger(), &out)
	require.NoError(t, err)

	// Most recent three: 00004, 00003, 00002 (fails).
	assert.Equal(t, []string{"2403.00004", "2403.00003", "2403.00002"}, sc.calls)
	require.Len(t, scores, 2)
	assert.Equal(t, "2403.00004", scores[0].ID)
	assert.Equal(t, 9, scores[0].ExcitementScore)

	got, err := s.Get(ctx, "2403.00003")
	require.NoError(t, err)
	require.NotNil(t, got.ExcitementScore)
	assert.Equal(t, 8, *got.ExcitementScore)

	untouched, err := s.Get(ctx, "2403.00001")
	require.NoError(t, err)
	assert.Nil(t, untouched.ExcitementScore)

	assert.Contains(t, out.String(), "failed:  2403.00002 (model unavailable)")
	assert.Contains(t, out.String(), "Batch summary: 2 scored, 1 failed (total: 3)")
}

func TestExciting(t *testing.T) {
	scores := []types.Score{
		{ID: "a", ExcitementScore: 6},
		{ID: "b", ExcitementScore: 7},
		{ID: "c", ExcitementScore: 10},
	}
	got := Exciting(scores, DefaultMinExcitement)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
	assert.Empty(t, Exciting(scores, 11))
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "final_papers.json")
	require.NoError(t, WriteJSON(path, []types.Score{{ID: "a", Title: "T", RelevanceScore: 8, ExcitementScore: 9, Explanation: "E"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "T", got[0]["title"])
	assert.Equal(t, 9.0, got[0]["excitement_score"])

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, WriteJSON(empty, nil))
	data, err = os.ReadFile(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
