package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/bookclub/internal/config"
	"github.com/kailas-cloud/bookclub/internal/domain"
	"github.com/kailas-cloud/bookclub/internal/domain/answer"
	"github.com/kailas-cloud/bookclub/internal/domain/document"
	"github.com/kailas-cloud/bookclub/internal/domain/model"
	"github.com/kailas-cloud/bookclub/internal/usecase/cost"
	"github.com/kailas-cloud/bookclub/internal/usecase/generate"
	"github.com/kailas-cloud/bookclub/internal/version"
)

type nopBackend struct{}

func (nopBackend) Generate(context.Context, string, string) (string, domain.TokenUsage, error) {
	return "", domain.TokenUsage{}, nil
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "ask", "search", "ingest", "authors", "version"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("env"))
}

func TestVersionCmd(t *testing.T) {
	orig := version.Version
	version.Version = "1.2.3"
	defer func() { version.Version = orig }()

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "bookclub 1.2.3")
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	_, err := execute(t, "ask")
	assert.Error(t, err)
}

func TestSearchCmd_RejectsBadModeBeforeLoadingConfig(t *testing.T) {
	_, err := execute(t, "search", "--env", "does-not-exist", "--mode", "fuzzy", "money")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestNewApp_MissingConfig(t *testing.T) {
	_, err := newApp(context.Background(), "does-not-exist", appOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestAskOptions_Request(t *testing.T) {
	opts := &askOptions{category: "sm", author: "Carl Sagan", model: "openai/gpt-4o", mode: "hybrid", length: "L"}

	req := opts.request("Why read Cosmos?")

	assert.Equal(t, "Why read Cosmos?", req.Question)
	assert.Equal(t, "sm", req.Category)
	assert.Equal(t, "Carl Sagan", req.Author)
	assert.Equal(t, "openai/gpt-4o", req.Model)
	assert.Equal(t, "hybrid", req.Mode)
	assert.Equal(t, "L", req.Length)
}

func TestServableModels(t *testing.T) {
	gen, err := generate.New(map[model.Provider]generate.Backend{model.OpenAI: nopBackend{}})
	require.NoError(t, err)

	got := servableModels(gen, []string{"ollama/phi3.5", "openai/gpt-4o", "bogus", "openai/gpt-4o-mini"})

	assert.Equal(t, []string{"openai/gpt-4o", "openai/gpt-4o-mini"}, got)
}

func TestResultCapFor(t *testing.T) {
	sc := config.SearchConfig{ResultCap: 7, OfflineResultCap: 5}

	assert.Equal(t, 7, resultCapFor(sc, appOptions{}))
	assert.Equal(t, 5, resultCapFor(sc, appOptions{offline: true}))
	assert.Equal(t, 2, resultCapFor(sc, appOptions{offline: true, resultCap: 2}))
}

func TestSearchCmd_LimitDefaultsToConfig(t *testing.T) {
	cmd := newSearchCmd(&rootOptions{})

	f := cmd.Flags().Lookup("limit")
	require.NotNil(t, f)
	assert.Equal(t, "0", f.DefValue)
}

func TestUnpricedModels(t *testing.T) {
	pricer := cost.New(map[string]cost.Price{"openai/gpt-4.1": {Prompt: 0.002, Completion: 0.008}})

	got := unpricedModels(pricer, []string{"ollama/phi3.5", "openai/gpt-4o", "openai/gpt-4.1", "openai/o1-mini"})

	assert.Equal(t, []string{"openai/o1-mini"}, got)
}

func TestPrintHits(t *testing.T) {
	docs := []document.Document{
		document.Reconstruct("r1", "Ray Dalio", "Principles", "Life   and\nwork principles.", "bm", nil),
	}

	var buf bytes.Buffer
	printHits(&buf, toHitViews(docs))

	out := buf.String()
	assert.Contains(t, out, "[1] Principles by Ray Dalio (r1)")
	assert.Contains(t, out, "Life and work principles.")

	buf.Reset()
	printHits(&buf, nil)
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestToHitViews_CategoryDisplayName(t *testing.T) {
	docs := []document.Document{document.Reconstruct("r1", "a", "t", "x", "hfd", nil)}

	views := toHitViews(docs)

	require.Len(t, views, 1)
	assert.Equal(t, "Health, Fitness & Dieting", views[0].Category)
}

func TestPrintAnswer(t *testing.T) {
	rec := answer.Record{
		Answer:       "Read Principles.",
		ResponseTime: 2 * time.Second,
		Verdict:      answer.Verdict{Label: answer.PartlyRelevant, Explanation: "close", Outcome: answer.HeuristicMatch},
		ModelUsed:    "openai/gpt-4o",
		Usage:        domain.NewTokenUsage(10, 5),
		Cost:         0.000125,
	}

	var buf bytes.Buffer
	printAnswer(&buf, rec)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Read Principles.\n"))
	assert.Contains(t, out, "relevance: PARTLY_RELEVANT (heuristic)")
	assert.Contains(t, out, "time:      2.00s")
	assert.Contains(t, out, "tokens:    15 (prompt 10, completion 5)")
	assert.Contains(t, out, "cost:      $0.000125")
}

func TestWriteJSON_Indented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, hitView{ID: "r1"}))

	assert.Contains(t, buf.String(), "\n  \"id\": \"r1\"")
	var v hitView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v))
	assert.Equal(t, "r1", v.ID)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b", snippet(" a \n b ", 10))
	assert.Equal(t, "абв…", snippet("абвгд", 3))
}
