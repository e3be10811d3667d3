package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/model"
)

func writeICP(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestProcessBatch_AllSucceed(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeICP(t, dir, "a.json", testICPJSON),
		writeICP(t, dir, "b.yaml", "customer_industry: dairy\nserviceable_geography:\n  scope: global\n"),
	}

	var mu sync.Mutex
	var industries []string
	results, err := processBatch(context.Background(), paths, 2, func(_ context.Context, profile model.ICP) (*model.Run, error) {
		mu.Lock()
		industries = append(industries, profile.CustomerIndustry)
		mu.Unlock()
		return &model.Run{
			ID:     "run-" + profile.CustomerIndustry,
			Status: model.RunStatusComplete,
			Result: &model.RunResult{Prospects: []model.Prospect{{Domain: "acme.com"}}},
		}, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.ElementsMatch(t, []string{"food processing, packaging", "dairy"}, industries)
	assert.Equal(t, paths[0], results[0].ICP)
	assert.Equal(t, "run-food processing, packaging", results[0].RunID)
	assert.Equal(t, model.RunStatusComplete, results[0].Status)
	assert.Equal(t, 1, results[0].Prospects)
	assert.Equal(t, "run-dairy", results[1].RunID)
	assert.Empty(t, results[1].Error)
}

func TestProcessBatch_FailuresDoNotAbort(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "missing.yaml"),
		writeICP(t, dir, "ok.json", testICPJSON),
		writeICP(t, dir, "broken.json", testICPJSON),
	}

	results, err := processBatch(context.Background(), paths, 1, func(context.Context, model.ICP) (*model.Run, error) {
		return nil, errors.New("store down")
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Contains(t, results[0].Error, "icp: read")
	assert.Equal(t, "store down", results[1].Error)
	assert.Equal(t, "store down", results[2].Error)
}

func TestProcessBatch_PartialRunOnError(t *testing.T) {
	dir := t.TempDir()
	paths := []string{writeICP(t, dir, "a.json", testICPJSON)}

	results, err := processBatch(context.Background(), paths, 1, func(context.Context, model.ICP) (*model.Run, error) {
		return &model.Run{ID: "run-1", Status: model.RunStatusFailed}, errors.New("save prospects")
	})
	require.NoError(t, err)
	assert.Equal(t, "run-1", results[0].RunID)
	assert.Equal(t, model.RunStatusFailed, results[0].Status)
	assert.Equal(t, "save prospects", results[0].Error)
}

func TestProcessBatch_RespectsConcurrency(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.json", "b.json", "c.json", "d.json"} {
		paths = append(paths, writeICP(t, dir, name, testICPJSON))
	}

	var active, peak atomic.Int32
	_, err := processBatch(context.Background(), paths, 2, func(context.Context, model.ICP) (*model.Run, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		active.Add(-1)
		return &model.Run{ID: "x", Status: model.RunStatusComplete}, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestProcessBatch_EndToEndWithService(t *testing.T) {
	st := newTestStore(t)
	svc := newTestService(st)
	paths := []string{writeICP(t, t.TempDir(), "a.json", testICPJSON)}

	results, err := processBatch(context.Background(), paths, 1, svc.Run)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.RunStatusComplete, results[0].Status)

	run, err := st.GetRun(context.Background(), results[0].RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
}

func TestWriteBatchSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeBatchSummary(&buf, []batchResult{
		{ICP: "a.yaml", RunID: "r1", Status: model.RunStatusComplete, Prospects: 4},
		{ICP: "b.yaml", Error: "icp: read b.yaml"},
	}))

	var out []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "r1", out[0]["run_id"])
	assert.EqualValues(t, 4, out[0]["prospects"])
	assert.NotContains(t, out[0], "error")
	assert.Equal(t, "icp: read b.yaml", out[1]["error"])
	assert.NotContains(t, out[1], "run_id")
}
