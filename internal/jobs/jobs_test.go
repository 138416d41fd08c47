// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/research-funnel/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func openStore(t *testing.T, path string, run RunFunc) *Store {
	t.Helper()
	s, err := Open(path, run, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func echoRun(_ context.Context, req types.ResearchRequest) (*types.ResearchResult, error) {
	return &types.ResearchResult{
		Query:   req.Query,
		Sources: []types.Source{types.SourceArxiv},
		Results: map[types.Source]string{types.SourceArxiv: "Paper (2024) by X\nURL: u"},
		Notes:   []string{"note"},
	}, nil
}

func TestSubmit_Success(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "jobs.db"), echoRun)
	ctx := context.Background()

	job, err := s.Submit(ctx, types.ResearchRequest{Query: "graphene", MaxResults: 5})
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, job.Status)
	assert.Len(t, job.ID, 36)
	assert.Equal(t, "graphene", job.Request.Query)

	s.Wait()

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
	assert.True(t, got.Status.Done())
	assert.Empty(t, got.Error)
	assert.Equal(t, 5, got.Request.MaxResults)
	require.NotNil(t, got.Result)
	assert.Equal(t, "graphene", got.Result.Query)
	assert.Equal(t, []string{"note"}, got.Result.Notes)
	assert.Equal(t, "Paper (2024) by X\nURL: u", got.Result.Results[types.SourceArxiv])
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestSubmit_Failure(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "jobs.db"), func(context.Context, types.ResearchRequest) (*types.ResearchResult, error) {
		return nil, errors.New("no valid sources: scholar")
	})

	job, err := s.Submit(context.Background(), types.ResearchRequest{Query: "q"})
	require.NoError(t, err)
	s.Wait()

	got, err := s.Get(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFailure, got.Status)
	assert.Equal(t, "no valid sources: scholar", got.Error)
	assert.Nil(t, got.Result)
}

func TestSubmit_Lifecycle(t *testing.T) {
	release := make(chan struct{})
	s := openStore(t, filepath.Join(t.TempDir(), "jobs.db"), func(ctx context.Context, req types.ResearchRequest) (*types.ResearchResult, error) {
		<-release
		return echoRun(ctx, req)
	})
	ctx := context.Background()

	job, err := s.Submit(ctx, types.ResearchRequest{Query: "q"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		got, err := s.Get(ctx, job.ID)
		return err == nil && got.Status == StatusStarted
	}, 5*time.Second, 10*time.Millisecond)

	close(release)
	s.Wait()

	got, err := s.Get(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, got.Status)
}

func TestClose_CancelsRunningJobs(t *testing.T) {
	started := make(chan struct{})
	s, err := Open(filepath.Join(t.TempDir(), "jobs.db"), func(ctx context.Context, _ types.ResearchRequest) (*types.ResearchResult, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}, nil)
	require.NoError(t, err)

	_, err = s.Submit(context.Background(), types.ResearchRequest{Query: "q"})
	require.NoError(t, err)
	<-started

	require.NoError(t, s.Close())
}

func TestGet_NotFound(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "jobs.db"), echoRun)

	_, err := s.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpen_FailsUnfinishedJobs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "jobs.db")
	s, err := Open(path, echoRun, nil)
	require.NoError(t, err)

	// Leave one job started by writing it directly, as a crashed process would.
	_, err = s.db.Exec(
		`INSERT INTO jobs (id, status, request, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		"stale", StatusStarted, `{"query":"old"}`, s.stamp(), s.stamp(),
	)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s = openStore(t, path, echoRun)
	got, err := s.Get(context.Background(), "stale")
	require.NoError(t, err)
	assert.Equal(t, StatusFailure, got.Status)
	assert.Equal(t, interruptedError, got.Error)
	assert.Equal(t, "old", got.Request.Query)
}

func TestList(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "jobs.db"), echoRun)
	var mu sync.Mutex
	tick := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick = tick.Add(time.Second)
		return tick
	}
	ctx := context.Background()

	var ids []string
	for _, q := range []string{"first", "second", "third"} {
		job, err := s.Submit(ctx, types.ResearchRequest{Query: q})
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}
	s.Wait()

	jobs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, ids[2], jobs[0].ID)
	assert.Equal(t, ids[1], jobs[1].ID)
}

func TestOpen_NilRun(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "jobs.db"), nil, nil)
	assert.Error(t, err)
}
