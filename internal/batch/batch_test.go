package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunPreservesOrderAcrossWorkers(t *testing.T) {
	p := NewPool(4)
	jobs := make([]Job, 20)
	for i := range jobs {
		i := i
		jobs[i] = Job{
			Name: "job",
			Run: func(ctx context.Context) (interface{}, error) {
				return i, nil
			},
		}
	}

	results := p.Run(context.Background(), jobs)
	require.Len(t, results, len(jobs))
	for i, r := range results {
		require.NoError(t, r.Err)
		require.Equal(t, i, r.Value)
	}
}

func TestRunReportsPerJobErrors(t *testing.T) {
	p := NewPool(2)
	boom := require.New(t)
	jobs := []Job{
		{Name: "ok", Run: func(ctx context.Context) (interface{}, error) { return "fine", nil }},
		{Name: "bad", Run: func(ctx context.Context) (interface{}, error) { return nil, errTest }},
	}

	results := p.Run(context.Background(), jobs)
	boom.NoError(results[0].Err)
	boom.Equal("fine", results[0].Value)
	boom.Error(results[1].Err)
	boom.Equal("bad", results[1].Name)
}

func TestRunRespectsCancellation(t *testing.T) {
	p := NewPool(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jobs := []Job{
		{Name: "never-runs", Run: func(ctx context.Context) (interface{}, error) { return "unreachable", nil }},
	}
	results := p.Run(ctx, jobs)
	require.Len(t, results, 1)
	require.Error(t, results[0].Err)
}

var errTest = errorString("boom")

type errorString string

func (e errorString) Error() string { return string(e) }
