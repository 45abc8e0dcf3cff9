package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reillywatson/prhealth/internal/scm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAllThreads_RetriesEmptyBatchOnce(t *testing.T) {
	prs := generatePRs(10)
	source := &fakeSource{}
	e, sleeps := newTestEngine(source)

	threads, err := e.fetchAllThreads(context.Background(), prs)
	require.NoError(t, err)

	assert.Len(t, threads, 10)
	for _, pr := range prs {
		assert.Equal(t, 2, source.threadCalls[pr.ID], "PR %d", pr.ID)
		assert.NotNil(t, threads[pr.ID])
		assert.Empty(t, threads[pr.ID])
	}
	assert.Equal(t, []time.Duration{2 * time.Second}, *sleeps)
}

func TestFetchAllThreads_SingleMemberBatchIsNotRetried(t *testing.T) {
	prs := generatePRs(11)
	source := &fakeSource{threads: map[int64][]scm.Thread{
		1: {textThread("a", baseTime)},
	}}
	e, sleeps := newTestEngine(source)

	threads, err := e.fetchAllThreads(context.Background(), prs)
	require.NoError(t, err)

	assert.Len(t, threads, 11)
	// first batch has threads, the trailing batch holds a single PR
	assert.Equal(t, 1, source.threadCalls[1])
	assert.Equal(t, 1, source.threadCalls[11])
	assert.Empty(t, *sleeps)
}

func TestFetchAllThreads_RetryOverwritesResults(t *testing.T) {
	prs := generatePRs(3)
	source := &fakeSource{}
	e, _ := newTestEngine(source)
	e.sleep = func(ctx context.Context, d time.Duration) error {
		source.mu.Lock()
		defer source.mu.Unlock()
		source.threads = map[int64][]scm.Thread{2: {textThread("a", baseTime)}}
		return nil
	}

	threads, err := e.fetchAllThreads(context.Background(), prs)
	require.NoError(t, err)

	assert.Len(t, threads[2], 1)
	assert.Empty(t, threads[1])
	assert.Empty(t, threads[3])
}

func TestFetchAllThreads_FailuresAreEmpty(t *testing.T) {
	prs := generatePRs(4)
	source := &fakeSource{
		threads: map[int64][]scm.Thread{
			1: {textThread("a", baseTime)},
			3: {textThread("b", baseTime)},
		},
		threadErrs: map[int64]error{
			2: errors.New("boom"),
			4: scm.Errorf(scm.KindAPI, "500"),
		},
	}
	e, sleeps := newTestEngine(source)

	threads, err := e.fetchAllThreads(context.Background(), prs)
	require.NoError(t, err)

	require.Len(t, threads, 4)
	assert.Len(t, threads[1], 1)
	assert.Empty(t, threads[2])
	assert.Len(t, threads[3], 1)
	assert.Empty(t, threads[4])
	assert.Empty(t, *sleeps)
}

func TestFetchAllThreads_StopsWhenBackoffCancelled(t *testing.T) {
	prs := generatePRs(5)
	source := &fakeSource{}
	e := NewEngine(source)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.fetchAllThreads(ctx, prs)
	assert.ErrorIs(t, err, context.Canceled)
}

// siblingSource fails PR 1 first, then lets the rest of the batch run and
// records whether any of them saw a cancelled context.
type siblingSource struct {
	*fakeSource
	failed    chan struct{}
	cancelled chan int64
}

func (s *siblingSource) ListThreads(ctx context.Context, pr scm.PullRequest) ([]scm.Thread, error) {
	if pr.ID == 1 {
		defer close(s.failed)
		return nil, errors.New("boom")
	}
	<-s.failed
	if ctx.Err() != nil {
		s.cancelled <- pr.ID
		return nil, ctx.Err()
	}
	return []scm.Thread{textThread("a", baseTime)}, nil
}

func TestFetchAllThreads_FailureDoesNotCancelSiblings(t *testing.T) {
	prs := generatePRs(5)
	source := &siblingSource{
		fakeSource: &fakeSource{},
		failed:     make(chan struct{}),
		cancelled:  make(chan int64, len(prs)),
	}
	e, sleeps := newTestEngine(source)

	threads, err := e.fetchAllThreads(context.Background(), prs)
	require.NoError(t, err)

	close(source.cancelled)
	for id := range source.cancelled {
		t.Errorf("PR %d saw a cancelled context", id)
	}
	assert.Empty(t, threads[1])
	for id := int64(2); id <= 5; id++ {
		assert.Len(t, threads[id], 1, "PR %d", id)
	}
	assert.Empty(t, *sleeps)
}
