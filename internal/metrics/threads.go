package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/reillywatson/prhealth/internal/scm"
	log "github.com/sirupsen/logrus"
)

const (
	threadBatchSize = 10
	// emptyBatchBackoff is how long to wait before retrying a batch in which
	// every fetch came back empty, the usual symptom of rate limiting.
	emptyBatchBackoff = 2 * time.Second
)

// threadFetch is the outcome of fetching one PR's threads. failed is only
// used for logging; callers see an empty list either way.
type threadFetch struct {
	prID    int64
	threads []scm.Thread
	failed  bool
}

// fetchAllThreads fetches threads for every PR in batches of threadBatchSize.
// Members of a batch run concurrently and batches run one after another. The
// result has exactly one entry per PR.
func (e *Engine) fetchAllThreads(ctx context.Context, prs []scm.PullRequest) (map[int64][]scm.Thread, error) {
	threadMap := make(map[int64][]scm.Thread, len(prs))

	for start := 0; start < len(prs); start += threadBatchSize {
		end := min(start+threadBatchSize, len(prs))
		batch := prs[start:end]

		results := e.fetchThreadsBatch(ctx, batch)
		if allEmpty(results) && len(batch) > 1 {
			logger.WithField("batch", start/threadBatchSize).Debug("Every thread fetch in batch was empty, retrying once")
			if err := e.sleep(ctx, emptyBatchBackoff); err != nil {
				return nil, err
			}
			results = e.fetchThreadsBatch(ctx, batch)
		}

		failed := 0
		for _, r := range results {
			threadMap[r.prID] = r.threads
			if r.failed {
				failed++
			}
		}
		if failed > 0 {
			logger.Warnf("%d of %d thread fetches failed in batch %d", failed, len(batch), start/threadBatchSize)
		}
	}

	return threadMap, nil
}

func (e *Engine) fetchThreadsBatch(ctx context.Context, batch []scm.PullRequest) []threadFetch {
	results := make([]threadFetch, len(batch))
	var wg sync.WaitGroup

	for i, pr := range batch {
		i, pr := i, pr
		wg.Add(1)
		go func() {
			defer wg.Done()
			threads, err := e.source.ListThreads(ctx, pr)
			if err != nil {
				logger.WithFields(log.Fields{
					"pr":   pr.ID,
					"repo": pr.Repository.Name,
				}).Warnf("Failed to fetch threads, treating as empty: %v", err)
				results[i] = threadFetch{prID: pr.ID, threads: []scm.Thread{}, failed: true}
				return
			}
			if threads == nil {
				threads = []scm.Thread{}
			}
			results[i] = threadFetch{prID: pr.ID, threads: threads}
		}()
	}
	wg.Wait()

	return results
}

func allEmpty(results []threadFetch) bool {
	for _, r := range results {
		if len(r.threads) > 0 {
			return false
		}
	}
	return true
}
