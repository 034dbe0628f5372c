package request

import (
	"context"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"deck-recommender/internal/utils"
	"deck-recommender/pkg/masterdata"
	"deck-recommender/pkg/storage"
)

// Result is the outcome of one batch job.
type Result struct {
	Name string
	Run  *storage.Run
	Err  error
}

// ExecuteAll runs every request over at most workers goroutines, or
// GOMAXPROCS when workers < 1. Results keep the order of reqs. A failing job
// does not stop the others; jobs not started before ctx is done report
// ctx.Err().
func ExecuteAll(ctx context.Context, t *masterdata.Tables, user *masterdata.User, reqs []Request, workers int) []Result {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(reqs))
	for i := range reqs {
		results[i].Name = reqs[i].Label(i)
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range reqs {
		g.Go(func() error {
			res := &results[i]
			if err := ctx.Err(); err != nil {
				res.Err = err
				return nil
			}
			res.Run, res.Err = Execute(ctx, t, user, &reqs[i])

			entry := utils.Phase("batch").WithFields(logrus.Fields{"job": res.Name, "ms": res.Run.DurationMs})
			if res.Err != nil {
				entry.WithError(res.Err).Warn("job failed")
			} else {
				entry.Debugf("job done, decks=%d", len(res.Run.Decks))
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}
