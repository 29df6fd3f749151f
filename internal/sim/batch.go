package sim

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tower/internal/game/character"
	"github.com/cory-johannsen/tower/internal/game/ruleset"
	"github.com/cory-johannsen/tower/internal/game/session"
	"github.com/cory-johannsen/tower/internal/game/tower"
)

// BatchOptions configures Batch.
type BatchOptions struct {
	Runs    int
	Workers int
	// Class is a class name, or "all" to rotate through every class.
	Class string
	Options
}

// ClassSummary aggregates the runs of one class.
type ClassSummary struct {
	Runs     int
	Complete int
	Defeat   int
	TimedOut int
	// Floors is the sum of the floors reached, for averaging.
	Floors int
}

// WinRate is the fraction of runs that reached the top of the tower.
func (c ClassSummary) WinRate() float64 {
	if c.Runs == 0 {
		return 0
	}
	return float64(c.Complete) / float64(c.Runs)
}

// AvgFloor is the mean floor reached.
func (c ClassSummary) AvgFloor() float64 {
	if c.Runs == 0 {
		return 0
	}
	return float64(c.Floors) / float64(c.Runs)
}

// Summary aggregates a batch of reports.
type Summary struct {
	Total   ClassSummary
	ByClass map[character.Class]*ClassSummary
}

// Add folds r into the summary.
func (s *Summary) Add(r Report) {
	if s.ByClass == nil {
		s.ByClass = make(map[character.Class]*ClassSummary)
	}
	cs, ok := s.ByClass[r.Class]
	if !ok {
		cs = &ClassSummary{}
		s.ByClass[r.Class] = cs
	}
	for _, c := range []*ClassSummary{&s.Total, cs} {
		c.Runs++
		c.Floors += r.Floor
		switch {
		case r.TimedOut:
			c.TimedOut++
		case r.Stage == tower.StageComplete:
			c.Complete++
		case r.Stage == tower.StageDefeat:
			c.Defeat++
		}
	}
}

// String renders one line per class, sorted by class name, then a total line.
func (s Summary) String() string {
	classes := make([]character.Class, 0, len(s.ByClass))
	for c := range s.ByClass {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].String() < classes[j].String() })

	var b strings.Builder
	line := func(name string, c ClassSummary) {
		fmt.Fprintf(&b, "%-8s runs=%-5d complete=%-5d defeat=%-5d timeout=%-3d win=%5.1f%% avg_floor=%.2f\n",
			name, c.Runs, c.Complete, c.Defeat, c.TimedOut, 100*c.WinRate(), c.AvgFloor())
	}
	for _, c := range classes {
		line(c.String(), *s.ByClass[c])
	}
	line("total", s.Total)
	return b.String()
}

// Classes resolves a class selector: "all" yields every class in order.
func Classes(selector string) ([]character.Class, error) {
	if strings.EqualFold(selector, "all") {
		return character.Classes(), nil
	}
	c, err := character.ParseClass(selector)
	if err != nil {
		return nil, err
	}
	return []character.Class{c}, nil
}

// Batch plays opts.Runs sessions across opts.Workers goroutines. Run i plays
// the i-th class of the selector, cycling. Each session is removed from mgr
// once its report is in.
//
// Postcondition: the summary holds every run that finished; the error joins
// every run that failed.
func Batch(ctx context.Context, mgr *session.Manager, rules *ruleset.Ruleset, opts BatchOptions) (Summary, error) {
	classes, err := Classes(opts.Class)
	if err != nil {
		return Summary{}, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	jobs := make(chan int)
	var (
		mu   sync.Mutex
		sum  Summary
		errs []error
		wg   sync.WaitGroup
	)
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rep, err := playOne(ctx, mgr, rules, i, classes[i%len(classes)], opts.Options)
				mu.Lock()
				if err != nil {
					errs = append(errs, fmt.Errorf("run %d: %w", i, err))
				} else {
					sum.Add(rep)
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for i := 0; i < opts.Runs; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			mu.Lock()
			errs = append(errs, ctx.Err())
			mu.Unlock()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	logger.Info("batch finished",
		zap.Int("runs", sum.Total.Runs),
		zap.Int("complete", sum.Total.Complete),
		zap.Int("defeat", sum.Total.Defeat),
		zap.Int("timed_out", sum.Total.TimedOut),
		zap.Int("failed", len(errs)),
	)
	return sum, errors.Join(errs...)
}

func playOne(ctx context.Context, mgr *session.Manager, rules *ruleset.Ruleset, i int, class character.Class, opts Options) (Report, error) {
	s, err := mgr.Create(fmt.Sprintf("Hero %d", i+1), class)
	if err != nil {
		return Report{}, err
	}
	defer func() {
		_ = mgr.Remove(s.ID)
	}()
	rep, err := Run(ctx, s, NewAutopilot(rules), opts)
	if err != nil {
		return Report{}, err
	}
	if opts.Logger != nil {
		opts.Logger.Debug("run finished",
			zap.String("session_id", rep.SessionID),
			zap.Stringer("class", rep.Class),
			zap.Stringer("stage", rep.Stage),
			zap.Int("floor", rep.Floor),
			zap.Int("ticks", rep.Ticks),
			zap.Int("events", rep.EventTotal()),
		)
	}
	return rep, nil
}
