package replay

import (
	"container/list"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/unrolled/internal/config"
	"github.com/dshills/unrolled/internal/engine/alloc"
	"github.com/dshills/unrolled/internal/engine/unrolled"
	"github.com/dshills/unrolled/internal/logging"
)

// Report summarizes one scenario run.
type Report struct {
	RunID    string
	Scenario string
	// Steps is the number of steps executed.
	Steps int
	// Faults is the number of injected allocation failures that fired.
	Faults     int
	Mismatches []*MismatchError
	Elapsed    time.Duration
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	return len(r.Mismatches) == 0
}

// Runner executes scenarios.
type Runner struct {
	list   config.ListConfig
	checks config.ReplayConfig
	log    *zap.SugaredLogger
}

// NewRunner creates a runner using the list and replay settings of cfg.
// A nil cfg selects config.Default(); a nil log discards output.
func NewRunner(cfg *config.Config, log *zap.SugaredLogger) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Runner{list: cfg.List, checks: cfg.Replay, log: log}
}

// RunFile loads and runs the scenario at path.
func (r *Runner) RunFile(ctx context.Context, path string) (*Report, error) {
	sc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, sc)
}

// Run executes every step of sc. Failed checks are collected in the
// report; an error is returned only when a step cannot be executed or ctx
// is done.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	start := time.Now()
	rep := &Report{RunID: uuid.NewString(), Scenario: sc.Name}
	log := r.log.With("run", rep.RunID, "scenario", sc.Name)

	st, err := r.newState(sc, log)
	if err != nil {
		return nil, err
	}
	log.Infow("scenario started",
		"steps", len(sc.Steps),
		"capacity", st.list.NodeCapacity(),
		"allocator", st.allocName,
	)

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			rep.Elapsed = time.Since(start)
			return rep, err
		}

		st.step, st.op = i, step.Op
		if err := st.exec(step); err != nil {
			rep.Elapsed = time.Since(start)
			log.Errorw("step failed", "step", i, "op", step.Op, "error", err)
			return rep, &StepError{Scenario: sc.Name, Index: i, Op: step.Op, Err: err}
		}
		rep.Steps++

		if step.Op.mutates() {
			st.verify(r.checks)
		}
		if len(st.mismatches) > 0 {
			for _, m := range st.mismatches {
				log.Warnw("mismatch", "step", m.Step, "op", m.Op, "check", m.Check, "want", m.Want, "got", m.Got)
			}
			rep.Mismatches = append(rep.Mismatches, st.mismatches...)
			st.mismatches = st.mismatches[:0]
			if r.checks.StopOnMismatch {
				break
			}
		}
	}

	st.release()
	rep.Mismatches = append(rep.Mismatches, st.mismatches...)
	rep.Faults = st.faults
	rep.Elapsed = time.Since(start)

	log.Infow("scenario finished",
		"steps", rep.Steps,
		"faults", rep.Faults,
		"mismatches", len(rep.Mismatches),
		"elapsed", rep.Elapsed,
	)
	return rep, nil
}

// state is the per-run pair of containers and the allocators under test.
type state struct {
	list      *unrolled.List[int64]
	ref       *list.List
	counting  *alloc.Counting[int64]
	faulty    *alloc.Faulty[int64]
	allocName string
	log       *zap.SugaredLogger

	step       int
	op         Op
	pending    *Step
	faults     int
	mismatches []*MismatchError
}

func (r *Runner) newState(sc *Scenario, log *zap.SugaredLogger) (*state, error) {
	capacity := r.list.NodeCapacity
	if sc.Capacity != 0 {
		capacity = sc.Capacity
	}
	if err := unrolled.CheckCapacity(capacity); err != nil {
		return nil, fmt.Errorf("scenario %s: %w: %w", sc.Name, ErrBadStep, err)
	}
	name := r.list.Allocator
	if sc.Allocator != "" {
		name = sc.Allocator
	}

	base, err := alloc.ByName[int64](name)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	counting := alloc.NewCounting(base)
	faulty := alloc.NewFaulty[int64](counting)

	cfg := unrolled.Config[int64]{NodeCapacity: capacity, NodeAllocator: faulty}
	l, err := unrolled.NewWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	return &state{
		list:      l,
		ref:       list.New(),
		counting:  counting,
		faulty:    faulty,
		allocName: name,
		log:       log,
	}, nil
}

func (s *state) mismatch(check string, want, got any) {
	s.mismatches = append(s.mismatches, &MismatchError{Step: s.step, Op: s.op, Check: check, Want: want, Got: got})
}

// verify runs the enabled post-step checks.
func (s *state) verify(checks config.ReplayConfig) {
	if checks.Reference {
		want := refSlice(s.ref)
		if got := s.list.Slice(); !slices.Equal(want, got) {
			s.mismatch("reference", summarize(want), summarize(got))
		}
		if s.list.Len() != s.ref.Len() {
			s.mismatch("size", s.ref.Len(), s.list.Len())
		}
	}
	if !checks.Validate {
		return
	}

	if err := s.list.Validate(); err != nil {
		s.mismatch("invariants", nil, err)
	}
	forward := slices.Collect(s.list.All())
	backward := slices.Collect(s.list.Backward())
	slices.Reverse(backward)
	if !slices.Equal(forward, backward) {
		s.mismatch("mirror", summarize(forward), summarize(backward))
	}
	if live := s.counting.Live(); live != int64(s.list.NodeCount()) {
		s.mismatch("live nodes", s.list.NodeCount(), live)
	}
	if live := s.counting.LiveElements(); live != int64(s.list.Len()) {
		s.mismatch("live elements", s.list.Len(), live)
	}
}

// release clears the list and checks that all storage came back.
func (s *state) release() {
	s.list.Clear()
	if st := s.counting.Stats(); st.Live() != 0 || st.LiveElements() != 0 {
		s.mismatch("release", "no live storage", fmt.Sprintf("%d nodes, %d elements", st.Live(), st.LiveElements()))
	}
}

func refSlice(l *list.List) []int64 {
	out := make([]int64, 0, l.Len())
	for e := l.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(int64))
	}
	return out
}

// refAt returns the reference element at i, or nil for i == Len().
func refAt(l *list.List, i int) *list.Element {
	if i >= l.Len() {
		return nil
	}
	if i < l.Len()/2 {
		e := l.Front()
		for ; i > 0; i-- {
			e = e.Next()
		}
		return e
	}
	e := l.Back()
	for j := l.Len() - 1; j > i; j-- {
		e = e.Prev()
	}
	return e
}

// summarize keeps mismatch reports readable for long sequences.
func summarize(s []int64) string {
	const limit = 16
	if len(s) <= limit {
		return fmt.Sprint(s)
	}
	return fmt.Sprintf("%v ... (%d elements)", s[:limit], len(s))
}
