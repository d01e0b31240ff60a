package replay

import (
	"container/list"
	"errors"
	"fmt"
	"slices"

	"github.com/dshills/unrolled/internal/codec"
	"github.com/dshills/unrolled/internal/engine/alloc"
	"github.com/dshills/unrolled/internal/engine/unrolled"
)

// Fault kinds accepted by fail_next.
const (
	FailAcquire   = "acquire"
	FailConstruct = "construct"
)

func badStep(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadStep, fmt.Sprintf(format, args...))
}

// exec applies one step to both containers.
func (s *state) exec(step Step) error {
	if step.Op.mutates() && s.pending != nil {
		s.arm(*s.pending)
		s.pending = nil
		defer s.disarm()
	}

	switch step.Op {
	case OpPushBack:
		return s.push(step, s.list.PushBack, func(v int64) { s.ref.PushBack(v) })
	case OpPushFront:
		return s.push(step, s.list.PushFront, func(v int64) { s.ref.PushFront(v) })
	case OpPopBack:
		return s.pop(max(step.Times, 1), true)
	case OpPopFront:
		return s.pop(max(step.Times, 1), false)
	case OpAlternatePop:
		return s.alternatePop(step.Times)
	case OpInsert:
		return s.insert(step)
	case OpErase:
		return s.erase(step.At)
	case OpEraseRange:
		return s.eraseRange(step.From, step.To)
	case OpClear:
		s.list.Clear()
		s.ref.Init()
		return nil
	case OpExpect:
		return s.expect(step)
	case OpFailNext:
		if step.Fail != FailAcquire && step.Fail != FailConstruct {
			return badStep("fail must be %q or %q, got %q", FailAcquire, FailConstruct, step.Fail)
		}
		if step.After < 0 {
			return badStep("after must not be negative")
		}
		s.pending = &step
		return nil
	case OpSnapshot:
		return s.snapshot(step.Format)
	default:
		return ErrUnknownOp
	}
}

func (s *state) arm(f Step) {
	if f.Fail == FailAcquire {
		s.faulty.FailAcquireAfter(f.After)
	} else {
		s.faulty.FailConstructAfter(f.After)
	}
	s.log.Debugw("fault armed", "step", s.step, "fail", f.Fail, "after", f.After)
}

func (s *state) disarm() {
	if s.faulty.Armed() {
		s.log.Debugw("armed fault did not fire", "step", s.step)
	}
	s.faulty.Disarm()
}

// mutate runs one list operation and mirrors it on the reference when it
// succeeds. When an armed fault fires, the list must be unchanged and
// fired is true; any other failure is an error.
func (s *state) mutate(apply func() error, mirror func()) (fired bool, err error) {
	armed := s.faulty.Armed()
	var before []int64
	if armed {
		before = s.list.Slice()
	}

	if err := apply(); err != nil {
		injected := errors.Is(err, alloc.ErrOutOfMemory) || errors.Is(err, alloc.ErrConstruct)
		if !armed || !injected {
			return false, fmt.Errorf("%w: %v", ErrUnexpectedFailure, err)
		}
		s.faults++
		s.log.Debugw("fault fired", "step", s.step, "error", err)
		if after := s.list.Slice(); !slices.Equal(before, after) {
			s.mismatch("unchanged after failure", summarize(before), summarize(after))
		}
		return true, nil
	}
	mirror()
	return false, nil
}

func (s *state) push(step Step, apply func(int64) error, mirror func(int64)) error {
	values := step.pushValues()
	if len(values) == 0 {
		return badStep("no values")
	}
	for _, v := range values {
		fired, err := s.mutate(func() error { return apply(v) }, func() { mirror(v) })
		if err != nil || fired {
			return err
		}
	}
	return nil
}

func (s *state) pop(times int, back bool) error {
	for range times {
		if s.list.Empty() {
			return badStep("pop on empty list")
		}
		if back {
			s.list.PopBack()
			s.ref.Remove(s.ref.Back())
		} else {
			s.list.PopFront()
			s.ref.Remove(s.ref.Front())
		}
	}
	return nil
}

// alternatePop pops from the back and the front in turn, times pops in
// total, or until the list is empty when times is zero.
func (s *state) alternatePop(times int) error {
	if times == 0 {
		times = s.list.Len()
	}
	for i := range times {
		if err := s.pop(1, i%2 == 0); err != nil {
			return err
		}
	}
	return nil
}

func (s *state) insert(step Step) error {
	values := step.pushValues()
	if step.At < 0 || step.At > s.list.Len() {
		return badStep("insert position %d out of range [0, %d]", step.At, s.list.Len())
	}

	if step.Count != nil {
		if len(values) != 1 {
			return badStep("insert with count needs exactly one value")
		}
		v, n := values[0], *step.Count
		if n < 0 {
			return badStep("negative count %d", n)
		}
		var it unrolled.Iterator[int64]
		mark := refAt(s.ref, step.At)
		fired, err := s.mutate(
			func() (err error) {
				it, err = s.list.InsertN(s.list.At(step.At), n, v)
				return err
			},
			func() {
				for range n {
					refInsert(s.ref, mark, v)
				}
			},
		)
		if err != nil || fired {
			return err
		}
		if n > 0 && (it.IsEnd() || it.Value() != v) {
			s.mismatch("insert result", v, iterValue(it))
		}
		return nil
	}

	if len(values) == 0 {
		return badStep("no values")
	}
	for j, v := range values {
		at := step.At + j
		var it unrolled.Iterator[int64]
		mark := refAt(s.ref, at)
		fired, err := s.mutate(
			func() (err error) {
				it, err = s.list.Insert(s.list.At(at), v)
				return err
			},
			func() { refInsert(s.ref, mark, v) },
		)
		if err != nil || fired {
			return err
		}
		if it.IsEnd() || it.Value() != v {
			s.mismatch("insert result", v, iterValue(it))
		}
	}
	return nil
}

func (s *state) erase(at int) error {
	if at < 0 || at >= s.list.Len() {
		return badStep("erase position %d out of range [0, %d)", at, s.list.Len())
	}
	next := s.list.Erase(s.list.At(at))
	s.ref.Remove(refAt(s.ref, at))
	s.checkFollower(next, at)
	return nil
}

func (s *state) eraseRange(from, to int) error {
	if from < 0 || from > to || to > s.list.Len() {
		return badStep("erase range [%d, %d) out of range [0, %d]", from, to, s.list.Len())
	}
	next := s.list.EraseRange(s.list.At(from), s.list.At(to))
	e := refAt(s.ref, from)
	for range to - from {
		following := e.Next()
		s.ref.Remove(e)
		e = following
	}
	s.checkFollower(next, from)
	return nil
}

// checkFollower checks that an erase returned the element now at position
// at, or End when nothing follows.
func (s *state) checkFollower(it unrolled.Iterator[int64], at int) {
	want := refAt(s.ref, at)
	switch {
	case want == nil && !it.IsEnd():
		s.mismatch("erase result", "end", it.Value())
	case want != nil && (it.IsEnd() || it.Value() != want.Value.(int64)):
		s.mismatch("erase result", want.Value, iterValue(it))
	}
}

func (s *state) expect(step Step) error {
	if step.Values != nil {
		if got := s.list.Slice(); !slices.Equal(step.Values, got) {
			s.mismatch("expect values", summarize(step.Values), summarize(got))
		}
	}
	if step.Range != nil {
		want := Step{Range: step.Range}.pushValues()
		if got := s.list.Slice(); !slices.Equal(want, got) {
			s.mismatch("expect range", summarize(want), summarize(got))
		}
	}
	if step.Size != nil && *step.Size != s.list.Len() {
		s.mismatch("expect size", *step.Size, s.list.Len())
	}
	if step.Empty != nil && *step.Empty != s.list.Empty() {
		s.mismatch("expect empty", *step.Empty, s.list.Empty())
	}
	return nil
}

// snapshot round-trips the list through an encoding and compares.
func (s *state) snapshot(format string) error {
	if format == "" {
		format = codec.FormatJSON.String()
	}
	f, err := codec.ParseFormat(format)
	if err != nil {
		return badStep("%v", err)
	}

	data, err := codec.Encode(f, s.list)
	if err != nil {
		return err
	}
	decoded, err := codec.Decode(f, unrolled.Config[int64]{}, data)
	if err != nil {
		return err
	}
	if !unrolled.Equal(s.list, decoded) {
		s.mismatch("snapshot "+f.String(), summarize(s.list.Slice()), summarize(decoded.Slice()))
	}
	if decoded.NodeCapacity() != s.list.NodeCapacity() {
		s.mismatch("snapshot capacity", s.list.NodeCapacity(), decoded.NodeCapacity())
	}
	s.log.Debugw("snapshot", "step", s.step, "format", f.String(), "bytes", len(data))
	return nil
}

func refInsert(l *list.List, mark *list.Element, v int64) {
	if mark == nil {
		l.PushBack(v)
		return
	}
	l.InsertBefore(v, mark)
}

func iterValue(it unrolled.Iterator[int64]) any {
	if it.IsEnd() {
		return "end"
	}
	return it.Value()
}
