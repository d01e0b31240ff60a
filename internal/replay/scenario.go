// Package replay runs YAML scenarios against an unrolled list and a
// container/list reference, checking after every step that both hold the
// same sequence and that the unrolled list is structurally sound.
package replay

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a named sequence of steps.
type Scenario struct {
	Name string `yaml:"name"`
	// Capacity overrides the configured node capacity when non-zero.
	Capacity int `yaml:"capacity"`
	// Allocator overrides the configured allocator when non-empty.
	Allocator string `yaml:"allocator"`
	Steps     []Step `yaml:"steps"`
}

// Op names a step kind.
type Op string

const (
	OpPushBack     Op = "push_back"
	OpPushFront    Op = "push_front"
	OpPopBack      Op = "pop_back"
	OpPopFront     Op = "pop_front"
	OpInsert       Op = "insert"
	OpErase        Op = "erase"
	OpEraseRange   Op = "erase_range"
	OpClear        Op = "clear"
	OpAlternatePop Op = "alternate_pop"
	OpExpect       Op = "expect"
	OpFailNext     Op = "fail_next"
	OpSnapshot     Op = "snapshot"
)

// Range is the half-open integer interval [From, To).
type Range struct {
	From int64 `yaml:"from"`
	To   int64 `yaml:"to"`
}

// Step is one scenario operation. Which fields apply depends on Op.
type Step struct {
	Op Op `yaml:"op"`

	// push_back, push_front, insert
	Value  *int64  `yaml:"value"`
	Values []int64 `yaml:"values"`
	Range  *Range  `yaml:"range"`

	// pop_back, pop_front, alternate_pop; zero pops once, or until empty
	// for alternate_pop
	Times int `yaml:"times"`

	// insert, erase
	At int `yaml:"at"`
	// insert: number of copies; absent inserts one element with Insert
	Count *int `yaml:"count"`

	// erase_range
	From int `yaml:"from"`
	To   int `yaml:"to"`

	// expect
	Size  *int  `yaml:"size"`
	Empty *bool `yaml:"empty"`

	// fail_next: "acquire" or "construct", after that many successful calls
	Fail  string `yaml:"fail"`
	After int    `yaml:"after"`

	// snapshot: "json" or "cbor"
	Format string `yaml:"format"`
}

// Parse decodes a scenario document. Unknown fields are rejected.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	for i, st := range sc.Steps {
		if !st.Op.known() {
			return nil, &StepError{Scenario: sc.Name, Index: i, Op: st.Op, Err: ErrUnknownOp}
		}
	}
	return &sc, nil
}

// LoadFile reads and parses a scenario file. A scenario without a name is
// named after its path.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = path
	}
	return sc, nil
}

func (o Op) known() bool {
	switch o {
	case OpPushBack, OpPushFront, OpPopBack, OpPopFront, OpInsert, OpErase,
		OpEraseRange, OpClear, OpAlternatePop, OpExpect, OpFailNext, OpSnapshot:
		return true
	}
	return false
}

// mutates reports whether the op changes the list.
func (o Op) mutates() bool {
	switch o {
	case OpExpect, OpFailNext, OpSnapshot:
		return false
	}
	return true
}

// pushValues returns the values a push or insert step names, in order.
func (s Step) pushValues() []int64 {
	var out []int64
	if s.Value != nil {
		out = append(out, *s.Value)
	}
	out = append(out, s.Values...)
	if s.Range != nil {
		for v := s.Range.From; v < s.Range.To; v++ {
			out = append(out, v)
		}
	}
	return out
}
