package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/dshills/unrolled/internal/engine/alloc"
	"github.com/dshills/unrolled/internal/engine/unrolled"
	"github.com/dshills/unrolled/internal/logging"
)

// Default limits.
const (
	DefaultExecutionTimeout = 5 * time.Second
	DefaultInstructionLimit = 10_000_000
)

// Host owns one sandboxed Lua state.
//
// A gopher-lua LState is not goroutine-safe; the mutex serializes runs.
type Host struct {
	L *lua.LState

	mu      sync.Mutex
	sandbox *sandbox
	log     *zap.SugaredLogger
	closed  bool

	executionTimeout time.Duration
	instructionLimit int64
	capacity         int
	allocator        string
	out              io.Writer
}

// Option configures a Host.
type Option func(*Host)

// WithInstructionLimit sets the budget per run; zero disables it.
func WithInstructionLimit(limit int64) Option {
	return func(h *Host) {
		h.instructionLimit = limit
	}
}

// WithExecutionTimeout bounds the wall time of a run; zero disables it.
func WithExecutionTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.executionTimeout = d
	}
}

// WithNodeCapacity sets the capacity used by ulist.new() without argument.
func WithNodeCapacity(capacity int) Option {
	return func(h *Host) {
		h.capacity = capacity
	}
}

// WithAllocator selects the allocation strategy of script lists by name.
func WithAllocator(name string) Option {
	return func(h *Host) {
		h.allocator = name
	}
}

// WithOutput redirects print.
func WithOutput(w io.Writer) Option {
	return func(h *Host) {
		h.out = w
	}
}

// WithLogger sets the host logger.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(h *Host) {
		h.log = log
	}
}

// NewHost creates a sandboxed Lua state with the ulist module preloaded.
func NewHost(opts ...Option) (*Host, error) {
	h := &Host{
		executionTimeout: DefaultExecutionTimeout,
		instructionLimit: DefaultInstructionLimit,
		capacity:         unrolled.DefaultNodeCapacity,
		allocator:        alloc.NameHeap,
		out:              os.Stdout,
		log:              logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.capacity < 1 {
		return nil, fmt.Errorf("%w: %d", unrolled.ErrInvalidCapacity, h.capacity)
	}
	if _, err := alloc.ByName[lua.LValue](h.allocator); err != nil {
		return nil, err
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	h.L = L
	h.sandbox = newSandbox(L, h.instructionLimit, h.out)
	mod := &listModule{capacity: h.capacity, allocator: h.allocator, sb: h.sandbox}
	L.PreloadModule(ModuleName, mod.loader)
	h.sandbox.install(ModuleName)

	return h, nil
}

// RunString executes a chunk. If the chunk returns a ulist list, its
// elements are returned converted to Go values.
func (h *Host) RunString(ctx context.Context, code string) (*unrolled.List[any], error) {
	return h.run(ctx, "<string>", func() (*lua.LFunction, error) {
		return h.L.LoadString(code)
	})
}

// RunFile executes the script at path like RunString.
func (h *Host) RunFile(ctx context.Context, path string) (*unrolled.List[any], error) {
	return h.run(ctx, path, func() (*lua.LFunction, error) {
		return h.L.LoadFile(path)
	})
}

func (h *Host) run(ctx context.Context, name string, load func() (*lua.LFunction, error)) (*unrolled.List[any], error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHostClosed
	}

	fn, err := load()
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}

	if h.executionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.executionTimeout)
		defer cancel()
	}
	h.L.SetContext(ctx)
	defer h.L.RemoveContext()
	h.sandbox.reset()

	start := time.Now()
	h.log.Debugw("script started", "script", name)

	top := h.L.GetTop()
	h.L.Push(fn)
	if err := h.doWithRecovery(func() error { return h.L.PCall(0, 1, nil) }); err != nil {
		h.L.SetTop(top)
		err = h.classify(ctx, err)
		h.log.Warnw("script failed", "script", name, "error", err)
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
	ret := h.L.Get(-1)
	h.L.SetTop(top)

	h.log.Debugw("script finished",
		"script", name,
		"elapsed", time.Since(start),
		"budget_used", h.sandbox.used.Load(),
	)
	return exportList(ret)
}

// doWithRecovery turns a panic inside the Lua VM into an error.
func (h *Host) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// classify maps budget and deadline failures to their sentinels.
func (h *Host) classify(ctx context.Context, err error) error {
	switch {
	case h.sandbox.exceeded.Load():
		return fmt.Errorf("%w: %v", ErrInstructionLimit, err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
	case ctx.Err() != nil:
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}

// Close releases the Lua state. Further runs return ErrHostClosed.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.L.Close()
	h.closed = true
	return nil
}

// exportList converts a returned ulist list to Go values; other return
// values yield nil.
func exportList(ret lua.LValue) (*unrolled.List[any], error) {
	ud, ok := ret.(*lua.LUserData)
	if !ok {
		return nil, nil
	}
	src, ok := ud.Value.(*luaList)
	if !ok {
		return nil, nil
	}
	out, err := unrolled.NewWithConfig(unrolled.Config[any]{NodeCapacity: src.l.NodeCapacity()})
	if err != nil {
		return nil, err
	}
	for v := range src.l.All() {
		if err := out.PushBack(toGoValue(v, make(map[*lua.LTable]bool))); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// toGoValue converts a Lua value for export. Integral numbers become int64;
// tables become slices when they are sequences and maps otherwise.
func toGoValue(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		if n := v.Len(); n > 0 {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, toGoValue(v.RawGetInt(i), visited))
			}
			return arr
		}
		m := make(map[string]any)
		v.ForEach(func(k, val lua.LValue) {
			m[k.String()] = toGoValue(val, visited)
		})
		return m
	case *lua.LUserData:
		if l, ok := v.Value.(*luaList); ok {
			arr := make([]any, 0, l.l.Len())
			for e := range l.l.All() {
				arr = append(arr, toGoValue(e, visited))
			}
			return arr
		}
		return nil
	default:
		return nil
	}
}
