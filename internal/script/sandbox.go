package script

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// sandbox restricts a Lua state to safe operations and meters host calls.
type sandbox struct {
	L   *lua.LState
	out io.Writer

	limit    int64
	used     atomic.Int64
	exceeded atomic.Bool
}

func newSandbox(L *lua.LState, limit int64, out io.Writer) *sandbox {
	return &sandbox{L: L, limit: limit, out: out}
}

// openSafeLibraries opens only the libraries scripts may use. The package
// library is opened so preloaded modules resolve; install then locks it.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenPackage(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// safeModules may be required besides preloaded host modules.
var safeModules = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
}

func (s *sandbox) install(preloaded ...string) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.installPrint()
	s.installRequire(preloaded)
}

// installPrint sends print output to the host writer.
func (s *sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, L.GetTop())
		for i := range parts {
			parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
		}
		fmt.Fprintln(s.out, strings.Join(parts, "\t"))
		return 0
	}))
}

// installRequire clears the module search paths and allows only safe
// built-ins and the named preloaded modules.
func (s *sandbox) installRequire(preloaded []string) {
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	allowed := make(map[string]bool, len(safeModules)+len(preloaded))
	for name := range safeModules {
		allowed[name] = true
	}
	for _, name := range preloaded {
		allowed[name] = true
	}

	original := s.L.GetGlobal("require")
	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !allowed[name] {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(original)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}

func (s *sandbox) reset() {
	s.used.Store(0)
	s.exceeded.Store(false)
}

// charge consumes n units of budget and raises a Lua error once the budget
// is exhausted. A limit of zero disables metering.
func (s *sandbox) charge(L *lua.LState, n int) {
	if s.limit <= 0 {
		return
	}
	if s.used.Add(int64(max(n, 1))) > s.limit {
		s.exceeded.Store(true)
		L.RaiseError("%s", ErrInstructionLimit.Error())
	}
}
