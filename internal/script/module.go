package script

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/unrolled/internal/engine/alloc"
	"github.com/dshills/unrolled/internal/engine/unrolled"
)

// ModuleName is the name scripts require.
const ModuleName = "ulist"

const listTypeName = "ulist.list"

// listModule provides the ulist Lua module.
type listModule struct {
	capacity  int
	allocator string
	sb        *sandbox
}

// luaList is the userdata payload of a Lua-visible list.
type luaList struct {
	l *unrolled.List[lua.LValue]
}

// Register installs the list metatable and returns the module table.
func (m *listModule) Register(L *lua.LState) *lua.LTable {
	mt := L.NewTypeMetatable(listTypeName)
	methods := L.NewTable()
	for name, fn := range map[string]lua.LGFunction{
		"push_back":   m.pushBack,
		"push_front":  m.pushFront,
		"pop_back":    m.popBack,
		"pop_front":   m.popFront,
		"insert":      m.insert,
		"erase":       m.erase,
		"erase_range": m.eraseRange,
		"clear":       m.clear,
		"len":         m.length,
		"empty":       m.empty,
		"front":       m.front,
		"back":        m.back,
		"get":         m.get,
		"set":         m.set,
		"values":      m.values,
		"reversed":    m.reversed,
		"iter":        m.iter,
		"validate":    m.validate,
		"equal":       m.equal,
		"clone":       m.clone,
		"capacity":    m.nodeCapacity,
		"nodes":       m.nodes,
	} {
		L.SetField(methods, name, L.NewFunction(fn))
	}
	L.SetField(mt, "__index", methods)
	L.SetField(mt, "__len", L.NewFunction(m.length))
	L.SetField(mt, "__tostring", L.NewFunction(m.tostring))

	mod := L.NewTable()
	L.SetField(mod, "new", L.NewFunction(m.newList))
	L.SetField(mod, "default_capacity", lua.LNumber(unrolled.DefaultNodeCapacity))
	return mod
}

// loader is the lua.LGFunction passed to PreloadModule.
func (m *listModule) loader(L *lua.LState) int {
	L.Push(m.Register(L))
	return 1
}

func (m *listModule) config(L *lua.LState, capacity int) unrolled.Config[lua.LValue] {
	a, err := alloc.ByName[lua.LValue](m.allocator)
	if err != nil {
		L.RaiseError("%v", err)
	}
	return unrolled.Config[lua.LValue]{NodeCapacity: capacity, NodeAllocator: a}
}

func (m *listModule) wrap(L *lua.LState, l *unrolled.List[lua.LValue]) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = &luaList{l: l}
	L.SetMetatable(ud, L.GetTypeMetatable(listTypeName))
	return ud
}

func checkList(L *lua.LState, n int) *unrolled.List[lua.LValue] {
	ud := L.CheckUserData(n)
	if v, ok := ud.Value.(*luaList); ok {
		return v.l
	}
	L.ArgError(n, "ulist.list expected")
	return nil
}

// checkPos reads a 1-based position in [1, hi] and returns it 0-based.
func checkPos(L *lua.LState, n, hi int) int {
	pos := L.CheckInt(n)
	if pos < 1 || pos > hi {
		L.ArgError(n, "position out of range")
	}
	return pos - 1
}

// ulist.new([capacity]) -> list
func (m *listModule) newList(L *lua.LState) int {
	m.sb.charge(L, 1)
	capacity := L.OptInt(1, m.capacity)
	if err := unrolled.CheckCapacity(capacity); err != nil {
		L.ArgError(1, err.Error())
	}
	l, err := unrolled.NewWithConfig(m.config(L, capacity))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	L.Push(m.wrap(L, l))
	return 1
}

// list:push_back(v)
func (m *listModule) pushBack(L *lua.LState) int {
	l := checkList(L, 1)
	m.sb.charge(L, 1)
	if err := l.PushBack(L.CheckAny(2)); err != nil {
		L.RaiseError("push_back: %v", err)
	}
	return 0
}

// list:push_front(v)
func (m *listModule) pushFront(L *lua.LState) int {
	l := checkList(L, 1)
	m.sb.charge(L, 1)
	if err := l.PushFront(L.CheckAny(2)); err != nil {
		L.RaiseError("push_front: %v", err)
	}
	return 0
}

// list:pop_back() -> v or nil
func (m *listModule) popBack(L *lua.LState) int {
	l := checkList(L, 1)
	m.sb.charge(L, 1)
	if l.Empty() {
		L.Push(lua.LNil)
		return 1
	}
	v := l.Back()
	l.PopBack()
	L.Push(v)
	return 1
}

// list:pop_front() -> v or nil
func (m *listModule) popFront(L *lua.LState) int {
	l := checkList(L, 1)
	m.sb.charge(L, 1)
	if l.Empty() {
		L.Push(lua.LNil)
		return 1
	}
	v := l.Front()
	l.PopFront()
	L.Push(v)
	return 1
}

// list:insert(pos, v [, n]) inserts before pos; pos may be len+1.
func (m *listModule) insert(L *lua.LState) int {
	l := checkList(L, 1)
	pos := checkPos(L, 2, l.Len()+1)
	v := L.CheckAny(3)

	if L.GetTop() >= 4 {
		n := L.CheckInt(4)
		if n < 0 {
			L.ArgError(4, "count must not be negative")
		}
		m.sb.charge(L, n)
		if _, err := l.InsertN(l.At(pos), n, v); err != nil {
			L.RaiseError("insert: %v", err)
		}
		return 0
	}

	m.sb.charge(L, 1)
	if _, err := l.Insert(l.At(pos), v); err != nil {
		L.RaiseError("insert: %v", err)
	}
	return 0
}

// list:erase(pos) -> removed value
func (m *listModule) erase(L *lua.LState) int {
	l := checkList(L, 1)
	pos := checkPos(L, 2, l.Len())
	m.sb.charge(L, 1)
	it := l.At(pos)
	v := it.Value()
	l.Erase(it)
	L.Push(v)
	return 1
}

// list:erase_range(from, to) removes positions from..to inclusive and
// returns the number removed.
func (m *listModule) eraseRange(L *lua.LState) int {
	l := checkList(L, 1)
	from := checkPos(L, 2, l.Len()+1)
	to := L.CheckInt(3)
	if to < from || to > l.Len() {
		L.ArgError(3, "range end out of range")
	}
	m.sb.charge(L, to-from)
	l.EraseRange(l.At(from), l.At(to))
	L.Push(lua.LNumber(to - from))
	return 1
}

// list:clear()
func (m *listModule) clear(L *lua.LState) int {
	l := checkList(L, 1)
	m.sb.charge(L, l.Len())
	l.Clear()
	return 0
}

func (m *listModule) length(L *lua.LState) int {
	L.Push(lua.LNumber(checkList(L, 1).Len()))
	return 1
}

func (m *listModule) empty(L *lua.LState) int {
	L.Push(lua.LBool(checkList(L, 1).Empty()))
	return 1
}

func (m *listModule) front(L *lua.LState) int {
	l := checkList(L, 1)
	if l.Empty() {
		L.Push(lua.LNil)
	} else {
		L.Push(l.Front())
	}
	return 1
}

func (m *listModule) back(L *lua.LState) int {
	l := checkList(L, 1)
	if l.Empty() {
		L.Push(lua.LNil)
	} else {
		L.Push(l.Back())
	}
	return 1
}

// list:get(pos) -> v, or nil when pos is out of range
func (m *listModule) get(L *lua.LState) int {
	l := checkList(L, 1)
	pos := L.CheckInt(2)
	m.sb.charge(L, 1)
	if pos < 1 || pos > l.Len() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(l.At(pos - 1).Value())
	return 1
}

// list:set(pos, v)
func (m *listModule) set(L *lua.LState) int {
	l := checkList(L, 1)
	pos := checkPos(L, 2, l.Len())
	m.sb.charge(L, 1)
	l.At(pos).Set(L.CheckAny(3))
	return 0
}

// list:values() -> array table in order
func (m *listModule) values(L *lua.LState) int {
	l := checkList(L, 1)
	m.sb.charge(L, l.Len())
	tbl := L.CreateTable(l.Len(), 0)
	for v := range l.All() {
		tbl.Append(v)
	}
	L.Push(tbl)
	return 1
}

// list:reversed() -> array table back to front
func (m *listModule) reversed(L *lua.LState) int {
	l := checkList(L, 1)
	m.sb.charge(L, l.Len())
	tbl := L.CreateTable(l.Len(), 0)
	for v := range l.Backward() {
		tbl.Append(v)
	}
	L.Push(tbl)
	return 1
}

// list:iter() -> generic for iterator yielding position, value
func (m *listModule) iter(L *lua.LState) int {
	l := checkList(L, 1)
	it := l.Begin()
	pos := 0
	L.Push(L.NewFunction(func(L *lua.LState) int {
		if it.IsEnd() {
			L.Push(lua.LNil)
			return 1
		}
		m.sb.charge(L, 1)
		pos++
		L.Push(lua.LNumber(pos))
		L.Push(it.Value())
		it = it.Next()
		return 2
	}))
	return 1
}

// list:validate() -> true, or false and a message
func (m *listModule) validate(L *lua.LState) int {
	l := checkList(L, 1)
	m.sb.charge(L, l.Len())
	if err := l.Validate(); err != nil {
		L.Push(lua.LFalse)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

// list:equal(other) compares element-wise with Lua equality.
func (m *listModule) equal(L *lua.LState) int {
	a, b := checkList(L, 1), checkList(L, 2)
	m.sb.charge(L, a.Len())
	L.Push(lua.LBool(a.EqualFunc(b, func(x, y lua.LValue) bool {
		return L.Equal(x, y)
	})))
	return 1
}

// list:clone() -> independent copy
func (m *listModule) clone(L *lua.LState) int {
	l := checkList(L, 1)
	m.sb.charge(L, l.Len())
	c, err := l.Clone()
	if err != nil {
		L.RaiseError("clone: %v", err)
	}
	L.Push(m.wrap(L, c))
	return 1
}

func (m *listModule) nodeCapacity(L *lua.LState) int {
	L.Push(lua.LNumber(checkList(L, 1).NodeCapacity()))
	return 1
}

func (m *listModule) nodes(L *lua.LState) int {
	L.Push(lua.LNumber(checkList(L, 1).NodeCount()))
	return 1
}

func (m *listModule) tostring(L *lua.LState) int {
	L.Push(lua.LString(checkList(L, 1).String()))
	return 1
}
