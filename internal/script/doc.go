// Package script runs sandboxed Lua scripts against unrolled lists.
//
// Scripts get the base, table, string and math libraries plus the preloaded
// "ulist" module:
//
//	local ulist = require("ulist")
//	local l = ulist.new(4)
//	for i = 1, 10 do l:push_back(i) end
//	l:insert(3, "x", 2)       -- two copies before position 3
//	l:erase_range(1, 2)       -- positions are 1-based and inclusive
//	assert(l:validate())
//	return l
//
// A chunk that returns a list hands it back to the caller of Run.
//
// gopher-lua has no per-instruction hook, so the instruction budget is
// charged by calls into the ulist module, one unit per element touched.
// Pure Lua loops are bounded by the execution timeout instead.
package script
