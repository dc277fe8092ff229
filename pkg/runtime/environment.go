package runtime

import (
	"sort"
	"strings"
)

// ConstTable is a write-once binding table. Adding an existing key is a
// silent no-op; callers that need an error check Has first.
type ConstTable struct {
	values map[string]Value
}

func newConstTable() *ConstTable {
	return &ConstTable{values: make(map[string]Value)}
}

// Get returns the constant bound to name.
func (c *ConstTable) Get(name string) (Value, bool) {
	v, ok := c.values[name]
	return v, ok
}

// Has reports whether name is bound.
func (c *ConstTable) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

// Add binds name unless it is already bound.
func (c *ConstTable) Add(name string, value Value) {
	if _, ok := c.values[name]; ok {
		return
	}
	c.values[name] = value
}

// Keys returns the bound names in sorted order.
func (c *ConstTable) Keys() []string {
	return sortedKeys(c.values)
}

// Scope holds the bindings of one interpreter invocation. Scopes never
// chain to a parent; values cross scopes only by explicit copy.
type Scope struct {
	vars       map[string]Value
	consts     *ConstTable
	funcs      map[string]*Function
	containers map[string]*Scope
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{
		vars:       make(map[string]Value),
		consts:     newConstTable(),
		funcs:      make(map[string]*Function),
		containers: make(map[string]*Scope),
	}
}

// Consts exposes the write-once table.
func (s *Scope) Consts() *ConstTable {
	return s.consts
}

// HasVar reports whether name is a variable in this scope.
func (s *Scope) HasVar(name string) bool {
	_, ok := s.vars[name]
	return ok
}

// Var returns the variable bound to name.
func (s *Scope) Var(name string) (Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// SetVar binds or rebinds a variable.
func (s *Scope) SetVar(name string, value Value) {
	s.vars[name] = value
}

// Func returns the function bound to name.
func (s *Scope) Func(name string) (*Function, bool) {
	fn, ok := s.funcs[name]
	return fn, ok
}

// DefineFunc binds fn under its name, replacing any previous function.
func (s *Scope) DefineFunc(fn *Function) {
	s.funcs[fn.Name] = fn
}

// Container returns the nested scope bound to name.
func (s *Scope) Container(name string) (*Scope, bool) {
	c, ok := s.containers[name]
	return c, ok
}

// DefineContainer binds a nested scope.
func (s *Scope) DefineContainer(name string, c *Scope) {
	s.containers[name] = c
}

// Lookup resolves a possibly dotted name: vars, then consts, then funcs.
// A miss returns (nil, false).
func (s *Scope) Lookup(name string) (Value, bool) {
	owner, leaf, ok := s.resolvePath(name)
	if !ok {
		return nil, false
	}
	if v, ok := owner.vars[leaf]; ok {
		return v, true
	}
	if v, ok := owner.consts.Get(leaf); ok {
		return v, true
	}
	if fn, ok := owner.funcs[leaf]; ok {
		return &FunctionValue{Fn: fn}, true
	}
	return nil, false
}

// LookupData resolves a possibly dotted name in vars then consts only.
func (s *Scope) LookupData(name string) (Value, bool) {
	owner, leaf, ok := s.resolvePath(name)
	if !ok {
		return nil, false
	}
	if v, ok := owner.vars[leaf]; ok {
		return v, true
	}
	return owner.consts.Get(leaf)
}

// LookupFunc resolves a possibly dotted function name.
func (s *Scope) LookupFunc(name string) (*Function, bool) {
	owner, leaf, ok := s.resolvePath(name)
	if !ok {
		return nil, false
	}
	fn, ok := owner.funcs[leaf]
	return fn, ok
}

// LookupContainer resolves a possibly dotted container path.
func (s *Scope) LookupContainer(name string) (*Scope, bool) {
	owner, leaf, ok := s.resolvePath(name)
	if !ok {
		return nil, false
	}
	return owner.Container(leaf)
}

// Delete removes a var, function or container binding. Constants are never
// removed; isConst reports whether name was a constant.
func (s *Scope) Delete(name string) (deleted bool, isConst bool) {
	owner, leaf, ok := s.resolvePath(name)
	if !ok {
		return false, false
	}
	if _, ok := owner.vars[leaf]; ok {
		delete(owner.vars, leaf)
		return true, false
	}
	if owner.consts.Has(leaf) {
		return false, true
	}
	if _, ok := owner.funcs[leaf]; ok {
		delete(owner.funcs, leaf)
		return true, false
	}
	if _, ok := owner.containers[leaf]; ok {
		delete(owner.containers, leaf)
		return true, false
	}
	return false, false
}

func (s *Scope) resolvePath(name string) (*Scope, string, bool) {
	if !strings.Contains(name, ".") {
		return s, name, true
	}
	parts := strings.Split(name, ".")
	owner := s
	for _, part := range parts[:len(parts)-1] {
		next, ok := owner.containers[part]
		if !ok {
			return nil, "", false
		}
		owner = next
	}
	leaf := parts[len(parts)-1]
	if leaf == "" {
		return nil, "", false
	}
	return owner, leaf, true
}

// Snapshot returns a scope holding copies of every binding. Function objects
// are immutable once declared and are shared.
func (s *Scope) Snapshot() *Scope {
	out := NewScope()
	for k, v := range s.vars {
		out.vars[k] = Copy(v)
	}
	for k, v := range s.consts.values {
		out.consts.values[k] = Copy(v)
	}
	for k, fn := range s.funcs {
		out.funcs[k] = fn
	}
	for k, c := range s.containers {
		out.containers[k] = c.Snapshot()
	}
	return out
}

// WithFuncs returns a fresh scope holding only this scope's functions.
func (s *Scope) WithFuncs() *Scope {
	out := NewScope()
	for k, fn := range s.funcs {
		out.funcs[k] = fn
	}
	return out
}

// Merge copies bindings from src that are not already bound here, class by
// class. It returns the names it added.
func (s *Scope) Merge(src *Scope) []string {
	var added []string
	for _, k := range sortedKeys(src.vars) {
		if _, ok := s.vars[k]; !ok {
			s.vars[k] = Copy(src.vars[k])
			added = append(added, k)
		}
	}
	for _, k := range src.consts.Keys() {
		if !s.consts.Has(k) {
			v, _ := src.consts.Get(k)
			s.consts.Add(k, Copy(v))
			added = append(added, k)
		}
	}
	for _, k := range sortedKeys(src.funcs) {
		if _, ok := s.funcs[k]; !ok {
			s.funcs[k] = src.funcs[k]
			added = append(added, k)
		}
	}
	for _, k := range sortedKeys(src.containers) {
		if _, ok := s.containers[k]; !ok {
			s.containers[k] = src.containers[k].Snapshot()
			added = append(added, k)
		}
	}
	return added
}

// VarNames returns the variable names in sorted order (useful for determinism in tests).
func (s *Scope) VarNames() []string {
	return sortedKeys(s.vars)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
