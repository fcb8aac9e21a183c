package collect

import (
	"github.com/satishbabariya/expand-go/builtin"
	"github.com/satishbabariya/expand-go/hirexpand"
)

// scope is an immutable chain of macro_rules! definitions, newest first.
// Snapshots are shared by the sites that saw them.
type scope struct {
	name   string
	def    hirexpand.MacroDefID
	parent *scope
}

func (s *scope) define(name string, def hirexpand.MacroDefID) *scope {
	return &scope{name: name, def: def, parent: s}
}

// lookup resolves name against user definitions, then builtins.
func (s *scope) lookup(name string) (hirexpand.MacroDefID, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.def, true
		}
	}
	if b, ok := builtin.Find(name); ok {
		return hirexpand.BuiltinDef(b)
	}
	return hirexpand.MacroDefID{}, false
}

func (s *scope) resolver() hirexpand.Resolver {
	return s.lookup
}
