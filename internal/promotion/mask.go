// Package promotion implements the decision that turns a raised runtime error
// into either a legacy report or a propagated exception value.
//
// Decide is a pure function of the event and the promotion mask of the scope
// the error was raised in. It performs no I/O, holds no state between calls
// and never consults reporting or suppression settings, so it is safe to call
// from any number of goroutines at once.
package promotion

import "github.com/isseis/go-errpromote/internal/errcategory"

// Mask is the set of categories a scope promotes to exceptions. It is an
// immutable value; the zero Mask promotes nothing and is the default for a
// scope that declared no directive.
//
// A Mask remembers every declared bit, including uncatchable categories, but
// Contains only ever reports catchable members.
type Mask struct {
	declared  errcategory.Set
	effective errcategory.Set
}

// NewMask builds a Mask from a declared set of categories.
func NewMask(declared errcategory.Set) Mask {
	return Mask{
		declared:  declared,
		effective: declared.Intersect(errcategory.Catchable),
	}
}

// MaskOf builds a Mask from individual categories.
func MaskOf(categories ...errcategory.Category) Mask {
	return NewMask(errcategory.NewSet(categories...))
}

// Contains reports whether c is promoted by m.
func (m Mask) Contains(c errcategory.Category) bool {
	return m.effective.Has(c)
}

// IsEmpty reports whether m promotes nothing.
func (m Mask) IsEmpty() bool {
	return m.effective.IsEmpty()
}

// Declared returns the set as written in the directive.
func (m Mask) Declared() errcategory.Set {
	return m.declared
}

// Effective returns the categories m actually promotes.
func (m Mask) Effective() errcategory.Set {
	return m.effective
}

// Ignored returns the declared categories that can never be promoted.
func (m Mask) Ignored() errcategory.Set {
	return m.declared.Without(m.effective)
}

func (m Mask) String() string {
	return m.effective.String()
}
