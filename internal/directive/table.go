package directive

import (
	"fmt"
	"sort"
	"sync"

	"github.com/isseis/go-errpromote/internal/promotion"
)

// Table binds scopes to their promotion masks. Each scope is bound at most
// once; lookups of unbound scopes return the empty mask.
type Table struct {
	mu     sync.RWMutex
	scopes map[string]promotion.Mask
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{scopes: make(map[string]promotion.Mask)}
}

// Bind records the mask for scope. A second Bind for the same scope fails
// with ErrAlreadyBound and leaves the first binding untouched.
func (t *Table) Bind(scope string, mask promotion.Mask) error {
	if scope == "" {
		return ErrEmptyScope
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.scopes[scope]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyBound, scope)
	}
	t.scopes[scope] = mask
	return nil
}

// Declare resolves raw and binds the result to scope.
func (t *Table) Declare(scope string, raw any) (promotion.Mask, error) {
	mask, err := ResolveForScope(scope, raw)
	if err != nil {
		return promotion.Mask{}, err
	}
	if err := t.Bind(scope, mask); err != nil {
		return promotion.Mask{}, err
	}
	return mask, nil
}

// Lookup returns the mask bound to scope, or the empty mask.
func (t *Table) Lookup(scope string) promotion.Mask {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.scopes[scope]
}

// Bound reports whether scope has a binding.
func (t *Table) Bound(scope string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.scopes[scope]
	return ok
}

// Scopes returns the bound scope names in sorted order.
func (t *Table) Scopes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]string, 0, len(t.scopes))
	for scope := range t.scopes {
		out = append(out, scope)
	}
	sort.Strings(out)
	return out
}
