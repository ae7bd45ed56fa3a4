package directive

import (
	"github.com/isseis/go-errpromote/internal/errcategory"
	"github.com/isseis/go-errpromote/internal/promotion"
)

// Resolve converts a raw directive value into a promotion mask.
//
// Accepted values are nil (empty mask), a non-negative integer bitset of
// known categories, a single constant name such as "E_WARNING" or "E_ALL",
// and a list of names. Uncatchable categories are accepted but never
// promote.
func Resolve(raw any) (promotion.Mask, error) {
	return ResolveForScope("", raw)
}

// ResolveForScope is Resolve with the scope name recorded in any error.
func ResolveForScope(scope string, raw any) (promotion.Mask, error) {
	set, err := errcategory.FromRaw(raw)
	if err != nil {
		return promotion.Mask{}, &ConfigError{Scope: scope, Value: raw, Err: err}
	}
	return promotion.NewMask(set), nil
}
