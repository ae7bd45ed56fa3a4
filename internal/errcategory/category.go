// Package errcategory defines the closed set of runtime error categories and
// the fixed partitions the rest of the module relies on: which categories a
// user-installed handler can intercept, and which ones end execution on the
// legacy path.
package errcategory

import (
	"fmt"
	"math/bits"
)

// Category is a single runtime error category. Values are distinct bit flags
// so that categories combine into a Set with bitwise OR.
type Category uint32

// Category constants use the host runtime's numbering.
const (
	Error            Category = 1 << iota // E_ERROR
	Warning                               // E_WARNING
	Parse                                 // E_PARSE
	Notice                                // E_NOTICE
	CoreError                             // E_CORE_ERROR
	CoreWarning                           // E_CORE_WARNING
	CompileError                          // E_COMPILE_ERROR
	CompileWarning                        // E_COMPILE_WARNING
	UserError                             // E_USER_ERROR
	UserWarning                           // E_USER_WARNING
	UserNotice                            // E_USER_NOTICE
	Strict                                // E_STRICT
	RecoverableError                      // E_RECOVERABLE_ERROR
	Deprecated                            // E_DEPRECATED
	UserDeprecated                        // E_USER_DEPRECATED
)

// Fixed partitions of the category space.
const (
	// All is every defined category (E_ALL).
	All Set = Set(UserDeprecated<<1 - 1)

	// Uncatchable categories can never be intercepted by a user handler and are
	// never promoted.
	Uncatchable Set = Set(Error | Parse | CoreError | CoreWarning | CompileError | CompileWarning)

	// Catchable is the complement of Uncatchable within All.
	Catchable Set = All &^ Uncatchable

	// Fatal categories terminate execution on the legacy path unless a user
	// handler reports them as handled.
	Fatal Set = Set(Error | Parse | CoreError | CompileError | UserError | RecoverableError)
)

var categoryNames = map[Category]string{
	Error:            "E_ERROR",
	Warning:          "E_WARNING",
	Parse:            "E_PARSE",
	Notice:           "E_NOTICE",
	CoreError:        "E_CORE_ERROR",
	CoreWarning:      "E_CORE_WARNING",
	CompileError:     "E_COMPILE_ERROR",
	CompileWarning:   "E_COMPILE_WARNING",
	UserError:        "E_USER_ERROR",
	UserWarning:      "E_USER_WARNING",
	UserNotice:       "E_USER_NOTICE",
	Strict:           "E_STRICT",
	RecoverableError: "E_RECOVERABLE_ERROR",
	Deprecated:       "E_DEPRECATED",
	UserDeprecated:   "E_USER_DEPRECATED",
}

var categoryLabels = map[Category]string{
	Error:            "Fatal error",
	Warning:          "Warning",
	Parse:            "Parse error",
	Notice:           "Notice",
	CoreError:        "Fatal error",
	CoreWarning:      "Warning",
	CompileError:     "Fatal error",
	CompileWarning:   "Warning",
	UserError:        "Fatal error",
	UserWarning:      "Warning",
	UserNotice:       "Notice",
	Strict:           "Strict Standards",
	RecoverableError: "Recoverable fatal error",
	Deprecated:       "Deprecated",
	UserDeprecated:   "Deprecated",
}

var namedCategories = func() map[string]Category {
	m := make(map[string]Category, len(categoryNames))
	for c, name := range categoryNames {
		m[name] = c
	}
	return m
}()

// Valid reports whether c is exactly one defined category.
func (c Category) Valid() bool {
	return c != 0 && bits.OnesCount32(uint32(c)) == 1 && Set(c)&All == Set(c)
}

// String returns the constant name, e.g. "E_WARNING".
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("invalid(%d)", uint32(c))
}

// Label returns the human-readable prefix used when the legacy path displays
// an error, e.g. "Warning" or "Fatal error".
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return "Unknown error"
}

// Catchable reports whether a user-installed handler can intercept c.
func (c Category) Catchable() bool {
	return c.Valid() && Catchable.Has(c)
}

// Fatal reports whether c ends execution on the legacy path.
func (c Category) Fatal() bool {
	return Fatal.Has(c)
}

// Categories returns every defined category in ascending bit order.
func Categories() []Category {
	return All.Members()
}

// Lookup returns the category with the given constant name.
func Lookup(name string) (Category, bool) {
	c, ok := namedCategories[name]
	return c, ok
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid Category(%d)", uint32(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	v, ok := Lookup(string(b))
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownName, b)
	}
	*c = v
	return nil
}
