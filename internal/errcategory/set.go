package errcategory

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Errors returned while converting raw values into a Set.
var (
	// ErrUnknownName is returned for a name that is neither a category nor E_ALL
	ErrUnknownName = errors.New("unknown error category name")

	// ErrUnknownBit is returned for an integer carrying bits outside E_ALL
	ErrUnknownBit = errors.New("unknown error category bit")

	// ErrNegativeValue is returned for a negative integer
	ErrNegativeValue = errors.New("negative error category value")

	// ErrInvalidType is returned for values that are not integers, names or lists of names
	ErrInvalidType = errors.New("invalid error category value type")
)

// setSeparator joins names in String and MarshalText.
const setSeparator = " | "

// Set is an immutable set of categories stored as a bitset.
// The zero value is the empty set.
type Set uint32

// NewSet returns the set holding the given categories.
func NewSet(categories ...Category) Set {
	var s Set
	for _, c := range categories {
		s |= Set(c)
	}
	return s
}

// Has reports whether c is a member of s.
func (s Set) Has(c Category) bool {
	return c != 0 && s&Set(c) == Set(c)
}

// IsEmpty reports whether s has no members.
func (s Set) IsEmpty() bool {
	return s == 0
}

// With returns s plus c.
func (s Set) With(c Category) Set {
	return s | Set(c)
}

// Without returns s minus every member of o.
func (s Set) Without(o Set) Set {
	return s &^ o
}

// Union returns the members of s or o.
func (s Set) Union(o Set) Set {
	return s | o
}

// Intersect returns the members of both s and o.
func (s Set) Intersect(o Set) Set {
	return s & o
}

// Members returns the categories of s in ascending bit order.
func (s Set) Members() []Category {
	var out []Category
	for c := Error; c <= UserDeprecated; c <<= 1 {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// String returns the member names joined with " | ", "E_ALL" for the full
// set and "0" for the empty set.
func (s Set) String() string {
	switch {
	case s == 0:
		return "0"
	case s == All:
		return "E_ALL"
	}
	members := s.Members()
	names := make([]string, 0, len(members))
	for _, c := range members {
		names = append(names, c.String())
	}
	if rest := s &^ All; rest != 0 {
		names = append(names, fmt.Sprintf("invalid(%d)", uint32(rest)))
	}
	return strings.Join(names, setSeparator)
}

// MarshalText implements encoding.TextMarshaler.
func (s Set) MarshalText() ([]byte, error) {
	if s&^All != 0 {
		return nil, fmt.Errorf("cannot marshal Set(%d): %w", uint32(s), ErrUnknownBit)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts the output
// of MarshalText.
func (s *Set) UnmarshalText(b []byte) error {
	text := strings.TrimSpace(string(b))
	if text == "0" || text == "" {
		*s = 0
		return nil
	}
	var out Set
	for _, part := range strings.Split(text, "|") {
		v, err := ParseName(strings.TrimSpace(part))
		if err != nil {
			return err
		}
		out |= v
	}
	*s = out
	return nil
}

// ParseName converts a single constant name into a Set. "E_ALL" yields All.
func ParseName(name string) (Set, error) {
	if name == "E_ALL" {
		return All, nil
	}
	c, ok := Lookup(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return Set(c), nil
}

// FromInt converts an integer bitset into a Set, rejecting negative values
// and bits outside All.
func FromInt(v int64) (Set, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d", ErrNegativeValue, v)
	}
	if v > math.MaxUint32 || Set(v)&^All != 0 {
		return 0, fmt.Errorf("%w: %d", ErrUnknownBit, v)
	}
	return Set(v), nil
}

// FromRaw converts an already-decoded configuration value into a Set.
// Accepted forms are nil (empty set), any Go integer kind, a string in the
// form Set.String prints ("E_NOTICE", "E_WARNING | E_NOTICE", "E_ALL", "0"),
// and a list of names given as []string or []any.
func FromRaw(raw any) (Set, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case Set:
		return FromInt(int64(v))
	case Category:
		return FromInt(int64(v))
	case int:
		return FromInt(int64(v))
	case int8:
		return FromInt(int64(v))
	case int16:
		return FromInt(int64(v))
	case int32:
		return FromInt(int64(v))
	case int64:
		return FromInt(v)
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return fromUint(uint64(v))
	case uint16:
		return fromUint(uint64(v))
	case uint32:
		return fromUint(uint64(v))
	case uint64:
		return fromUint(v)
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, fmt.Errorf("%w: %q", ErrUnknownName, v)
		}
		var out Set
		if err := out.UnmarshalText([]byte(v)); err != nil {
			return 0, err
		}
		return out, nil
	case []string:
		var out Set
		for _, name := range v {
			s, err := ParseName(strings.TrimSpace(name))
			if err != nil {
				return 0, err
			}
			out |= s
		}
		return out, nil
	case []any:
		var out Set
		for i, item := range v {
			name, ok := item.(string)
			if !ok {
				return 0, fmt.Errorf("%w: list element %d is %T, want string", ErrInvalidType, i, item)
			}
			s, err := ParseName(strings.TrimSpace(name))
			if err != nil {
				return 0, err
			}
			out |= s
		}
		return out, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrInvalidType, raw)
	}
}

func fromUint(v uint64) (Set, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d", ErrUnknownBit, v)
	}
	return FromInt(int64(v))
}
