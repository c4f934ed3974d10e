package object

import "github.com/vesper-lang/vesper/internal/value"

// Key is a property key: either a string (ordinary or array-index) or a
// symbol reference. Ordinary objects route array-index-string keys to the
// indexed array store and everything else to the named store.
type Key struct {
	str      string
	sym      any // *Symbol, compared by identity
	isSymbol bool
	isIndex  bool
	index    uint32
}

// StringKey builds a Key for an ordinary string/index-string property name.
func StringKey(s string) Key {
	idx, ok := indexOf(s)
	return Key{str: s, isIndex: ok, index: idx}
}

// SymbolKey builds a Key for a well-known or user symbol, identified by
// pointer equality of sym.
func SymbolKey(sym any) Key { return Key{sym: sym, isSymbol: true} }

// KeyFromValue implements ToPropertyKey for the object store:
// symbols pass through, everything else is stringified.
func KeyFromValue(v value.Value) (Key, error) {
	if v.IsSymbol() {
		return SymbolKey(v.Ref()), nil
	}
	s, err := value.ToString(v)
	if err != nil {
		return Key{}, err
	}
	return StringKey(s), nil
}

func (k Key) IsSymbol() bool   { return k.isSymbol }
func (k Key) IsArrayIndex() bool { return !k.isSymbol && k.isIndex }
func (k Key) Index() uint32    { return k.index }
func (k Key) String() string   { return k.str }
func (k Key) Symbol() any      { return k.sym }

func (k Key) hashKey() any {
	if k.isSymbol {
		return k.sym
	}
	return k.str
}

// ToValue renders the key back as a Value, used by own_property_keys.
func (k Key) ToValue() value.Value {
	if k.isSymbol {
		return value.SymbolRef(k.sym)
	}
	return value.Str(k.str)
}

func indexOf(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	if s == "0" {
		return 0, true
	}
	if s[0] < '1' || s[0] > '9' {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
		if n > 0xFFFFFFFE {
			return 0, false
		}
	}
	return uint32(n), true
}
