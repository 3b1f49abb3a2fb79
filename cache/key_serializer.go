package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator defines the delimiter used between cache key segments.
// It matches the segment separator used by pattern-based invalidation.
const KeySeparator = ":"

// maxKeyLength caps serialized keys. Longer keys keep their method prefix
// (so prefix-based clears still match) and the full serialization is
// replaced with an xxhash digest.
const maxKeyLength = 200

// defaultKeySerializer builds deterministic keys from a method name and
// its arguments. Basic types serialize to their literal form; composites
// fall back to JSON, which sorts map keys and therefore stays stable
// across runs.
type defaultKeySerializer struct{}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer() KeySerializer {
	return &defaultKeySerializer{}
}

// SerializeKey builds a cache key from method name and args.
func (s *defaultKeySerializer) SerializeKey(method string, args ...any) string {
	if len(args) == 0 {
		return method
	}

	parts := make([]string, 0, len(args)+1)
	parts = append(parts, method)
	for _, arg := range args {
		parts = append(parts, s.serializeValue(arg))
	}

	key := strings.Join(parts, KeySeparator)
	if len(key) > maxKeyLength {
		digest := xxhash.Sum64String(key)
		key = method + KeySeparator + strconv.FormatUint(digest, 16)
	}
	return key
}

// serializeValue renders one argument. Function and channel arguments use
// their address, which is stable only within a single process lifetime.
func (s *defaultKeySerializer) serializeValue(v any) string {
	if v == nil {
		return "nil"
	}

	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func, reflect.Chan:
		return fmt.Sprintf("%T@%p", v, v)
	case reflect.Pointer:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem().Interface())
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%v", v)
	}

	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%T", v)
}
