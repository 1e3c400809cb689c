package fluxion

import "reflect"

// defaultEquals is the comparator used by signals and memos unless
// WithEquals installs another. Common scalar types compare with ==;
// everything else falls back to reflect.DeepEqual.
func defaultEquals(prev, next any) bool {
	switch p := prev.(type) {
	case nil:
		return next == nil
	case string:
		n, ok := next.(string)
		return ok && p == n
	case int:
		n, ok := next.(int)
		return ok && p == n
	case int8:
		n, ok := next.(int8)
		return ok && p == n
	case int16:
		n, ok := next.(int16)
		return ok && p == n
	case int32:
		n, ok := next.(int32)
		return ok && p == n
	case int64:
		n, ok := next.(int64)
		return ok && p == n
	case uint:
		n, ok := next.(uint)
		return ok && p == n
	case uint8:
		n, ok := next.(uint8)
		return ok && p == n
	case uint16:
		n, ok := next.(uint16)
		return ok && p == n
	case uint32:
		n, ok := next.(uint32)
		return ok && p == n
	case uint64:
		n, ok := next.(uint64)
		return ok && p == n
	case float32:
		n, ok := next.(float32)
		return ok && p == n
	case float64:
		n, ok := next.(float64)
		return ok && p == n
	case bool:
		n, ok := next.(bool)
		return ok && p == n
	default:
		return reflect.DeepEqual(prev, next)
	}
}

// Never reports no two values as equal. Installing it with WithEquals
// makes every write propagate, even when the value did not change:
//
//	ticks := fluxion.CreateSignal(rt, 0).WithEquals(fluxion.Never[int])
func Never[T any](prev, next T) bool {
	return false
}
