package types

// OrderSpacing is the gap left between consecutive order keys so that later
// inserts can land between neighbors without renumbering.
const OrderSpacing = 5000

// AppendOrder returns the order key for a record appended after the given
// orders (ascending). An empty list starts at 0.
func AppendOrder(orders []int64) int64 {
	if len(orders) == 0 {
		return 0
	}
	return orders[len(orders)-1] + OrderSpacing
}

// PrependOrder returns the order key for a record placed before all given
// orders (ascending). An empty list starts at 0.
func PrependOrder(orders []int64) int64 {
	if len(orders) == 0 {
		return 0
	}
	return orders[0] - OrderSpacing
}

// OrderBetween returns a key strictly between lower and upper. It reports
// false when no integer room remains (upper-lower <= 1); the caller must
// then renumber the whole list with RenumberOrders and issue the result as
// one combined update, not per-item writes.
func OrderBetween(lower, upper int64) (int64, bool) {
	if upper-lower <= 1 {
		return 0, false
	}
	return lower + (upper-lower)/2, true
}

// RenumberOrders produces n fresh evenly spaced keys starting at 0
func RenumberOrders(n int) []int64 {
	orders := make([]int64, n)
	for i := range orders {
		orders[i] = int64(i) * OrderSpacing
	}
	return orders
}

// SpliceMove removes the element at src and reinserts it at dst, returning
// a new slice. dst is clamped to [0, len-1]; moving to the same index or
// moving the only element is a no-op. Out-of-range src returns the input
// unchanged. This is the ordering policy for fields, whose order is implicit
// in array position rather than a numeric key.
func SpliceMove[T any](items []T, src, dst int) []T {
	if src < 0 || src >= len(items) {
		return items
	}
	if dst < 0 {
		dst = 0
	}
	if dst > len(items)-1 {
		dst = len(items) - 1
	}
	if src == dst || len(items) < 2 {
		return items
	}

	out := make([]T, 0, len(items))
	out = append(out, items[:src]...)
	out = append(out, items[src+1:]...)
	moved := items[src]
	out = append(out[:dst], append([]T{moved}, out[dst:]...)...)
	return out
}
