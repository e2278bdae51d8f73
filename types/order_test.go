package types

import (
	"reflect"
	"testing"
)

func TestAppendOrder(t *testing.T) {
	tests := []struct {
		name   string
		orders []int64
		want   int64
	}{
		{"empty list starts at zero", nil, 0},
		{"appends spacing after last", []int64{0, 5000, 10000}, 15000},
		{"single element", []int64{42}, 42 + OrderSpacing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AppendOrder(tt.orders); got != tt.want {
				t.Errorf("AppendOrder(%v) = %d, want %d", tt.orders, got, tt.want)
			}
		})
	}
}

func TestPrependOrder(t *testing.T) {
	tests := []struct {
		name   string
		orders []int64
		want   int64
	}{
		{"empty list starts at zero", nil, 0},
		{"prepends spacing before first", []int64{0, 5000}, -5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrependOrder(tt.orders); got != tt.want {
				t.Errorf("PrependOrder(%v) = %d, want %d", tt.orders, got, tt.want)
			}
		})
	}
}

func TestOrderBetween(t *testing.T) {
	tests := []struct {
		name   string
		lower  int64
		upper  int64
		want   int64
		wantOK bool
	}{
		{"wide gap", 5000, 10000, 7500, true},
		{"gap of two", 10, 12, 11, true},
		{"adjacent keys exhausted", 10, 11, 0, false},
		{"equal keys exhausted", 10, 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := OrderBetween(tt.lower, tt.upper)
			if ok != tt.wantOK {
				t.Fatalf("OrderBetween(%d, %d) ok = %v, want %v", tt.lower, tt.upper, ok, tt.wantOK)
			}
			if ok && (got <= tt.lower || got >= tt.upper) {
				t.Errorf("OrderBetween(%d, %d) = %d, not strictly between", tt.lower, tt.upper, got)
			}
			if ok && got != tt.want {
				t.Errorf("OrderBetween(%d, %d) = %d, want %d", tt.lower, tt.upper, got, tt.want)
			}
		})
	}
}

// Repeated midpoint insertion between two keys 5000 apart must survive at
// least 12 rounds before the allocator reports exhaustion, and every
// produced key must stay strictly monotonic with no duplicates.
func TestOrderBetweenDensity(t *testing.T) {
	lower, upper := int64(0), int64(5000)
	var produced []int64

	inserts := 0
	for {
		mid, ok := OrderBetween(lower, upper)
		if !ok {
			break
		}
		if mid <= lower || mid >= upper {
			t.Fatalf("insert %d: key %d escapes (%d, %d)", inserts+1, mid, lower, upper)
		}
		produced = append(produced, mid)
		lower = mid
		inserts++
	}

	if inserts < 12 {
		t.Errorf("expected at least 12 midpoint inserts before exhaustion, got %d", inserts)
	}
	if _, ok := OrderBetween(lower, upper); ok {
		t.Error("allocator must report exhaustion once the gap closes")
	}

	seen := make(map[int64]bool)
	for _, key := range produced {
		if seen[key] {
			t.Errorf("duplicate order key %d", key)
		}
		seen[key] = true
	}
}

func TestRenumberOrders(t *testing.T) {
	got := RenumberOrders(4)
	want := []int64{0, 5000, 10000, 15000}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RenumberOrders(4) = %v, want %v", got, want)
	}
	if len(RenumberOrders(0)) != 0 {
		t.Error("RenumberOrders(0) should be empty")
	}
}

func TestSpliceMove(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		src   int
		dst   int
		want  []string
	}{
		{"forward move", []string{"a", "b", "c", "d"}, 0, 2, []string{"b", "c", "a", "d"}},
		{"backward move", []string{"a", "b", "c", "d"}, 3, 1, []string{"a", "d", "b", "c"}},
		{"same index is a no-op", []string{"a", "b"}, 1, 1, []string{"a", "b"}},
		{"only element is a no-op", []string{"a"}, 0, 0, []string{"a"}},
		{"destination clamped high", []string{"a", "b", "c"}, 0, 9, []string{"b", "c", "a"}},
		{"destination clamped low", []string{"a", "b", "c"}, 2, -4, []string{"c", "a", "b"}},
		{"out of range source unchanged", []string{"a", "b"}, 5, 0, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SpliceMove(tt.items, tt.src, tt.dst)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SpliceMove(%v, %d, %d) = %v, want %v", tt.items, tt.src, tt.dst, got, tt.want)
			}
		})
	}
}
