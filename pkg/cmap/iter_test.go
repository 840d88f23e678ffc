package cmap

import (
	"reflect"
	"testing"
)

func TestRange(t *testing.T) {
	m := New[int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	sum := 0
	m.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	if sum != 6 {
		t.Errorf("sum = %d, want 6", sum)
	}
}

func TestRange_Stop(t *testing.T) {
	m := New[int]()
	for _, k := range []string{"a", "b", "c", "d"} {
		m.Set(k, 1)
	}

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("visited = %d, want 1", visited)
	}
}

func TestKeys(t *testing.T) {
	m := New[string]()
	m.Set("user.theme", "x")
	m.Set("user.lang", "x")
	m.Set("cart", "x")

	tests := []struct {
		prefix string
		want   []string
	}{
		{"", []string{"cart", "user.lang", "user.theme"}},
		{"user.", []string{"user.lang", "user.theme"}},
		{"none", []string{}},
	}

	for _, tt := range tests {
		t.Run("prefix="+tt.prefix, func(t *testing.T) {
			got := m.Keys(tt.prefix)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Keys(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}
