package clite

import "testing"

func TestKindCoerce(t *testing.T) {
	tests := []struct {
		kind Kind
		in   any
		want any
	}{
		{KindString, "hello", "hello"},
		{KindString, 42, "42"},
		{KindBool, "true", true},
		{KindBool, "0", false},
		{KindBool, true, true},
		{KindInt, "17", 17},
		{KindInt, -3, -3},
		{KindInt, 3.0, 3},
		{KindInt, "010", 10},
		{KindInt, " 42 ", 42},
		{KindFloat, "1.5", 1.5},
		{KindFloat, 2, 2.0},
	}
	for _, tc := range tests {
		got, err := tc.kind.Coerce(tc.in)
		if err != nil {
			t.Errorf("%s.Coerce(%v) error: %v", tc.kind, tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s.Coerce(%v) = %#v, want %#v", tc.kind, tc.in, got, tc.want)
		}
	}
}

func TestKindCoerce_Invalid(t *testing.T) {
	tests := []struct {
		kind Kind
		in   any
	}{
		{KindBool, "yes please"},
		{KindInt, "abc"},
		{KindInt, "1.5"},
		{KindInt, "0x10"},
		{KindInt, 3.7},
		{KindFloat, "fast"},
	}
	for _, tc := range tests {
		_, err := tc.kind.Coerce(tc.in)
		if err == nil {
			t.Errorf("%s.Coerce(%v) expected error", tc.kind, tc.in)
			continue
		}
		if want := "expected " + tc.kind.String(); err.Error()[:len(want)] != want {
			t.Errorf("%s.Coerce(%v) error = %q, want prefix %q", tc.kind, tc.in, err, want)
		}
	}
}
