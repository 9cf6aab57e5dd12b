package runtime

import (
	"strings"
	"testing"
)

func TestTruthiness(t *testing.T) {
	falsy := []Value{NothingVal{}, NullVal{}, BoolVal(false), NumberVal(0), StringVal("")}
	for _, v := range falsy {
		if IsTruthy(v) {
			t.Errorf("%s %v should be falsy", v.TypeName(), v)
		}
	}
	truthy := []Value{
		BoolVal(true), NumberVal(1), NumberVal(-0.5), StringVal("x"),
		&ArrayVal{}, &ClassVal{Name: "A"},
	}
	for _, v := range truthy {
		if !IsTruthy(v) {
			t.Errorf("%s %v should be truthy", v.TypeName(), v)
		}
	}
}

func TestPrimitiveEqualityReflexive(t *testing.T) {
	prims := []Value{NothingVal{}, BoolVal(true), NumberVal(3.5), StringVal("s")}
	for _, v := range prims {
		if !ValuesEqual(v, v) {
			t.Errorf("%v should equal itself", v)
		}
	}
}

func TestObjectEqualityIsIdentity(t *testing.T) {
	a := &ArrayVal{Elements: []Value{NumberVal(1)}}
	b := &ArrayVal{Elements: []Value{NumberVal(1)}}
	if ValuesEqual(a, b) {
		t.Errorf("distinct arrays with equal elements must not compare equal")
	}
	if !ValuesEqual(a, a) {
		t.Errorf("same reference must compare equal")
	}

	x := &InstanceVal{Class: &ClassVal{Name: "A"}, Fields: map[string]Value{}}
	y := &InstanceVal{Class: x.Class, Fields: map[string]Value{}}
	if ValuesEqual(x, y) {
		t.Errorf("distinct instances must not compare equal")
	}
}

func TestCrossTypeInequality(t *testing.T) {
	if ValuesEqual(NumberVal(0), BoolVal(false)) {
		t.Errorf("0 must not equal false")
	}
	if ValuesEqual(StringVal("1"), NumberVal(1)) {
		t.Errorf("\"1\" must not equal 1")
	}
	if ValuesEqual(NothingVal{}, BoolVal(false)) {
		t.Errorf("nothing must not equal false")
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{55, "55"},
		{0, "0"},
		{-7, "-7"},
		{4.6, "4.6"},
		{4.6000000000000005, "4.6"},
		{3.3333333333333335, "3.333333"},
		{0.30000000000000004, "0.3"},
		{1.5, "1.5"},
		{100.25, "100.25"},
	}
	for _, tc := range cases {
		if got := FormatNumber(tc.in); got != tc.want {
			t.Errorf("FormatNumber(%v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestFormatNumberNoTrailingJunk(t *testing.T) {
	inputs := []float64{1, 0.5, 12.125, 1e6, 0.000001, 33.3}
	for _, f := range inputs {
		s := FormatNumber(f)
		if strings.HasSuffix(s, ".") {
			t.Errorf("FormatNumber(%v) = %q has a trailing '.'", f, s)
		}
		if strings.Contains(s, ".") && strings.HasSuffix(s, "0") {
			t.Errorf("FormatNumber(%v) = %q has a trailing zero", f, s)
		}
	}
}
