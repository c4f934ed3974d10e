package value

import (
	"math"
	"testing"
)

func TestSameValue_NaNEqualsItself(t *testing.T) {
	nan := Num(math.NaN())
	if !SameValue(nan, nan) {
		t.Fatalf("SameValue(NaN, NaN) must be true")
	}
}

func TestSameValue_SignedZero(t *testing.T) {
	pz, nz := Num(0), Num(math.Copysign(0, -1))
	if SameValue(pz, nz) {
		t.Fatalf("SameValue(+0, -0) must be false")
	}
}

func TestStrictEqual_SignedZero(t *testing.T) {
	pz, nz := Num(0), Num(math.Copysign(0, -1))
	if !StrictEqual(pz, nz) {
		t.Fatalf("StrictEqual(+0, -0) must be true")
	}
}

func TestStrictEqual_NaN(t *testing.T) {
	nan := Num(math.NaN())
	if StrictEqual(nan, nan) {
		t.Fatalf("StrictEqual(NaN, NaN) must be false")
	}
}

func TestIndexStringRoundTrip(t *testing.T) {
	for _, n := range []uint32{0, 1, 42, 4294967294} {
		s := NumberToString(float64(n))
		v := Str(s)
		if !v.IsIndexString() {
			t.Fatalf("expected %q to classify as an index string", s)
		}
		if v.IndexValue() != n {
			t.Fatalf("expected index %d, got %d", n, v.IndexValue())
		}
	}
}

func TestStringToIndexRejectsNonCanonical(t *testing.T) {
	for _, s := range []string{"01", "-1", "1.0", "4294967295", "abc", ""} {
		if Str(s).IsIndexString() {
			t.Fatalf("expected %q to NOT classify as an index string", s)
		}
	}
}

func TestToBoolean(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{Undef(), false},
		{Null_(), false},
		{Bool(false), false},
		{Num(0), false},
		{Num(math.NaN()), false},
		{Str(""), false},
		{Bool(true), true},
		{Num(1), true},
		{Str("0"), true}, // non-empty string is truthy even if it reads as "0"
	}
	for _, c := range cases {
		if got := ToBoolean(c.v); got != c.want {
			t.Fatalf("ToBoolean(%v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestLooseEqual_NumberString(t *testing.T) {
	eq, err := LooseEqual(Num(1), Str("1"))
	if err != nil || !eq {
		t.Fatalf("1 == \"1\" should be true, got %v err=%v", eq, err)
	}
}

func TestLooseEqual_NullUndefined(t *testing.T) {
	eq, err := LooseEqual(Null_(), Undef())
	if err != nil || !eq {
		t.Fatalf("null == undefined should be true")
	}
}

func TestNumberToStringIntegral(t *testing.T) {
	if got := NumberToString(3); got != "3" {
		t.Fatalf("expected \"3\", got %q", got)
	}
}
