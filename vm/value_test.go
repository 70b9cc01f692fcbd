package vm

import (
	"math"
	"testing"
)

// ---------------------------------------------------------------------------
// Float tests
// ---------------------------------------------------------------------------

func TestFloatRoundTrip(t *testing.T) {
	tests := []float64{
		0.0,
		1.0,
		-1.0,
		3.14159265358979,
		math.MaxFloat64,
		-math.SmallestNonzeroFloat64,
		math.Inf(1),
		math.Inf(-1),
	}

	for _, f := range tests {
		v := FromFloat64(f)
		if !v.IsFloat() {
			t.Errorf("FromFloat64(%v).IsFloat() = false, want true", f)
			continue
		}
		if got := v.Float64(); got != f {
			t.Errorf("FromFloat64(%v).Float64() = %v, want %v", f, got, f)
		}
	}
}

func TestFloatNaN(t *testing.T) {
	v := FromFloat64(math.NaN())
	if !v.IsFloat() {
		t.Error("NaN should be treated as float")
	}
	if !math.IsNaN(v.Float64()) {
		t.Error("NaN roundtrip failed")
	}
}

// ---------------------------------------------------------------------------
// SmallInt tests
// ---------------------------------------------------------------------------

func TestSmallIntRoundTrip(t *testing.T) {
	tests := []int64{0, 1, -1, 42, -1000000, MaxSmallInt, MinSmallInt}

	for _, n := range tests {
		v := FromSmallInt(n)
		if !v.IsSmallInt() {
			t.Errorf("FromSmallInt(%d).IsSmallInt() = false, want true", n)
			continue
		}
		if got := v.SmallInt(); got != n {
			t.Errorf("FromSmallInt(%d).SmallInt() = %d, want %d", n, got, n)
		}
	}
}

func TestTryFromSmallInt(t *testing.T) {
	v, ok := TryFromSmallInt(42)
	if !ok || v.SmallInt() != 42 {
		t.Error("TryFromSmallInt(42) should succeed")
	}
	if _, ok := TryFromSmallInt(MaxSmallInt + 1); ok {
		t.Error("TryFromSmallInt(MaxSmallInt+1) should return false")
	}
}

// ---------------------------------------------------------------------------
// Handle tests
// ---------------------------------------------------------------------------

func TestHandleRoundTrip(t *testing.T) {
	tests := []Handle{
		{index: 0, gen: 1},
		{index: 7, gen: 3},
		{index: math.MaxUint32, gen: math.MaxUint16},
	}

	for _, h := range tests {
		v := FromHandle(h)
		if !v.IsObject() {
			t.Errorf("FromHandle(%s).IsObject() = false", h)
			continue
		}
		if v.IsFloat() || v.IsSmallInt() || v.IsString() || v.IsSpecial() {
			t.Errorf("FromHandle(%s) reports a second type: %s", h, v.TypeName())
		}
		if got := v.Handle(); got != h {
			t.Errorf("FromHandle(%s).Handle() = %s", h, got)
		}
	}
}

func TestHandleGenerationDistinguishesValues(t *testing.T) {
	a := FromHandle(Handle{index: 5, gen: 1})
	b := FromHandle(Handle{index: 5, gen: 2})
	if a == b {
		t.Error("handles with different generations should not be equal")
	}
}

// ---------------------------------------------------------------------------
// Special values
// ---------------------------------------------------------------------------

func TestSpecials(t *testing.T) {
	specials := []Value{Undefined, Null, True, False}
	for i, a := range specials {
		if !a.IsSpecial() {
			t.Errorf("%s.IsSpecial() = false", a)
		}
		if a.IsFloat() {
			t.Errorf("%s.IsFloat() = true", a)
		}
		for j, b := range specials {
			if i != j && a == b {
				t.Errorf("%s == %s", a, b)
			}
		}
	}
	if !Undefined.IsUndefined() || Null.IsUndefined() {
		t.Error("IsUndefined mismatch")
	}
	if FromBool(true) != True || FromBool(false) != False {
		t.Error("FromBool mismatch")
	}
}

func TestDistinctTypes(t *testing.T) {
	v1 := FromSmallInt(42)
	v2 := FromStringID(42)
	v3 := FromFloat64(42.0)
	v4 := FromHandle(Handle{index: 0, gen: 42})

	vals := []Value{v1, v2, v3, v4}
	for i := range vals {
		for j := range vals {
			if i != j && vals[i] == vals[j] {
				t.Errorf("%s should not equal %s", vals[i].TypeName(), vals[j].TypeName())
			}
		}
	}
}

func TestPanicsOnWrongType(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"Float64 on SmallInt", func() { FromSmallInt(1).Float64() }},
		{"SmallInt on Float", func() { FromFloat64(1).SmallInt() }},
		{"Handle on SmallInt", func() { FromSmallInt(1).Handle() }},
		{"StringID on Undefined", func() { Undefined.StringID() }},
		{"Bool on Null", func() { Null.Bool() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("%s should panic", tt.name)
				}
			}()
			tt.fn()
		})
	}
}

func TestStringTable(t *testing.T) {
	st := NewStringTable()
	a := st.Intern("alpha")
	b := st.Intern("beta")
	if a == b {
		t.Fatal("distinct strings share an ID")
	}
	if again := st.Intern("alpha"); again != a {
		t.Errorf("Intern(alpha) = %d, want %d", again, a)
	}
	if s, ok := st.Lookup(b); !ok || s != "beta" {
		t.Errorf("Lookup(%d) = %q, %v", b, s, ok)
	}
	if _, ok := st.Lookup(99); ok {
		t.Error("Lookup of unknown ID should fail")
	}
	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}
}
