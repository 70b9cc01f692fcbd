package vm

import (
	"errors"
	"testing"
)

func TestAccessorStateTransitions(t *testing.T) {
	tests := []struct {
		from AccessorState
		half accessorHalf
		want AccessorState
	}{
		{AccessorAbsent, getterHalf, AccessorGetterOnly},
		{AccessorAbsent, setterHalf, AccessorSetterOnly},
		{AccessorGetterOnly, setterHalf, AccessorFull},
		{AccessorSetterOnly, getterHalf, AccessorFull},
		{AccessorGetterOnly, getterHalf, AccessorGetterOnly},
		{AccessorSetterOnly, setterHalf, AccessorSetterOnly},
		{AccessorFull, getterHalf, AccessorFull},
		{AccessorFull, setterHalf, AccessorFull},
	}

	for _, tt := range tests {
		if got := tt.from.next(tt.half); got != tt.want {
			t.Errorf("%s --%s--> %s, want %s", tt.from, tt.half, got, tt.want)
		}
	}
}

func TestAccessorStateHalves(t *testing.T) {
	tests := []struct {
		state          AccessorState
		getter, setter bool
	}{
		{AccessorAbsent, false, false},
		{AccessorGetterOnly, true, false},
		{AccessorSetterOnly, false, true},
		{AccessorFull, true, true},
	}
	for _, tt := range tests {
		if tt.state.HasGetter() != tt.getter || tt.state.HasSetter() != tt.setter {
			t.Errorf("%s: HasGetter=%v HasSetter=%v", tt.state, tt.state.HasGetter(), tt.state.HasSetter())
		}
	}
}

func TestReinstallReplacesOnlyItsHalf(t *testing.T) {
	r := NewPropertyRegistry()
	name := PublicName("v")
	g1, g2, s := &recorder{}, &recorder{}, &recorder{}

	for _, step := range []func() error{
		func() error { return r.InstallGetter(name, g1) },
		func() error { return r.InstallSetter(name, s) },
		func() error { return r.InstallGetter(name, g2) },
	} {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}

	p, ok := r.Lookup(name)
	if !ok {
		t.Fatal("property missing")
	}
	if p.Getter() != Callable(g2) {
		t.Error("getter should be replaced by the second install")
	}
	if p.Setter() != Callable(s) {
		t.Error("setter should survive a getter reinstall")
	}
	if p.State() != AccessorFull {
		t.Errorf("state = %s, want full", p.State())
	}
}

func TestRegistryInstallReplaces(t *testing.T) {
	r := NewPropertyRegistry()
	name := PublicName("k")

	r.InstallMethod(name, &recorder{})
	r.InstallDynamic(name, FromSmallInt(1))
	p, _ := r.Lookup(name)
	if p.Kind() != KindDynamic || p.StoredValue() != FromSmallInt(1) {
		t.Errorf("got %s %s, want dynamic 1", p.Kind(), p.StoredValue())
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}

	if err := r.InstallSetter(name, &recorder{}); !errors.Is(err, ErrNotVirtual) {
		t.Errorf("InstallSetter over dynamic: %v", err)
	}
}

func TestRegistryNamesAreSorted(t *testing.T) {
	r := NewPropertyRegistry()
	r.InstallDynamic(PublicName("b"), True)
	r.InstallDynamic(PublicName("a"), True)
	r.InstallDynamic(NewQName(Namespace{Kind: NamespacePrivate}, "a"), True)

	names := r.Names()
	want := []string{"a", "b", "private::a"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v", names)
	}
	for i, n := range names {
		if n.String() != want[i] {
			t.Errorf("Names()[%d] = %s, want %s", i, n, want[i])
		}
	}
}

func TestNilAccessorPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("installing a nil getter should panic")
		}
	}()
	_ = NewPropertyRegistry().InstallGetter(PublicName("x"), nil)
}

func TestQNameString(t *testing.T) {
	tests := []struct {
		name QName
		want string
	}{
		{PublicName("x"), "x"},
		{NewQName(PublicNamespace("flash.events"), "Event"), "flash.events::Event"},
		{NewQName(Namespace{Kind: NamespaceProtected}, "y"), "protected::y"},
	}
	for _, tt := range tests {
		if got := tt.name.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
