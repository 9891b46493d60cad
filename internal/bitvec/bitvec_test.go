package bitvec

import "testing"

func TestSetGet(t *testing.T) {
	v := New(12)
	v.Set(0, true)
	v.Set(11, true)
	if !v.Get(0) || !v.Get(11) {
		t.Fatal("expected bits 0 and 11 set")
	}
	for i := 1; i < 11; i++ {
		if v.Get(i) {
			t.Fatalf("bit %d should be unset", i)
		}
	}
}

func TestActionApply(t *testing.T) {
	v := New(8)
	a := Action{Offset: 2, Width: 3, Value: 0x5} // 0b101
	if err := a.Apply(v); err != nil {
		t.Fatal(err)
	}
	want := []bool{false, false, true, false, true, false, false, false}
	for i, w := range want {
		if v.Get(i) != w {
			t.Errorf("bit %d = %v, want %v", i, v.Get(i), w)
		}
	}
}

func TestActionApplyOutOfBounds(t *testing.T) {
	v := New(4)
	a := Action{Offset: 2, Width: 4, Value: 0}
	if err := a.Apply(v); err == nil {
		t.Fatal("expected BoundsError")
	}
}

func TestActionIdempotentReapplication(t *testing.T) {
	actions := []Action{{0, 3, 0x5}, {5, 2, 0x3}}
	v1 := New(8)
	v2 := New(8)
	for _, a := range actions {
		a.Apply(v1)
	}
	for _, a := range actions {
		a.Apply(v2)
	}
	for i := 0; i < 8; i++ {
		if v1.Get(i) != v2.Get(i) {
			t.Fatalf("bit %d differs between re-application", i)
		}
	}
}

func TestRotateActionApply(t *testing.T) {
	src := New(4)
	src.Set(1, true)
	src.Set(3, true)
	dst := New(8)
	a := RotateAction{Offset: 4, Width: 4, Begin: 0}
	if err := a.Apply(dst, src); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		if dst.Get(4+i) != src.Get(i) {
			t.Errorf("dst bit %d = %v, want %v", 4+i, dst.Get(4+i), src.Get(i))
		}
	}
}

func TestEachReverseOrder(t *testing.T) {
	v := New(4)
	v.Set(0, true)
	v.Set(2, true)
	var seen []int
	v.EachReverse(func(i int, val bool) {
		seen = append(seen, i)
	})
	want := []int{3, 2, 1, 0}
	for i, w := range want {
		if seen[i] != w {
			t.Fatalf("order[%d] = %d, want %d", i, seen[i], w)
		}
	}
}
