package checksum

import "testing"

func TestSumDeterministic(t *testing.T) {
	a := Sum([]byte("hello"))
	b := Sum([]byte("hello"))
	if a != b {
		t.Errorf("same input produced different sums: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("sum length = %d, want 64", len(a))
	}
}

func TestSumDiffers(t *testing.T) {
	if Sum([]byte("a")) == Sum([]byte("b")) {
		t.Error("different inputs produced the same sum")
	}
}

func TestShort(t *testing.T) {
	s := Short([]byte("hello"))
	if len(s) != 12 {
		t.Errorf("short length = %d, want 12", len(s))
	}
	if Sum([]byte("hello"))[:12] != s {
		t.Error("Short is not a prefix of Sum")
	}
}
