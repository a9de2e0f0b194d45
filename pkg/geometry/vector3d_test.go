package geometry

import (
	"math"
	"testing"
)

// floatEquals is a helper for testing scalar float values with epsilon.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

func TestNewVector(t *testing.T) {
	v := NewVector(1, 2, 3)
	if v.X != 1 || v.Y != 2 || v.Z != 3 {
		t.Errorf("NewVector(1, 2, 3) = %v; want (1, 2, 3)", v)
	}
	p := NewVectorPlanar(4, 5)
	if p.X != 4 || p.Y != 0 || p.Z != 5 {
		t.Errorf("NewVectorPlanar(4, 5) = %v; want (4, 0, 5)", p)
	}
}

func TestVector_String(t *testing.T) {
	v := Vector3D{1.234, 5.678, -0.006}
	want := "(1.23, 5.68, -0.01)"
	if got := v.String(); got != want {
		t.Errorf("Vector3D.String() = %q; want %q", got, want)
	}
}

func TestVector_Arithmetic(t *testing.T) {
	v1 := Vector3D{1, 2, 3}
	v2 := Vector3D{3, 4, 5}

	t.Run("Add", func(t *testing.T) {
		want := Vector3D{4, 6, 8}
		if got := v1.Add(v2); !got.Eq(want) {
			t.Errorf("%v.Add(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Sub", func(t *testing.T) {
		want := Vector3D{-2, -2, -2}
		if got := v1.Sub(v2); !got.Eq(want) {
			t.Errorf("%v.Sub(%v) = %v; want %v", v1, v2, got, want)
		}
	})

	t.Run("Mul", func(t *testing.T) {
		want := Vector3D{2, 4, 6}
		if got := v1.Mul(2); !got.Eq(want) {
			t.Errorf("%v.Mul(2) = %v; want %v", v1, got, want)
		}
	})
}

func TestVector_Dot(t *testing.T) {
	x := Vector3D{1, 0, 0}
	y := Vector3D{0, 1, 0}

	if got := x.Dot(y); got != 0 {
		t.Errorf("Dot orthogonal = %v; want 0", got)
	}
	if got := x.Dot(Vector3D{2, 0, 0}); got != 2 {
		t.Errorf("Dot parallel = %v; want 2", got)
	}
}

func TestVector_Magnitude(t *testing.T) {
	v := Vector3D{2, 3, 6} // 2-3-6-7

	t.Run("Len", func(t *testing.T) {
		if got := v.Len(); !floatEquals(got, 7) {
			t.Errorf("Len = %v; want 7", got)
		}
	})

	t.Run("LenSqr", func(t *testing.T) {
		if got := v.LenSqr(); got != 49 {
			t.Errorf("LenSqr = %v; want 49", got)
		}
	})

	t.Run("Normalize", func(t *testing.T) {
		got := Vector3D{0, 3, 4}.Normalize()
		want := Vector3D{0, 0.6, 0.8}
		if !got.Eq(want) {
			t.Errorf("Normalize = %v; want %v", got, want)
		}
		if !floatEquals(got.Len(), 1.0) {
			t.Errorf("Normalize length = %v; want 1", got.Len())
		}
	})

	t.Run("NormalizeZero", func(t *testing.T) {
		got := Zero.Normalize()
		if !got.IsZero() {
			t.Errorf("Normalize(0,0,0) = %v; want zero", got)
		}
	})
}

func TestVector_Distance(t *testing.T) {
	v1 := Vector3D{1, 1, 1}
	v2 := Vector3D{3, 4, 7} // 2,3,6 -> 7

	if got := v1.DistanceTo(v2); !floatEquals(got, 7) {
		t.Errorf("DistanceTo = %v; want 7", got)
	}
	if got := v1.DistanceSquaredTo(v2); got != 49 {
		t.Errorf("DistanceSquaredTo = %v; want 49", got)
	}
}

func TestVector_Utilities(t *testing.T) {
	t.Run("Lerp", func(t *testing.T) {
		got := Zero.Lerp(Vector3D{10, 10, 10}, 0.5)
		want := Vector3D{5, 5, 5}
		if !got.Eq(want) {
			t.Errorf("Lerp(0.5) = %v; want %v", got, want)
		}
	})

	t.Run("LerpBounds", func(t *testing.T) {
		a, b := Vector3D{1, 2, 3}, Vector3D{-4, 5, 9}
		if got := a.Lerp(b, 0); !got.Eq(a) {
			t.Errorf("Lerp(0) = %v; want %v", got, a)
		}
		if got := a.Lerp(b, 1); !got.Eq(b) {
			t.Errorf("Lerp(1) = %v; want %v", got, b)
		}
	})

	t.Run("Flatten", func(t *testing.T) {
		got := Vector3D{1, 9, 2}.Flatten()
		want := Vector3D{1, 0, 2}
		if got != want {
			t.Errorf("Flatten = %v; want %v", got, want)
		}
	})

	t.Run("Yaw", func(t *testing.T) {
		tests := []struct {
			v    Vector3D
			want float64
		}{
			{Vector3D{0, 0, 1}, 0},
			{Vector3D{1, 0, 0}, math.Pi / 2},
			{Vector3D{0, 0, -1}, math.Pi},
			{Vector3D{-1, 0, 0}, -math.Pi / 2},
		}
		for _, tt := range tests {
			if got := tt.v.Yaw(); !floatEquals(got, tt.want) {
				t.Errorf("%v.Yaw() = %v; want %v", tt.v, got, tt.want)
			}
		}
	})

	t.Run("IsFinite", func(t *testing.T) {
		if !(Vector3D{1, 2, 3}).IsFinite() {
			t.Error("finite vector reported non-finite")
		}
		if (Vector3D{1, math.NaN(), 3}).IsFinite() {
			t.Error("NaN vector reported finite")
		}
		if (Vector3D{math.Inf(-1), 0, 0}).IsFinite() {
			t.Error("Inf vector reported finite")
		}
	})
}

func TestVector_Eq(t *testing.T) {
	v := Vector3D{1, 2, 3}

	if !v.Eq(Vector3D{1, 2, 3}) {
		t.Error("Eq exact match failed")
	}

	vClose := Vector3D{1 + Epsilon/2, 2 - Epsilon/2, 3}
	if !v.Eq(vClose) {
		t.Error("Eq epsilon match failed")
	}

	if v.Eq(Vector3D{1, 2, 3.1}) {
		t.Error("Eq mismatch failed")
	}
}
