package math

import (
	"math"
	"testing"
)

const epsilon = 1e-5

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < epsilon
}

func vec3AlmostEqual(a, b Vec3) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y) && almostEqual(a.Z, b.Z)
}

func TestVec3_Normalize(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want Vec3
	}{
		{"unit x", Vec3{1, 0, 0}, Vec3{1, 0, 0}},
		{"scaled y", Vec3{0, 5, 0}, Vec3{0, 1, 0}},
		{"diagonal", Vec3{3, 0, 4}, Vec3{0.6, 0, 0.8}},
		{"zero vector", Vec3{}, Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Normalize()
			if !vec3AlmostEqual(got, tt.want) {
				t.Errorf("Normalize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3_MinMax(t *testing.T) {
	a := Vec3{1, 5, -3}
	b := Vec3{2, -1, 0}

	if got := a.Min(b); !vec3AlmostEqual(got, Vec3{1, -1, -3}) {
		t.Errorf("Min = %v", got)
	}
	if got := a.Max(b); !vec3AlmostEqual(got, Vec3{2, 5, 0}) {
		t.Errorf("Max = %v", got)
	}
}

func TestVec3_Distance(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 6, 3}

	if got := a.Distance(b); !almostEqual(got, 5) {
		t.Errorf("Distance = %f, want 5", got)
	}
}

func TestVec2_Length(t *testing.T) {
	if got := (Vec2{3, 4}).Length(); !almostEqual(got, 5) {
		t.Errorf("Length = %f, want 5", got)
	}
}
