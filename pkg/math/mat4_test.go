package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
	if !m.IsIdentity(0) {
		t.Error("IsIdentity should hold for Identity()")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation lives in column 3 (indices 12, 13, 14)
	if got := m.Translation(); got != (Vec3{5, 10, 15}) {
		t.Errorf("Translate: got %v, want (5, 10, 15)", got)
	}
}

func TestTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
		p    Vec3
		want Vec3
	}{
		{"translate", Translate(10, 20, 30), Vec3{1, 2, 3}, Vec3{11, 22, 33}},
		{"scale", Scale(2, 2, 2), Vec3{1, 2, 3}, Vec3{2, 4, 6}},
		{"rotate y 90", RotateY(float32(math.Pi / 2)), Vec3{1, 0, 0}, Vec3{0, 0, -1}},
		{"rotate x 90", RotateX(float32(math.Pi / 2)), Vec3{0, 1, 0}, Vec3{0, 0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.p)
			if !got.ApproxEqual(tt.want, 0.001) {
				t.Errorf("TransformPoint() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEulerXYZOrder(t *testing.T) {
	deg := Vec3{30, 45, 60}
	r := deg.Radians()
	want := RotateX(r.X).Mul(RotateY(r.Y)).Mul(RotateZ(r.Z))

	if got := EulerXYZ(deg); !got.ApproxEqual(want, 1e-6) {
		t.Errorf("EulerXYZ = %v, want %v", got, want)
	}
}

func TestScaleColumns(t *testing.T) {
	m := Identity()
	m.ScaleColumns(Vec3{2, 3, 4})

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("ScaleColumns diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name string
		t    Vec3
		r    Quat
		s    Vec3
	}{
		{"identity", Vec3{}, QuatIdentity(), Vec3{1, 1, 1}},
		{"translate only", Vec3{1, -2, 3}, QuatIdentity(), Vec3{1, 1, 1}},
		{"full", Vec3{4, 5, 6}, QuatFromAxisAngle(Vec3{0, 1, 0}, float32(math.Pi/3)), Vec3{2, 3, 4}},
		{"tilted axis", Vec3{}, QuatFromAxisAngle(Vec3{1, 1, 0}.Normalize(), 1.1), Vec3{0.5, 0.5, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, r, tr := Compose(tt.t, tt.r, tt.s).Decompose()
			if !s.ApproxEqual(tt.s, 1e-4) {
				t.Errorf("scale = %v, want %v", s, tt.s)
			}
			if !r.SameRotation(tt.r, 1e-4) {
				t.Errorf("rotation = %v, want %v", r, tt.r)
			}
			if !tr.ApproxEqual(tt.t, 1e-5) {
				t.Errorf("translation = %v, want %v", tr, tt.t)
			}
		})
	}
}

func TestDecomposeMirrored(t *testing.T) {
	s, _, _ := Scale(1, 1, -1).Decompose()
	if s.X > 0 || s.Y > 0 || s.Z > 0 {
		t.Errorf("negative determinant should fold into scale, got %v", s)
	}
	if abs(abs(s.X)-1) > 1e-6 {
		t.Errorf("scale magnitude = %v, want 1", s.X)
	}
}

func TestInverse(t *testing.T) {
	m := Compose(Vec3{1, 2, 3}, QuatFromAxisAngle(Vec3{0, 0, 1}, 0.5), Vec3{2, 2, 2})
	if got := m.Mul(m.Inverse()); !got.IsIdentity(1e-5) {
		t.Errorf("M * M^-1 = %v, want identity", got)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
