package irr

import (
	"sort"

	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// Animator is one animator block of a node.
type Animator struct {
	Speed float32
	Loop  bool
	Kind  AnimatorKind
}

// DefaultTightness is the spline tightness used when none is given.
const DefaultTightness = 0.5

func newAnimator() Animator {
	return Animator{Speed: 1, Kind: &UnknownAnimator{}}
}

// AnimatorKind is the variant part of an Animator. The set of variants is
// closed: RotationAnimator, FlyCircleAnimator, FlyStraightAnimator,
// FollowSplineAnimator and UnknownAnimator.
type AnimatorKind interface {
	TypeName() string
	animatorKind()
}

// RotationAnimator spins a node by Rate degrees per tick around each axis.
type RotationAnimator struct {
	Rate mathx.Vec3
}

// FlyCircleAnimator moves a node on a circle.
type FlyCircleAnimator struct {
	Center    mathx.Vec3
	Direction mathx.Vec3 // unit normal of the circle plane
	Radius    float32
}

// FlyStraightAnimator moves a node from Start to End.
type FlyStraightAnimator struct {
	Start      mathx.Vec3
	End        mathx.Vec3
	TimeForWay int // milliseconds
}

// SplinePoint is a control point; Index is the N of its PointN name.
type SplinePoint struct {
	Index int
	Value mathx.Vec3
}

// FollowSplineAnimator moves a node along a closed Hermite spline.
type FollowSplineAnimator struct {
	Tightness float32
	Points    []SplinePoint
}

// UnknownAnimator is an animator whose type was missing or not recognized.
type UnknownAnimator struct {
	Type string
}

func (*RotationAnimator) TypeName() string     { return "rotation" }
func (*FlyCircleAnimator) TypeName() string    { return "flyCircle" }
func (*FlyStraightAnimator) TypeName() string  { return "flyStraight" }
func (*FollowSplineAnimator) TypeName() string { return "followSpline" }
func (u *UnknownAnimator) TypeName() string    { return u.Type }

func (*RotationAnimator) animatorKind()     {}
func (*FlyCircleAnimator) animatorKind()    {}
func (*FlyStraightAnimator) animatorKind()  {}
func (*FollowSplineAnimator) animatorKind() {}
func (*UnknownAnimator) animatorKind()      {}

// newAnimatorKind maps a Type value to a fresh variant. Matching is exact,
// as in the files written by the Irrlicht editor.
func newAnimatorKind(typeName string) (AnimatorKind, bool) {
	switch typeName {
	case "rotation":
		return &RotationAnimator{}, true
	case "flyCircle":
		return &FlyCircleAnimator{Direction: mathx.Vec3{Y: 1}}, true
	case "flyStraight":
		return &FlyStraightAnimator{}, true
	case "followSpline":
		return &FollowSplineAnimator{Tightness: DefaultTightness}, true
	default:
		return &UnknownAnimator{Type: typeName}, false
	}
}

// sortedPoints returns the control points ordered by index.
func (a *FollowSplineAnimator) sortedPoints() []mathx.Vec3 {
	pts := make([]SplinePoint, len(a.Points))
	copy(pts, a.Points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Index < pts[j].Index })
	out := make([]mathx.Vec3, len(pts))
	for i, p := range pts {
		out[i] = p.Value
	}
	return out
}
