package irr

import (
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/pkg/asset"
	"github.com/Faultbox/irrscene/pkg/diag"
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// SplineCycleSeconds is the length of a sampled spline track.
const SplineCycleSeconds = 15

// Track is a sampled transform sequence at one sample per tick.
type Track struct {
	Matrices  []mathx.Mat4
	PostState asset.AnimBehaviour
}

// Resolve samples the animators of one node into a keyframe channel. The
// baseline is the node's local transform. It returns nil when no animator
// yields samples.
//
// Only one animator per node is honoured: when several produce tracks the
// first one wins and the rest are reported, since their composition order
// is not defined by the format.
func Resolve(nodeName string, anims []Animator, baseline mathx.Mat4, fps int, sink *diag.Sink) *asset.NodeAnim {
	if len(anims) == 0 {
		return nil
	}
	if sink == nil {
		sink = diag.Discard()
	}

	var tracks []*Track
	for i := range anims {
		if t := sampleAnimator(nodeName, &anims[i], baseline, fps, sink); t != nil && len(t.Matrices) > 0 {
			tracks = append(tracks, t)
		}
	}
	if len(tracks) == 0 {
		return nil
	}
	if len(tracks) > 1 {
		sink.Warn("several animators on one node, only the first is used",
			zap.String("node", nodeName), zap.Int("animators", len(tracks)))
	}

	return decompose(nodeName, tracks[0])
}

func sampleAnimator(nodeName string, a *Animator, baseline mathx.Mat4, fps int, sink *diag.Sink) *Track {
	switch k := a.Kind.(type) {
	case *RotationAnimator:
		t := sampleRotation(k.Rate, baseline, fps)
		if t == nil {
			sink.Debug("rotation animator has no usable period", zap.String("node", nodeName))
		}
		return t
	case *FollowSplineAnimator:
		pts := k.sortedPoints()
		if len(pts) == 0 {
			sink.Warn("spline animator without control points", zap.String("node", nodeName))
			return nil
		}
		return sampleSpline(pts, k.Tightness, a.Speed, baseline, fps)
	case *FlyCircleAnimator, *FlyStraightAnimator:
		sink.Warn("fly animators are not sampled", zap.String("node", nodeName), zap.String("type", k.TypeName()))
		return nil
	case *UnknownAnimator:
		sink.Warn("skipping unknown animator", zap.String("node", nodeName), zap.String("type", k.Type))
		return nil
	default:
		sink.Warn("skipping unsupported animator", zap.String("node", nodeName))
		return nil
	}
}

// snapAngle rounds small angles up so the period search stays short.
func snapAngle(a int) int {
	switch {
	case a < 3:
		return 3
	case a < 10:
		return 10
	case a < 20:
		return 20
	case a < 30:
		return 30
	default:
		return a
	}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

// rotationPeriod returns the least common multiple of 360 and the snapped
// per-axis angles, and the largest number of turns any axis needs to reach it.
func rotationPeriod(rate mathx.Vec3) (period int, turns float64) {
	period = 360
	var snapped [3]int
	for i, r := range rate.Array() {
		a := int(r)
		if a < 0 {
			a = -a
		}
		a %= 360
		if a == 0 {
			continue
		}
		snapped[i] = snapAngle(a)
		period = lcm(period, snapped[i])
	}
	for _, a := range snapped {
		if a != 0 {
			turns = math.Max(turns, float64(period)/float64(a))
		}
	}
	return period, turns
}

func sampleRotation(rate mathx.Vec3, baseline mathx.Mat4, fps int) *Track {
	period, turns := rotationPeriod(rate)
	if period == 360 {
		return nil
	}

	n := int(math.Ceil(float64(fps) * turns))
	t := &Track{Matrices: make([]mathx.Mat4, n), PostState: asset.BehaviourRepeat}
	var angle mathx.Vec3
	for i := range t.Matrices {
		t.Matrices[i] = baseline.Mul(mathx.EulerXYZ(angle))
		angle = wrapDegrees(angle.Add(rate))
	}
	return t
}

func wrapDegrees(v mathx.Vec3) mathx.Vec3 {
	return mathx.Vec3{
		X: float32(math.Mod(float64(v.X), 360)),
		Y: float32(math.Mod(float64(v.Y), 360)),
		Z: float32(math.Mod(float64(v.Z), 360)),
	}
}

// sampleSpline evaluates a closed Hermite spline through pts. Samples keep
// the baseline rotation and scaling and replace its translation.
func sampleSpline(pts []mathx.Vec3, tightness, speed float32, baseline mathx.Mat4, fps int) *Track {
	if len(pts) == 1 {
		m := baseline
		m.SetTranslation(pts[0])
		return &Track{Matrices: []mathx.Mat4{m}, PostState: asset.BehaviourRepeat}
	}

	size := len(pts)
	wrap := func(i int) mathx.Vec3 {
		return pts[((i%size)+size)%size]
	}

	n := SplineCycleSeconds * fps
	t := &Track{Matrices: make([]mathx.Mat4, n), PostState: asset.BehaviourRepeat}
	for i := range t.Matrices {
		dt := float64(i) / float64(fps) * float64(speed)
		whole := math.Floor(dt)
		u := float32(dt - whole)
		idx := int(whole)

		p0, p1, p2, p3 := wrap(idx-1), wrap(idx), wrap(idx+1), wrap(idx+2)

		u2 := u * u
		u3 := u2 * u
		h1 := 2*u3 - 3*u2 + 1
		h2 := -2*u3 + 3*u2
		h3 := u3 - 2*u2 + u
		h4 := u3 - u2

		t1 := p2.Sub(p0).Scale(tightness)
		t2 := p3.Sub(p1).Scale(tightness)
		pos := p1.Scale(h1).Add(p2.Scale(h2)).Add(t1.Scale(h3)).Add(t2.Scale(h4))

		m := baseline
		m.SetTranslation(pos)
		t.Matrices[i] = m
	}
	return t
}

// decompose turns a track into position, rotation and scaling keys at
// integer ticks.
func decompose(nodeName string, t *Track) *asset.NodeAnim {
	out := &asset.NodeAnim{
		NodeName:     nodeName,
		PositionKeys: make([]asset.VectorKey, len(t.Matrices)),
		RotationKeys: make([]asset.QuatKey, len(t.Matrices)),
		ScalingKeys:  make([]asset.VectorKey, len(t.Matrices)),
		PostState:    t.PostState,
	}
	for i, m := range t.Matrices {
		s, r, p := m.Decompose()
		tick := float64(i)
		out.PositionKeys[i] = asset.VectorKey{Time: tick, Value: p}
		out.RotationKeys[i] = asset.QuatKey{Time: tick, Value: r}
		out.ScalingKeys[i] = asset.VectorKey{Time: tick, Value: s}
	}
	return out
}
