package asset

import (
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// AnimBehaviour defines what happens outside the keyed time range.
type AnimBehaviour int

const (
	// BehaviourDefault uses the node's own transform.
	BehaviourDefault AnimBehaviour = iota
	// BehaviourClamp holds the nearest key.
	BehaviourClamp
	// BehaviourRepeat wraps time around the key range.
	BehaviourRepeat
)

func (b AnimBehaviour) String() string {
	switch b {
	case BehaviourClamp:
		return "clamp"
	case BehaviourRepeat:
		return "repeat"
	default:
		return "default"
	}
}

// VectorKey is a timed position or scaling key.
type VectorKey struct {
	Time  float64
	Value mathx.Vec3
}

// QuatKey is a timed rotation key.
type QuatKey struct {
	Time  float64
	Value mathx.Quat
}

// NodeAnim animates one node, matched by name.
type NodeAnim struct {
	NodeName     string
	PositionKeys []VectorKey
	RotationKeys []QuatKey
	ScalingKeys  []VectorKey
	PreState     AnimBehaviour
	PostState    AnimBehaviour
}

// Empty reports whether the channel has no keys at all.
func (n *NodeAnim) Empty() bool {
	return len(n.PositionKeys) == 0 && len(n.RotationKeys) == 0 && len(n.ScalingKeys) == 0
}

// LastTime returns the time of the latest key in any track.
func (n *NodeAnim) LastTime() float64 {
	var t float64
	if k := len(n.PositionKeys); k > 0 && n.PositionKeys[k-1].Time > t {
		t = n.PositionKeys[k-1].Time
	}
	if k := len(n.RotationKeys); k > 0 && n.RotationKeys[k-1].Time > t {
		t = n.RotationKeys[k-1].Time
	}
	if k := len(n.ScalingKeys); k > 0 && n.ScalingKeys[k-1].Time > t {
		t = n.ScalingKeys[k-1].Time
	}
	return t
}

// Animation is a named set of node channels sharing one time line.
type Animation struct {
	Name           string
	Duration       float64
	TicksPerSecond float64
	Channels       []*NodeAnim
}

// Clone returns a deep copy of the animation.
func (a *Animation) Clone() *Animation {
	out := *a
	out.Channels = make([]*NodeAnim, len(a.Channels))
	for i, c := range a.Channels {
		if c == nil {
			continue
		}
		cc := *c
		cc.PositionKeys = append([]VectorKey(nil), c.PositionKeys...)
		cc.RotationKeys = append([]QuatKey(nil), c.RotationKeys...)
		cc.ScalingKeys = append([]VectorKey(nil), c.ScalingKeys...)
		out.Channels[i] = &cc
	}
	return &out
}
