package validate

import (
	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/pkg/asset"
)

func (v *validator) animations() error {
	for i, a := range v.s.Animations {
		if err := checkString("animations", i, "name", a.Name); err != nil {
			return err
		}
		if len(a.Channels) == 0 {
			return fail("animations", i, "animation %q has no channels", a.Name)
		}
		for c, ch := range a.Channels {
			if ch == nil {
				return fail("animations", i, "channel %d is nil (animation has %d)", c, len(a.Channels))
			}
			if err := v.channel(i, a, c, ch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *validator) channel(i int, a *asset.Animation, c int, ch *asset.NodeAnim) error {
	if err := checkString("animations", i, "channel node name", ch.NodeName); err != nil {
		return err
	}
	if ch.Empty() {
		return fail("animations", i, "channel %d (%q) has no keys", c, ch.NodeName)
	}

	if v.s.Root.FindNode(ch.NodeName) == nil && !v.hasBone(ch.NodeName) {
		v.warn("animations", i, "channel targets no node and no bone",
			zap.Int("channel", c), zap.String("node", ch.NodeName))
	}

	times := func(track string, n int, at func(int) float64) {
		last := -0.1
		for k := 0; k < n; k++ {
			t := at(k)
			if t > a.Duration {
				v.warn("animations", i, "key time is past the animation duration",
					zap.Int("channel", c), zap.String("track", track), zap.Int("key", k),
					zap.Float64("time", t), zap.Float64("duration", a.Duration))
			}
			if t <= last {
				v.warn("animations", i, "key times are not increasing",
					zap.Int("channel", c), zap.String("track", track), zap.Int("key", k),
					zap.Float64("time", t), zap.Float64("previous", last))
			}
			last = t
		}
	}
	times("position", len(ch.PositionKeys), func(k int) float64 { return ch.PositionKeys[k].Time })
	times("rotation", len(ch.RotationKeys), func(k int) float64 { return ch.RotationKeys[k].Time })
	times("scaling", len(ch.ScalingKeys), func(k int) float64 { return ch.ScalingKeys[k].Time })
	return nil
}

func (v *validator) hasBone(name string) bool {
	for _, m := range v.s.Meshes {
		for _, b := range m.Bones {
			if b != nil && b.Name == name {
				return true
			}
		}
	}
	return false
}
