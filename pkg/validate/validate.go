// Package validate checks the structural consistency of an asset scene.
//
// Validate never mutates the scene. Corruption that would break consumers,
// such as out of range indices, broken parent links or inconsistent channel
// layouts, is returned as an *Error. Content that is legal but suspicious is
// logged as a warning to the sink.
package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/pkg/asset"
	"github.com/Faultbox/irrscene/pkg/diag"
)

// ErrInvalid is the cause of every validation failure.
var ErrInvalid = errors.New("invalid scene")

// Error describes the first fatal inconsistency found.
type Error struct {
	Table string // "meshes", "nodes", "cameras", ...
	Index int    // element index in Table, or -1
	Msg   string
}

func (e *Error) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Table, e.Msg)
	}
	return fmt.Sprintf("validation failed: %s[%d]: %s", e.Table, e.Index, e.Msg)
}

// Unwrap returns ErrInvalid.
func (e *Error) Unwrap() error { return ErrInvalid }

// Cause returns ErrInvalid, for errors.Cause.
func (e *Error) Cause() error { return ErrInvalid }

func fail(table string, index int, format string, args ...any) error {
	return &Error{Table: table, Index: index, Msg: fmt.Sprintf(format, args...)}
}

type validator struct {
	s   *asset.Scene
	log *diag.Sink
}

// Validate checks scene and returns the first fatal problem as an *Error.
// Warnings go to sink, which may be nil.
func Validate(scene *asset.Scene, sink *diag.Sink) error {
	if sink == nil {
		sink = diag.Discard()
	}
	log := sink.Named("validate")
	if scene == nil {
		return fail("scene", -1, "scene is nil")
	}

	v := &validator{s: scene, log: log}
	steps := []func() error{
		v.tables,
		v.nodes,
		v.meshes,
		v.materials,
		v.animations,
		v.cameras,
		v.lights,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			log.Error(err.Error())
			return err
		}
	}
	log.Debug("scene is valid",
		zap.Int("meshes", len(scene.Meshes)),
		zap.Int("materials", len(scene.Materials)),
		zap.Int("animations", len(scene.Animations)))
	return nil
}

func (v *validator) warn(table string, index int, msg string, fields ...zap.Field) {
	fields = append([]zap.Field{zap.String("table", table), zap.Int("index", index)}, fields...)
	v.log.Warn(msg, fields...)
}

// tables checks the presence of the top-level tables and their elements.
func (v *validator) tables() error {
	s := v.s
	if s.Root == nil {
		return fail("scene", -1, "scene has no root node")
	}

	incomplete := s.Flags.Has(asset.FlagIncomplete)
	if len(s.Meshes) == 0 && !incomplete {
		return fail("meshes", -1, "scene has no meshes and is not flagged incomplete")
	}
	if len(s.Materials) == 0 && !incomplete {
		return fail("materials", -1, "scene has no materials and is not flagged incomplete")
	}
	if len(s.Meshes)+len(s.Materials)+len(s.Animations)+len(s.Cameras)+len(s.Lights) == 0 {
		return fail("scene", -1, "scene is empty")
	}

	for i, m := range s.Meshes {
		if m == nil {
			return fail("meshes", i, "element is nil (table has %d)", len(s.Meshes))
		}
	}
	for i, m := range s.Materials {
		if m == nil {
			return fail("materials", i, "element is nil (table has %d)", len(s.Materials))
		}
	}
	for i, a := range s.Animations {
		if a == nil {
			return fail("animations", i, "element is nil (table has %d)", len(s.Animations))
		}
	}
	for i, c := range s.Cameras {
		if c == nil {
			return fail("cameras", i, "element is nil (table has %d)", len(s.Cameras))
		}
	}
	for i, l := range s.Lights {
		if l == nil {
			return fail("lights", i, "element is nil (table has %d)", len(s.Lights))
		}
	}
	return nil
}

// nodes walks the hierarchy depth first.
func (v *validator) nodes() error {
	root := v.s.Root
	if root.Parent != nil {
		return fail("nodes", 0, "root node %q has a parent", root.Name)
	}

	seen := make(map[*asset.Node]bool)
	index := 0
	var walk func(n *asset.Node) error
	walk = func(n *asset.Node) error {
		i := index
		index++
		if seen[n] {
			return fail("nodes", i, "node %q appears twice in the hierarchy", n.Name)
		}
		seen[n] = true

		if err := checkString("nodes", i, "name", n.Name); err != nil {
			return err
		}

		used := make(map[int]bool, len(n.Meshes))
		for k, m := range n.Meshes {
			if m < 0 || m >= len(v.s.Meshes) {
				return fail("nodes", i, "mesh reference %d is %d, out of range (meshes: %d)", k, m, len(v.s.Meshes))
			}
			if used[m] {
				return fail("nodes", i, "mesh %d is referenced twice by node %q", m, n.Name)
			}
			used[m] = true
		}

		for k, c := range n.Children {
			if c == nil {
				return fail("nodes", i, "child %d of node %q is nil", k, n.Name)
			}
			if c.Parent == nil {
				return fail("nodes", index, "node %q has no parent but is not the root", c.Name)
			}
			if c.Parent != n {
				return fail("nodes", index, "node %q is a child of %q but its parent link points to %q", c.Name, n.Name, c.Parent.Name)
			}
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root)
}

func (v *validator) cameras() error {
	names := make(map[string]int, len(v.s.Cameras))
	for i, c := range v.s.Cameras {
		if err := v.uniqueNodeName("cameras", i, c.Name, names); err != nil {
			return err
		}
		if c.ClipPlaneFar <= c.ClipPlaneNear {
			return fail("cameras", i, "far clip plane %g must be greater than near clip plane %g", c.ClipPlaneFar, c.ClipPlaneNear)
		}
		if c.HorizontalFOV <= 0 || float64(c.HorizontalFOV) >= math.Pi {
			return fail("cameras", i, "horizontal field of view %g is outside (0, pi)", c.HorizontalFOV)
		}
	}
	return nil
}

func (v *validator) lights() error {
	names := make(map[string]int, len(v.s.Lights))
	for i, l := range v.s.Lights {
		if err := v.uniqueNodeName("lights", i, l.Name, names); err != nil {
			return err
		}
		if l.Type == asset.LightUndefined {
			return fail("lights", i, "light type is undefined")
		}
		if l.AngleInnerCone > l.AngleOuterCone {
			return fail("lights", i, "inner cone angle %g is larger than outer cone angle %g", l.AngleInnerCone, l.AngleOuterCone)
		}
		if l.Type != asset.LightDirectional &&
			l.AttenuationConstant == 0 && l.AttenuationLinear == 0 && l.AttenuationQuadratic == 0 {
			v.warn("lights", i, "all attenuation factors are zero", zap.String("light", l.Name))
		}
		if l.ColorDiffuse.IsBlack() && l.ColorSpecular.IsBlack() && l.ColorAmbient.IsBlack() {
			v.warn("lights", i, "all light colors are black", zap.String("light", l.Name))
		}
	}
	return nil
}

// uniqueNodeName checks that name is unique in its table and names exactly
// one node of the hierarchy.
func (v *validator) uniqueNodeName(table string, i int, name string, names map[string]int) error {
	if err := checkString(table, i, "name", name); err != nil {
		return err
	}
	if prev, ok := names[name]; ok {
		return fail(table, i, "name %q is already used by element %d", name, prev)
	}
	names[name] = i

	switch n := v.s.Root.CountNamed(name); {
	case n == 0:
		return fail(table, i, "no node is named %q", name)
	case n > 1:
		return fail(table, i, "%d nodes are named %q", n, name)
	}
	return nil
}

// checkString enforces the length limit and the absence of embedded NULs.
func checkString(table string, i int, what, s string) error {
	if len(s) > asset.MaxStringLength {
		return fail(table, i, "%s is %d bytes long, maximum is %d", what, len(s), asset.MaxStringLength)
	}
	if k := strings.IndexByte(s, 0); k >= 0 {
		return fail(table, i, "%s has an embedded terminator at offset %d of %d", what, k, len(s))
	}
	return nil
}
