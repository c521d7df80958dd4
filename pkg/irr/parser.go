package irr

import (
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/pkg/asset"
	"github.com/Faultbox/irrscene/pkg/diag"
	"github.com/Faultbox/irrscene/pkg/loader"
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

// MeshRequester receives a load request for every mesh file a scene names.
// *loader.BatchLoader implements it.
type MeshRequester interface {
	Request(path string, flags loader.PostProcess)
}

// ParseResult is the build-time state produced by Parse.
type ParseResult struct {
	Tree    *Tree
	Cameras []*asset.Camera
	Lights  []*asset.Light
}

type parser struct {
	stream ElementStream
	req    MeshRequester
	log    *diag.Sink
	res    *ParseResult

	cur         NodeID // node open for writing, or NoNode
	parent      NodeID // node new children are appended to
	inMaterials bool
	inAnimators bool
}

// Parse reads a scene from stream into a build-time tree. Mesh files are
// announced to req as they are found; req may be nil. Problems confined to
// one node are logged to sink and skipped; only stream errors are returned.
func Parse(stream ElementStream, req MeshRequester, sink *diag.Sink) (*ParseResult, error) {
	if sink == nil {
		sink = diag.Discard()
	}
	p := &parser{
		stream: stream,
		req:    req,
		log:    sink.Named("parser"),
		res:    &ParseResult{Tree: NewTree()},
		cur:    NoNode,
		parent: RootID,
	}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.res, nil
}

func (p *parser) next() (Event, error) {
	return p.stream.Next()
}

func (p *parser) run() error {
	for {
		ev, err := p.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if ev.Kind == EventEnd {
			switch {
			case ev.Is("node"):
				p.closeNode()
			case ev.Is("materials"):
				p.inMaterials = false
			case ev.Is("animators"):
				p.inAnimators = false
			}
			continue
		}

		switch {
		case ev.Is("node"):
			p.openNode(ev)
		case ev.Is("materials"):
			p.inMaterials = true
		case ev.Is("animators"):
			p.inAnimators = true
		case ev.Is("attributes"):
			err = p.attributes()
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (p *parser) node() *Node {
	return p.res.Tree.Node(p.cur)
}

func (p *parser) openNode(ev Event) {
	typeName, _ := ev.Attr("type")
	t, ok := parseNodeType(typeName)
	if !ok {
		p.log.Warn("unknown node type, using a dummy", zap.String("type", typeName))
		t = NodeDummy
	}

	if p.cur != NoNode {
		p.parent = p.cur
	}
	p.cur = p.res.Tree.Add(p.parent, t)

	n := p.node()
	switch t {
	case NodeCamera:
		n.Camera = len(p.res.Cameras)
		p.res.Cameras = append(p.res.Cameras, asset.NewCamera(n.Name))
	case NodeLight:
		n.Light = len(p.res.Lights)
		p.res.Lights = append(p.res.Lights, asset.NewLight(n.Name))
	}
}

func (p *parser) closeNode() {
	if p.cur != NoNode {
		p.cur = NoNode
		return
	}
	up := p.res.Tree.Node(p.parent).Parent
	if up == NoNode {
		p.log.Error("too many closing node elements")
		p.parent = RootID
		return
	}
	p.parent = up
}

// attributes consumes one attributes block. It returns io.EOF when the
// stream ends inside the block.
func (p *parser) attributes() error {
	if p.cur == NoNode {
		p.log.Error("attributes block outside of a node, skipping")
		return p.skipAttributes()
	}

	switch {
	case p.inMaterials:
		rec := newMaterialRecord()
		err := p.leaves(rec.set)
		n := p.node()
		n.Materials = append(n.Materials, rec.finish())
		return err

	case p.inAnimators:
		n := p.node()
		n.Animators = append(n.Animators, newAnimator())
		a := &n.Animators[len(n.Animators)-1]
		return p.leaves(func(kind, name, value string) {
			p.setAnimator(a, kind, name, value)
		})

	default:
		return p.leaves(p.setNode)
	}
}

// leaves calls fn for every named leaf element up to the end of the block.
func (p *parser) leaves(fn func(kind, name, value string)) error {
	for {
		ev, err := p.next()
		if err != nil {
			return err
		}
		if ev.Kind == EventEnd {
			if ev.Is("attributes") {
				return nil
			}
			continue
		}
		name, ok := ev.Attr("name")
		if !ok {
			continue
		}
		value, _ := ev.Attr("value")
		fn(strings.ToLower(ev.Name), name, value)
	}
}

func (p *parser) skipAttributes() error {
	return p.leaves(func(string, string, string) {})
}

// setNode routes a leaf into the open node or its camera or light.
func (p *parser) setNode(kind, name, value string) {
	n := p.node()
	var cam *asset.Camera
	var light *asset.Light
	if n.Camera >= 0 {
		cam = p.res.Cameras[n.Camera]
	}
	if n.Light >= 0 {
		light = p.res.Lights[n.Light]
	}

	switch kind {
	case "vector3d":
		v := toTargetSpace(parseVector(value))
		switch {
		case name == "Position":
			n.Position = v
		case name == "Rotation":
			n.Rotation = v
		case name == "Scale":
			n.Scale = v
		case cam != nil && name == "Target":
			cam.LookAt = v
		case cam != nil && name == "UpVector":
			cam.Up = v
		}

	case "float":
		f := parseFloat(value)
		switch {
		case n.Type == NodeAnimatedMesh && name == "FramesPerSecond":
			n.FramesPerSecond = f
		case cam != nil:
			switch name {
			case "Fovy":
				// Vertical until the synthesizer applies the aspect ratio.
				cam.HorizontalFOV = f
			case "Aspect":
				cam.Aspect = f
			case "ZNear":
				cam.ClipPlaneNear = f
			case "ZFar":
				cam.ClipPlaneFar = f
			}
		case light != nil:
			switch name {
			case "Attenuation":
				light.AttenuationLinear = f
			case "OuterCone":
				light.AngleOuterCone = f * mathx.DegToRad
			case "InnerCone":
				light.AngleInnerCone = f * mathx.DegToRad
			}
		case n.Type == NodeSphere && name == "Radius", n.Type == NodeCube && name == "Size":
			n.Radius = f
		}

	case "int":
		if n.Type == NodeSphere {
			switch name {
			case "PolyCountX":
				n.PolyCountX = parseInt(value)
			case "PolyCountY":
				n.PolyCountY = parseInt(value)
			}
		}

	case "colorf":
		if light == nil {
			return
		}
		c := rgb(parseColorf(value))
		switch name {
		case "DiffuseColor":
			light.ColorDiffuse = c
		case "AmbientColor":
			light.ColorAmbient = c
		case "SpecularColor":
			light.ColorSpecular = c
		}

	case "string", "enum":
		if value == "" {
			return
		}
		switch {
		case name == "Name":
			n.Name = value
			if cam != nil {
				cam.Name = value
			}
			if light != nil {
				light.Name = value
			}
		case light != nil && name == "LightType":
			light.Type = parseLightType(value)
			if light.Type == asset.LightUndefined {
				p.log.Warn("unknown light type", zap.String("node", n.Name), zap.String("type", value))
			}
		case name == "Mesh" && (n.Type == NodeMesh || n.Type == NodeAnimatedMesh):
			n.MeshPath = value
			if p.req != nil {
				var flags loader.PostProcess
				if n.Type == NodeMesh {
					flags = loader.RemoveAnimations | loader.RemoveBoneWeights
				}
				p.req.Request(value, flags)
			}
		}
	}
}

func parseLightType(s string) asset.LightType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "point":
		return asset.LightPoint
	case "spot":
		return asset.LightSpot
	case "directional":
		return asset.LightDirectional
	default:
		return asset.LightUndefined
	}
}

// setAnimator routes a leaf into the animator a.
func (p *parser) setAnimator(a *Animator, kind, name, value string) {
	switch kind {
	case "string", "enum":
		if name != "Type" {
			return
		}
		k, ok := newAnimatorKind(value)
		if !ok {
			p.log.Warn("unknown animator type", zap.String("node", p.node().Name), zap.String("type", value))
		}
		a.Kind = k

	case "float":
		f := parseFloat(value)
		if name == "Speed" {
			a.Speed = f
			return
		}
		switch k := a.Kind.(type) {
		case *FlyCircleAnimator:
			if name == "Radius" {
				k.Radius = f
			}
		case *FollowSplineAnimator:
			if name == "Tightness" {
				k.Tightness = f
			}
		}

	case "bool":
		if name == "Loop" {
			a.Loop = parseBool(value)
		}

	case "int":
		if k, ok := a.Kind.(*FlyStraightAnimator); ok && name == "TimeForWay" {
			k.TimeForWay = parseInt(value)
		}

	case "vector3d":
		v := toTargetSpace(parseVector(value))
		switch k := a.Kind.(type) {
		case *RotationAnimator:
			if name == "Rotation" {
				k.Rate = v
			}
		case *FollowSplineAnimator:
			if len(name) >= 6 && strings.HasPrefix(name, "Point") {
				k.Points = append(k.Points, SplinePoint{Index: parseInt(name[5:]), Value: v})
			}
		case *FlyCircleAnimator:
			switch name {
			case "Center":
				k.Center = v
			case "Direction":
				if v.IsZero() {
					k.Direction = mathx.Vec3{Y: 1}
				} else {
					k.Direction = v.Normalize()
				}
			}
		case *FlyStraightAnimator:
			switch name {
			case "Start":
				k.Start = v
			case "End":
				k.End = v
			}
		}
	}
}
