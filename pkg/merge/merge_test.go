package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/irrscene/pkg/asset"
	"github.com/Faultbox/irrscene/pkg/diag"
	mathx "github.com/Faultbox/irrscene/pkg/math"
)

func meshScene(rootName string, materials ...string) *asset.Scene {
	s := &asset.Scene{Root: asset.NewNode(rootName)}
	for i, name := range materials {
		s.Materials = append(s.Materials, asset.NewMaterial(name))
		s.Meshes = append(s.Meshes, &asset.Mesh{
			NumVertices:   1,
			Vertices:      []mathx.Vec3{{}},
			MaterialIndex: i,
		})
		s.Root.Meshes = append(s.Root.Meshes, i)
	}
	return s
}

func TestAttachOffsetsIndices(t *testing.T) {
	master := meshScene("master", "stone")
	target := asset.NewNode("slot")
	master.Root.AddChild(target)

	sub := meshScene("tree.obj", "bark", "leaves")
	sub.Cameras = []*asset.Camera{asset.NewCamera("eye")}
	sub.Flags |= asset.FlagNonVerbose

	Attach(master, []Attachment{{Scene: sub, Target: target}}, nil)

	require.Len(t, master.Meshes, 3)
	require.Len(t, master.Materials, 3)
	assert.Equal(t, 1, master.Meshes[1].MaterialIndex)
	assert.Equal(t, 2, master.Meshes[2].MaterialIndex)

	require.Len(t, target.Children, 1)
	attached := target.Children[0]
	assert.Equal(t, "tree.obj", attached.Name)
	assert.Same(t, target, attached.Parent)
	assert.Equal(t, []int{1, 2}, attached.Meshes)

	assert.Len(t, master.Cameras, 1)
	assert.True(t, master.Flags.Has(asset.FlagNonVerbose))
	assert.False(t, master.Flags.Has(asset.FlagIncomplete))
}

func TestAttachSameTargetTwice(t *testing.T) {
	master := &asset.Scene{Root: asset.NewNode("master"), Flags: asset.FlagIncomplete}
	a := meshScene("a", "m")
	b := meshScene("b", "m")

	Attach(master, []Attachment{{Scene: a, Target: master.Root}, {Scene: b, Target: master.Root}}, nil)

	require.Len(t, master.Root.Children, 2)
	assert.Equal(t, "a", master.Root.Children[0].Name)
	assert.Equal(t, "b", master.Root.Children[1].Name)
	assert.Equal(t, []int{1}, master.Root.Children[1].Meshes)
	assert.Equal(t, 1, master.Meshes[1].MaterialIndex)

	assert.Equal(t, "m", master.Materials[0].Name())
	assert.Equal(t, "m.1", master.Materials[1].Name())
	assert.False(t, master.Flags.Has(asset.FlagIncomplete))
}

func TestAttachInvalid(t *testing.T) {
	master := &asset.Scene{Root: asset.NewNode("master")}
	sink := diag.Discard()

	Attach(master, []Attachment{{Scene: nil, Target: master.Root}, {Scene: meshScene("x"), Target: nil}}, sink)

	assert.Len(t, sink.Errors(), 2)
	assert.Empty(t, master.Root.Children)
	assert.True(t, master.Flags.Has(asset.FlagIncomplete))
}

func TestUniqueMaterialNames(t *testing.T) {
	mats := []*asset.Material{
		asset.NewMaterial("a"),
		asset.NewMaterial("a"),
		asset.NewMaterial("a.1"),
		asset.NewMaterial(""),
		asset.NewMaterial(""),
		asset.NewMaterial("a"),
	}

	assert.Equal(t, 2, UniqueMaterialNames(mats))

	var names []string
	for _, m := range mats {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"a", "a.2", "a.1", "", "", "a.3"}, names)
}
