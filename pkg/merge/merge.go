// Package merge splices independently loaded scenes into a master scene at
// designated attachment nodes.
package merge

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/pkg/asset"
	"github.com/Faultbox/irrscene/pkg/diag"
)

// Attachment places the root of Scene under Target, a node of the master.
type Attachment struct {
	Scene  *asset.Scene
	Target *asset.Node
}

// Attach moves every attached scene into master. Mesh and material indices
// of a sub-scene are offset by the tables already present; its root becomes
// the last child of the target; animations, cameras and lights are appended.
// Sub-scenes are consumed and must not be used afterwards.
//
// Material names are made unique across the merged table, and
// FlagIncomplete reflects whether the result holds any mesh.
func Attach(master *asset.Scene, atts []Attachment, sink *diag.Sink) {
	if sink == nil {
		sink = diag.Discard()
	}
	log := sink.Named("merge")

	for i, att := range atts {
		if att.Scene == nil || att.Target == nil {
			log.Error("invalid attachment", zap.Int("index", i),
				zap.Bool("scene", att.Scene != nil), zap.Bool("target", att.Target != nil))
			continue
		}
		attach(master, att)
		log.Debug("attached scene",
			zap.String("target", att.Target.Name),
			zap.Int("meshes", len(att.Scene.Meshes)),
			zap.Int("materials", len(att.Scene.Materials)))
	}

	renamed := UniqueMaterialNames(master.Materials)
	if renamed > 0 {
		log.Debug("renamed duplicate materials", zap.Int("count", renamed))
	}

	if len(master.Meshes) == 0 {
		master.Flags |= asset.FlagIncomplete
	} else {
		master.Flags &^= asset.FlagIncomplete
	}
}

func attach(master *asset.Scene, att Attachment) {
	sub := att.Scene
	meshOff := len(master.Meshes)
	matOff := len(master.Materials)

	master.Materials = append(master.Materials, sub.Materials...)
	for _, m := range sub.Meshes {
		if m != nil {
			m.MaterialIndex += matOff
		}
		master.Meshes = append(master.Meshes, m)
	}

	if sub.Root != nil {
		sub.Root.Walk(func(n *asset.Node) bool {
			for i := range n.Meshes {
				n.Meshes[i] += meshOff
			}
			return true
		})
		att.Target.AddChild(sub.Root)
	}

	master.Animations = append(master.Animations, sub.Animations...)
	master.Cameras = append(master.Cameras, sub.Cameras...)
	master.Lights = append(master.Lights, sub.Lights...)

	if sub.Flags.Has(asset.FlagNonVerbose) {
		master.Flags |= asset.FlagNonVerbose
	}
}

// UniqueMaterialNames renames materials whose non-empty name repeats an
// earlier one by appending ".N". It returns the number of renamed materials.
func UniqueMaterialNames(mats []*asset.Material) int {
	seen := make(map[string]bool, len(mats))
	for _, m := range mats {
		if m != nil && m.Name() != "" {
			seen[m.Name()] = true
		}
	}

	first := make(map[string]bool, len(mats))
	renamed := 0
	for _, m := range mats {
		if m == nil {
			continue
		}
		name := m.Name()
		if name == "" {
			continue
		}
		if !first[name] {
			first[name] = true
			continue
		}
		for n := 1; ; n++ {
			candidate := fmt.Sprintf("%s.%d", name, n)
			if !seen[candidate] {
				seen[candidate] = true
				m.SetName(candidate)
				renamed++
				break
			}
		}
	}
	return renamed
}
