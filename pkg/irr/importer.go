// Package irr imports Irrlicht .irr scene descriptions.
//
// Import runs in four steps: Parse reads the element stream into a
// build-time node tree, Synthesize maps that tree onto an asset scene and
// samples node animators, merge.Attach splices in the referenced mesh files,
// and validate.Validate checks the result.
package irr

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/pkg/asset"
	"github.com/Faultbox/irrscene/pkg/diag"
	"github.com/Faultbox/irrscene/pkg/encoding"
	"github.com/Faultbox/irrscene/pkg/loader"
	"github.com/Faultbox/irrscene/pkg/merge"
	"github.com/Faultbox/irrscene/pkg/validate"
)

// DefaultAnimFPS is the animation sampling rate in ticks per second.
const DefaultAnimFPS = 100

// ErrNoScene is returned for input without any content.
var ErrNoScene = errors.New("no scene data")

// Options configure an Importer.
type Options struct {
	AnimFPS  int             // sampling rate for animators; non-positive selects DefaultAnimFPS
	Validate bool            // run the validator on the merged scene
	Formats  []loader.Format // mesh file formats; nil selects loader.DefaultFormats
}

// DefaultOptions returns options with validation enabled.
func DefaultOptions() Options {
	return Options{AnimFPS: DefaultAnimFPS, Validate: true}
}

// Importer reads scene files. It is not safe for concurrent use; create one
// per goroutine.
type Importer struct {
	opts Options
	sink *diag.Sink
	log  *diag.Sink
}

// NewImporter returns an importer logging to sink.
func NewImporter(opts Options, sink *diag.Sink) *Importer {
	if sink == nil {
		sink = diag.Discard()
	}
	im := &Importer{opts: opts, sink: sink, log: sink.Named("irr")}
	if im.opts.AnimFPS <= 0 {
		im.log.Error("invalid animation frame rate, using default",
			zap.Int("fps", im.opts.AnimFPS), zap.Int("default", DefaultAnimFPS))
		im.opts.AnimFPS = DefaultAnimFPS
	}
	return im
}

// AnimFPS returns the effective sampling rate.
func (im *Importer) AnimFPS() int { return im.opts.AnimFPS }

// ImportFile reads the scene at path. Mesh files are resolved relative to
// the scene's directory.
func (im *Importer) ImportFile(path string) (*asset.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read scene %s", path)
	}
	im.log.Info("importing scene", zap.String("path", path), zap.Int("bytes", len(data)))
	scene, err := im.Import(bytes.NewReader(data), filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "import %s", path)
	}
	return scene, nil
}

// Import reads a scene from r, resolving mesh files against baseDir.
func (im *Importer) Import(r io.Reader, baseDir string) (*asset.Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read scene")
	}
	text, kind, err := encoding.ToUTF8(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode scene text")
	}
	if len(bytes.TrimSpace(text)) == 0 {
		return nil, ErrNoScene
	}
	if kind != encoding.UTF8 {
		im.log.Debug("decoded scene text", zap.Stringer("encoding", kind))
	}

	batch := loader.NewBatchLoader(baseDir, im.sink, im.opts.Formats...)
	res, err := Parse(NewXMLStream(bytes.NewReader(text)), batch, im.log)
	if err != nil {
		return nil, errors.Wrap(err, "parse scene")
	}

	scene, atts := Synthesize(res, batch, im.opts.AnimFPS, im.log)
	merge.Attach(scene, atts, im.log)
	if scene.Flags.Has(asset.FlagIncomplete) {
		im.log.Info("no meshes loaded, scene is incomplete")
	}

	if im.opts.Validate {
		warnings := len(im.sink.Warnings())
		if err := validate.Validate(scene, im.sink); err != nil {
			return nil, err
		}
		scene.Flags |= asset.FlagValidated
		if len(im.sink.Warnings()) > warnings {
			scene.Flags |= asset.FlagValidationWarning
		}
	}

	im.log.Debug("scene imported",
		zap.Int("nodes", scene.NumNodes()),
		zap.Int("meshes", len(scene.Meshes)),
		zap.Int("materials", len(scene.Materials)),
		zap.Int("cameras", len(scene.Cameras)),
		zap.Int("lights", len(scene.Lights)))
	return scene, nil
}

// CanRead reports whether a file looks like an Irrlicht scene. .irr files are
// accepted by name; .xml files need an irr_scene element in header.
func CanRead(path string, header []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".irr":
		return true
	case ".xml":
		text, _, err := encoding.ToUTF8(header)
		if err != nil {
			return false
		}
		return bytes.Contains(bytes.ToLower(text), []byte("irr_scene"))
	default:
		return false
	}
}
