// Package loader resolves mesh files referenced by a scene into asset graphs.
//
// A BatchLoader collects load requests while a scene is parsed and loads
// each distinct path once, on first use.
package loader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/pkg/asset"
	"github.com/Faultbox/irrscene/pkg/diag"
)

// Sentinel errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported mesh format")
	ErrNotFound          = errors.New("mesh file not found")
)

// PostProcess flags adjust a loaded scene.
type PostProcess uint32

const (
	// RemoveAnimations drops all animations of the loaded scene.
	RemoveAnimations PostProcess = 1 << iota
	// RemoveBoneWeights drops the bones of every mesh.
	RemoveBoneWeights
)

// Format loads one family of mesh files.
type Format interface {
	Name() string
	Extensions() []string
	Load(path string) (*asset.Scene, error)
}

// DefaultFormats returns the built-in formats.
func DefaultFormats() []Format {
	return []Format{OBJ{}, GLTF{}}
}

type request struct {
	path   string
	flags  PostProcess
	done   bool
	scene  *asset.Scene
	err    error
	loaded string
}

// BatchLoader loads each requested path at most once.
type BatchLoader struct {
	baseDir  string
	formats  []Format
	log      *diag.Sink
	requests map[string]*request
	order    []string
}

// NewBatchLoader returns a loader resolving relative paths against baseDir.
// Without formats the defaults are used.
func NewBatchLoader(baseDir string, sink *diag.Sink, formats ...Format) *BatchLoader {
	if sink == nil {
		sink = diag.Discard()
	}
	if len(formats) == 0 {
		formats = DefaultFormats()
	}
	return &BatchLoader{
		baseDir:  baseDir,
		formats:  formats,
		log:      sink.Named("loader"),
		requests: make(map[string]*request),
	}
}

func key(path string) string {
	return filepath.Clean(strings.ReplaceAll(path, "\\", "/"))
}

// Request records a load request. Repeated requests for a path share one
// load; only post-processing every requester asked for is applied.
func (b *BatchLoader) Request(path string, flags PostProcess) {
	k := key(path)
	if r, ok := b.requests[k]; ok {
		if !r.done {
			r.flags &= flags
		}
		return
	}
	b.requests[k] = &request{path: path, flags: flags}
	b.order = append(b.order, k)
}

// Requested returns the requested paths in request order.
func (b *BatchLoader) Requested() []string {
	out := make([]string, len(b.order))
	for i, k := range b.order {
		out[i] = b.requests[k].path
	}
	return out
}

// Scene returns the scene loaded from path, loading it on first use.
// It returns nil and logs an error when the file cannot be loaded.
// Paths that were never requested are loaded without post-processing.
func (b *BatchLoader) Scene(path string) *asset.Scene {
	k := key(path)
	r, ok := b.requests[k]
	if !ok {
		b.Request(path, 0)
		r = b.requests[k]
	}
	if !r.done {
		b.load(r)
	}
	return r.scene
}

// Err returns the load error for path, if any.
func (b *BatchLoader) Err(path string) error {
	if r, ok := b.requests[key(path)]; ok {
		return r.err
	}
	return nil
}

// Resolved returns the file a request was loaded from, or "".
func (b *BatchLoader) Resolved(path string) string {
	if r, ok := b.requests[key(path)]; ok {
		return r.loaded
	}
	return ""
}

// LoadAll loads every pending request.
func (b *BatchLoader) LoadAll() {
	for _, k := range b.order {
		if r := b.requests[k]; !r.done {
			b.load(r)
		}
	}
}

func (b *BatchLoader) load(r *request) {
	r.done = true

	file, err := b.resolve(r.path)
	if err != nil {
		r.err = err
		b.log.Error("cannot resolve mesh file", zap.String("path", r.path), zap.Error(err))
		return
	}

	format := b.formatFor(file)
	if format == nil {
		r.err = errors.Wrapf(ErrUnsupportedFormat, "%s", filepath.Ext(file))
		b.log.Error("no loader for mesh file", zap.String("path", file))
		return
	}

	scene, err := format.Load(file)
	if err != nil {
		r.err = errors.Wrapf(err, "load %s", file)
		b.log.Error("failed to load mesh file", zap.String("path", file), zap.String("format", format.Name()), zap.Error(err))
		return
	}

	applyPostProcess(scene, r.flags)
	r.scene = scene
	r.loaded = file
	b.log.Debug("loaded mesh file",
		zap.String("path", file),
		zap.Int("meshes", len(scene.Meshes)),
		zap.Int("materials", len(scene.Materials)))
}

// resolve tries the path relative to the scene, then the bare file name next
// to the scene. Irrlicht scenes often store paths relative to the editor.
func (b *BatchLoader) resolve(path string) (string, error) {
	p := strings.ReplaceAll(path, "\\", "/")
	candidates := []string{p}
	if !filepath.IsAbs(p) {
		candidates = []string{filepath.Join(b.baseDir, p), filepath.Join(b.baseDir, filepath.Base(p))}
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c, nil
		}
	}
	return "", errors.Wrapf(ErrNotFound, "%s", path)
}

func (b *BatchLoader) formatFor(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range b.formats {
		for _, e := range f.Extensions() {
			if e == ext {
				return f
			}
		}
	}
	return nil
}

func applyPostProcess(s *asset.Scene, flags PostProcess) {
	if flags&RemoveAnimations != 0 {
		s.Animations = nil
	}
	if flags&RemoveBoneWeights != 0 {
		for _, m := range s.Meshes {
			if m != nil {
				m.Bones = nil
			}
		}
	}
}
