// irrtool is a CLI utility for inspecting and converting Irrlicht .irr scenes.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/irrscene/internal/config"
	"github.com/Faultbox/irrscene/internal/logger"
	"github.com/Faultbox/irrscene/pkg/asset"
	"github.com/Faultbox/irrscene/pkg/diag"
	"github.com/Faultbox/irrscene/pkg/gltfexport"
	"github.com/Faultbox/irrscene/pkg/irr"
	"github.com/Faultbox/irrscene/pkg/validate"
)

func main() {
	config.ParseFlags()
	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfgErr := cfg.Validate()

	if err := logger.InitWithOptions(cfg.LoggerOptions()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfgErr != nil {
		logger.Error("invalid configuration, using defaults", zap.Error(cfgErr))
	}
	logger.Debug("configuration",
		zap.String("file", config.ConfigPath()),
		zap.Int("anim_fps", cfg.Import.AnimFPS),
		zap.Bool("validate", cfg.Import.Validate),
		zap.String("format", cfg.Export.Format))

	command := args[0]
	args = args[1:]

	var code int
	switch command {
	case "info":
		code = cmdInfo(cfg, args)
	case "tree":
		code = cmdTree(cfg, args)
	case "validate", "check":
		code = cmdValidate(cfg, args)
	case "dump":
		code = cmdDump(cfg, args)
	case "export", "x":
		code = cmdExport(cfg, args)
	case "config":
		code = cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		code = 1
	}
	logger.Sync()
	os.Exit(code)
}

func printUsage() {
	fmt.Println(`irrtool - Irrlicht scene utility

Usage:
  irrtool [global options] <command> [options]

Global options:
  -config <file>     Config file (.yaml or .toml)
  -debug             Enable debug logging
  -fps <n>           Animation sampling rate
  -no-validate       Skip scene validation
  -strict            Treat validation warnings as failures
  -format gltf|glb   Export format
  -log-file <file>   Also log to a rotating file

Commands:
  info <scene.irr>               Show scene statistics
  tree <scene.irr>               Print the node hierarchy
  validate <scene.irr>...        Import and validate scenes
  dump <scene.irr>               Dump the imported scene graph
  export <scene.irr> [output]    Convert a scene to glTF
  config [path]                  Write the effective config

Examples:
  irrtool info room.irr
  irrtool -fps 30 export room.irr room.glb
  irrtool -strict validate levels/*.irr
  irrtool config irrscene.toml`)
}

// importScene imports path with a fresh sink so diagnostics can be counted per file.
func importScene(cfg *config.Config, path string) (*asset.Scene, *diag.Sink, error) {
	sink := diag.New(logger.Log)
	scene, err := irr.NewImporter(cfg.ImportOptions(), sink).ImportFile(path)
	return scene, sink, err
}

func cmdInfo(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: irrtool info <scene.irr>")
		return 1
	}

	scene, sink, err := importScene(cfg, args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var vertices, faces int
	for _, m := range scene.Meshes {
		vertices += m.NumVertices
		faces += len(m.Faces)
	}

	fmt.Printf("Scene:      %s\n", args[0])
	fmt.Printf("Nodes:      %d\n", scene.NumNodes())
	fmt.Printf("Meshes:     %d (%d vertices, %d faces)\n", len(scene.Meshes), vertices, faces)
	fmt.Printf("Materials:  %d\n", len(scene.Materials))
	fmt.Printf("Cameras:    %d\n", len(scene.Cameras))
	fmt.Printf("Lights:     %d\n", len(scene.Lights))
	for _, a := range scene.Animations {
		fmt.Printf("Animation:  %q %d channels, %.0f ticks at %.0f/s\n",
			a.Name, len(a.Channels), a.Duration, a.TicksPerSecond)
	}
	fmt.Printf("Flags:      %s\n", flagString(scene.Flags))
	fmt.Printf("Diagnostics: %d warnings, %d errors\n", len(sink.Warnings()), len(sink.Errors()))
	return 0
}

func flagString(f asset.SceneFlags) string {
	var names []string
	for _, fl := range []struct {
		flag asset.SceneFlags
		name string
	}{
		{asset.FlagIncomplete, "incomplete"},
		{asset.FlagValidated, "validated"},
		{asset.FlagValidationWarning, "validation-warning"},
		{asset.FlagNonVerbose, "non-verbose"},
	} {
		if f.Has(fl.flag) {
			names = append(names, fl.name)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

func cmdTree(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	transforms := fs.Bool("t", false, "Print node translations")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: irrtool tree [-t] <scene.irr>")
		return 1
	}

	scene, _, err := importScene(cfg, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	kinds := make(map[string]string)
	for _, c := range scene.Cameras {
		kinds[c.Name] = "camera"
	}
	for _, l := range scene.Lights {
		kinds[l.Name] = "light " + l.Type.String()
	}

	printNode(scene, scene.Root, 0, kinds, *transforms)
	return 0
}

func printNode(scene *asset.Scene, n *asset.Node, depth int, kinds map[string]string, transforms bool) {
	line := strings.Repeat("  ", depth) + n.Name
	if n.Name == "" {
		line += "(unnamed)"
	}
	if kind, ok := kinds[n.Name]; ok {
		line += " [" + kind + "]"
	}
	for _, mi := range n.Meshes {
		m := scene.Meshes[mi]
		line += fmt.Sprintf(" <mesh %d: %d faces>", mi, len(m.Faces))
	}
	if transforms {
		t := n.Transform.Translation()
		line += fmt.Sprintf(" @ (%.3g, %.3g, %.3g)", t.X, t.Y, t.Z)
	}
	fmt.Println(line)
	for _, c := range n.Children {
		printNode(scene, c, depth+1, kinds, transforms)
	}
}

func cmdValidate(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: irrtool validate <scene.irr>...")
		return 1
	}
	// validation is the point of this command
	cfg.Import.Validate = true

	failed := 0
	for _, path := range args {
		_, sink, err := importScene(cfg, path)
		warnings := len(sink.Warnings())
		switch {
		case err != nil:
			fmt.Printf("FAIL %s: %v\n", path, err)
			failed++
		case warnings > 0 && cfg.Validation.Strict:
			logger.Warn("warnings treated as failures", zap.String("scene", path), zap.Int("warnings", warnings))
			fmt.Printf("FAIL %s: %d warnings\n", path, warnings)
			failed++
		case warnings > 0:
			fmt.Printf("OK   %s (%d warnings)\n", path, warnings)
		default:
			fmt.Printf("OK   %s\n", path)
		}
		if err != nil && !isValidationError(err) {
			continue
		}
		for _, e := range sink.Warnings() {
			fmt.Printf("     %s\n", e)
		}
	}

	fmt.Fprintf(os.Stderr, "\n(%d of %d scenes failed)\n", failed, len(args))
	if failed > 0 {
		return 1
	}
	return 0
}

func isValidationError(err error) bool {
	return errors.Is(err, validate.ErrInvalid)
}

func cmdDump(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	depth := fs.Int("depth", 6, "Maximum nesting depth (0 = unlimited)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: irrtool dump [-depth n] <scene.irr>")
		return 1
	}

	scene, _, err := importScene(cfg, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// Parent links make the graph cyclic; spew prints them as already shown.
	dumper := spew.ConfigState{
		Indent:                  "  ",
		MaxDepth:                *depth,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}
	dumper.Fdump(os.Stdout, scene)
	return 0
}

func cmdExport(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: irrtool export <scene.irr> [output]")
		return 1
	}

	input := fs.Arg(0)
	output := ""
	if fs.NArg() > 1 {
		output = fs.Arg(1)
	} else {
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		output = filepath.Join(cfg.Export.Dir, base+"."+cfg.Export.Format)
	}

	scene, sink, err := importScene(cfg, input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := gltfexport.Save(scene, output, sink); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", output, err)
		return 1
	}

	logger.Info("scene exported", zap.String("input", input), zap.String("output", output))
	fmt.Printf("Exported: %s (%d meshes, %d materials)\n", output, len(scene.Meshes), len(scene.Materials))
	return 0
}

func cmdConfig(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Wrote: %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return 0
	}

	if err := cfg.SaveTo(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("Wrote: %s\n", args[0])
	return 0
}
