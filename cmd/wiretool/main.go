// wiretool extracts wireframe line meshes from glTF models.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/Faultbox/wireframe/internal/config"
	"github.com/Faultbox/wireframe/internal/gltfio"
	"github.com/Faultbox/wireframe/internal/logger"
	"github.com/Faultbox/wireframe/internal/pipeline"
	"github.com/Faultbox/wireframe/internal/server"
	"github.com/Faultbox/wireframe/pkg/formats"
	"github.com/Faultbox/wireframe/pkg/mesh"
	"github.com/Faultbox/wireframe/pkg/shading"
)

func main() {
	config.ParseFlags()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]
	args = args[1:]

	switch command {
	case "help", "-h", "--help":
		printUsage()
		return
	case "config":
		// Runs before Load so a broken config file can be replaced.
		os.Exit(cmdConfig(args))
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	opts := pipeline.OptionsFromConfig(cfg)
	if cfg.Extract.Seed != 0 {
		opts.Colors = shading.SeededColors(cfg.Extract.Seed)
	}

	var code int
	switch command {
	case "extract", "x":
		code = cmdExtract(opts, args)
	case "inspect", "info":
		code = cmdInspect(opts, args)
	case "serve":
		code = cmdServe(cfg, opts)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		code = 1
	}
	if code != 0 {
		logger.Sync()
		os.Exit(code)
	}
}

func printUsage() {
	fmt.Println(`wiretool - glTF wireframe extractor

Usage:
  wiretool [global options] <command> [options]

Commands:
  extract <in.glb> [-o out.glb] [-edges edges.json]  Add wireframe meshes
  inspect <in.glb> [-dump]                           Show primitives and selections
  serve                                              Run the HTTP API
  config [-init [-force]] [path]                     Show or write the configuration

Global options:
  -config <file>   Config file (default: wiretool.yaml lookup)
  -mode <mode>     Edge mode: auto, full or external
  -smooth / -flat  Smooth normals before extraction, or keep authored ones
  -colors          Fill missing vertex colours
  -seed <n>        Seed for random colours
  -addr <addr>     Server listen address
  -debug           Enable debug logging

Examples:
  wiretool extract model.glb
  wiretool -mode external extract model.glb -edges selected.json -o lines.gltf
  wiretool inspect -dump model.glb
  wiretool -addr :9000 serve
  wiretool config -init ./wiretool.yaml`)
}

func cmdExtract(opts pipeline.Options, args []string) int {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	output := fs.String("o", "", "Output path (.glb or .gltf, default <in>_wireframe<ext>)")
	edges := fs.String("edges", "", "JSON line list of stable-id pairs applied to every primitive")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: wiretool extract <in.glb> [-o out.glb] [-edges edges.json]")
		return 1
	}
	in := fs.Arg(0)
	out := *output
	if out == "" {
		ext := filepath.Ext(in)
		out = strings.TrimSuffix(in, ext) + gltfio.WireframeSuffix + ext
	}

	if *edges != "" {
		list, err := formats.LoadLineList(*edges)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if list.Skipped > 0 {
			logger.Warn("skipped malformed edge entries", zap.String("file", *edges), zap.Int("count", list.Skipped))
		}
		opts.Override = list.Pairs
	}

	doc, err := gltfio.Load(in, logger.Named("gltfio"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	report, err := pipeline.New(opts, logger.Named("pipeline")).Run(doc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := doc.Save(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	for _, p := range report.Primitives {
		fmt.Printf("  %-32s %-14s %6d lines  [%s]\n", p.Name, p.Mode, p.Lines, p.Capabilities)
		if p.Fallback {
			fmt.Println("    no stable ids, used all edges")
		}
		for _, d := range p.Diagnostics {
			fmt.Printf("    %s\n", d)
		}
	}
	for _, name := range report.Skipped {
		fmt.Printf("  %-32s skipped\n", name)
	}
	fmt.Printf("Wrote: %s (%d lines)\n", out, report.Lines())
	return 0
}

func cmdInspect(opts pipeline.Options, args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dump := fs.Bool("dump", false, "Dump the full summary")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: wiretool inspect <in.glb> [-dump]")
		return 1
	}

	doc, err := gltfio.Load(fs.Arg(0), logger.Named("gltfio"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	sum := doc.Summarize(mesh.ReadOptions{
		NormalAttributes:  opts.NormalAttributes,
		StableIDAttribute: opts.StableIDAttribute,
	})

	if *dump {
		sc := spew.NewDefaultConfig()
		sc.DisableCapacities = true
		fmt.Print(sc.Sdump(sum))
		return 0
	}

	fmt.Printf("File:       %s\n", fs.Arg(0))
	fmt.Printf("Primitives: %d\n", len(sum.Primitives))
	fmt.Println()
	for _, p := range sum.Primitives {
		fmt.Printf("  %s (mesh %d, primitive %d)\n", p.Name, p.Mesh, p.Primitive)
		fmt.Printf("    %s, %d vertices, %d indices\n", p.Topology, p.Vertices, p.Indices)
		if p.Error != "" {
			fmt.Printf("    error: %s\n", p.Error)
			continue
		}
		fmt.Printf("    capabilities: %s\n", p.Capabilities)
		if len(p.Rejected) > 0 {
			fmt.Printf("    rejected: %s\n", strings.Join(p.Rejected, ", "))
		}
		if p.Key != "" {
			fmt.Printf("    selection key %q: %d edges\n", p.Key, p.Selected)
		}
	}
	for _, name := range sum.Skipped {
		fmt.Printf("  %s: skipped\n", name)
	}
	if len(sum.Unclaimed) > 0 {
		fmt.Printf("\nUnclaimed selections: %s\n", strings.Join(sum.Unclaimed, ", "))
	}
	return 0
}

func cmdConfig(args []string) int {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	initFile := fs.Bool("init", false, "Write the default configuration")
	force := fs.Bool("force", false, "Overwrite an existing file with -init")
	fs.Parse(args)

	if *initFile {
		path, err := config.WriteDefault(fs.Arg(0), *force)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Wrote: %s\n", path)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}
	data, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if path := config.ConfigPath(); path != "" {
		fmt.Printf("# loaded from %s\n", path)
	}
	os.Stdout.Write(data)
	return 0
}

func cmdServe(cfg *config.Config, opts pipeline.Options) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg.Server, opts, logger.Named("server"))
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		return 1
	}
	return 0
}
