// Command mslc compiles decorator-annotated WGSL shaders.
//
// Usage:
//
//	mslc [options] <input>
//
// Examples:
//
//	mslc shader.msl                              # Emit transformed WGSL
//	mslc -D resolution=1920,1080 shader.msl      # Define a wildcard
//	mslc -emit meta shader.msl                   # Print the resource graph
//	mslc -viewport 800x600 shader.msl            # Canvas size for @fragment
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/mslc"
	"github.com/gogpu/mslc/ir"
)

var (
	output   = flag.String("o", "", "output file (default: stdout)")
	emit     = flag.String("emit", "wgsl", "output kind: wgsl or meta")
	prefix   = flag.String("prefix", "info", "wildcard access prefix")
	viewport = flag.String("viewport", "", "canvas size as WxH, e.g. 1920x1080")
	version  = flag.Bool("version", false, "print version")
)

var defines wildcardFlags

const mslcVersion = "0.1.0-dev"

// wildcardFlags collects repeated -D name=v1,v2 definitions.
type wildcardFlags []ir.Wildcard

func (w *wildcardFlags) String() string {
	names := make([]string, len(*w))
	for i, wc := range *w {
		names[i] = wc.Name
	}
	return strings.Join(names, ",")
}

func (w *wildcardFlags) Set(s string) error {
	name, vals, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=v1,v2,..., got %q", s)
	}
	var value []float64
	for _, part := range strings.Split(vals, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("wildcard %s: %v", name, err)
		}
		value = append(value, v)
	}
	*w = append(*w, ir.Wildcard{Name: name, Value: value})
	return nil
}

// fixedViewport satisfies msl.ViewportSizeProvider with a constant size.
type fixedViewport struct {
	w, h int
}

func (v fixedViewport) ViewportSize() (int, int) { return v.w, v.h }

func main() {
	flag.Usage = usage
	flag.Var(&defines, "D", "define a wildcard as name=v1,v2,... (repeatable)")
	flag.Parse()

	if *version {
		fmt.Printf("mslc version %s\n", mslcVersion)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	inputPath := args[0]

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	opts := mslc.DefaultOptions()
	opts.WildcardPrefix = *prefix
	if *viewport != "" {
		vp, err := parseViewport(*viewport)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		opts.Viewport = vp
	}

	meta, err := mslc.ParseWithOptions(string(source), defines, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Compilation error: %v\n", err)
		os.Exit(1)
	}

	var out string
	switch *emit {
	case "wgsl":
		out = meta.Code
	case "meta":
		out = formatMetadata(meta)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown emit kind %q\n", *emit)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(out), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
	} else if _, err := os.Stdout.WriteString(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

func parseViewport(s string) (fixedViewport, error) {
	ws, hs, ok := strings.Cut(s, "x")
	if !ok {
		return fixedViewport{}, fmt.Errorf("viewport must have the form WxH, got %q", s)
	}
	w, err := strconv.Atoi(ws)
	if err != nil {
		return fixedViewport{}, fmt.Errorf("viewport width: %v", err)
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return fixedViewport{}, fmt.Errorf("viewport height: %v", err)
	}
	return fixedViewport{w: w, h: h}, nil
}

func formatMetadata(meta *ir.ShaderMetadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "kind: %s\n", kindName(meta.Kind))
	if meta.Compute != nil {
		fmt.Fprintf(&b, "dimensionality: %d\n", meta.Compute.Dimensionality)
		fmt.Fprintf(&b, "threads: %v\n", meta.Compute.ThreadCount)
		fmt.Fprintf(&b, "workgroup: %v\n", meta.Compute.WorkgroupSize)
	}
	if meta.Fragment != nil {
		if meta.Fragment.IsCanvas {
			fmt.Fprintf(&b, "target: canvas %dx%d\n",
				meta.Fragment.CanvasSize[0], meta.Fragment.CanvasSize[1])
		} else {
			fmt.Fprintf(&b, "target: %s\n", meta.Fragment.TargetView)
			if meta.Fragment.ResolveTarget != "" {
				fmt.Fprintf(&b, "resolve: %s\n", meta.Fragment.ResolveTarget)
			}
		}
	}
	fmt.Fprintf(&b, "resources: %d\n", len(meta.Resources))
	for _, r := range meta.Resources {
		c := r.Base()
		fmt.Fprintf(&b, "  [%d:%d] %-8s %s\n", c.Group, c.Binding, r.Type(), c.Name)
	}
	return b.String()
}

func kindName(k ir.ShaderKind) string {
	switch k {
	case ir.KindCompute:
		return "compute"
	case ir.KindFragment:
		return "fragment"
	default:
		return "resource"
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: mslc [options] <input.msl>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  mslc shader.msl                         Emit WGSL to stdout\n")
	fmt.Fprintf(os.Stderr, "  mslc -D resolution=1920,1080 shader.msl Define a wildcard\n")
	fmt.Fprintf(os.Stderr, "  mslc -emit meta shader.msl              Print the resource graph\n")
}
