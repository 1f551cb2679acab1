// Command drawdemo compiles a handful of draws against a software backend
// and prints what the optimizer, the program cache and the clip compiler
// did with them.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"strings"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/drawstate"
	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/clip"
	"github.com/gogpu/drawstate/draw"
	"github.com/gogpu/drawstate/effect"
	"github.com/gogpu/drawstate/program"
	"github.com/gogpu/drawstate/stencil"
)

func main() {
	var (
		size    = flag.Int("size", 64, "target width and height")
		bits    = flag.Int("bits", 8, "stencil bits")
		dual    = flag.Bool("dual-source", false, "assume dual-source blending")
		lang    = flag.String("lang", "", "print shaders translated to glsl, msl or hlsl")
		output  = flag.String("output", "", "write the coverage mask to this PNG file")
		scale   = flag.Int("scale", 4, "PNG upscale factor")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *verbose {
		drawstate.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	rec, err := drawstate.NewRecorder(*size, *size, *bits)
	if err != nil {
		log.Fatal(err)
	}
	ctx, err := drawstate.New(rec, drawstate.WithCaps(draw.NewCaps(*dual, false)))
	if err != nil {
		log.Fatal(err)
	}
	defer ctx.Destroy()

	n := *size
	if err := buildClip(ctx.ClipStack(), n); err != nil {
		log.Fatal(err)
	}
	plan, err := ctx.ApplyClip()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("clip: %s\n\n", plan)

	target := &draw.RenderTarget{Width: n, Height: n, StencilBits: *bits}
	full := clip.Rect(image.Rect(0, 0, n, n))
	for _, d := range demoDraws(target) {
		ok, err := ctx.Draw(d.state, full)
		if err != nil {
			log.Fatalf("%s: %v", d.name, err)
		}
		printDraw(d.name, d.state, ctx, ok, *lang)
	}

	st := ctx.Stats()
	fmt.Printf("draws %d, skipped %d, clipped out %d, clip renders %d\n",
		st.Draws, st.Skipped, st.ClippedOut, st.ClipRenders)
	ps := st.ProgramStats
	fmt.Printf("programs %d: %d requests, %d hash hits, %d search hits, %d misses\n",
		ps.Len, ps.Requests, ps.HashHits, ps.SearchHits, ps.Misses)

	if *output != "" {
		if err := savePNG(*output, rec.Mask(), *scale); err != nil {
			log.Fatalf("Failed to save: %v", err)
		}
		log.Printf("Mask saved to %s", *output)
	}
}

// buildClip clips to a centered square with a star cut out of it.
func buildClip(s *clip.Stack, n int) error {
	m := n / 8
	if err := s.PushRect(image.Rect(m, m, n-m, n-m), stencil.OpIntersect); err != nil {
		return err
	}
	star := make(clip.Polygon, 0, 5)
	for _, p := range [][2]int{{8, 1}, {12, 14}, {2, 6}, {14, 6}, {4, 14}} {
		star = append(star, image.Pt(p[0]*n/16, p[1]*n/16))
	}
	return s.Push(clip.Element{Op: stencil.OpDifference, Shape: star, Fill: stencil.EvenOdd})
}

type demoDraw struct {
	name  string
	state *draw.State
}

func demoDraws(target *draw.RenderTarget) []demoDraw {
	opaque := draw.NewState(target)
	opaque.SetColor(blend.Color{R: 0.9, G: 0.2, B: 0.1, A: 1})
	opaque.EnableFlags(draw.FlagClip)

	translucent := draw.NewState(target)
	translucent.SetColor(blend.Color{R: 0.1, G: 0.4, B: 0.9, A: 0.5})
	translucent.SetBlendMode(blend.ModeSrcOver)
	translucent.SetCoverage(0.75)
	translucent.EnableFlags(draw.FlagClip | draw.FlagDither)

	gradient := draw.NewState(target)
	gradient.SetBlendMode(blend.ModeSrcOver)
	_ = gradient.AddColorStage(draw.NewStage(effect.LinearGradient{
		Start: blend.Color{R: 1, A: 1},
		End:   blend.Color{B: 1, A: 1},
	}).WithCoordChange(f64.Aff3{1 / float64(target.Width), 0, 0, 0, 1, 0}))
	gradient.EnableFlags(draw.FlagClip)

	hidden := draw.NewState(target)
	hidden.SetBlendCoeffs(blend.Zero, blend.One)

	return []demoDraw{
		{"opaque", opaque},
		{"translucent", translucent},
		{"gradient", gradient},
		{"opaque again", opaque},
		{"no-op blend", hidden},
	}
}

func printDraw(name string, s *draw.State, ctx *drawstate.Context, drawn bool, lang string) {
	dc := draw.Optimize(s, ctx.Caps())
	if dc == nil {
		fmt.Printf("%s: skipped\n\n", name)
		return
	}
	src, dst := dc.BlendCoeffs()
	fmt.Printf("%s: drawn=%v plan=%v blend=(%v, %v) color=%v coverage=%v secondary=%v\n",
		name, drawn, dc.Plan(), src, dst, dc.ColorInput(), dc.CoverageInput(), dc.SecondaryOutput())
	fmt.Printf("  %s\n", dc.Descriptor())
	if lang == "" {
		fmt.Println()
		return
	}
	l, ok := parseLanguage(lang)
	if !ok {
		log.Fatalf("unknown language %q", lang)
	}
	p, err := ctx.Cache().Program(dc)
	if err != nil {
		log.Fatal(err)
	}
	out, err := program.Translate(p.Source(), l)
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}
	fmt.Printf("%s\n", out)
}

func parseLanguage(s string) (program.Language, bool) {
	for _, l := range []program.Language{program.GLSL, program.MSL, program.HLSL} {
		if strings.EqualFold(s, l.String()) {
			return l, true
		}
	}
	return 0, false
}

func savePNG(path string, mask *image.Alpha, scale int) error {
	if scale < 1 {
		scale = 1
	}
	b := mask.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), mask, b, xdraw.Src, nil)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
