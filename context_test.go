// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package drawstate

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/clip"
	"github.com/gogpu/drawstate/draw"
	"github.com/gogpu/drawstate/program"
	"github.com/gogpu/drawstate/stencil"
)

const testSize = 16

var fullScreen = clip.Rect(image.Rect(0, 0, testSize, testSize))

func newTestContext(t *testing.T, opts ...Option) (*Context, *Recorder) {
	t.Helper()
	rec, err := NewRecorder(testSize, testSize, 8)
	if err != nil {
		t.Fatalf("NewRecorder() = %v", err)
	}
	ctx, err := New(rec, opts...)
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	return ctx, rec
}

func testState() *draw.State {
	return draw.NewState(&draw.RenderTarget{Width: testSize, Height: testSize, StencilBits: 8})
}

func clippedState() *draw.State {
	s := testState()
	s.EnableFlags(draw.FlagClip)
	return s
}

// square is r as a polygon, which clips like the rectangle but always
// goes through the stencil.
func square(r image.Rectangle) clip.Polygon {
	return clip.Polygon{r.Min, {r.Max.X, r.Min.Y}, r.Max, {r.Min.X, r.Max.Y}}
}

func pushSquare(t *testing.T, s *clip.Stack, r image.Rectangle, op stencil.SetOp) {
	t.Helper()
	if err := s.Push(clip.Element{Op: op, Shape: square(r)}); err != nil {
		t.Fatalf("Push() = %v", err)
	}
}

func mustDraw(t *testing.T, ctx *Context, s *draw.State, geom any) bool {
	t.Helper()
	ok, err := ctx.Draw(s, geom)
	if err != nil {
		t.Fatalf("Draw() = %v", err)
	}
	return ok
}

// checkMask compares the recorder mask with want for every pixel.
func checkMask(t *testing.T, rec *Recorder, want func(x, y int) bool) {
	t.Helper()
	m := rec.Mask()
	bad := 0
	for y := 0; y < testSize; y++ {
		for x := 0; x < testSize; x++ {
			got := m.AlphaAt(x, y).A != 0
			if got != want(x, y) {
				if bad < 5 {
					t.Errorf("pixel (%d,%d) covered = %v, want %v", x, y, got, !got)
				}
				bad++
			}
		}
	}
	if bad > 5 {
		t.Errorf("%d mismatched pixels in total", bad)
	}
}

func TestNewNilBackend(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilBackend) {
		t.Fatalf("New(nil) error = %v, want ErrNilBackend", err)
	}
}

func TestNewInvalidStencilBits(t *testing.T) {
	rec, err := NewRecorder(4, 4, 8)
	if err != nil {
		t.Fatalf("NewRecorder() = %v", err)
	}
	if _, err := New(rec, WithStencilBits(1)); !errors.Is(err, stencil.ErrInvalidStencilBits) {
		t.Fatalf("New(WithStencilBits(1)) error = %v, want ErrInvalidStencilBits", err)
	}
}

func TestDrawNilState(t *testing.T) {
	ctx, _ := newTestContext(t)
	if _, err := ctx.Draw(nil, fullScreen); !errors.Is(err, ErrNilState) {
		t.Fatalf("Draw(nil) error = %v, want ErrNilState", err)
	}
}

func TestDrawSkipsNoOp(t *testing.T) {
	ctx, rec := newTestContext(t)
	s := testState()
	s.SetBlendCoeffs(blend.Zero, blend.One)

	if mustDraw(t, ctx, s, fullScreen) {
		t.Fatal("Draw() of a (Zero, One) state reached the backend")
	}
	if st := ctx.Stats(); st.Skipped != 1 || st.Draws != 0 {
		t.Errorf("Stats() = %+v, want 1 skipped and 0 draws", st)
	}
	if len(rec.Submissions) != 0 {
		t.Errorf("recorded %d submissions, want 0", len(rec.Submissions))
	}
	if ctx.Cache().Len() != 0 {
		t.Errorf("Cache().Len() = %d, want 0", ctx.Cache().Len())
	}
}

func TestDrawUnclipped(t *testing.T) {
	ctx, rec := newTestContext(t)
	if err := ctx.ClipStack().PushRect(image.Rect(4, 4, 12, 12), stencil.OpIntersect); err != nil {
		t.Fatalf("PushRect() = %v", err)
	}

	// Without FlagClip the stack is ignored.
	if !mustDraw(t, ctx, testState(), fullScreen) {
		t.Fatal("Draw() was dropped")
	}
	r := rec.Submissions[0]
	if r.Scissored {
		t.Error("unclipped draw is scissored")
	}
	if r.Pixels != testSize*testSize {
		t.Errorf("Pixels = %d, want %d", r.Pixels, testSize*testSize)
	}
	if ctx.Stats().ClipRenders != 0 {
		t.Errorf("ClipRenders = %d, want 0", ctx.Stats().ClipRenders)
	}
}

func TestDrawConfinedToClip(t *testing.T) {
	star := clip.Polygon{{8, 1}, {12, 14}, {2, 6}, {14, 6}, {4, 14}}

	tests := []struct {
		name  string
		setup func(s *clip.Stack) error
	}{
		{"rect", func(s *clip.Stack) error {
			return s.PushRect(image.Rect(4, 4, 12, 12), stencil.OpIntersect)
		}},
		{"star even-odd", func(s *clip.Stack) error {
			return s.Push(clip.Element{Op: stencil.OpIntersect, Shape: star, Fill: stencil.EvenOdd})
		}},
		{"star non-zero", func(s *clip.Stack) error {
			return s.Push(clip.Element{Op: stencil.OpIntersect, Shape: star, Fill: stencil.NonZero})
		}},
		{"rect minus star", func(s *clip.Stack) error {
			if err := s.PushRect(image.Rect(1, 1, 15, 15), stencil.OpIntersect); err != nil {
				return err
			}
			return s.Push(clip.Element{Op: stencil.OpDifference, Shape: star, Fill: stencil.NonZero})
		}},
		{"inverted rect", func(s *clip.Stack) error {
			return s.Push(clip.Element{Op: stencil.OpIntersect, Shape: clip.Rect(image.Rect(4, 4, 12, 12)), Inverted: true})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, rec := newTestContext(t)
			if err := tt.setup(ctx.ClipStack()); err != nil {
				t.Fatalf("setup: %v", err)
			}
			if !mustDraw(t, ctx, clippedState(), fullScreen) {
				t.Fatal("Draw() was dropped")
			}
			stack := ctx.ClipStack()
			checkMask(t, rec, stack.Contains)

			r := rec.Submissions[0]
			if !r.Scissored || r.Scissor != stack.Bounds() {
				t.Errorf("scissor = %v (%v), want %v", r.Scissor, r.Scissored, stack.Bounds())
			}
		})
	}
}

func TestDrawReusesClip(t *testing.T) {
	ctx, _ := newTestContext(t)
	pushSquare(t, ctx.ClipStack(), image.Rect(2, 2, 10, 10), stencil.OpIntersect)
	s := clippedState()

	steps := []struct {
		name        string
		action      func()
		wantRenders int
	}{
		{"first", func() {}, 1},
		{"unchanged", func() {}, 1},
		{"push", func() {
			_ = ctx.ClipStack().PushRect(image.Rect(6, 6, 12, 12), stencil.OpUnion)
		}, 2},
		{"pop", func() { ctx.ClipStack().Pop() }, 3},
		{"abandon", ctx.Abandon, 4},
	}
	for _, step := range steps {
		step.action()
		mustDraw(t, ctx, s, fullScreen)
		if got := ctx.Stats().ClipRenders; got != step.wantRenders {
			t.Errorf("%s: ClipRenders = %d, want %d", step.name, got, step.wantRenders)
		}
	}
}

func TestDrawEmptyClip(t *testing.T) {
	ctx, rec := newTestContext(t)
	stack := ctx.ClipStack()
	if err := stack.PushRect(image.Rect(0, 0, 4, 4), stencil.OpIntersect); err != nil {
		t.Fatalf("PushRect() = %v", err)
	}
	if err := stack.PushRect(image.Rect(8, 8, 12, 12), stencil.OpIntersect); err != nil {
		t.Fatalf("PushRect() = %v", err)
	}

	if mustDraw(t, ctx, clippedState(), fullScreen) {
		t.Fatal("Draw() with an empty clip reached the backend")
	}
	if st := ctx.Stats(); st.ClippedOut != 1 {
		t.Errorf("ClippedOut = %d, want 1", st.ClippedOut)
	}
	if len(rec.Submissions) != 0 {
		t.Errorf("recorded %d submissions, want 0", len(rec.Submissions))
	}
}

func TestDrawClientStencilKeepsClip(t *testing.T) {
	ctx, rec := newTestContext(t)
	pushSquare(t, ctx.ClipStack(), image.Rect(4, 4, 12, 12), stencil.OpIntersect)
	s := clippedState()
	s.SetStencil(stencil.New(stencil.IncClamp, stencil.Keep, stencil.EqualIfInClip, 0, 0, 0xffff))

	mustDraw(t, ctx, s, fullScreen)

	buf := rec.Buffer()
	clipBit := stencil.ClipBit(buf.Bits())
	if got := buf.At(6, 6); got != clipBit|1 {
		t.Errorf("inside value = %#x, want %#x", got, clipBit|1)
	}
	if got := buf.At(1, 1); got != 0 {
		t.Errorf("outside value = %#x, want 0", got)
	}
	checkMask(t, rec, func(x, y int) bool { return image.Pt(x, y).In(image.Rect(4, 4, 12, 12)) })
}

func TestDrawNoStencil(t *testing.T) {
	ctx, rec := newTestContext(t, WithStencilBits(0))
	pushSquare(t, ctx.ClipStack(), image.Rect(4, 4, 12, 12), stencil.OpIntersect)
	if _, err := ctx.Draw(clippedState(), fullScreen); !errors.Is(err, clip.ErrNoStencil) {
		t.Fatalf("Draw() error = %v, want ErrNoStencil", err)
	}

	// Rectangle clips and wide-open clips need no stencil.
	ctx.SetClip(nil)
	if err := ctx.ClipStack().PushRect(image.Rect(4, 4, 12, 12), stencil.OpIntersect); err != nil {
		t.Fatalf("PushRect() = %v", err)
	}
	mustDraw(t, ctx, clippedState(), fullScreen)
	checkMask(t, rec, func(x, y int) bool { return image.Pt(x, y).In(image.Rect(4, 4, 12, 12)) })
	ctx.SetClip(nil)
	mustDraw(t, ctx, clippedState(), fullScreen)
}

func TestDrawRectClipUsesScissor(t *testing.T) {
	star := clip.Polygon{{8, 1}, {12, 14}, {2, 6}, {14, 6}, {4, 14}}
	tests := []struct {
		name        string
		build       func(s *clip.Stack) error
		wantScissor image.Rectangle
		want        func(x, y int) bool
	}{
		{
			name: "intersect",
			build: func(s *clip.Stack) error {
				return s.PushRect(image.Rect(3, 5, 11, 13), stencil.OpIntersect)
			},
			wantScissor: image.Rect(3, 5, 11, 13),
			want:        func(x, y int) bool { return image.Pt(x, y).In(image.Rect(3, 5, 11, 13)) },
		},
		{
			name: "nested intersects",
			build: func(s *clip.Stack) error {
				if err := s.PushRect(image.Rect(2, 2, 12, 12), stencil.OpIntersect); err != nil {
					return err
				}
				return s.PushRect(image.Rect(6, 0, 16, 9), stencil.OpIntersect)
			},
			wantScissor: image.Rect(6, 2, 12, 9),
			want:        func(x, y int) bool { return image.Pt(x, y).In(image.Rect(6, 2, 12, 9)) },
		},
		{
			name: "replace hides star",
			build: func(s *clip.Stack) error {
				if err := s.Push(clip.Element{Op: stencil.OpIntersect, Shape: star}); err != nil {
					return err
				}
				return s.PushRect(image.Rect(1, 1, 7, 7), stencil.OpReplace)
			},
			wantScissor: image.Rect(1, 1, 7, 7),
			want:        func(x, y int) bool { return image.Pt(x, y).In(image.Rect(1, 1, 7, 7)) },
		},
		{
			name: "union covering clip",
			build: func(s *clip.Stack) error {
				if err := s.Push(clip.Element{Op: stencil.OpIntersect, Shape: star}); err != nil {
					return err
				}
				return s.Push(clip.Element{Op: stencil.OpUnion, Shape: fullScreen})
			},
			wantScissor: image.Rect(0, 0, testSize, testSize),
			want:        func(x, y int) bool { return true },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, rec := newTestContext(t)
			if err := tt.build(ctx.ClipStack()); err != nil {
				t.Fatalf("building clip: %v", err)
			}
			mustDraw(t, ctx, clippedState(), fullScreen)
			if got := ctx.Stats().ClipRenders; got != 0 {
				t.Errorf("ClipRenders = %d, want 0", got)
			}
			sub := rec.Submissions[0]
			if !sub.Scissored || sub.Scissor != tt.wantScissor {
				t.Errorf("scissor = %v (%v), want %v", sub.Scissor, sub.Scissored, tt.wantScissor)
			}
			if !sub.Stencil.IsDisabled() {
				t.Errorf("stencil = %v, want disabled", sub.Stencil)
			}
			checkMask(t, rec, tt.want)
		})
	}
}

func TestDrawBlendConstant(t *testing.T) {
	k := blend.Color{R: 0.25, G: 0.5, B: 0.75, A: 0.5}
	tests := []struct {
		name     string
		src, dst blend.Coeff
		want     blend.Color
		wantErr  bool
	}{
		{"constant color", blend.ConstC, blend.IConstC, k, false},
		{"constant alpha", blend.ConstA, blend.IConstA, blend.Gray(0.5), false},
		{"mixed", blend.ConstC, blend.IConstA, blend.Color{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, rec := newTestContext(t)
			s := testState()
			s.SetBlendCoeffs(tt.src, tt.dst)
			s.SetBlendConstant(k)
			_, err := ctx.Draw(s, fullScreen)
			if tt.wantErr {
				if !errors.Is(err, blend.ErrConstantConflict) {
					t.Fatalf("Draw() error = %v, want ErrConstantConflict", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Draw() = %v", err)
			}
			if got := rec.Submissions[0].BlendConstant; got != tt.want {
				t.Errorf("BlendConstant = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDrawBadGeometry(t *testing.T) {
	ctx, _ := newTestContext(t)
	if _, err := ctx.Draw(testState(), "triangle"); err == nil {
		t.Fatal("Draw() with non-shape geometry succeeded")
	}
}

func TestDrawProgramCaching(t *testing.T) {
	ctx, rec := newTestContext(t)
	a := testState()
	b := testState()
	b.SetColor(blend.Color{R: 1, A: 1})

	var programs []*program.Program
	ctx.backend = &captureBackend{Recorder: rec, programs: &programs}
	for range 3 {
		mustDraw(t, ctx, a, fullScreen)
		mustDraw(t, ctx, b, fullScreen)
	}
	if len(programs) != 6 {
		t.Fatalf("captured %d programs, want 6", len(programs))
	}
	for i := 2; i < 6; i++ {
		if programs[i] != programs[i%2] {
			t.Errorf("draw %d used a different program than draw %d", i, i%2)
		}
	}
	st := ctx.Stats().ProgramStats
	if st.Misses == 0 || st.HashHits+st.SearchHits != st.Requests-st.Misses {
		t.Errorf("ProgramStats = %+v", st)
	}
}

func TestAbandonInvalidatesPrograms(t *testing.T) {
	ctx, rec := newTestContext(t)
	var programs []*program.Program
	ctx.backend = &captureBackend{Recorder: rec, programs: &programs}

	mustDraw(t, ctx, testState(), fullScreen)
	ctx.Abandon()
	if programs[0].Valid() {
		t.Error("program still valid after Abandon")
	}
	mustDraw(t, ctx, testState(), fullScreen)
	if programs[1] == programs[0] || !programs[1].Valid() {
		t.Error("draw after Abandon did not rebuild the program")
	}

	ctx.Destroy()
	if programs[1].Valid() {
		t.Error("program still valid after Destroy")
	}
}

func TestDrawBackendError(t *testing.T) {
	ctx, rec := newTestContext(t)
	errBoom := errors.New("boom")
	ctx.backend = failingBackend{rec, errBoom}
	if _, err := ctx.Draw(testState(), fullScreen); !errors.Is(err, errBoom) {
		t.Fatalf("Draw() error = %v, want boom", err)
	}
	if ctx.Stats().Draws != 0 {
		t.Errorf("Draws = %d, want 0", ctx.Stats().Draws)
	}
}

type captureBackend struct {
	*Recorder
	programs *[]*program.Program
}

func (b *captureBackend) IssueDraw(sub *Submission) error {
	*b.programs = append(*b.programs, sub.Program)
	return b.Recorder.IssueDraw(sub)
}

type failingBackend struct {
	*Recorder
	err error
}

func (b failingBackend) IssueDraw(*Submission) error { return b.err }
