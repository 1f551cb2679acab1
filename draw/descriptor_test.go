// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"testing"

	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/effect"
)

func compiledWith(t *testing.T, setup func(s *State)) *Compiled {
	t.Helper()
	s := NewState(nil)
	setup(s)
	c := Optimize(s, noCaps)
	if c == nil {
		t.Fatal("Optimize() = nil")
	}
	return c
}

func TestDescriptorChecksum(t *testing.T) {
	c := compiledWith(t, func(s *State) {})
	d := *c.Descriptor()
	if !d.Valid() {
		t.Fatal("fresh descriptor fails its checksum")
	}
	d[offColorFilter] ^= 1
	if d.Valid() {
		t.Error("checksum did not notice a changed byte")
	}
}

func TestDescriptorFields(t *testing.T) {
	c := compiledWith(t, func(s *State) {
		_ = s.SetVertexAttribs(colorLayout)
		s.EnableFlags(FlagDither)
		_ = s.AddColorStage(NewStage(effect.LinearGradient{Start: blend.Black, End: blend.White}).
			WithCoordChange([6]float64{2, 0, 0, 0, 2, 0}))
		_ = s.AddColorStage(NewStage(effect.Dither{Amount: 0.5}))
		_ = s.AddCoverageStage(NewStage(effect.EdgeRamp{}))
	})
	d := c.Descriptor()
	if d.NumColorStages() != 2 || d.NumCoverageStages() != 1 {
		t.Fatalf("stages = %d+%d, want 2+1", d.NumColorStages(), d.NumCoverageStages())
	}
	if d.FirstCoverageStage() != 2 {
		t.Errorf("FirstCoverageStage() = %d, want 2", d.FirstCoverageStage())
	}
	k, moved := d.StageKey(0)
	if k != (effect.LinearGradient{}).Key() || !moved {
		t.Errorf("StageKey(0) = %+v moved=%v", k, moved)
	}
	if k, _ := d.StageKey(2); k.Class != effect.ClassEdgeRamp {
		t.Errorf("StageKey(2).Class = %d, want EdgeRamp", k.Class)
	}
	if !d.Dither() || !d.ReadsFragmentPosition() || !d.RequiresLocalCoords() {
		t.Errorf("flags = %08b", d[offFlags])
	}
	if d.ColorInput() != ColorInputAttribute {
		t.Errorf("ColorInput() = %v", d.ColorInput())
	}
	for i, a := range colorLayout {
		b, typ, ok := d.Attrib(i)
		if !ok || b != a.Binding || typ != a.Type {
			t.Errorf("Attrib(%d) = %v %v %v, want %v %v", i, b, typ, ok, a.Binding, a.Type)
		}
	}
	if _, _, ok := d.Attrib(len(colorLayout)); ok {
		t.Error("Attrib past the layout reported present")
	}
}

func TestDescriptorNoCoverageStages(t *testing.T) {
	d := compiledWith(t, func(s *State) {}).Descriptor()
	if d.FirstCoverageStage() != MaxStages {
		t.Errorf("FirstCoverageStage() = %d, want %d", d.FirstCoverageStage(), MaxStages)
	}
	for _, b := range d[offReserved:] {
		if b != 0 {
			t.Fatalf("reserved bytes not zero: %x", d[offReserved:])
		}
	}
}

func TestDescriptorCompare(t *testing.T) {
	a := compiledWith(t, func(s *State) {}).Descriptor()
	b := compiledWith(t, func(s *State) { s.EnableFlags(FlagDither) }).Descriptor()
	if a.Compare(a) != 0 || !a.Equal(a) {
		t.Error("descriptor not equal to itself")
	}
	if a.Equal(b) {
		t.Fatal("different states share a descriptor")
	}
	if ab, ba := a.Compare(b), b.Compare(a); ab == 0 || ab != -ba {
		t.Errorf("Compare is not antisymmetric: %d, %d", ab, ba)
	}
}

func TestDescriptorIgnoresUniformValues(t *testing.T) {
	a := compiledWith(t, func(s *State) { s.SetColor(blend.Color{R: 0.5, A: 1}) })
	b := compiledWith(t, func(s *State) { s.SetColor(blend.Color{G: 0.5, A: 1}) })
	if !a.Descriptor().Equal(b.Descriptor()) {
		t.Error("uniform color leaked into the descriptor")
	}
	if a.IsEqual(b) {
		t.Error("IsEqual ignored the uniform color")
	}
}
