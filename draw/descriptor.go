// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package draw

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash/fnv"

	"github.com/gogpu/drawstate/blend"
	"github.com/gogpu/drawstate/effect"
)

// DescriptorSize is the byte length of a Descriptor.
const DescriptorSize = 96

// The size must stay a multiple of 8 so descriptors compare as whole words.
var _ = [1]struct{}{}[DescriptorSize%8]

// Descriptor offsets. Every byte not written by BuildDescriptor is zero.
const (
	offChecksum      = 0  // uint32 little endian, FNV-1a over [4:]
	offVertexLayout  = 4  // uint16 layout bits
	offColorInput    = 6  // ColorInput
	offCoverageInput = 7  // ColorInput
	offPrimary       = 8  // PrimaryOutput
	offSecondary     = 9  // SecondaryOutput
	offFirstCoverage = 10 // index of the first coverage stage, MaxStages if none
	offColorFilter   = 11 // blend.Mode
	offFlags         = 12 // descriptor flag bits
	offEdgeType      = 13 // EdgeType
	offNumColor      = 14
	offNumCoverage   = 15
	offStages        = 16 // MaxStages stage keys
	stageKeySize     = 8
	offAttribs       = offStages + MaxStages*stageKeySize // binding<<4 | type+1 per attribute
	offReserved      = offAttribs + MaxVertexAttribs
)

// vertex layout bits
const (
	layoutLocalCoords uint16 = 1 << iota
	layoutCoverage
	layoutEdge
	layoutPosition3

	layoutEffectShift = 8 // number of effect attributes in bits 8..11
)

// descriptor flag bits
const (
	descCoverageAsAlpha byte = 1 << iota
	descReadsDst
	descReadsFragPos
	descDstFetch
	descDither
	descLocalCoords
)

// stage flag bits
const (
	stageEnabled byte = 1 << iota
	stageCoordChange
)

// Descriptor summarizes everything that affects generated shader text.
// Byte-equal descriptors produce identical programs.
type Descriptor [DescriptorSize]byte

// BuildDescriptor packs the shader-affecting parts of c.
func BuildDescriptor(c *Compiled, caps Capabilities) Descriptor {
	var d Descriptor

	var layout uint16
	effectAttribs := 0
	for _, a := range c.attribs {
		switch a.Binding {
		case BindingLocalCoord:
			layout |= layoutLocalCoords
		case BindingCoverage:
			layout |= layoutCoverage
		case BindingEdge:
			layout |= layoutEdge
		case BindingPosition:
			if a.Type == Float3 {
				layout |= layoutPosition3
			}
		case BindingEffect:
			effectAttribs++
		}
	}
	layout |= uint16(effectAttribs) << layoutEffectShift
	binary.LittleEndian.PutUint16(d[offVertexLayout:], layout)

	d[offColorInput] = byte(c.colorInput)
	d[offCoverageInput] = byte(c.coverageInput)
	d[offPrimary] = byte(c.primary)
	d[offSecondary] = byte(c.secondary)

	first := MaxStages
	if len(c.covStages) > 0 {
		first = len(c.colorStages)
	}
	d[offFirstCoverage] = byte(first)
	d[offColorFilter] = byte(c.filterMode)

	var flags byte
	if c.coverageAlpha {
		flags |= descCoverageAsAlpha
	}
	if c.readsDst {
		flags |= descReadsDst
		if caps.SupportsDestinationRead() {
			flags |= descDstFetch
		}
	}
	if c.readsFragPos {
		flags |= descReadsFragPos
	}
	if c.flags&FlagDither != 0 {
		flags |= descDither
	}
	if c.localCoords {
		flags |= descLocalCoords
	}
	d[offFlags] = flags
	d[offEdgeType] = byte(c.edgeType)
	d[offNumColor] = byte(len(c.colorStages))
	d[offNumCoverage] = byte(len(c.covStages))

	i := 0
	for _, st := range c.colorStages {
		putStageKey(d[offStages+i*stageKeySize:], st)
		i++
	}
	for _, st := range c.covStages {
		putStageKey(d[offStages+i*stageKeySize:], st)
		i++
	}

	for j, a := range c.attribs {
		d[offAttribs+j] = byte(a.Binding)<<4 | (byte(a.Type) + 1)
	}

	binary.LittleEndian.PutUint32(d[offChecksum:], checksum(d[offChecksum+4:]))
	return d
}

func putStageKey(b []byte, st Stage) {
	k := st.Effect.Key()
	binary.LittleEndian.PutUint16(b[0:], uint16(k.Class))
	b[2] = k.Variant
	flags := stageEnabled
	if st.HasCoordChange() {
		flags |= stageCoordChange
	}
	b[3] = flags
	b[4] = byte(k.Fetch)
	b[5] = byte(k.Mapping)
	b[6] = byte(k.Modulation)
}

func checksum(b []byte) uint32 {
	h := fnv.New32a()
	h.Write(b)
	return h.Sum32()
}

// Checksum returns the precomputed checksum.
func (d *Descriptor) Checksum() uint32 {
	return binary.LittleEndian.Uint32(d[offChecksum:])
}

// Valid reports whether the stored checksum matches the contents.
func (d *Descriptor) Valid() bool {
	return d.Checksum() == checksum(d[offChecksum+4:])
}

// Equal reports whether two descriptors are byte-equal.
func (d *Descriptor) Equal(o *Descriptor) bool {
	return *d == *o
}

// Compare orders descriptors by their raw bytes.
func (d *Descriptor) Compare(o *Descriptor) int {
	return bytes.Compare(d[:], o[:])
}

// ColorInput returns the color input kind.
func (d *Descriptor) ColorInput() ColorInput { return ColorInput(d[offColorInput]) }

// CoverageInput returns the coverage input kind.
func (d *Descriptor) CoverageInput() ColorInput { return ColorInput(d[offCoverageInput]) }

// PrimaryOutput returns the primary output kind.
func (d *Descriptor) PrimaryOutput() PrimaryOutput { return PrimaryOutput(d[offPrimary]) }

// SecondaryOutput returns the dual-source output kind.
func (d *Descriptor) SecondaryOutput() SecondaryOutput { return SecondaryOutput(d[offSecondary]) }

// FirstCoverageStage returns the index of the first coverage stage, or
// MaxStages when there is none.
func (d *Descriptor) FirstCoverageStage() int { return int(d[offFirstCoverage]) }

// ColorFilterMode returns the color filter transfer mode.
func (d *Descriptor) ColorFilterMode() blend.Mode { return blend.Mode(d[offColorFilter]) }

// EdgeType returns the analytic edge kind.
func (d *Descriptor) EdgeType() EdgeType { return EdgeType(d[offEdgeType]) }

// NumColorStages returns the number of color stages.
func (d *Descriptor) NumColorStages() int { return int(d[offNumColor]) }

// NumCoverageStages returns the number of coverage stages.
func (d *Descriptor) NumCoverageStages() int { return int(d[offNumCoverage]) }

// CoverageAsAlpha reports whether coverage is folded into alpha.
func (d *Descriptor) CoverageAsAlpha() bool { return d[offFlags]&descCoverageAsAlpha != 0 }

// ReadsDst reports whether the program samples the destination.
func (d *Descriptor) ReadsDst() bool { return d[offFlags]&descReadsDst != 0 }

// DstFetch reports whether the destination is read in place rather than
// from a copy.
func (d *Descriptor) DstFetch() bool { return d[offFlags]&descDstFetch != 0 }

// ReadsFragmentPosition reports whether the program reads the fragment
// position.
func (d *Descriptor) ReadsFragmentPosition() bool { return d[offFlags]&descReadsFragPos != 0 }

// Dither reports whether dithering is on.
func (d *Descriptor) Dither() bool { return d[offFlags]&descDither != 0 }

// RequiresLocalCoords reports whether a stage reads local coordinates.
func (d *Descriptor) RequiresLocalCoords() bool { return d[offFlags]&descLocalCoords != 0 }

// StageKey returns the effect key of stage i (color stages first) and
// whether the stage transforms its coordinates.
func (d *Descriptor) StageKey(i int) (k effect.Key, coordChange bool) {
	b := d[offStages+i*stageKeySize:]
	k = effect.Key{
		Class:      effect.Class(binary.LittleEndian.Uint16(b[0:])),
		Variant:    b[2],
		Fetch:      effect.FetchMode(b[4]),
		Mapping:    effect.CoordMapping(b[5]),
		Modulation: effect.Modulation(b[6]),
	}
	return k, b[3]&stageCoordChange != 0
}

// Attrib returns the binding and type of attribute i and whether it exists.
func (d *Descriptor) Attrib(i int) (Binding, VertexAttribType, bool) {
	if i >= MaxVertexAttribs {
		return 0, 0, false
	}
	v := d[offAttribs+i]
	if v == 0 {
		return 0, 0, false
	}
	return Binding(v >> 4), VertexAttribType(v&0x0f) - 1, true
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("desc{%08x color=%v coverage=%v stages=%d+%d %s}",
		d.Checksum(), d.ColorInput(), d.CoverageInput(),
		d.NumColorStages(), d.NumCoverageStages(), hex.EncodeToString(d[offVertexLayout:offStages]))
}
