// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package blend

// Mode is a Porter-Duff transfer mode that can be expressed with a pair of
// blend coefficients.
type Mode uint8

const (
	ModeClear    Mode = iota // 0
	ModeSrc                  // S
	ModeDst                  // D
	ModeSrcOver              // S + D*(1-Sa)
	ModeDstOver              // S*(1-Da) + D
	ModeSrcIn                // S*Da
	ModeDstIn                // D*Sa
	ModeSrcOut               // S*(1-Da)
	ModeDstOut               // D*(1-Sa)
	ModeSrcATop              // S*Da + D*(1-Sa)
	ModeDstATop              // S*(1-Da) + D*Sa
	ModeXor                  // S*(1-Da) + D*(1-Sa)
	ModePlus                 // S + D
	ModeModulate             // S*D
	ModeScreen               // S + D - S*D

	// ModeCount is the number of defined modes.
	ModeCount int = iota
)

var modeCoeffs = [...][2]Coeff{
	ModeClear:    {Zero, Zero},
	ModeSrc:      {One, Zero},
	ModeDst:      {Zero, One},
	ModeSrcOver:  {One, ISA},
	ModeDstOver:  {IDA, One},
	ModeSrcIn:    {DA, Zero},
	ModeDstIn:    {Zero, SA},
	ModeSrcOut:   {IDA, Zero},
	ModeDstOut:   {Zero, ISA},
	ModeSrcATop:  {DA, ISA},
	ModeDstATop:  {IDA, SA},
	ModeXor:      {IDA, ISA},
	ModePlus:     {One, One},
	ModeModulate: {Zero, SC},
	ModeScreen:   {One, ISC},
}

var modeNames = [...]string{
	ModeClear:    "Clear",
	ModeSrc:      "Src",
	ModeDst:      "Dst",
	ModeSrcOver:  "SrcOver",
	ModeDstOver:  "DstOver",
	ModeSrcIn:    "SrcIn",
	ModeDstIn:    "DstIn",
	ModeSrcOut:   "SrcOut",
	ModeDstOut:   "DstOut",
	ModeSrcATop:  "SrcATop",
	ModeDstATop:  "DstATop",
	ModeXor:      "Xor",
	ModePlus:     "Plus",
	ModeModulate: "Modulate",
	ModeScreen:   "Screen",
}

// Coeffs returns the source and destination coefficients of the mode.
// Unknown modes return the coefficients of SrcOver.
func (m Mode) Coeffs() (src, dst Coeff) {
	if int(m) >= len(modeCoeffs) {
		return One, ISA
	}
	c := modeCoeffs[m]
	return c[0], c[1]
}

// String returns the mode name.
func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "Mode(?)"
}

// ModeFromCoeffs returns the mode whose coefficients are (src, dst), if any.
func ModeFromCoeffs(src, dst Coeff) (Mode, bool) {
	for m, c := range modeCoeffs {
		if c[0] == src && c[1] == dst {
			return Mode(m), true
		}
	}
	return 0, false
}
