// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package program

import (
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/msl"
)

// Language is a shading language naga can emit.
type Language uint8

const (
	GLSL Language = iota
	MSL
	HLSL
)

func (l Language) String() string {
	switch l {
	case GLSL:
		return "GLSL"
	case MSL:
		return "MSL"
	case HLSL:
		return "HLSL"
	}
	return fmt.Sprintf("Language(%d)", uint8(l))
}

// Translate converts the WGSL of src to another shading language, for
// backends that do not consume SPIR-V.
func Translate(src *Source, lang Language) (string, error) {
	ast, err := naga.Parse(src.WGSL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrBuildFailed, src.Label, err)
	}
	module, err := naga.LowerWithSource(ast, src.WGSL)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrBuildFailed, src.Label, err)
	}

	var out string
	switch lang {
	case GLSL:
		out, _, err = glsl.Compile(module, glsl.DefaultOptions())
	case MSL:
		out, _, err = msl.Compile(module, msl.DefaultOptions())
	case HLSL:
		out, _, err = hlsl.Compile(module, hlsl.DefaultOptions())
	default:
		return "", fmt.Errorf("%w: %v", ErrUnknownLanguage, lang)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s to %v: %w", ErrBuildFailed, src.Label, lang, err)
	}
	return out, nil
}

// CompileSPIRV compiles the WGSL of src to SPIR-V words.
func CompileSPIRV(src *Source) ([]uint32, error) {
	spirvBytes, err := naga.Compile(src.WGSL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBuildFailed, src.Label, err)
	}

	// SPIR-V is little-endian 32-bit words
	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// SPIRVCompiler compiles programs to SPIR-V without a device. Its handles
// are the []uint32 modules, for offline tools and backends that upload
// modules themselves. Dual-source programs are rejected since naga cannot
// parse their WGSL.
type SPIRVCompiler struct{}

func (SPIRVCompiler) CompileAndLink(src *Source) (Handle, error) {
	if src.DualSource {
		return nil, fmt.Errorf("%w: %s: dual-source output needs a WGSL consumer", ErrBuildFailed, src.Label)
	}
	return CompileSPIRV(src)
}

func (SPIRVCompiler) DestroyProgram(Handle) {}
