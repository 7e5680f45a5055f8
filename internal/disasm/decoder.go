// Package disasm decodes a short run of machine instructions, typically at an
// executable's entry point, for the report preview.
package disasm

import (
	"debug/elf"
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

const (
	// x86_64BitMode and x86_32BitMode are the x86asm decoding modes.
	x86_64BitMode = 64
	x86_32BitMode = 32

	// maxInstructionLen is the longest legal x86 instruction in bytes.
	maxInstructionLen = 15

	badInstruction = "(bad)"
)

// UnsupportedMachineError is returned by NewDecoder for architectures the
// decoder cannot handle.
type UnsupportedMachineError struct {
	Machine elf.Machine
}

func (e *UnsupportedMachineError) Error() string {
	return fmt.Sprintf("unsupported machine for disassembly: %s", e.Machine)
}

// Instruction is one decoded instruction.
type Instruction struct {
	// Addr is the virtual address of the first byte.
	Addr uint64

	// Len is the instruction length in bytes.
	Len int

	// Raw contains the instruction bytes.
	Raw []byte

	// Text is the Intel-syntax rendering, or "(bad)" for bytes that do not
	// decode.
	Text string
}

// Valid reports whether the bytes decoded to an instruction.
func (i Instruction) Valid() bool {
	return i.Text != badInstruction
}

// Hex renders Raw as space separated byte pairs.
func (i Instruction) Hex() string {
	parts := make([]string, len(i.Raw))
	for n, b := range i.Raw {
		parts[n] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}

// Decoder decodes x86 machine code in one operating mode.
type Decoder struct {
	mode int
}

// NewDecoder returns a decoder for machine. Only EM_X86_64 and EM_386 are
// supported.
func NewDecoder(machine elf.Machine) (*Decoder, error) {
	switch machine {
	case elf.EM_X86_64:
		return &Decoder{mode: x86_64BitMode}, nil
	case elf.EM_386:
		return &Decoder{mode: x86_32BitMode}, nil
	default:
		return nil, &UnsupportedMachineError{Machine: machine}
	}
}

// Mode returns the decoding mode in bits.
func (d *Decoder) Mode() int {
	return d.mode
}

// Decode decodes up to n instructions from code, which is mapped at addr.
// Bytes that do not decode yield a one-byte "(bad)" instruction and decoding
// resumes at the next byte.
func (d *Decoder) Decode(code []byte, addr uint64, n int) []Instruction {
	out := make([]Instruction, 0, n)
	for off := 0; off < len(code) && len(out) < n; {
		pc := addr + uint64(off)
		inst, err := x86asm.Decode(code[off:], d.mode)
		if err != nil || inst.Len == 0 {
			out = append(out, Instruction{Addr: pc, Len: 1, Raw: code[off : off+1], Text: badInstruction})
			off++
			continue
		}
		out = append(out, Instruction{
			Addr: pc,
			Len:  inst.Len,
			Raw:  code[off : off+inst.Len],
			Text: x86asm.IntelSyntax(inst, pc, nil),
		})
		off += inst.Len
	}
	return out
}
