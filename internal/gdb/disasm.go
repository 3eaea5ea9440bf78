package gdb

import (
	"fmt"

	"github.com/burrbull/ugdb/internal/gdbmi"
)

// Instruction is one disassembled machine instruction.
type Instruction struct {
	// Address is the instruction's location.
	Address uint64
	// Function is the containing function, "" when unknown.
	Function string
	// Offset is the byte offset into the function.
	Offset int
	// Text is the instruction mnemonic and operands.
	Text string
}

// DisassembleFile disassembles the function containing the given source
// line.
func (s *Session) DisassembleFile(file string, line int) ([]Instruction, error) {
	record, err := s.execute(gdbmi.DataDisassembleFile(file, line, gdbmi.DisassembleModeOnly))
	if err != nil {
		return nil, err
	}
	return instructionsFromReply(record)
}

// DisassembleAddress disassembles the half-open address range
// [start, end).
func (s *Session) DisassembleAddress(start, end uint64) ([]Instruction, error) {
	record, err := s.execute(gdbmi.DataDisassembleAddress(start, end, gdbmi.DisassembleModeOnly))
	if err != nil {
		return nil, err
	}
	return instructionsFromReply(record)
}

func instructionsFromReply(record gdbmi.ResultRecord) ([]Instruction, error) {
	listValue, ok := record.Payload.Get("asm_insns")
	if !ok {
		return nil, fmt.Errorf("gdb: disassemble reply without asm_insns field")
	}
	items := listValue.List()
	instructions := make([]Instruction, 0, len(items))
	for _, item := range items {
		m := item.Map()
		if m == nil {
			return nil, fmt.Errorf("gdb: asm_insns entry is not a tuple")
		}
		inst := Instruction{
			Function: m.GetText("func-name"),
			Text:     m.GetText("inst"),
		}
		if v, ok := m.Get("address"); ok {
			addr, err := v.Uint()
			if err != nil {
				return nil, fmt.Errorf("gdb: bad instruction address: %w", err)
			}
			inst.Address = addr
		}
		if v, ok := m.Get("offset"); ok {
			if offset, err := v.Int(); err == nil {
				inst.Offset = offset
			}
		}
		instructions = append(instructions, inst)
	}
	return instructions, nil
}
