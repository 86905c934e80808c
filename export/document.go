package export

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/ezrec/asm8085/cpu"
)

// Metadata describes the exported range.
type Metadata struct {
	Format       string `json:"format" yaml:"format"`
	StartAddress int    `json:"start_address" yaml:"start_address"`
	EndAddress   int    `json:"end_address" yaml:"end_address"` // Inclusive.
	Size         int    `json:"size" yaml:"size"`
}

// Instruction is the emitted bytes of one source line.
type Instruction struct {
	Address string   `json:"address" yaml:"address"`
	Size    int      `json:"size" yaml:"size"`
	Bytes   []string `json:"bytes" yaml:"bytes"`
	Line    int      `json:"line" yaml:"line"`
}

// Document is the structured export of a program.
type Document struct {
	Metadata     Metadata          `json:"metadata" yaml:"metadata"`
	Memory       map[string]string `json:"memory" yaml:"memory"`
	Labels       map[string]string `json:"labels" yaml:"labels"`
	Instructions []Instruction     `json:"instructions,omitempty" yaml:"instructions,omitempty"`
}

// NewDocument builds the structured export of a program.
// Only written addresses appear in the memory map.
func NewDocument(prog *cpu.Program) (doc *Document) {
	start, end := int(prog.LoadOffset), prog.End()

	doc = &Document{
		Metadata: Metadata{
			Format:       "8085-assembly",
			StartAddress: start,
			EndAddress:   end - 1,
			Size:         end - start,
		},
		Memory: map[string]string{},
		Labels: map[string]string{},
	}

	for addr := start; addr < end; addr++ {
		if prog.Written[addr] {
			doc.Memory[fmt.Sprintf("0x%04X", addr)] = fmt.Sprintf("0x%02X", prog.Memory[addr])
		}
	}

	for label, addr := range prog.Labels {
		doc.Labels[label] = fmt.Sprintf("0x%04X", addr)
	}

	for n, size := range prog.LineSize {
		if size == 0 {
			continue
		}
		addr := prog.LineOffset[n]
		insn := Instruction{
			Address: fmt.Sprintf("0x%04X", addr),
			Size:    size,
			Line:    n + 1,
		}
		for offset := range size {
			insn.Bytes = append(insn.Bytes, fmt.Sprintf("0x%02X", prog.Memory[addr+uint16(offset)]))
		}
		doc.Instructions = append(doc.Instructions, insn)
	}

	return
}

// JSON writes the program document as indented JSON.
func JSON(w io.Writer, prog *cpu.Program) (err error) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err = enc.Encode(NewDocument(prog))
	return
}

// YAML writes the program document as YAML.
func YAML(w io.Writer, prog *cpu.Program) (err error) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	err = enc.Encode(NewDocument(prog))
	if err != nil {
		return
	}
	err = enc.Close()
	return
}
