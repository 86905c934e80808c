// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package export writes assembled programs in hex dump, Intel HEX,
// C array, JSON and YAML formats.
package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ezrec/asm8085/cpu"
)

// Format is the name of an export format.
type Format string

const (
	FORMAT_RAW   = Format("raw")   // Address prefixed hex dump.
	FORMAT_INTEL = Format("intel") // Intel HEX records.
	FORMAT_C     = Format("c")     // C byte array.
	FORMAT_JSON  = Format("json")  // JSON document.
	FORMAT_YAML  = Format("yaml")  // YAML document.
)

const bytesPerLine = 16

var extensions = map[Format]string{
	FORMAT_RAW:   ".txt",
	FORMAT_INTEL: ".hex",
	FORMAT_C:     ".h",
	FORMAT_JSON:  ".json",
	FORMAT_YAML:  ".yaml",
}

// Formats returns the supported formats.
func Formats() (formats []Format) {
	for format := range extensions {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return
}

// Extension returns the conventional file extension of a format.
func (format Format) Extension() string {
	return extensions[format]
}

// Write exports a program in the requested format.
func Write(w io.Writer, prog *cpu.Program, format Format) (err error) {
	switch format {
	case FORMAT_RAW:
		err = Raw(w, prog)
	case FORMAT_INTEL:
		err = Intel(w, prog)
	case FORMAT_C:
		err = C(w, prog)
	case FORMAT_JSON:
		err = JSON(w, prog)
	case FORMAT_YAML:
		err = YAML(w, prog)
	default:
		err = fmt.Errorf("%w: %v", ErrFormatUnknown, format)
	}
	return
}

// chunks iterates over the exported range in lines of up to 16 bytes.
func chunks(prog *cpu.Program, yield func(addr int, data []uint8)) {
	start, end := int(prog.LoadOffset), prog.End()
	for addr := start; addr < end; addr += bytesPerLine {
		yield(addr, prog.Bytes(addr, min(addr+bytesPerLine, end)))
	}
}

func hexBytes(data []uint8, format string, sep string) string {
	parts := make([]string, len(data))
	for n, value := range data {
		parts[n] = fmt.Sprintf(format, value)
	}
	return strings.Join(parts, sep)
}

// Raw writes a commented hex dump, 16 bytes per line.
func Raw(w io.Writer, prog *cpu.Program) (err error) {
	var out strings.Builder

	start, end := int(prog.LoadOffset), prog.End()
	fmt.Fprintf(&out, "; 8085 Machine Code - Raw Hex Format\n")
	fmt.Fprintf(&out, "; Start Address: %04XH\n", start)
	fmt.Fprintf(&out, "; Length: %d bytes\n\n", end-start)

	chunks(prog, func(addr int, data []uint8) {
		fmt.Fprintf(&out, "%04X: %v\n", addr, hexBytes(data, "%02X", " "))
	})

	_, err = io.WriteString(w, out.String())
	return
}

// IntelRecord formats a single Intel HEX record.
func IntelRecord(kind uint8, addr uint16, data []uint8) string {
	sum := uint8(len(data)) + uint8(addr>>8) + uint8(addr) + kind
	for _, value := range data {
		sum += value
	}

	return fmt.Sprintf(":%02X%04X%02X%v%02X", len(data), addr, kind, hexBytes(data, "%02X", ""), -sum)
}

// Intel writes Intel HEX data records followed by the end of file record.
func Intel(w io.Writer, prog *cpu.Program) (err error) {
	var out strings.Builder

	chunks(prog, func(addr int, data []uint8) {
		fmt.Fprintln(&out, IntelRecord(0x00, uint16(addr), data))
	})
	fmt.Fprintln(&out, IntelRecord(0x01, 0, nil))

	_, err = io.WriteString(w, out.String())
	return
}

// C writes the program as a C byte array with its size and start address.
func C(w io.Writer, prog *cpu.Program) (err error) {
	var out strings.Builder

	start, end := int(prog.LoadOffset), prog.End()
	fmt.Fprintf(&out, "/* 8085 Machine Code - C Array Format */\n")
	fmt.Fprintf(&out, "/* Start Address: 0x%04X */\n", start)
	fmt.Fprintf(&out, "/* Length: %d bytes */\n\n", end-start)
	fmt.Fprintf(&out, "const unsigned char program[] = {\n")

	chunks(prog, func(addr int, data []uint8) {
		line := hexBytes(data, "0x%02X", ", ")
		if addr+len(data) < end {
			line += ","
		}
		fmt.Fprintf(&out, "    %v\n", line)
	})

	fmt.Fprintf(&out, "};\n\n")
	fmt.Fprintf(&out, "const unsigned int program_size = %d;\n", end-start)
	fmt.Fprintf(&out, "const unsigned int program_start = 0x%04X;\n", start)

	_, err = io.WriteString(w, out.String())
	return
}
