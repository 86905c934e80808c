// Package cpu implements the Intel 8085 microprocessor and its assembler.
//
// The CPU consists of seven 8-bit registers (A, B, C, D, E, H, L), a flag
// register holding the Sign, Zero, Auxiliary-Carry, Parity and Carry flags,
// a 16-bit stack pointer and program counter, and a flat 64KiB memory. The
// register pairs BC, DE and HL are views over the 8-bit registers.
//
// The assembler is a two pass assembler for the 8085 instruction set,
// supporting labels, ORG/DB/DW/DS/EQU/END directives, +/- expressions,
// and $(...) compile-time expressions.
//
// The opcode table, disassembler and cycle costs are shared by both.
package cpu
