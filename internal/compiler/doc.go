// Package compiler turns program source into an executable ir.Program.
//
// The pipeline has two passes, both single forward scans:
//
//	source --Resolve--> []ir.Instruction --Optimize--> []ir.Instruction --ir.NewProgram--> *ir.Program
//
// Resolve maps each of the eight instruction symbols to one instruction and
// backpatches loop targets with an explicit stack. Optimize folds runs of
// identical counted instructions and backpatches again, because folding
// shifts every later index.
//
// After either pass, ValidateLoops reports no errors.
package compiler
