package main

import (
	"os"

	"flint-lang/internal/bytecode"
)

// cmdChunk builds the demo chunk by hand, dumps it, and runs it on the VM.
// The bytecode back-end has no compiler yet; this is its driver.
func cmdChunk() {
	c := bytecode.NewChunk()
	c.WriteConstant(1.2, 1)
	c.WriteConstant(3.4, 1)
	c.Write(bytecode.OpAdd, 1)
	c.Write(bytecode.OpNegate, 2)
	c.Write(bytecode.OpReturn, 2)

	bytecode.DisassembleChunk(os.Stdout, "test chunk", c)

	vm := bytecode.NewVM(os.Stdout, os.Stderr)
	if vm.Interpret(c) != bytecode.ResultOK {
		os.Exit(exitRuntime)
	}
}
