package bytecode

import (
	"bytes"
	"strings"
	"testing"
)

func TestDisassembleSimpleChunk(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(1.2, 1)
	c.Write(OpReturn, 1)

	var buf bytes.Buffer
	DisassembleChunk(&buf, "test", c)

	expected := "== test ==\n" +
		"0000    1 OP_CONSTANT         0 '1.2'\n" +
		"0002    | OP_RETURN\n"
	if buf.String() != expected {
		t.Errorf("disassembly mismatch:\nexpected:\n%s\ngot:\n%s", expected, buf.String())
	}
}

func TestDisassemblePipeForRepeatedLine(t *testing.T) {
	c := NewChunk()
	c.WriteConstant(1.0, 1)
	c.WriteConstant(2.0, 2)
	c.Write(OpAdd, 2)
	c.Write(OpReturn, 3)

	var buf bytes.Buffer
	DisassembleChunk(&buf, "lines", c)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	if !strings.Contains(lines[1], "   1 ") {
		t.Errorf("first instruction should show line 1: %q", lines[1])
	}
	if !strings.Contains(lines[2], "   2 ") {
		t.Errorf("second instruction should show line 2: %q", lines[2])
	}
	if !strings.Contains(lines[3], "   | ") {
		t.Errorf("same-line instruction should show '|': %q", lines[3])
	}
	if !strings.Contains(lines[4], "   3 ") {
		t.Errorf("new-line instruction should show line 3: %q", lines[4])
	}
}

func TestDisassembleLongConstant(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 256; i++ {
		c.AddConstant(float64(i))
	}
	c.WriteConstant(7.5, 4)
	c.Write(OpReturn, 4)

	var buf bytes.Buffer
	DisassembleChunk(&buf, "long", c)

	out := buf.String()
	if !strings.Contains(out, "OP_CONSTANT_LONG") {
		t.Errorf("expected OP_CONSTANT_LONG in output:\n%s", out)
	}
	if !strings.Contains(out, " 256 '7.5'") {
		t.Errorf("expected decoded u24 operand 256 with value:\n%s", out)
	}
}

func TestDisassembleArithmeticMnemonics(t *testing.T) {
	c := NewChunk()
	for _, op := range []byte{OpAdd, OpSub, OpMul, OpDiv, OpNegate} {
		c.Write(op, 1)
	}

	var buf bytes.Buffer
	DisassembleChunk(&buf, "ops", c)
	out := buf.String()

	for _, name := range []string{"OP_ADD", "OP_SUB", "OP_MUL", "OP_DIV", "OP_NEGATE"} {
		if !strings.Contains(out, name) {
			t.Errorf("missing %s in:\n%s", name, out)
		}
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{4.6000000000000005, "4.6"},
		{55.0, "55"},
		{0.0, "0"},
		{true, "true"},
		{nil, "NOTHING"},
		{"text", "text"},
	}
	for _, tc := range cases {
		if got := FormatValue(tc.in); got != tc.want {
			t.Errorf("FormatValue(%v): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
