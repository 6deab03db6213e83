package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.gatech.edu/ECEInnovation/rv32ias/assembler"
)

func writeSource(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.s")
	if err := os.WriteFile(path, []byte(source), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAssembleFileHex(t *testing.T) {
	outputFormat = "auto"
	path := writeSource(t, "start:\n  addi x1, x0, 5\n  beq x1, x0, start\n  lui x5, 0x12345\n")

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	if err := assembleFile(path, assembler.AssemblerConfig{}, out, errOut); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if out.String() != "00500093\nFE008EE3\n000122B7\n" {
		t.Errorf("Unexpected output %q", out.String())
	}
	if !strings.Contains(errOut.String(), path+":4:") {
		t.Errorf("Expected a warning for line 4, got %q", errOut.String())
	}
}

func TestAssembleFileTable(t *testing.T) {
	outputFormat = "table"
	defer func() { outputFormat = "auto" }()
	path := writeSource(t, "add x1, x2, x3\n")

	out := &bytes.Buffer{}
	if err := assembleFile(path, assembler.AssemblerConfig{}, out, &bytes.Buffer{}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out.String(), "+00000000 |") || !strings.Contains(out.String(), "003100B3") {
		t.Errorf("Unexpected listing %q", out.String())
	}
}

func TestAssembleFileError(t *testing.T) {
	outputFormat = "hex"
	defer func() { outputFormat = "auto" }()
	path := writeSource(t, "addi x1, x0, 5000\n")

	if err := assembleFile(path, assembler.AssemblerConfig{}, &bytes.Buffer{}, &bytes.Buffer{}); err != nil {
		t.Fatalf("Expected permissive assembly, got %v", err)
	}

	err := assembleFile(path, assembler.AssemblerConfig{StrictImmediates: true}, &bytes.Buffer{}, &bytes.Buffer{})
	var asmErr *assembler.AsmError
	if !errors.As(err, &asmErr) || asmErr.Note != assembler.NoteImmediateOutOfRange {
		t.Errorf("Expected out of range error, got %v", err)
	}
}

func TestResolveFormat(t *testing.T) {
	if f, err := resolveFormat("auto", &bytes.Buffer{}); err != nil || f != "hex" {
		t.Errorf("Expected hex for a non-terminal, got %s, %v", f, err)
	}
	if _, err := resolveFormat("octal", &bytes.Buffer{}); err == nil {
		t.Errorf("Expected an error for an unknown format")
	}
}

func TestParseWords(t *testing.T) {
	words, err := parseWords([]string{"003100B3", "0x00008067"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(words) != 2 || words[0] != 0x003100B3 || words[1] != 0x00008067 {
		t.Errorf("Unexpected words %v", words)
	}

	if _, err := parseWords([]string{"xyz"}); err == nil {
		t.Errorf("Expected an error for an invalid word")
	}
}
