package assembler_test

import (
	"bytes"
	"strings"
	"testing"

	"github.gatech.edu/ECEInnovation/rv32ias/assembler"
)

const hoverSource = "start:\n  addi a0, zero, 5\n  jal ra, start\n  add x9, t0, t1"

func TestHover(t *testing.T) {
	tests := []struct {
		name     string
		position assembler.TextPosition
		contains string
	}{
		{"label definition", assembler.TextPosition{Line: 0, Char: 1}, "Address: `0x00000000`"},
		{"mnemonic", assembler.TextPosition{Line: 1, Char: 3}, "**addi** (I-type)"},
		{"named register", assembler.TextPosition{Line: 1, Char: 7}, "`a0` (`x10`)"},
		{"zero register", assembler.TextPosition{Line: 1, Char: 11}, "Hard-wired zero"},
		{"literal", assembler.TextPosition{Line: 1, Char: 17}, "Decimal: `5`"},
		{"label reference", assembler.TextPosition{Line: 2, Char: 12}, "Offset from here: `-4`"},
		{"numeric register", assembler.TextPosition{Line: 3, Char: 7}, "`x9` (`s1`)"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			hover, ok := assembler.EvaluateHover(hoverSource, test.position)
			if !ok {
				t.Fatalf("Expected hover at %v", test.position)
			}
			if !strings.Contains(hover, test.contains) {
				t.Errorf("Expected hover to contain \"%s\", got \"%s\"", test.contains, hover)
			}
		})
	}
}

func TestHoverAfterMultibyteText(t *testing.T) {
	// character offsets count UTF-16 units, "é" is two bytes but one unit
	hover, ok := assembler.EvaluateHover("addé x1, x0, 1", assembler.TextPosition{Line: 0, Char: 5})
	if !ok {
		t.Fatalf("Expected hover on x1")
	}
	if !strings.Contains(hover, "`x1` (`ra`)") {
		t.Errorf("Expected hover for x1, got \"%s\"", hover)
	}
}

func TestHoverNothing(t *testing.T) {
	positions := []assembler.TextPosition{
		{Line: 1, Char: 0},  // indentation
		{Line: 1, Char: 8},  // comma
		{Line: 9, Char: 0},  // past the end
		{Line: 2, Char: 40}, // past the line
	}
	for _, pos := range positions {
		if hover, ok := assembler.EvaluateHover(hoverSource, pos); ok {
			t.Errorf("Expected no hover at %v, got \"%s\"", pos, hover)
		}
	}
}

func TestListing(t *testing.T) {
	program, err := assembler.Assemble("start:\nfirst:\n  addi x1, x0, 5\n  beq x1, x0, start")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	rows := program.Listing()
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Labels != "start, first" {
		t.Errorf("Expected \"start, first\", got \"%s\"", rows[0].Labels)
	}
	if rows[1].Address != 4 || rows[1].Word != 0xFE008EE3 || rows[1].Assembly != "beq x1, x0, start" {
		t.Errorf("Unexpected row %+v", rows[1])
	}

	var buf bytes.Buffer
	if err := assembler.WriteListing(&buf, rows); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	out := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(out) != 4 {
		t.Fatalf("Expected 4 lines, got %d:\n%s", len(out), buf.String())
	}
	if !strings.HasPrefix(out[0], "  Addr    | ") {
		t.Errorf("Unexpected header \"%s\"", out[0])
	}
	expected := "+00000004 |              | FE008EE3 | 11111110000000001000111011100011 | beq x1, x0, start"
	if out[3] != expected {
		t.Errorf("Expected \"%s\", got \"%s\"", expected, out[3])
	}

	buf.Reset()
	if err := assembler.WriteHex(&buf, program.ProgramText); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if buf.String() != "00500093\nFE008EE3\n" {
		t.Errorf("Unexpected hex output \"%s\"", buf.String())
	}
}
