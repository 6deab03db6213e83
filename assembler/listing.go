package assembler

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
)

// ListingRow is one instruction of the annotated listing.
type ListingRow struct {
	Address  uint32
	Labels   string // labels bound to Address, joined with ", "
	Word     uint32
	Assembly string // the instruction as written
}

// Listing pairs every encoded word with its address, labels and source text.
func (a *AssembledResult) Listing() []ListingRow {
	rows := make([]ListingRow, len(a.Instructions))
	for i, inst := range a.Instructions {
		rows[i] = ListingRow{
			Address:  inst.Address,
			Labels:   strings.Join(a.LabelsAt(inst.Address), ", "),
			Word:     a.ProgramText[i],
			Assembly: a.Lines[inst.Line].Body,
		}
	}
	return rows
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

// WriteListing prints rows as an "Addr | Label | Hex | Bin | Assembly" table.
func WriteListing(w io.Writer, rows []ListingRow) error {
	labelWidth := lo.Max(append(lo.Map(rows, func(r ListingRow, _ int) int { return len(r.Labels) }), 5))
	asmWidth := lo.Max(append(lo.Map(rows, func(r ListingRow, _ int) int { return len(r.Assembly) }), 8))

	if _, err := fmt.Fprintf(w, "%s | %s | %s | %s | %s\n", center("Addr", 9), center("Label", labelWidth),
		center("Hex", 8), center("Bin", 32), center("Assembly", asmWidth)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s | %s | %s | %s | %s\n", strings.Repeat("-", 9), strings.Repeat("-", labelWidth),
		strings.Repeat("-", 8), strings.Repeat("-", 32), strings.Repeat("-", asmWidth)); err != nil {
		return err
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "+%08d | %s | %08X | %032b | %s\n", r.Address, center(r.Labels, labelWidth), r.Word, r.Word, r.Assembly); err != nil {
			return err
		}
	}
	return nil
}

// WriteHex prints one upper-case 8 digit hex word per line.
func WriteHex(w io.Writer, words []uint32) error {
	for _, word := range words {
		if _, err := fmt.Fprintf(w, "%08X\n", word); err != nil {
			return err
		}
	}
	return nil
}

// WriteBinary prints one 32 digit binary word per line.
func WriteBinary(w io.Writer, words []uint32) error {
	for _, word := range words {
		if _, err := fmt.Fprintf(w, "%032b\n", word); err != nil {
			return err
		}
	}
	return nil
}
