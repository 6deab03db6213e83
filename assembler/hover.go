package assembler

import (
	"fmt"
	"strconv"
	"strings"
)

func isOperandChar(c byte) bool {
	return c == '_' || c == '-' || c == '+' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// tokenAt returns the operand-like token of s that covers col, if any.
func tokenAt(s string, col int) (string, int, bool) {
	if col < 0 || col >= len(s) || !isOperandChar(s[col]) {
		return "", 0, false
	}
	start, end := col, col
	for start > 0 && isOperandChar(s[start-1]) {
		start--
	}
	for end < len(s) && isOperandChar(s[end]) {
		end++
	}
	return s[start:end], start, true
}

// EvaluateHover returns markdown describing what sits at position in source.
// It works on sources that do not assemble; labels are only resolved when the jump table builds.
func EvaluateHover(source string, position TextPosition) (string, bool) {
	lines := AnalyzeLines(source)
	if position.Line < 0 || position.Line >= len(lines) {
		return "", false
	}
	line := lines[position.Line]
	col := byteOffset(line.Raw, position.Char) - line.BodyOffset
	if col < 0 || col >= len(line.Body) {
		return "", false
	}

	table, _ := BuildJumpTable(lines)

	switch line.Kind {
	case LineLabel:
		name := line.Body[:len(line.Body)-1]
		addr, ok := table.Lookup(name)
		if !ok {
			return "", false
		}
		return fmt.Sprintf(hoverInfoFormats.labelDefinition, name, addr), true

	case LineInstruction:
		mnemonicEnd := strings.IndexAny(line.Body, whitespace)
		if mnemonicEnd == -1 {
			mnemonicEnd = len(line.Body)
		}
		if col < mnemonicEnd {
			return getHoverInfoForInstruction(line.Body[:mnemonicEnd])
		}

		token, _, ok := tokenAt(line.Body, col)
		if !ok {
			return "", false
		}
		if idx, ok := ResolveRegister(token); ok {
			return getHoverInfoForRegister(idx, token), true
		}
		if isNumericOperand(token) {
			v, err := parseImmediate(token)
			if err != nil {
				return "", false
			}
			return fmt.Sprintf(hoverInfoFormats.integerLiteral, v, "0x"+strconv.FormatUint(uint64(v)&0xFFFFFFFF, 16)), true
		}
		if addr, ok := table.Lookup(token); ok {
			return fmt.Sprintf(hoverInfoFormats.labelReference, token, addr, int64(addr)-int64(line.Address)), true
		}
	}

	return "", false
}

func getHoverInfoForInstruction(mnemonic string) (string, bool) {
	e, ok := LookupInstruction(mnemonic)
	if !ok {
		return "", false
	}
	templates := make([]string, len(e.Grammars))
	for i, g := range e.Grammars {
		templates[i] = g.Template
	}
	return fmt.Sprintf(hoverInfoFormats.instruction, e.Mnemonic, e.Format, e.Mnemonic,
		strings.Join(templates, "\n"+e.Mnemonic+" "), e.Description), true
}

func getHoverInfoForRegister(index uint32, name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if strings.HasPrefix(name, "x") {
		return fmt.Sprintf(hoverInfoFormats.genericRegister, index, ABIName(index), registerRole(index))
	}
	return fmt.Sprintf(hoverInfoFormats.namedRegister, name, index, registerRole(index))
}
