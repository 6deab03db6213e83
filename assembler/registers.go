package assembler

import (
	"strconv"
	"strings"
)

var abiNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// RegisterNameMap maps every accepted register spelling to its index.
var RegisterNameMap = buildRegisterNameMap()

func buildRegisterNameMap() map[string]uint32 {
	m := make(map[string]uint32, 65)
	for i, name := range abiNames {
		m[name] = uint32(i)
		m["x"+strconv.Itoa(i)] = uint32(i)
	}
	m["fp"] = 8
	return m
}

// ResolveRegister maps x0..x31 or an ABI alias to its 5-bit index.
// The numeric form tolerates leading zeros ("x05"), never a sign.
func ResolveRegister(token string) (uint32, bool) {
	token = strings.ToLower(strings.TrimSpace(token))
	if len(token) > 1 && token[0] == 'x' && isDigits(token[1:]) {
		n, err := strconv.Atoi(token[1:])
		if err != nil || n > 31 {
			return 0, false
		}
		return uint32(n), true
	}
	idx, ok := RegisterNameMap[token]
	return idx, ok
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ABIName returns the ABI alias of a register index ("s0" for 8).
func ABIName(index uint32) string {
	if index >= 32 {
		return ""
	}
	return abiNames[index]
}
