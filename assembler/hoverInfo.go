package assembler

type hoverInfoFormatsType struct {
	labelDefinition string
	labelReference  string
	integerLiteral  string
	instruction     string

	namedRegister   string
	genericRegister string
	registerRoles   map[uint32]string
}

var hoverInfoFormats = hoverInfoFormatsType{
	labelDefinition: "**Label** `%s`\n\nAddress: `0x%08x`",
	labelReference:  "**Label** `%s`\n\nAddress: `0x%08x`\n\nOffset from here: `%d`",
	integerLiteral:  "**Integer literal**\n\nDecimal: `%d`\n\nHex: `%s`",
	instruction:     "**%s** (%s-type)\n\n```\n%s %s\n```\n\n%s",

	namedRegister:   "**Register** `%s` (`x%d`)\n\n%s",
	genericRegister: "**Register** `x%d` (`%s`)\n\n%s",
	registerRoles: map[uint32]string{
		0:  "Hard-wired zero. Writes are ignored.",
		1:  "Return address.",
		2:  "Stack pointer.",
		3:  "Global pointer.",
		4:  "Thread pointer.",
		8:  "Saved register / frame pointer.",
		10: "Function argument / return value.",
		11: "Function argument / return value.",
	},
}

func registerRole(index uint32) string {
	if role, ok := hoverInfoFormats.registerRoles[index]; ok {
		return role
	}
	switch name := ABIName(index); name[0] {
	case 't':
		return "Temporary register."
	case 's':
		return "Saved register."
	case 'a':
		return "Function argument."
	}
	return ""
}
