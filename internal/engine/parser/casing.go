package parser

// Casing is the naming-convention classification of an identifier.
// Every naming rule goes through Classify rather than re-deriving it.
type Casing int

const (
	CasingCamel Casing = iota
	CasingPascal
	CasingUpperSnake
	CasingOther
)

func (c Casing) String() string {
	switch c {
	case CasingCamel:
		return "camelCase"
	case CasingPascal:
		return "PascalCase"
	case CasingUpperSnake:
		return "UPPER_SNAKE"
	case CasingOther:
		return "other"
	}
	return "invalid"
}

// Classify inspects an identifier's character run and returns its
// naming convention. UPPER_SNAKE is uppercase/digits/underscore only
// starting with a letter; camelCase starts lowercase with no
// underscores; PascalCase starts uppercase with no underscores and at
// least one lowercase letter following each uppercase word boundary.
func Classify(name string) Casing {
	if name == "" {
		return CasingOther
	}

	if isUpperSnake(name) {
		return CasingUpperSnake
	}

	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '_' {
			return CasingOther
		}
		if !isLetter(c) && !isDigit(c) {
			return CasingOther
		}
	}

	first := name[0]
	switch {
	case first >= 'a' && first <= 'z':
		return CasingCamel
	case first >= 'A' && first <= 'Z':
		if hasLowerAfterEachUpperRun(name) {
			return CasingPascal
		}
		return CasingOther
	}
	return CasingOther
}

// PascalWords splits a PascalCase identifier into its lowercase word
// parts, e.g. "ReadSensorValue" -> ["read", "sensor", "value"].
// Digits stick to the preceding word.
func PascalWords(name string) []string {
	var words []string
	var current []byte
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			if len(current) > 0 {
				words = append(words, string(current))
			}
			current = []byte{c + ('a' - 'A')}
			continue
		}
		current = append(current, c)
	}
	if len(current) > 0 {
		words = append(words, string(current))
	}
	return words
}

func isUpperSnake(name string) bool {
	if !(name[0] >= 'A' && name[0] <= 'Z') && name[0] != '_' {
		return false
	}
	hasLetter := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			hasLetter = true
		case c == '_' || isDigit(c):
		default:
			return false
		}
	}
	return hasLetter
}

// hasLowerAfterEachUpperRun enforces the PascalCase word-boundary
// requirement: every uppercase-initiated word must be followed by at
// least one lowercase letter before the next uppercase letter, so
// "ReadADC" classifies as other, not PascalCase.
func hasLowerAfterEachUpperRun(name string) bool {
	sawLower := false
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'A' && c <= 'Z' {
			if i > 0 && !sawLower {
				return false
			}
			sawLower = false
			continue
		}
		if c >= 'a' && c <= 'z' {
			sawLower = true
		}
	}
	return sawLower
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
