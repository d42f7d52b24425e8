package wordcount

// isLetter returns true iff b is an ASCII letter
func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Tokenize splits a line into lowercase words: maximal runs of ASCII letters.
// Every other byte separates words.
func Tokenize(line string) []string {
	var tokens []string
	start := -1
	for i := 0; i <= len(line); i++ {
		if i < len(line) && isLetter(line[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, lower(line[start:i]))
			start = -1
		}
	}
	return tokens
}

// lower lowercases a string of ASCII letters
func lower(word string) string {
	b := []byte(word)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
