// Package outputnorm implements autofix: per-line trailing-whitespace
// trim with a guaranteed final newline, applied to a process's captured
// stdout only (never stderr, never files). A hand-rolled scan, no regex.
package outputnorm

// Autofix returns the concatenation of input's lines, each with trailing
// space/tab/carriage-return bytes stripped and exactly one '\n' appended.
// Empty input yields empty output.
func Autofix(input []byte) []byte {
	if len(input) == 0 {
		return nil
	}

	result := make([]byte, 0, len(input))
	i, n := 0, len(input)

	for i < n {
		lineStart := i

		for i < n && input[i] != '\n' {
			i++
		}
		lineEnd := i

		for lineEnd > lineStart && isTrailingWhitespace(input[lineEnd-1]) {
			lineEnd--
		}

		if lineEnd > lineStart {
			result = append(result, input[lineStart:lineEnd]...)
		}
		result = append(result, '\n')

		if i < n && input[i] == '\n' {
			i++
		}
	}

	return result
}

func isTrailingWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r'
}
