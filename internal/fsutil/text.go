package fsutil

import "strings"

var lineBreaks = strings.NewReplacer("\r", "", "\n", "", "\t", "")

// Trim removes leading and trailing whitespace.
func Trim(input string) string {
	return strings.TrimSpace(input)
}

// Strip trims input and removes every carriage return, line feed and tab.
func Strip(input string) string {
	return lineBreaks.Replace(Trim(input))
}
