package specfile

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"kiln/internal/tags"
)

// FormatAssignment renders a in spec syntax. exact is false when parsing the
// line back would not reproduce a: images, comments with a non-default
// language or description, and text the grammar cannot carry.
func FormatAssignment(a tags.Assignment) (line string, exact bool) {
	prefix := a.ID.FrameID() + " = "
	switch v := a.Value.(type) {
	case tags.Text:
		text := string(v)
		return prefix + flatten(text), representable(text)
	case tags.CommentValue:
		exact = v.Language == tags.DefaultCommentLanguage && v.Description == "" && representable(v.Text)
		return prefix + flatten(v.Text), exact
	case tags.Image:
		return prefix + v.String(), false
	default:
		return prefix + "<unknown>", false
	}
}

// Encode writes sections in spec syntax with a blank line between them.
// Non-exact assignments are written as comments.
func Encode(w io.Writer, sections []Section) error {
	bw := bufio.NewWriter(w)
	for i, section := range sections {
		if strings.ContainsAny(section.Header, "]\n") {
			return fmt.Errorf("section header %q cannot be encoded", section.Header)
		}
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "[%s]\n", section.Header)
		for _, a := range section.Assignments {
			line, exact := FormatAssignment(a)
			if !exact {
				line = "# " + line
			}
			bw.WriteString(line)
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

func representable(text string) bool {
	if strings.ContainsAny(text, "\n\r") {
		return false
	}
	return text == strings.TrimLeft(text, " \t")
}

func flatten(text string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
}
