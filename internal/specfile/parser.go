package specfile

import (
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"kiln/internal/logging"
	"kiln/internal/resolve"
	"kiln/internal/tags"
)

// Section is one `[pattern]` block and the assignments written under it.
// Assignments keep file order; exact duplicates are dropped, conflicting
// values for one identifier are kept for the merge step to resolve.
type Section struct {
	Header      string
	Assignments []tags.Assignment
	Line        int
}

// ImageLoader turns the path written after APIC into an image value.
type ImageLoader interface {
	LoadImage(path string) (tags.Image, error)
}

// ImageLoaderFunc adapts a function to ImageLoader.
type ImageLoaderFunc func(path string) (tags.Image, error)

func (f ImageLoaderFunc) LoadImage(path string) (tags.Image, error) { return f(path) }

// PolicyLoader loads images from disk using policy.
func PolicyLoader(policy tags.ImagePolicy) ImageLoader {
	return ImageLoaderFunc(func(path string) (tags.Image, error) {
		return tags.LoadImage(path, policy)
	})
}

// Options tunes Parse.
type Options struct {
	// Images loads APIC values. Defaults to PolicyLoader(tags.DefaultImagePolicy).
	Images ImageLoader
	// BaseDir anchors relative image paths. Empty means the working directory.
	BaseDir string
	// AllowTrailing downgrades unparsed trailing input from an error to a
	// logged warning.
	AllowTrailing bool
	// NormalizeText applies Unicode NFC to text values.
	NormalizeText bool
	Logger        *slog.Logger
}

type sourceLine struct {
	number int
	text   string
}

// Parse converts spec text into sections. Comment lines (first character
// '#') and blank lines are removed first. The whole input must be consumed:
// the first line that fits neither a header nor an assignment ends parsing
// with a SyntaxError, or with a warning when AllowTrailing is set.
func Parse(content string, opts Options) ([]Section, error) {
	p := parser{opts: opts}
	if p.opts.Images == nil {
		p.opts.Images = PolicyLoader(tags.DefaultImagePolicy)
	}
	if p.opts.Logger == nil {
		p.opts.Logger = logging.NewNop()
	}
	return p.run(preprocess(content))
}

// preprocess drops comment and blank lines, keeping original line numbers.
func preprocess(content string) []sourceLine {
	raw := strings.Split(content, "\n")
	lines := make([]sourceLine, 0, len(raw))
	for i, text := range raw {
		text = strings.TrimSuffix(text, "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		lines = append(lines, sourceLine{number: i + 1, text: text})
	}
	return lines
}

type parser struct {
	opts     Options
	sections []Section
}

func (p *parser) run(lines []sourceLine) ([]Section, error) {
	for i, line := range lines {
		ok, err := p.line(line)
		if err != nil {
			return nil, err
		}
		if !ok {
			return p.leftover(lines[i:])
		}
	}
	return p.sections, nil
}

// line consumes one source line. It returns false when the line does not fit
// the grammar, which ends parsing.
func (p *parser) line(line sourceLine) (bool, error) {
	if strings.HasPrefix(line.text, "[") {
		end := strings.IndexByte(line.text, ']')
		if end < 0 {
			return false, &SyntaxError{
				Pos:      Position{Line: line.number, Column: 1},
				Fragment: line.text,
				Message:  "unterminated section header",
			}
		}
		p.sections = append(p.sections, Section{Header: line.text[1:end], Line: line.number})

		rest := line.text[end+1:]
		trimmed := strings.TrimLeft(rest, " \t")
		if trimmed == "" {
			return true, nil
		}
		column := end + 2 + len(rest) - len(trimmed)
		return p.assignment(line.number, column, trimmed)
	}
	if len(p.sections) == 0 {
		return false, nil
	}
	return p.assignment(line.number, 1, line.text)
}

func (p *parser) assignment(lineNo, column int, text string) (bool, error) {
	tokenEnd := 0
	for tokenEnd < len(text) && isAlphanumeric(text[tokenEnd]) {
		tokenEnd++
	}
	token := text[:tokenEnd]

	rest := strings.TrimLeft(text[tokenEnd:], " \t")
	if !strings.HasPrefix(rest, "=") {
		return false, nil
	}
	value := strings.TrimLeft(rest[1:], " \t")
	pos := Position{Line: lineNo, Column: column}

	id, err := tags.ParseIdentifier(token)
	if err != nil {
		return false, &UnknownIdentifierError{Pos: pos, Token: token}
	}

	var v tags.Value
	if id == tags.CoverImage {
		img, err := p.opts.Images.LoadImage(p.imagePath(value))
		if err != nil {
			return false, &ImageError{Pos: pos, Path: value, Err: err}
		}
		v = img
	} else {
		if p.opts.NormalizeText {
			value = norm.NFC.String(value)
		}
		if v, err = tags.TextValue(id, value); err != nil {
			return false, &SyntaxError{Pos: pos, Fragment: text, Message: err.Error()}
		}
	}

	current := &p.sections[len(p.sections)-1]
	a := tags.Assignment{ID: id, Value: v}
	for _, existing := range current.Assignments {
		if existing.Equal(a) {
			return true, nil
		}
	}
	current.Assignments = append(current.Assignments, a)
	return true, nil
}

func (p *parser) imagePath(value string) string {
	if p.opts.BaseDir == "" || filepath.IsAbs(value) || strings.HasPrefix(value, "~") {
		return resolve.ExpandHome(value)
	}
	return filepath.Join(p.opts.BaseDir, value)
}

func (p *parser) leftover(rest []sourceLine) ([]Section, error) {
	first := rest[0]
	if !p.opts.AllowTrailing {
		return nil, &SyntaxError{
			Pos:      Position{Line: first.number, Column: 1},
			Fragment: first.text,
			Message:  "unexpected input",
		}
	}
	texts := make([]string, len(rest))
	for i, line := range rest {
		texts[i] = line.text
	}
	p.opts.Logger.Warn("could not consume all spec input",
		logging.Int("line", first.number),
		logging.String("remaining", strings.Join(texts, "\n")),
	)
	return p.sections, nil
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
