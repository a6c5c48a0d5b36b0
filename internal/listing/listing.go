// Package listing reports the tags a group of files share and the tags that
// set each file apart, written in spec syntax so the output can seed a spec
// file.
package listing

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"kiln/internal/resolve"
	"kiln/internal/specfile"
	"kiln/internal/store"
	"kiln/internal/tags"
)

// FileTags is the current tag state of one file.
type FileTags struct {
	File string
	Tags tags.State
}

// FileReport holds the tags of one file that are not shared by every file.
type FileReport struct {
	File      string            `json:"file" yaml:"file"`
	Differing []tags.Assignment `json:"differing" yaml:"differing"`
	// Empty is true when the file has no managed tags at all.
	Empty bool `json:"empty" yaml:"empty"`
}

// Report is the result of Build.
type Report struct {
	Shared []tags.Assignment `json:"shared" yaml:"shared"`
	Files  []FileReport      `json:"files" yaml:"files"`
}

// Collect resolves pattern and reads every matching file with at most
// workers concurrent reads. Results keep resolver order.
func Collect(ctx context.Context, resolver resolve.Resolver, reader store.Reader, pattern string, workers int) ([]FileTags, error) {
	files, err := resolver.Resolve(pattern)
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := make([]FileTags, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			state, err := reader.Read(gctx, file)
			if err != nil {
				return err
			}
			out[i] = FileTags{File: file, Tags: state.Sorted()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Build splits file tags into the assignments every file carries with an
// equal value and, per file, the rest. Zero files share nothing.
func Build(files []FileTags) Report {
	report := Report{Files: make([]FileReport, 0, len(files))}
	if len(files) > 0 {
		for _, a := range files[0].Tags.Sorted().Assignments() {
			if sharedByAll(a, files[1:]) {
				report.Shared = append(report.Shared, a)
			}
		}
	}
	shared := tags.NewState(report.Shared...)
	for _, f := range files {
		fr := FileReport{File: f.File, Empty: f.Tags.Len() == 0}
		for _, a := range f.Tags.Sorted().Assignments() {
			if !shared.Contains(a) {
				fr.Differing = append(fr.Differing, a)
			}
		}
		report.Files = append(report.Files, fr)
	}
	return report
}

func sharedByAll(a tags.Assignment, others []FileTags) bool {
	for _, other := range others {
		if !other.Tags.Contains(a) {
			return false
		}
	}
	return true
}

// Options tunes Write.
type Options struct {
	// NoComments drops explanatory `#` lines, including images and other
	// values that cannot be written back as spec text.
	NoComments bool
	// ForceEmpty writes sections even when they hold no assignments.
	ForceEmpty bool
}

// Write renders report in spec syntax. The shared section is headed by
// pattern; each file with differing tags gets its own section.
func Write(w io.Writer, pattern string, report Report, opts Options) error {
	out := &writer{bw: bufio.NewWriter(w), opts: opts}

	if len(report.Shared) == 0 && !opts.ForceEmpty {
		out.comment("# No shared tags among files in pattern")
		out.comment("")
	} else {
		out.comment("# All files in pattern share the following tags:")
		out.section(pattern, report.Shared)
	}

	anyTags := false
	for _, f := range report.Files {
		if !f.Empty {
			anyTags = true
		}
		if len(f.Differing) == 0 && !opts.ForceEmpty {
			continue
		}
		out.comment("# The following file has these differing tags:")
		out.section(f.File, f.Differing)
	}

	if !anyTags && !opts.ForceEmpty {
		out.comment("# No tags among files in pattern")
		out.comment("")
	}
	return out.bw.Flush()
}

type writer struct {
	bw   *bufio.Writer
	opts Options
}

func (w *writer) comment(line string) {
	if w.opts.NoComments {
		return
	}
	w.bw.WriteString(line)
	w.bw.WriteString("\n")
}

func (w *writer) section(header string, assignments []tags.Assignment) {
	fmt.Fprintf(w.bw, "[%s]\n", header)
	for _, a := range assignments {
		line, exact := specfile.FormatAssignment(a)
		if !exact {
			w.comment("# " + line)
			continue
		}
		w.bw.WriteString(line)
		w.bw.WriteString("\n")
	}
	w.bw.WriteString("\n")
}
