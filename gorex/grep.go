package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/mfroeh/gorex/internal/config"
	"github.com/mfroeh/gorex/regex"
)

type GrepCmd struct {
	Pattern    string   `arg:"" name:"pattern" help:"Regex pattern to use in search."`
	Paths      []string `arg:"" optional:"" name:"path" help:"Paths to search, defaults to the current directory." type:"path"`
	IgnoreCase bool     `short:"i" help:"Match ASCII letters regardless of case."`
	Count      bool     `short:"c" help:"Only print the number of matching lines per file."`
	MaxCount   int      `short:"m" help:"Report at most N matches per line." placeholder:"N"`
	Color      string   `help:"Highlight matches: auto, always or never." placeholder:"WHEN"`
}

func (g *GrepCmd) Validate() error {
	if g.MaxCount < 0 {
		return fmt.Errorf("--max-count must not be negative")
	}
	switch g.Color {
	case "", config.ColorAuto, config.ColorAlways, config.ColorNever:
		return nil
	}
	return fmt.Errorf("invalid --color %q, must be one of auto, always or never", g.Color)
}

// grepper holds the state of one grep run.
type grepper struct {
	re       *regex.Regex
	out      io.Writer
	colors   []*color.Color
	count    bool
	maxCount int

	matched bool
	failed  bool
	env     *env
}

func (g *GrepCmd) Run(e *env) error {
	re, err := e.compile(g.Pattern, g.IgnoreCase)
	if err != nil {
		return err
	}

	when := g.Color
	if when == "" {
		when = e.cfg.Color
	}
	maxCount := e.cfg.MaxCount
	if g.MaxCount > 0 {
		maxCount = g.MaxCount
	}
	if maxCount == 0 {
		maxCount = -1
	}

	gr := &grepper{
		re:       re,
		out:      e.stdout,
		colors:   submatchColors(useColor(when, e.stdout)),
		count:    g.Count,
		maxCount: maxCount,
		env:      e,
	}

	paths := g.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			err = gr.searchDir(path)
		} else {
			err = gr.searchFile(path)
		}
		if err != nil {
			return err
		}
	}

	switch {
	case gr.failed:
		return errors.New("some lines could not be searched")
	case !gr.matched:
		return errNoMatch
	}
	return nil
}

func useColor(when string, out io.Writer) bool {
	switch when {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// submatchColors returns the colors for the whole match and the first five
// groups.
func submatchColors(enabled bool) []*color.Color {
	colors := []*color.Color{
		color.New(color.FgRed),
		color.New(color.FgGreen),
		color.New(color.FgYellow),
		color.New(color.FgBlue),
		color.New(color.FgMagenta),
		color.New(color.FgCyan),
	}
	for _, c := range colors {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return colors
}

func (gr *grepper) searchDir(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		// resolve symlinks, broken ones are ignored
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		// symlink may resolve to a directory, in which case we just ignore it
		if info.IsDir() {
			return nil
		}

		return gr.searchFile(path)
	})
}

func (gr *grepper) searchFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// skip binary files
	if bytes.IndexByte(content, 0) >= 0 {
		return nil
	}

	printFileHeader := false
	matchingLines := 0
	for i, line := range strings.Split(string(content), "\n") {
		matches, err := gr.re.FindAllSubmatchesContext(context.Background(), line, gr.maxCount)
		if err != nil {
			gr.env.logger.Printf("%s:%d: %v", path, i+1, err)
			gr.failed = true
		}
		if len(matches) == 0 {
			continue
		}
		gr.matched = true
		matchingLines++
		if gr.count {
			continue
		}

		if !printFileHeader {
			printFileHeader = true
			fmt.Fprintf(gr.out, "%s:\n", path)
		}
		fmt.Fprintf(gr.out, "%d:%s\n", i+1, gr.highlight(line, matches))
	}

	if gr.count && matchingLines > 0 {
		fmt.Fprintf(gr.out, "%s:%d\n", path, matchingLines)
	}
	if printFileHeader {
		fmt.Fprintln(gr.out)
	}
	return nil
}

func (gr *grepper) highlight(line string, matches [][]regex.Submatch) string {
	out := strings.Builder{}
	lastMatchEnd := 0
	for _, match := range matches {
		out.WriteString(line[lastMatchEnd:match[0].Offset])
		out.WriteString(gr.formatMatch(match))
		lastMatchEnd = match[0].Offset + len(match[0].Str)
	}
	out.WriteString(line[lastMatchEnd:])
	return out.String()
}

// formatMatch colors the groups of a match. Groups nested in or overlapping
// an earlier group, and groups that did not participate, keep the color of
// the whole match.
func (gr *grepper) formatMatch(match []regex.Submatch) string {
	fullMatch := match[0].Str
	if len(match) == 1 || len(match) > len(gr.colors) {
		return gr.colors[0].Sprint(fullMatch)
	}

	out := strings.Builder{}
	paint := func(c *color.Color, s string) {
		if s != "" {
			out.WriteString(c.Sprint(s))
		}
	}
	matchOff := 0
	for i, sm := range match[1:] {
		offRelativeToMatch := sm.Offset - match[0].Offset
		if sm.Offset < 0 || offRelativeToMatch < matchOff {
			continue
		}
		paint(gr.colors[0], fullMatch[matchOff:offRelativeToMatch])
		paint(gr.colors[i+1], sm.Str)
		matchOff = offRelativeToMatch + len(sm.Str)
	}
	paint(gr.colors[0], fullMatch[matchOff:])
	return out.String()
}
