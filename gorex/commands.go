package main

import (
	"fmt"
	"os"

	"github.com/mfroeh/gorex/internal/codegen"
	"github.com/mfroeh/gorex/regex"
)

const (
	demoPattern = `a(.*)b|[e-f]+`
	demoSubject = "zzzzaffffffffb"
)

type DemoCmd struct {
	Pattern string `arg:"" optional:"" help:"Pattern to compile." default:"${demo_pattern}"`
	Subject string `arg:"" optional:"" help:"Subject to search." default:"${demo_subject}"`
}

func (d *DemoCmd) Run(e *env) error {
	re, err := e.compile(d.Pattern, false)
	if err != nil {
		return err
	}

	subject := []byte(d.Subject)
	region, err := re.Search(subject)
	if err != nil {
		return err
	}
	defer regex.FreeRegion(region)

	if region == nil {
		fmt.Fprintln(e.stdout, "no match")
		fmt.Fprintf(e.stdout, "gorex version is: %s\n", regex.Version())
		return errNoMatch
	}

	fmt.Fprintf(e.stdout, "match found at: %d\n", region.Beg(0))
	for i := 0; i < region.NumRegs(); i++ {
		fmt.Fprintf(e.stdout, "Match[%d] starts at: %d and ends at: %d\n", i, region.Beg(i), region.End(i))
	}
	fmt.Fprintf(e.stdout, "gorex version is: %s\n", regex.Version())
	return nil
}

type DumpCmd struct {
	Pattern    string `arg:"" help:"Pattern to compile."`
	IgnoreCase bool   `short:"i" help:"Match ASCII letters regardless of case."`
}

func (d *DumpCmd) Run(e *env) error {
	re, err := e.compile(d.Pattern, d.IgnoreCase)
	if err != nil {
		return err
	}
	p := re.Program()
	fmt.Fprintf(e.stdout, "; %s: %d groups, %d loop registers\n", re, re.NumSubexp(), p.NumLoops)
	fmt.Fprint(e.stdout, p)
	return nil
}

type GenCmd struct {
	Pattern    string `arg:"" help:"Pattern to compile."`
	Package    string `help:"Package of the generated file." default:"main"`
	Name       string `help:"Name of the generated variable." default:"Pattern"`
	Output     string `short:"o" help:"File to write to instead of stdout." type:"path" placeholder:"FILE"`
	IgnoreCase bool   `short:"i" help:"Match ASCII letters regardless of case."`
}

func (g *GenCmd) Run(e *env) error {
	re, err := e.compile(g.Pattern, g.IgnoreCase)
	if err != nil {
		return err
	}
	opts := codegen.Options{Package: g.Package, Name: g.Name}

	if g.Output == "" {
		return codegen.Generate(e.stdout, re, opts)
	}

	f, err := os.Create(g.Output)
	if err != nil {
		return err
	}
	if err := codegen.Generate(f, re, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
