// Package codegen writes compiled programs out as Go source, so a pattern can
// be compiled once at build time and loaded without parsing at run time.
package codegen

import (
	"fmt"
	"go/token"
	"io"

	"github.com/dave/jennifer/jen"

	"github.com/mfroeh/gorex/regex"
	"github.com/mfroeh/gorex/regex/prog"
	"github.com/mfroeh/gorex/regex/syntax"
)

const (
	regexPath  = "github.com/mfroeh/gorex/regex"
	progPath   = "github.com/mfroeh/gorex/regex/prog"
	syntaxPath = "github.com/mfroeh/gorex/regex/syntax"
)

var opIdents = map[prog.OpCode]string{
	prog.OpMatch:  "OpMatch",
	prog.OpChar:   "OpChar",
	prog.OpJump:   "OpJump",
	prog.OpSplit:  "OpSplit",
	prog.OpSave:   "OpSave",
	prog.OpAssert: "OpAssert",
	prog.OpMark:   "OpMark",
	prog.OpCheck:  "OpCheck",
}

var anchorIdents = map[syntax.AnchorKind]string{
	syntax.BeginText:      "BeginText",
	syntax.EndText:        "EndText",
	syntax.BeginLine:      "BeginLine",
	syntax.EndLine:        "EndLine",
	syntax.WordBoundary:   "WordBoundary",
	syntax.NoWordBoundary: "NoWordBoundary",
}

type Options struct {
	// Package is the package clause of the generated file.
	Package string
	// Name is the name of the generated *regex.Regex variable.
	Name string
}

// Generate writes a Go file to w that declares a variable holding re, built
// from a literal copy of its program:
//
//	var Name = func() *regex.Regex {
//		re, err := regex.FromProgram(pattern, &prog.Program{...}, regex.Options{...})
//		...
//	}()
func Generate(w io.Writer, re *regex.Regex, opts Options) error {
	if !token.IsIdentifier(opts.Package) {
		return fmt.Errorf("invalid package name %q", opts.Package)
	}
	if !token.IsIdentifier(opts.Name) {
		return fmt.Errorf("invalid variable name %q", opts.Name)
	}

	program, err := programLiteral(re.Program())
	if err != nil {
		return err
	}

	f := jen.NewFile(opts.Package)
	f.HeaderComment(fmt.Sprintf("Code generated by gorex gen for pattern %q. DO NOT EDIT.", re.String()))

	f.Commentf("%s matches %q.", opts.Name, re.String())
	f.Var().Id(opts.Name).Op("=").Func().Params().Op("*").Qual(regexPath, "Regex").Block(
		jen.List(jen.Id("re"), jen.Err()).Op(":=").Qual(regexPath, "FromProgram").Call(
			jen.Lit(re.String()),
			jen.Op("&").Add(program),
			optionsLiteral(re.Options()),
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Panic(jen.Err()),
		),
		jen.Return(jen.Id("re")),
	).Call()

	if err := f.Render(w); err != nil {
		return fmt.Errorf("failed to render %s: %w", opts.Name, err)
	}
	return nil
}

func programLiteral(p *prog.Program) (*jen.Statement, error) {
	insts := make([]jen.Code, 0, len(p.Insts))
	for pc, inst := range p.Insts {
		lit, err := instLiteral(inst)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", pc, err)
		}
		insts = append(insts, lit)
	}

	fields := jen.Dict{
		jen.Id("Insts"):       jen.Index().Qual(progPath, "Inst").Values(insts...),
		jen.Id("NumCaptures"): jen.Lit(p.NumCaptures),
	}
	if p.NumLoops > 0 {
		fields[jen.Id("NumLoops")] = jen.Lit(p.NumLoops)
	}
	if hasNames(p.Names) {
		names := make([]jen.Code, len(p.Names))
		for i, name := range p.Names {
			names[i] = jen.Lit(name)
		}
		fields[jen.Id("Names")] = jen.Index().String().Values(names...)
	}
	return jen.Qual(progPath, "Program").Values(fields), nil
}

// instLiteral renders the non-zero fields of inst.
func instLiteral(inst prog.Inst) (*jen.Statement, error) {
	op, ok := opIdents[inst.Op]
	if !ok {
		return nil, fmt.Errorf("unknown opcode %d", inst.Op)
	}
	fields := jen.Dict{jen.Id("Op"): jen.Qual(progPath, op)}

	switch inst.Op {
	case prog.OpChar:
		words := make([]jen.Code, len(inst.Set))
		for i, w := range inst.Set {
			words[i] = jen.Lit(w)
		}
		fields[jen.Id("Set")] = jen.Qual(syntaxPath, "ByteSet").Values(words...)
	case prog.OpAssert:
		anchor, ok := anchorIdents[inst.Anchor]
		if !ok {
			return nil, fmt.Errorf("unknown anchor %d", inst.Anchor)
		}
		fields[jen.Id("Anchor")] = jen.Qual(syntaxPath, anchor)
	}
	if inst.X != 0 {
		fields[jen.Id("X")] = jen.Lit(inst.X)
	}
	if inst.Y != 0 {
		fields[jen.Id("Y")] = jen.Lit(inst.Y)
	}
	if inst.N != 0 {
		fields[jen.Id("N")] = jen.Lit(inst.N)
	}
	return jen.Values(fields), nil
}

func optionsLiteral(opts regex.Options) *jen.Statement {
	fields := jen.Dict{}
	if opts.StepLimit != 0 {
		fields[jen.Id("StepLimit")] = jen.Lit(opts.StepLimit)
	}
	return jen.Qual(regexPath, "Options").Values(fields)
}

func hasNames(names []string) bool {
	for _, name := range names {
		if name != "" {
			return true
		}
	}
	return false
}
