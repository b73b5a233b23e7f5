package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"provel/internal/ast"
	"provel/internal/sema"
	"provel/internal/source"
	"provel/internal/types"
)

// manifestConfig is the on-disk description of a world: modules and their
// top-level function declarations. It stands in for a front end; the
// declarations are rendered to virtual source text so diagnostics carry real
// positions.
type manifestConfig struct {
	Modules []manifestModule `toml:"module"`
}

type manifestModule struct {
	Name string       `toml:"name"`
	Fns  []manifestFn `toml:"fn"`
}

type manifestFn struct {
	Name string `toml:"name"`
	// Kind is "fn" (default) or "method". Methods are loaded but never
	// enumerated as entry-point candidates.
	Kind     string          `toml:"kind"`
	Attrs    []string        `toml:"attrs"`
	Generics []string        `toml:"generics"`
	Params   []manifestParam `toml:"params"`
	Returns  string          `toml:"returns"`
	// Unresolved marks the declaration as failing signature resolution, for
	// reproducing upstream front-end failures.
	Unresolved bool `toml:"unresolved"`
}

type manifestParam struct {
	Name string `toml:"name"`
	Type string `toml:"type"`
	Ref  bool   `toml:"ref"`
}

// loadedWorld bundles everything a pipeline run needs from one manifest.
type loadedWorld struct {
	World *sema.World
	Files *source.FileSet
}

func loadManifest(path string) (*loadedWorld, error) {
	var cfg manifestConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("module") {
		return nil, fmt.Errorf("%s: manifest declares no modules", path)
	}
	if err := validateManifest(&cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	strs := source.NewInterner()
	world := sema.NewWorld(strs, types.NewInterner())
	files := source.NewFileSet()

	for _, mod := range cfg.Modules {
		buildModule(world, files, mod)
	}
	return &loadedWorld{World: world, Files: files}, nil
}

func validateManifest(cfg *manifestConfig) error {
	seen := make(map[string]bool, len(cfg.Modules))
	for _, mod := range cfg.Modules {
		if mod.Name == "" {
			return fmt.Errorf("module without a name")
		}
		if seen[mod.Name] {
			return fmt.Errorf("duplicate module %q", mod.Name)
		}
		seen[mod.Name] = true
		for _, fn := range mod.Fns {
			if fn.Name == "" {
				return fmt.Errorf("module %q: function without a name", mod.Name)
			}
			switch fn.Kind {
			case "", "fn", "method":
			default:
				return fmt.Errorf("module %q: fn %q: unknown kind %q", mod.Name, fn.Name, fn.Kind)
			}
			for _, attr := range fn.Attrs {
				name := ident(attr)
				spec, ok := ast.LookupAttr(name)
				if !ok {
					return fmt.Errorf("module %q: fn %q: unknown attribute @%s", mod.Name, fn.Name, name)
				}
				if !spec.Allows(ast.AttrTargetFn) {
					return fmt.Errorf("module %q: fn %q: attribute @%s cannot be applied to functions", mod.Name, fn.Name, name)
				}
			}
		}
	}
	return nil
}

// ident canonicalizes a manifest identifier. The front end this loader stands
// in for compares identifiers after NFC normalization, so interning must too.
func ident(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// buildModule renders the module's declarations to one virtual file and
// registers the resulting items and signatures in the world.
func buildModule(world *sema.World, files *source.FileSet, mod manifestModule) {
	r := &renderer{}
	decls := make([]renderedFn, 0, len(mod.Fns))
	for _, fn := range mod.Fns {
		decls = append(decls, r.renderFn(fn))
		r.raw("\n")
	}

	fileName := mod.Name + ".pv"
	fileID := files.AddVirtual(fileName, []byte(r.sb.String()))

	modID := world.AddModule(mod.Name)
	for i, fn := range mod.Fns {
		item, sig := buildItem(world, fileID, fn, decls[i])
		fnID, isFree := world.AddItem(modID, item)
		if !isFree {
			continue
		}
		if fn.Unresolved {
			world.SetSignatureError(fnID, fmt.Errorf("signature of %q did not resolve", fn.Name))
			continue
		}
		world.SetSignature(fnID, sig)
	}
}

// renderedFn records where the interesting pieces of one declaration landed
// in the rendered text. Offsets are file-relative; File is filled in later.
type renderedFn struct {
	span      offsets
	nameSpan  offsets
	generics  offsets
	params    offsets
	paramAt   []offsets
	attrAt    []offsets
	returnAt  offsets
	hasReturn bool
}

type offsets struct{ start, end uint32 }

func (o offsets) span(file source.FileID) source.Span {
	return source.Span{File: file, Start: o.start, End: o.end}
}

type renderer struct {
	sb strings.Builder
}

func (r *renderer) pos() uint32 {
	return uint32(r.sb.Len())
}

func (r *renderer) raw(s string) {
	r.sb.WriteString(s)
}

// mark writes s and returns the offsets it occupies.
func (r *renderer) mark(s string) offsets {
	start := r.pos()
	r.sb.WriteString(s)
	return offsets{start: start, end: r.pos()}
}

func (r *renderer) renderFn(fn manifestFn) renderedFn {
	var out renderedFn
	declStart := r.pos()

	for _, attr := range fn.Attrs {
		out.attrAt = append(out.attrAt, r.mark("@"+ident(attr)))
		r.raw("\n")
	}

	r.raw("fn ")
	out.nameSpan = r.mark(ident(fn.Name))

	if len(fn.Generics) > 0 {
		gen := make([]string, len(fn.Generics))
		for i, g := range fn.Generics {
			gen[i] = ident(g)
		}
		out.generics = r.mark("<" + strings.Join(gen, ", ") + ">")
	}

	paramsStart := r.pos()
	r.raw("(")
	for i, p := range fn.Params {
		if i > 0 {
			r.raw(", ")
		}
		text := ident(p.Name) + ": " + ident(p.Type)
		if p.Ref {
			text = "ref " + text
		}
		out.paramAt = append(out.paramAt, r.mark(text))
	}
	r.raw(")")
	out.params = offsets{start: paramsStart, end: r.pos()}

	if fn.Returns != "" {
		out.hasReturn = true
		r.raw(" -> ")
		out.returnAt = r.mark(ident(fn.Returns))
	}

	r.raw(" { }\n")
	out.span = offsets{start: declStart, end: r.pos()}
	return out
}

func buildItem(world *sema.World, file source.FileID, fn manifestFn, rd renderedFn) (*ast.Item, *sema.Signature) {
	strs := world.Strings()
	ti := world.Types()

	item := &ast.FnItem{
		Name:       strs.Intern(ident(fn.Name)),
		NameSpan:   rd.nameSpan.span(file),
		ParamsSpan: rd.params.span(file),
		Span:       rd.span.span(file),
	}

	for i, attr := range fn.Attrs {
		item.Attrs = append(item.Attrs, ast.Attr{
			Name: strs.Intern(ident(attr)),
			Span: rd.attrAt[i].span(file),
		})
	}
	for _, g := range fn.Generics {
		item.Generics = append(item.Generics, ast.TypeParam{
			Name: strs.Intern(ident(g)),
			Span: rd.generics.span(file),
		})
	}
	if len(fn.Generics) > 0 {
		item.GenericsSpan = rd.generics.span(file)
	}

	sig := &sema.Signature{
		ParamsSpan: rd.params.span(file),
		Result:     ti.Builtins().Unit,
		RetSpan:    rd.span.span(file),
	}
	for i, p := range fn.Params {
		pSpan := rd.paramAt[i].span(file)
		item.Params = append(item.Params, ast.Param{
			Name:     strs.Intern(ident(p.Name)),
			TypeText: strs.Intern(ident(p.Type)),
			Ref:      p.Ref,
			Span:     pSpan,
		})
		mut := sema.MutValue
		if p.Ref {
			mut = sema.MutRef
		}
		sig.Params = append(sig.Params, sema.Param{
			Name:       strs.Intern(ident(p.Name)),
			Type:       sema.ResolveTypeText(ti, strs, ident(p.Type)),
			Mutability: mut,
			Span:       pSpan,
		})
	}
	if rd.hasReturn {
		item.ReturnText = strs.Intern(ident(fn.Returns))
		item.ReturnSpan = rd.returnAt.span(file)
		sig.Result = sema.ResolveTypeText(ti, strs, ident(fn.Returns))
		sig.RetSpan = item.ReturnSpan
	}

	kind := ast.ItemFn
	if fn.Kind == "method" {
		kind = ast.ItemMethod
	}
	return &ast.Item{Kind: kind, Span: rd.span.span(file), Fn: item}, sig
}
