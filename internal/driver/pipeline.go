// Package driver runs a plugin suite over a world of modules: every
// generator against every item, every analyzer against every module. Both
// pass kinds are referentially transparent, so modules fan out across
// goroutines and results merge back in module order, keeping output
// deterministic regardless of scheduling.
package driver

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"provel/internal/ast"
	"provel/internal/diag"
	"provel/internal/plugin"
	"provel/internal/sema"
)

// Options tunes one pipeline run.
type Options struct {
	// Jobs caps worker goroutines; 0 means NumCPU.
	Jobs int
	// Cache, when set, short-circuits generation for unchanged items.
	Cache *DiskCache
	// MaxDiagnostics bounds the merged bag.
	MaxDiagnostics int
}

// GeneratedFile is one generated unit attributed to its origin.
type GeneratedFile struct {
	Module sema.ModuleID
	// FnName is the name of the source function the unit was generated for.
	FnName string
	Unit   *plugin.GeneratedUnit
}

// Result is the merged outcome of a pipeline run.
type Result struct {
	Units []GeneratedFile
	Bag   *diag.Bag
}

type moduleOutcome struct {
	units []GeneratedFile
	bag   *diag.Bag
}

// RunSuite executes the suite over every module of the world.
func RunSuite(ctx context.Context, suite *plugin.Suite, world *sema.World, opts Options) (*Result, error) {
	if opts.MaxDiagnostics <= 0 {
		opts.MaxDiagnostics = 100
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	meta := &plugin.Metadata{Strings: world.Strings()}

	// Pre-intern every attribute name the suite touches. After this point the
	// concurrent passes only read the interner.
	for _, name := range suite.DeclaredAttrs {
		world.Strings().Intern(name)
	}
	for _, name := range suite.ExecutableAttrs {
		world.Strings().Intern(name)
	}

	modules := world.Modules()
	outcomes := make([]moduleOutcome, len(modules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(modules), 1)))
	for i, mod := range modules {
		i, mod := i, mod
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := runModule(suite, world, mod, meta, opts)
			if err != nil {
				return fmt.Errorf("module %q: %w", world.ModuleName(mod), err)
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Deterministic merge in module order.
	res := &Result{Bag: diag.NewBag(opts.MaxDiagnostics)}
	for _, out := range outcomes {
		res.Units = append(res.Units, out.units...)
		res.Bag.Merge(out.bag)
	}
	res.Bag.Sort()
	return res, nil
}

func runModule(suite *plugin.Suite, world *sema.World, mod sema.ModuleID, meta *plugin.Metadata, opts Options) (moduleOutcome, error) {
	out := moduleOutcome{bag: diag.NewBag(opts.MaxDiagnostics)}
	reporter := diag.BagReporter{Bag: out.bag}

	for _, item := range world.Items(mod) {
		fnName := ""
		if fn, ok := item.FreeFn(); ok {
			fnName = world.Strings().MustLookup(fn.Name)
		}
		for genIdx, generate := range suite.Generators {
			unit, diags, err := generateCached(generate, genIdx, item, meta, world, opts.Cache)
			if err != nil {
				return moduleOutcome{}, err
			}
			diag.ReportAll(reporter, diags)
			if unit != nil {
				out.units = append(out.units, GeneratedFile{Module: mod, FnName: fnName, Unit: unit})
			}
		}
	}

	for _, analyze := range suite.Analyzers {
		diag.ReportAll(reporter, analyze(world, mod))
	}
	return out, nil
}

// generateCached consults the disk cache before invoking the generator.
// Results with diagnostics are never cached: only clean units are pure
// artifacts worth reusing.
func generateCached(generate plugin.GenerateFunc, genIdx int, item *ast.Item, meta *plugin.Metadata, world *sema.World, cache *DiskCache) (*plugin.GeneratedUnit, []diag.Diagnostic, error) {
	if cache == nil {
		res := generate(item, meta)
		return res.Unit, res.Diagnostics, nil
	}

	key, ok := itemDigest(world.Strings(), genIdx, item)
	if ok {
		var payload UnitPayload
		hit, err := cache.Get(key, &payload)
		if err != nil {
			return nil, nil, err
		}
		if hit && payload.Schema == cacheSchemaVersion {
			return payload.toUnit(), nil, nil
		}
	}

	res := generate(item, meta)
	if ok && res.Unit != nil && len(res.Diagnostics) == 0 {
		if err := cache.Put(key, newUnitPayload(res.Unit)); err != nil {
			return nil, nil, err
		}
	}
	return res.Unit, res.Diagnostics, nil
}
