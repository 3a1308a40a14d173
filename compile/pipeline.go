package compile

import (
	"fmt"

	"upto/diagnostics"
	"upto/eval"
	"upto/hir"
	"upto/lir"
	"upto/lower"
	"upto/names"
	"upto/regalloc"
	"upto/tyck"
	"upto/types"
)

// CompilationResult contains the output of the compilation pipeline, one
// field per stage it got through. A stage a StopAfterX flag or an error
// cut the run short before reaching is left at its zero value.
type CompilationResult struct {
	Checked tyck.Decls
	Typed   *types.Context

	Lowered   *lir.Program
	Evaluated *lir.Program
	Allocated *lir.Program

	Bag *diagnostics.Bag

	Success bool
}

// PipelineOptions configures the compilation pipeline. Lexing, parsing, and
// name resolution are out of this core's scope, so a run always starts from
// an already name-resolved Decls rather than source text.
type PipelineOptions struct {
	Names       *names.Names
	Decls       hir.Decls
	Definitions map[names.Name]types.Type // type aliases known before Decls.Types is processed
	EntryPoint  names.Name                // whole-program root the partial evaluator specializes from
	TargetArch  string                    // "corollary" or "systemv", see targetTable

	// Pipeline control flags
	StopAfterTypeck bool
	StopAfterLower  bool
	StopAfterEval   bool

	// Debug output
	DumpHIR          bool
	DumpTyped        bool
	DumpLIR          bool
	DumpResidual     bool
	DumpLiveness     bool
	DumpInterference bool
	DumpAllocation   bool
	Verbose          bool

	// Cache, when set, memoizes a run's result by the structural fingerprint
	// of Decls so a driver re-checking the same module doesn't redo all four
	// stages. nil disables memoization.
	Cache *Cache
}

// DefaultPipelineOptions returns default pipeline options.
func DefaultPipelineOptions() *PipelineOptions {
	return &PipelineOptions{
		Definitions: map[names.Name]types.Type{},
		TargetArch:  "corollary",
	}
}

// Pipeline runs the complete compilation pipeline: typecheck, lower,
// partially evaluate, allocate registers.
func Pipeline(opts *PipelineOptions) (*CompilationResult, error) {
	if opts.Names == nil {
		return &CompilationResult{Bag: diagnostics.NewBag()}, fmt.Errorf("no name interner provided")
	}
	if opts.EntryPoint.IsZero() {
		return &CompilationResult{Bag: diagnostics.NewBag()}, fmt.Errorf("no entry point provided")
	}

	if opts.Cache != nil {
		if cached, ok := opts.Cache.lookup(opts.Names, opts.Decls); ok {
			return cached, nil
		}
	}

	result := &CompilationResult{Bag: diagnostics.NewBag()}

	definitions := opts.Definitions
	if definitions == nil {
		definitions = map[names.Name]types.Type{}
	}

	// ==========================================================================
	// Stage 1: Typechecking
	// ==========================================================================
	if opts.Verbose {
		fmt.Println("==> Stage 1: Typechecking")
	}

	if opts.DumpHIR {
		dumpHIR(opts.Names, opts.Decls)
	}

	typer := tyck.NewTyper(opts.Names, definitions)
	checked := typer.Typeck(opts.Decls)
	result.Checked = checked
	result.Typed = typer.Context
	result.Bag.Merge(typer.Bag)

	if opts.DumpTyped {
		dumpChecked(opts.Names, checked)
	}

	if result.Bag.HasErrors() {
		return result, fmt.Errorf("typechecking failed")
	}
	if opts.StopAfterTypeck {
		result.Success = true
		return result, nil
	}

	// ==========================================================================
	// Stage 2: Lowering
	// ==========================================================================
	if opts.Verbose {
		fmt.Println("==> Stage 2: Lowering")
	}

	loweringBag := diagnostics.NewBag()
	prog := lower.Lower(opts.Names, typer.Context, definitions, typer.Subst(), typer.Coercions, loweringBag, checked)
	result.Lowered = prog
	result.Bag.Merge(loweringBag)

	if opts.DumpLIR {
		dumpProgram(opts.Names, "LIR", prog)
	}

	if result.Bag.HasErrors() {
		return result, fmt.Errorf("lowering failed")
	}
	if opts.StopAfterLower {
		result.Success = true
		return result, nil
	}

	// ==========================================================================
	// Stage 3: Partial evaluation
	// ==========================================================================
	if opts.Verbose {
		fmt.Println("==> Stage 3: Partial evaluation")
	}

	evalBag := diagnostics.NewBag()
	residual := eval.Evaluate(opts.Names, evalBag, prog, opts.EntryPoint)
	result.Evaluated = residual
	result.Bag.Merge(evalBag)

	if opts.DumpResidual {
		dumpProgram(opts.Names, "residual LIR", residual)
	}

	if result.Bag.HasErrors() {
		return result, fmt.Errorf("partial evaluation failed")
	}
	if opts.StopAfterEval {
		result.Success = true
		return result, nil
	}

	// ==========================================================================
	// Stage 4: Register allocation
	// ==========================================================================
	if opts.Verbose {
		fmt.Println("==> Stage 4: Register allocation")
	}

	table, err := targetTable(opts.TargetArch)
	if err != nil {
		return result, err
	}

	if opts.DumpLiveness || opts.DumpInterference {
		for name, proc := range residual.Procs {
			live, intf, _ := regalloc.Inspect(proc)
			if opts.DumpLiveness {
				dumpLiveness(opts.Names, name, live)
			}
			if opts.DumpInterference {
				dumpInterference(opts.Names, name, intf)
			}
		}
	}

	allocBag := diagnostics.NewBag()
	allocated := regalloc.Run(allocBag, table, residual)
	result.Allocated = allocated
	result.Bag.Merge(allocBag)

	if opts.DumpAllocation {
		dumpAllocation(opts.Names, allocated)
	}

	if result.Bag.HasErrors() {
		return result, fmt.Errorf("register allocation failed")
	}

	// ==========================================================================
	// Pipeline Complete
	// ==========================================================================
	result.Success = true
	if opts.Cache != nil {
		opts.Cache.store(opts.Names, opts.Decls, result)
	}
	return result, nil
}

// targetTable resolves a TargetArch string to the calling-convention table
// Allocate should resolve every procedure's convention against.
func targetTable(arch string) (*regalloc.Table, error) {
	switch arch {
	case "corollary":
		return regalloc.NewTable(arch, regalloc.Corollary()), nil
	case "systemv":
		return regalloc.NewTable(arch, regalloc.SystemV(), regalloc.Corollary()), nil
	default:
		return nil, fmt.Errorf("unsupported target architecture: %s", arch)
	}
}
