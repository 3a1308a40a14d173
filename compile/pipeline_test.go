package compile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"upto/hir"
	"upto/names"
)

// byteRangeDecls builds `type Byte = 0 upto 256` plus an identity function
// over it, the smallest program every stage of the pipeline has something
// real to do with: tyck assigns it a Range type, lower turns it into a
// one-parameter procedure, eval leaves it residual (its param is symbolic),
// and regalloc assigns its parameter and return value a location.
func byteRangeDecls(nt *names.Names) (decls hir.Decls, identity names.Name) {
	byteName := nt.Fresh(names.Name{}, false, "Byte", names.Span{})
	zero := nt.Fresh(names.Name{}, false, "zero", names.Span{})
	max := nt.Fresh(names.Name{}, false, "max", names.Span{})
	identity = nt.Fresh(names.Name{}, false, "identity", names.Span{})
	x := nt.Fresh(names.Name{}, false, "x", names.Span{})

	anno := hir.FunAnno(hir.NameAnno(byteName, names.Span{}), hir.NameAnno(byteName, names.Span{}), names.Span{})
	decls = hir.Decls{
		Types: []hir.TypeDef{{Name: byteName, Anno: hir.RangeAnno(zero, max, names.Span{})}},
		Values: []hir.ValueDef{
			{Name: zero, Pat: hir.NamePat(zero, names.Span{}), Body: hir.Num(0, names.Span{})},
			{Name: max, Pat: hir.NamePat(max, names.Span{}), Body: hir.Num(256, names.Span{})},
			{
				Name: identity, Pat: hir.NamePat(identity, names.Span{}), Anno: &anno,
				Body: hir.Lam(hir.NamePat(x, names.Span{}), hir.Name(x, names.Span{}), names.Span{}),
			},
		},
	}
	return
}

func Test_Pipeline_RunsAllFourStagesToASuccessfulAllocation(t *testing.T) {
	nt := names.New()
	decls, identity := byteRangeDecls(nt)

	opts := DefaultPipelineOptions()
	opts.Names = nt
	opts.Decls = decls
	opts.EntryPoint = identity

	result, err := Pipeline(opts)
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.Bag.HasErrors())

	proc, ok := result.Allocated.Procs[identity]
	assert.True(t, ok)
	assert.NotNil(t, proc.FrameSpace)
}

func Test_Pipeline_MissingEntryPointIsAnError(t *testing.T) {
	nt := names.New()
	decls, _ := byteRangeDecls(nt)

	opts := DefaultPipelineOptions()
	opts.Names = nt
	opts.Decls = decls

	_, err := Pipeline(opts)
	assert.Error(t, err)
}

func Test_Pipeline_StopAfterTypeckSkipsLaterStages(t *testing.T) {
	nt := names.New()
	decls, identity := byteRangeDecls(nt)

	opts := DefaultPipelineOptions()
	opts.Names = nt
	opts.Decls = decls
	opts.EntryPoint = identity
	opts.StopAfterTypeck = true

	result, err := Pipeline(opts)
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Nil(t, result.Lowered)
}

func Test_Pipeline_UnsupportedTargetArchIsAnError(t *testing.T) {
	nt := names.New()
	decls, identity := byteRangeDecls(nt)

	opts := DefaultPipelineOptions()
	opts.Names = nt
	opts.Decls = decls
	opts.EntryPoint = identity
	opts.TargetArch = "6502"

	_, err := Pipeline(opts)
	assert.Error(t, err)
}

func Test_Pipeline_CacheReturnsSamePointerOnSecondRun(t *testing.T) {
	nt := names.New()
	decls, identity := byteRangeDecls(nt)
	cache := NewCache()

	opts := DefaultPipelineOptions()
	opts.Names = nt
	opts.Decls = decls
	opts.EntryPoint = identity
	opts.Cache = cache

	first, err := Pipeline(opts)
	assert.NoError(t, err)

	second, err := Pipeline(opts)
	assert.NoError(t, err)
	assert.Same(t, first, second)
}

func Test_Pipeline_DumpFlagsDoNotPanic(t *testing.T) {
	nt := names.New()
	decls, identity := byteRangeDecls(nt)

	opts := DefaultPipelineOptions()
	opts.Names = nt
	opts.Decls = decls
	opts.EntryPoint = identity
	opts.Verbose = true
	opts.DumpHIR = true
	opts.DumpTyped = true
	opts.DumpLIR = true
	opts.DumpResidual = true
	opts.DumpLiveness = true
	opts.DumpInterference = true
	opts.DumpAllocation = true

	result, err := Pipeline(opts)
	assert.NoError(t, err)
	assert.True(t, result.Success)
}
