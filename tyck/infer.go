package tyck

import (
	"upto/hir"
	"upto/types"
)

// Infer synthesizes expr's type bottom-up. It's used wherever Check has no
// expected type to push down: function heads, application heads, annotated
// subexpressions, and anywhere Check itself falls through to it for a
// coercion.
func (t *Typer) Infer(expr hir.Expr) Expr {
	switch expr.Kind {
	case hir.ExprName:
		name, _ := expr.AsName()
		binding := t.Context.Get(name)
		ty, vars := t.Context.Instantiate(binding)
		if len(vars) == 0 {
			return NameExpr(name, ty, expr.Span)
		}
		args := make([]InstArg, len(vars))
		for i, v := range vars {
			args[i] = InstArg{Span: expr.Span, Type: types.VarType(types.Mutable, v)}
		}
		return InstExpr(name, args, ty, expr.Span)

	case hir.ExprApp:
		fun, arg, _ := expr.AsApp()
		checkedFun := t.Infer(fun)
		from, to := t.TypeFunction(expr.Span, checkedFun.Type)
		checkedArg := t.Check(Because{Span: checkedFun.Span}, arg, from)
		return AppExpr(checkedFun, checkedArg, to, expr.Span)

	case hir.ExprInst:
		fun, explicitArgs, _ := expr.AsInst()
		name, isName := fun.AsName()
		if !isName {
			t.Bag.At(expr.Span).TyckInstantiateNonName()
			return t.Infer(fun)
		}

		binding := t.Context.Get(name)
		ty, vars := t.Context.Instantiate(binding)

		if len(vars) == 0 {
			t.Bag.At(expr.Span).TyckInstantiateNotGeneric(t.pretty(ty))
			return NameExpr(name, ty, expr.Span)
		}

		if len(vars) != len(explicitArgs) {
			t.Bag.At(expr.Span).TyckInstantiateWrongArity()
		}

		n := len(vars)
		if len(explicitArgs) < n {
			n = len(explicitArgs)
		}
		args := make([]InstArg, n)
		for i := 0; i < n; i++ {
			anno := explicitArgs[i]
			lowered := t.LowerType(anno, types.Mutable)
			t.Equate(anno.Span, types.VarType(types.Mutable, vars[i]), lowered)
			args[i] = InstArg{Span: anno.Span, Type: lowered}
		}
		return InstExpr(name, args, ty, expr.Span)

	case hir.ExprAnno:
		inner, anno, _ := expr.AsAnno()
		lowered := t.LowerType(anno, types.Mutable)
		return t.Check(Because{Span: anno.Span}, inner, lowered)

	case hir.ExprInvalid:
		return InvalidExpr(expr.Span)

	case hir.ExprHole, hir.ExprNum, hir.ExprLam, hir.ExprTuple:
		t.Bag.At(expr.Span).TyckAmbiguous()
		return InvalidExpr(expr.Span)

	default:
		return InvalidExpr(expr.Span)
	}
}
