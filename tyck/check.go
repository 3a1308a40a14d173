package tyck

import (
	"upto/hir"
	"upto/types"
)

// Check verifies expr against an expected type, pushing that expectation
// down into the expression's own shape where possible (lambda parameters,
// tuple components, number literals) and falling back to Infer-then-coerce
// everywhere else.
func (t *Typer) Check(because Because, expr hir.Expr, against types.Type) Expr {
	switch expr.Kind {
	case hir.ExprNum:
		v, _ := expr.AsNum()
		ty := t.TypeNumber(expr.Span, because, against)
		return NumExpr(v, ty, expr.Span)

	case hir.ExprLam:
		param, body, _ := expr.AsLam()
		from, to := t.TypeFunction(expr.Span, against)
		checkedParam := t.BindPat(param, from)
		checkedBody := t.Check(because, body, to)
		return LamExpr(checkedParam, checkedBody, types.FunType(from, to), expr.Span)

	case hir.ExprTuple:
		x, y, _ := expr.AsTuple()
		fst, snd := t.TypeTuple(expr.Span, against)
		checkedX := t.Check(because, x, fst)
		checkedY := t.Check(because, y, snd)
		return TupleExpr(checkedX, checkedY, types.ProductType(fst, snd), expr.Span)

	case hir.ExprHole:
		t.Bag.At(expr.Span).Help(t.pretty(against))
		return HoleExpr(against, expr.Span)

	default:
		inferred := t.Infer(expr)
		id := t.AssignFresh(expr.Span, against, inferred.Type)
		return CoerceExpr(inferred, id, against, expr.Span)
	}
}
