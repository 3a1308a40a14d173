package compile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"upto/hir"
	"upto/names"
)

// Cache memoizes a Pipeline run per top-level hir.Decls value, keyed by a
// structural fingerprint rather than by identity: two distinct Decls values
// built from the same source text hash the same way and share one entry.
// This is the module-granularity memoization spec's Non-goals explicitly
// leave in scope — nothing finer than "one compilation unit in, one result
// out".
type Cache struct {
	entries map[string]*CompilationResult
}

// NewCache creates an empty Cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*CompilationResult)}
}

func (c *Cache) lookup(nt *names.Names, decls hir.Decls) (*CompilationResult, bool) {
	result, ok := c.entries[fingerprint(nt, decls)]
	return result, ok
}

func (c *Cache) store(nt *names.Names, decls hir.Decls, result *CompilationResult) {
	c.entries[fingerprint(nt, decls)] = result
}

// fingerprint renders decls to a canonical text form, independent of the
// particular names.Name ids a given resolver run happened to mint (two runs
// over identical source text intern different ids but the same dotted
// paths), then hashes it. Spans are deliberately excluded: a module
// reformatted without changing any token still fingerprints identically.
func fingerprint(nt *names.Names, decls hir.Decls) string {
	var b strings.Builder
	for _, def := range decls.Types {
		fmt.Fprintf(&b, "type %s = ", nt.Path(def.Name))
		writeAnno(&b, nt, def.Anno)
		b.WriteByte('\n')
	}
	for _, def := range decls.Values {
		fmt.Fprintf(&b, "val %s", nt.Path(def.Name))
		if len(def.Implicit) > 0 {
			b.WriteString("[")
			for i, p := range def.Implicit {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(nt.Path(p))
			}
			b.WriteString("]")
		}
		b.WriteByte(' ')
		writePat(&b, nt, def.Pat)
		if def.Anno != nil {
			b.WriteString(" : ")
			writeAnno(&b, nt, *def.Anno)
		}
		b.WriteString(" = ")
		writeExpr(&b, nt, def.Body)
		b.WriteByte('\n')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func writePat(b *strings.Builder, nt *names.Names, p hir.Pat) {
	switch p.Kind {
	case hir.PatName:
		name, _ := p.AsName()
		b.WriteString(nt.Path(name))
	case hir.PatTuple:
		fst, snd, _ := p.AsTuple()
		b.WriteByte('(')
		writePat(b, nt, fst)
		b.WriteByte(',')
		writePat(b, nt, snd)
		b.WriteByte(')')
	case hir.PatAnno:
		inner, anno, _ := p.AsAnno()
		writePat(b, nt, inner)
		b.WriteString(" : ")
		writeAnno(b, nt, anno)
	case hir.PatWildcard:
		b.WriteByte('_')
	default:
		b.WriteString("<invalidpat>")
	}
}

func writeAnno(b *strings.Builder, nt *names.Names, t hir.TypeAnno) {
	switch t.Kind {
	case hir.TypeAnnoName:
		name, _ := t.AsName()
		b.WriteString(nt.Path(name))
	case hir.TypeAnnoRange:
		lo, hi, _ := t.AsRange()
		fmt.Fprintf(b, "%s upto %s", nt.Path(lo), nt.Path(hi))
	case hir.TypeAnnoFun:
		from, to, _ := t.AsFun()
		b.WriteByte('(')
		writeAnno(b, nt, from)
		b.WriteString(" -> ")
		writeAnno(b, nt, to)
		b.WriteByte(')')
	case hir.TypeAnnoProduct:
		fst, snd, _ := t.AsProduct()
		b.WriteByte('(')
		writeAnno(b, nt, fst)
		b.WriteString(" * ")
		writeAnno(b, nt, snd)
		b.WriteByte(')')
	case hir.TypeAnnoWildcard:
		b.WriteByte('_')
	default:
		b.WriteString("<invalidanno>")
	}
}

func writeExpr(b *strings.Builder, nt *names.Names, e hir.Expr) {
	switch e.Kind {
	case hir.ExprName:
		name, _ := e.AsName()
		b.WriteString(nt.Path(name))
	case hir.ExprNum:
		n, _ := e.AsNum()
		fmt.Fprintf(b, "%d", n)
	case hir.ExprHole:
		b.WriteString("<hole>")
	case hir.ExprLam:
		param, body, _ := e.AsLam()
		b.WriteString("\\")
		writePat(b, nt, param)
		b.WriteString(".")
		writeExpr(b, nt, body)
	case hir.ExprApp:
		fun, arg, _ := e.AsApp()
		b.WriteByte('(')
		writeExpr(b, nt, fun)
		b.WriteByte(' ')
		writeExpr(b, nt, arg)
		b.WriteByte(')')
	case hir.ExprInst:
		fun, args, _ := e.AsInst()
		writeExpr(b, nt, fun)
		b.WriteByte('<')
		for i, a := range args {
			if i > 0 {
				b.WriteByte(',')
			}
			writeAnno(b, nt, a)
		}
		b.WriteByte('>')
	case hir.ExprTuple:
		fst, snd, _ := e.AsTuple()
		b.WriteByte('(')
		writeExpr(b, nt, fst)
		b.WriteByte(',')
		writeExpr(b, nt, snd)
		b.WriteByte(')')
	case hir.ExprAnno:
		inner, anno, _ := e.AsAnno()
		writeExpr(b, nt, inner)
		b.WriteString(" : ")
		writeAnno(b, nt, anno)
	default:
		b.WriteString("<invalidexpr>")
	}
}
