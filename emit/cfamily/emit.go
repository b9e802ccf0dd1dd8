package cfamily

import (
	"fmt"
	"strings"

	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
)

// Emit renders m, which must already have been through the full lowering
// pipeline, as a self-contained translation unit in d's dialect. Module-level
// declarations are emitted grouped by kind (nominal types, then the private
// globals struct, then the other globals, then constants, then function
// signatures and bodies), which keeps forward references working without a
// second pass over the declaration list for the common case.
func Emit(m *ir.Module, d Dialect) (string, error) {
	e := &emitter{dialect: d, arena: m.Arena, privateIndex: map[*ir.Node]int{}}
	e.scanPrivateGlobals(m)

	var out strings.Builder
	for _, decl := range m.Decls {
		if ir.KindOf(decl) == ir.KindNominalType {
			if err := e.emitNominalType(&out, decl); err != nil {
				return "", err
			}
		}
	}
	if err := e.emitPrivateGlobalsStruct(&out); err != nil {
		return "", err
	}
	for _, decl := range m.Decls {
		if ir.KindOf(decl) == ir.KindGlobalVariable {
			gp := decl.Payload.(*ir.GlobalVariablePayload)
			if gp.AddressSpace == ir.Private {
				continue
			}
			if err := e.emitGlobalVariable(&out, decl); err != nil {
				return "", err
			}
		}
	}
	for _, decl := range m.Decls {
		if ir.KindOf(decl) == ir.KindConstant {
			if err := e.emitConstant(&out, decl); err != nil {
				return "", err
			}
		}
	}
	for _, decl := range m.Decls {
		if ir.KindOf(decl) == ir.KindFunction {
			if err := e.emitFunctionSignature(&out, decl); err != nil {
				return "", err
			}
			out.WriteString(";\n")
		}
	}
	out.WriteString("\n")
	for _, decl := range m.Decls {
		if ir.KindOf(decl) != ir.KindFunction {
			continue
		}
		fp := decl.Payload.(*ir.FunctionPayload)
		if fp.Body == nil {
			continue
		}
		if err := e.emitFunctionSignature(&out, decl); err != nil {
			return "", err
		}
		if err := e.emitFunctionBody(&out, decl); err != nil {
			return "", err
		}
	}
	return out.String(), nil
}

// emitter holds the module-wide state shared across every declaration: the
// target dialect, the arena backing the module (needed to wrap a raw type in
// a QualifiedType before handing it to Dialect.TypeName), and the set of
// Private-space globals folded into one struct.
type emitter struct {
	dialect        Dialect
	arena          *arena.Arena
	privateGlobals []*ir.Node
	privateIndex   map[*ir.Node]int
}

// qualify wraps a raw (unqualified) type in a uniform QualifiedType so it can
// be handed to Dialect.TypeName, which always expects a qualified type;
// GlobalVariablePayload.Type and NominalTypePayload.Body are stored raw.
func (e *emitter) qualify(t *ir.Node) *ir.Node {
	if ir.KindOf(t) == ir.KindQualifiedType {
		return t
	}
	return ir.UniformType(e.arena, t)
}

func (e *emitter) scanPrivateGlobals(m *ir.Module) {
	for _, decl := range m.Decls {
		if ir.KindOf(decl) != ir.KindGlobalVariable {
			continue
		}
		gp := decl.Payload.(*ir.GlobalVariablePayload)
		if gp.AddressSpace != ir.Private {
			continue
		}
		e.privateIndex[decl] = len(e.privateGlobals)
		e.privateGlobals = append(e.privateGlobals, decl)
	}
}

func (e *emitter) emitPrivateGlobalsStruct(out *strings.Builder) error {
	if len(e.privateGlobals) == 0 {
		return nil
	}
	out.WriteString("static struct {\n")
	for _, decl := range e.privateGlobals {
		gp := decl.Payload.(*ir.GlobalVariablePayload)
		tn, err := e.dialect.TypeName(e.qualify(gp.Type))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\t%s %s;\n", tn, gp.Name)
	}
	out.WriteString("} __shady_private_globals = {\n")
	for _, decl := range e.privateGlobals {
		gp := decl.Payload.(*ir.GlobalVariablePayload)
		init := "0"
		if gp.Init != nil {
			var err error
			init, err = (&exprCtx{e: e}).expr(gp.Init)
			if err != nil {
				return err
			}
		}
		fmt.Fprintf(out, "\t.%s = %s,\n", gp.Name, init)
	}
	out.WriteString("};\n\n")
	return nil
}

// typedefDecl renders `typedef <typeName> <ident>;`, splicing ident before an
// array-bracket suffix the way a C declarator requires (`typedef int32_t
// Foo[4];`, never `typedef int32_t[4] Foo;`).
func typedefDecl(typeName, ident string) string {
	if idx := strings.IndexByte(typeName, '['); idx >= 0 {
		return fmt.Sprintf("%s %s%s", strings.TrimRight(typeName[:idx], " "), ident, typeName[idx:])
	}
	return fmt.Sprintf("%s %s", typeName, ident)
}

func (e *emitter) emitNominalType(out *strings.Builder, decl *ir.Node) error {
	np := decl.Payload.(*ir.NominalTypePayload)
	if np.Body == nil {
		return nil
	}
	name, err := e.dialect.TypeName(e.qualify(np.Body))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "typedef %s;\n", typedefDecl(name, ir.DeclName(decl)))
	return nil
}

func addressSpaceQualifier(as ir.AddressSpace, dialectName string) string {
	switch as {
	case ir.Shared:
		if dialectName == "cuda" {
			return "__shared__ "
		}
		return "" // GLSL/ISPC compute "shared" storage has no C11 equivalent; left for the frontend's own annotation handling.
	case ir.Uniform, ir.UniformConstant, ir.PushConstant:
		return "static const "
	default:
		return "static "
	}
}

func (e *emitter) emitGlobalVariable(out *strings.Builder, decl *ir.Node) error {
	gp := decl.Payload.(*ir.GlobalVariablePayload)
	tn, err := e.dialect.TypeName(e.qualify(gp.Type))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s%s %s", addressSpaceQualifier(gp.AddressSpace, e.dialect.Name()), tn, gp.Name)
	if gp.Init != nil {
		init, err := (&exprCtx{e: e}).expr(gp.Init)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, " = %s", init)
	}
	out.WriteString(";\n")
	return nil
}

func (e *emitter) emitConstant(out *strings.Builder, decl *ir.Node) error {
	cp := decl.Payload.(*ir.ConstantPayload)
	if cp.Value == nil {
		return nil
	}
	tn, err := e.dialect.TypeName(decl.Type)
	if err != nil {
		return err
	}
	val, err := (&exprCtx{e: e}).expr(cp.Value)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "static const %s %s = %s;\n", tn, cp.Name, val)
	return nil
}

func (e *emitter) emitFunctionSignature(out *strings.Builder, decl *ir.Node) error {
	fp := decl.Payload.(*ir.FunctionPayload)
	ret := "void"
	switch len(fp.ReturnTypes) {
	case 0:
	case 1:
		var err error
		ret, err = e.dialect.TypeName(e.qualify(fp.ReturnTypes[0]))
		if err != nil {
			return err
		}
	default:
		return unsupported(e.dialect.Name(), "multi-return function not lowered by lower_callc")
	}
	params := make([]string, len(fp.Params))
	for i, p := range fp.Params {
		pp := p.Payload.(ir.ParamPayload)
		tn, err := e.dialect.TypeName(pp.DeclaredType)
		if err != nil {
			return err
		}
		params[i] = fmt.Sprintf("%s %s", tn, sanitizeIdent(pp.Name))
	}
	if len(params) == 0 {
		params = []string{"void"}
	}
	fmt.Fprintf(out, "%s%s %s(%s)", e.dialect.EntryPointPrefix(fp), ret, fp.Name, strings.Join(params, ", "))
	return nil
}

// sanitizeIdent maps a Shady identifier (which may be empty, or collide with
// a C keyword) onto a safe C identifier. The common case is already a valid
// C identifier and passes through unchanged.
func sanitizeIdent(name string) string {
	if name == "" {
		return "_"
	}
	var b strings.Builder
	for i, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if cKeywords[b.String()] {
		return "shady_" + b.String()
	}
	return b.String()
}

var cKeywords = map[string]bool{
	"auto": true, "break": true, "case": true, "char": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extern": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true, "register": true,
	"restrict": true, "return": true, "short": true, "signed": true, "sizeof": true,
	"static": true, "struct": true, "switch": true, "typedef": true, "union": true,
	"unsigned": true, "void": true, "volatile": true, "while": true, "class": true,
	"new": true, "delete": true, "template": true, "namespace": true, "this": true,
}

// emitFunctionBody writes fn's " { ... }\n\n" suffix after its already-
// emitted signature.
func (e *emitter) emitFunctionBody(out *strings.Builder, decl *ir.Node) error {
	fp := decl.Payload.(*ir.FunctionPayload)
	fctx := newFuncCtx(e, out)
	for _, p := range fp.Params {
		pp := p.Payload.(ir.ParamPayload)
		fctx.bindName(p, sanitizeIdent(pp.Name))
	}
	fctx.discoverLabels(fp.Body)

	out.WriteString(" {\n")
	if err := fctx.emitLocalDecls(); err != nil {
		return err
	}
	if err := fctx.emitChain(fp.Body, 1, mergeCtx{}); err != nil {
		return err
	}
	for _, bb := range fctx.labelOrder {
		if fctx.done[bb] {
			continue
		}
		fctx.done[bb] = true
		fmt.Fprintf(out, "%s:;\n", fctx.labels[bb])
		bp := bb.Payload.(*ir.BasicBlockPayload)
		if bp.Body == nil {
			continue
		}
		if err := fctx.emitChain(bp.Body, 1, mergeCtx{}); err != nil {
			return err
		}
	}
	out.WriteString("}\n\n")
	return nil
}
