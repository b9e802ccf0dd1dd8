package spirv

import (
	"fmt"

	"github.com/TheJackiMonster/shady/ir"
)

// Options configures Emit the way cfamily.Dialect configures cfamily.Emit:
// everything the backend needs besides the module itself.
type Options struct {
	Version Version
}

// Backend holds the module-wide state shared across every declaration and
// function body: the instruction-word builder, the type/constant caches,
// and a lookup from every nominal declaration to its already-assigned
// result id so forward references (a function calling one declared later,
// or a global referenced from inside any function) resolve without a
// second pass over the declaration list.
type Backend struct {
	builder   *moduleBuilder
	module    *ir.Module
	tc        *typeCache
	cc        *constCache
	declID    map[*ir.Node]uint32
	glslExtID uint32
}

// Emit renders m, which must already have been through the full lowering
// pipeline, as a SPIR-V binary module targeting opt.Version. Declarations
// are emitted in the same grouped order emit/cfamily.Emit uses (types
// implicitly as referenced, then globals, then constants, then function
// bodies), plus a function-id pre-pass so mutually recursive or
// forward-referencing calls resolve on the first pass.
func Emit(m *ir.Module, opt Options) ([]byte, error) {
	b := newModuleBuilder(opt.Version)
	be := &Backend{
		builder: b,
		module:  m,
		declID:  map[*ir.Node]uint32{},
	}
	be.tc = newTypeCache(b, m.Arena)
	be.cc = newConstCache(b, be.tc)

	b.AddCapability(CapabilityShader)
	be.glslExtID = b.AddExtInstImport("GLSL.std.450")
	b.SetMemoryModel(AddressingLogical, MemoryModelGLSL450)

	for _, decl := range m.Decls {
		if ir.KindOf(decl) == ir.KindFunction {
			be.declID[decl] = b.newID()
		}
	}

	var globals []*ir.Node
	for _, decl := range m.Decls {
		if ir.KindOf(decl) != ir.KindGlobalVariable {
			continue
		}
		if _, err := be.emitGlobalVariable(decl); err != nil {
			return nil, err
		}
		globals = append(globals, decl)
	}

	for _, decl := range m.Decls {
		if ir.KindOf(decl) != ir.KindConstant {
			continue
		}
		cp := decl.Payload.(*ir.ConstantPayload)
		if cp.Value == nil {
			continue
		}
		id, err := be.cc.constID(cp.Value)
		if err != nil {
			return nil, fmt.Errorf("emit/spirv: constant %s: %w", cp.Name, err)
		}
		be.declID[decl] = id
		b.AddName(id, cp.Name)
	}

	for _, decl := range m.Decls {
		if ir.KindOf(decl) != ir.KindFunction {
			continue
		}
		fp := decl.Payload.(*ir.FunctionPayload)
		if fp.Body == nil {
			continue
		}
		b.AddName(be.declID[decl], fp.Name)
		if err := be.emitFunction(decl); err != nil {
			return nil, fmt.Errorf("emit/spirv: function %s: %w", fp.Name, err)
		}
		if ir.HasAnnotation(fp.Annotations, ir.AnnoEntryPoint) {
			if err := be.emitEntryPoint(decl, fp, globals); err != nil {
				return nil, err
			}
		}
	}

	return b.Build(), nil
}

func (be *Backend) emitGlobalVariable(decl *ir.Node) (uint32, error) {
	gp := decl.Payload.(*ir.GlobalVariablePayload)
	sc := storageClass(gp.AddressSpace)
	elemType, err := be.tc.typeID(gp.Type)
	if err != nil {
		return 0, fmt.Errorf("emit/spirv: global %s: %w", gp.Name, err)
	}
	ptrType := be.builder.TypePointer(sc, elemType)
	var initID uint32
	if gp.Init != nil {
		initID, err = be.cc.constID(gp.Init)
		if err != nil {
			return 0, fmt.Errorf("emit/spirv: global %s initializer: %w", gp.Name, err)
		}
	}
	id := be.builder.GlobalVariable(ptrType, sc, initID)
	be.declID[decl] = id
	if err := be.decorateFromAnnotations(id, gp.Name, gp.Annotations); err != nil {
		return 0, err
	}
	return id, nil
}

// emitEntryPoint registers fn as a GLCompute entry point. The interface
// list is every module-scope global the kernel can see (Vulkan SPIR-V
// requires every Input/Output/UniformConstant variable an entry point
// touches to be listed, and listing the whole set is always valid, just
// not maximally tight).
func (be *Backend) emitEntryPoint(decl *ir.Node, fp *ir.FunctionPayload, globals []*ir.Node) error {
	interfaces := make([]uint32, 0, len(globals))
	for _, g := range globals {
		interfaces = append(interfaces, be.declID[g])
	}
	be.builder.AddEntryPoint(ExecutionModelGLCompute, be.declID[decl], fp.Name, interfaces)

	wg, ok := ir.FindAnnotation(fp.Annotations, ir.AnnoWorkgroupSize)
	if !ok {
		return nil
	}
	dims, ok := annotationInts(wg)
	if !ok || len(dims) != 3 {
		return fmt.Errorf("emit/spirv: WorkgroupSize annotation on %s must carry 3 dimensions", fp.Name)
	}
	be.builder.AddExecutionMode(be.declID[decl], ExecutionModeLocalSize, dims[0], dims[1], dims[2])
	return nil
}
