package spirv

import (
	"fmt"

	"github.com/TheJackiMonster/shady/arena"
	"github.com/TheJackiMonster/shady/ir"
)

// typeCache memoizes the module-scope type/constant/pointer ids a module
// only needs to define once, the SPIR-V analogue of the hash-consing the
// arena already gives ir.Node: two calls for the same (unqualified) type
// must return the same result id, or the validator rejects the module for
// duplicate OpType declarations of identical shape.
type typeCache struct {
	b        *moduleBuilder
	arena    *arena.Arena
	types    map[*ir.Node]uint32
	pointers map[ptrKey]uint32
}

type ptrKey struct {
	elem uint32
	sc   StorageClass
}

func newTypeCache(b *moduleBuilder, a *arena.Arena) *typeCache {
	return &typeCache{b: b, arena: a, types: map[*ir.Node]uint32{}, pointers: map[ptrKey]uint32{}}
}

// typeID resolves t to its SPIR-V result id, emitting the OpType*
// instruction the first time t is seen. A QualifiedType wrapper is
// unwrapped with ir.Inner first: SPIR-V has no notion of uniform/varying,
// lower_subgroup/lower_mask have already erased it by the time this
// backend runs.
func (c *typeCache) typeID(t *ir.Node) (uint32, error) {
	if ir.KindOf(t) == ir.KindQualifiedType {
		t = ir.Inner(t)
	}
	if id, ok := c.types[t]; ok {
		return id, nil
	}
	id, err := c.buildType(t)
	if err != nil {
		return 0, err
	}
	c.types[t] = id
	return id, nil
}

func (c *typeCache) buildType(t *ir.Node) (uint32, error) {
	switch p := t.Payload.(type) {
	case ir.UnitPayload:
		return c.b.TypeVoid(), nil
	case ir.BoolPayload:
		return c.b.TypeBool(), nil
	case ir.IntPayload:
		return c.b.TypeInt(p.Width, p.Signed), nil
	case ir.FloatPayload:
		return c.b.TypeFloat(p.Width), nil
	case ir.PackTypePayload:
		elem, err := c.typeID(p.Elem)
		if err != nil {
			return 0, err
		}
		return c.b.TypeVector(elem, p.Width), nil
	case ir.ArrTypePayload:
		elem, err := c.typeID(p.Elem)
		if err != nil {
			return 0, err
		}
		if p.Size == nil {
			return c.b.TypeRuntimeArray(elem), nil
		}
		length, ok := p.Size.Payload.(ir.IntLiteralPayload)
		if !ok {
			return 0, fmt.Errorf("emit/spirv: array length must be a constant int literal, got %s", p.Size)
		}
		u32, err := c.typeID(ir.IntType(c.arena, 32, false))
		if err != nil {
			return 0, err
		}
		lengthConst := c.b.Constant(u32, 32, length.Value)
		return c.b.TypeArray(elem, lengthConst), nil
	case ir.RecordTypePayload:
		members := make([]uint32, len(p.Members))
		for i, m := range p.Members {
			id, err := c.typeID(m)
			if err != nil {
				return 0, err
			}
			members[i] = id
		}
		id := c.b.TypeStruct(members)
		if p.Special == ir.RecordDecorateBlock {
			c.b.AddDecorate(id, DecorationBlock)
		}
		for i, name := range p.Names {
			if name != "" {
				c.b.AddMemberName(id, uint32(i), name)
			}
		}
		return id, nil
	case ir.PtrTypePayload:
		pointee, err := c.typeID(p.Pointee)
		if err != nil {
			return 0, err
		}
		sc := storageClass(p.AddressSpace)
		key := ptrKey{elem: pointee, sc: sc}
		if id, ok := c.pointers[key]; ok {
			return id, nil
		}
		id := c.b.TypePointer(sc, pointee)
		c.pointers[key] = id
		return id, nil
	case ir.NominalTypeRefPayload:
		return c.typeID(p.Decl.Payload.(*ir.NominalTypePayload).Body)
	case ir.ImageTypePayload:
		sampled, err := c.typeID(p.SampledType)
		if err != nil {
			return 0, err
		}
		depth, arrayed, ms := uint32(0), uint32(0), uint32(0)
		if p.Depth {
			depth = 1
		}
		if p.Arrayed {
			arrayed = 1
		}
		if p.Multisampled {
			ms = 1
		}
		return c.b.TypeImage(sampled, uint32(p.Dim), depth, arrayed, ms, 1, 0), nil
	case ir.SampledImageTypePayload:
		img, err := c.typeID(p.Image)
		if err != nil {
			return 0, err
		}
		return c.b.TypeSampledImage(img), nil
	case ir.SamplerTypePayload:
		return c.b.TypeSampler(), nil
	case ir.MaskPayload:
		// Masks are lowered away by lower_mask before this backend runs, but
		// a bare uint32 bitmask is a faithful fallback if one ever reaches it.
		return c.b.TypeInt(32, false), nil
	default:
		return 0, fmt.Errorf("emit/spirv: cannot lower type %s to a SPIR-V type", t)
	}
}

// storageClass maps a Shady address space onto the SPIR-V storage class a
// pointer into it must declare, grounded on arena/address_space.go's
// DefaultAddressSpaces table (Uniform/Physical/Allowed bits describe the
// same partitioning this switch encodes explicitly for SPIR-V's literal
// enumerators).
func storageClass(as arena.AddressSpace) StorageClass {
	switch as {
	case arena.Private:
		return StorageClassPrivate
	case arena.Shared:
		return StorageClassWorkgroup
	case arena.Subgroup:
		return StorageClassPrivate
	case arena.Global:
		return StorageClassStorageBuffer
	case arena.Function:
		return StorageClassFunction
	case arena.Input:
		return StorageClassInput
	case arena.Output:
		return StorageClassOutput
	case arena.Uniform:
		return StorageClassUniform
	case arena.UniformConstant:
		return StorageClassUniformConstant
	case arena.PushConstant:
		return StorageClassPushConstant
	default:
		return StorageClassGeneric
	}
}

// constCache memoizes module-scope constant expression ids, mirroring
// typeCache's role for OpConstant*.
type constCache struct {
	b     *moduleBuilder
	tc    *typeCache
	byKey map[*ir.Node]uint32
}

func newConstCache(b *moduleBuilder, tc *typeCache) *constCache {
	return &constCache{b: b, tc: tc, byKey: map[*ir.Node]uint32{}}
}

// constID resolves a compile-time constant value node (the kind of thing
// that can appear as a GlobalVariable initializer or inside a Composite
// literal) to its SPIR-V result id.
func (cc *constCache) constID(n *ir.Node) (uint32, error) {
	if id, ok := cc.byKey[n]; ok {
		return id, nil
	}
	id, err := cc.buildConst(n)
	if err != nil {
		return 0, err
	}
	cc.byKey[n] = id
	return id, nil
}

func (cc *constCache) buildConst(n *ir.Node) (uint32, error) {
	switch p := n.Payload.(type) {
	case ir.IntLiteralPayload:
		t, err := cc.tc.typeID(ir.Inner(n.Type))
		if err != nil {
			return 0, err
		}
		return cc.b.Constant(t, p.Width, p.Value), nil
	case ir.FloatLiteralPayload:
		t, err := cc.tc.typeID(ir.Inner(n.Type))
		if err != nil {
			return 0, err
		}
		return cc.b.Constant(t, p.Width, p.Bits), nil
	case ir.TruePayload:
		t, err := cc.tc.typeID(ir.Inner(n.Type))
		if err != nil {
			return 0, err
		}
		return cc.b.ConstantTrue(t), nil
	case ir.FalsePayload:
		t, err := cc.tc.typeID(ir.Inner(n.Type))
		if err != nil {
			return 0, err
		}
		return cc.b.ConstantFalse(t), nil
	case ir.NullPtrPayload:
		t, err := cc.tc.typeID(p.PtrType)
		if err != nil {
			return 0, err
		}
		return cc.b.ConstantNull(t), nil
	case ir.UndefPayload:
		t, err := cc.tc.typeID(p.Type)
		if err != nil {
			return 0, err
		}
		return cc.b.Undef(t), nil
	case ir.CompositePayload:
		members := make([]uint32, len(p.Contents))
		for i, m := range p.Contents {
			id, err := cc.constID(m)
			if err != nil {
				return 0, err
			}
			members[i] = id
		}
		t, err := cc.tc.typeID(ir.Inner(n.Type))
		if err != nil {
			return 0, err
		}
		return cc.b.ConstantComposite(t, members), nil
	case ir.FillPayload:
		elemID, err := cc.constID(p.Value)
		if err != nil {
			return 0, err
		}
		t, err := cc.tc.typeID(p.Type)
		if err != nil {
			return 0, err
		}
		at, ok := p.Type.Payload.(ir.ArrTypePayload)
		if !ok {
			return 0, fmt.Errorf("emit/spirv: Fill of a non-array type is not a legal module-scope constant")
		}
		length, ok := at.Size.Payload.(ir.IntLiteralPayload)
		if !ok {
			return 0, fmt.Errorf("emit/spirv: Fill with a non-constant array length is not a legal module-scope constant")
		}
		members := make([]uint32, length.Value)
		for i := range members {
			members[i] = elemID
		}
		return cc.b.ConstantComposite(t, members), nil
	default:
		return 0, fmt.Errorf("emit/spirv: %s is not a legal module-scope constant expression", n)
	}
}
