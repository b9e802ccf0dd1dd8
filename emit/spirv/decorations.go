package spirv

import (
	"fmt"

	"github.com/TheJackiMonster/shady/ir"
)

// annotationString returns an's single Value node's string payload, the
// shape AnnoBuiltin carries (the builtin's name, looked up in builtinNames).
func annotationString(an ir.Annotation) (string, bool) {
	if an.Value == nil {
		return "", false
	}
	sp, ok := an.Value.Payload.(ir.StringLiteralPayload)
	if !ok {
		return "", false
	}
	return sp.Value, true
}

// annotationInt returns an's single Value node's integer payload, the shape
// AnnoLocation/AnnoDescriptorSet/AnnoDescriptorBinding carry.
func annotationInt(an ir.Annotation) (uint32, bool) {
	if an.Value == nil {
		return 0, false
	}
	ip, ok := an.Value.Payload.(ir.IntLiteralPayload)
	if !ok {
		return 0, false
	}
	return uint32(ip.Value), true
}

// annotationInts returns an's Values list as literal uint32s, the shape
// AnnoWorkgroupSize carries (three dimensions).
func annotationInts(an ir.Annotation) ([]uint32, bool) {
	out := make([]uint32, len(an.Values))
	for i, v := range an.Values {
		ip, ok := v.Payload.(ir.IntLiteralPayload)
		if !ok {
			return nil, false
		}
		out[i] = uint32(ip.Value)
	}
	return out, true
}

// decorateFromAnnotations emits OpName plus whatever OpDecorate instructions
// annotations calls for against id, the debug-name and interface-binding
// information a global variable or entry point carries across from the
// frontend's annotation list. WorkgroupSize and EntryPoint are handled by
// the caller directly since they need the owning function's id, not a
// value id.
func (be *Backend) decorateFromAnnotations(id uint32, name string, annotations []ir.Annotation) error {
	if name != "" {
		be.builder.AddName(id, name)
	}
	for _, an := range annotations {
		switch an.Name {
		case ir.AnnoBuiltin:
			builtinName, ok := annotationString(an)
			if !ok {
				return fmt.Errorf("emit/spirv: Builtin annotation on %s missing its name", name)
			}
			lit, ok := builtinNames[builtinName]
			if !ok {
				return fmt.Errorf("emit/spirv: unrecognized builtin %q on %s", builtinName, name)
			}
			be.builder.AddDecorate(id, DecorationBuiltIn, lit)
		case ir.AnnoLocation:
			lit, ok := annotationInt(an)
			if !ok {
				return fmt.Errorf("emit/spirv: Location annotation on %s missing its value", name)
			}
			be.builder.AddDecorate(id, DecorationLocation, lit)
		case ir.AnnoDescriptorSet:
			lit, ok := annotationInt(an)
			if !ok {
				return fmt.Errorf("emit/spirv: DescriptorSet annotation on %s missing its value", name)
			}
			be.builder.AddDecorate(id, DecorationDescriptorSet, lit)
		case ir.AnnoDescriptorBinding:
			lit, ok := annotationInt(an)
			if !ok {
				return fmt.Errorf("emit/spirv: DescriptorBinding annotation on %s missing its value", name)
			}
			be.builder.AddDecorate(id, DecorationBinding, lit)
		case ir.AnnoIO:
			// Marks intent only; the global's StorageClass already encodes
			// Input/Output/UniformConstant, so there's no decoration to add.
		}
	}
	return nil
}
