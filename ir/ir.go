package ir

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderKind identifies what kind of shader a parsed module describes.
type ShaderKind uint8

const (
	// KindResource is a module with resource declarations but no entry point.
	KindResource ShaderKind = iota

	// KindCompute is a module with a @compute entry point.
	KindCompute

	// KindFragment is a module with a @fragment entry point.
	KindFragment
)

// String returns the string representation of the shader kind.
func (k ShaderKind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindCompute:
		return "compute"
	case KindFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// Wildcard is a named numeric vector substituted into decorator expressions
// at parse time. Wildcards are owned and mutated by the caller; this package
// only reads Value, and only during a parse call.
type Wildcard struct {
	Name  string
	Value []float64 // 1 to 4 components
}

// ResourceType identifies the concrete variant of a Resource.
type ResourceType uint8

const (
	ResourceTexture ResourceType = iota
	ResourceBuffer
	ResourceUniform
	ResourceSampler
	ResourceReference
)

// String returns the string representation of the resource type.
func (t ResourceType) String() string {
	switch t {
	case ResourceTexture:
		return "texture"
	case ResourceBuffer:
		return "buffer"
	case ResourceUniform:
		return "uniform"
	case ResourceSampler:
		return "sampler"
	case ResourceReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Access is a storage access qualifier.
type Access uint8

const (
	AccessUndefined Access = iota
	AccessRead
	AccessReadWrite
)

// String returns the WGSL spelling of the access qualifier.
func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessReadWrite:
		return "read_write"
	default:
		return ""
	}
}

// Common holds the fields shared by every resource variant.
type Common struct {
	// Name is the shader-side variable identifier.
	Name string

	// Group is the bind group index. Defaults to 0 when not declared.
	Group int

	// Binding is the binding slot within the group. -1 until assigned
	// by the binding allocator.
	Binding int

	// DeclarationIndex is the position of the declaration in source order.
	// It counts every recognized declaration, including ones later dropped
	// for validation errors, so it is stable across re-parses of unchanged
	// declarations.
	DeclarationIndex int

	// UsedInBody reports whether the identifier appears as a whole word
	// inside any function body.
	UsedInBody bool

	// Wildcards holds the names of all wildcards referenced by this
	// declaration's expressions.
	Wildcards map[string]struct{}
}

// Base returns the common fields. It exists so that the Resource interface
// can expose them without per-variant accessors.
func (c *Common) Base() *Common { return c }

// Resource is one parsed GPU-binding declaration. The concrete variants are
// Texture, Buffer, Uniform, Sampler and Reference. The interface is sealed:
// only this package's types implement equalConfig.
type Resource interface {
	// Type returns the concrete variant tag.
	Type() ResourceType

	// Base returns the fields shared by all variants.
	Base() *Common

	// equalConfig reports whether the other resource is configured
	// identically, ignoring Binding, DeclarationIndex and the wildcard
	// name set. Used by the diff engine to distinguish reorders from
	// recreations.
	equalConfig(other Resource) bool
}

// Texture is a texture declaration with a concrete size and format.
type Texture struct {
	Common

	// Size has 1 to 3 resolved dimensions, each a positive integer.
	Size []int

	// Format is the validated texel format.
	Format wgpu.TextureFormat

	// TextureType is the WGSL type name, e.g. "texture_storage_2d".
	TextureType string
}

func (t *Texture) Type() ResourceType { return ResourceTexture }

func (t *Texture) equalConfig(other Resource) bool {
	o, ok := other.(*Texture)
	if !ok {
		return false
	}
	if len(t.Size) != len(o.Size) {
		return false
	}
	for i := range t.Size {
		if t.Size[i] != o.Size[i] {
			return false
		}
	}
	return t.Name == o.Name && t.Group == o.Group &&
		t.UsedInBody == o.UsedInBody &&
		t.Format == o.Format && t.TextureType == o.TextureType
}

// Buffer is a storage buffer declaration.
type Buffer struct {
	Common

	// ElementCount is the resolved @size value.
	ElementCount int

	// ElementType is the WGSL element type: the T of array<T>, or the
	// name of the backing struct.
	ElementType string

	// Access is read or read_write.
	Access Access

	// Stride is the resolved @stride value, or 0 when not declared.
	Stride int
}

func (b *Buffer) Type() ResourceType { return ResourceBuffer }

func (b *Buffer) equalConfig(other Resource) bool {
	o, ok := other.(*Buffer)
	if !ok {
		return false
	}
	return b.Name == o.Name && b.Group == o.Group &&
		b.UsedInBody == o.UsedInBody &&
		b.ElementCount == o.ElementCount && b.ElementType == o.ElementType &&
		b.Access == o.Access && b.Stride == o.Stride
}

// UniformField is one struct field with its resolved default value.
type UniformField struct {
	Name   string
	Values []float64
}

// Uniform is a uniform declaration backed by a struct declared in source.
type Uniform struct {
	Common

	// StructType is the name of the backing struct.
	StructType string

	// Fields holds every struct field, in declaration order, with the
	// resolved default values from its matching sub-decorator.
	Fields []UniformField

	// ByteSize is the total size of the struct in bytes.
	ByteSize int
}

func (u *Uniform) Type() ResourceType { return ResourceUniform }

func (u *Uniform) equalConfig(other Resource) bool {
	o, ok := other.(*Uniform)
	if !ok {
		return false
	}
	if u.Name != o.Name || u.Group != o.Group ||
		u.UsedInBody != o.UsedInBody ||
		u.StructType != o.StructType || u.ByteSize != o.ByteSize ||
		len(u.Fields) != len(o.Fields) {
		return false
	}
	for i := range u.Fields {
		if u.Fields[i].Name != o.Fields[i].Name {
			return false
		}
		if len(u.Fields[i].Values) != len(o.Fields[i].Values) {
			return false
		}
		for j := range u.Fields[i].Values {
			if u.Fields[i].Values[j] != o.Fields[i].Values[j] {
				return false
			}
		}
	}
	return true
}

// Sampler is a sampler declaration. Every parameter is independently
// optional; nil means the downstream default applies.
type Sampler struct {
	Common

	AddressModeU  *wgpu.AddressMode
	AddressModeV  *wgpu.AddressMode
	AddressModeW  *wgpu.AddressMode
	MagFilter     *wgpu.FilterMode
	MinFilter     *wgpu.FilterMode
	MipmapFilter  *wgpu.FilterMode
	LodMinClamp   *float64
	LodMaxClamp   *float64
	Compare       *wgpu.CompareFunction
	MaxAnisotropy *int
}

func (s *Sampler) Type() ResourceType { return ResourceSampler }

func (s *Sampler) equalConfig(other Resource) bool {
	o, ok := other.(*Sampler)
	if !ok {
		return false
	}
	return s.Name == o.Name && s.Group == o.Group &&
		s.UsedInBody == o.UsedInBody &&
		ptrEqual(s.AddressModeU, o.AddressModeU) &&
		ptrEqual(s.AddressModeV, o.AddressModeV) &&
		ptrEqual(s.AddressModeW, o.AddressModeW) &&
		ptrEqual(s.MagFilter, o.MagFilter) &&
		ptrEqual(s.MinFilter, o.MinFilter) &&
		ptrEqual(s.MipmapFilter, o.MipmapFilter) &&
		ptrEqual(s.LodMinClamp, o.LodMinClamp) &&
		ptrEqual(s.LodMaxClamp, o.LodMaxClamp) &&
		ptrEqual(s.Compare, o.Compare) &&
		ptrEqual(s.MaxAnisotropy, o.MaxAnisotropy)
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ReferenceCategory classifies what kind of live resource a Reference
// binds to, derived from the local WGSL declaration form.
type ReferenceCategory uint8

const (
	CategoryTexture ReferenceCategory = iota
	CategoryStorage
	CategoryUniform
	CategorySampler
)

// String returns the string representation of the reference category.
func (c ReferenceCategory) String() string {
	switch c {
	case CategoryTexture:
		return "texture"
	case CategoryStorage:
		return "storage"
	case CategoryUniform:
		return "uniform"
	case CategorySampler:
		return "sampler"
	default:
		return "unknown"
	}
}

// Reference binds a variable to a resource owned by another node. It never
// allocates a GPU object itself; resolution against the live resource is
// deferred to composition.
type Reference struct {
	Common

	// TargetNode and TargetResource name the owning node and its resource.
	TargetNode     string
	TargetResource string

	// WgslType is the local declaration's type text.
	WgslType string

	// Category is derived from the local declaration form.
	Category ReferenceCategory

	// Access is set for storage references, AccessUndefined otherwise.
	Access Access
}

func (r *Reference) Type() ResourceType { return ResourceReference }

func (r *Reference) equalConfig(other Resource) bool {
	o, ok := other.(*Reference)
	if !ok {
		return false
	}
	return r.Name == o.Name && r.Group == o.Group &&
		r.UsedInBody == o.UsedInBody &&
		r.TargetNode == o.TargetNode && r.TargetResource == o.TargetResource &&
		r.WgslType == o.WgslType && r.Category == o.Category &&
		r.Access == o.Access
}

// ComputeMetadata is the kind metadata for compute shaders.
type ComputeMetadata struct {
	// Dimensionality is 1, 2 or 3, from the @compute argument count.
	Dimensionality int

	// WorkgroupSize is the injected @workgroup_size value.
	WorkgroupSize [3]int

	// ThreadCount is the total threads to dispatch per dimension.
	ThreadCount [3]int
}

// FragmentMetadata is the kind metadata for fragment shaders.
type FragmentMetadata struct {
	// TargetView names the node.resource render target, empty for canvas.
	TargetView string

	// ResolveTarget names an optional node.resource resolve target.
	ResolveTarget string

	// IsCanvas reports whether the shader renders to the canvas.
	IsCanvas bool

	// CanvasSize is the viewport size at parse time, canvas targets only.
	CanvasSize [2]int
}

// ShaderMetadata is the result of one parse call: the shader kind, its
// kind-specific metadata, every surviving resource declaration, and the
// transformed WGSL output. Values are produced fresh per parse and must be
// treated as immutable afterwards.
type ShaderMetadata struct {
	Kind ShaderKind

	// Compute is set when Kind is KindCompute.
	Compute *ComputeMetadata

	// Fragment is set when Kind is KindFragment.
	Fragment *FragmentMetadata

	// Resources is sorted by (group asc, binding asc) after allocation.
	// This order, not declaration order, is authoritative downstream.
	Resources []Resource

	// Code is the transformed WGSL output.
	Code string
}

// Resource returns the resource with the given name, or nil.
func (m *ShaderMetadata) Resource(name string) Resource {
	for _, r := range m.Resources {
		if r.Base().Name == name {
			return r
		}
	}
	return nil
}
