package nodle

// NodeData is the tagged-union value type shared by parameter values and
// port payloads (spec.md §3). Scalars are cheap to copy; large opaque
// payloads (Scene, Material, Image, Any) use shared ownership via the
// pointer/interface fields so cloning stays cheap.
type NodeData struct {
	Type DataType

	Float   float64
	Integer int64
	Boolean bool
	String  string
	Vector3 [3]float64
	Color   Color

	// Opaque holds Scene/Material/Light/Image/Any payloads. The concrete
	// type is plugin-defined; the core never inspects it.
	Opaque any
}

// Float64 constructs a Float NodeData.
func Float64(v float64) NodeData { return NodeData{Type: TypeFloat, Float: v} }

// Int64 constructs an Integer NodeData.
func Int64(v int64) NodeData { return NodeData{Type: TypeInteger, Integer: v} }

// Bool constructs a Boolean NodeData.
func Bool(v bool) NodeData { return NodeData{Type: TypeBoolean, Boolean: v} }

// Str constructs a String NodeData.
func Str(v string) NodeData { return NodeData{Type: TypeString, String: v} }

// Vec3 constructs a Vector3 NodeData.
func Vec3(x, y, z float64) NodeData { return NodeData{Type: TypeVector3, Vector3: [3]float64{x, y, z}} }

// Col constructs a Color NodeData.
func Col(c Color) NodeData { return NodeData{Type: TypeColor, Color: c} }

// MakeOpaque constructs an opaque-payload NodeData (Scene, Material, Light,
// Image, or Any) carrying an arbitrary plugin-defined value.
func MakeOpaque(t DataType, v any) NodeData { return NodeData{Type: t, Opaque: v} }
