package nodle

// DataType is a closed set of port/parameter type tags, plus an escape
// "Any" tag that is assignable to and from every other tag (spec.md §3).
type DataType uint8

const (
	TypeFloat DataType = iota
	TypeInteger
	TypeBoolean
	TypeVector3
	TypeColor
	TypeString
	TypeScene
	TypeMaterial
	TypeLight
	TypeImage
	TypeAny // escape tag: defers type checks to the producer
)

func (t DataType) String() string {
	switch t {
	case TypeFloat:
		return "Float"
	case TypeInteger:
		return "Integer"
	case TypeBoolean:
		return "Boolean"
	case TypeVector3:
		return "Vector3"
	case TypeColor:
		return "Color"
	case TypeString:
		return "String"
	case TypeScene:
		return "Scene"
	case TypeMaterial:
		return "Material"
	case TypeLight:
		return "Light"
	case TypeImage:
		return "Image"
	case TypeAny:
		return "Any"
	default:
		return "Unknown"
	}
}

// AssignableTo reports whether a value of type t can be connected to a port
// declared as want. Any is assignable to and from anything; otherwise the
// tags must be equal (spec.md §3).
func (t DataType) AssignableTo(want DataType) bool {
	if t == TypeAny || want == TypeAny {
		return true
	}
	return t == want
}
