package marshal

import "github.com/tsawler/go-clhost/host"

// ArgKind is the shape an argument position expects.
type ArgKind int

const (
	String ArgKind = iota
	OpaqueHandleRef
	Callback
	Number
	ArrayLike
	BufferLike
	Flag // a boolean, or a number read as one
	Any  // shape depends on another argument
)

func (k ArgKind) String() string {
	switch k {
	case String:
		return "String"
	case OpaqueHandleRef:
		return "OpaqueHandleRef"
	case Callback:
		return "Callback"
	case Number:
		return "Number"
	case ArrayLike:
		return "ArrayLike"
	case BufferLike:
		return "BufferLike"
	case Flag:
		return "Flag"
	case Any:
		return "Any"
	default:
		return "Unknown"
	}
}

func (k ArgKind) phrase() string {
	switch k {
	case String:
		return "a string"
	case OpaqueHandleRef:
		return "an opaque handle"
	case Callback:
		return "a function"
	case Number:
		return "a number"
	case ArrayLike:
		return "an array"
	case BufferLike:
		return "a buffer"
	case Flag:
		return "a boolean"
	case Any:
		return "a value"
	default:
		return "valid"
	}
}

// matches is the runtime test for each kind. Handles are checked for shape
// only; their tag is resolved later by Unwrap.
func (k ArgKind) matches(v host.Value) bool {
	switch k {
	case String:
		return v.Tag == host.TStr
	case OpaqueHandleRef:
		return IsBoxed(v)
	case Callback:
		_, ok := v.AsFunc()
		return ok
	case Number:
		return v.IsNumber()
	case ArrayLike:
		return v.Tag == host.TArray
	case BufferLike:
		_, ok := v.AsBuffer()
		return ok
	case Flag:
		return v.Tag == host.TBool || v.IsNumber()
	case Any:
		return true
	}
	return false
}

// CheckArity fails iff fewer than min arguments were passed.
func CheckArity(args []host.Value, min int) error {
	if len(args) < min {
		return &ArityError{Expected: min, Actual: len(args)}
	}
	return nil
}

// CheckKind verifies the argument at index has the expected shape. A missing
// argument fails like a mismatched one.
func CheckKind(args []host.Value, index int, kind ArgKind) error {
	if index >= len(args) {
		return &KindError{Index: index, Expected: kind, Actual: "missing"}
	}
	if !kind.matches(args[index]) {
		return &KindError{Index: index, Expected: kind, Actual: args[index].TypeName()}
	}
	return nil
}

// Param describes one argument position of an operation.
type Param struct {
	Index    int
	Kind     ArgKind
	Required bool
	Nullable bool // required position that may hold null
}

// Req declares a required argument.
func Req(index int, kind ArgKind) Param { return Param{Index: index, Kind: kind, Required: true} }

// Opt declares an optional argument; absent or null values skip the check.
func Opt(index int, kind ArgKind) Param { return Param{Index: index, Kind: kind} }

// Nullable declares a required position that accepts null in place of kind.
func Nullable(index int, kind ArgKind) Param {
	return Param{Index: index, Kind: kind, Required: true, Nullable: true}
}

// Signature is the ordered argument descriptor list of an operation.
type Signature []Param

// Required counts the required parameters.
func (s Signature) Required() int {
	n := 0
	for _, p := range s {
		if p.Required {
			n++
		}
	}
	return n
}

// Check runs the arity check and then every kind check in declaration order,
// stopping at the first failure.
func (s Signature) Check(args []host.Value) error {
	if err := CheckArity(args, s.Required()); err != nil {
		return err
	}
	for _, p := range s {
		if !p.Required && (p.Index >= len(args) || args[p.Index].IsNull()) {
			continue
		}
		if p.Nullable && p.Index < len(args) && args[p.Index].IsNull() {
			continue
		}
		if err := CheckKind(args, p.Index, p.Kind); err != nil {
			return err
		}
	}
	return nil
}
