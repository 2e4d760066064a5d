package models

// BindingAnnotation is the closed set of parameter-binding annotations that
// produce client-supplied contract parameters.
type BindingAnnotation string

const (
	BindingPathVariable  BindingAnnotation = "PathVariable"
	BindingRequestParam  BindingAnnotation = "RequestParam"
	BindingRequestBody   BindingAnnotation = "RequestBody"
	BindingRequestHeader BindingAnnotation = "RequestHeader"
	BindingCookieValue   BindingAnnotation = "CookieValue"
)

// BindingAnnotations lists the recognized bindings in classification order.
var BindingAnnotations = []BindingAnnotation{
	BindingPathVariable,
	BindingRequestParam,
	BindingRequestBody,
	BindingRequestHeader,
	BindingCookieValue,
}

// ParseBindingAnnotation maps an annotation name (without '@') to a binding.
func ParseBindingAnnotation(name string) (BindingAnnotation, bool) {
	for _, b := range BindingAnnotations {
		if string(b) == name {
			return b, true
		}
	}
	return "", false
}

// SourceType records the provenance of an extracted contract
type SourceType string

const (
	SourceTypeAnnotation SourceType = "annotation"
)

// AnnotationConfidence is the fixed confidence assigned to annotation-based extraction.
const AnnotationConfidence = 0.8

// ParseStrategy records which parsing path produced a ControllerInfo
type ParseStrategy int

const (
	StrategyStructural ParseStrategy = iota
	StrategyHeuristic
)

// String returns the string representation of the strategy
func (s ParseStrategy) String() string {
	switch s {
	case StrategyStructural:
		return "structural"
	case StrategyHeuristic:
		return "heuristic"
	default:
		return "unknown"
	}
}

// VoidType is the return type marker for methods without a payload.
const VoidType = "void"
