package parser

const (
	// Controller markers checked before any parsing
	MarkerRestController = "@RestController"
	MarkerController     = "@Controller"

	// SignatureWindow is how many lines after a mapping annotation are
	// searched for the method declaration
	SignatureWindow = 20

	// ClassLevelWindow is how many lines, the annotation line included, are
	// searched for a class declaration to decide a RequestMapping is class-level
	ClassLevelWindow = 5

	// Annotation parameter names
	ParamRequired     = "required"
	ParamDefaultValue = "defaultValue"
	ParamName         = "name"
	ParamValue        = "value"
)

// visibilityModifiers mark the line that starts a method declaration
var visibilityModifiers = []string{"public", "protected", "private"}

// declarationModifiers may sit between the visibility modifier and the return type
var declarationModifiers = map[string]bool{
	"static":       true,
	"final":        true,
	"synchronized": true,
	"abstract":     true,
	"default":      true,
	"native":       true,
	"strictfp":     true,
}
