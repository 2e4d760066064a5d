package models

// ControllerInfo represents one endpoint group found in a source file
type ControllerInfo struct {
	ClassName   string                 // declared class name
	PackageName string                 // declared package, empty for the default package
	BasePath    string                 // class-level route, empty when absent
	Methods     []ControllerMethodInfo // endpoint methods in declaration order
	FilePath    string                 // absolute path of the source file
	Imports     []string               // imported names, e.g. "com.example.dto.UserDto" or "com.example.dto.*"
	Strategy    ParseStrategy          // which parsing path produced this value
}

// ControllerMethodInfo represents one HTTP endpoint method before assembly
type ControllerMethodInfo struct {
	Name       string                // Java method name
	HTTPMethod string                // GET, POST, PUT, DELETE or PATCH
	Path       string                // method-level path, empty means "base path only"
	Parameters []MethodParameterInfo // bound parameters in signature order
	ReturnType string                // declared return type, VoidType when absent
	LineNumber int                   // 1-based line of the method signature
}

// MethodParameterInfo represents one annotated parameter of an endpoint method
type MethodParameterInfo struct {
	Name         string            // parameter identifier
	Type         string            // declared type including generics
	Annotation   BindingAnnotation // binding source
	Required     bool              // whether the client must supply it
	DefaultValue string            // RequestParam defaultValue, if any
	BindingName  string            // explicit name from the annotation, if any
}

// Key returns the name the parameter is bound under at request time: the
// explicit annotation name when one is given, otherwise the identifier. This
// holds for every binding, so @RequestParam("q") String query, and likewise
// @RequestHeader and @CookieValue with a name, are keyed "q" and not "query".
func (p MethodParameterInfo) Key() string {
	if p.BindingName != "" {
		return p.BindingName
	}
	return p.Name
}
