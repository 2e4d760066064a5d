package annotations

import "github.com/toyz/contractscan/internal/models"

// Built-in annotation schemas

var (
	RestControllerSchema = AnnotationSchema{
		Name:        "RestController",
		Kind:        StereotypeKind,
		Description: "Marks a class whose handler methods write response bodies",
	}
	ControllerSchema = AnnotationSchema{
		Name:        "Controller",
		Kind:        StereotypeKind,
		Description: "Marks a class as a web controller",
	}

	GetMappingSchema    = mapping("GetMapping", "GET")
	PostMappingSchema   = mapping("PostMapping", "POST")
	PutMappingSchema    = mapping("PutMapping", "PUT")
	DeleteMappingSchema = mapping("DeleteMapping", "DELETE")
	PatchMappingSchema  = mapping("PatchMapping", "PATCH")

	RequestMappingSchema = AnnotationSchema{
		Name:        "RequestMapping",
		Kind:        MappingKind,
		HTTPMethod:  "GET",
		Description: "Maps a class base path, or a handler whose verb comes from method=",
	}

	PathVariableSchema  = binding(models.BindingPathVariable, "Binds a URI template variable")
	RequestParamSchema  = binding(models.BindingRequestParam, "Binds a query or form parameter")
	RequestBodySchema   = binding(models.BindingRequestBody, "Binds the request body")
	RequestHeaderSchema = binding(models.BindingRequestHeader, "Binds a request header")
	CookieValueSchema   = binding(models.BindingCookieValue, "Binds a cookie")

	NotNullSchema  = validation("NotNull")
	NotBlankSchema = validation("NotBlank")
	NotEmptySchema = validation("NotEmpty")
)

// MappingSchemas lists handler mappings in the order the line scanner checks them
var MappingSchemas = []AnnotationSchema{
	GetMappingSchema,
	PostMappingSchema,
	PutMappingSchema,
	DeleteMappingSchema,
	PatchMappingSchema,
	RequestMappingSchema,
}

// BuiltinSchemas lists every schema registered in the default registry
var BuiltinSchemas = []AnnotationSchema{
	RestControllerSchema,
	ControllerSchema,
	GetMappingSchema,
	PostMappingSchema,
	PutMappingSchema,
	DeleteMappingSchema,
	PatchMappingSchema,
	RequestMappingSchema,
	PathVariableSchema,
	RequestParamSchema,
	RequestBodySchema,
	RequestHeaderSchema,
	CookieValueSchema,
	NotNullSchema,
	NotBlankSchema,
	NotEmptySchema,
}

func mapping(name, method string) AnnotationSchema {
	return AnnotationSchema{
		Name:        name,
		Kind:        MappingKind,
		HTTPMethod:  method,
		Description: "Maps " + method + " requests to a handler method",
	}
}

func binding(b models.BindingAnnotation, description string) AnnotationSchema {
	return AnnotationSchema{
		Name:        string(b),
		Kind:        BindingKind,
		Binding:     b,
		Description: description,
	}
}

func validation(name string) AnnotationSchema {
	return AnnotationSchema{
		Name:        name,
		Kind:        ValidationKind,
		Description: "Marks a DTO field as required",
	}
}
