package annotations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/contractscan/internal/models"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	schema, ok := reg.Lookup("PostMapping")
	require.True(t, ok)
	assert.Equal(t, MappingKind, schema.Kind)
	assert.Equal(t, "POST", schema.HTTPMethod)

	schema, ok = reg.Lookup("RequestBody")
	require.True(t, ok)
	assert.Equal(t, models.BindingRequestBody, schema.Binding)

	assert.True(t, reg.IsKind("NotBlank", ValidationKind))
	assert.True(t, reg.IsKind("RestController", StereotypeKind))
	assert.False(t, reg.IsKind("Valid", ValidationKind))

	assert.Len(t, reg.ListNames(), len(BuiltinSchemas))
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register(AnnotationSchema{Name: "Positive", Kind: ValidationKind}))
	assert.Error(t, reg.Register(AnnotationSchema{Name: "Positive", Kind: ValidationKind}), "duplicate")
	assert.Error(t, reg.Register(AnnotationSchema{Kind: ValidationKind}), "missing name")
	assert.Error(t, reg.Register(AnnotationSchema{Name: "X"}), "missing kind")
	assert.Error(t, reg.Register(AnnotationSchema{Name: "MatrixVariable", Kind: BindingKind}), "missing binding")

	assert.Equal(t, []string{"Positive"}, reg.ListNames())
}

func TestMappingSchemasOrder(t *testing.T) {
	var names []string
	for _, s := range MappingSchemas {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"GetMapping", "PostMapping", "PutMapping", "DeleteMapping", "PatchMapping", "RequestMapping"}, names)
}
