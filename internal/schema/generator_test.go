package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/contractscan/internal/annotations"
	"github.com/toyz/contractscan/internal/models"
)

func writeSource(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const createUserDto = `package com.example.users.dto;

import jakarta.validation.constraints.NotBlank;

public class CreateUserDto {
    private static final long serialVersionUID = 1L;

    private Long id;

    @NotBlank
    private String name;

    public Long getId() {
        return id;
    }

    public String getName() {
        String local = "private String ignored;";
        return name;
    }
}
`

func TestGenerateSchema_RoundTrip(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "src/main/java/com/example/users/dto/CreateUserDto.java", createUserDto)

	g := NewGenerator(nil, GeneratorOptions{}, nil)
	schema, ok := g.GenerateSchema("CreateUserDto", root, "com.example.users.dto")
	require.True(t, ok)

	assert.Equal(t, &models.Schema{
		Type: TypeObject,
		Properties: map[string]*models.Schema{
			"id":   {Type: TypeInteger},
			"name": {Type: TypeString},
		},
		Required: []string{"name"},
	}, schema)
}

func TestGenerateSchema_PackageScoping(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "a/ItemDto.java", "package com.a;\n\npublic class ItemDto {\n    private String a;\n}\n")
	writeSource(t, root, "b/ItemDto.java", "package com.b;\n\npublic class ItemDto {\n    private int b;\n}\n")

	g := NewGenerator(nil, GeneratorOptions{}, nil)

	schema, ok := g.GenerateSchema("ItemDto", root, "com.b")
	require.True(t, ok)
	assert.Contains(t, schema.Properties, "b")

	schema, ok = g.GenerateSchema("ItemDto", root, "")
	require.True(t, ok)
	assert.Contains(t, schema.Properties, "a", "first match in scanner order wins")

	schema, ok = g.GenerateSchema("com.b.ItemDto", root, "com.a")
	require.True(t, ok)
	assert.Contains(t, schema.Properties, "b", "qualified names carry their package")

	_, ok = g.GenerateSchema("ItemDto", root, "com.c")
	assert.False(t, ok)
}

func TestGenerateSchema_NotFound(t *testing.T) {
	root := t.TempDir()
	writeSource(t, root, "A.java", "package x;\n\npublic class A {}\n")

	g := NewGenerator(nil, GeneratorOptions{}, nil)

	_, ok := g.GenerateSchema("MissingDto", root, "")
	assert.False(t, ok)
	_, ok = g.GenerateSchema("List<String>", root, "")
	assert.False(t, ok)
}

func TestGenerateSchema_CacheFollowsFileChanges(t *testing.T) {
	root := t.TempDir()
	path := writeSource(t, root, "OrderDto.java", "package x;\n\npublic class OrderDto {\n    private Long id;\n}\n")

	g := NewGenerator(nil, GeneratorOptions{CacheSize: 8}, nil)
	schema, ok := g.GenerateSchema("OrderDto", root, "x")
	require.True(t, ok)
	assert.Len(t, schema.Properties, 1)

	require.NoError(t, os.WriteFile(path, []byte("package x;\n\npublic class OrderDto {\n    private Long id;\n    @NotNull\n    private LocalDate placedOn;\n}\n"), 0644))
	g.reader.InvalidateFile(path)

	schema, ok = g.GenerateSchema("OrderDto", root, "x")
	require.True(t, ok)
	assert.Equal(t, &models.Schema{Type: TypeString, Format: FormatDate}, schema.Properties["placedOn"])
	assert.Equal(t, []string{"placedOn"}, schema.Required)
}

func TestExtractDtoInfo(t *testing.T) {
	registry := annotations.DefaultRegistry()

	t.Run("record components", func(t *testing.T) {
		src := "package r;\n\npublic record PointDto(\n    @NotNull Integer x,\n    int y,\n    List<String> tags) {\n    public static final int ORIGIN = 0;\n}\n"
		info, ok := ExtractDtoInfo(src, "PointDto.java", "PointDto", registry)
		require.True(t, ok)
		assert.Equal(t, "r", info.PackageName)
		require.Len(t, info.Fields, 3)
		assert.Equal(t, models.DtoFieldInfo{Name: "x", Type: "Integer", Required: true, Annotations: []string{"NotNull"}, Line: 4}, info.Fields[0])
		assert.Equal(t, "y", info.Fields[1].Name)
		assert.False(t, info.Fields[1].Required)
		assert.Equal(t, "List<String>", info.Fields[2].Type)
	})

	t.Run("annotations stay with their field", func(t *testing.T) {
		src := `package f;

public class AccountDto {
    @Email
    @NotEmpty
    private String email;
    private Map<String, List<Long>> limits;
    protected final boolean active = true;
    private transient String cache;
    public static class Nested {
        private String hidden;
    }
}
`
		info, ok := ExtractDtoInfo(src, "AccountDto.java", "AccountDto", registry)
		require.True(t, ok)

		var names []string
		for _, f := range info.Fields {
			names = append(names, f.Name)
		}
		assert.Equal(t, []string{"email", "limits", "active", "cache"}, names)

		assert.Equal(t, []string{"Email", "NotEmpty"}, info.Fields[0].Annotations)
		assert.True(t, info.Fields[0].Required)
		assert.Equal(t, 6, info.Fields[0].Line)
		assert.Empty(t, info.Fields[1].Annotations)
		assert.False(t, info.Fields[1].Required)
		assert.Equal(t, "Map<String,List<Long>>", info.Fields[1].Type)
	})

	t.Run("array arguments inside the window", func(t *testing.T) {
		src := `package f;

public class TicketDto {
    private Long id;
    @NotNull
    @Schema(allowableValues = {"A", "B"})
    private String kind;
    @Pattern(regexp = "[a-z]+",
             flags = {Pattern.Flag.CASE_INSENSITIVE})
    private String code;
    private String note;
}
`
		info, ok := ExtractDtoInfo(src, "TicketDto.java", "TicketDto", registry)
		require.True(t, ok)
		require.Len(t, info.Fields, 4)

		assert.Empty(t, info.Fields[0].Annotations)
		assert.Equal(t, []string{"NotNull", "Schema"}, info.Fields[1].Annotations)
		assert.True(t, info.Fields[1].Required)
		assert.Equal(t, []string{"Pattern"}, info.Fields[2].Annotations)
		assert.Empty(t, info.Fields[3].Annotations)
		assert.False(t, info.Fields[3].Required)
	})

	t.Run("other class in file", func(t *testing.T) {
		_, ok := ExtractDtoInfo("class Other {}", "Other.java", "AccountDto", registry)
		assert.False(t, ok)
	})
}

func TestBuildSchema_OmitsEmptyRequired(t *testing.T) {
	schema := BuildSchema(&models.DtoClassInfo{Fields: []models.DtoFieldInfo{{Name: "when", Type: "Instant"}}})
	assert.Nil(t, schema.Required)
	assert.Equal(t, FormatDateTime, schema.Properties["when"].Format)
}
