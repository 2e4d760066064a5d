package extractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/contractscan/internal/errors"
	"github.com/toyz/contractscan/internal/models"
	"github.com/toyz/contractscan/internal/utils"
)

const usersController = `package com.example.users;

import com.example.users.dto.CreateUserDto;
import com.example.users.dto.UserDto;
import org.springframework.http.ResponseEntity;
import org.springframework.web.bind.annotation.*;

@RestController
@RequestMapping("/api/v1/users")
public class UserController {

    @GetMapping("/{id}")
    public ResponseEntity<UserDto> getUser(@PathVariable Long id) {
        return null;
    }

    @PostMapping
    public ResponseEntity<UserDto> createUser(@RequestBody CreateUserDto request) {
        return null;
    }
}
`

const createUserDto = `package com.example.users.dto;

public class CreateUserDto {
    @NotBlank
    private String name;
    private Integer age;
}
`

const userDto = `package com.example.users.dto;

public class UserDto {
    private Long id;
    @NotNull
    private String name;
    private LocalDateTime createdAt;
}
`

const healthController = `package com.example.ops;

@RestController
public class HealthController {
    @GetMapping
    public String health(@RequestHeader(value = "X-Probe", required = false) String probe,
                         @CookieValue("session") String session,
                         @RequestParam(defaultValue = "false") boolean deep) {
        return "ok";
    }
}
`

// truncated: the grammar rejects it, the heuristic parser recovers one
// method and cannot find a declaration for the other
const truncatedController = `package com.example.orders;

@RestController
@RequestMapping("/orders")
public class OrderController {
    @GetMapping("/{id}")
    public OrderDto get(@PathVariable("id") String orderId) {
        return null;
    }

    @DeleteMapping("/{id}")
`

const unterminatedController = `package com.example.broken;

@RestController
public class BrokenController {
    @GetMapping("/items")
    public List<Item> list(@RequestParam String q,
`

func writeRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func usersRepo(t *testing.T) string {
	return writeRepo(t, map[string]string{
		"src/main/java/com/example/users/UserController.java":    usersController,
		"src/main/java/com/example/users/dto/CreateUserDto.java": createUserDto,
		"src/main/java/com/example/users/dto/UserDto.java":       userDto,
		"src/main/java/com/example/ops/HealthController.java":    healthController,
		"target/classes/com/example/users/UserController.java":   usersController,
		"src/main/resources/application.properties":              "server.port=8080\n",
	})
}

func TestExtractContracts_EndToEnd(t *testing.T) {
	root := usersRepo(t)
	e := New(DefaultOptions(), nil)

	contracts, err := e.ExtractContracts(root)
	require.NoError(t, err)
	require.Len(t, contracts, 3, "target/ is never scanned")

	health := contracts[0]
	assert.Equal(t, "GET", health.HTTPMethod)
	assert.Equal(t, "/", health.Path)
	assert.Equal(t, "GET", health.Name)
	assert.Equal(t, "src/main/java/com/example/ops/HealthController.java", health.SourceFile)
	require.NotNil(t, health.Parameters)
	assert.Equal(t, models.ParameterInfo{Name: "X-Probe", Type: "String", Required: false}, health.Parameters.Header["X-Probe"])
	assert.Equal(t, models.ParameterInfo{Name: "session", Type: "String", Required: true}, health.Parameters.Cookie["session"])
	assert.Equal(t, models.ParameterInfo{Name: "deep", Type: "boolean", Required: true, DefaultValue: "false"}, health.Parameters.Query["deep"])
	assert.Nil(t, health.ResponseSchema, "primitive responses have no schema")

	get := contracts[1]
	assert.Equal(t, "GET", get.HTTPMethod)
	assert.Equal(t, "/api/v1/users/{id}", get.Path)
	assert.Equal(t, "GETapiv1usersid", get.Name)
	assert.Equal(t, "src/main/java/com/example/users/UserController.java", get.SourceFile)
	assert.Equal(t, 13, get.SourceLine)
	assert.Equal(t, models.SourceTypeAnnotation, get.SourceType)
	assert.Equal(t, models.AnnotationConfidence, get.ExtractionConfidence)
	require.NotNil(t, get.Parameters)
	assert.True(t, get.Parameters.Path["id"].Required)
	assert.Nil(t, get.Parameters.Body)
	assert.Nil(t, get.RequestSchema)
	require.NotNil(t, get.ResponseSchema)
	assert.Equal(t, &models.Schema{
		Type: "object",
		Properties: map[string]*models.Schema{
			"id":        {Type: "integer"},
			"name":      {Type: "string"},
			"createdAt": {Type: "string", Format: "date-time"},
		},
		Required: []string{"name"},
	}, get.ResponseSchema)

	post := contracts[2]
	assert.Equal(t, "POST", post.HTTPMethod)
	assert.Equal(t, "/api/v1/users", post.Path)
	require.NotNil(t, post.Parameters)
	require.NotNil(t, post.Parameters.Body)
	assert.Equal(t, "CreateUserDto", post.Parameters.Body.Type)
	assert.True(t, post.Parameters.Body.Required)
	require.NotNil(t, post.RequestSchema)
	assert.Equal(t, []string{"name"}, post.RequestSchema.Required)
	assert.Equal(t, "integer", post.RequestSchema.Properties["age"].Type)
}

func TestRun_Report(t *testing.T) {
	root := usersRepo(t)
	e := New(DefaultOptions(), nil)

	report, err := e.Run(root)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 4, report.FilesScanned)
	assert.Equal(t, 2, report.ControllersFound)
	assert.Equal(t, 0, report.StructuralFallbacks)
	assert.Empty(t, report.FileFailures)
	assert.Empty(t, report.MethodFailures)
	assert.Len(t, report.Contracts, 3)

	again, err := e.Run(root)
	require.NoError(t, err)
	assert.NotEqual(t, report.RunID, again.RunID)
}

func TestExtractContracts_Idempotent(t *testing.T) {
	root := usersRepo(t)
	e := New(DefaultOptions(), nil)

	first, err := e.ExtractContracts(root)
	require.NoError(t, err)
	second, err := e.ExtractContracts(root)
	require.NoError(t, err)

	assert.ElementsMatch(t, first, second)
}

func TestExtractContracts_PartialFailure(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"a/UserController.java":   usersController,
		"b/OrderController.java":  truncatedController,
		"c/BrokenController.java": unterminatedController,
	})

	var mu sync.Mutex
	var records []utils.Record
	diagnostics := utils.NewSilentDiagnostics()
	diagnostics.AddHook(func(r utils.Record) {
		mu.Lock()
		defer mu.Unlock()
		records = append(records, r)
	})

	report, err := New(DefaultOptions(), diagnostics).Run(root)
	require.NoError(t, err)

	var paths []string
	for _, c := range report.Contracts {
		paths = append(paths, c.HTTPMethod+" "+c.Path)
	}
	assert.Equal(t, []string{"GET /api/v1/users/{id}", "POST /api/v1/users", "GET /orders/{id}"}, paths)
	assert.Equal(t, "b/OrderController.java", report.Contracts[2].SourceFile)
	assert.Equal(t, "id", report.Contracts[2].Parameters.Path["id"].Name)

	assert.Equal(t, 2, report.ControllersFound)
	assert.Equal(t, 1, report.StructuralFallbacks)

	require.Len(t, report.FileFailures, 1)
	assert.Equal(t, "c/BrokenController.java", report.FileFailures[0].File)
	assert.Equal(t, 6, report.FileFailures[0].Line)

	require.Len(t, report.MethodFailures, 1)
	assert.Equal(t, "b/OrderController.java", report.MethodFailures[0].File)
	assert.Equal(t, 12, report.MethodFailures[0].Line)

	levels := map[utils.DiagnosticLevel]int{}
	for _, r := range records {
		levels[r.Level]++
		if r.Level == utils.DiagnosticError {
			assert.Equal(t, "c/BrokenController.java", r.Fields["file"])
			assert.Equal(t, 6, r.Fields["line"])
		}
	}
	assert.Equal(t, 1, levels[utils.DiagnosticError])
	assert.Equal(t, 1, levels[utils.DiagnosticWarn])
	assert.GreaterOrEqual(t, levels[utils.DiagnosticDebug], 2, "structural fallbacks are logged at debug")
}

func TestExtractContracts_ParallelMatchesSequential(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 12; i++ {
		name := "Controller" + string(rune('A'+i))
		files["src/"+name+".java"] = strings.ReplaceAll(usersController, "UserController", name)
	}
	files["src/dto/CreateUserDto.java"] = createUserDto
	files["src/dto/UserDto.java"] = userDto
	root := writeRepo(t, files)

	sequential, err := New(DefaultOptions(), nil).ExtractContracts(root)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Workers = 6
	parallel, err := New(opts, nil).ExtractContracts(root)
	require.NoError(t, err)

	require.Len(t, sequential, 24)
	assert.Equal(t, sequential, parallel)
}

func TestRunContext_Cancelled(t *testing.T) {
	root := usersRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		opts := DefaultOptions()
		opts.Workers = workers
		report, err := New(opts, nil).RunContext(ctx, root)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, report)
	}

	report, err := New(DefaultOptions(), nil).RunContext(context.Background(), root)
	require.NoError(t, err)
	assert.Len(t, report.Contracts, 3)
}

func TestExtractContracts_MissingRepository(t *testing.T) {
	e := New(DefaultOptions(), nil)

	_, err := e.ExtractContracts(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.Equal(t, errors.RepositoryErrorCode, errors.CodeOf(err))

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = e.ExtractContracts(file)
	assert.Equal(t, errors.RepositoryErrorCode, errors.CodeOf(err))
}

func TestExtractContracts_NonControllerSkipped(t *testing.T) {
	root := writeRepo(t, map[string]string{
		"Service.java": "package x;\n\n@Service\npublic class UserService {\n    public void run() {}\n}\n",
	})

	contracts, err := New(DefaultOptions(), nil).ExtractContracts(root)
	require.NoError(t, err)
	assert.Empty(t, contracts)
	assert.NotNil(t, contracts)
}

func TestDispatch(t *testing.T) {
	params := []models.MethodParameterInfo{
		{Name: "id", Type: "Long", Annotation: models.BindingPathVariable, Required: true},
		{Name: "q", Type: "String", Annotation: models.BindingRequestParam, Required: false},
		{Name: "query", Type: "Integer", Annotation: models.BindingRequestParam, Required: true, BindingName: "q"},
		{Name: "first", Type: "A", Annotation: models.BindingRequestBody, Required: true},
		{Name: "second", Type: "B", Annotation: models.BindingRequestBody, Required: true},
	}

	out, bodies := dispatch(params)
	assert.Equal(t, 2, bodies)
	assert.Equal(t, &models.ParameterInfo{Name: "second", Type: "B", Required: true}, out.Body)
	assert.Equal(t, models.ParameterInfo{Name: "q", Type: "Integer", Required: true}, out.Query["q"], "last write wins")
	assert.Len(t, out.Query, 1)
	assert.Nil(t, out.Header)

	empty, _ := dispatch(nil)
	assert.True(t, empty.IsEmpty())
}

func TestCandidatePackages(t *testing.T) {
	info := &models.ControllerInfo{
		PackageName: "com.example.web",
		Imports:     []string{"com.example.dto.UserDto", "com.example.shared.*", "com.example.web.*"},
	}

	assert.Equal(t, []string{"com.example.dto", "com.example.web", "com.example.shared"}, candidatePackages("UserDto", info))
	assert.Equal(t, []string{"com.example.web", "com.example.shared"}, candidatePackages("OrderDto", info))
	assert.Equal(t, []string{""}, candidatePackages("com.other.Dto", info))
}

func TestPayloadType(t *testing.T) {
	e := New(DefaultOptions(), nil)

	tests := []struct {
		returnType string
		want       string
	}{
		{"ResponseEntity<UserDto>", "UserDto"},
		{"ResponseEntity<List<UserDto>>", "List"},
		{"HttpEntity<OrderDto>", "OrderDto"},
		{"UserDto", "UserDto"},
		{"Page<UserDto>", "Page"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, e.payloadType(tt.returnType), tt.returnType)
	}
}

func TestExtractContracts_CompleteAppExample(t *testing.T) {
	opts := DefaultOptions()
	opts.Workers = 4
	report, err := New(opts, nil).Run(filepath.Join("..", "..", "examples", "complete-app"))
	require.NoError(t, err)

	assert.Equal(t, 9, report.FilesScanned, "target/ is skipped")
	assert.Equal(t, 4, report.ControllersFound)
	assert.Equal(t, 1, report.StructuralFallbacks, "the truncated legacy controller")
	assert.Empty(t, report.FileFailures)
	assert.Empty(t, report.MethodFailures)

	var routes []string
	for _, c := range report.Contracts {
		routes = append(routes, c.HTTPMethod+" "+c.Path)
	}
	assert.Equal(t, []string{
		"GET /health",
		"GET /api/reports/sales",
		"GET /api/products/{id}",
		"GET /api/products",
		"POST /api/products/categories/{categoryId}/items",
		"PUT /api/products/{id}",
		"DELETE /api/products/{id}",
		"GET /api/users/me",
		"POST /api/users",
		"PATCH /api/users/{id}/email",
	}, routes)

	byRoute := make(map[string]models.ExtractedContract, len(report.Contracts))
	for i, c := range report.Contracts {
		byRoute[routes[i]] = c
	}

	product := &models.Schema{
		Type: "object",
		Properties: map[string]*models.Schema{
			"id":          {Type: "string"},
			"categoryId":  {Type: "string"},
			"name":        {Type: "string"},
			"description": {Type: "string"},
			"price":       {Type: "number"},
			"createdAt":   {Type: "string", Format: "date-time"},
		},
		Required: []string{"id", "name"},
	}
	assert.Equal(t, product, byRoute["GET /api/products/{id}"].ResponseSchema, "resolved through the wildcard import")
	assert.Nil(t, byRoute["GET /api/products"].ResponseSchema, "collections are not resolved")
	assert.Nil(t, byRoute["DELETE /api/products/{id}"].ResponseSchema)
	assert.Nil(t, byRoute["GET /health"].ResponseSchema)

	list := byRoute["GET /api/products"].Parameters
	require.NotNil(t, list)
	assert.Equal(t, models.ParameterInfo{Name: "page", Type: "int", Required: true, DefaultValue: "0"}, list.Query["page"])
	assert.Equal(t, models.ParameterInfo{Name: "category", Type: "String"}, list.Query["category"])

	create := byRoute["POST /api/products/categories/{categoryId}/items"]
	assert.Equal(t, "POSTapiproductscategoriescategoryIditems", create.Name)
	require.NotNil(t, create.Parameters)
	assert.True(t, create.Parameters.Path["categoryId"].Required)
	assert.Equal(t, "CreateProductRequest", create.Parameters.Body.Type)
	assert.Equal(t, &models.Schema{
		Type: "object",
		Properties: map[string]*models.Schema{
			"name":        {Type: "string"},
			"description": {Type: "string"},
			"price":       {Type: "number"},
		},
		Required: []string{"name", "price"},
	}, create.RequestSchema, "record components")

	me := byRoute["GET /api/users/me"]
	require.NotNil(t, me.Parameters)
	assert.True(t, me.Parameters.Header["Authorization"].Required)
	assert.False(t, me.Parameters.Cookie["session"].Required)
	require.NotNil(t, me.ResponseSchema)
	assert.Equal(t, &models.Schema{Type: "string", Format: "date"}, me.ResponseSchema.Properties["birthday"])
	assert.Equal(t, "boolean", me.ResponseSchema.Properties["active"].Type)

	register := byRoute["POST /api/users"]
	require.NotNil(t, register.RequestSchema)
	assert.Equal(t, []string{"email"}, register.RequestSchema.Required, "@Size does not make a field required")

	legacy := byRoute["GET /api/reports/sales"]
	assert.Equal(t, "src/main/java/com/example/shop/controller/LegacyReportController.java", legacy.SourceFile)
	assert.Equal(t, 11, legacy.SourceLine)
	assert.Len(t, legacy.Parameters.Query, 2)
}
