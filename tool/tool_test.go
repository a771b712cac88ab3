package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parley-ai/parley/internal/util"
)

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	// Required only includes non-pointer, non-omitempty exported fields
	req, _ := schema["required"].([]string)
	if req == nil {
		ifaceReq, _ := schema["required"].([]any)
		for _, v := range ifaceReq {
			req = append(req, v.(string))
		}
	}
	assert.ElementsMatch(t, []string{"a"}, req)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "integer"},
		},
		// Use []any to mirror the JSON decoded schema shape
		"required": []any{"x"},
	}

	assert.NoError(t, util.ValidateParameters(map[string]any{"x": 5}, schema))

	err := util.ValidateParameters(map[string]any{}, schema)
	assert.Error(t, err)
	var vErr *util.ValidationError
	if assert.ErrorAs(t, err, &vErr) {
		assert.Equal(t, "x", vErr.Field)
	}

	err = util.ValidateParameters(map[string]any{"x": "not-int"}, schema)
	assert.Error(t, err)
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ context.Context, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	result, err := sumTool.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{"type": "string"},
		},
		"required": []string{"city"},
	}

	weather := NewFunctionTool("get_weather", "Get weather", params, func(_ context.Context, args map[string]any) (any, error) {
		return "sunny", nil
	})

	_, err := weather.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
	var toolErr *ToolError
	if assert.ErrorAs(t, err, &toolErr) {
		assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
		assert.Equal(t, "get_weather", toolErr.Tool)
	}
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	failing := NewFunctionTool("boom", "Always fails", map[string]any{"type": "object"}, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("backend down")
	})

	_, err := failing.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	if assert.ErrorAs(t, err, &toolErr) {
		assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
		assert.Equal(t, "backend down", toolErr.Message)
	}
}

func TestFunctionTool_PreservesCustomToolError(t *testing.T) {
	custom := NewFunctionTool("quota", "Quota checked", map[string]any{"type": "object"}, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, NewToolError("quota", "limit reached", "QUOTA_EXCEEDED")
	})

	_, err := custom.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	if assert.ErrorAs(t, err, &toolErr) {
		assert.Equal(t, "QUOTA_EXCEEDED", toolErr.Code)
	}
}

// -------------------- Registry Tests --------------------

func TestRegistry_LookupUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("missing")
	assert.ErrorIs(t, err, ErrUnknownTool)
}

func TestRegistry_PreservesRegistrationOrder(t *testing.T) {
	mk := func(name string) Tool {
		return NewFunctionTool(name, name, map[string]any{"type": "object"}, func(_ context.Context, _ map[string]any) (any, error) {
			return nil, nil
		})
	}

	r := NewRegistry(mk("gamma"), mk("alpha"), mk("beta"))
	var names []string
	for _, tl := range r.All() {
		names = append(names, tl.Name())
	}
	assert.Equal(t, []string{"gamma", "alpha", "beta"}, names)
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	mk := func(name, desc string) Tool {
		return NewFunctionTool(name, desc, map[string]any{"type": "object"}, nil)
	}

	r := NewRegistry(mk("echo", "v1"))
	r.Register(mk("echo", "v2"))

	got, err := r.Lookup("echo")
	assert.NoError(t, err)
	assert.Equal(t, "v2", got.Description())
	assert.Equal(t, 1, r.Len())
}
