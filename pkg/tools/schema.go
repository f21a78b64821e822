package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/invopop/jsonschema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// NewTool builds an MCP tool whose input schema is reflected from the json
// and jsonschema tags of T.
func NewTool[T any](name, description string) mcp.Tool {
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: GenerateSchema[T](),
	}
}

// GenerateSchema reflects T into the object schema MCP expects. Only fields
// tagged jsonschema:"required" end up in the required list.
func GenerateSchema[T any]() mcp.ToolInputSchema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}

	var v T
	raw, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		panic(fmt.Sprintf("cannot marshal schema for %T: %v", v, err))
	}

	schema := mcp.ToolInputSchema{}
	if err := json.Unmarshal(raw, &schema); err != nil {
		panic(fmt.Sprintf("cannot decode schema for %T: %v", v, err))
	}

	if schema.Properties == nil {
		schema.Properties = map[string]interface{}{}
	}

	schema.Type = "object"
	return schema
}

// Validate checks arguments against an input schema: required keys, JSON
// types and numeric minimums. Every problem is reported, not just the first.
// Arguments the schema does not declare are ignored.
func Validate(schema mcp.ToolInputSchema, args map[string]interface{}) error {
	var result *multierror.Error

	for _, key := range schema.Required {
		if value, ok := args[key]; !ok || value == nil {
			result = multierror.Append(result, fmt.Errorf("missing required argument '%s'", key))
		}
	}

	keys := lo.Keys(args)
	sort.Strings(keys)

	for _, key := range keys {
		property, ok := schema.Properties[key].(map[string]interface{})
		if !ok || args[key] == nil {
			continue
		}

		if err := validateValue(key, property, args[key]); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if result == nil {
		return nil
	}

	result.ErrorFormat = joinErrors
	return result
}

// Bind decodes validated arguments into out using its json tags.
func Bind(args map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  out,
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	return nil
}

func validateValue(key string, property map[string]interface{}, value interface{}) error {
	kind, _ := property["type"].(string)

	switch kind {
	case "string":
		if _, ok := value.(string); !ok {
			return fmt.Errorf("argument '%s' must be a string", key)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("argument '%s' must be a boolean", key)
		}
	case "object":
		if _, ok := value.(map[string]interface{}); !ok {
			return fmt.Errorf("argument '%s' must be an object", key)
		}
	case "array":
		items, ok := value.([]interface{})
		if !ok {
			return fmt.Errorf("argument '%s' must be an array", key)
		}

		itemSchema, _ := property["items"].(map[string]interface{})
		for i, item := range items {
			if itemSchema == nil {
				break
			}
			if err := validateValue(fmt.Sprintf("%s[%d]", key, i), itemSchema, item); err != nil {
				return err
			}
		}
	case "integer", "number":
		number, ok := toFloat(value)
		if !ok || (kind == "integer" && number != math.Trunc(number)) {
			return fmt.Errorf("argument '%s' must be %s", key, article(kind))
		}

		if minimum, ok := toFloat(property["minimum"]); ok && number < minimum {
			return fmt.Errorf("argument '%s' must be at least %v", key, minimum)
		}
	}

	return nil
}

func toFloat(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}

	return 0, false
}

func article(kind string) string {
	if kind == "integer" {
		return "an integer"
	}
	return "a number"
}

func joinErrors(errs []error) string {
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}

	return strings.Join(messages, "; ")
}
