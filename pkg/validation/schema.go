package validation

import (
	"fmt"
	"math"
	"reflect"
	"regexp"

	"github.com/adwkit/adw/pkg/models"
)

// JSONSchema structurally validates value against the schema subset described
// in models.Schema. It walks the value recursively, qualifying error messages
// with dotted paths for object properties and [i] indexes for array items.
func JSONSchema(value any, schema *models.Schema) *models.ValidationResult {
	if schema == nil {
		return models.ValidResult()
	}

	result := &models.ValidationResult{Valid: true}
	validateSchema(value, schema, "", result)
	result.Valid = len(result.Errors) == 0

	return result
}

func validateSchema(value any, schema *models.Schema, path string, result *models.ValidationResult) {
	if isNull(value) {
		if schema.Nullable {
			return
		}

		if schema.Type != "" {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: expected %s, got null", displayPath(path), schema.Type))
		}

		return
	}

	switch schema.Type {
	case "string":
		validateString(value, schema, path, result)
	case "number":
		validateNumber(value, schema, path, result, false)
	case "integer":
		validateNumber(value, schema, path, result, true)
	case "boolean":
		if _, ok := value.(bool); !ok {
			result.Errors = append(result.Errors, typeMismatch(path, "boolean", value))
		}
	case "array":
		validateArray(value, schema, path, result)
	case "object":
		validateObject(value, schema, path, result)
	case "":
		// Untyped schema: constraints on nested properties may still apply.
		if schema.Properties != nil || schema.Required != nil {
			validateObject(value, schema, path, result)
		}
	default:
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: unsupported schema type %q", displayPath(path), schema.Type))
	}
}

func validateString(value any, schema *models.Schema, path string, result *models.ValidationResult) {
	str, ok := value.(string)
	if !ok {
		result.Errors = append(result.Errors, typeMismatch(path, "string", value))

		return
	}

	if schema.MinLength != nil && len(str) < *schema.MinLength {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: length %d is below minLength %d", displayPath(path), len(str), *schema.MinLength))
	}

	if schema.MaxLength != nil && len(str) > *schema.MaxLength {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: length %d exceeds maxLength %d", displayPath(path), len(str), *schema.MaxLength))
	}

	if schema.Pattern != "" {
		re, err := regexp.Compile(schema.Pattern)
		if err != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: invalid pattern %q", displayPath(path), schema.Pattern))
		} else if !re.MatchString(str) {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %q does not match pattern %q", displayPath(path), str, schema.Pattern))
		}
	}

	if len(schema.Enum) > 0 && !enumContains(schema.Enum, str) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: %q is not one of the allowed values", displayPath(path), str))
	}
}

func validateNumber(value any, schema *models.Schema, path string, result *models.ValidationResult, integral bool) {
	num, ok := numericValue(value)
	if !ok {
		expected := "number"
		if integral {
			expected = "integer"
		}

		result.Errors = append(result.Errors, typeMismatch(path, expected, value))

		return
	}

	if integral && num != math.Trunc(num) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: %v is not an integer", displayPath(path), num))
	}

	if schema.Minimum != nil && num < *schema.Minimum {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: %v is below minimum %v", displayPath(path), num, *schema.Minimum))
	}

	if schema.Maximum != nil && num > *schema.Maximum {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: %v exceeds maximum %v", displayPath(path), num, *schema.Maximum))
	}
}

func validateArray(value any, schema *models.Schema, path string, result *models.ValidationResult) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		result.Errors = append(result.Errors, typeMismatch(path, "array", value))

		return
	}

	length := rv.Len()

	if schema.MinItems != nil && length < *schema.MinItems {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: %d items is below minItems %d", displayPath(path), length, *schema.MinItems))
	}

	if schema.MaxItems != nil && length > *schema.MaxItems {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: %d items exceeds maxItems %d", displayPath(path), length, *schema.MaxItems))
	}

	if schema.Items != nil {
		for i := range length {
			validateSchema(rv.Index(i).Interface(), schema.Items, fmt.Sprintf("%s[%d]", path, i), result)
		}
	}
}

func validateObject(value any, schema *models.Schema, path string, result *models.ValidationResult) {
	obj, ok := value.(map[string]any)
	if !ok {
		result.Errors = append(result.Errors, typeMismatch(path, "object", value))

		return
	}

	for _, field := range schema.Required {
		if _, present := obj[field]; !present {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: missing required field %q", displayPath(path), field))
		}
	}

	for name, propSchema := range schema.Properties {
		propValue, present := obj[name]
		if !present {
			// Absent optional properties are skipped; Required covers
			// the mandatory ones.
			continue
		}

		validateSchema(propValue, propSchema, joinPath(path, name), result)
	}

	if schema.AdditionalProperties != nil && !*schema.AdditionalProperties {
		for key := range obj {
			if _, declared := schema.Properties[key]; !declared {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s: unexpected field %q", displayPath(path), key))
			}
		}
	}
}

func isNull(value any) bool {
	if value == nil {
		return true
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

func numericValue(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

func enumContains(enum []any, value any) bool {
	for _, candidate := range enum {
		if candidate == value {
			return true
		}
	}

	return false
}

func typeMismatch(path, expected string, value any) string {
	return fmt.Sprintf("%s: expected %s, got %T", displayPath(path), expected, value)
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}

	return path + "." + field
}

func displayPath(path string) string {
	if path == "" {
		return "value"
	}

	return path
}
