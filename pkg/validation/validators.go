package validation

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/adwkit/adw/pkg/models"
)

// NotEmpty rejects nil values, whitespace-only strings, empty arrays and
// empty objects. Numeric zero and boolean false are not considered empty.
func NotEmpty() models.ValidatorFunc {
	return func(_ context.Context, output any) (*models.ValidationResult, error) {
		if output == nil {
			return models.InvalidResult("output is empty"), nil
		}

		switch v := output.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return models.InvalidResult("output is an empty string"), nil
			}
		default:
			rv := reflect.ValueOf(output)
			switch rv.Kind() {
			case reflect.Slice, reflect.Array:
				if rv.Len() == 0 {
					return models.InvalidResult("output is an empty array"), nil
				}
			case reflect.Map:
				if rv.Len() == 0 {
					return models.InvalidResult("output is an empty object"), nil
				}
			case reflect.Ptr, reflect.Interface:
				if rv.IsNil() {
					return models.InvalidResult("output is empty"), nil
				}
			}
		}

		return models.ValidResult(), nil
	}
}

// HasFields rejects non-object outputs, otherwise checks that every named
// field is present.
func HasFields(fields ...string) models.ValidatorFunc {
	return func(_ context.Context, output any) (*models.ValidationResult, error) {
		obj, ok := output.(map[string]any)
		if !ok {
			return models.InvalidResult(fmt.Sprintf("expected an object, got %T", output)), nil
		}

		var missing []string

		for _, field := range fields {
			if _, present := obj[field]; !present {
				missing = append(missing, fmt.Sprintf("missing field %q", field))
			}
		}

		if len(missing) > 0 {
			return models.InvalidResult(missing...), nil
		}

		return models.ValidResult(), nil
	}
}

// Pattern rejects non-string outputs, otherwise tests the string against re.
// An empty message falls back to a generic mismatch description.
func Pattern(re *regexp.Regexp, message string) models.ValidatorFunc {
	return func(_ context.Context, output any) (*models.ValidationResult, error) {
		str, ok := output.(string)
		if !ok {
			return models.InvalidResult(fmt.Sprintf("expected a string, got %T", output)), nil
		}

		if !re.MatchString(str) {
			if message == "" {
				message = fmt.Sprintf("output does not match pattern %q", re.String())
			}

			return models.InvalidResult(message), nil
		}

		return models.ValidResult(), nil
	}
}

// AllOf passes only when every validator passes, concatenating all collected
// errors and warnings.
func AllOf(validators ...models.ValidatorFunc) models.ValidatorFunc {
	return func(ctx context.Context, output any) (*models.ValidationResult, error) {
		combined := models.ValidResult()

		for _, validator := range validators {
			res, err := validator(ctx, output)
			if err != nil {
				return nil, err
			}

			combined = combined.Merge(res)
		}

		return combined, nil
	}
}

// AnyOf passes as soon as one validator passes; when none do, all collected
// errors are concatenated.
func AnyOf(validators ...models.ValidatorFunc) models.ValidatorFunc {
	return func(ctx context.Context, output any) (*models.ValidationResult, error) {
		var allErrors []string

		for _, validator := range validators {
			res, err := validator(ctx, output)
			if err != nil {
				return nil, err
			}

			if res == nil || res.Valid {
				return models.ValidResult(), nil
			}

			allErrors = append(allErrors, res.Errors...)
		}

		if len(allErrors) == 0 {
			allErrors = append(allErrors, "no validators configured")
		}

		return models.InvalidResult(allErrors...), nil
	}
}
