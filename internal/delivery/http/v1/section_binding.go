package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"go-profile-backend/internal/domain"
	"go-profile-backend/pkg/apperror"
	"go-profile-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// sectionBinder checks client payloads against the typed section schemas
// before they reach the profile engines.
type sectionBinder struct {
	validate *validator.Validate
}

func newSectionBinder() *sectionBinder {
	return &sectionBinder{validate: validation.New()}
}

// decodeInto converts a generic JSON value into the typed target
func decodeInto(name domain.SectionName, value any, target any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := json.Unmarshal(raw, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperror.Validation(fmt.Sprintf("Invalid value for %s.%s", name, typeErr.Field))
		}
		return apperror.Validation(fmt.Sprintf("Invalid value for %s", name))
	}
	return nil
}

func (b *sectionBinder) check(err error) error {
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return apperror.Internal(err)
	}
	return apperror.Validation(validation.Message(err))
}

// validateValue validates a decoded section value (pointer from NewValue)
func (b *sectionBinder) validateValue(spec domain.SectionSpec, ptr any) error {
	v := reflect.ValueOf(ptr).Elem()

	switch {
	case v.Kind() == reflect.Struct:
		return b.check(b.validate.Struct(ptr))
	case v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Struct:
		for i := 0; i < v.Len(); i++ {
			if err := b.check(b.validate.Struct(v.Index(i).Addr().Interface())); err != nil {
				return err
			}
		}
		return nil
	case spec.ElemTag != "":
		return b.check(b.validate.Var(v.Interface(), "dive,"+spec.ElemTag))
	case spec.ValueTag != "":
		return b.check(b.validate.Var(v.Interface(), spec.ValueTag))
	}
	return nil
}

// bindValue validates a whole section value and returns it in canonical
// generic form. Fields outside the schema are dropped.
func (b *sectionBinder) bindValue(spec domain.SectionSpec, value any) (any, error) {
	if value == nil {
		return nil, apperror.BadRequest(fmt.Sprintf("A value for %s is required", spec.Name))
	}
	if spec.IsCollection() && spec.Name != domain.SectionSkills {
		if _, ok := value.([]any); !ok {
			return nil, apperror.Validation(fmt.Sprintf("%s must be a list", spec.Name))
		}
	}

	ptr := spec.NewValue()
	if err := decodeInto(spec.Name, value, ptr); err != nil {
		return nil, err
	}
	if err := b.validateValue(spec, ptr); err != nil {
		return nil, err
	}

	normalized, err := domain.Normalize(ptr)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return normalized, nil
}

// bindItem validates one new collection item
func (b *sectionBinder) bindItem(spec domain.SectionSpec, item domain.Fields) (domain.Fields, error) {
	ptr := spec.NewItem()
	if ptr == nil {
		return nil, apperror.InvalidSection(fmt.Sprintf("Invalid section: %s. Cannot add to this section.", spec.Name))
	}
	if err := decodeInto(spec.Name, item, ptr); err != nil {
		return nil, err
	}
	if err := b.check(b.validate.Struct(ptr)); err != nil {
		return nil, err
	}

	normalized, err := domain.Normalize(ptr)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.AsFields(normalized), nil
}

// bindPatch validates only the fields present in patch. Keys outside the
// item schema and the item identifier are dropped.
func (b *sectionBinder) bindPatch(spec domain.SectionSpec, patch domain.Fields) (domain.Fields, error) {
	ptr := spec.NewItem()
	if ptr == nil {
		return nil, apperror.InvalidSection(fmt.Sprintf("Invalid section: %s. Cannot update this section.", spec.Name))
	}
	fields := make(domain.Fields, len(patch))
	for key, value := range patch {
		if key != domain.ItemIDKey {
			fields[key] = value
		}
	}
	if err := decodeInto(spec.Name, fields, ptr); err != nil {
		return nil, err
	}

	goNames := jsonToGoFields(reflect.TypeOf(ptr).Elem())
	present := make([]string, 0, len(fields))
	out := make(domain.Fields, len(fields))
	for key, value := range fields {
		goName, known := goNames[key]
		if !known {
			continue
		}
		present = append(present, goName)
		out[key] = value
	}
	if len(present) == 0 {
		return nil, apperror.BadRequest("No fields to update")
	}

	if err := b.check(b.validate.StructPartial(ptr, present...)); err != nil {
		return nil, err
	}

	normalized, err := domain.Normalize(out)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return domain.AsFields(normalized), nil
}

// bindDocument validates every registered section of a whole-profile payload.
// Reserved and unknown keys are passed through for the engine to judge.
func (b *sectionBinder) bindDocument(payload domain.Fields) (domain.Fields, error) {
	out := make(domain.Fields, len(payload))
	for key, value := range payload {
		spec, ok := domain.LookupSection(domain.SectionName(key))
		if !ok || value == nil {
			out[key] = value
			continue
		}
		if spec.Name == domain.SectionPersonalInfo {
			switch value.(type) {
			case map[string]any, domain.Fields:
			default:
				out[key] = value
				continue
			}
		}
		bound, err := b.bindValue(spec, value)
		if err != nil {
			return nil, err
		}
		out[key] = bound
	}
	return out, nil
}

// jsonToGoFields maps the JSON names of a struct's fields to their Go names
func jsonToGoFields(t reflect.Type) map[string]string {
	names := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names[name] = f.Name
	}
	return names
}
