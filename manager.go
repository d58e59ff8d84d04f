package snyk

import (
	"reflect"
	"strings"
)

// resource is implemented by every identifiable record, giving the generic
// lookup helpers a uniform handle on the id field.
type resource interface {
	resourceID() string
}

// getByID returns the unique item with the given id, or a NotFoundError.
func getByID[T resource](items []T, id, resourceType string) (T, error) {
	for _, item := range items {
		if item.resourceID() == id {
			return item, nil
		}
	}
	var zero T
	return zero, &NotFoundError{ResourceType: resourceType, ResourceID: id}
}

// firstOf returns the first item of a collection, or a NotFoundError when
// the collection is empty.
func firstOf[T any](items []T, resourceType string) (T, error) {
	if len(items) == 0 {
		var zero T
		return zero, &NotFoundError{ResourceType: resourceType}
	}
	return items[0], nil
}

// filterByFields returns the items whose fields equal every supplied
// criterion. Criteria keys name fields by their JSON tag (falling back to
// the Go field name); an unknown key fails fast with a ValidationError, no
// match being silently impossible. Empty criteria return the full
// collection.
func filterByFields[T any](items []T, criteria map[string]any) ([]T, error) {
	if len(criteria) == 0 {
		return items, nil
	}

	result := make([]T, 0, len(items))
	for _, item := range items {
		match := true
		for key, want := range criteria {
			got, ok := fieldByJSONName(reflect.ValueOf(item), key)
			if !ok {
				return nil, &ValidationError{
					APIError: APIError{Message: "unknown filter field: " + key},
				}
			}
			if !reflect.DeepEqual(got.Interface(), want) {
				match = false
				break
			}
		}
		if match {
			result = append(result, item)
		}
	}
	return result, nil
}

// fieldByJSONName resolves a struct field by its JSON tag name, descending
// into embedded structs.
func fieldByJSONName(v reflect.Value, name string) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous {
			if inner, ok := fieldByJSONName(v.Field(i), name); ok {
				return inner, true
			}
			continue
		}
		tag, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if tag == "-" {
			continue
		}
		if tag == name || (tag == "" && strings.EqualFold(field.Name, name)) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}
