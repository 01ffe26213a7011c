package chi

import (
	"reflect"
	"strings"

	"github.com/kailas-cloud/teammaker/internal/domain/category"
	"github.com/kailas-cloud/teammaker/internal/transport/api"
)

// categorySpecs maps request categories onto category specs.
// An omitted category weight counts as 1.
func categorySpecs(in []api.Category) []category.Spec {
	if len(in) == 0 {
		return nil
	}
	specs := make([]category.Spec, len(in))
	for i, c := range in {
		priority := 1.0
		if c.Weight != nil {
			priority = *c.Weight
		}
		specs[i] = category.Spec{
			Column:   *c.Index,
			Name:     c.Name,
			Priority: priority,
			Entries:  entriesFromAPI(c.Values),
		}
	}
	return specs
}

func entriesFromAPI(values []api.CategoryValue) []category.Entry {
	if len(values) == 0 {
		return nil
	}
	out := make([]category.Entry, len(values))
	for i, v := range values {
		e := category.Entry{ValueIndex: v.ValueIndex, Weight: v.Weight, Label: v.Label}
		if v.Value != nil {
			e.Value = *v.Value
		}
		out[i] = e
	}
	return out
}

// jsonName reports struct fields by their JSON name in validation errors.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}
