package utils

import (
	"fmt"
	"reflect"
)

// ColumnTag is the struct tag the store layer reads column names from.
var ColumnTag = "db"

// StructTagValues lists the column names declared on a struct's db tags, in
// field order. Embedded and unexported fields without a tag are skipped.
func StructTagValues(input any) []string {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		panic("input must be a struct or pointer to struct")
	}

	t := v.Type()
	out := make([]string, 0, v.NumField())

	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			continue
		}
		tag := t.Field(i).Tag.Get(ColumnTag)
		if tag == "" || tag == "-" {
			continue
		}
		out = append(out, tag)
	}

	return out
}

// StructToMap flattens a struct into a column -> value map keyed by db tags,
// suitable for squirrel's SetMap.
func StructToMap(input any) map[string]any {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		panic("input must be a struct or pointer to struct")
	}

	t := v.Type()
	out := make(map[string]any, v.NumField())

	for i := 0; i < v.NumField(); i++ {
		if t.Field(i).PkgPath != "" {
			continue
		}
		tag := t.Field(i).Tag.Get(ColumnTag)
		if tag == "" || tag == "-" {
			continue
		}
		out[tag] = v.Field(i).Interface()
	}

	return out
}

// PrefixSliceOfStrings qualifies column names with a table alias for joined
// queries.
func PrefixSliceOfStrings(prefix string, input []string) []string {
	out := make([]string, len(input))
	for i, v := range input {
		out[i] = fmt.Sprintf("%s.%s", prefix, v)
	}
	return out
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}
	if msg == "" {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
