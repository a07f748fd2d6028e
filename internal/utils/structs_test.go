package utils

import (
	"reflect"
	"testing"
)

type taggedRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Ignored string `db:"-"`
	NoTag   string
	private string `db:"private"`
}

func TestStructTagValues(t *testing.T) {
	got := StructTagValues(taggedRow{})
	want := []string{"id", "name"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("StructTagValues = %v, want %v", got, want)
	}

	// Pointer input behaves the same.
	if got := StructTagValues(&taggedRow{}); !reflect.DeepEqual(got, want) {
		t.Fatalf("StructTagValues(ptr) = %v, want %v", got, want)
	}
}

func TestStructToMap(t *testing.T) {
	row := taggedRow{ID: "abc", Name: "xyz", Ignored: "nope", private: "hidden"}
	got := StructToMap(row)
	want := map[string]any{"id": "abc", "name": "xyz"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("StructToMap = %v, want %v", got, want)
	}
}

func TestStructTagValuesPanicsOnNonStruct(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-struct input")
		}
	}()
	StructTagValues(42)
}
