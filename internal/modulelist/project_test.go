package modulelist

import (
	"reflect"
	"testing"

	"github.com/nhle/modulesync/internal/model"
)

func kinds(rows []Row) []RowKind {
	out := make([]RowKind, len(rows))
	for i, r := range rows {
		out[i] = r.Kind
	}
	return out
}

func TestProject_ModulesAndItems(t *testing.T) {
	nested := item(11, 1, model.ItemTypeQuiz, 2)
	nested.Indent = 2
	m := loaded(
		module(1, item(10, 1, model.ItemTypeSubHeader, 0), nested),
		module(2),
	)
	m.Cursor = model.NextPageCursor("")
	m.LoadingItemIDs = model.NewIDSet(11)

	rows := Project(m, nil, 4)

	want := []RowKind{RowModule, RowSubHeader, RowItem, RowModule, RowEmptyModule}
	if got := kinds(rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if !rows[1].Disabled {
		t.Fatal("sub header rows are disabled")
	}
	if rows[2].Indent != 8 {
		t.Fatalf("indent = %d, want 8", rows[2].Indent)
	}
	if !rows[2].Loading || rows[2].Disabled {
		t.Fatalf("unexpected item row: %+v", rows[2])
	}
}

func TestProject_CollapsedModuleShowsHeaderOnly(t *testing.T) {
	m := loaded(module(1, item(10, 1, model.ItemTypeQuiz, 1)), module(2, item(20, 2, model.ItemTypeQuiz, 2)))
	m.Cursor = model.NextPageCursor("")

	rows := Project(m, model.NewIDSet(1), 2)

	want := []RowKind{RowModule, RowModule, RowItem}
	if got := kinds(rows); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	if !rows[0].Collapsed || rows[1].Collapsed {
		t.Fatal("collapsed flag not carried")
	}
}

func TestProject_TrailingRows(t *testing.T) {
	loadErr := &LoadError{Message: "offline"}

	tests := []struct {
		name  string
		model func() Model
		want  []RowKind
	}{
		{
			name:  "initial load shows nothing",
			model: func() Model { m, _ := Init(New(course, 0)); return m },
			want:  []RowKind{},
		},
		{
			name: "error before any data is full screen",
			model: func() Model {
				m := New(course, 0)
				m.LoadErr = loadErr
				return m
			},
			want: []RowKind{RowFullError},
		},
		{
			name: "error after data is inline",
			model: func() Model {
				m := loaded(module(1))
				m.LoadErr = loadErr
				return m
			},
			want: []RowKind{RowModule, RowEmptyModule, RowInlineError},
		},
		{
			name: "no modules at all",
			model: func() Model {
				m := New(course, 0)
				m.Cursor = model.NextPageCursor("")
				return m
			},
			want: []RowKind{RowEmpty},
		},
		{
			name:  "more pages remain",
			model: func() Model { return loaded(module(1)) },
			want:  []RowKind{RowModule, RowEmptyModule, RowLoading},
		},
		{
			name: "all pages loaded",
			model: func() Model {
				m := loaded(module(1))
				m.Cursor = model.NextPageCursor("")
				return m
			},
			want: []RowKind{RowModule, RowEmptyModule},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := Project(tt.model(), nil, 2)
			if got := kinds(rows); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("kinds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProject_ModuleFlags(t *testing.T) {
	m := loaded(module(1), module(2))
	m.LoadingModuleIDs = model.NewIDSet(1)
	m.FailedModuleIDs = model.NewIDSet(2)

	rows := Project(m, model.NewIDSet(1, 2), 2)

	if !rows[0].Loading || rows[0].Failed {
		t.Fatalf("module 1 flags: %+v", rows[0])
	}
	if rows[1].Loading || !rows[1].Failed {
		t.Fatalf("module 2 flags: %+v", rows[1])
	}
}
