package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Makepad-fr/tada/internal/model"
)

func ids(seq []model.Todo) []string {
	out := make([]string, 0, len(seq))
	for _, t := range seq {
		out = append(out, t.ID)
	}
	return out
}

func TestReposition(t *testing.T) {
	base := []model.Todo{
		{ID: "a"},
		{ID: "b"},
		{ID: "c", Completed: true},
		{ID: "d", Completed: true},
	}

	tests := []struct {
		name    string
		updated model.Todo
		want    []string
	}{
		{"complete moves to tail", model.Todo{ID: "a", Completed: true}, []string{"b", "c", "d", "a"}},
		{"reactivate moves to head", model.Todo{ID: "d"}, []string{"d", "a", "b", "c"}},
		{"complete last active", model.Todo{ID: "b", Completed: true}, []string{"a", "c", "d", "b"}},
		{"unknown id is inserted", model.Todo{ID: "z"}, []string{"z", "a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reposition(base, tt.updated)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestReposition_DoesNotMutateInput(t *testing.T) {
	seq := []model.Todo{{ID: "a"}, {ID: "b"}}
	_ = Reposition(seq, model.Todo{ID: "a", Completed: true})
	assert.Equal(t, []string{"a", "b"}, ids(seq))
	assert.False(t, seq[0].Completed)
}

func TestReposition_OthersKeepRelativeOrder(t *testing.T) {
	seq := []model.Todo{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4", Completed: true}, {ID: "5"}}
	for _, target := range seq {
		updated := target
		updated.Completed = !updated.Completed
		got := Reposition(seq, updated)

		var others []string
		for _, t := range got {
			if t.ID != target.ID {
				others = append(others, t.ID)
			}
		}
		var want []string
		for _, t := range seq {
			if t.ID != target.ID {
				want = append(want, t.ID)
			}
		}
		assert.Equal(t, want, others, "moving %s", target.ID)
		if updated.Completed {
			assert.Equal(t, target.ID, got[len(got)-1].ID)
		} else {
			assert.Equal(t, target.ID, got[0].ID)
		}
	}
}
