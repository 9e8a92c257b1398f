package model

import "encoding/json"

// Todo is the domain model for a todo entry. IDs are assigned by the
// remote service and are opaque to the client.
type Todo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// UnmarshalJSON accepts document-store records that carry "_id".
func (t *Todo) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID        string `json:"id"`
		MongoID   string `json:"_id"`
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	t.ID = raw.ID
	if t.ID == "" {
		t.ID = raw.MongoID
	}
	t.Title = raw.Title
	t.Completed = raw.Completed
	return nil
}

// Clone returns a copy of seq that shares nothing with it.
func Clone(seq []Todo) []Todo {
	out := make([]Todo, len(seq))
	copy(out, seq)
	return out
}

// IndexOf returns the position of id in seq, or -1.
func IndexOf(seq []Todo, id string) int {
	for i, t := range seq {
		if t.ID == id {
			return i
		}
	}
	return -1
}
