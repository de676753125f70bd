package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Answer is a raw submission: a single option index or an ordered list of
// option indices. On the wire it is a JSON number or a JSON array.
type Answer struct {
	indices []int
	list    bool
}

// SingleAnswer builds a single-index answer.
func SingleAnswer(index int) Answer {
	return Answer{indices: []int{index}}
}

// ListAnswer builds a list answer. An empty list is valid.
func ListAnswer(indices ...int) Answer {
	out := make([]int, len(indices))
	copy(out, indices)
	return Answer{indices: out, list: true}
}

// IsList reports whether the answer was submitted as a list.
func (a Answer) IsList() bool {
	return a.list
}

// Index returns the single index, or false for list answers.
func (a Answer) Index() (int, bool) {
	if a.list || len(a.indices) != 1 {
		return 0, false
	}
	return a.indices[0], true
}

// Indices returns a copy of the list, or nil for single answers.
func (a Answer) Indices() []int {
	if !a.list {
		return nil
	}
	out := make([]int, len(a.indices))
	copy(out, a.indices)
	return out
}

// Values returns the submitted indices, wrapping a single index in a list.
func (a Answer) Values() []int {
	out := make([]int, len(a.indices))
	copy(out, a.indices)
	return out
}

// Clone returns an independent copy.
func (a Answer) Clone() Answer {
	return Answer{indices: a.Values(), list: a.list}
}

func (a Answer) String() string {
	if i, ok := a.Index(); ok {
		return fmt.Sprint(i)
	}
	return fmt.Sprint(a.indices)
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if i, ok := a.Index(); ok {
		return json.Marshal(i)
	}
	if a.indices == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.indices)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var indices []int
		if err := json.Unmarshal(data, &indices); err != nil {
			return fmt.Errorf("decode answer list: %w", err)
		}
		*a = ListAnswer(indices...)
		return nil
	}
	var index int
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("decode answer index: %w", err)
	}
	*a = SingleAnswer(index)
	return nil
}
