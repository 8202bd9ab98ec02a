package dataio

import (
	"sort"

	"dataio/cli/internal/rdata"
)

// Match compares requested output names with decoded objects.
type Match struct {
	Missing    []string `json:"missing,omitempty" yaml:"missing,omitempty"`
	Unexpected []string `json:"unexpected,omitempty" yaml:"unexpected,omitempty"`
}

// OK reports a 1:1 correspondence.
func (m Match) OK() bool { return len(m.Missing) == 0 && len(m.Unexpected) == 0 }

// MatchOutputs checks that objects and requested correspond 1:1 by name,
// ignoring order. Duplicate object names count as unexpected.
func MatchOutputs(requested []string, objects []rdata.Value) Match {
	want := make(map[string]int, len(requested))
	for _, n := range requested {
		want[n]++
	}
	var m Match
	for _, v := range objects {
		if want[v.Name()] > 0 {
			want[v.Name()]--
			continue
		}
		m.Unexpected = append(m.Unexpected, v.Name())
	}
	for n, left := range want {
		for ; left > 0; left-- {
			m.Missing = append(m.Missing, n)
		}
	}
	sort.Strings(m.Missing)
	sort.Strings(m.Unexpected)
	return m
}
