// Package textpos maps byte offsets to 1-based line numbers.
package textpos

import "sort"

// Index holds the byte offset at which every line starts.
type Index []int

// New indexes source. The first line always starts at offset 0.
func New[T string | []byte](source T) Index {
	starts := Index{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// Line returns the 1-based line containing offset. Negative offsets map to
// the first line, offsets past the end to the last one.
func (idx Index) Line(offset int) int {
	if offset < 0 || len(idx) == 0 {
		return 1
	}
	return sort.Search(len(idx), func(i int) bool { return idx[i] > offset })
}

// Lines returns the number of lines in the indexed source.
func (idx Index) Lines() int {
	return len(idx)
}
