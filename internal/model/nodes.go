package model

import (
	"sort"
	"strconv"
	"strings"
)

// SortNodeIDs orders node identifiers in place the way the result tables are
// printed: numerically when the id (minus a trailing spine suffix) parses as
// an integer, lexicographically otherwise. Numeric ids sort before
// non-numeric ones.
func SortNodeIDs(ids []string, spineSuffix string) {
	sort.SliceStable(ids, func(i, j int) bool {
		ni, oki := nodeOrdinal(ids[i], spineSuffix)
		nj, okj := nodeOrdinal(ids[j], spineSuffix)
		switch {
		case oki && okj:
			if ni != nj {
				return ni < nj
			}
			return ids[i] < ids[j]
		case oki:
			return true
		case okj:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}

func nodeOrdinal(id, suffix string) (int, bool) {
	base := id
	if suffix != "" && strings.HasSuffix(id, suffix) {
		base = strings.TrimSuffix(id, suffix)
	}
	n, err := strconv.Atoi(base)
	return n, err == nil
}
