// Package reference implements the Reference Finder: minting a placeholder
// from a free-text keyword by fuzzy-matching it against a cached table's
// cells.
package reference

import (
	"fmt"
	"strings"

	"github.com/mcpp-project/mcpp-core/internal/domain/cache"
	"github.com/mcpp-project/mcpp-core/internal/domain/mcpperr"
	"github.com/mcpp-project/mcpp-core/internal/domain/placeholder"
)

// Threshold is the minimum Jaro-Winkler similarity a cell must strictly
// exceed to be considered a match.
const Threshold = 0.7

// Match is a successful find: the minted placeholder, its similarity to
// the keyword, and how many cells were scanned to produce it.
type Match struct {
	Placeholder placeholder.Reference `json:"placeholder"`
	Similarity  float64               `json:"similarity"`
	CellsScan   int                   `json:"cells_scanned"`
}

// Find fuzzy-matches keyword against the cells of the table cached under
// callID. If columnName is non-empty, only that column's cells are
// candidates. Ties (equal similarity) are broken in row-major, then
// headers-order scan order: the first cell encountered wins.
func Find(store cache.Store, callID, keyword, columnName string) (Match, error) {
	entry, ok := store.Get(callID)
	if !ok {
		return Match{}, mcpperr.ErrCacheMiss
	}
	table, ok := entry.Table()
	if !ok || len(table.Columns) == 0 {
		return Match{}, mcpperr.New(mcpperr.CodeDataNotFound, "cached entry is not a non-empty table")
	}

	colIndices := range_(len(table.Columns))
	if columnName != "" {
		idx := -1
		for i, c := range table.Columns {
			if c == columnName {
				idx = i
				break
			}
		}
		if idx == -1 {
			return Match{}, mcpperr.New(mcpperr.CodeInvalidParams, fmt.Sprintf("column %q does not exist", columnName))
		}
		colIndices = []int{idx}
	}

	lowerKeyword := strings.ToLower(keyword)

	best := Match{Similarity: -1}
	scanned := 0

	for rowIdx, row := range table.Rows {
		for _, colIdx := range colIndices {
			if colIdx >= len(row) {
				continue
			}
			scanned++
			cellText := strings.ToLower(stringify(row[colIdx]))
			sim := jaroWinkler(lowerKeyword, cellText)
			if sim > best.Similarity {
				best = Match{
					Placeholder: placeholder.Reference{
						CallID:     callID,
						RowIndex:   rowIdx,
						ColumnName: table.Columns[colIdx],
					},
					Similarity: sim,
				}
			}
		}
	}
	best.CellsScan = scanned

	if best.Similarity <= Threshold {
		return best, mcpperr.Newf(mcpperr.CodeReferenceNotFound, "no cell exceeded the similarity threshold (best observed: %.4f)", best.Similarity)
	}
	return best, nil
}

func range_(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}
