// Package table sorts dashboard rows the way the order and ingredient
// tables do: by one column, compared as text, number or date.
package table

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"philcali.me/kitchen/internal/exceptions"
)

type Kind string

const (
	String Kind = "string"
	Number Kind = "number"
	Date   Kind = "date"
)

func ParseKind(kind string) (Kind, error) {
	switch Kind(kind) {
	case String, Number, Date:
		return Kind(kind), nil
	case "":
		return String, nil
	}
	return "", exceptions.InvalidInput(fmt.Sprintf("Unknown sort kind: %s", kind))
}

// Column renders the cell text of a row.
type Column[T interface{}] func(T) string

type Columns[T interface{}] map[string]Column[T]

func number(cell string) float64 {
	value, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0
	}
	return value
}

// epoch treats a missing or unparsable date as the epoch.
func epoch(cell string) int64 {
	parsed, err := time.Parse(time.RFC3339Nano, cell)
	if err != nil {
		return 0
	}
	return parsed.UnixMilli()
}

func compare[V int64 | float64](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Sort returns a sorted copy of rows, ascending by column. Equal cells keep
// their input order, so sorting sorted rows again changes nothing.
func Sort[T interface{}](rows []T, column Column[T], kind Kind) []T {
	sorted := append([]T(nil), rows...)
	var cmp func(a, b string) int
	switch kind {
	case Number:
		cmp = func(a, b string) int { return compare(number(a), number(b)) }
	case Date:
		cmp = func(a, b string) int { return compare(epoch(a), epoch(b)) }
	default:
		collator := collate.New(language.Und)
		cmp = collator.CompareString
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return cmp(column(sorted[i]), column(sorted[j])) < 0
	})
	return sorted
}

func (cs Columns[T]) Sort(rows []T, name string, kind Kind) ([]T, error) {
	column, ok := cs[name]
	if !ok {
		return nil, exceptions.InvalidInput(fmt.Sprintf("Unknown sort column: %s", name))
	}
	return Sort(rows, column, kind), nil
}
