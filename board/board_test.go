package board

import (
	"testing"

	"github.com/matryer/is"
)

func TestStandardIsSymmetric(t *testing.T) {
	is := is.New(t)
	tbl := Standard()
	is.Equal(tbl.Len(), 24)
	is.NoErr(tbl.CheckSymmetric())
	is.True(!tbl.Contains("d4"))
}

func TestStandardOrder(t *testing.T) {
	is := is.New(t)
	tbl := Standard()
	ps := tbl.Positions()
	is.Equal(ps[0], Position("a1"))
	is.Equal(ps[23], Position("g7"))
	is.Equal(tbl.Neighbors("d2"), []Position{"b2", "f2", "d1", "d3"})
}

func TestMillsAreLines(t *testing.T) {
	is := is.New(t)
	tbl := Standard()
	is.Equal(len(LaskerMorrisMills), 16)
	for _, m := range LaskerMorrisMills {
		// The middle point of every mill touches both ends.
		is.True(tbl.Adjacent(m[1], m[0]))
		is.True(tbl.Adjacent(m[1], m[2]))
	}
}

func TestCheckSymmetricReportsMissingBackEdge(t *testing.T) {
	is := is.New(t)
	tbl := NewTable()
	tbl.Add("a1", "d1")
	tbl.Add("d1")
	err := tbl.CheckSymmetric()
	is.True(err != nil)
	is.Equal(err.Error(), "a1 is adjacent to d1, but d1 is not adjacent to a1")

	tbl = NewTable()
	tbl.Add("a1", "zz")
	is.True(tbl.CheckSymmetric() != nil)
}

func TestAddKeepsOrder(t *testing.T) {
	is := is.New(t)
	tbl := NewTable()
	tbl.Add("b", "a")
	tbl.Add("a", "b")
	tbl.Add("b", "a", "c")
	is.Equal(tbl.Positions(), []Position{"b", "a"})
	is.Equal(tbl.Neighbors("b"), []Position{"a", "c"})

	// Callers cannot mutate the table through returned slices.
	ns := tbl.Neighbors("b")
	ns[0] = "x"
	is.Equal(tbl.Neighbors("b")[0], Position("a"))
}
