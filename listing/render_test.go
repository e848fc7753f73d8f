package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectMode(t *testing.T) {
	assert.Equal(t, ModeTable, SelectMode(0, 100))
	assert.Equal(t, ModeList, SelectMode(99, 100))
	assert.Equal(t, ModeTable, SelectMode(100, 100))
	assert.Equal(t, "list", ModeList.String())
}

func TestColumnSetFor(t *testing.T) {
	cols := ColumnSet{
		{Key: "name", Title: "Name", Width: 20},
		{Key: "unpaid", Title: "Unpaid", Width: 8, Requires: CapMining},
	}
	assert.Len(t, cols.For(0), 1)
	assert.Len(t, cols.For(CapMining), 2)
}

func TestColumnSetFit(t *testing.T) {
	cols := ColumnSet{{Key: "a", Width: 60}, {Key: "b", Width: 40}}

	fit := cols.Fit(50, 5)
	assert.Equal(t, 30, fit[0].Width)
	assert.Equal(t, 20, fit[1].Width)
	assert.Equal(t, 60, cols[0].Width, "original is untouched")

	assert.Equal(t, cols, cols.Fit(200, 5))
}
