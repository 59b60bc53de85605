package view

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClose(t *testing.T) {
	assert.True(t, Close(0, 0, DefaultTolerance))
	assert.True(t, Close(1e9, 1e9+1, DefaultTolerance))
	assert.False(t, Close(1e9, 1e9+2000, DefaultTolerance))
	assert.True(t, Close(0, 1e-7, DefaultTolerance))
	assert.False(t, Close(0, 1e-5, DefaultTolerance))
}

func TestDiff(t *testing.T) {
	got := map[int64]float64{1: 10, 2: 20, 4: 40}
	want := map[int64]float64{1: 10, 2: 21, 3: 30}

	ms := Diff(got, want, DefaultTolerance)
	require.Len(t, ms, 3)
	assert.Equal(t, Mismatch{NationKey: 2, Got: 20, Want: 21, HasGot: true, HasWant: true}, ms[0])
	assert.Equal(t, Mismatch{NationKey: 3, Want: 30, HasWant: true}, ms[1])
	assert.Equal(t, Mismatch{NationKey: 4, Got: 40, HasGot: true}, ms[2])

	assert.Equal(t, "nationkey 2: got 20, want 21", ms[0].String())
	assert.Equal(t, "nationkey 3: missing, want 30", ms[1].String())
	assert.Equal(t, "nationkey 4: got 40, not expected", ms[2].String())
}

func TestDiffError(t *testing.T) {
	same := map[int64]float64{5: 150}
	assert.NoError(t, DiffError(same, map[int64]float64{5: 150.0000001}, DefaultTolerance))

	err := DiffError(same, map[int64]float64{5: 50}, DefaultTolerance)
	var me *MismatchError
	require.True(t, errors.As(err, &me))
	assert.Len(t, me.Mismatches, 1)
	assert.Contains(t, err.Error(), "1 mismatched keys")
}

func TestCloseInfinities(t *testing.T) {
	assert.True(t, Close(math.Inf(1), math.Inf(1), DefaultTolerance))
	assert.False(t, Close(math.Inf(1), math.Inf(-1), DefaultTolerance))
	assert.False(t, Close(math.Inf(1), 1e308, DefaultTolerance))
	assert.Empty(t, Diff(map[int64]float64{5: math.Inf(1)}, map[int64]float64{5: math.Inf(1)}, DefaultTolerance))
}
