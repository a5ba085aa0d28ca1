package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeLabeled(nPos, nNeg int) ([][]float64, []int) {
	X := make([][]float64, 0, nPos+nNeg)
	y := make([]int, 0, nPos+nNeg)
	for i := 0; i < nPos; i++ {
		X = append(X, []float64{float64(i), 1})
		y = append(y, 1)
	}
	for i := 0; i < nNeg; i++ {
		X = append(X, []float64{float64(nPos + i), 0})
		y = append(y, 0)
	}
	return X, y
}

func countOnes(y []int) int {
	count := 0
	for _, label := range y {
		count += label
	}
	return count
}

func TestSplitStratified(t *testing.T) {
	X, y := makeLabeled(25, 25)
	splitter := NewStratifiedSplitter(0.2, 1)

	XTrain, XTest, yTrain, yTest, err := splitter.Split(X, y, "train/test")
	require.NoError(t, err)

	assert.Len(t, XTest, 10)
	assert.Len(t, XTrain, 40)
	assert.Equal(t, 5, countOnes(yTest))
	assert.Equal(t, 20, countOnes(yTrain))
}

func TestSplitDisjointUnion(t *testing.T) {
	X, y := makeLabeled(25, 25)
	splitter := NewStratifiedSplitter(0.2, 1)

	XTrain, XTest, _, _, err := splitter.Split(X, y, "train/test")
	require.NoError(t, err)

	seen := make(map[float64]int)
	for _, row := range XTrain {
		seen[row[0]]++
	}
	for _, row := range XTest {
		seen[row[0]]++
	}

	assert.Len(t, seen, 50, "train and test must cover every row")
	for id, count := range seen {
		assert.Equal(t, 1, count, "row %v appears in both splits", id)
	}
}

func TestSplitDeterministic(t *testing.T) {
	X, y := makeLabeled(25, 25)

	_, XTest1, _, yTest1, err := NewStratifiedSplitter(0.2, 7).Split(X, y, "train/test")
	require.NoError(t, err)
	_, XTest2, _, yTest2, err := NewStratifiedSplitter(0.2, 7).Split(X, y, "train/test")
	require.NoError(t, err)

	assert.Equal(t, XTest1, XTest2)
	assert.Equal(t, yTest1, yTest2)
}

func TestSplitCopiesRows(t *testing.T) {
	X, y := makeLabeled(25, 25)
	XTrain, _, _, _, err := NewStratifiedSplitter(0.2, 1).Split(X, y, "train/test")
	require.NoError(t, err)

	original := X[0][1]
	XTrain[0][1] = -99
	assert.Equal(t, original, X[0][1], "split must not alias input rows")
}

func TestSplitInsufficientBalance(t *testing.T) {
	// Two positives: int(2 * 0.2) = 0 test rows for the positive class.
	X, y := makeLabeled(2, 48)

	_, _, _, _, err := NewStratifiedSplitter(0.2, 1).Split(X, y, "train/test")
	require.Error(t, err)

	var balErr *InsufficientClassBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, 1, balErr.Class)
	assert.Equal(t, "train/test", balErr.Stage)
}

func TestSplitRejectsBadFraction(t *testing.T) {
	X, y := makeLabeled(10, 10)

	_, _, _, _, err := NewStratifiedSplitter(0, 1).Split(X, y, "train/test")
	assert.Error(t, err)
	_, _, _, _, err = NewStratifiedSplitter(1, 1).Split(X, y, "train/test")
	assert.Error(t, err)
}
