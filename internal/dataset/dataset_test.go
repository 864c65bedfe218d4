package dataset

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BisoyJan/signassist-a-touchless-interactive/internal/landmark"
)

func sample(label string, nFrames, width int) landmark.Sample {
	frames := make([][]float64, nFrames)
	for i := range frames {
		frames[i] = make([]float64, width)
		frames[i][0] = float64(i)
	}
	return landmark.Sample{Label: label, Landmarks: frames}
}

func TestPrepare_VocabularySortedAndIndexed(t *testing.T) {
	samples := []landmark.Sample{
		sample("thanks", 5, landmark.FeaturesPerFrame),
		sample("hello", 5, landmark.FeaturesPerFrame),
		sample("hello", 5, landmark.FeaturesPerFrame),
	}
	ds, err := Prepare(samples, 5)
	require.NoError(t, err)

	assert.Equal(t, []string{"hello", "thanks"}, ds.Labels)
	assert.Equal(t, []int{1, 0, 0}, ds.Y)
	assert.Equal(t, []int{2, 1}, ds.ClassCounts())
}

func TestPrepare_PadsShortSequences(t *testing.T) {
	ds, err := Prepare([]landmark.Sample{sample("a", 3, landmark.FeaturesPerFrame)}, 10)
	require.NoError(t, err)
	require.Len(t, ds.X[0], 10)
	// Last real frame repeated.
	assert.Equal(t, 2.0, ds.X[0][9][0])
	assert.Equal(t, 2.0, ds.X[0][3][0])
}

func TestPrepare_DownsamplesLongSequences(t *testing.T) {
	ds, err := Prepare([]landmark.Sample{sample("a", 100, landmark.FeaturesPerFrame)}, 10)
	require.NoError(t, err)
	require.Len(t, ds.X[0], 10)
	assert.Equal(t, 0.0, ds.X[0][0][0])
	assert.Equal(t, 99.0, ds.X[0][9][0])
	// Strictly increasing coverage of the stream.
	for i := 1; i < 10; i++ {
		assert.Greater(t, ds.X[0][i][0], ds.X[0][i-1][0])
	}
}

func TestPrepare_UpgradesAndSkips(t *testing.T) {
	samples := []landmark.Sample{
		sample("a", 5, landmark.FeaturesPerHand),  // upgraded
		sample("a", 5, 100),                       // skipped, bad width
		{Label: "a"},                              // skipped, empty
		sample("b", 5, landmark.FeaturesPerFrame), // kept
	}
	ds, err := Prepare(samples, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())
	assert.Len(t, ds.X[0][0], landmark.FeaturesPerFrame)
}

func TestPrepare_AllUnusableFails(t *testing.T) {
	_, err := Prepare([]landmark.Sample{sample("a", 5, 7)}, 5)
	assert.Error(t, err)
}

func TestStratifiedSplit_PreservesClassBalance(t *testing.T) {
	var samples []landmark.Sample
	for i := 0; i < 40; i++ {
		samples = append(samples, sample("a", 5, landmark.FeaturesPerFrame))
	}
	for i := 0; i < 20; i++ {
		samples = append(samples, sample("b", 5, landmark.FeaturesPerFrame))
	}
	ds, err := Prepare(samples, 5)
	require.NoError(t, err)

	train, test, err := StratifiedSplit(ds, 0.25, 42)
	require.NoError(t, err)

	assert.Equal(t, 60, train.Len()+test.Len())
	assert.Equal(t, []int{10, 5}, test.ClassCounts())
	assert.Equal(t, []int{30, 15}, train.ClassCounts())
}

func TestStratifiedSplit_Deterministic(t *testing.T) {
	var samples []landmark.Sample
	for i := 0; i < 10; i++ {
		samples = append(samples, sample("a", 5, landmark.FeaturesPerFrame))
		samples = append(samples, sample("b", 5, landmark.FeaturesPerFrame))
	}
	ds, err := Prepare(samples, 5)
	require.NoError(t, err)

	_, test1, err := StratifiedSplit(ds, 0.3, 7)
	require.NoError(t, err)
	_, test2, err := StratifiedSplit(ds, 0.3, 7)
	require.NoError(t, err)
	assert.Equal(t, test1.Y, test2.Y)
}

func TestStratifiedSplit_TinyClassKeepsBothSides(t *testing.T) {
	samples := []landmark.Sample{
		sample("a", 5, landmark.FeaturesPerFrame),
		sample("a", 5, landmark.FeaturesPerFrame),
		sample("b", 5, landmark.FeaturesPerFrame),
		sample("b", 5, landmark.FeaturesPerFrame),
	}
	ds, err := Prepare(samples, 5)
	require.NoError(t, err)

	train, test, err := StratifiedSplit(ds, 0.2, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1}, test.ClassCounts())
	assert.Equal(t, []int{1, 1}, train.ClassCounts())
}

func TestBatches(t *testing.T) {
	batches := Batches(10, 4, nil)
	require.Len(t, batches, 3)
	assert.Equal(t, []int{0, 1, 2, 3}, batches[0])
	assert.Len(t, batches[2], 2)

	shuffled := Batches(10, 4, rand.New(rand.NewSource(3)))
	var flat []int
	for _, b := range shuffled {
		flat = append(flat, b...)
	}
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, flat)
}
