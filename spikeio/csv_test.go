package spikeio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uyouii/zeta-algorithms/common"
	"github.com/uyouii/zeta-algorithms/model"
	"github.com/uyouii/zeta-algorithms/zeta"
)

func TestLoadSpikeTimesFromReader(t *testing.T) {
	spikes, err := LoadSpikeTimesFromReader(strings.NewReader("0.1\n0.25\n# comment\n1.5\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.25, 1.5}, spikes)
}

func TestLoadSpikeTimesHeaderDetected(t *testing.T) {
	spikes, err := LoadSpikeTimesFromReader(strings.NewReader("spike_time,unit\n0.1,3\n0.2,3\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2}, spikes)
}

func TestLoadSpikeTimesExplicitHeader(t *testing.T) {
	opts := DefaultCSVOptions()
	opts.HasHeader = true
	spikes, err := LoadSpikeTimesFromReader(strings.NewReader("1\n2\n3\n"), opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, spikes)
}

func TestLoadSpikeTimesInvalidValue(t *testing.T) {
	_, err := LoadSpikeTimesFromReader(strings.NewReader("0.1\nabc\n"), nil)
	assert.ErrorIs(t, err, common.ErrorInvalidValue)
}

func TestLoadEventTableFromReader(t *testing.T) {
	opts := DefaultCSVOptions()
	opts.Delimiter = ';'
	events, err := LoadEventTableFromReader(strings.NewReader("onset;offset\n1;1.5\n2;2.5\n"), opts)
	require.NoError(t, err)
	assert.Equal(t, model.EventTimes{{1, 1.5}, {2, 2.5}}, events)
}

func TestLoadEventTableTransposed(t *testing.T) {
	events, err := LoadEventTableFromReader(strings.NewReader("1,2,3,4\n1.5,2.5,3.5,4.5\n"), nil)
	require.NoError(t, err)
	assert.Equal(t, model.EventTimes{{1, 2, 3, 4}, {1.5, 2.5, 3.5, 4.5}}, events)

	onsets, err := zeta.EventOnsets(events)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, onsets)
}

func TestLoadEventTableErrors(t *testing.T) {
	events, err := LoadEventTableFromReader(strings.NewReader("1,1.5\n2\n"), nil)
	require.NoError(t, err)
	_, err = zeta.EventOnsets(events)
	assert.ErrorIs(t, err, common.ErrorEventShape)

	events, err = LoadEventTableFromReader(strings.NewReader("1,2,3\n4,5,6\n7,8,9\n"), nil)
	require.NoError(t, err)
	_, err = zeta.EventOnsets(events)
	assert.ErrorIs(t, err, common.ErrorEventShape)

	_, err = LoadEventTableFromReader(strings.NewReader("onset\n"), nil)
	assert.ErrorIs(t, err, common.ErrorNoEvents)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	spikePath := filepath.Join(dir, "spikes.csv")
	eventPath := filepath.Join(dir, "events.csv")
	require.NoError(t, os.WriteFile(spikePath, []byte("0.5\n1.5\n"), 0o600))
	require.NoError(t, os.WriteFile(eventPath, []byte("0\n1\n"), 0o600))

	spikes, err := LoadSpikeTimes(spikePath, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 1.5}, spikes)

	events, err := LoadEventTable(eventPath, nil)
	require.NoError(t, err)
	assert.Equal(t, model.OnsetsOnly([]float64{0, 1}), events)

	_, err = LoadSpikeTimes(filepath.Join(dir, "missing.csv"), nil)
	assert.Error(t, err)
}
