package labdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_NoChanges(t *testing.T) {
	p := validPayload()
	assert.Empty(t, Diff(p, p.Clone()))
}

func TestDiff_ValueChange(t *testing.T) {
	prev := validPayload()
	next := prev.Clone()
	next.Measurements[0].NumericValue = floatPtr(100.0)

	changes := Diff(prev, next)
	require.Len(t, changes, 1)
	assert.Equal(t, "measurements[0].numeric_value", changes[0].Path)
	assert.Equal(t, "95.0", changes[0].Old)
	assert.Equal(t, "100.0", changes[0].New)
}

func TestDiff_TopLevelMetadata(t *testing.T) {
	prev := validPayload()
	next := prev.Clone()
	next.PerformingLab = "Quest West"
	d := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	next.ReportDate = &d

	changes := Diff(prev, next)
	require.Len(t, changes, 2)

	assert.Equal(t, "report_date", changes[0].Path)
	assert.Equal(t, "", changes[0].Old)
	assert.Equal(t, "2024-01-16T00:00:00+00:00", changes[0].New)

	assert.Equal(t, "performing_lab", changes[1].Path)
	assert.Equal(t, "Quest West", changes[1].New)
}

func TestDiff_AddedMeasurement(t *testing.T) {
	prev := validPayload()
	next := prev.Clone()
	next.Measurements = append(next.Measurements, Measurement{
		OriginalAnalyteName: "Sodium",
		ValueType:           ValueNumeric,
		NumericValue:        floatPtr(140.0),
		OriginalUnit:        "mmol/l",
		CollectionDateTime:  time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
	})

	changes := Diff(prev, next)
	require.NotEmpty(t, changes)
	for _, c := range changes {
		assert.Contains(t, c.Path, "measurements[1].")
		assert.Empty(t, c.Old, "added measurement fields have no old value")
		assert.NotEmpty(t, c.New)
	}
}

func TestDiff_RemovedMeasurement(t *testing.T) {
	prev := validPayload()
	prev.Measurements = append(prev.Measurements, Measurement{
		OriginalAnalyteName: "Sodium",
		ValueType:           ValueNumeric,
		NumericValue:        floatPtr(140.0),
		CollectionDateTime:  time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC),
	})
	next := validPayload()

	changes := Diff(prev, next)
	require.NotEmpty(t, changes)
	for _, c := range changes {
		assert.Contains(t, c.Path, "measurements[1].")
		assert.Empty(t, c.New, "removed measurement fields have no new value")
	}
}

func TestDiff_DeterministicOrder(t *testing.T) {
	prev := validPayload()
	next := prev.Clone()
	next.Measurements[0].NumericValue = floatPtr(101.0)
	next.Measurements[0].OriginalUnit = "mmol/l"
	next.SubjectIdentifier = "EXT-9"

	first := Diff(prev, next)
	second := Diff(prev, next)
	require.Equal(t, first, second)

	// Report-level changes come before measurement changes.
	assert.Equal(t, "subject_identifier", first[0].Path)
}
