package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racelab/pitwall/core"
)

const telemetryLines = `{"lap_number":1,"driver":"VER","compound":"MEDIUM","tire_age":1,"lap_time_seconds":98.1,"position":1,"gap_ahead_seconds":null,"gap_behind_seconds":2.1,"track_temp_c":31}
{"lap_number":1,"driver":"LEC","compound":"MEDIUM","tire_age":1,"lap_time_seconds":98.3,"position":2,"gap_ahead_seconds":2.1,"gap_behind_seconds":1.4,"track_temp_c":31}

{"lap_number":2,"driver":"VER","compound":"MEDIUM","tire_age":2,"lap_time_seconds":98.0,"position":1,"gap_ahead_seconds":null,"gap_behind_seconds":2.4,"track_temp_c":31}
{"lap_number":2,"driver":"LEC","compound":"MEDIUM","tire_age":2,"lap_time_seconds":98.4,"position":2,"gap_ahead_seconds":2.4,"gap_behind_seconds":1.2,"track_temp_c":31}
{"lap_number":3,"driver":"VER","compound":"MEDIUM","tire_age":3,"lap_time_seconds":97.9,"position":1,"gap_ahead_seconds":null,"gap_behind_seconds":2.6,"track_temp_c":31}
`

func TestJSONLSource_GroupsByLap(t *testing.T) {
	src := NewJSONLSource(strings.NewReader(telemetryLines))
	ctx := context.Background()

	lap1, err := src.Next(ctx)
	require.NoError(t, err)
	require.Len(t, lap1, 2)
	assert.Equal(t, 1, lap1[0].Lap)
	assert.Equal(t, "VER", lap1[0].Driver)
	assert.Equal(t, "LEC", lap1[1].Driver)
	require.NotNil(t, lap1[0].GapBehind)
	assert.Equal(t, 2.1, *lap1[0].GapBehind)
	assert.Nil(t, lap1[0].GapAhead)

	lap2, err := src.Next(ctx)
	require.NoError(t, err)
	require.Len(t, lap2, 2)
	assert.Equal(t, 2, lap2[0].Lap)

	lap3, err := src.Next(ctx)
	require.NoError(t, err)
	require.Len(t, lap3, 1)
	assert.Equal(t, 3, lap3[0].Lap)

	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
	// EOF is sticky.
	_, err = src.Next(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONLSource_EmptyStream(t *testing.T) {
	src := NewJSONLSource(strings.NewReader(""))
	_, err := src.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONLSource_MalformedLine(t *testing.T) {
	src := NewJSONLSource(strings.NewReader("{not json}\n"))
	_, err := src.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestJSONLSource_LapGoingBackwards(t *testing.T) {
	lines := `{"lap_number":5,"driver":"VER","compound":"MEDIUM","tire_age":5,"lap_time_seconds":98.0,"position":1,"gap_ahead_seconds":null,"gap_behind_seconds":null,"track_temp_c":30}
{"lap_number":4,"driver":"VER","compound":"MEDIUM","tire_age":4,"lap_time_seconds":98.0,"position":1,"gap_ahead_seconds":null,"gap_behind_seconds":null,"track_temp_c":30}
`
	src := NewJSONLSource(strings.NewReader(lines))

	_, err := src.Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lap 4 after lap 5")
}

func TestJSONLSource_RecordFieldsRoundTrip(t *testing.T) {
	src := NewJSONLSource(strings.NewReader(telemetryLines))

	lap1, err := src.Next(context.Background())
	require.NoError(t, err)

	rec := lap1[0]
	assert.Equal(t, core.CompoundMedium, rec.Compound)
	assert.Equal(t, 98.1, rec.LapTimeSeconds)
	assert.Equal(t, 31.0, rec.TrackTempC)
	assert.NoError(t, rec.Validate())
}
