package state

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRGB(t *testing.T) {
	tests := []struct {
		in      string
		want    RGB
		wantErr bool
	}{
		{in: "#FF0000", want: Red},
		{in: "00ff00", want: Green},
		{in: "#00F", want: Blue},
		{in: " #ffff00 ", want: Yellow},
		{in: "#12345", wantErr: true},
		{in: "#GGGGGG", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRGB(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStrokeJSONUsesHexColours(t *testing.T) {
	s := Stroke{ID: "a", Points: []Point{{X: 1, Y: 2}}, Color: Red, Radius: 5}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"color":"#FF0000"`)

	var back Stroke
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)
}

func TestDrawingStrokesAreCopies(t *testing.T) {
	var d Drawing
	s := d.Begin(Point{X: 1, Y: 1}, Black, 5)
	s.Points = append(s.Points, Point{X: 2, Y: 2})

	got := d.Strokes()
	require.Len(t, got, 1)
	got[0].Points[0].X = 99

	assert.Equal(t, 1.0, d.Last().Points[0].X)
	assert.Len(t, d.Last().Points, 2)

	d.Reset()
	assert.Empty(t, d.Strokes())
	assert.Nil(t, d.Last())
}

func TestNewStrokeIDsAreUniqueUUIDs(t *testing.T) {
	a := NewStroke(Point{}, Black, 5)
	b := NewStroke(Point{}, Black, 5)
	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}
