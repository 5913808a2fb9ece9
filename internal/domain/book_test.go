package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"want-to-read", StatusWantToRead, false},
		{"wishlist", StatusWantToRead, false},
		{"Reading", StatusReading, false},
		{" completed ", StatusCompleted, false},
		{"read", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_DecodesLegacyLabel(t *testing.T) {
	var b Book
	require.NoError(t, json.Unmarshal([]byte(`{"title":"T","author":"A","status":"wishlist"}`), &b))

	assert.Equal(t, StatusWantToRead, b.Status)

	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"status":"want-to-read"`)
}

func TestBook_ProgressPercent(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    int
	}{
		{"half", 150, 300, 50},
		{"rounds", 1, 3, 33},
		{"rounds up", 2, 3, 67},
		{"done", 300, 300, 100},
		{"zero total", 10, 0, 0},
		{"over total clamps", 400, 300, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Book{CurrentPage: tt.current, TotalPages: tt.total}
			assert.Equal(t, tt.want, b.ProgressPercent())
		})
	}
}

func TestBook_ShowsProgress(t *testing.T) {
	assert.False(t, (&Book{Status: StatusWantToRead, CurrentPage: 20}).ShowsProgress())
	assert.True(t, (&Book{Status: StatusReading}).ShowsProgress())
	assert.True(t, (&Book{Status: StatusCompleted}).ShowsProgress())
}

func TestBook_InRange(t *testing.T) {
	b := &Book{TotalPages: 300}

	assert.True(t, b.InRange(0))
	assert.True(t, b.InRange(300))
	assert.False(t, b.InRange(-1))
	assert.False(t, b.InRange(301))
}

func TestBook_CloneIsDeep(t *testing.T) {
	rating := 4.5
	done := time.Now()
	b := &Book{ID: "book-1", Rating: &rating, CompletedDate: &done}

	c := b.Clone()
	*c.Rating = 1
	*c.CompletedDate = done.Add(time.Hour)

	assert.Equal(t, 4.5, *b.Rating)
	assert.Equal(t, done, *b.CompletedDate)
}
