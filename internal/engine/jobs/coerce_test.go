package jobs

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

func TestNormalizeValue(t *testing.T) {
	assert.Equal(t, int64(81234567890123), normalizeValue(json.Number("81234567890123")))
	assert.Equal(t, 4.5, normalizeValue(json.Number("4.5")))
	assert.Equal(t, int64(3), normalizeValue(3.0))
	assert.Equal(t, "x", normalizeValue("x"))
}

func TestToInt64(t *testing.T) {
	tests := []struct {
		in      any
		want    int64
		ok      bool
		wantErr bool
	}{
		{"6304", 6304, true, false},
		{int64(7), 7, true, false},
		{12.0, 12, true, false},
		{nil, 0, false, false},
		{"", 0, false, false},
		{"abc", 0, false, true},
		{1.5, 0, false, true},
	}
	for _, tt := range tests {
		got, ok, err := toInt64(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
	}
}

func TestToTime(t *testing.T) {
	got, ok, err := toTime("2024-05-01T01:02:03Z")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 1, 1, 2, 3, 0, time.UTC), got)

	_, ok, err = toTime("")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = toTime("next tuesday")
	assert.Error(t, err)
}

func TestToBool(t *testing.T) {
	b, ok, err := toBool("true")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, b)

	_, ok, err = toBool(nil)
	require.NoError(t, err)
	assert.False(t, ok, "null stays null")
}

func TestCoerceColumnError(t *testing.T) {
	f := &frame.Frame{Columns: []string{"advertiser_id"}, Rows: []frame.Row{{"advertiser_id": "n/a"}}}
	err := coerceColumn(f, "advertiser_id", toInt64)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "advertiser_id")

	assert.NoError(t, coerceColumn(f, "absent", toInt64))
}

func TestNormalizeNulls(t *testing.T) {
	f := &frame.Frame{
		Columns: []string{"a", "b", "c", "d", "e", "f"},
		Rows: []frame.Row{{
			"a": "",
			"b": "[]",
			"c": "{}",
			"d": []string{},
			"e": map[string]any{},
			"f": "keep",
		}},
	}
	normalizeNulls(f)
	for _, c := range []string{"a", "b", "c", "d", "e"} {
		assert.Nil(t, f.Rows[0][c], c)
	}
	assert.Equal(t, "keep", f.Rows[0]["f"])
}
