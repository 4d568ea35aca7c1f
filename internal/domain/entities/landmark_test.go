package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLandmarkID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    LandmarkID
		wantErr bool
	}{
		{name: "number", input: `7`, want: "7"},
		{name: "string", input: `"abc-9"`, want: "abc-9"},
		{name: "null", input: `null`, want: ""},
		{name: "object", input: `{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id LandmarkID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestSuggestion_DecodesServerPayload(t *testing.T) {
	payload := `[{"landmark_id": 7, "landmark_name": "Arch", "landmark_image": "https://i.example.com/a.png"},
		{"landmark_id": 9, "landmark_name": "Tower"}]`

	var suggestions []Suggestion
	require.NoError(t, json.Unmarshal([]byte(payload), &suggestions))

	require.Len(t, suggestions, 2)
	assert.Equal(t, LandmarkID("7"), suggestions[0].LandmarkID)
	assert.Equal(t, "Arch", suggestions[0].Name)
	assert.Equal(t, "https://i.example.com/a.png", suggestions[0].Image)
	assert.Equal(t, LandmarkID("9"), suggestions[1].LandmarkID)
	assert.Empty(t, suggestions[1].Image)
}

func TestNewLandmarkContext(t *testing.T) {
	assert.True(t, NewLandmarkContext(" 12 ").Valid())
	assert.Equal(t, LandmarkID("12"), NewLandmarkContext(" 12 ").LandmarkID)
	assert.False(t, NewLandmarkContext("   ").Valid())
}
