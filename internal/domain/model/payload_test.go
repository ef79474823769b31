package model_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestNormalize_Shapes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantIDs []float64
	}{
		{name: "bare list", raw: `[{"id":1},{"id":2}]`, wantIDs: []float64{1, 2}},
		{name: "response wrapper", raw: `{"response":[{"id":3}]}`, wantIDs: []float64{3}},
		{name: "data wrapper", raw: `{"data":[{"id":4},{"id":5}]}`, wantIDs: []float64{4, 5}},
		{name: "empty object", raw: `{}`, wantIDs: []float64{}},
		{name: "null", raw: `null`, wantIDs: []float64{}},
		{name: "non-object elements dropped", raw: `[1,"two",{"id":6},null,[7]]`, wantIDs: []float64{6}},
		{name: "scalar", raw: `42`, wantIDs: []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := model.Normalize(decode(t, tt.raw))

			require.NotNil(t, got)
			ids := make([]float64, 0, len(got))
			for _, r := range got {
				ids = append(ids, r["id"].(float64))
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestParsePayload_KeyPriority(t *testing.T) {
	p := model.ParsePayload(decode(t, `{"links":[{"id":2}],"response":[{"id":1}],"data":[{"id":9}]}`))

	assert.Equal(t, model.ShapeWrapped, p.Shape)
	assert.Equal(t, "response", p.Key)
	require.Len(t, p.Items, 1)
	assert.Equal(t, float64(1), p.Items[0]["id"])
}

func TestParsePayload_SkipsNonListCandidates(t *testing.T) {
	// "response" is an object here, so the next list-valued key wins.
	p := model.ParsePayload(decode(t, `{"response":{"token":"x"},"items":[{"id":8}]}`))

	assert.Equal(t, model.ShapeWrapped, p.Shape)
	assert.Equal(t, "items", p.Key)
	require.Len(t, p.Items, 1)
}

func TestParsePayload_Unrecognized(t *testing.T) {
	p := model.ParsePayload(decode(t, `{"response":"nope"}`))

	assert.Equal(t, model.ShapeUnrecognized, p.Shape)
	assert.Empty(t, p.Items)
	assert.Equal(t, "unrecognized", p.Shape.String())
}
