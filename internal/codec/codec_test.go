package codec

import (
	"encoding/json"
	"testing"

	"Go2NetPrint/internal/fingerprint"
	"Go2NetPrint/internal/model"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func sample(t *testing.T) *model.Fingerprint {
	t.Helper()
	fp, err := fingerprint.New(fingerprint.Options{}).Run("example.com", []model.Observation{
		{Direction: model.Outgoing, Size: 74},
		{Direction: model.Incoming, Size: 74},
		{Direction: model.Outgoing, Size: 420},
		{Direction: model.Incoming, Size: 1514},
		{Direction: model.Incoming, Size: 800},
		{Direction: model.Outgoing, Size: 300},
	})
	require.NoError(t, err)
	return fp
}

func TestMarshalRoundTrip(t *testing.T) {
	fp := sample(t)
	data, err := Marshal(fp)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	if diff := cmp.Diff(fp, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalJSON(t *testing.T) {
	fp := sample(t)
	data, err := MarshalJSON(fp)
	require.NoError(t, err)

	var doc struct {
		Name    string `json:"name"`
		Summary []struct {
			Marker string `json:"marker"`
			Value  string `json:"value"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "example.com", doc.Name)
	require.Len(t, doc.Summary, 8)
	assert.Equal(t, "H", doc.Summary[0].Marker)
	assert.Equal(t, "PP-", doc.Summary[5].Marker)
}

func TestFromProtoErrors(t *testing.T) {
	_, err := FromProto(&structpb.Struct{})
	assert.Error(t, err)

	s, err := ToProto(sample(t))
	require.NoError(t, err)
	s.Fields["markers"] = structpb.NewListValue(&structpb.ListValue{Values: []*structpb.Value{
		structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{"kind": structpb.NewStringValue("??")}}),
	}})
	_, err = FromProto(s)
	assert.ErrorContains(t, err, "unknown marker code")
}
