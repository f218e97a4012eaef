// Package codec converts fingerprints to and from protobuf Struct messages,
// the payload carried over NATS and returned by the API.
package codec

import (
	"fmt"

	"Go2NetPrint/internal/fingerprint"
	"Go2NetPrint/internal/model"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// ToProto converts a fingerprint into a protobuf Struct.
func ToProto(fp *model.Fingerprint) (*structpb.Struct, error) {
	markers := make([]interface{}, len(fp.Markers))
	for i, m := range fp.Markers {
		entry := map[string]interface{}{"kind": m.Kind.String()}
		if m.Kind == model.KindInOutRatio {
			entry["value"] = m.Ratio
		} else {
			entry["value"] = m.Value
		}
		markers[i] = entry
	}
	summary := make([]interface{}, len(fp.Summary))
	for i, row := range fp.Summary {
		summary[i] = map[string]interface{}{"marker": row.Kind.String(), "value": row.Value}
	}

	ts := timestamppb.New(fp.CreatedAt)
	s, err := structpb.NewStruct(map[string]interface{}{
		"id":   fp.ID.String(),
		"name": fp.Name,
		"created_at": map[string]interface{}{
			"seconds": ts.GetSeconds(),
			"nanos":   ts.GetNanos(),
		},
		"markers":    markers,
		"summary":    summary,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build fingerprint struct: %w", err)
	}
	return s, nil
}

// FromProto rebuilds a fingerprint from a Struct produced by ToProto. The
// labeled view is derived again from the markers.
func FromProto(s *structpb.Struct) (*model.Fingerprint, error) {
	fields := s.GetFields()
	fp := &model.Fingerprint{Name: fields["name"].GetStringValue()}

	id, err := uuid.Parse(fields["id"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("invalid fingerprint id: %w", err)
	}
	fp.ID = id

	created := fields["created_at"].GetStructValue().GetFields()
	ts := &timestamppb.Timestamp{
		Seconds: int64(created["seconds"].GetNumberValue()),
		Nanos:   int32(created["nanos"].GetNumberValue()),
	}
	if err := ts.CheckValid(); err != nil {
		return nil, fmt.Errorf("invalid fingerprint timestamp: %w", err)
	}
	fp.CreatedAt = ts.AsTime()

	for i, v := range fields["markers"].GetListValue().GetValues() {
		entry := v.GetStructValue().GetFields()
		kind, err := model.ParseMarkerKind(entry["kind"].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", i, err)
		}
		m := model.Marker{Kind: kind}
		if kind == model.KindInOutRatio {
			m.Ratio = entry["value"].GetStringValue()
		} else {
			m.Value = int(entry["value"].GetNumberValue())
		}
		fp.Markers = append(fp.Markers, m)
	}

	for i, v := range fields["summary"].GetListValue().GetValues() {
		entry := v.GetStructValue().GetFields()
		kind, err := model.ParseMarkerKind(entry["marker"].GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("summary row %d: %w", i, err)
		}
		fp.Summary = append(fp.Summary, model.SummaryRow{Kind: kind, Value: entry["value"].GetStringValue()})
	}

	fp.Labeled = fingerprint.Label(fp.Markers)
	return fp, nil
}

// Marshal encodes a fingerprint in protobuf binary format.
func Marshal(fp *model.Fingerprint) ([]byte, error) {
	s, err := ToProto(fp)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// Unmarshal decodes a fingerprint encoded by Marshal.
func Unmarshal(data []byte) (*model.Fingerprint, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fingerprint: %w", err)
	}
	return FromProto(&s)
}

// MarshalJSON encodes a fingerprint with the protobuf JSON mapping.
func MarshalJSON(fp *model.Fingerprint) ([]byte, error) {
	s, err := ToProto(fp)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(s)
}
