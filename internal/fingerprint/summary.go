package fingerprint

import "Go2NetPrint/internal/model"

// summaryOrder is the row order of the Summary Table.
var summaryOrder = []model.MarkerKind{
	model.KindHtmlDocument,
	model.KindTotalBytesOut,
	model.KindTotalBytesIn,
	model.KindUniqueSizesOut,
	model.KindUniqueSizesIn,
	model.KindInOutRatio,
	model.KindPacketCountOut,
	model.KindPacketCountIn,
}

// Summarize appends the size diversity, ratio and packet count markers to the
// decorated sequence and returns them separately as well.
func Summarize(seq []model.Marker) ([]model.Marker, []model.Marker, error) {
	uniqueOut := make(map[int]struct{})
	uniqueIn := make(map[int]struct{})
	var countOut, countIn int
	for _, m := range seq {
		switch m.Kind {
		case model.KindOutgoing:
			uniqueOut[m.Value] = struct{}{}
			countOut++
		case model.KindIncoming:
			uniqueIn[m.Value] = struct{}{}
			countIn++
		}
	}
	if countIn == 0 {
		return nil, nil, ErrDivisionByZero
	}

	tail := []model.Marker{
		{Kind: model.KindUniqueSizesOut, Value: Quantize(len(uniqueOut), uniqueUnit, uniqueBucket)},
		{Kind: model.KindUniqueSizesIn, Value: Quantize(len(uniqueIn), uniqueUnit, uniqueBucket)},
		{Kind: model.KindInOutRatio, Ratio: QuantizeRatio(float64(countOut) / float64(countIn))},
		{Kind: model.KindPacketCountOut, Value: Quantize(countOut, countUnit, countBucket)},
		{Kind: model.KindPacketCountIn, Value: Quantize(countIn, countUnit, countBucket)},
	}
	out := make([]model.Marker, len(seq), len(seq)+len(tail))
	copy(out, seq)
	return append(out, tail...), tail, nil
}

// Table builds the Summary Table from the whole-trace markers, one row per
// kind in the fixed table order. Kinds that are not part of the table are
// ignored, and a later marker of the same kind does not replace an earlier one.
func Table(markers []model.Marker) []model.SummaryRow {
	byKind := make(map[model.MarkerKind]model.Marker, len(markers))
	for _, m := range markers {
		if _, seen := byKind[m.Kind]; !seen {
			byKind[m.Kind] = m
		}
	}
	rows := make([]model.SummaryRow, 0, len(summaryOrder))
	for _, k := range summaryOrder {
		if m, ok := byKind[k]; ok {
			rows = append(rows, model.SummaryRow{Kind: k, Value: m.Text()})
		}
	}
	return rows
}

// Label flattens the decorated sequence to packets, size markers and number
// markers, labeled by category and numbered from 1.
func Label(seq []model.Marker) []model.LabeledValue {
	var out []model.LabeledValue
	for _, m := range seq {
		var label string
		switch m.Kind {
		case model.KindOutgoing, model.KindIncoming:
			label = model.LabelSizeAndDirection
		case model.KindRunCount:
			label = model.LabelNumberMarker
		case model.KindSizeBurst:
			label = model.LabelSizeMarker
		default:
			continue
		}
		out = append(out, model.LabeledValue{Index: len(out) + 1, Label: label, Value: m.Signed()})
	}
	return out
}
