package splintr

// Layout fixes the identifier space of one variant. Base vocabulary ids
// occupy [0, BaseSize); the externally-reserved range, opaque to this
// package, is [BaseSize, BaseSize+ReservedSize); the NumMarkers marker
// slots follow immediately after. The three ranges are contiguous and
// pairwise disjoint by construction.
type Layout struct {
	BaseSize     uint32
	ReservedSize uint32
}

// ExtendedBase is the id of the marker at offset zero.
func (l Layout) ExtendedBase() uint32 { return l.BaseSize + l.ReservedSize }

// ExtendedEnd is one past the last marker id.
func (l Layout) ExtendedEnd() uint32 { return l.ExtendedBase() + NumMarkers }

// Classify names the range id falls in.
func (l Layout) Classify(id uint32) TokenClass {
	switch {
	case id < l.BaseSize:
		return ClassBase
	case id < l.ExtendedBase():
		return ClassReserved
	case id < l.ExtendedEnd():
		return ClassMarker
	default:
		return ClassInvalid
	}
}

// Per-variant layouts. The reserved ranges cover the 21 upstream
// special ids of each encoding (cl100k: 100256..100276, o200k:
// 199998..200018); markers start right after, which puts <|think|> at
// 100282 on cl100k and 200024 on o200k.
var variantLayouts = map[Variant]Layout{
	CL100KBase: {BaseSize: 100256, ReservedSize: 21},
	O200KBase:  {BaseSize: 199998, ReservedSize: 21},
}

// Layout returns the identifier layout of the variant.
func (v Variant) Layout() Layout { return variantLayouts[v] }
