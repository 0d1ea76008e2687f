package enums

// MaterialCategory tags a marketing material for display grouping.
// Unrecognized tags are legal and land in the catch-all "others" bucket,
// so there is no IsValid/Parse pair here.
type MaterialCategory string

const (
	MaterialFliers   MaterialCategory = "FLIERS"
	MaterialBackdrop MaterialCategory = "BACK-DROP"
	MaterialPoster   MaterialCategory = "POSTER"
	MaterialRollup   MaterialCategory = "ROLL-UP"
	MaterialBrochure MaterialCategory = "BROCHURE"
)

// String implements fmt.Stringer.
func (m MaterialCategory) String() string {
	return string(m)
}
