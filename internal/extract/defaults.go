package extract

// DefaultExtractors returns the supported vendor format handlers in their
// conventional registration order. Order affects only log readability.
func DefaultExtractors() []Extractor {
	return []Extractor{
		BRI{},
		Jago{},
		Mandiri{},
		OVO{},
		PayPal{},
		SeaBank{},
	}
}
