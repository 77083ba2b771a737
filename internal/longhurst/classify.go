package longhurst

// Outcome is the resolution of a classification. NoMatch and Ambiguous
// are ordinary results, not errors: callers need a fallback policy (mark
// unclassified) rather than an error path.
type Outcome string

const (
	OutcomeMatched   Outcome = "matched"
	OutcomeNoMatch   Outcome = "no_match"
	OutcomeAmbiguous Outcome = "ambiguous"
)

// Candidate identifies a province considered during classification.
type Candidate struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Result is the outcome of classifying one coordinate. Code and Num are
// set only when Outcome is OutcomeMatched. Matches holds every province
// whose crossing count was odd (two or more means Ambiguous), and
// Candidates holds the bounding-box pre-filter survivors, kept for
// diagnostic output; neither affects the classification itself.
type Result struct {
	Outcome    Outcome     `json:"outcome"`
	Code       string      `json:"code,omitempty"`
	Num        int         `json:"num,omitempty"`
	Matches    []Candidate `json:"matches,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Classifier assigns coordinates to provinces against a fixed boundary
// store and registry. It holds no mutable state: Classify is a pure
// function of its inputs and is safe for concurrent use.
type Classifier struct {
	store    *Store
	registry *Registry
}

// NewClassifier builds a classifier over an already-loaded boundary
// store. The store must be constructed by the caller; the classifier
// never loads boundary data itself.
func NewClassifier(store *Store, registry *Registry) *Classifier {
	return &Classifier{store: store, registry: registry}
}

// Classify resolves the province containing (lon, lat), both in degrees
// with longitude easterly in [-180, 180]. Out-of-range inputs are not
// rejected; they flow through the same arithmetic.
//
// The returned error is non-nil only when a single matching province's
// code has no entry in the registry (ErrUnknownProvince); NoMatch and
// Ambiguous are reported through Result.Outcome.
func (c *Classifier) Classify(lon, lat float64) (Result, error) {
	var res Result

	// Bounding-box pre-filter. Necessary, not sufficient: it only limits
	// how many rings the crossings test walks.
	var candidates []ProvinceBoundary
	c.store.Each(func(b ProvinceBoundary) {
		if b.BBox.Contains(lon, lat) {
			candidates = append(candidates, b)
			res.Candidates = append(res.Candidates, Candidate{ID: b.ID, Code: b.ProvCode, Name: b.ProvName})
		}
	})

	for _, b := range candidates {
		if crossings(b, lon, lat)%2 == 1 {
			res.Matches = append(res.Matches, Candidate{ID: b.ID, Code: b.ProvCode, Name: b.ProvName})
		}
	}

	switch len(res.Matches) {
	case 0:
		// On land, in no defined province, or a boundary edge case.
		res.Outcome = OutcomeNoMatch
		return res, nil
	case 1:
		num, err := c.registry.NumForCode(res.Matches[0].Code)
		if err != nil {
			return res, err
		}
		res.Outcome = OutcomeMatched
		res.Code = res.Matches[0].Code
		res.Num = num
		return res, nil
	default:
		res.Outcome = OutcomeAmbiguous
		return res, nil
	}
}

// crossings counts eastward-ray boundary crossings for one feature. All
// rings contribute to a single count, and only explicit consecutive
// vertex pairs are tested; rings are not closed by wrapping the last
// vertex back to the first. The longitude test uses only the second
// vertex of the edge rather than the true edge/ray intersection; this
// simplified rule is kept exactly as the upstream COORDS2LONGHURST tool
// computes it, so results stay bit-compatible on the same boundary data.
func crossings(b ProvinceBoundary, lon, lat float64) int {
	n := 0
	for _, ring := range b.Rings {
		for i := 0; i+1 < len(ring); i++ {
			straddles := (ring[i].Lat >= lat && ring[i+1].Lat <= lat) ||
				(ring[i].Lat <= lat && ring[i+1].Lat >= lat)
			if straddles && lon <= ring[i+1].Lon {
				n++
			}
		}
	}
	return n
}
