package wave

import jsoniter "github.com/json-iterator/go"

var substanceJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// SubstanceKind tags the Substance tagged union.
type SubstanceKind string

const (
	SubstanceEmpty    SubstanceKind = "Empty"
	SubstanceText     SubstanceKind = "Text"
	SubstanceBin      SubstanceKind = "Bin"
	SubstanceFormErrs SubstanceKind = "FormErrs"
	SubstanceHyper    SubstanceKind = "Hyper"
	SubstanceUltra    SubstanceKind = "UltraWave"
	SubstanceErrors   SubstanceKind = "Errors"
	SubstanceList     SubstanceKind = "List"
	SubstanceMap      SubstanceKind = "Map"
)

// Substance is a wave body: a tagged union of the payload shapes a wave
// can carry. Exactly the field(s) matching Kind are meaningful.
type Substance struct {
	Kind SubstanceKind `json:"kind"`

	Text     string            `json:"text,omitempty"`
	Bin      []byte            `json:"bin,omitempty"`
	FormErrs map[string]string `json:"form_errs,omitempty"`
	Hyper    map[string]string `json:"hyper,omitempty"`
	Ultra    *Wave             `json:"ultra,omitempty"` // boxed inner wave
	Errors   []string          `json:"errors,omitempty"`
	List     []Substance       `json:"list,omitempty"`
	Map      map[string]Substance `json:"map,omitempty"`
}

// Empty is the zero-payload substance.
func Empty() Substance { return Substance{Kind: SubstanceEmpty} }

// TextSubstance wraps a plain string payload.
func TextSubstance(s string) Substance { return Substance{Kind: SubstanceText, Text: s} }

// BinSubstance wraps an opaque byte payload.
func BinSubstance(b []byte) Substance { return Substance{Kind: SubstanceBin, Bin: b} }

// UltraWaveSubstance boxes an entire wave as another wave's body (used for
// Transport/Hop signal wrapping).
func UltraWaveSubstance(w Wave) Substance { return Substance{Kind: SubstanceUltra, Ultra: &w} }

// ErrorsSubstance wraps a list of error messages.
func ErrorsSubstance(errs ...string) Substance { return Substance{Kind: SubstanceErrors, Errors: errs} }

// AsUltraWave unwraps a boxed inner wave, returning an ExpectedSubstance-shaped
// error via the ok bool on mismatch; callers needing a *spaceerr.SpaceErr
// should check ok and construct it themselves to avoid an import cycle.
func (s Substance) AsUltraWave() (Wave, bool) {
	if s.Kind != SubstanceUltra || s.Ultra == nil {
		return Wave{}, false
	}
	return *s.Ultra, true
}

// AsText unwraps a text substance.
func (s Substance) AsText() (string, bool) {
	if s.Kind != SubstanceText {
		return "", false
	}
	return s.Text, true
}

// MarshalJSON renders the substance via json-iterator's reflection-based
// encoder, keeping the tagged-union shape self-describing on the wire.
func (s Substance) MarshalJSON() ([]byte, error) {
	type alias Substance
	return substanceJSON.Marshal(alias(s))
}

// UnmarshalJSON restores a substance from its self-describing wire form.
func (s *Substance) UnmarshalJSON(data []byte) error {
	type alias Substance
	var a alias
	if err := substanceJSON.Unmarshal(data, &a); err != nil {
		return err
	}
	*s = Substance(a)
	return nil
}
