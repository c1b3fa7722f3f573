package wave

import jsoniter "github.com/json-iterator/go"

var waveJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalJSON renders the wave via json-iterator's reflection-based
// encoder. Waves, bodies, and hyper-substances all round-trip through this
// same self-describing tagged-enum shape (spec.md §5, Wave serialization).
func (w Wave) MarshalJSON() ([]byte, error) {
	type alias Wave
	return waveJSON.Marshal(alias(w))
}

// UnmarshalJSON restores a wave from its self-describing wire form.
func (w *Wave) UnmarshalJSON(data []byte) error {
	type alias Wave
	var a alias
	if err := waveJSON.Unmarshal(data, &a); err != nil {
		return err
	}
	*w = Wave(a)
	return nil
}
