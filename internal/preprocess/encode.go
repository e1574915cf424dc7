// internal/preprocess/encode.go
package preprocess

import (
	"fmt"
	"strings"
)

// Codec encodes one categorical axis into the code its trained model expects.
// Implementations must be total: every input maps to a defined code, never an
// error, so garbage categoricals degrade to an "unknown" code instead of
// failing a clinical request.
type Codec interface {
	Encode(value interface{}) interface{}
}

// Gender codes. These match the training-time encoding of every gender-aware
// model in the catalog and must not change without retraining.
const (
	GenderMale    = 0
	GenderFemale  = 1
	GenderUnknown = 2
)

// EncodeGender encodes gender as an integer: male/m -> 0, female/f -> 1,
// anything else (nil included) -> 2. Case-insensitive. An already-encoded
// integer in {0,1,2} passes through unchanged.
func EncodeGender(value interface{}) int {
	switch v := value.(type) {
	case nil:
		return GenderUnknown
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "male", "m":
			return GenderMale
		case "female", "f":
			return GenderFemale
		default:
			return GenderUnknown
		}
	case int:
		if v == GenderMale || v == GenderFemale {
			return v
		}
		return GenderUnknown
	case float64:
		// JSON round-trips integers as float64.
		if v == float64(GenderMale) || v == float64(GenderFemale) {
			return int(v)
		}
		return GenderUnknown
	default:
		return GenderUnknown
	}
}

// GenderCodec adapts EncodeGender to the Codec interface.
type GenderCodec struct{}

func (GenderCodec) Encode(value interface{}) interface{} {
	return EncodeGender(value)
}

// StringCodec lowercases a categorical value and renders it as a string,
// falling back to a fixed category when the value is nil. Used by pipeline
// models whose one-hot encoder consumes string categories by column name.
type StringCodec struct {
	Fallback string
}

func (c StringCodec) Encode(value interface{}) interface{} {
	if value == nil {
		return c.Fallback
	}
	return strings.ToLower(fmt.Sprintf("%v", value))
}
