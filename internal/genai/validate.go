package genai

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pdiddy/slide-engine/pkg/types"
)

var (
	// ErrInvalidResponse reports that the service returned text that is not
	// a JSON array. The boundary echoes the raw text for debugging.
	ErrInvalidResponse = errors.New("invalid generation response")

	// ErrEmptyResponse reports that the service returned an empty array.
	ErrEmptyResponse = errors.New("no slide content was generated")
)

// ParseSlides parses the raw response text. Exactly three checks apply: the
// text must be valid JSON, the top-level value must be an array, and the
// array must be non-empty. Individual slide objects are otherwise trusted
// as-is; malformed elements stay zero-valued rather than failing the run.
func ParseSlides(raw string) ([]types.Slide, error) {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	elements, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: top-level value is not an array", ErrInvalidResponse)
	}
	if len(elements) == 0 {
		return nil, ErrEmptyResponse
	}

	slides := make([]types.Slide, len(elements))
	for i, element := range elements {
		data, err := json.Marshal(element)
		if err != nil {
			continue
		}
		json.Unmarshal(data, &slides[i])
	}
	return slides, nil
}
