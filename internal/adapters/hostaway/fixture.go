package hostaway

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed fixtures/reviews.json
var embeddedFixture []byte

// LoadFixture reads the fallback dataset from path, or the embedded copy when path is empty.
func LoadFixture(path string) ([]RawReview, error) {
	b := embeddedFixture
	if path != "" {
		var err error
		if b, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read fixture: %w", err)
		}
	}
	var doc struct {
		Result []RawReview `json:"result"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return doc.Result, nil
}
