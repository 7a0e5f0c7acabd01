package manifest

import (
	"encoding/json"
	"fmt"
)

// Emoji describes one custom emoji from the instance manifest.
type Emoji struct {
	Shortcode string `json:"shortcode"`
	StaticURL string `json:"static_url"`
	Category  string `json:"category"`
}

// UnmarshalJSON decodes a manifest entry. A null or missing category is
// decoded as the empty category.
func (e *Emoji) UnmarshalJSON(data []byte) error {
	var raw struct {
		Shortcode string  `json:"shortcode"`
		StaticURL string  `json:"static_url"`
		Category  *string `json:"category"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Shortcode == "" {
		return fmt.Errorf("manifest: entry has no shortcode")
	}
	if raw.StaticURL == "" {
		return fmt.Errorf("manifest: emoji %q has no static_url", raw.Shortcode)
	}

	e.Shortcode = raw.Shortcode
	e.StaticURL = raw.StaticURL
	e.Category = ""
	if raw.Category != nil {
		e.Category = *raw.Category
	}
	return nil
}

func (e Emoji) String() string {
	if e.Category == "" {
		return ":" + e.Shortcode + ":"
	}
	return e.Category + "/:" + e.Shortcode + ":"
}
