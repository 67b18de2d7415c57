package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// KeywordHit is one triggered category with the keywords that matched in it
type KeywordHit struct {
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// KeywordDetections keeps the categories in the order the service sent them.
// On the wire it is a JSON object of category -> []keyword; a Go map would
// lose that order.
type KeywordDetections []KeywordHit

func (k KeywordDetections) Len() int { return len(k) }

// UnmarshalJSON reads the object key by key. null and {} both decode to an
// empty list.
func (k *KeywordDetections) UnmarshalJSON(data []byte) error {
	*k = nil
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("keyword_detections: expected object, got %v", tok)
	}

	out := KeywordDetections{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		category, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("keyword_detections: bad key %v", keyTok)
		}
		var words []string
		if err := dec.Decode(&words); err != nil {
			return fmt.Errorf("keyword_detections[%s]: %w", category, err)
		}
		out = append(out, KeywordHit{Category: category, Keywords: words})
	}
	if _, err := dec.Token(); err != nil { // closing }
		return err
	}
	*k = out
	return nil
}

// MarshalJSON writes the object form back, preserving order
func (k KeywordDetections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, hit := range k {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(hit.Category)
		if err != nil {
			return nil, err
		}
		words := hit.Keywords
		if words == nil {
			words = []string{}
		}
		val, err := json.Marshal(words)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (k KeywordDetections) clone() KeywordDetections {
	if k == nil {
		return nil
	}
	out := make(KeywordDetections, len(k))
	for i, hit := range k {
		out[i] = KeywordHit{Category: hit.Category, Keywords: append([]string(nil), hit.Keywords...)}
	}
	return out
}
