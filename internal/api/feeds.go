package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/arzlive/arzlive/internal/model"
)

// Feed is one logical upstream endpoint.
type Feed struct {
	Name    string
	Path    string
	Section model.Section // list kind of items not grouped by category
}

// Section is the items of one list kind in a feed response.
type Section struct {
	Kind    model.Section
	Items   []Item
	Skipped int // records that could not be decoded
}

// categoryKeys maps grouped response keys to list kinds.
var categoryKeys = []struct {
	key  string
	kind model.Section
}{
	{"currency", model.SectionCurrency},
	{"gold", model.SectionGold},
	{"cryptocurrency", model.SectionCrypto},
	{"crypto", model.SectionCrypto},
}

// GetFeed fetches and decodes one feed.
func (c *Client) GetFeed(ctx context.Context, f Feed) ([]Section, error) {
	body, err := c.fetchWithRetry(ctx, f.Path)
	if err != nil {
		return nil, fmt.Errorf("get feed %s: %w", f.Name, err)
	}

	sections, err := Decode(body, f.Section)
	if err != nil {
		return nil, fmt.Errorf("decode feed %s: %w", f.Name, err)
	}
	return sections, nil
}

// Decode extracts the item lists from a feed response. Records that fail to
// decode are counted in Section.Skipped and otherwise ignored. An object
// without any known list decodes to no sections.
func Decode(body []byte, def model.Section) ([]Section, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response")
	}

	switch body[0] {
	case '[':
		s, err := decodeList(body, def)
		if err != nil {
			return nil, err
		}
		return []Section{s}, nil
	case '{':
	default:
		return nil, fmt.Errorf("unexpected response: %.32q", body)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("unmarshal object: %w", err)
	}

	if data, ok := obj["data"]; ok {
		data = bytes.TrimSpace(data)
		if len(data) > 0 && (data[0] == '[' || data[0] == '{') {
			return Decode(data, def)
		}
	}

	var out []Section
	for _, ck := range categoryKeys {
		raw, ok := obj[ck.key]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '[' {
			continue
		}
		s, err := decodeList(raw, ck.kind)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", ck.key, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeList(raw json.RawMessage, kind model.Section) (Section, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return Section{}, fmt.Errorf("unmarshal list: %w", err)
	}

	s := Section{Kind: kind, Items: make([]Item, 0, len(records))}
	for _, rec := range records {
		var it Item
		if err := json.Unmarshal(rec, &it); err != nil {
			s.Skipped++
			continue
		}
		s.Items = append(s.Items, it)
	}
	return s, nil
}
