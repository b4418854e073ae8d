package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnrecognizedContent is returned when a response "content" field matches none of the known shapes
var ErrUnrecognizedContent = errors.New("unrecognized response content shape")

// ContentKind tags which shape a response "content" field arrived in
type ContentKind int

const (
	ContentUnknown ContentKind = iota
	// ContentString is a bare JSON string
	ContentString
	// ContentObject is a single {"text": "..."} object
	ContentObject
	// ContentFragments is an array of {"text": "..."} objects
	ContentFragments
)

func (k ContentKind) String() string {
	switch k {
	case ContentString:
		return "string"
	case ContentObject:
		return "object"
	case ContentFragments:
		return "fragments"
	default:
		return "unknown"
	}
}

// Content is a parsed response "content" field
type Content struct {
	Kind      ContentKind
	Text      string
	Fragments []string
}

type textBlock struct {
	Text *string `json:"text"`
}

// ParseContent classifies and decodes a raw "content" field
func ParseContent(raw json.RawMessage) (Content, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Content{}, fmt.Errorf("%w: missing", ErrUnrecognizedContent)
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return Content{}, fmt.Errorf("%w: %v", ErrUnrecognizedContent, err)
		}
		return Content{Kind: ContentString, Text: s}, nil

	case '{':
		var block textBlock
		if err := json.Unmarshal(trimmed, &block); err != nil {
			return Content{}, fmt.Errorf("%w: %v", ErrUnrecognizedContent, err)
		}
		if block.Text == nil {
			return Content{}, fmt.Errorf("%w: object without text", ErrUnrecognizedContent)
		}
		return Content{Kind: ContentObject, Text: *block.Text}, nil

	case '[':
		var blocks []textBlock
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return Content{}, fmt.Errorf("%w: %v", ErrUnrecognizedContent, err)
		}
		// non-text blocks contribute nothing, as with a join over missing fields
		fragments := make([]string, len(blocks))
		for i, b := range blocks {
			if b.Text != nil {
				fragments[i] = *b.Text
			}
		}
		return Content{Kind: ContentFragments, Fragments: fragments}, nil
	}

	return Content{}, fmt.Errorf("%w: unexpected %q", ErrUnrecognizedContent, trimmed[0])
}

// String returns the content as one plain string
func (c Content) String() string {
	if c.Kind == ContentFragments {
		return strings.Join(c.Fragments, "")
	}
	return c.Text
}

// NormalizeContent collapses any supported "content" shape into a single string
func NormalizeContent(raw json.RawMessage) (string, error) {
	c, err := ParseContent(raw)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}
