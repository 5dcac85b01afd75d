package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
)

type AttachmentKind string

const (
	AttachmentEmbedded  AttachmentKind = "embedded"
	AttachmentReference AttachmentKind = "reference"
)

// Attachment is either embedded content (Data set) or a reference to
// content stored elsewhere (URL set), selected by Kind.
type Attachment struct {
	Name        string         `json:"name"`
	Kind        AttachmentKind `json:"kind"`
	ContentType string         `json:"content_type,omitempty"`
	Data        []byte         `json:"data,omitempty"`
	URL         string         `json:"url,omitempty"`
}

func Embedded(name, contentType string, data []byte) Attachment {
	return Attachment{Name: name, Kind: AttachmentEmbedded, ContentType: contentType, Data: data}
}

func Reference(name, url string) Attachment {
	return Attachment{Name: name, Kind: AttachmentReference, URL: url}
}

// Attachments is stored as a JSON array column.
type Attachments []Attachment

func (a Attachments) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

func (a *Attachments) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = Attachments{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Attachments", src)
	}
	var out Attachments
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode attachments: %w", err)
	}
	if out == nil {
		out = Attachments{}
	}
	*a = out
	return nil
}
