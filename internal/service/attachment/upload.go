package attachment

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"

	"github.com/jwalitptl/dental-admin/internal/model"
)

const defaultContentType = "application/octet-stream"

// ParseUpload turns a client file entry into an attachment. A data URL
// becomes embedded content; an http(s) URL or an absolute path is kept as a
// reference. Every other scheme is rejected.
func ParseUpload(u model.FileUpload) (model.Attachment, error) {
	name := strings.TrimSpace(u.Name)
	raw := strings.TrimSpace(u.URL)
	if name == "" {
		return model.Attachment{}, fmt.Errorf("file name is required")
	}

	switch {
	case strings.HasPrefix(raw, "data:"):
		contentType, data, err := decodeDataURL(raw)
		if err != nil {
			return model.Attachment{}, fmt.Errorf("file %s: %w", name, err)
		}
		return model.Embedded(name, contentType, data), nil
	case strings.HasPrefix(raw, "blob:"):
		return model.Attachment{}, fmt.Errorf("file %s: blob URLs only exist in the browser that created them; send the content as a data URL", name)
	case raw == "":
		return model.Attachment{}, fmt.Errorf("file %s: url is required", name)
	default:
		if !isReferenceURL(raw) {
			return model.Attachment{}, fmt.Errorf("file %s: url must be http(s), a path or a data URL", name)
		}
		return model.Reference(name, raw), nil
	}
}

func isReferenceURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "":
		return u.Host == "" && strings.HasPrefix(u.Path, "/")
	default:
		return false
	}
}

// decodeDataURL handles data:[<mediatype>][;base64],<data>.
func decodeDataURL(s string) (string, []byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}

	params := strings.Split(header, ";")
	contentType := params[0]
	if contentType == "" {
		contentType = defaultContentType
	}

	isBase64 := false
	for _, p := range params[1:] {
		if p == "base64" {
			isBase64 = true
		}
	}

	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("invalid base64 payload: %w", err)
		}
		return contentType, data, nil
	}

	decoded, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid data URL payload: %w", err)
	}
	return contentType, []byte(decoded), nil
}

// ParseUploads converts every entry, collecting per-file errors.
func ParseUploads(uploads []model.FileUpload) (model.Attachments, map[string]string) {
	files := make(model.Attachments, 0, len(uploads))
	var errs map[string]string
	for i, u := range uploads {
		a, err := ParseUpload(u)
		if err != nil {
			if errs == nil {
				errs = make(map[string]string)
			}
			errs[fmt.Sprintf("files[%d]", i)] = err.Error()
			continue
		}
		files = append(files, a)
	}
	return files, errs
}
