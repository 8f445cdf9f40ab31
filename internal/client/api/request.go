package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"sort"
)

// File is a multipart file part.
type File struct {
	Field       string
	Name        string
	ContentType string
	Data        []byte
}

// Request describes one exchange with the document service.
//
// Parameters become a JSON body, or multipart form fields when Files is not
// empty. Headers override the client's default headers, except for
// Authorization which is always owned by the client.
type Request struct {
	Endpoint   string
	Method     string
	Query      url.Values
	Parameters map[string]any
	Files      []File
	Headers    map[string]string
}

// body encodes the request payload; nil data means no body.
func (r *Request) body() (data []byte, contentType string, err error) {
	if len(r.Files) > 0 {
		return r.multipart()
	}
	if r.Parameters == nil {
		return nil, "", nil
	}

	data, err = json.Marshal(r.Parameters)
	if err != nil {
		return nil, "", fmt.Errorf("encode parameters: %w", err)
	}
	return data, "application/json", nil
}

func (r *Request) multipart() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(r.Parameters))
	for k := range r.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := w.WriteField(k, fmt.Sprint(r.Parameters[k])); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	for _, f := range r.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Name))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.Field, err)
		}
		if _, err := io.Copy(part, bytes.NewReader(f.Data)); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
