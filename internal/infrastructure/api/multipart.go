package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// Multipart accumulates a multipart/form-data body for file uploads. The
// wrapper lets the form writer pick the content type so the boundary is set
// correctly instead of a hardcoded JSON header.
type Multipart struct {
	fields []field
	files  []filePart
}

type field struct {
	name  string
	value string
}

type filePart struct {
	field    string
	filename string
	reader   io.Reader
}

// NewMultipart creates an empty multipart form body.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// AddField appends a plain form field.
func (m *Multipart) AddField(name, value string) *Multipart {
	m.fields = append(m.fields, field{name: name, value: value})
	return m
}

// AddFile appends a file part read from r at encode time.
func (m *Multipart) AddFile(fieldName, filename string, r io.Reader) *Multipart {
	m.files = append(m.files, filePart{field: fieldName, filename: filename, reader: r})
	return m
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %q: %w", f.name, err)
		}
	}
	for _, f := range m.files {
		part, err := w.CreateFormFile(f.field, f.filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %q: %w", f.field, err)
		}
		if _, err := io.Copy(part, f.reader); err != nil {
			return nil, "", fmt.Errorf("copy file part %q: %w", f.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}
