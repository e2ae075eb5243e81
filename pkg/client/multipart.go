package client

import (
	"bytes"
	"io"
	"mime/multipart"
)

// Multipart is a form body with optional file parts, used for image uploads.
type Multipart struct {
	Fields []FormField
	Files  []FormFile
}

// FormField is a plain form value.
type FormField struct {
	Name  string
	Value string
}

// FormFile is a file part.
type FormFile struct {
	Field    string
	Filename string
	Content  []byte
}

// NewMultipart returns an empty form.
func NewMultipart() *Multipart {
	return &Multipart{}
}

// Add appends a form value.
func (m *Multipart) Add(name, value string) *Multipart {
	m.Fields = append(m.Fields, FormField{Name: name, Value: value})
	return m
}

// AddFile appends a file part.
func (m *Multipart) AddFile(field, filename string, content []byte) *Multipart {
	m.Files = append(m.Files, FormFile{Field: field, Filename: filename, Content: content})
	return m
}

// Value returns the first value of the named field.
func (m *Multipart) Value(name string) (string, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func (m *Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
