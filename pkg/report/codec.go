package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	jsonExtension = ".json"
	yamlExtension = ".yaml"
	ymlExtension  = ".yml"

	defaultIndent = "  "
	yamlIndent    = 2
)

// Codec serializes documents.
type Codec interface {
	Encode(w io.Writer, v any) error
	Decode(r io.Reader, v any) error
	// Extension is the canonical file extension, dot included.
	Extension() string
}

// JSONCodec encodes JSON, indented unless Indent is empty.
type JSONCodec struct {
	Indent string
}

func (c JSONCodec) Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if c.Indent != "" {
		enc.SetIndent("", c.Indent)
	}

	err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

func (c JSONCodec) Decode(r io.Reader, v any) error {
	err := json.NewDecoder(r).Decode(v)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

func (c JSONCodec) Extension() string { return jsonExtension }

// YAMLCodec encodes YAML.
type YAMLCodec struct{}

func (YAMLCodec) Encode(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(yamlIndent)

	err := enc.Encode(v)
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	return nil
}

func (YAMLCodec) Decode(r io.Reader, v any) error {
	err := yaml.NewDecoder(r).Decode(v)
	if err != nil {
		return fmt.Errorf("yaml decode: %w", err)
	}

	return nil
}

func (YAMLCodec) Extension() string { return yamlExtension }

var (
	jsonCodec Codec = JSONCodec{Indent: defaultIndent}
	yamlCodec Codec = YAMLCodec{}
)

// CodecFor picks a codec from the file extension: YAML for .yaml/.yml and JSON
// for everything else.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case yamlExtension, ymlExtension:
		return yamlCodec
	}

	return jsonCodec
}

// Save writes doc to path with the codec matching its extension.
func Save(path string, doc Document) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}

	defer func() {
		err = errors.Join(err, file.Close())
	}()

	err = CodecFor(path).Encode(file, doc)
	if err != nil {
		return fmt.Errorf("encode summary %s: %w", path, err)
	}

	return nil
}

// Load reads a document previously written by Save.
func Load(path string) (Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open summary file: %w", err)
	}
	defer file.Close()

	var doc Document

	err = CodecFor(path).Decode(file, &doc)
	if err != nil {
		return Document{}, fmt.Errorf("decode summary %s: %w", path, err)
	}

	return doc, nil
}
