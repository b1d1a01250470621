package core

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/getkin/kin-openapi/openapi3"
)

// Document is one OpenAPI document: its exact serialized bytes plus the
// parsed representation and the version its info block declares.
//
// Byte equality is the fast path for comparisons; the compatibility
// classifier works on the parsed form. Both views describe the same
// immutable value.
type Document struct {
	contents []byte
	doc      *openapi3.T
	version  *semver.Version
}

// ParseDocument parses raw document bytes. The document must be valid JSON
// or YAML with an OpenAPI structure and an info.version that parses as a
// semantic version.
func ParseDocument(contents []byte) (*Document, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(contents)
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}
	if doc.Info == nil {
		return nil, fmt.Errorf("document has no info block")
	}
	version, err := semver.StrictNewVersion(doc.Info.Version)
	if err != nil {
		return nil, fmt.Errorf("document version %q: %w", doc.Info.Version, err)
	}
	return &Document{contents: contents, doc: doc, version: version}, nil
}

// Contents returns the exact serialized bytes.
func (d *Document) Contents() []byte { return d.contents }

// OpenAPI returns the parsed document.
func (d *Document) OpenAPI() *openapi3.T { return d.doc }

// Version returns the version declared in the document's info block.
func (d *Document) Version() *semver.Version { return d.version }

// Validate runs schema-level validation and returns the findings, one
// message per violation. An empty slice means the document passed.
func (d *Document) Validate(ctx context.Context) []string {
	err := d.doc.Validate(ctx)
	if err == nil {
		return nil
	}
	var multi openapi3.MultiError
	if ok := asMultiError(err, &multi); ok {
		findings := make([]string, 0, len(multi))
		for _, e := range multi {
			findings = append(findings, e.Error())
		}
		return findings
	}
	return []string{err.Error()}
}

func asMultiError(err error, out *openapi3.MultiError) bool {
	if multi, ok := err.(openapi3.MultiError); ok {
		*out = multi
		return true
	}
	return false
}
