package core

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"
)

// Relationship classifies how two documents relate on the wire.
type Relationship int

const (
	// Identical means byte-for-byte equality.
	Identical Relationship = iota
	// WireCompatible means the serialized forms differ but no difference
	// is visible on the wire (e.g. a schema renamed without changing its
	// shape, reordered keys, formatting).
	WireCompatible
	// ForwardCompatible means the second document only removes surface:
	// clients of the second still work against servers of the first.
	ForwardCompatible
	// BackwardCompatible means the second document only adds surface:
	// clients of the first still work against servers of the second.
	BackwardCompatible
	// Incompatible means some change could break a client or server
	// built against the other side.
	Incompatible
)

func (r Relationship) String() string {
	switch r {
	case Identical:
		return "identical"
	case WireCompatible:
		return "wire-compatible"
	case ForwardCompatible:
		return "forward-compatible"
	case BackwardCompatible:
		return "backward-compatible"
	case Incompatible:
		return "incompatible"
	default:
		return fmt.Sprintf("Relationship(%d)", int(r))
	}
}

// DiffKind distinguishes the three ways a piece of API surface can differ.
type DiffKind int

const (
	// DiffAdded means the surface exists only in the second document.
	DiffAdded DiffKind = iota
	// DiffRemoved means the surface exists only in the first document.
	DiffRemoved
	// DiffChanged means the surface exists in both but differs in place.
	// In-place changes are always breaking.
	DiffChanged
)

func (k DiffKind) String() string {
	switch k {
	case DiffAdded:
		return "added"
	case DiffRemoved:
		return "removed"
	case DiffChanged:
		return "changed"
	default:
		return fmt.Sprintf("DiffKind(%d)", int(k))
	}
}

// Difference is one specific semantic difference between two documents.
type Difference struct {
	Kind     DiffKind
	Location string // e.g. "GET /v1/instances"
	Detail   string
}

func (d Difference) String() string {
	if d.Detail == "" {
		return fmt.Sprintf("%s: %s", d.Location, d.Kind)
	}
	return fmt.Sprintf("%s: %s %s", d.Location, d.Kind, d.Detail)
}

// CompatReport is the classifier's output: exactly one relationship plus
// the differences supporting it.
type CompatReport struct {
	Relationship Relationship
	Differences  []Difference
}

// Classify compares document a (the committed contract) against document b
// (the candidate) and returns their wire relationship.
//
// Classification folds the differences: in-place changes, or a mix of
// additions and removals, are Incompatible; additions only are
// BackwardCompatible; removals only are ForwardCompatible; no semantic
// difference is Identical when the bytes match and WireCompatible when
// only the serialization differs.
func Classify(a, b *Document) CompatReport {
	c := &comparison{}
	c.comparePaths(a.OpenAPI(), b.OpenAPI())

	var added, removed, changed bool
	for _, d := range c.diffs {
		switch d.Kind {
		case DiffAdded:
			added = true
		case DiffRemoved:
			removed = true
		case DiffChanged:
			changed = true
		}
	}

	var rel Relationship
	switch {
	case changed, added && removed:
		rel = Incompatible
	case added:
		rel = BackwardCompatible
	case removed:
		rel = ForwardCompatible
	case bytes.Equal(a.Contents(), b.Contents()):
		rel = Identical
	default:
		rel = WireCompatible
	}
	return CompatReport{Relationship: rel, Differences: c.diffs}
}

// comparison accumulates differences while walking two documents. Schemas
// are compared structurally with references resolved, so renaming a schema
// without changing its shape produces no difference.
type comparison struct {
	diffs []Difference
	// visited guards against reference cycles; keyed by the resolved
	// schema pair.
	visited map[[2]*openapi3.Schema]bool
}

func (c *comparison) add(kind DiffKind, location, detail string) {
	c.diffs = append(c.diffs, Difference{Kind: kind, Location: location, Detail: detail})
}

func (c *comparison) comparePaths(a, b *openapi3.T) {
	aPaths := pathsMap(a)
	bPaths := pathsMap(b)

	for _, p := range sortedKeys(aPaths) {
		if _, ok := bPaths[p]; !ok {
			c.add(DiffRemoved, p, "path")
			continue
		}
		c.compareOperations(p, aPaths[p], bPaths[p])
	}
	for _, p := range sortedKeys(bPaths) {
		if _, ok := aPaths[p]; !ok {
			c.add(DiffAdded, p, "path")
		}
	}
}

func pathsMap(doc *openapi3.T) map[string]*openapi3.PathItem {
	if doc.Paths == nil {
		return nil
	}
	return doc.Paths.Map()
}

func (c *comparison) compareOperations(path string, a, b *openapi3.PathItem) {
	aOps := a.Operations()
	bOps := b.Operations()

	for _, method := range sortedKeys(aOps) {
		loc := method + " " + path
		bOp, ok := bOps[method]
		if !ok {
			c.add(DiffRemoved, loc, "operation")
			continue
		}
		c.compareOperation(loc, a, aOps[method], b, bOp)
	}
	for _, method := range sortedKeys(bOps) {
		if _, ok := aOps[method]; !ok {
			c.add(DiffAdded, method+" "+path, "operation")
		}
	}
}

func (c *comparison) compareOperation(loc string, aItem *openapi3.PathItem, a *openapi3.Operation, bItem *openapi3.PathItem, b *openapi3.Operation) {
	c.compareParameters(loc, effectiveParameters(aItem, a), effectiveParameters(bItem, b))
	c.compareRequestBodies(loc, a.RequestBody, b.RequestBody)
	c.compareResponses(loc, a.Responses, b.Responses)
}

// effectiveParameters folds path-level parameters into an operation's own
// set. An operation-level entry overrides a path-level one with the same
// (in, name) pair, per the OpenAPI inheritance rules, so where a parameter
// is declared never affects the comparison.
func effectiveParameters(item *openapi3.PathItem, op *openapi3.Operation) openapi3.Parameters {
	if len(item.Parameters) == 0 {
		return op.Parameters
	}
	own := make(map[string]bool, len(op.Parameters))
	for _, ref := range op.Parameters {
		if ref.Value != nil {
			own[paramKey(ref.Value)] = true
		}
	}
	merged := make(openapi3.Parameters, 0, len(op.Parameters)+len(item.Parameters))
	merged = append(merged, op.Parameters...)
	for _, ref := range item.Parameters {
		if ref.Value != nil && !own[paramKey(ref.Value)] {
			merged = append(merged, ref)
		}
	}
	return merged
}

func paramKey(p *openapi3.Parameter) string {
	return p.In + ":" + p.Name
}

func (c *comparison) compareParameters(loc string, a, b openapi3.Parameters) {
	aParams := map[string]*openapi3.Parameter{}
	for _, ref := range a {
		if ref.Value != nil {
			aParams[paramKey(ref.Value)] = ref.Value
		}
	}
	bParams := map[string]*openapi3.Parameter{}
	for _, ref := range b {
		if ref.Value != nil {
			bParams[paramKey(ref.Value)] = ref.Value
		}
	}

	for _, key := range sortedKeys(aParams) {
		ap := aParams[key]
		bp, ok := bParams[key]
		if !ok {
			if ap.Required {
				c.add(DiffChanged, loc, fmt.Sprintf("required parameter %q removed", ap.Name))
			} else {
				c.add(DiffRemoved, loc, fmt.Sprintf("parameter %q", ap.Name))
			}
			continue
		}
		if ap.Required != bp.Required {
			c.add(DiffChanged, loc, fmt.Sprintf("parameter %q required: %t -> %t", ap.Name, ap.Required, bp.Required))
		}
		c.compareSchemaRefs(loc+" parameter "+ap.Name, ap.Schema, bp.Schema)
	}
	for _, key := range sortedKeys(bParams) {
		bp := bParams[key]
		if _, ok := aParams[key]; ok {
			continue
		}
		if bp.Required {
			// A new required parameter breaks every existing caller.
			c.add(DiffChanged, loc, fmt.Sprintf("new required parameter %q", bp.Name))
		} else {
			c.add(DiffAdded, loc, fmt.Sprintf("parameter %q", bp.Name))
		}
	}
}

func (c *comparison) compareRequestBodies(loc string, a, b *openapi3.RequestBodyRef) {
	aVal := requestBodyValue(a)
	bVal := requestBodyValue(b)
	switch {
	case aVal == nil && bVal == nil:
		return
	case aVal == nil:
		if bVal.Required {
			c.add(DiffChanged, loc, "new required request body")
		} else {
			c.add(DiffAdded, loc, "request body")
		}
		return
	case bVal == nil:
		c.add(DiffRemoved, loc, "request body")
		return
	}
	if aVal.Required != bVal.Required {
		c.add(DiffChanged, loc, fmt.Sprintf("request body required: %t -> %t", aVal.Required, bVal.Required))
	}
	c.compareContent(loc+" request body", aVal.Content, bVal.Content)
}

func requestBodyValue(ref *openapi3.RequestBodyRef) *openapi3.RequestBody {
	if ref == nil {
		return nil
	}
	return ref.Value
}

func (c *comparison) compareResponses(loc string, a, b *openapi3.Responses) {
	aResp := responsesMap(a)
	bResp := responsesMap(b)

	for _, code := range sortedKeys(aResp) {
		bRef, ok := bResp[code]
		if !ok {
			c.add(DiffRemoved, loc, "response "+code)
			continue
		}
		if aResp[code].Value != nil && bRef.Value != nil {
			c.compareContent(loc+" response "+code, aResp[code].Value.Content, bRef.Value.Content)
		}
	}
	for _, code := range sortedKeys(bResp) {
		if _, ok := aResp[code]; !ok {
			c.add(DiffAdded, loc, "response "+code)
		}
	}
}

func responsesMap(r *openapi3.Responses) map[string]*openapi3.ResponseRef {
	if r == nil {
		return nil
	}
	return r.Map()
}

func (c *comparison) compareContent(loc string, a, b openapi3.Content) {
	for _, mediaType := range sortedKeys(a) {
		bMedia, ok := b[mediaType]
		if !ok {
			c.add(DiffRemoved, loc, "media type "+mediaType)
			continue
		}
		c.compareSchemaRefs(loc+" ("+mediaType+")", a[mediaType].Schema, bMedia.Schema)
	}
	for _, mediaType := range sortedKeys(b) {
		if _, ok := a[mediaType]; !ok {
			c.add(DiffAdded, loc, "media type "+mediaType)
		}
	}
}

func (c *comparison) compareSchemaRefs(loc string, a, b *openapi3.SchemaRef) {
	aVal := schemaValue(a)
	bVal := schemaValue(b)
	switch {
	case aVal == nil && bVal == nil:
		return
	case aVal == nil:
		c.add(DiffAdded, loc, "schema")
		return
	case bVal == nil:
		c.add(DiffRemoved, loc, "schema")
		return
	}
	c.compareSchemas(loc, aVal, bVal)
}

func schemaValue(ref *openapi3.SchemaRef) *openapi3.Schema {
	if ref == nil {
		return nil
	}
	return ref.Value
}

// compareSchemas compares resolved schemas structurally. Schema names never
// enter the comparison, so renames are invisible here.
func (c *comparison) compareSchemas(loc string, a, b *openapi3.Schema) {
	if c.visited == nil {
		c.visited = map[[2]*openapi3.Schema]bool{}
	}
	pair := [2]*openapi3.Schema{a, b}
	if c.visited[pair] {
		return
	}
	c.visited[pair] = true

	if !typesEqual(a.Type, b.Type) {
		c.add(DiffChanged, loc, fmt.Sprintf("type %v -> %v", typeSlice(a.Type), typeSlice(b.Type)))
		return
	}
	if a.Format != b.Format {
		c.add(DiffChanged, loc, fmt.Sprintf("format %q -> %q", a.Format, b.Format))
	}
	c.compareEnums(loc, a.Enum, b.Enum)
	c.compareProperties(loc, a, b)

	if a.Items != nil || b.Items != nil {
		c.compareSchemaRefs(loc+"[]", a.Items, b.Items)
	}
	c.compareVariantLists(loc, "oneOf", a.OneOf, b.OneOf)
	c.compareVariantLists(loc, "anyOf", a.AnyOf, b.AnyOf)
	c.compareVariantLists(loc, "allOf", a.AllOf, b.AllOf)
}

func typesEqual(a, b *openapi3.Types) bool {
	as, bs := typeSlice(a), typeSlice(b)
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func typeSlice(t *openapi3.Types) []string {
	if t == nil {
		return nil
	}
	out := t.Slice()
	sorted := make([]string, len(out))
	copy(sorted, out)
	sort.Strings(sorted)
	return sorted
}

func (c *comparison) compareEnums(loc string, a, b []interface{}) {
	if a == nil && b == nil {
		return
	}
	aSet := map[string]bool{}
	for _, v := range a {
		aSet[fmt.Sprint(v)] = true
	}
	bSet := map[string]bool{}
	for _, v := range b {
		bSet[fmt.Sprint(v)] = true
	}
	for _, v := range sortedKeys(aSet) {
		if !bSet[v] {
			c.add(DiffRemoved, loc, fmt.Sprintf("enum value %q", v))
		}
	}
	for _, v := range sortedKeys(bSet) {
		if !aSet[v] {
			c.add(DiffAdded, loc, fmt.Sprintf("enum value %q", v))
		}
	}
}

func (c *comparison) compareProperties(loc string, a, b *openapi3.Schema) {
	aReq := stringSet(a.Required)
	bReq := stringSet(b.Required)

	for _, name := range sortedKeys(a.Properties) {
		propLoc := loc + "." + name
		bProp, ok := b.Properties[name]
		if !ok {
			if aReq[name] {
				c.add(DiffChanged, loc, fmt.Sprintf("required property %q removed", name))
			} else {
				c.add(DiffRemoved, loc, fmt.Sprintf("property %q", name))
			}
			continue
		}
		if aReq[name] != bReq[name] {
			c.add(DiffChanged, loc, fmt.Sprintf("property %q required: %t -> %t", name, aReq[name], bReq[name]))
		}
		c.compareSchemaRefs(propLoc, a.Properties[name], bProp)
	}
	for _, name := range sortedKeys(b.Properties) {
		if _, ok := a.Properties[name]; ok {
			continue
		}
		if bReq[name] {
			// A new required property breaks existing writers of this
			// object.
			c.add(DiffChanged, loc, fmt.Sprintf("new required property %q", name))
		} else {
			c.add(DiffAdded, loc, fmt.Sprintf("property %q", name))
		}
	}
}

func (c *comparison) compareVariantLists(loc, kind string, a, b openapi3.SchemaRefs) {
	if len(a) == 0 && len(b) == 0 {
		return
	}
	if len(a) != len(b) {
		c.add(DiffChanged, loc, fmt.Sprintf("%s variant count %d -> %d", kind, len(a), len(b)))
		return
	}
	for i := range a {
		c.compareSchemaRefs(fmt.Sprintf("%s %s[%d]", loc, kind, i), a[i], b[i])
	}
}

func stringSet(ss []string) map[string]bool {
	out := make(map[string]bool, len(ss))
	for _, s := range ss {
		out[s] = true
	}
	return out
}

// sortedKeys returns map keys in sorted order for deterministic output.
func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
