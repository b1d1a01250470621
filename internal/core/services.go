package core

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// ExtraFilesFunc derives additional files from a validated document, keyed
// by path relative to the documents directory. Used by embedding tools to
// keep derived artifacts (e.g. a client manifest) in sync with the latest
// document; not expressible in openapi.yml.
type ExtraFilesFunc func(doc *openapi3.T) (map[string][]byte, error)

// ManagedService is the immutable, validated description of one managed
// service: its identity, version model, and how its documents are produced
// and stored.
type ManagedService struct {
	ident    types.ServiceIdent
	title    string
	versions types.Versions
	boundary string

	// generateArgv is the command template producing the document on
	// stdout; {service} and {version} expand per invocation. Empty when
	// generateFunc is set instead.
	generateArgv []string
	generateFunc GenerateFunc

	gitRefStorage      bool
	requireExactLatest bool
	extraFiles         ExtraFilesFunc
}

// Ident returns the service identity.
func (s *ManagedService) Ident() types.ServiceIdent { return s.ident }

// Title returns the human-readable title, falling back to the identity.
func (s *ManagedService) Title() string {
	if s.title == "" {
		return s.ident.String()
	}
	return s.title
}

// Versions returns the service's version model.
func (s *ManagedService) Versions() types.Versions { return s.versions }

// Boundary returns the declared deployment boundary (internal/external).
func (s *ManagedService) Boundary() string { return s.boundary }

// GitRefStorage reports whether superseded blessed documents should be
// stored as pointer files.
func (s *ManagedService) GitRefStorage() bool { return s.gitRefStorage }

// RequireExactLatest reports whether the latest blessed document must match
// the generated one byte for byte.
func (s *ManagedService) RequireExactLatest() bool { return s.requireExactLatest }

// ExtraFiles returns the derived-files hook, or nil.
func (s *ManagedService) ExtraFiles() ExtraFilesFunc { return s.extraFiles }

// buildService validates one service config entry.
func buildService(cfg types.ServiceConfig) (*ManagedService, error) {
	ident, err := types.ParseServiceIdent(cfg.Name)
	if err != nil {
		return nil, err
	}

	var versions types.Versions
	switch {
	case cfg.Lockstep != nil && cfg.Versioned != nil:
		return nil, fmt.Errorf("service %s: lockstep and versioned are mutually exclusive", ident)
	case cfg.Lockstep != nil:
		v, err := semver.StrictNewVersion(cfg.Lockstep.Version)
		if err != nil {
			return nil, fmt.Errorf("service %s: lockstep version %q: %w", ident, cfg.Lockstep.Version, err)
		}
		versions = types.NewLockstep(v)
	case cfg.Versioned != nil:
		entries := make([]types.SupportedVersion, 0, len(cfg.Versioned.Versions))
		for _, vc := range cfg.Versioned.Versions {
			entries = append(entries, types.NewSupportedVersion(vc.Version, vc.Label))
		}
		supported, err := types.NewSupportedVersions(entries)
		if err != nil {
			return nil, fmt.Errorf("service %s: %w", ident, err)
		}
		versions = types.NewVersioned(supported)
	default:
		return nil, fmt.Errorf("service %s: one of lockstep or versioned is required", ident)
	}

	if len(cfg.Generate) == 0 {
		return nil, fmt.Errorf("service %s: generate command is required", ident)
	}
	switch cfg.Boundary {
	case "", types.BoundaryInternal, types.BoundaryExternal:
	default:
		return nil, fmt.Errorf("service %s: boundary must be %q or %q", ident,
			types.BoundaryInternal, types.BoundaryExternal)
	}

	svc := &ManagedService{
		ident:        ident,
		title:        cfg.Title,
		versions:     versions,
		boundary:     cfg.Boundary,
		generateArgv: cfg.Generate,
	}
	if cfg.Versioned != nil {
		svc.gitRefStorage = cfg.Versioned.GitRefStorage
		svc.requireExactLatest = cfg.Versioned.RequireExactLatest
	}
	return svc, nil
}

// ManagedServices is the immutable registry of all services managed in one
// run, in declaration order.
type ManagedServices struct {
	services []*ManagedService
	byIdent  map[types.ServiceIdent]*ManagedService
}

// NewManagedServices validates the configured services into a registry.
// Identities must be unique.
func NewManagedServices(cfgs []types.ServiceConfig) (*ManagedServices, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no services configured")
	}
	reg := &ManagedServices{
		byIdent: make(map[types.ServiceIdent]*ManagedService, len(cfgs)),
	}
	for _, cfg := range cfgs {
		svc, err := buildService(cfg)
		if err != nil {
			return nil, err
		}
		if _, dup := reg.byIdent[svc.ident]; dup {
			return nil, fmt.Errorf("service %s declared multiple times", svc.ident)
		}
		reg.byIdent[svc.ident] = svc
		reg.services = append(reg.services, svc)
	}
	return reg, nil
}

// All returns the services in declaration order.
func (r *ManagedServices) All() []*ManagedService {
	out := make([]*ManagedService, len(r.services))
	copy(out, r.services)
	return out
}

// Get returns the service with the given identity.
func (r *ManagedServices) Get(ident types.ServiceIdent) (*ManagedService, bool) {
	svc, ok := r.byIdent[ident]
	return svc, ok
}

// Len returns the number of managed services.
func (r *ManagedServices) Len() int {
	return len(r.services)
}

// SetGenerateFunc replaces the exec-based generator for one service with an
// in-process function. Intended for tools embedding the manager as a
// library, and for tests.
func (r *ManagedServices) SetGenerateFunc(ident types.ServiceIdent, fn GenerateFunc) error {
	svc, ok := r.byIdent[ident]
	if !ok {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, ident)
	}
	svc.generateFunc = fn
	return nil
}

// SetExtraFiles installs a derived-files hook for one service.
func (r *ManagedServices) SetExtraFiles(ident types.ServiceIdent, fn ExtraFilesFunc) error {
	svc, ok := r.byIdent[ident]
	if !ok {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, ident)
	}
	svc.extraFiles = fn
	return nil
}
