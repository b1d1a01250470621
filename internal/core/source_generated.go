package core

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"
)

// GenerateFunc produces the document bytes for one version of a service.
type GenerateFunc func(ctx context.Context, version *semver.Version) ([]byte, error)

// Generator is the generated-source adapter: it produces a fresh document
// for any supported version of a service, straight from the service's
// interface code.
type Generator interface {
	Generate(ctx context.Context, svc *ManagedService, version *semver.Version) (*Document, error)
}

// CommandGenerator implements Generator by running each service's configured
// command, which must print the document on stdout. The placeholders
// {service} and {version} in the argv expand to the service name and the
// requested version.
type CommandGenerator struct {
	workDir string
	log     *logrus.Logger
}

// NewCommandGenerator creates a CommandGenerator running commands in
// workDir (the repository root).
func NewCommandGenerator(workDir string, log *logrus.Logger) *CommandGenerator {
	return &CommandGenerator{workDir: workDir, log: log}
}

// Generate runs the service's generator command for the given version and
// parses its output. An in-process GenerateFunc installed on the service
// takes precedence over the command.
func (g *CommandGenerator) Generate(ctx context.Context, svc *ManagedService, version *semver.Version) (*Document, error) {
	var contents []byte
	var err error
	if svc.generateFunc != nil {
		contents, err = svc.generateFunc(ctx, version)
	} else {
		contents, err = g.runCommand(ctx, svc, version)
	}
	if err != nil {
		return nil, fmt.Errorf(ErrGeneratorFailedMsg, svc.Ident(), version, err)
	}

	doc, err := ParseDocument(contents)
	if err != nil {
		return nil, fmt.Errorf(ErrDocumentParseFailedMsg, svc.Ident(), version, err)
	}
	return doc, nil
}

func (g *CommandGenerator) runCommand(ctx context.Context, svc *ManagedService, version *semver.Version) ([]byte, error) {
	argv := expandArgv(svc.generateArgv, svc.Ident().String(), version.String())
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty generator command")
	}

	g.log.WithFields(logrus.Fields{
		"service": svc.Ident(),
		"version": version,
		"command": strings.Join(argv, " "),
	}).Debug("running generator")

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = g.workDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}

// expandArgv substitutes the {service} and {version} placeholders.
func expandArgv(argv []string, service, version string) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		a = strings.ReplaceAll(a, "{service}", service)
		a = strings.ReplaceAll(a, "{version}", version)
		out[i] = a
	}
	return out
}
