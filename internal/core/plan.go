package core

import (
	"sort"

	"github.com/oxidecomputer/openapi-manager/internal/types"
)

// PlanFixes restates every fixable problem as filesystem effects. Within
// one service, fixes come out in ascending version order with the
// latest-link fix last, so applying them in sequence never leaves the link
// pointing at a file that does not exist yet. The planner inspects only
// the resolved results, never the filesystem.
func PlanFixes(resolved []*Resolved) []Fix {
	var fixes []Fix
	for _, r := range resolved {
		fixes = append(fixes, planService(r)...)
	}
	return fixes
}

func planService(r *Resolved) []Fix {
	var versioned, general, link []Problem
	for _, p := range r.Problems() {
		if !p.Fixable() {
			continue
		}
		switch p.(type) {
		case *MissingLatestLink, *WrongLatestLink:
			link = append(link, p)
		default:
			if p.Version() == nil {
				general = append(general, p)
			} else {
				versioned = append(versioned, p)
			}
		}
	}
	sort.SliceStable(versioned, func(i, j int) bool {
		return versioned[i].Version().LessThan(versioned[j].Version())
	})

	var fixes []Fix
	for _, p := range versioned {
		fixes = append(fixes, fixesFor(p)...)
	}
	for _, p := range general {
		fixes = append(fixes, fixesFor(p)...)
	}
	for _, p := range link {
		fixes = append(fixes, fixesFor(p)...)
	}
	return fixes
}

// fixesFor maps one fixable problem to its effects. The switch is
// exhaustive over the fixable variants; unfixable ones are filtered before
// this point.
func fixesFor(p Problem) []Fix {
	switch p := p.(type) {
	case *LockstepStale:
		return []Fix{&WriteFile{Rel: p.Name.Path(), Contents: p.Generated.Contents()}}

	case *BlessedVersionMissingLocal:
		return []Fix{&WriteFile{Rel: p.Name.Path(), Contents: p.Contents}}

	case *BlessedVersionExtraLocal:
		return []Fix{&DeleteFiles{Rels: namePaths(p.Names)}}

	case *BlessedVersionShouldBeGitRef:
		contents, err := p.Ref.Serialize()
		if err != nil {
			return nil
		}
		return []Fix{&ConvertToGitRef{
			JSONRel:   p.JSONName.Path(),
			GitRefRel: p.JSONName.ToGitRef().Path(),
			Contents:  contents,
		}}

	case *GitRefShouldBeJSON:
		return []Fix{&ConvertToJSON{
			GitRefRel: p.GitRefName.Path(),
			JSONRel:   p.GitRefName.ToJSON().Path(),
			Contents:  p.Contents,
		}}

	case *DuplicateLocalFile:
		return []Fix{&DeleteFiles{Rels: []string{p.Remove.Path()}}}

	case *LocalVersionMissingLocal:
		var fixes []Fix
		if len(p.Stale) > 0 {
			fixes = append(fixes, &DeleteFiles{Rels: namePaths(p.Stale)})
		}
		return append(fixes, &WriteFile{Rel: p.Name.Path(), Contents: p.Contents})

	case *LocalVersionExtra:
		return []Fix{&DeleteFiles{Rels: namePaths(p.Names)}}

	case *MissingLatestLink:
		return []Fix{&UpdateLatestLink{Ident: p.Service(), Target: p.Target}}

	case *WrongLatestLink:
		return []Fix{&UpdateLatestLink{Ident: p.Service(), Target: p.Target}}

	case *ExtraFileStale:
		return []Fix{&WriteFile{Rel: p.RelPath, Contents: p.Contents}}

	default:
		return nil
	}
}

func namePaths(names []types.SpecFileName) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n.Path()
	}
	return out
}
