package enrich

import (
	"strings"

	"github.com/horizon-insight/cordis-etl/internal/clean"
)

// classification hierarchy depths within a slash-delimited SciVoc path.
// Index 0 of the split is always empty because paths carry a leading slash.
const (
	depthFieldClass = 1
	depthField      = 2
	depthSubfield   = 3
	depthNiche      = 4
)

// otherSentinel fills classification lists for projects with no SciVoc rows.
var otherSentinel = []string{"other"}

// thematicStage groups SciVoc and topic rows per project. SciVoc titles and
// paths become per-project lists defaulting to ["other"]; each path is also
// decomposed at depths 1-4 into the field_class/field/subfield/niche distinct
// sets (first-seen order). Topic titles keep no default: projects without
// topics stay empty, an intentional asymmetry with the SciVoc columns.
func thematicStage(d *Dataset) error {
	type sets struct {
		titles, paths                      []string
		fieldClass, field, subfield, niche []string
		seenFC, seenF, seenSF, seenN       map[string]bool
	}

	byProject := make(map[string]*sets)
	if sv := d.Tables.SciVoc; sv != nil {
		for i := range sv.Rows {
			pid := clean.NormalizeKey(sv.Get(i, "project_id"))
			if pid == "" {
				continue
			}
			s := byProject[pid]
			if s == nil {
				s = &sets{
					seenFC: make(map[string]bool),
					seenF:  make(map[string]bool),
					seenSF: make(map[string]bool),
					seenN:  make(map[string]bool),
				}
				byProject[pid] = s
			}

			s.titles = append(s.titles, sv.Get(i, "title"))
			path := sv.Get(i, "path")
			s.paths = append(s.paths, path)

			parts := strings.Split(path, "/")
			addLevel(parts, depthFieldClass, &s.fieldClass, s.seenFC)
			addLevel(parts, depthField, &s.field, s.seenF)
			addLevel(parts, depthSubfield, &s.subfield, s.seenSF)
			addLevel(parts, depthNiche, &s.niche, s.seenN)
		}
	}

	topicsByProject := make(map[string][]string)
	if tp := d.Tables.Topics; tp != nil {
		for i := range tp.Rows {
			pid := clean.NormalizeKey(tp.Get(i, "project_id"))
			if pid == "" {
				continue
			}
			topicsByProject[pid] = append(topicsByProject[pid], tp.Get(i, "title"))
		}
	}

	for i := range d.Projects {
		p := &d.Projects[i]
		pid := clean.NormalizeKey(p.ID)

		if s, ok := byProject[pid]; ok {
			p.SciVocTitles = orOther(s.titles)
			p.SciVocPaths = orOther(s.paths)
			p.FieldClass = orOther(s.fieldClass)
			p.Field = orOther(s.field)
			p.Subfield = orOther(s.subfield)
			p.Niche = orOther(s.niche)
		} else {
			p.SciVocTitles = otherSentinel
			p.SciVocPaths = otherSentinel
			p.FieldClass = otherSentinel
			p.Field = otherSentinel
			p.Subfield = otherSentinel
			p.Niche = otherSentinel
		}

		p.TopicTitles = topicsByProject[pid]
	}
	return nil
}

// addLevel records the path segment at the given depth into the level's
// distinct set. A path too shallow for the depth contributes nothing.
func addLevel(parts []string, depth int, out *[]string, seen map[string]bool) {
	if depth >= len(parts) {
		return
	}
	seg := strings.TrimSpace(parts[depth])
	if seg == "" || seen[seg] {
		return
	}
	seen[seg] = true
	*out = append(*out, seg)
}

func orOther(vals []string) []string {
	if len(vals) == 0 {
		return otherSentinel
	}
	return vals
}
