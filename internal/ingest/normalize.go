package ingest

import (
	"fmt"
	"strings"

	"github.com/yungbote/edgehound/internal/domain"
	"github.com/yungbote/edgehound/internal/platform/importerr"
)

// Normalize canonicalizes one data row: identifiers are trimmed and
// upper-cased, the optional type is title-cased and checked against the node
// label enumeration, and the principal scheme is derived.
func Normalize(fields []string, line int, spec domain.EdgeSpec) (domain.EdgeRecord, error) {
	width := len(spec.Header())
	if len(fields) != width {
		return domain.EdgeRecord{}, importerr.AtLine(importerr.KindSchema, "normalize", line,
			fmt.Errorf("expected %d fields, found %d", width, len(fields)))
	}

	principal := strings.ToUpper(strings.TrimSpace(fields[0]))
	host := strings.ToUpper(strings.TrimSpace(fields[1]))
	if principal == "" {
		return domain.EdgeRecord{}, importerr.AtLine(importerr.KindSchema, "normalize", line, fmt.Errorf("empty username"))
	}
	if host == "" {
		return domain.EdgeRecord{}, importerr.AtLine(importerr.KindSchema, "normalize", line, fmt.Errorf("empty hostname"))
	}

	rec := domain.EdgeRecord{
		Line:      line,
		Principal: principal,
		Scheme:    domain.ClassifyPrincipal(principal),
		Host:      host,
	}
	if spec.HasTypeColumn() {
		if raw := strings.TrimSpace(fields[2]); raw != "" {
			label, err := domain.ParseNodeLabel(raw)
			if err != nil {
				return domain.EdgeRecord{}, importerr.AtLine(importerr.KindSchema, "normalize", line, err)
			}
			rec.DeclaredType = label
		}
	}
	return rec, nil
}
