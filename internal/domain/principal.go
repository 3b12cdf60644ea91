package domain

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SIDPrefix is the textual prefix shared by every NT-authority security
// identifier. Identifiers carrying it are matched on objectid, not name.
const SIDPrefix = "S-1-5-"

// Scheme says which property identifies a principal node.
type Scheme uint8

const (
	SchemeName Scheme = iota
	SchemeSID
)

func (s Scheme) String() string {
	switch s {
	case SchemeName:
		return "name"
	case SchemeSID:
		return "sid"
	default:
		return fmt.Sprintf("scheme(%d)", uint8(s))
	}
}

// Property is the node property the identifier is compared against.
func (s Scheme) Property() string {
	if s == SchemeSID {
		return "objectid"
	}
	return "name"
}

// ClassifyPrincipal derives the identifier scheme. It never fails.
func ClassifyPrincipal(id string) Scheme {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(id)), SIDPrefix) {
		return SchemeSID
	}
	return SchemeName
}

// StripSIDDomain drops a trailing "@DOMAIN" qualification from a SID.
func StripSIDDomain(id string) string {
	if i := strings.IndexByte(id, '@'); i >= 0 {
		return id[:i]
	}
	return id
}

// NodeLabel is the closed set of node labels that may be placed into a query.
type NodeLabel uint8

const (
	NodeUnknown NodeLabel = iota
	NodeUser
	NodeGroup
	NodeComputer
)

var nodeLabelNames = map[NodeLabel]string{
	NodeUser:     "User",
	NodeGroup:    "Group",
	NodeComputer: "Computer",
}

func (l NodeLabel) String() string {
	if s, ok := nodeLabelNames[l]; ok {
		return s
	}
	return ""
}

func (l NodeLabel) Valid() bool {
	_, ok := nodeLabelNames[l]
	return ok
}

// NodeLabels lists every valid label in declaration order.
func NodeLabels() []NodeLabel {
	return []NodeLabel{NodeUser, NodeGroup, NodeComputer}
}

// ParseNodeLabel title-cases raw ("gROUP" -> "Group") and maps it onto the
// enumeration.
func ParseNodeLabel(raw string) (NodeLabel, error) {
	want := TitleCase(strings.TrimSpace(raw))
	for l, name := range nodeLabelNames {
		if name == want {
			return l, nil
		}
	}
	return NodeUnknown, fmt.Errorf("unrecognized node type %q", raw)
}

// TitleCase upper-cases the first rune and lower-cases the rest.
func TitleCase(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[n:])
}
