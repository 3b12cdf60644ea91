package domain

import (
	"fmt"
	"strings"
)

// EdgeLabel is the relationship type stamped on an imported edge.
type EdgeLabel uint8

const (
	EdgeUnknown EdgeLabel = iota
	EdgeAdminTo
	EdgeCanRDP
	EdgeCanPSRemote
	EdgeExecuteDCOM
	EdgeHasSession
)

var edgeLabelNames = map[EdgeLabel]string{
	EdgeAdminTo:     "AdminTo",
	EdgeCanRDP:      "CanRDP",
	EdgeCanPSRemote: "CanPSRemote",
	EdgeExecuteDCOM: "ExecuteDCOM",
	EdgeHasSession:  "HasSession",
}

func (e EdgeLabel) String() string {
	if s, ok := edgeLabelNames[e]; ok {
		return s
	}
	return ""
}

func (e EdgeLabel) Valid() bool {
	_, ok := edgeLabelNames[e]
	return ok
}

// AccessEdgeLabels are the labels selectable for principal->host imports.
func AccessEdgeLabels() []EdgeLabel {
	return []EdgeLabel{EdgeAdminTo, EdgeCanRDP, EdgeCanPSRemote, EdgeExecuteDCOM}
}

// ParseEdgeLabel is case-insensitive: "adminto" and "AdminTo" both parse.
func ParseEdgeLabel(raw string) (EdgeLabel, error) {
	want := strings.ToLower(strings.TrimSpace(raw))
	for l, name := range edgeLabelNames {
		if strings.ToLower(name) == want {
			return l, nil
		}
	}
	return EdgeUnknown, fmt.Errorf("unrecognized edge type %q", raw)
}

// Direction says which end of the edge the principal sits on.
type Direction uint8

const (
	PrincipalToHost Direction = iota
	HostToPrincipal
)

func (d Direction) String() string {
	if d == HostToPrincipal {
		return "host->principal"
	}
	return "principal->host"
}

var (
	accessHeader  = []string{"username", "hostname", "type"}
	sessionHeader = []string{"username", "hostname"}
)

// EdgeSpec describes the one relationship an invocation imports. It is
// fixed for the whole run.
type EdgeSpec struct {
	Edge      EdgeLabel
	Direction Direction
	HostLabel NodeLabel
	header    []string
}

// NewAccessSpec builds the principal->host spec for one of AccessEdgeLabels.
func NewAccessSpec(edge EdgeLabel) (EdgeSpec, error) {
	for _, l := range AccessEdgeLabels() {
		if l == edge {
			return EdgeSpec{Edge: edge, Direction: PrincipalToHost, HostLabel: NodeComputer, header: accessHeader}, nil
		}
	}
	return EdgeSpec{}, fmt.Errorf("edge type %q is not a principal->host access edge", edge.String())
}

// NewSessionSpec builds the fixed host->principal HasSession spec.
func NewSessionSpec() EdgeSpec {
	return EdgeSpec{Edge: EdgeHasSession, Direction: HostToPrincipal, HostLabel: NodeComputer, header: sessionHeader}
}

// Header is the exact CSV header an input file for this edge must carry.
func (s EdgeSpec) Header() []string {
	return append([]string(nil), s.header...)
}

// HasTypeColumn reports whether input rows may declare the principal type.
func (s EdgeSpec) HasTypeColumn() bool {
	return len(s.header) == 3
}

func (s EdgeSpec) String() string {
	return fmt.Sprintf("%s (%s)", s.Edge, s.Direction)
}
