package reconcile

import (
	"fmt"

	"github.com/yungbote/edgehound/internal/domain"
)

// Parameter names shared by every query variant.
const (
	ParamHost      = "hostName"
	ParamPrincipal = "userName"
	// EchoColumn carries type(r) back from a create.
	EchoColumn = "edge"
)

type Op uint8

const (
	OpExists Op = iota
	OpCreate
)

func (o Op) String() string {
	if o == OpCreate {
		return "create"
	}
	return "exists"
}

// Query identifies one precompiled Cypher variant.
type Query struct {
	Direction domain.Direction
	Edge      domain.EdgeLabel
	Host      domain.NodeLabel
	Principal domain.NodeLabel
	Scheme    domain.Scheme
	Op        Op
}

// The variant table is rendered once from the closed label enumerations.
// Nothing read from input is ever interpolated into query text.
var (
	queryText   = map[Query]string{}
	queryByText = map[string]Query{}
)

func init() {
	schemes := []domain.Scheme{domain.SchemeName, domain.SchemeSID}
	for _, dir := range []domain.Direction{domain.PrincipalToHost, domain.HostToPrincipal} {
		for _, edge := range edgesFor(dir) {
			for _, principal := range principalsFor(dir) {
				for _, scheme := range schemes {
					for _, op := range []Op{OpExists, OpCreate} {
						q := Query{Direction: dir, Edge: edge, Host: domain.NodeComputer, Principal: principal, Scheme: scheme, Op: op}
						text := render(q)
						queryText[q] = text
						queryByText[text] = q
					}
				}
			}
		}
	}
}

func edgesFor(dir domain.Direction) []domain.EdgeLabel {
	if dir == domain.HostToPrincipal {
		return []domain.EdgeLabel{domain.EdgeHasSession}
	}
	return domain.AccessEdgeLabels()
}

// Sessions only ever land on users.
func principalsFor(dir domain.Direction) []domain.NodeLabel {
	if dir == domain.HostToPrincipal {
		return []domain.NodeLabel{domain.NodeUser}
	}
	return domain.NodeLabels()
}

func render(q Query) string {
	pattern := "(u)-[r:%s]->(c)"
	if q.Direction == domain.HostToPrincipal {
		pattern = "(c)-[r:%s]->(u)"
	}
	pattern = fmt.Sprintf(pattern, q.Edge)
	where := fmt.Sprintf("WHERE c.name = $%s AND u.%s = $%s", ParamHost, q.Scheme.Property(), ParamPrincipal)

	if q.Op == OpExists {
		return fmt.Sprintf(`MATCH (c:%s), (u:%s), p=%s
%s
RETURN COUNT(p)`, q.Host, q.Principal, pattern, where)
	}
	return fmt.Sprintf(`MATCH (c:%s), (u:%s)
%s
CREATE %s
RETURN type(r) AS %s`, q.Host, q.Principal, where, pattern, EchoColumn)
}

// Cypher returns the text of a variant. ok is false for combinations outside
// the table, e.g. HasSession in the principal->host direction or a Group
// principal for HasSession.
func Cypher(q Query) (string, bool) {
	text, ok := queryText[q]
	return text, ok
}

// Lookup maps query text back to its variant.
func Lookup(text string) (Query, bool) {
	q, ok := queryByText[text]
	return q, ok
}
