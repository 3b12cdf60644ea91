// Package mock is an in-memory graph that answers the precompiled reconcile
// query variants the way Neo4j would.
package mock

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/edgehound/internal/domain"
	"github.com/yungbote/edgehound/internal/platform/importerr"
	"github.com/yungbote/edgehound/internal/reconcile"
)

type Node struct {
	Label    domain.NodeLabel
	Name     string
	ObjectID string
	Domain   string
}

type Edge struct {
	From  int
	To    int
	Label string
}

type Call struct {
	Query  reconcile.Query
	Params map[string]any
}

// Graph implements reconcile.Store plus the domain check and Close used by
// the importer.
type Graph struct {
	Nodes []Node
	Edges []Edge
	Calls []Call
	// Fail, when set, is consulted before each query; a non-nil result is
	// returned as the store error.
	Fail   func(Call) error
	Closed bool
}

func New() *Graph {
	return &Graph{}
}

func (g *Graph) AddNode(n Node) int {
	g.Nodes = append(g.Nodes, n)
	return len(g.Nodes) - 1
}

func (g *Graph) User(name, sid string) int {
	return g.AddNode(Node{Label: domain.NodeUser, Name: name, ObjectID: sid})
}

func (g *Graph) Group(name, sid string) int {
	return g.AddNode(Node{Label: domain.NodeGroup, Name: name, ObjectID: sid})
}

func (g *Graph) Computer(name string) int {
	return g.AddNode(Node{Label: domain.NodeComputer, Name: name})
}

func (g *Graph) CountMatches(_ context.Context, query string, params map[string]any) (int64, error) {
	q, err := g.record(query, params, reconcile.OpExists)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, pair := range g.matches(q, params) {
		from, to := g.orient(q, pair)
		for _, e := range g.Edges {
			if e.From == from && e.To == to && e.Label == q.Edge.String() {
				n++
			}
		}
	}
	return n, nil
}

func (g *Graph) Execute(_ context.Context, query string, params map[string]any) ([]map[string]any, error) {
	q, err := g.record(query, params, reconcile.OpCreate)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	for _, pair := range g.matches(q, params) {
		from, to := g.orient(q, pair)
		g.Edges = append(g.Edges, Edge{From: from, To: to, Label: q.Edge.String()})
		rows = append(rows, map[string]any{reconcile.EchoColumn: q.Edge.String()})
	}
	return rows, nil
}

func (g *Graph) ValidateDomain(_ context.Context, domainName string) error {
	domainName = strings.ToUpper(strings.TrimSpace(domainName))
	if domainName == "" {
		return nil
	}
	for _, n := range g.Nodes {
		if n.Domain == domainName || strings.HasSuffix(n.Domain, "."+domainName) {
			return nil
		}
	}
	return importerr.Errorf(importerr.KindConnectivity, "validate_domain", "domain %q not present in store", domainName)
}

func (g *Graph) Close(context.Context) error {
	g.Closed = true
	return nil
}

// EdgeCount counts stored edges carrying label.
func (g *Graph) EdgeCount(label domain.EdgeLabel) int {
	n := 0
	for _, e := range g.Edges {
		if e.Label == label.String() {
			n++
		}
	}
	return n
}

// CallsOf filters the recorded calls by operation.
func (g *Graph) CallsOf(op reconcile.Op) []Call {
	var out []Call
	for _, c := range g.Calls {
		if c.Query.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (g *Graph) record(query string, params map[string]any, op reconcile.Op) (reconcile.Query, error) {
	q, ok := reconcile.Lookup(query)
	if !ok {
		return q, fmt.Errorf("mock: unknown query %q", query)
	}
	if q.Op != op {
		return q, fmt.Errorf("mock: %s query sent to %s", q.Op, op)
	}
	call := Call{Query: q, Params: params}
	g.Calls = append(g.Calls, call)
	if g.Fail != nil {
		if err := g.Fail(call); err != nil {
			return q, err
		}
	}
	return q, nil
}

type pair struct{ host, principal int }

func (g *Graph) matches(q reconcile.Query, params map[string]any) []pair {
	host, _ := params[reconcile.ParamHost].(string)
	principal, _ := params[reconcile.ParamPrincipal].(string)
	var hosts, principals []int
	for i, n := range g.Nodes {
		if n.Label == q.Host && n.Name == host {
			hosts = append(hosts, i)
		}
		if n.Label != q.Principal {
			continue
		}
		id := n.Name
		if q.Scheme == domain.SchemeSID {
			id = n.ObjectID
		}
		if id != "" && id == principal {
			principals = append(principals, i)
		}
	}
	var out []pair
	for _, h := range hosts {
		for _, p := range principals {
			out = append(out, pair{host: h, principal: p})
		}
	}
	return out
}

func (g *Graph) orient(q reconcile.Query, p pair) (from, to int) {
	if q.Direction == domain.HostToPrincipal {
		return p.host, p.principal
	}
	return p.principal, p.host
}
