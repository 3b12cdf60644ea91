package reconcile

import (
	"strings"
	"testing"

	"github.com/yungbote/edgehound/internal/domain"
)

func TestVariantTableIsClosed(t *testing.T) {
	// 4 access edges x 3 principal labels, plus HasSession on users only;
	// 2 schemes and 2 ops each.
	if got, want := len(queryText), (4*3+1)*2*2; got != want {
		t.Fatalf("variants: want=%d got=%d", want, got)
	}
	if len(queryByText) != len(queryText) {
		t.Fatalf("variant texts are not unique: %d vs %d", len(queryByText), len(queryText))
	}
	if _, ok := Cypher(Query{Direction: domain.PrincipalToHost, Edge: domain.EdgeHasSession, Host: domain.NodeComputer, Principal: domain.NodeUser}); ok {
		t.Fatalf("HasSession must not exist in the principal->host direction")
	}
	if _, ok := Cypher(Query{Direction: domain.PrincipalToHost, Edge: domain.EdgeAdminTo, Host: domain.NodeComputer, Principal: domain.NodeUnknown}); ok {
		t.Fatalf("unknown principal label must not have a variant")
	}
	if _, ok := Cypher(Query{Direction: domain.HostToPrincipal, Edge: domain.EdgeHasSession, Host: domain.NodeComputer, Principal: domain.NodeGroup}); ok {
		t.Fatalf("HasSession must not target groups")
	}
	if _, ok := Cypher(Query{Direction: domain.PrincipalToHost, Edge: domain.EdgeAdminTo, Host: domain.NodeUser, Principal: domain.NodeGroup}); ok {
		t.Fatalf("only Computer may be the host label")
	}
}

func TestVariantText(t *testing.T) {
	q := Query{Direction: domain.PrincipalToHost, Edge: domain.EdgeAdminTo, Host: domain.NodeComputer, Principal: domain.NodeGroup, Scheme: domain.SchemeSID, Op: OpExists}
	text, ok := Cypher(q)
	if !ok {
		t.Fatalf("Cypher: missing %+v", q)
	}
	for _, want := range []string{"(u:Group)", "(c:Computer)", "p=(u)-[r:AdminTo]->(c)", "u.objectid = $userName", "c.name = $hostName", "RETURN COUNT(p)"} {
		if !strings.Contains(text, want) {
			t.Fatalf("exists query missing %q:\n%s", want, text)
		}
	}

	q = Query{Direction: domain.HostToPrincipal, Edge: domain.EdgeHasSession, Host: domain.NodeComputer, Principal: domain.NodeUser, Scheme: domain.SchemeName, Op: OpCreate}
	text, ok = Cypher(q)
	if !ok {
		t.Fatalf("Cypher: missing %+v", q)
	}
	for _, want := range []string{"CREATE (c)-[r:HasSession]->(u)", "u.name = $userName", "RETURN type(r) AS edge"} {
		if !strings.Contains(text, want) {
			t.Fatalf("create query missing %q:\n%s", want, text)
		}
	}
	back, ok := Lookup(text)
	if !ok || back != q {
		t.Fatalf("Lookup: want=%+v got=%+v ok=%v", q, back, ok)
	}
}

func TestPlan(t *testing.T) {
	access, err := domain.NewAccessSpec(domain.EdgeAdminTo)
	if err != nil {
		t.Fatalf("NewAccessSpec: %v", err)
	}
	session := domain.NewSessionSpec()
	cases := []struct {
		name string
		spec domain.EdgeSpec
		rec  domain.EdgeRecord
		want []domain.NodeLabel
	}{
		{"declared name", access, domain.EdgeRecord{Scheme: domain.SchemeName, DeclaredType: domain.NodeGroup}, []domain.NodeLabel{domain.NodeGroup}},
		{"undeclared name", access, domain.EdgeRecord{Scheme: domain.SchemeName}, []domain.NodeLabel{domain.NodeUser}},
		{"declared sid", access, domain.EdgeRecord{Scheme: domain.SchemeSID, DeclaredType: domain.NodeUser}, []domain.NodeLabel{domain.NodeUser}},
		{"undeclared sid", access, domain.EdgeRecord{Scheme: domain.SchemeSID}, []domain.NodeLabel{domain.NodeUser, domain.NodeGroup}},
		{"session sid", session, domain.EdgeRecord{Scheme: domain.SchemeSID}, []domain.NodeLabel{domain.NodeUser}},
		{"session name", session, domain.EdgeRecord{Scheme: domain.SchemeName}, []domain.NodeLabel{domain.NodeUser}},
	}
	for _, tc := range cases {
		got := Plan(tc.spec, tc.rec)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
			}
		}
	}
}
