package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/yungbote/edgehound/internal/app"
	"github.com/yungbote/edgehound/internal/domain"
	"github.com/yungbote/edgehound/internal/platform/importerr"
	"github.com/yungbote/edgehound/internal/platform/logger"
	"github.com/yungbote/edgehound/internal/platform/neo4jdb"
	"github.com/yungbote/edgehound/internal/reconcile/mock"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD", "NEO4J_DATABASE", "NEO4J_TIMEOUT_SECONDS", "NEO4J_MAX_POOL_SIZE", "AD_DOMAIN", "LOG_MODE", "OTEL_ENABLED"} {
		t.Setenv(k, "")
	}
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edges.csv")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestAccessSpec(t *testing.T) {
	cases := []struct {
		name    string
		args    []string
		flag    string
		want    domain.EdgeLabel
		wantErr bool
	}{
		{"positional", []string{"x.csv", "adminto"}, "", domain.EdgeAdminTo, false},
		{"flag", []string{"x.csv"}, "CanRDP", domain.EdgeCanRDP, false},
		{"both agree", []string{"x.csv", "executedcom"}, "ExecuteDCOM", domain.EdgeExecuteDCOM, false},
		{"both differ", []string{"x.csv", "adminto"}, "canrdp", 0, true},
		{"missing", []string{"x.csv"}, "", 0, true},
		{"unknown", []string{"x.csv", "MemberOf"}, "", 0, true},
		{"session edge", []string{"x.csv", "HasSession"}, "", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := accessSpec(tc.args, tc.flag)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("accessSpec: expected error, got spec %s", spec)
				}
				return
			}
			if err != nil {
				t.Fatalf("accessSpec: %v", err)
			}
			if spec.Edge != tc.want {
				t.Fatalf("edge: want=%s got=%s", tc.want, spec.Edge)
			}
		})
	}
}

func TestFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEO4J_URI", "bolt://env:7687")
	t.Setenv("NEO4J_USER", "env-user")

	var f commonFlags
	cmd := &cobra.Command{Use: "test"}
	bindCommon(cmd, &f)
	if err := cmd.ParseFlags([]string{"--uri", "bolt://flag:7687", "-p", "secret"}); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	s, err := f.settings(cmd)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if s.URI != "bolt://flag:7687" || s.User != "env-user" || s.Password != "secret" {
		t.Fatalf("settings: %+v", s)
	}
}

func TestGroupHoundEndToEnd(t *testing.T) {
	clearEnv(t)
	g := mock.New()
	g.User("ALICE", "")
	g.Group("HELPDESK", "S-1-5-21-1-2-3-1105")
	g.Computer("WKSTN01")
	opener := app.WithStoreOpener(func(context.Context, neo4jdb.Config, *logger.Logger) (app.Store, error) { return g, nil })

	path := writeCSV(t, "username,hostname,type\nalice,wkstn01,user\nS-1-5-21-1-2-3-1105,wkstn01,\n")
	cmd := NewGroupHoundCommand(opener)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "AdminTo", "-p", "pw", "--log-mode", "production"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "done; created=2 already_exists=0 resolution_failed=0 skipped=0") {
		t.Fatalf("output: %q", out.String())
	}
	if g.EdgeCount(domain.EdgeAdminTo) != 2 {
		t.Fatalf("edges: want=2 got=%d", g.EdgeCount(domain.EdgeAdminTo))
	}

	out.Reset()
	cmd = NewGroupHoundCommand(opener)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--type", "adminto", "-p", "pw", "--log-mode", "production"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !strings.Contains(out.String(), "created=0 already_exists=2") {
		t.Fatalf("second output: %q", out.String())
	}
}

func TestSessionHoundDryRun(t *testing.T) {
	clearEnv(t)
	g := mock.New()
	opener := app.WithStoreOpener(func(context.Context, neo4jdb.Config, *logger.Logger) (app.Store, error) { return g, nil })

	path := writeCSV(t, "username,hostname\nalice,wkstn01\n")
	cmd := NewSessionHoundCommand(opener)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path, "--dry-run", "-p", "pw", "--log-mode", "production"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(g.Calls) != 0 {
		t.Fatalf("dry run issued %d queries", len(g.Calls))
	}
	if !strings.Contains(out.String(), "[dry-run]") {
		t.Fatalf("output: %q", out.String())
	}
}

func TestBadHeaderFailsCommand(t *testing.T) {
	clearEnv(t)
	path := writeCSV(t, "username,hostname,role\nalice,wkstn01,user\n")
	cmd := NewGroupHoundCommand(app.WithStoreOpener(func(context.Context, neo4jdb.Config, *logger.Logger) (app.Store, error) {
		t.Fatalf("store must not be opened")
		return nil, nil
	}))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{path, "AdminTo", "-p", "pw", "--log-mode", "production"})
	err := cmd.Execute()
	if !importerr.Is(err, importerr.KindSchema) {
		t.Fatalf("want schema error, got=%v", err)
	}
}
