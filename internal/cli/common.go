// Package cli holds the cobra commands for the edge importers.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yungbote/edgehound/internal/app"
	"github.com/yungbote/edgehound/internal/domain"
	"github.com/yungbote/edgehound/internal/observability"
	"github.com/yungbote/edgehound/internal/platform/importerr"
	"github.com/yungbote/edgehound/internal/platform/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

type commonFlags struct {
	configPath string
	uri        string
	username   string
	password   string
	database   string
	domain     string
	logMode    string
	debug      bool
	dryRun     bool
}

func bindCommon(cmd *cobra.Command, f *commonFlags) {
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "YAML settings file")
	fl.StringVar(&f.uri, "uri", "", "Neo4j bolt URI (env NEO4J_URI, default "+app.DefaultSettings().URI+")")
	fl.StringVarP(&f.username, "username", "u", "", "Neo4j user (env NEO4J_USER, default "+app.DefaultSettings().User+")")
	fl.StringVarP(&f.password, "password", "p", "", "Neo4j password (env NEO4J_PASSWORD; prompted when empty on a terminal)")
	fl.StringVar(&f.database, "database", "", "Neo4j database name (env NEO4J_DATABASE)")
	fl.StringVarP(&f.domain, "domain", "d", "", "AD domain that must already exist in the store, e.g. EXAMPLE.COM (env AD_DOMAIN)")
	fl.StringVar(&f.logMode, "log-mode", "", "development|production (env LOG_MODE)")
	fl.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fl.BoolVar(&f.dryRun, "dry-run", false, "Verify connectivity and count rows without writing relations")
}

// settings merges default < file < env < explicitly set flags.
func (f *commonFlags) settings(cmd *cobra.Command) (app.Settings, error) {
	s := app.DefaultSettings()
	if f.configPath != "" {
		fs, err := app.LoadSettingsFile(f.configPath)
		if err != nil {
			return app.Settings{}, err
		}
		s = s.Merge(fs)
	}
	s = s.Merge(app.SettingsFromEnv())

	var flags app.Settings
	changed := cmd.Flags().Changed
	if changed("uri") {
		flags.URI = strings.TrimSpace(f.uri)
	}
	if changed("username") {
		flags.User = strings.TrimSpace(f.username)
	}
	if changed("password") {
		flags.Password = f.password
	}
	if changed("database") {
		flags.Database = strings.TrimSpace(f.database)
	}
	if changed("domain") {
		flags.Domain = strings.TrimSpace(f.domain)
	}
	if changed("log-mode") {
		flags.LogMode = strings.TrimSpace(f.logMode)
	}
	return s.Merge(flags), nil
}

func promptPassword(cmd *cobra.Command, user string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Neo4j password for %s: ", user)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", importerr.New(importerr.KindConfig, "prompt_password", err)
	}
	return string(b), nil
}

func run(cmd *cobra.Command, f *commonFlags, csvPath string, spec domain.EdgeSpec, opts []app.Option) error {
	settings, err := f.settings(cmd)
	if err != nil {
		return err
	}
	if settings.Password == "" {
		if settings.Password, err = promptPassword(cmd, settings.User); err != nil {
			return err
		}
	}

	log, err := logger.New(settings.LogMode, logger.WithDebug(f.debug))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	runID := uuid.NewString()
	log = log.With("run_id", runID, "tool", cmd.Name())
	log.Debug("Debug logging is on")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	otelCfg := observability.OtelConfigFromEnv(cmd.Name())
	otelCfg.Version = version
	otelCfg.RunID = runID
	shutdown := observability.InitOTel(ctx, log, otelCfg)
	defer func() { _ = shutdown(context.Background()) }()

	application, err := app.New(app.Config{
		Settings: settings,
		CSVPath:  csvPath,
		Spec:     spec,
		DryRun:   f.dryRun,
	}, log, opts...)
	if err != nil {
		return err
	}
	sum, err := application.Run(ctx)
	if err != nil {
		log.Error("Import aborted", "kind", string(importerr.KindOf(err)), "error", err)
		return err
	}
	if f.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "[dry-run] no relations written")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "done; created=%d already_exists=%d resolution_failed=%d skipped=%d\n",
		sum.Created, sum.AlreadyExists, sum.ResolutionFailed, sum.Skipped)
	return nil
}
