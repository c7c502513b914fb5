package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/dsyslab/tokenlens/pkg/document"
	"github.com/dsyslab/tokenlens/pkg/kvstore"
	"github.com/dsyslab/tokenlens/pkg/scan"
	"github.com/dsyslab/tokenlens/pkg/util"
)

// commonFlags are shared by every document-reading command.
type commonFlags struct {
	doc       *string
	storage   *string
	logLevel  *string
	logFormat *string
}

func addCommonFlags(fs *flag.FlagSet) *commonFlags {
	return &commonFlags{
		doc:       fs.String("doc", "", "path to the design document JSON"),
		storage:   fs.String("storage", "", "path to the key-value store file"),
		logLevel:  fs.String("log-level", "", "log level: debug, info, warn, error"),
		logFormat: fs.String("log-format", "", "log format: text or json"),
	}
}

// scanFlags extends commonFlags with scope selection.
type scanFlags struct {
	*commonFlags
	scope      *string
	page       *string
	selection  *string
	pages      *string
	failClosed *bool
}

func addScanFlags(fs *flag.FlagSet) *scanFlags {
	return &scanFlags{
		commonFlags: addCommonFlags(fs),
		scope:       fs.String("scope", "page", "scan scope: page, selection or document"),
		page:        fs.String("page", "", "page id or name to treat as current"),
		selection:   fs.String("selection", "", "comma-separated node ids"),
		pages:       fs.String("pages", "", "glob restricting document-scope pages"),
		failClosed:  fs.Bool("ghost-fail-closed", false, "treat collections as ghosts when library enumeration fails"),
	}
}

// scanEnv is the wired-up state behind a single CLI invocation.
type scanEnv struct {
	cfg *ProjectConfig
	doc *document.Document
	kv  *kvstore.Store
	log *slog.Logger
}

func (e *scanEnv) close() {
	if e.kv != nil {
		e.kv.Close()
	}
}

// openEnv loads config, logger, document and storage for a command.
func openEnv(cf *commonFlags) (*scanEnv, error) {
	cfg, err := loadProjectConfig()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = &ProjectConfig{}
	}

	log := util.NewLogger(util.LoggerConfig{
		Level:  util.LogLevel(resolvePath(*cf.logLevel, cfg.LogLevel, string(util.LevelInfo))),
		Format: util.LogFormat(resolvePath(*cf.logFormat, cfg.LogFormat, string(util.FormatText))),
		Output: os.Stderr,
	})

	docPath := resolvePath(*cf.doc, cfg.DocumentPath, "")
	if docPath == "" {
		return nil, fmt.Errorf("no document given: pass --doc or set document_path in %s", configFile)
	}
	doc, err := document.Load(docPath, log)
	if err != nil {
		return nil, err
	}

	storagePath := resolvePath(*cf.storage, cfg.StoragePath, defaultStoragePath)
	if err := ensureStorageDir(storagePath); err != nil {
		return nil, err
	}
	kv, err := kvstore.Open(storagePath)
	if err != nil {
		return nil, err
	}
	return &scanEnv{cfg: cfg, doc: doc, kv: kv, log: log}, nil
}

// newSession applies the scope flags and builds a scan session.
func (e *scanEnv) newSession(sf *scanFlags) (*scan.Session, error) {
	if *sf.page != "" {
		if err := e.doc.SetCurrentPage(*sf.page); err != nil {
			return nil, err
		}
	}
	if *sf.selection != "" {
		ids := strings.Split(*sf.selection, ",")
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
		e.doc.SetSelection(ids)
	}

	opts := scan.Options{
		GhostFailClosed: *sf.failClosed || e.cfg.GhostFailClosed,
		PageGlob:        resolvePath(*sf.pages, e.cfg.Pages, ""),
		Logger:          e.log,
		Progress: func(p scan.Progress) {
			e.log.Debug("scan progress", "current", p.Current, "total", p.Total, "page", p.ScopeName)
		},
	}
	return scan.NewSession(e.doc, e.kv, opts), nil
}

func runScan(args []string) error {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	sf := addScanFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := openEnv(sf.commonFlags)
	if err != nil {
		return err
	}
	defer env.close()

	session, err := env.newSession(sf)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := session.GetVariableCollections(ctx, scan.Scope(*sf.scope))
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runComponents(args []string) error {
	fs := flag.NewFlagSet("components", flag.ExitOnError)
	sf := addScanFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := openEnv(sf.commonFlags)
	if err != nil {
		return err
	}
	defer env.close()

	session, err := env.newSession(sf)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := session.GetComponentUsage(ctx, scan.Scope(*sf.scope))
	if err != nil {
		return err
	}
	return printJSON(res)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
