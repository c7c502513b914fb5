package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/dsyslab/tokenlens/pkg/document"
	"github.com/dsyslab/tokenlens/pkg/kvstore"
	"github.com/dsyslab/tokenlens/pkg/mcp"
	"github.com/dsyslab/tokenlens/pkg/mcplog"
	"github.com/dsyslab/tokenlens/pkg/scan"
	"github.com/dsyslab/tokenlens/pkg/util"
	"github.com/dsyslab/tokenlens/pkg/watch"
)

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cf := addCommonFlags(fs)
	callLog := fs.String("call-log", "", "JSONL file recording every tool call")
	pages := fs.String("pages", "", "glob restricting document-scope pages")
	failClosed := fs.Bool("ghost-fail-closed", false, "treat collections as ghosts when library enumeration fails")
	noWatch := fs.Bool("no-watch", false, "do not watch the document file for changes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadProjectConfig()
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &ProjectConfig{}
	}

	// Logs go to stderr; stdout carries the MCP stream.
	log := util.NewLogger(util.LoggerConfig{
		Level:  util.LogLevel(resolvePath(*cf.logLevel, cfg.LogLevel, string(util.LevelInfo))),
		Format: util.LogFormat(resolvePath(*cf.logFormat, cfg.LogFormat, string(util.FormatText))),
		Output: os.Stderr,
	})

	docPath := resolvePath(*cf.doc, cfg.DocumentPath, "")
	if docPath == "" {
		return fmt.Errorf("no document given: pass --doc or set document_path in %s", configFile)
	}
	// Fail early on an unreadable document rather than on first tool call.
	if _, err := document.Load(docPath, log); err != nil {
		return err
	}

	storagePath := resolvePath(*cf.storage, cfg.StoragePath, defaultStoragePath)
	if err := ensureStorageDir(storagePath); err != nil {
		return err
	}
	kv, err := kvstore.Open(storagePath)
	if err != nil {
		return err
	}
	defer kv.Close()

	recorder, err := mcplog.Open(resolvePath(*callLog, cfg.CallLogPath, ""))
	if err != nil {
		return err
	}
	defer recorder.Close()

	srv, err := mcp.NewServer(mcp.Config{
		DocumentPath: docPath,
		Storage:      kv,
		ScanOptions: scan.Options{
			GhostFailClosed: *failClosed || cfg.GhostFailClosed,
			PageGlob:        resolvePath(*pages, cfg.Pages, ""),
			Logger:          log,
		},
		CallLog: recorder,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	if !*noWatch {
		w, err := watch.New(docPath, srv.InvalidateDocument, watch.Options{Logger: log})
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()
	}

	log.Info("serving", "document", docPath, "storage", storagePath)
	return srv.ServeStdio()
}

// runWatch rescans the whole document after every change and prints a
// one-line summary, a live lint loop for token hygiene.
func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	sf := addScanFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := openEnv(sf.commonFlags)
	if err != nil {
		return err
	}
	defer env.close()

	docPath := resolvePath(*sf.doc, env.cfg.DocumentPath, "")

	rescan := func(path string) {
		doc, err := document.Load(path, env.log)
		if err != nil {
			env.log.Error("reload failed", "error", err)
			return
		}
		env.doc = doc
		session, err := env.newSession(sf)
		if err != nil {
			env.log.Error("session setup failed", "error", err)
			return
		}
		res, err := session.GetVariableCollections(context.Background(), scan.ScopeDocument)
		if err != nil {
			env.log.Error("scan failed", "error", err)
			return
		}
		fmt.Printf("%s: %d collections, %d unbound, %d nodes\n",
			res.ScopeName, len(res.Collections), len(res.Unbound), res.Stats.NodesVisited)
	}

	rescan(docPath)

	w, err := watch.New(docPath, rescan, watch.Options{Logger: env.log})
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	env.log.Info("watching", "document", docPath)
	<-ctx.Done()
	return nil
}
