// Command quilldoc converts documents between HTML, delta JSON and
// markdown, and keeps snapshots of them.
//
//	quilldoc --from html --to markdown page.html
//	quilldoc --save notes < notes.html
//	quilldoc --load notes --to html
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cozy/quill-go/config"
	"github.com/cozy/quill-go/delta"
	"github.com/cozy/quill-go/editor"
	"github.com/cozy/quill-go/internal/logger"
	"github.com/cozy/quill-go/markdown"
	"github.com/cozy/quill-go/markup"
	tableschema "github.com/cozy/quill-go/schema/table"
	"github.com/cozy/quill-go/store"
	tables "github.com/cozy/quill-go/table"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "quilldoc:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	flags := config.Flags()
	from := flags.String("from", "html", "input format: html or delta")
	to := flags.String("to", "delta", "output format: delta, html or markdown")
	save := flags.String("save", "", "save the document as a new snapshot of this id")
	load := flags.String("load", "", "start from the latest snapshot of this id")
	if err := flags.Parse(args); err != nil {
		return err
	}
	path, _ := flags.GetString("config")
	cfg, err := config.Load(path, flags)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	ctx := logger.NewContext(context.Background(), log)

	reg, err := tableschema.NewRegistry(log)
	if err != nil {
		return err
	}
	engine := tables.New(tables.WithLogger(log))

	var snapshots *store.SnapshotStore
	if *save != "" || *load != "" {
		snapshots, err = store.Open(cfg.Store.DSN, log)
		if err != nil {
			return err
		}
		defer snapshots.Close()
	}

	var doc *delta.Delta
	if *load != "" {
		doc, _, err = snapshots.LoadLatest(ctx, *load)
	} else {
		doc, err = read(flags.Args(), stdin, *from, markup.NewImporter(reg, markup.WithLogger(log), markup.WithEngine(engine)))
	}
	if err != nil {
		return err
	}

	session, err := editor.New(reg,
		editor.WithLogger(log),
		editor.WithEngine(engine),
		editor.WithOptions(cfg.Editor))
	if err != nil {
		return err
	}
	if _, err := session.SetContents(doc, editor.Silent); err != nil {
		return err
	}

	if *save != "" {
		rev, err := nextRevision(ctx, snapshots, *save)
		if err != nil {
			return err
		}
		if err := snapshots.SaveDocumentSnapshot(ctx, *save, rev, session.GetContents()); err != nil {
			return err
		}
		logger.L(ctx).Info("snapshot saved", zap.String("document", *save), zap.Uint64("revision", rev))
	}
	return write(stdout, session, *to)
}

func read(args []string, stdin io.Reader, format string, im *markup.Importer) (*delta.Delta, error) {
	in := stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	switch format {
	case "html":
		return im.Import(string(data))
	case "delta":
		return delta.FromJSON(data)
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

func nextRevision(ctx context.Context, s *store.SnapshotStore, id string) (uint64, error) {
	_, rev, err := s.LoadLatest(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return rev + 1, nil
}

func write(out io.Writer, s *editor.Session, format string) error {
	var text string
	switch format {
	case "delta":
		data, err := json.MarshalIndent(s.GetContents(), "", "  ")
		if err != nil {
			return err
		}
		text = string(data)
	case "html":
		html, err := markup.NewExporter(s.Registry()).Export(s.Tree())
		if err != nil {
			return err
		}
		text = html
	case "markdown":
		md, err := markdown.DefaultSerializer.Serialize(s.Tree())
		if err != nil {
			return err
		}
		text = md
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	_, err := fmt.Fprintln(out, text)
	return err
}
