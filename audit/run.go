package audit

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"cssaudit/archive"
	"cssaudit/config"
	"cssaudit/css"
	"cssaudit/history"
	"cssaudit/state"
)

// Run implements the "analyze" subcommand: discover stylesheets, parse,
// analyze, render, optionally record history, map the verdict to an error.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("analyze")

	if cmd.Args().Len() == 0 {
		return errors.New("no input source has been specified")
	}

	env.Format = cmd.String("format")
	if len(env.Format) == 0 {
		env.Format = env.Cfg.Output.Format
	}
	if env.Format != "text" && env.Format != "json" {
		return fmt.Errorf("unsupported output format %q", env.Format)
	}
	env.OutPath = cmd.String("output")
	env.MaxScore = int(cmd.Int("max-score"))

	// CSS is not required to be UTF-8, old sheets may carry legacy encodings
	cp := cmd.String("force-cp")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully decoding all input as", zap.String("charset", n))
		}
	}

	log.Info("Analysis starting", zap.Strings("sources", cmd.Args().Slice()))
	defer func(start time.Time) {
		log.Info("Analysis completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	parser := css.NewParser(env.Log)

	var results []css.ParseResult
	for _, src := range cmd.Args().Slice() {
		abs, err := filepath.Abs(src)
		if err != nil {
			return err
		}
		res, err := collect(ctx, abs, parser, log)
		if err != nil {
			return err
		}
		results = append(results, res...)
	}

	cfg := env.Cfg.Analysis
	cfg.MaxScore = env.MaxScore

	rep := Analyze(results, cfg)
	verdict := CheckThresholds(rep, cfg)
	storeReport(env, rep)

	if err := render(rep, verdict, env); err != nil {
		return err
	}

	if env.Cfg.History.Enable {
		if err := record(rep, verdict, env.Cfg.History.Path, log); err != nil {
			// history is auxiliary, a failed write must not fail the run
			log.Warn("Unable to record run history", zap.Error(err))
		}
	}

	if !verdict.Passed {
		return fmt.Errorf("analysis failed: %s", strings.Join(verdict.Reasons, "; "))
	}
	return nil
}

func render(rep *Report, verdict Verdict, env *state.LocalEnv) error {
	out := os.Stdout
	color := false
	if len(env.OutPath) > 0 {
		f, err := os.Create(env.OutPath)
		if err != nil {
			return fmt.Errorf("unable to create output file %q: %w", env.OutPath, err)
		}
		defer f.Close()
		out = f
	} else {
		color = config.EnableColorOutput(out)
	}

	if env.Format == "json" {
		return RenderJSON(out, rep)
	}
	return RenderText(out, rep, verdict, color)
}

// storeInput saves one analyzed stylesheet for debugging. Entry names are
// sequenced, identically named inputs from different sources must not collide.
func storeInput(env *state.LocalEnv, name string, data []byte) {
	if env.Rpt == nil {
		return
	}
	env.Rpt.StoreData(fmt.Sprintf("input/%03d-%s", env.InputSeq, config.CleanFileName(name)), data)
	env.InputSeq++
}

// storeReport saves the produced report for debugging, always in JSON form.
func storeReport(env *state.LocalEnv, rep *Report) {
	if env.Rpt == nil {
		return
	}
	var buf bytes.Buffer
	if err := RenderJSON(&buf, rep); err == nil {
		env.Rpt.StoreData("report.json", buf.Bytes())
	}
}

func record(rep *Report, verdict Verdict, path string, log *zap.Logger) error {
	store, err := history.Open(path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Record(history.Entry{
		RecordedAt:   rep.GeneratedAt,
		Files:        rep.Global.Files,
		Rules:        rep.Global.Rules,
		Issues:       len(rep.Issues),
		OverallScore: rep.Summary.OverallScore,
		Grade:        rep.Summary.Grade,
		Passed:       verdict.Passed,
	})
}

// collect resolves one SOURCE argument into parse results. A source is a
// css file, a directory (walked recursively) or a zip archive, optionally
// with a path inside it ("bundle.zip/themes").
func collect(ctx context.Context, src string, parser *css.Parser, log *zap.Logger) ([]css.ParseResult, error) {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exist - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				return nil, fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return collectDir(ctx, head, parser, log)
		}

		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		if isZipFile(head) {
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			return collectArchive(ctx, head, filepath.ToSlash(tail), parser, log)
		}

		if archive.IsStylesheet(head) && len(tail) == 0 {
			res, err := parseFile(ctx, head, filepath.Base(head), parser)
			if err != nil {
				return nil, err
			}
			return []css.ParseResult{res}, nil
		}
		return nil, fmt.Errorf("input was not recognized as stylesheet or archive (%s)", head)
	}
	return nil, fmt.Errorf("input source was not found (%s)", src)
}

func collectDir(ctx context.Context, dir string, parser *css.Parser, log *zap.Logger) ([]css.ParseResult, error) {
	var results []css.ParseResult

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !info.Mode().IsRegular() || !archive.IsStylesheet(path) {
			return nil
		}

		name := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		res, err := parseFile(ctx, path, name, parser)
		if err != nil {
			log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			return nil
		}
		results = append(results, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return results, nil
}

func collectArchive(ctx context.Context, path, pathIn string, parser *css.Parser, log *zap.Logger) ([]css.ParseResult, error) {
	var results []css.ParseResult

	err := archive.Walk(path, pathIn, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		r, err := f.Open()
		if err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		defer r.Close()

		cp := state.EnvFromContext(ctx).CodePage

		name := f.FileHeader.Name
		if cp != nil && f.FileHeader.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(name); err == nil {
				name = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", name), zap.Error(err))
			}
		}

		data, err := readSource(ctx, r)
		if err != nil {
			log.Error("Unable to read file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(err))
			return nil
		}
		storeInput(state.EnvFromContext(ctx), name, data)
		results = append(results, parser.Parse(data, filepath.Base(arc)+"/"+name))
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		log.Debug("Nothing to process", zap.String("archive", path))
	}
	return results, nil
}

func parseFile(ctx context.Context, path, name string, parser *css.Parser) (css.ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return css.ParseResult{}, fmt.Errorf("unable to open %q: %w", path, err)
	}
	defer f.Close()

	data, err := readSource(ctx, f)
	if err != nil {
		return css.ParseResult{}, fmt.Errorf("unable to read %q: %w", path, err)
	}
	storeInput(state.EnvFromContext(ctx), name, data)
	return parser.Parse(data, filepath.ToSlash(name)), nil
}

// readSource reads stylesheet text, decoding from the forced code page when
// one is set.
func readSource(ctx context.Context, r io.Reader) ([]byte, error) {
	if cp := state.EnvFromContext(ctx).CodePage; cp != nil {
		r = cp.NewDecoder().Reader(r)
	}
	return io.ReadAll(r)
}

func isZipFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}
