package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	courseform "github.com/goliatone/go-courseform"
	"github.com/goliatone/go-courseform/internal/store"
	"github.com/goliatone/go-courseform/pkg/form"
	"github.com/goliatone/go-courseform/pkg/landing"
	"github.com/goliatone/go-courseform/pkg/render"
	"github.com/goliatone/go-courseform/pkg/renderers/tui"
	"github.com/goliatone/go-courseform/pkg/renderers/vanilla"
	"github.com/goliatone/go-courseform/pkg/session"
	"github.com/goliatone/go-courseform/pkg/structured"
)

//go:embed seed.yaml
var seedData []byte

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.streams.err)
	return fs
}

func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, a.cfg.Database.DSN, store.WithLogger(a.logger))
}

type rowArgs struct {
	entity *string
	id     *int64
}

func addRowFlags(fs *flag.FlagSet) rowArgs {
	return rowArgs{
		entity: fs.String("entity", "product", "product or course"),
		id:     fs.Int64("id", 0, "row id"),
	}
}

func (r rowArgs) resolve(requireID bool) (store.Entity, int64, error) {
	entity, err := store.ParseEntity(*r.entity)
	if err != nil {
		return "", 0, err
	}
	if requireID && *r.id <= 0 {
		return "", 0, errors.New("-id is required")
	}
	return entity, *r.id, nil
}

func (a *app) newSession(f *form.Form) (*session.Session, error) {
	shapes, err := courseform.LoadShapes(a.cfg.Shapes.Dir)
	if err != nil {
		return nil, err
	}
	title := ""
	if field, ok := f.Field("title"); ok {
		title = field.Value()
	}
	return session.New(f,
		session.WithLogger(a.logger),
		session.WithShapes(shapes),
		session.WithTitle(title),
	)
}

func runFmt(_ context.Context, a *app, args []string) error {
	fs := a.flags("fmt")
	write := fs.Bool("w", false, "write result to the source file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		data, err := io.ReadAll(a.streams.in)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		formatted, err := structured.Format(string(data))
		if err != nil {
			return fmt.Errorf("stdin: %w", err)
		}
		_, err = fmt.Fprintln(a.streams.out, formatted)
		return err
	}

	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		formatted, err := structured.Format(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if !*write {
			if _, err := fmt.Fprintln(a.streams.out, formatted); err != nil {
				return err
			}
			continue
		}
		if strings.TrimRight(string(data), "\n") == formatted {
			continue
		}
		if err := os.WriteFile(path, []byte(formatted+"\n"), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		a.logger.Info("formatted", zap.String("file", path))
	}
	return nil
}

func runMigrate(ctx context.Context, a *app, args []string) error {
	fs := a.flags("migrate")
	down := fs.Bool("down", false, "roll back the most recent migration")
	if err := fs.Parse(args); err != nil {
		return err
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if *down {
		err = st.Rollback(ctx)
	} else {
		err = st.Migrate(ctx)
	}
	if err != nil {
		return err
	}
	version, err := st.Version(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.streams.out, "schema version %d\n", version)
	return err
}

type seedFile struct {
	Products []seedRow `yaml:"products"`
	Courses  []seedRow `yaml:"courses"`
}

type seedRow struct {
	Title       string            `yaml:"title"`
	Slug        string            `yaml:"slug"`
	Description string            `yaml:"description"`
	Price       float64           `yaml:"price"`
	Featured    bool              `yaml:"featured"`
	Certificate bool              `yaml:"certificate"`
	Fields      map[string]string `yaml:"fields"`
}

func runSeed(ctx context.Context, a *app, args []string) error {
	fs := a.flags("seed")
	file := fs.String("file", "", "seed YAML file (built-in sample when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data := seedData
	if *file != "" {
		var err error
		if data, err = os.ReadFile(*file); err != nil {
			return fmt.Errorf("read %s: %w", *file, err)
		}
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("parse seed: %w", err)
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	for _, row := range seed.Products {
		id, err := st.CreateProduct(ctx, store.Product{
			Title:       row.Title,
			Slug:        row.Slug,
			Description: row.Description,
			Price:       row.Price,
			IsFeatured:  row.Featured,
			Fields:      row.Fields,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.streams.out, "product %d: %s\n", id, row.Title)
	}
	for _, row := range seed.Courses {
		id, err := st.CreateCourse(ctx, store.Course{
			Title:          row.Title,
			Slug:           row.Slug,
			Description:    row.Description,
			Price:          row.Price,
			HasCertificate: row.Certificate,
			Fields:         row.Fields,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.streams.out, "course %d: %s\n", id, row.Title)
	}
	return nil
}

func runRender(ctx context.Context, a *app, args []string) error {
	fs := a.flags("render")
	row := addRowFlags(fs)
	rendererName := fs.String("renderer", a.cfg.Render.Renderer, "renderer name (vanilla or tui)")
	editors := fs.String("editors", "", "comma separated editors to include")
	action := fs.String("action", "", "form action URL")
	output := fs.String("o", "", "output file (stdout if empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	entity, id, err := row.resolve(true)
	if err != nil {
		return err
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	f, err := st.LoadFields(ctx, entity, id)
	if err != nil {
		return err
	}
	s, err := a.newSession(f)
	if err != nil {
		return err
	}

	var vanillaOptions []vanilla.Option
	if dir := a.cfg.Render.TemplatesDir; dir != "" {
		vanillaOptions = append(vanillaOptions, vanilla.WithTemplatesDir(dir))
	}
	registry, err := courseform.NewRegistry(vanillaOptions...)
	if err != nil {
		return err
	}
	renderer, err := registry.Get(*rendererName)
	if err != nil {
		return err
	}

	out, err := renderer.Render(ctx, s.View(), render.RenderOptions{
		Action:  *action,
		Editors: []string{*editors},
		Locale:  a.cfg.Render.Locale,
		Hidden: map[string]string{
			"entity": string(entity),
			"id":     fmt.Sprint(id),
		},
	})
	if err != nil {
		return err
	}

	if *output == "" {
		_, err = a.streams.out.Write(out)
		return err
	}
	if err := os.WriteFile(*output, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *output, err)
	}
	_, err = fmt.Fprintf(a.streams.out, "%s written to %s\n", renderer.ContentType(), *output)
	return err
}

func runEdit(ctx context.Context, a *app, args []string) error {
	fs := a.flags("edit")
	row := addRowFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	entity, id, err := row.resolve(true)
	if err != nil {
		return err
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	f, err := st.LoadFields(ctx, entity, id)
	if err != nil {
		return err
	}
	s, err := a.newSession(f)
	if err != nil {
		return err
	}

	driver := a.driver
	if driver == nil {
		driver = tui.NewSurveyDriver(a.streams.out)
	}
	editor := tui.New(tui.WithPromptDriver(driver), tui.WithLogger(a.logger))
	if err := editor.Run(ctx, s); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			_, err = fmt.Fprintln(a.streams.out, "aborted, nothing saved")
		}
		return err
	}

	save, err := driver.Confirm(ctx, tui.ConfirmConfig{Message: "Save changes?", Default: true})
	if err != nil || !save {
		return err
	}
	if err := st.SaveFields(ctx, entity, id, s.Form()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.streams.out, "saved %s %d\n", entity, id)
	return err
}

func runShow(ctx context.Context, a *app, args []string) error {
	fs := a.flags("show")
	row := addRowFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	entity, id, err := row.resolve(false)
	if err != nil {
		return err
	}

	st, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if id == 0 {
		rows, err := st.List(ctx, entity)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.streams.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE\tSLUG")
		for _, r := range rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", r.ID, r.Title, r.Slug)
		}
		return tw.Flush()
	}

	f, err := st.LoadFields(ctx, entity, id)
	if err != nil {
		return err
	}
	content := landing.FromForm(f, a.logger)
	enc := json.NewEncoder(a.streams.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(content)
}
