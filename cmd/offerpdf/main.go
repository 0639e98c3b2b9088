package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/gompdf/offerpdf/internal/config"
	"github.com/gompdf/offerpdf/internal/document"
	"github.com/gompdf/offerpdf/internal/lineitem"
	"github.com/gompdf/offerpdf/internal/output"
	"github.com/gompdf/offerpdf/internal/render"
	"github.com/gompdf/offerpdf/internal/server"
	"github.com/gompdf/offerpdf/internal/store"
	"github.com/gompdf/offerpdf/pkg/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var verr *lineitem.ValidationError
		if errors.As(err, &verr) {
			for _, is := range verr.Issues {
				fmt.Fprintf(os.Stderr, "  item %d (%s): %s\n", is.Index, strings.Join(is.Fields, ", "), is.Message)
			}
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "offerpdf",
		Usage: "generate paginated offer, invoice and quote PDFs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				EnvVars: []string{"OFFERPDF_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			planCommand(),
			renderCommand(),
			serveCommand(),
		},
	}
}

// setup loads the configuration and builds the logger shared by every command
func setup(c *cli.Context) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cfg, nil, err
	}
	if c.Bool("verbose") {
		cfg.Debug = true
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func readRequest(path string) (document.Request, error) {
	var req document.Request
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("failed to parse offer JSON: %w", err)
	}
	return req, nil
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "offer JSON file, - for stdin",
		Value:   "-",
	}
}

func orientationFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "orientation",
		Usage: "override the request orientation (portrait or landscape)",
	}
}

// planSummary is the compact output of the plan command
type planSummary struct {
	Title       string      `json:"title"`
	Orientation string      `json:"orientation"`
	Pages       []pageBrief `json:"pages"`
	Net         string      `json:"net"`
	VAT         string      `json:"vat"`
	Gross       string      `json:"gross"`
}

type pageBrief struct {
	Number int     `json:"number"`
	Items  []int   `json:"items"`
	Height float64 `json:"height"`
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "validate an offer and print its page plan",
		Flags: []cli.Flag{
			inputFlag(),
			orientationFlag(),
			&cli.BoolFlag{Name: "full", Usage: "print the complete plan instead of a summary"},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			req, err := readRequest(c.String("input"))
			if err != nil {
				return err
			}
			if o := c.String("orientation"); o != "" {
				req.Orientation = o
			}

			plan, err := api.NewWithOptions(cfg.APIOptions(logger)).Plan(req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(c.App.Writer)
			enc.SetIndent("", "  ")
			if c.Bool("full") {
				return enc.Encode(plan)
			}
			return enc.Encode(summarize(plan))
		},
	}
}

func summarize(plan *document.Plan) planSummary {
	s := planSummary{
		Title:       plan.Title,
		Orientation: string(plan.Orientation),
		Net:         render.Money(plan.GrandTotals.Net),
		VAT:         render.Money(plan.GrandTotals.VAT),
		Gross:       render.Money(plan.GrandTotals.Gross),
	}
	for _, p := range plan.Pages {
		b := pageBrief{Number: p.Number, Height: p.Height}
		for _, it := range p.Items {
			b.Items = append(b.Items, it.Index)
		}
		s.Pages = append(s.Pages, b)
	}
	return s
}

func renderCommand() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "render an offer to PDF or an HTML preview",
		Flags: []cli.Flag{
			inputFlag(),
			orientationFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output file; defaults to the document file name",
			},
			&cli.BoolFlag{Name: "html", Usage: "write an HTML preview instead of a PDF"},
			&cli.StringFlag{Name: "template", Usage: "offer, invoice or quote"},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			req, err := readRequest(c.String("input"))
			if err != nil {
				return err
			}
			if o := c.String("orientation"); o != "" {
				req.Orientation = o
			}
			if t := c.String("template"); t != "" {
				req.Template = document.TemplateType(t)
			}

			gen := api.NewWithOptions(cfg.APIOptions(logger))
			out := c.String("output")
			if out == "" {
				out = gen.FileName(req)
				if c.Bool("html") {
					out = strings.TrimSuffix(out, filepath.Ext(out)) + ".html"
				}
			}

			if !c.Bool("html") {
				if err := gen.GenerateFile(c.Context, req, out); err != nil {
					return err
				}
				logger.Info("pdf written", "file", out)
				return nil
			}

			if dir := filepath.Dir(out); dir != "" {
				if err := os.MkdirAll(dir, 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create preview file: %w", err)
			}
			if err := gen.Preview(c.Context, req, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			logger.Info("preview written", "file", out)
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides the configuration"},
		},
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			if a := c.String("addr"); a != "" {
				cfg.Addr = a
			}

			st, err := store.Open(c.Context, cfg.Store)
			if err != nil {
				return fmt.Errorf("failed to open store: %w", err)
			}
			defer st.Close()

			sink, err := output.Open(c.Context, cfg.Output)
			if err != nil {
				return fmt.Errorf("failed to open output: %w", err)
			}
			if cl, ok := sink.(io.Closer); ok {
				defer cl.Close()
			}

			logger.Info("starting server",
				"store", cfg.Store.Driver,
				"output", cfg.Output.Kind,
				"orientation", cfg.Orientation)
			srv := server.New(api.NewWithOptions(cfg.APIOptions(logger)), st, sink, logger)
			return srv.ListenAndServe(c.Context, cfg.Addr)
		},
	}
}
