package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-census/pkg/census"
	"github.com/goliatone/go-census/pkg/draft"
	"github.com/goliatone/go-census/pkg/openapi"
	"github.com/goliatone/go-census/pkg/render"
	"github.com/goliatone/go-census/pkg/renderers/html"
	"github.com/goliatone/go-census/pkg/renderers/text"
	"github.com/goliatone/go-census/pkg/renderers/tui"
	"github.com/goliatone/go-census/pkg/submit"
	"github.com/goliatone/go-census/pkg/validation"
)

var errIncomplete = errors.New("form is incomplete")

func withApp(opts *globalOptions, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(opts, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				a.logger.Error(err, "close draft store")
			}
		}()
		return fn(cmd, a, args)
	}
}

func fillCmd(opts *globalOptions) *cobra.Command {
	var (
		fresh      bool
		savePath   string
		submitForm bool
	)
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill the form interactively",
		Long: `Walk the form step by step, asking only the fields that apply. A saved
draft is resumed unless --fresh is given, and the draft is saved whenever a
step is left and on the autosave interval.`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			form := a.newForm()
			if !fresh {
				if snapshot, ok := a.drafts.Load(ctx); ok {
					if err := form.Restore(snapshot); err != nil {
						return fmt.Errorf("resume draft: %w", err)
					}
					a.logger.Info("draft resumed", "step", form.Step())
				}
			}
			if a.cfg.Features.AutoSave {
				go a.drafts.Autosave(ctx, a.cfg.AutosaveInterval, func() (draft.Snapshot, bool) {
					if form.Locked() {
						return draft.Snapshot{}, false
					}
					return form.Snapshot(), true
				})
			}

			filler := tui.New(
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.OutOrStdout())),
				tui.WithDrafts(a.drafts),
				tui.WithLogger(a.logger.WithName("tui")),
			)
			report, err := filler.Fill(ctx, form)
			if err != nil {
				return err
			}
			if savePath != "" {
				if err := writeAnswers(savePath, form); err != nil {
					return err
				}
			}
			if err := renderDocument(ctx, a, cmd.OutOrStdout(), "text", form.Document(report)); err != nil {
				return err
			}
			if !report.OK {
				return errIncomplete
			}
			if submitForm {
				return runSubmit(ctx, cmd.OutOrStdout(), a, form, "", false)
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "Ignore any saved draft")
	cmd.Flags().StringVar(&savePath, "save", "", "Write the answers to this file when done")
	cmd.Flags().BoolVar(&submitForm, "submit", false, "Submit once the form is complete")
	return cmd
}

func validateCmd(opts *globalOptions) *cobra.Command {
	var (
		answers string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check answers against every rule of the form",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			form, err := a.loadForm(cmd.Context(), answers)
			if err != nil {
				return err
			}
			report := form.CheckAll()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(render.MapIssues(report.Issues)); err != nil {
					return fmt.Errorf("encode issues: %w", err)
				}
			}
			if report.OK {
				if !asJSON {
					fmt.Fprintln(out, "The form is complete.")
				}
				return nil
			}
			if !asJSON {
				printSummary(out, form.Summary(report))
				fmt.Fprintf(out, "First field to fix: %s (step %d)\n", form.Focus(), report.FirstStep)
			}
			return errIncomplete
		}),
	}
	cmd.Flags().StringVarP(&answers, "answers", "a", "", "Answers file (defaults to the saved draft)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the issues as JSON keyed by field")
	return cmd
}

func reviewCmd(opts *globalOptions) *cobra.Command {
	var (
		answers string
		format  string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Render the review page",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			form, err := a.loadForm(cmd.Context(), answers)
			if err != nil {
				return err
			}
			doc := form.Document(form.CheckAll())

			out := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer file.Close()
				out = file
			}
			return renderDocument(cmd.Context(), a, out, format, doc)
		}),
	}
	cmd.Flags().StringVarP(&answers, "answers", "a", "", "Answers file (defaults to the saved draft)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	return cmd
}

func submitCmd(opts *globalOptions) *cobra.Command {
	var (
		answers      string
		contractPath string
		skipContract bool
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit the answers to the configured endpoint",
		Long: `Validate the answers, check the payload against the submission contract and
post it to the configured endpoint. The contract is generated from the form
unless --contract names an OpenAPI document.`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			form, err := a.loadForm(cmd.Context(), answers)
			if err != nil {
				return err
			}
			return runSubmit(cmd.Context(), cmd.OutOrStdout(), a, form, contractPath, skipContract)
		}),
	}
	cmd.Flags().StringVarP(&answers, "answers", "a", "", "Answers file (defaults to the saved draft)")
	cmd.Flags().StringVar(&contractPath, "contract", "", "OpenAPI document describing the payload")
	cmd.Flags().BoolVar(&skipContract, "skip-contract", false, "Do not check the payload before sending")
	return cmd
}

func runSubmit(ctx context.Context, out io.Writer, a *app, form *census.Form, contractPath string, skipContract bool) error {
	opts := []submit.Option{
		submit.WithDrafts(a.drafts),
		submit.WithLogger(a.logger.WithName("submit")),
	}
	if !skipContract {
		contract, err := loadContract(ctx, a, contractPath)
		if err != nil {
			return err
		}
		opts = append(opts, submit.WithContract(contract))
	}

	submitter := submit.New(a.cfg, submit.NewHTTPTransport(&http.Client{Timeout: 30 * time.Second}), opts...)
	receipt, err := submitter.Submit(ctx, form)
	var verr *submit.ValidationError
	switch {
	case errors.As(err, &verr):
		printSummary(out, form.Summary(verr.Report))
		return err
	case err != nil:
		return err
	}

	doc := form.Document(validation.Report{OK: true})
	doc.Title = "Submitted"
	doc.Receipt = receipt.PublicID
	return renderDocument(ctx, a, out, "text", doc)
}

func loadContract(ctx context.Context, a *app, path string) (*openapi.Contract, error) {
	if path != "" {
		return openapi.Load(ctx, openapi.SourceFromFile(path))
	}
	return openapi.Build(census.DefaultCatalog(a.cfg).Expanded(), a.cfg)
}

func schemaCmd(opts *globalOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the OpenAPI contract of the submission payload",
		Args:  cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
			contract, err := openapi.Build(census.DefaultCatalog(a.cfg).Expanded(), a.cfg)
			if err != nil {
				return err
			}
			var raw []byte
			switch strings.ToLower(format) {
			case "json":
				raw, err = contract.JSON()
			case "yaml", "yml":
				raw, err = contract.YAML()
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
			return err
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml")
	return cmd
}

func draftCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Inspect or discard the saved draft",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the saved draft",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
				snapshot, ok := a.drafts.Load(cmd.Context())
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved draft.")
					return nil
				}
				raw, err := draft.Encode(snapshot)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(append(raw, '\n'))
				return err
			}),
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Discard the saved draft",
			Args:  cobra.NoArgs,
			RunE: withApp(opts, func(cmd *cobra.Command, a *app, _ []string) error {
				a.drafts.Clear(cmd.Context())
				fmt.Fprintln(cmd.OutOrStdout(), "Draft cleared.")
				return nil
			}),
		},
	)
	return cmd
}

func renderDocument(ctx context.Context, a *app, out io.Writer, format string, doc render.Document) error {
	htmlRenderer, err := html.New()
	if err != nil {
		return err
	}
	registry, err := render.NewRegistry(text.New(), htmlRenderer)
	if err != nil {
		return err
	}
	renderer, err := registry.Get(format)
	if err != nil {
		return err
	}

	var opts render.Options
	if renderer.Name() == htmlRenderer.Name() {
		themes, err := html.NewThemes()
		if err != nil {
			return err
		}
		opts.Theme, err = themes.Resolve(a.cfg.Theme.Name, a.cfg.Theme.Variant)
		if err != nil {
			return err
		}
	}

	raw, err := renderer.Render(ctx, doc, opts)
	if err != nil {
		return err
	}
	_, err = out.Write(raw)
	return err
}

func printSummary(out io.Writer, summaries []validation.StepSummary) {
	fmt.Fprintln(out, "Please complete the following:")
	for _, summary := range summaries {
		fmt.Fprintln(out, summary.Format())
	}
}
