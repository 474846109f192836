package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"youthunion-chat/internal/app"
	"youthunion-chat/internal/common/config"
	"youthunion-chat/internal/common/logger"
	"youthunion-chat/internal/intent"
	"youthunion-chat/internal/lexicon"
	"youthunion-chat/pkg/registry"
)

type rootOptions struct {
	configPath  string
	lexiconPath string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "chatctl",
		Short:         "Inspect and exercise the Youth Union chat intent router",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: configs/config.yaml)")
	root.PersistentFlags().StringVar(&opts.lexiconPath, "lexicon", "", "intent registry file (default: built-in lexicon)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level for ask")

	root.AddCommand(
		newClassifyCmd(opts),
		newAskCmd(opts),
		newLexiconCmd(opts),
	)
	return root
}

func (o *rootOptions) lexicon() (*lexicon.Lexicon, error) {
	return app.LoadLexicon(config.LexiconConfig{Path: o.lexiconPath})
}

func (o *rootOptions) config() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if o.lexiconPath != "" {
		cfg.Lexicon.Path = o.lexiconPath
	}
	return cfg, nil
}

// classifyOutput is the offline analysis printed by classify.
type classifyOutput struct {
	intent.Analysis
	Endpoint string `json:"endpoint,omitempty"`
	Method   string `json:"method,omitempty"`
	Route    string `json:"route,omitempty"`
}

func newClassifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <question>",
		Short: "Print the intent analysis of a question without calling any service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lex, err := opts.lexicon()
			if err != nil {
				return err
			}

			out := classifyOutput{Analysis: intent.NewAnalyzer(lex).Analyze(args[0])}
			if def, ok := lex.Find(out.Intent); ok {
				out.Endpoint = def.APIEndpoint
				out.Method = def.HTTPMethod
				out.Route = string(def.Route)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question through the configured Data API and generative model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			log := logger.NewStructured(opts.logLevel, "console")
			application, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer application.Close()

			res := application.Router.Answer(ctx, args[0])
			fmt.Fprintln(cmd.OutOrStdout(), res.Answer)
			fmt.Fprintf(cmd.ErrOrStderr(), "intent=%s outcome=%s duration=%s\n", res.Analysis.Intent, res.Outcome, res.Duration)
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", res.Err)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 90*time.Second, "overall deadline")
	return cmd
}

func newLexiconCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Validate, export or render the intent lexicon",
	}
	cmd.AddCommand(
		newLexiconValidateCmd(),
		newLexiconPromptCmd(opts),
		newLexiconExportCmd(opts),
	)
	return cmd
}

func newLexiconValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a registry file and classify its examples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lex, err := lexicon.Load(args[0])
			if err != nil {
				return err
			}

			failures := checkExamples(lex)
			w := cmd.OutOrStdout()
			for _, f := range failures {
				fmt.Fprintln(w, "FAIL", f)
			}
			fmt.Fprintf(w, "%d intents, %d corrections, %d expressions, %d/%d examples ok\n",
				len(lex.Intents), len(lex.Corrections), len(lex.Expressions),
				len(lex.Examples)-len(failures), len(lex.Examples))

			if len(failures) > 0 {
				return fmt.Errorf("%d example(s) misclassified", len(failures))
			}
			return nil
		},
	}
}

// checkExamples classifies every example and describes each mismatch.
// Only the parameters an example names are compared.
func checkExamples(lex *lexicon.Lexicon) []string {
	analyzer := intent.NewAnalyzer(lex)

	var failures []string
	for _, ex := range lex.Examples {
		got := analyzer.Analyze(ex.Query)
		if got.Intent != ex.Intent {
			failures = append(failures, fmt.Sprintf("%q: intent %s, want %s", ex.Query, got.Intent, ex.Intent))
			continue
		}
		for k, want := range ex.Params {
			if got.Params[k] != want {
				failures = append(failures, fmt.Sprintf("%q: param %s=%q, want %q", ex.Query, k, got.Params[k], want))
			}
		}
	}
	return failures
}

func newLexiconPromptCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Print the fallback training prompt built from the lexicon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lex, err := opts.lexicon()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), lex.TrainingPrompt())
			return nil
		},
	}
}

func newLexiconExportCmd(opts *rootOptions) *cobra.Command {
	var (
		out     string
		version string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the lexicon as a YAML registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lex, err := opts.lexicon()
			if err != nil {
				return err
			}

			reg := lex.ToRegistry(version)
			reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
			data, err := registry.MarshalYAML(reg)
			if err != nil {
				return err
			}

			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVar(&version, "version", "1.0.0", "registry version")
	return cmd
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
