package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/graft/internal/errors"
	"github.com/vango-dev/graft/pkg/hydrate"
)

func hydrateCmd(g *globals) *cobra.Command {
	var (
		output  string
		publish string
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "hydrate <input.html>",
		Short: "Expand components in a document and add hydration markers",
		Long: `Renders every registered component found in the input document and writes
the marked result. Use "-" to read the document from stdin.

Examples:
  graft hydrate index.html -o dist/index.html
  graft hydrate index.html --publish /docs
  cat page.html | graft hydrate - > out.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			input, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			m, _ := p.metrics()
			res, err := hydrate.HTML(cmd.Context(), p.reg, hydrate.Options{
				HTML:          string(input),
				HydratedClass: p.cfg.Hydrate.HydratedClass,
				Dir:           p.cfg.Hydrate.Dir,
				Logger:        p.logger,
				Metrics:       m,
			})
			if err != nil {
				return err
			}

			printDiagnostics(cmd.ErrOrStderr(), res.Diagnostics)
			if strict && res.HasErrors() {
				return errors.New("E042").WithDetail("hydration reported errors")
			}

			if err := writeOutput(cmd.OutOrStdout(), output, res.HTML); err != nil {
				return err
			}

			if publish != "" {
				st, err := p.store(m)
				if err != nil {
					return err
				}
				if err := st.Put(cmd.Context(), publish, []byte(res.HTML)); err != nil {
					return err
				}
				success(cmd.ErrOrStderr(), "Published %s (%d components, %d ops)", publish, len(res.Components), res.Stats.Total())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the result to a file instead of stdout")
	cmd.Flags().StringVar(&publish, "publish", "", "Store the result in the page store under this path")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when a component cannot be rendered")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E160").WithDetailf("cannot read %s", path).Wrap(err)
	}
	return data, nil
}

func writeOutput(stdout io.Writer, path, doc string) error {
	if path == "" {
		_, err := io.WriteString(stdout, doc)
		return err
	}
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return errors.New("E160").WithDetailf("cannot write %s", path).Wrap(err)
	}
	return nil
}

func printDiagnostics(w io.Writer, diags []hydrate.Diagnostic) {
	for _, d := range diags {
		msg := d.Message
		if d.Tag != "" {
			msg = fmt.Sprintf("<%s> %s", d.Tag, msg)
		}
		if d.Level == "error" {
			errorMsg(w, "%s %s", d.Code, msg)
		} else {
			warn(w, "%s %s", d.Code, msg)
		}
	}
}
