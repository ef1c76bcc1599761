package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uncss/internal/submission"
	"uncss/internal/uncss"
)

var (
	reduceHTML  string
	reduceCSS   string
	reduceLocal bool
	reduceOut   string
)

var reduceCmd = &cobra.Command{
	Use:   "reduce",
	Short: "Reduce a stylesheet against an HTML file",
	Long: `Reduce one stylesheet and print the result.

Exit codes: 2 for invalid input, 3 when the service rejects the request,
4 when the service cannot be reached.`,
	Example: `  uncss reduce --html index.html --css site.css
  uncss reduce --html index.html --css site.css --local -o site.min.css`,
	Args: cobra.NoArgs,
	RunE: runReduce,
}

func runReduce(cmd *cobra.Command, args []string) error {
	markup, err := os.ReadFile(reduceHTML)
	if err != nil {
		return fmt.Errorf("failed to read HTML: %w", err)
	}
	css, err := os.ReadFile(reduceCSS)
	if err != nil {
		return fmt.Errorf("failed to read CSS: %w", err)
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	var reducer submission.Reducer
	if reduceLocal {
		if err := uncss.ValidateIgnore(cfg.Server.Ignore); err != nil {
			return err
		}
		reducer = localReducer{opts: uncss.Options{Ignore: cfg.Server.Ignore}}
	} else {
		client, wait, err := newClient(ctx)
		if err != nil {
			return err
		}
		reducer = client
		defer func() {
			cancel()
			_ = wait()
		}()
	}

	out, err := runOnce(ctx, reducer, submission.Input{HTML: string(markup), CSS: string(css)})
	if err != nil {
		return err
	}
	logger.Debug("reduction finished",
		zap.Int("input_bytes", len(css)),
		zap.Int("output_bytes", len(out)))

	var w io.Writer = cmd.OutOrStdout()
	if reduceOut != "" {
		f, err := os.Create(reduceOut)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if _, err := fmt.Fprintln(w, out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
