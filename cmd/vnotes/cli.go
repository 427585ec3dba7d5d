package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"vnotes/internal/errors"
	"vnotes/internal/mcp"
	"vnotes/internal/ops"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(s *ops.Services) *cli.App {
	app := &cli.App{
		Name:    "vnotes",
		Usage:   "Voice memo pipeline: archive, transcribe, and journal recordings",
		Version: Version,
		Commands: []*cli.Command{
			importCmd(s),
			processCmd(s),
			statusCmd(s),
			planCmd(s),
			noteCmd(s),
			mcpCmd(s),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// importCmd creates the import command.
func importCmd(s *ops.Services) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Discover new recordings in the ingress directory and process every unfinished note",
		Action: func(c *cli.Context) error {
			output, err := ops.ImportAll(c.Context, s)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// processCmd creates the process command.
func processCmd(s *ops.Services) *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Run one recording through the remaining pipeline stages",
		ArgsUsage: "<file>",
		Action: func(c *cli.Context) error {
			output, err := ops.Process(c.Context, s, ops.ProcessInput{
				File: c.Args().First(),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// statusCmd creates the status command.
func statusCmd(s *ops.Services) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show per-stage counts and the notes with work left",
		Action: func(c *cli.Context) error {
			output, err := ops.Status(c.Context, s)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// planCmd creates the plan command.
func planCmd(s *ops.Services) *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Create the daily journal page from the template if it does not exist",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "in", Usage: "Plan N days ahead of today", Value: 0},
		},
		Action: func(c *cli.Context) error {
			date := time.Now().AddDate(0, 0, c.Int("in"))
			output, err := ops.Plan(c.Context, s, ops.PlanInput{Date: date})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// noteCmd groups the per-note maintenance commands.
func noteCmd(s *ops.Services) *cli.Command {
	return &cli.Command{
		Name:  "note",
		Usage: "Inspect and maintain tracked notes",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Render a note's structured transcript",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "Output format: text|markdown|html"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.Show(c.Context, s, ops.ShowInput{
						File:   c.Args().First(),
						Format: c.String("format"),
					})
					if err != nil {
						return outputError(err)
					}
					fmt.Print(output.Content)
					return nil
				},
			},
			{
				Name:      "rm",
				Usage:     "Stop tracking a note (archived audio and journal blocks are kept)",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					output, err := ops.Remove(c.Context, s, ops.RemoveInput{
						File: c.Args().First(),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "reset",
				Usage:     "Discard a note's transcript so the next run re-transcribes it",
				ArgsUsage: "<file>",
				Action: func(c *cli.Context) error {
					output, err := ops.Reset(c.Context, s, ops.ResetInput{
						File: c.Args().First(),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
			{
				Name:      "attach",
				Usage:     "Adopt a transcription job started outside the pipeline",
				ArgsUsage: "<file> <job-name>",
				Action: func(c *cli.Context) error {
					output, err := ops.Attach(c.Context, s, ops.AttachInput{
						File:    c.Args().Get(0),
						JobName: c.Args().Get(1),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(output)
				},
			},
		},
	}
}

// mcpCmd creates the mcp command.
func mcpCmd(s *ops.Services) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve read-only note tools over MCP on stdio",
		Action: func(_ *cli.Context) error {
			return mcp.Run(s, Version)
		},
	}
}

// outputJSON writes indented JSON for CLI output.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if perr, ok := err.(*errors.PipelineError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", perr.Code, perr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
