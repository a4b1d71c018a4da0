package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/raido/internal"
	"github.com/starford/raido/internal/models"
)

// withRuntime opens the task store for a one-shot command. Logs go to stderr
// so command output stays clean.
func withRuntime(ctx context.Context, cmd *cli.Command, fn func(context.Context, *internal.Runtime) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rt, err := internal.Open([]internal.Option{
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
	})
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(ctx, rt)
}

func output(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a task",
		ArgsUsage: "<title>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "done", Aliases: []string{"d"}, Usage: "Done criteria", Required: true},
			&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "research, decision or execution", Value: string(models.TaskTypeExecution)},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "must or should", Value: string(models.PriorityShould)},
			&cli.StringFlag{Name: "due", Usage: `Due date: YYYY-MM-DD or phrases like "next friday"`},
			&cli.StringFlag{Name: "category", Usage: "Free-form grouping"},
			&cli.IntFlag{Name: "parent", Usage: "Create as a child of this task"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			title := strings.Join(cmd.Args().Slice(), " ")
			if strings.TrimSpace(title) == "" {
				return cli.Exit("a title is required", 1)
			}
			return withRuntime(ctx, cmd, func(ctx context.Context, rt *internal.Runtime) error {
				spec := models.TaskSpec{
					Title:        title,
					TaskType:     models.TaskType(cmd.String("type")),
					Priority:     models.Priority(cmd.String("priority")),
					DoneCriteria: cmd.String("done"),
				}
				if c := cmd.String("category"); c != "" {
					spec.Category = &c
				}
				if due := cmd.String("due"); due != "" {
					d, err := parseDue(due, rt.Service.Today())
					if err != nil {
						return err
					}
					spec.DueDate = &d
				}

				var (
					t   models.Task
					err error
				)
				if parent := cmd.Int("parent"); parent > 0 {
					t, err = rt.Service.CreateChild(ctx, int64(parent), spec)
				} else {
					t, err = rt.Service.Create(ctx, spec)
				}
				if err != nil {
					return err
				}
				return renderTasks(output(cmd), []models.Task{t})
			})
		},
	}
}

func completeCommand() *cli.Command {
	return &cli.Command{
		Name:      "complete",
		Usage:     "Mark a task done",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "note", Aliases: []string{"n"}, Usage: "Completion note"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := parseID(cmd.Args().First())
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return withRuntime(ctx, cmd, func(ctx context.Context, rt *internal.Runtime) error {
				var note *string
				if n := cmd.String("note"); n != "" {
					note = &n
				}
				t, err := rt.Service.Complete(ctx, id, note, nil)
				if err != nil {
					return err
				}
				return renderTasks(output(cmd), []models.Task{t})
			})
		},
	}
}

func staleCommand() *cli.Command {
	return &cli.Command{
		Name:  "stale",
		Usage: "List open tasks left untouched past their priority's window",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Only must or should tasks"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return withRuntime(ctx, cmd, func(ctx context.Context, rt *internal.Runtime) error {
				stale, err := rt.Service.ListStale(ctx, models.Priority(cmd.String("priority")))
				if err != nil {
					return err
				}
				return renderStale(output(cmd), stale)
			})
		},
	}
}

func carryoverCommand() *cli.Command {
	list := func(ctx context.Context, cmd *cli.Command) error {
		return withRuntime(ctx, cmd, func(ctx context.Context, rt *internal.Runtime) error {
			cands, err := rt.Service.CarryoverCandidates(ctx)
			if err != nil {
				return err
			}
			return renderCarryover(output(cmd), cands)
		})
	}

	return &cli.Command{
		Name:   "carryover",
		Usage:  "Review overdue tasks",
		Action: list,
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List overdue tasks, most overdue first",
				Action: list,
			},
			{
				Name:      "apply",
				Usage:     "Carry one overdue task over",
				ArgsUsage: "<id> <today|plus_2d|plus_7d|needs_redefine>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					if cmd.Args().Len() != 2 {
						return cli.Exit("usage: raido carryover apply <id> <action>", 1)
					}
					id, err := parseID(cmd.Args().Get(0))
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					return withRuntime(ctx, cmd, func(ctx context.Context, rt *internal.Runtime) error {
						t, err := rt.Service.Carryover(ctx, id, cmd.Args().Get(1), nil)
						if err != nil {
							return err
						}
						return renderTasks(output(cmd), []models.Task{t})
					})
				},
			},
		},
	}
}
