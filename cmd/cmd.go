// submodule cmd contains command definitions
package main

import (
	"fmt"
	"strings"

	"github.com/desertthunder/listsync/internal/formatter"
	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// configCommand manages Mailchimp configuration records
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage Mailchimp configuration records",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a configuration record; the newest complete record is used for pushes",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "username",
						Usage: "Mailchimp account user name",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "Mailchimp account password",
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "Mailchimp API key",
					},
					&cli.StringFlag{
						Name:  "url",
						Usage: "Batch endpoint, e.g. https://us1.api.mailchimp.com/3.0/batches",
					},
				},
				Action: r.ConfigAdd,
			},
			{
				Name:   "show",
				Usage:  "Show the most recent configuration record",
				Flags:  jsonFlags(),
				Action: r.ConfigShow,
			},
		},
	}
}

// listsCommand manages marketing lists and their members
func listsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "lists",
		Aliases: []string{"list"},
		Usage:   "Marketing list operations",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a marketing list",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "List name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "external-id",
						Usage: "Mailchimp list ID",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Member type (contact, lead or account)",
						Value: "contact",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ListsCreate,
			},
			{
				Name:  "add-member",
				Usage: "Create a contact or lead and add it to a list",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "list-id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "Member type (contact or lead); defaults to the list type",
					},
					&cli.StringFlag{
						Name:  "first",
						Usage: "First name",
					},
					&cli.StringFlag{
						Name:  "last",
						Usage: "Last name",
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "Email address; members without one are never pushed",
					},
				},
				Action: r.ListsAddMember,
			},
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "List marketing lists",
				Flags: append(jsonFlags(), &cli.StringFlag{
					Name:  "type",
					Usage: "Only lists of this member type",
				}),
				Action: r.ListsList,
			},
		},
	}
}

// syncCommand pushes lists and polls batch status
func syncCommand(r *Runner) *cli.Command {
	formats := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		formats[i] = string(f)
	}

	return &cli.Command{
		Name:  "sync",
		Usage: "Push marketing lists to Mailchimp and track batch status",
		Commands: []*cli.Command{
			{
				Name:  "push",
				Usage: "Submit the members of a marketing list as a Mailchimp batch",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "list-id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "poll",
						Usage: "Poll the created sync record once the batch is submitted",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SyncPush,
			},
			{
				Name:  "poll",
				Usage: "Refresh a sync record from its Mailchimp batch",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "sync-id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SyncPoll,
			},
			{
				Name:  "ls",
				Usage: "List sync records, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   fmt.Sprintf("Output format (%s)", strings.Join(formats, ", ")),
						Value:   string(formatter.Text),
					},
					&cli.StringFlag{
						Name:  "list",
						Usage: "Only records for this marketing list ID",
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only records with this batch status",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.SyncList,
			},
		},
	}
}

// serveCommand runs the hook server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP hook server for record events and the sync action",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (defaults to server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (defaults to server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for the interactive sync button.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI to push marketing lists",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "poll",
				Usage: "Poll the created sync record after each push",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/listsync-tui.log",
			},
		},
		Action: r.TUI,
	}
}
