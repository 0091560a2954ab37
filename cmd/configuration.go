package main

import (
	"context"
	"strings"

	"github.com/desertthunder/listsync/internal/repositories"
	"github.com/urfave/cli/v3"
)

// configurationView is the JSON shape of a configuration record with secrets masked.
type configurationView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	APIKey   string `json:"api_key"`
	URL      string `json:"url"`
	Complete bool   `json:"complete"`
	Created  string `json:"created_at"`
}

// mask hides all but the last four characters of a secret.
func mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// ConfigAdd creates a Mailchimp configuration record from flags. Missing fields are stored as null.
func (r *Runner) ConfigAdd(ctx context.Context, cmd *cli.Command) error {
	return r.createConfiguration(cmd.String("username"), cmd.String("password"), cmd.String("api-key"), cmd.String("url"))
}

// ConfigShow prints the most recently created configuration record.
//
// The poller uses this record as is; pushes additionally require all four fields.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	cfg, err := repositories.NewConfigurationRepository(db).Latest(false)
	if err != nil {
		return err
	}

	view := configurationView{
		ID:       cfg.ID(),
		Username: cfg.Username,
		Password: mask(cfg.Password),
		APIKey:   mask(cfg.APIKey),
		URL:      cfg.URL,
		Complete: cfg.Complete(),
		Created:  cfg.CreatedAt().Format("2006-01-02 15:04:05"),
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Mailchimp Configuration")
	r.writePlain("ID: %s\n", view.ID)
	r.writePlain("Username: %s\n", view.Username)
	r.writePlain("Password: %s\n", view.Password)
	r.writePlain("API key: %s\n", view.APIKey)
	r.writePlain("URL: %s\n", view.URL)
	r.writePlain("Created: %s\n", view.Created)
	if view.Complete {
		r.writePlain("Status: complete\n")
	} else {
		r.writePlain("Status: incomplete (pushes will fail)\n")
	}
	return nil
}
