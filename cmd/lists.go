package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/listsync/internal/formatter"
	"github.com/desertthunder/listsync/internal/models"
	"github.com/desertthunder/listsync/internal/repositories"
	"github.com/desertthunder/listsync/internal/shared"
	"github.com/urfave/cli/v3"
)

type listView struct {
	ID             string `json:"id"`
	Sequence       int    `json:"sequence"`
	Name           string `json:"name"`
	ExternalListID string `json:"mailchimp_list_id"`
	MemberType     string `json:"member_type"`
	Code           int    `json:"created_from_code"`
}

func newListView(l *models.MarketingList) listView {
	return listView{
		ID:             l.ID(),
		Sequence:       l.Sequence(),
		Name:           l.Name,
		ExternalListID: l.ExternalListID,
		MemberType:     string(l.MemberType()),
		Code:           int(l.CreatedFromCode),
	}
}

// guidArg reads a positional record id and normalizes it.
func guidArg(cmd *cli.Command, name string) (string, error) {
	value := cmd.StringArg(name)
	if value == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	if !shared.IsGUID(value) {
		return "", fmt.Errorf("%w: %s %q is not a valid id", shared.ErrInvalidArgument, name, value)
	}
	return shared.NormalizeGUID(value), nil
}

// ListsCreate creates a marketing list.
func (r *Runner) ListsCreate(ctx context.Context, cmd *cli.Command) error {
	kind, err := models.ParseMemberType(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	list := models.NewMarketingList(0, cmd.String("name"), cmd.String("external-id"), kind.Code())
	if err := repositories.NewMarketingListRepository(db).Create(list); err != nil {
		return err
	}

	r.logger.Info("marketing list created", "id", list.ID(), "type", kind)
	if cmd.Bool("json") {
		return r.writeJSON(newListView(list), true)
	}
	r.writePlain("✓ Marketing list %s created (%s)\n", list.ID(), list.Name)
	return nil
}

// ListsAddMember creates a contact or lead and adds it to a marketing list.
//
// The member type defaults to the list's own type.
func (r *Runner) ListsAddMember(ctx context.Context, cmd *cli.Command) error {
	listID, err := guidArg(cmd, "list-id")
	if err != nil {
		return err
	}

	db, err := r.database()
	if err != nil {
		return err
	}

	list, err := repositories.NewMarketingListRepository(db).Get(listID)
	if err != nil {
		return err
	}

	kind := list.MemberType()
	if raw := cmd.String("type"); raw != "" {
		if kind, err = models.ParseMemberType(raw); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
	}

	var person *models.Person
	switch kind {
	case models.MemberTypeContact:
		person = models.NewContact(0, cmd.String("first"), cmd.String("last"), cmd.String("email"))
	case models.MemberTypeLead:
		person = models.NewLead(0, cmd.String("first"), cmd.String("last"), cmd.String("email"))
	default:
		return fmt.Errorf("%w: members must be contacts or leads, got %q", shared.ErrInvalidArgument, kind)
	}

	people := repositories.NewPersonRepository(db)
	if err := people.Create(person); err != nil {
		return err
	}
	if err := people.AddToList(list.ID(), person); err != nil {
		return err
	}

	r.logger.Info("member added", "list", list.ID(), "member", person.ID(), "type", kind)
	r.writePlain("✓ Added %s %s to %s\n", kind, person.ID(), list.Name)
	return nil
}

// ListsList prints all marketing lists, newest first.
func (r *Runner) ListsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if raw := cmd.String("type"); raw != "" {
		kind, err := models.ParseMemberType(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		criteria[models.ListSchema.CreatedFromCode.String()] = kind.Code()
	}

	lists, err := repositories.NewMarketingListRepository(db).List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]listView, len(lists))
		for i, l := range lists {
			views[i] = newListView(l)
		}
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	_, err = r.output.Write(formatter.ListsToText(lists))
	return err
}
