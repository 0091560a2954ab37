package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/listsync/internal/models"
)

var _ list.Item = marketingListItem{}

// marketingListItem wraps [models.MarketingList] to implement [list.Item].
type marketingListItem struct {
	list *models.MarketingList
}

func (i marketingListItem) FilterValue() string { return i.list.Name }
func (i marketingListItem) Title() string       { return i.list.Name }
func (i marketingListItem) Description() string {
	kind := string(i.list.MemberType())
	if kind == "" {
		kind = fmt.Sprintf("type %d", i.list.CreatedFromCode)
	}

	if i.list.ExternalListID == "" {
		return fmt.Sprintf("%s • not linked to Mailchimp", kind)
	}
	return fmt.Sprintf("%s • Mailchimp list %s", kind, i.list.ExternalListID)
}
