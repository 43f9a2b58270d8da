package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/taskkeeper/internal/client/api"
)

const (
	statusPending    = "pending"
	statusInProgress = "in-progress"
	statusCompleted  = "completed"

	// clearMark as the whole description answer empties the field.
	clearMark = "-"
)

func (a *App) authToken() (string, error) {
	token := a.currentToken()
	if token == "" {
		return "", errNotLoggedIn
	}
	return token, nil
}

// List prints the caller's items, newest first, as a table.
func (a *App) List(ctx context.Context) error {
	token, err := a.authToken()
	if err != nil {
		return err
	}

	items, err := a.api.ListItems(ctx, token)
	if err != nil {
		return a.sessionError(err)
	}

	if len(items) == 0 {
		fmt.Fprintln(a.out, "No items yet, use 'add' to create one")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tUPDATED")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Status, it.Title, it.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

// Show prints a single item in full.
func (a *App) Show(ctx context.Context, id string) error {
	token, err := a.authToken()
	if err != nil {
		return err
	}

	it, err := a.api.GetItem(ctx, token, id)
	if err != nil {
		return a.sessionError(err)
	}

	printItem(a, it)
	return nil
}

// Add prompts for title, description and status and creates an item.
func (a *App) Add(ctx context.Context) error {
	token, err := a.authToken()
	if err != nil {
		return err
	}

	in, err := a.promptItem(api.ItemInput{Status: statusPending})
	if err != nil {
		return err
	}

	it, err := a.api.CreateItem(ctx, token, in)
	if err != nil {
		return a.sessionError(err)
	}

	fmt.Fprintf(a.out, "Item created: %s\n", it.ID)
	return nil
}

// Edit loads an item and prompts for new values; an empty answer keeps the
// current one.
func (a *App) Edit(ctx context.Context, id string) error {
	token, err := a.authToken()
	if err != nil {
		return err
	}

	cur, err := a.api.GetItem(ctx, token, id)
	if err != nil {
		return a.sessionError(err)
	}

	in, err := a.promptItem(api.ItemInput{Title: cur.Title, Description: cur.Description, Status: cur.Status})
	if err != nil {
		return err
	}

	if _, err := a.api.UpdateItem(ctx, token, id, in); err != nil {
		return a.sessionError(err)
	}

	fmt.Fprintln(a.out, "Item updated")
	return nil
}

// Done marks an item completed, keeping its title and description.
func (a *App) Done(ctx context.Context, id string) error {
	token, err := a.authToken()
	if err != nil {
		return err
	}

	cur, err := a.api.GetItem(ctx, token, id)
	if err != nil {
		return a.sessionError(err)
	}

	in := api.ItemInput{Title: cur.Title, Description: cur.Description, Status: statusCompleted}
	if _, err := a.api.UpdateItem(ctx, token, id, in); err != nil {
		return a.sessionError(err)
	}

	fmt.Fprintf(a.out, "Item %q completed\n", cur.Title)
	return nil
}

// Delete removes an item after confirmation.
func (a *App) Delete(ctx context.Context, id string) error {
	token, err := a.authToken()
	if err != nil {
		return err
	}

	answer, err := getSimpleText(a.reader, "Are you sure you want to delete this item? (y/N)", a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.api.DeleteItem(ctx, token, id); err != nil {
		return a.sessionError(err)
	}

	fmt.Fprintln(a.out, "Item deleted")
	return nil
}

// promptItem asks for every item field, using def for empty answers.
func (a *App) promptItem(def api.ItemInput) (api.ItemInput, error) {
	title, err := getSimpleText(a.reader, withDefault("Title", def.Title), a.out)
	if err != nil {
		return api.ItemInput{}, err
	}
	if title == "" {
		title = def.Title
	}

	descPrompt := "Description"
	if def.Description != "" {
		descPrompt = "Description ('" + clearMark + "' to clear, empty keeps current)"
	}
	desc, err := getMultiline(a.reader, descPrompt, a.out)
	if err != nil {
		return api.ItemInput{}, err
	}
	switch desc {
	case "":
		desc = def.Description
	case clearMark:
		desc = ""
	}

	status, err := getSimpleText(a.reader, withDefault("Status (pending, in-progress, completed)", def.Status), a.out)
	if err != nil {
		return api.ItemInput{}, err
	}
	if status == "" {
		status = def.Status
	}
	switch status {
	case statusPending, statusInProgress, statusCompleted:
	default:
		return api.ItemInput{}, fmt.Errorf("unknown status %q", status)
	}

	return api.ItemInput{Title: title, Description: desc, Status: status}, nil
}

func withDefault(prompt, def string) string {
	if def == "" {
		return prompt
	}
	return fmt.Sprintf("%s [%s]", prompt, def)
}

func printItem(a *App, it *api.Item) {
	fmt.Fprintf(a.out, "ID:          %s\n", it.ID)
	fmt.Fprintf(a.out, "Title:       %s\n", it.Title)
	fmt.Fprintf(a.out, "Status:      %s\n", it.Status)
	fmt.Fprintf(a.out, "Created:     %s\n", it.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(a.out, "Updated:     %s\n", it.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if it.Description != "" {
		fmt.Fprintf(a.out, "Description:\n%s\n", it.Description)
	}
}
