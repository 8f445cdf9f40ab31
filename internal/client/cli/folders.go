package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/scansync/internal/client/api"
	"github.com/dmitrijs2005/scansync/internal/client/lookup"
	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/common"
)

func (a *App) Departments(ctx context.Context) error {
	deps, err := api.Await(a.engine.remote.Departments(ctx))
	if err != nil {
		return err
	}
	if len(deps) == 0 {
		printlnFn("No departments")
		return nil
	}
	for _, d := range deps {
		printlnFn(fmt.Sprintf("%-10s %s", d.Code, d.Name))
	}
	return nil
}

// Types loads the document types of a department and prints them.
func (a *App) Types(ctx context.Context, department string) error {
	if err := a.engine.catalog.Fetch(ctx, department); err != nil {
		printlnFn("Could not load document types, use 'reload' to retry")
		return err
	}
	return a.printTypes(ctx)
}

func (a *App) Reload(ctx context.Context) error {
	if err := a.engine.catalog.Reload(ctx); err != nil {
		return err
	}
	return a.printTypes(ctx)
}

func (a *App) printTypes(ctx context.Context) error {
	types, err := a.engine.catalog.Types(ctx)
	if err != nil {
		return err
	}
	if len(types) == 0 {
		printlnFn("No document types")
		return nil
	}
	for i, t := range types {
		printlnFn(fmt.Sprintf("%2d. %s (%s)", i+1, t.Name, t.ID))
	}
	return nil
}

func (a *App) History(ctx context.Context) error {
	a.engine.folders.UseHistory()
	a.showChoices(a.engine.folders.History(), "No recently used folders")
	return nil
}

func (a *App) Search(ctx context.Context, query string) error {
	<-a.engine.folders.Search(ctx, query)
	return a.showLookup()
}

func (a *App) Scan(ctx context.Context, code string) error {
	if lookup.DigitsOnly(code) == "" {
		printlnFn("The code has no digits")
		return nil
	}
	<-a.engine.folders.GetFolder(ctx, code)
	return a.showLookup()
}

func (a *App) showLookup() error {
	snap := a.engine.folders.Snapshot()
	if snap.Err != nil && !errors.Is(snap.Err, common.ErrNotFound) {
		a.choices = nil
		return snap.Err
	}
	a.showChoices(snap.Results, "No folder found")
	return nil
}

func (a *App) showChoices(folders []models.Folder, empty string) {
	a.choices = folders
	if len(folders) == 0 {
		printlnFn(empty)
		return
	}
	for i, f := range folders {
		printlnFn(fmt.Sprintf("%2d. %s [%s]", i+1, f.Name, f.ExternalID))
	}
}

// Select makes the n-th folder of the last listing the destination of new
// documents.
func (a *App) Select(ctx context.Context, ref string) error {
	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 || n > len(a.choices) {
		printlnFn("Pick a number from the last folder listing")
		return nil
	}

	f, err := a.engine.folders.Select(ctx, a.choices[n-1])
	if err != nil {
		return err
	}
	a.folder = &f
	printlnFn("Folder selected:", f.Name)
	return nil
}
