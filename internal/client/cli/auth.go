package cli

import (
	"context"
	"fmt"
	"time"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// restore resumes the stored session, if there is one that has not expired.
func (a *App) restore(ctx context.Context) error {
	sess, err := a.session.Restore(ctx)
	if err != nil {
		return err
	}
	if sess.Expired(time.Now()) {
		return fmt.Errorf("session of %s expired at %s", sess.Username, sess.ExpiresAt.Format(time.RFC3339))
	}
	if err := a.startEngine(ctx, sess); err != nil {
		return err
	}
	printlnFn("Welcome back,", sess.Username)
	return nil
}

// Login prompts the user for credentials, authenticates against the
// document service and starts the upload engine for the new session.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		printlnFn("Already logged in as", a.user.Username)
		return nil
	}

	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	sess, err := a.session.Login(ctx, userName, password)
	if err != nil {
		return err
	}
	if err := a.startEngine(ctx, sess); err != nil {
		return err
	}

	printlnFn("Login successful")
	return nil
}

// Logout wipes local history and the stored session. The server is told
// afterwards; a failure there does not keep the user signed in.
func (a *App) Logout(ctx context.Context) error {
	if a.engine != nil {
		a.engine.catalog.Reset()
	}
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.stopEngine()
	printlnFn("Logged out")
	return nil
}

// Purge deletes every document, page and stored folder.
func (a *App) Purge(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Delete all documents? (yes/no)", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		printlnFn("Cancelled")
		return nil
	}

	if err := a.session.DeleteHistory(ctx); err != nil {
		return err
	}
	if err := a.engine.list.Load(ctx); err != nil {
		return err
	}

	// folder history is read once per lookup
	folders, err := a.newFolders(ctx, a.engine.remote)
	if err != nil {
		return err
	}
	a.engine.folders.Close()
	a.engine.folders = folders
	a.choices = nil
	a.folder = nil
	printlnFn("History deleted")
	return nil
}
