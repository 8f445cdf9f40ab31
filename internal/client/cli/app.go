package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/scansync/internal/client/api"
	"github.com/dmitrijs2005/scansync/internal/client/blobs"
	"github.com/dmitrijs2005/scansync/internal/client/config"
	"github.com/dmitrijs2005/scansync/internal/client/dispatch"
	"github.com/dmitrijs2005/scansync/internal/client/documents"
	"github.com/dmitrijs2005/scansync/internal/client/lookup"
	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/client/services"
	"github.com/dmitrijs2005/scansync/internal/client/storage"
	"github.com/dmitrijs2005/scansync/internal/client/tracking"
	"github.com/dmitrijs2005/scansync/internal/client/upload"
	"github.com/dmitrijs2005/scansync/internal/logging"
)

const dispatchQueueSize = 64

type App struct {
	config  *config.Config
	log     logging.Logger
	store   *storage.Store
	remote  *api.Client
	session services.SessionService
	tracker tracking.Tracker
	loop    *dispatch.Loop
	uploads *upload.Registry
	reader  *bufio.Reader
	out     io.Writer

	user    *services.Session
	engine  *engine
	choices []models.Folder
	folder  *models.Folder
}

// engine is the part of the app that needs a signed-in user.
type engine struct {
	remote  *api.Client
	list    *documents.List
	docs    *documents.Service
	catalog *documents.Catalog
	folders *lookup.Folders
}

// NewApp opens local storage and builds the document service client.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	b, err := blobs.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("blob store: %w", err)
	}

	store, err := storage.Open(ctx, cfg.DatabasePath, b, log)
	if err != nil {
		return nil, err
	}

	remote := api.New(cfg.ServerURL,
		api.WithTimeout(cfg.RequestTimeout),
		api.WithBehavior(api.NewLoggingBehavior(log, cfg.Headers())),
	)
	tracker := tracking.NewLogTracker(log)
	uploads := upload.NewRegistry()

	return &App{
		config:  cfg,
		log:     log,
		store:   store,
		remote:  remote,
		session: services.NewSessionService(remote, store, uploads, tracker, log),
		tracker: tracker,
		loop:    dispatch.NewLoop(dispatchQueueSize),
		uploads: uploads,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run restores the stored session, or asks for credentials, and serves
// commands until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.loop.Run(ctx)

	printlnFn("Welcome to scansync (type 'help' for commands)")

	if err := a.restore(ctx); err != nil {
		a.log.Debug(ctx, "no stored session", "error", err)
		if err := a.Login(ctx); err != nil {
			printlnFn("Login failed:", err)
		}
	}

	runREPL(ctx, a, a.getStatus, a.reader)
	a.stopEngine()
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.user != nil && a.engine != nil
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return ""
	}
	s := a.user.Username
	if a.folder != nil {
		s += " @ " + a.folder.Name
	}
	return fmt.Sprintf("(%s)", s)
}

// startEngine builds the upload engine for sess.
func (a *App) startEngine(ctx context.Context, sess *services.Session) error {
	remote := a.remote.WithAccessToken(sess.Token)

	factory := upload.NewFactory(upload.Deps{
		Remote:             remote,
		Blobs:              a.store.Blobs(),
		PageStatuses:       a.store.PageStatuses,
		DocumentStatuses:   a.store.DocumentStatuses,
		Executor:           a.loop,
		Logger:             a.log,
		Registry:           a.uploads,
		MaxConcurrentPages: a.config.MaxConcurrentPages,
	})

	list, err := documents.NewList(ctx, a.store, factory)
	if err != nil {
		return err
	}

	folders, err := a.newFolders(ctx, remote)
	if err != nil {
		return err
	}

	a.user = sess
	a.engine = &engine{
		remote:  remote,
		list:    list,
		docs:    documents.NewService(a.store, list, factory, a.tracker, a.log),
		catalog: documents.NewCatalog(remote, a.store, a.loop),
		folders: folders,
	}
	return nil
}

func (a *App) newFolders(ctx context.Context, remote *api.Client) (*lookup.Folders, error) {
	return lookup.NewFolders(ctx, remote, a.store.Folders, a.tracker, a.loop, a.log, a.config.FolderHistoryCount)
}

func (a *App) stopEngine() {
	if a.engine != nil {
		a.engine.folders.Close()
	}
	a.engine = nil
	a.user = nil
	a.choices = nil
	a.folder = nil
}
