// Package services contains application services of the capture client.
// This file defines the session service: login against the document
// service, restoring a stored session, logout and the history purge.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/scansync/internal/client/api"
	"github.com/dmitrijs2005/scansync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/scansync/internal/client/storage"
	"github.com/dmitrijs2005/scansync/internal/client/tracking"
	"github.com/dmitrijs2005/scansync/internal/common"
	"github.com/dmitrijs2005/scansync/internal/logging"
)

// SessionService defines session operations for the CLI.
//
// Contract:
//   - Login: authenticate against the document service and store the
//     bearer credential.
//   - Restore: return the stored session or common.ErrNotLoggedIn.
//   - Logout: purge local data, then tell the server. Local cleanup does not
//     depend on the network.
//   - DeleteHistory: purge documents, pages, statuses and folders.
type SessionService interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	Restore(ctx context.Context) (*Session, error)
	Logout(ctx context.Context) error
	DeleteHistory(ctx context.Context) error
}

// Session is a signed-in user. Subject and ExpiresAt come from the token
// claims and stay empty for opaque tokens.
type Session struct {
	Username  string
	Token     string
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that is before now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// AuthRemote is the auth part of the document service. *api.Client
// satisfies it.
type AuthRemote interface {
	Login(ctx context.Context, username, password string) <-chan api.Event[api.LoginResponse]
	Logout(ctx context.Context, token string) <-chan api.Event[api.Empty]
}

// Uploads stops running upload attempts. *upload.Registry satisfies it.
type Uploads interface {
	StopAll(ctx context.Context) error
}

type sessionService struct {
	remote  AuthRemote
	store   *storage.Store
	uploads Uploads
	tracker tracking.Tracker
	log     logging.Logger
}

// NewSessionService wires the session service. uploads may be nil when no
// upload engine is running.
func NewSessionService(remote AuthRemote, store *storage.Store, uploads Uploads, tracker tracking.Tracker, log logging.Logger) SessionService {
	return &sessionService{remote: remote, store: store, uploads: uploads, tracker: tracker, log: log}
}

func (s *sessionService) Login(ctx context.Context, username, password string) (*Session, error) {
	resp, err := api.Await(s.remote.Login(ctx, username, password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, common.ErrEmptyToken
	}

	sess := s.session(ctx, username, resp.AccessToken)
	err = s.store.SaveSession(ctx, map[string]string{
		metadata.KeyAccessToken: sess.Token,
		metadata.KeyUsername:    sess.Username,
		metadata.KeySubject:     sess.Subject,
	})
	if err != nil {
		return nil, err
	}

	s.tracker.Track(ctx, tracking.Login())
	s.log.Info(ctx, "logged in", "username", username)
	return sess, nil
}

func (s *sessionService) Restore(ctx context.Context) (*Session, error) {
	token, err := s.store.Metadata.Get(ctx, metadata.KeyAccessToken)
	if errors.Is(err, common.ErrNotFound) || (err == nil && token == "") {
		return nil, common.ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}

	username, err := s.store.Metadata.Get(ctx, metadata.KeyUsername)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}
	return s.session(ctx, username, token), nil
}

// session builds a Session, reading subject and expiry from the token when
// it is a JWT. The signature is checked by the server, not here.
func (s *sessionService) session(ctx context.Context, username, token string) *Session {
	sess := &Session{Username: username, Token: token}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		s.log.Debug(ctx, "access token is not a JWT", "error", err)
		return sess
	}
	sess.Subject = claims.Subject
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess
}

// Logout wipes local history, the cached document types and the stored
// session before telling the server. A failed remote logout is only logged.
func (s *sessionService) Logout(ctx context.Context) error {
	token, err := s.store.Metadata.Get(ctx, metadata.KeyAccessToken)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return err
	}

	s.tracker.Track(ctx, tracking.Logout())
	if err := s.DeleteHistory(ctx); err != nil {
		return err
	}
	if err := s.store.ClearDocumentTypes(ctx); err != nil {
		return err
	}
	if err := s.store.ClearSession(ctx); err != nil {
		return err
	}

	if token != "" {
		if _, err := api.Await(s.remote.Logout(ctx, token)); err != nil {
			s.log.Warn(ctx, "remote logout failed", "error", err)
		}
	}
	s.log.Info(ctx, "logged out")
	return nil
}

// DeleteHistory stops every running upload before purging, so no status
// record is written for a document that no longer exists.
func (s *sessionService) DeleteHistory(ctx context.Context) error {
	if s.uploads != nil {
		if err := s.uploads.StopAll(ctx); err != nil {
			return fmt.Errorf("stop uploads: %w", err)
		}
	}

	n, err := s.store.Documents.Count(ctx)
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	s.tracker.Track(ctx, tracking.NumberOfDocumentsBeforeDelete(n))
	return s.store.DeleteHistory(ctx)
}
