package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/scansync/internal/client/models"
	"github.com/dmitrijs2005/scansync/internal/common"
)

type countingBehavior struct {
	EmptyRequestBehavior
	headers map[string]string

	mu        sync.Mutex
	before    int
	successes int
	failures  []error
	finished  chan struct{}
}

func newCountingBehavior(headers map[string]string) *countingBehavior {
	return &countingBehavior{headers: headers, finished: make(chan struct{}, 8)}
}

func (b *countingBehavior) AdditionalHeaders() map[string]string { return b.headers }

func (b *countingBehavior) BeforeSend(context.Context, *Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.before++
}

func (b *countingBehavior) AfterSuccess(context.Context, *Request) {
	b.mu.Lock()
	b.successes++
	b.mu.Unlock()
	b.finished <- struct{}{}
}

func (b *countingBehavior) AfterError(_ context.Context, _ *Request, err error) {
	b.mu.Lock()
	b.failures = append(b.failures, err)
	b.mu.Unlock()
	b.finished <- struct{}{}
}

func (b *countingBehavior) counts() (int, int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.before, b.successes, len(b.failures)
}

func collect[T any](t *testing.T, ch <-chan Event[T]) []Event[T] {
	t.Helper()
	var out []Event[T]
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, ev)
		case <-timeout:
			t.Fatal("event stream did not terminate")
		}
	}
}

func TestObserve_StreamShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"code":"CARD","name":"Cardiology"}]`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	events := collect(t, c.Departments(context.Background()))

	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, KindProgress, events[0].Kind)
	assert.Zero(t, events[0].Fraction)

	last := events[len(events)-1]
	require.Equal(t, KindSuccess, last.Kind)
	assert.Equal(t, []models.Department{{Code: "CARD", Name: "Cardiology"}}, last.Data)

	terminals := 0
	for _, ev := range events {
		if ev.Terminal() {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)
}

func TestHeaders_MergeAndBearerOverride(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer srv.Close()

	b := newCountingBehavior(map[string]string{"Accept": "application/json", "X-Client": "default"})
	c := New(srv.URL, WithBehavior(b)).WithAccessToken("tok-1")

	_, err := Await(observe[Empty](context.Background(), c, Request{
		Endpoint: "/departments",
		Headers: map[string]string{
			"x-client":      "request",
			"authorization": "Basic abc",
		},
	}))
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "request", got.Get("X-Client"))
	assert.Equal(t, []string{"Bearer tok-1"}, got.Values("Authorization"))
}

func TestHeaders_NoTokenKeepsCallerAuthorization(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	_, err := Await(observe[Empty](context.Background(), New(srv.URL), Request{
		Endpoint: "/x",
		Headers:  map[string]string{"Authorization": "Basic abc"},
	}))
	require.NoError(t, err)
	assert.Equal(t, "Basic abc", auth)
}

func TestWithAccessToken_ReturnsCopy(t *testing.T) {
	base := New("http://example.invalid")
	authed := base.WithAccessToken("tok")

	assert.Empty(t, base.AccessToken())
	assert.Equal(t, "tok", authed.AccessToken())
}

func TestHooks_FireExactlyOnce(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		wantSuccess int
		wantFailure int
	}{
		{"success", http.StatusOK, 1, 0},
		{"server error", http.StatusInternalServerError, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			b := newCountingBehavior(nil)
			_ = collect(t, New(srv.URL, WithBehavior(b)).Logout(context.Background(), "tok"))
			<-b.finished

			before, successes, failures := b.counts()
			assert.Equal(t, 1, before)
			assert.Equal(t, tt.wantSuccess, successes)
			assert.Equal(t, tt.wantFailure, failures)
		})
	}
}

func TestErrors_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		is     []error
		isNot  []error
	}{
		{http.StatusUnauthorized, []error{common.ErrServer, common.ErrUnauthorized}, []error{common.ErrNotFound}},
		{http.StatusForbidden, []error{common.ErrServer, common.ErrUnauthorized}, nil},
		{http.StatusNotFound, []error{common.ErrServer, common.ErrNotFound}, []error{common.ErrUnauthorized}},
		{http.StatusBadGateway, []error{common.ErrServer}, []error{common.ErrTransport, common.ErrUnauthorized}},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			_, err := Await(New(srv.URL).GetFolder(context.Background(), "123"))
			require.Error(t, err)
			for _, target := range tt.is {
				assert.ErrorIs(t, err, target)
			}
			for _, target := range tt.isNot {
				assert.NotErrorIs(t, err, target)
			}
			assert.True(t, IsStatus(err, tt.status))
		})
	}
}

func TestErrors_DecodeFailureIsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{not json`)
	}))
	defer srv.Close()

	_, err := Await(New(srv.URL).SearchFolders(context.Background(), "novak"))
	require.ErrorIs(t, err, common.ErrServer)
}

func TestErrors_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	b := newCountingBehavior(nil)
	_, err := Await(New(url, WithBehavior(b)).Departments(context.Background()))
	require.ErrorIs(t, err, common.ErrTransport)
	<-b.finished

	_, _, failures := b.counts()
	assert.Equal(t, 1, failures)
}

func TestEndpoints_RequestShapes(t *testing.T) {
	type seen struct {
		method, path, query string
	}
	var (
		mu   sync.Mutex
		reqs []seen
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		reqs = append(reqs, seen{r.Method, r.URL.Path, r.URL.RawQuery})
		mu.Unlock()

		switch r.URL.Path {
		case "/api/login":
			_, _ = io.WriteString(w, `{"access_token":"jwt"}`)
		case "/api/folders/123":
			_, _ = io.WriteString(w, `{"id":"123","externalId":"8001011234","name":"Jan Novak"}`)
		case "/api/document-types":
			_, _ = io.WriteString(w, `[{"id":"1","name":"Report","department":"CARD"}]`)
		}
	}))
	defer srv.Close()

	c := New(srv.URL + "/api/")
	ctx := context.Background()

	login, err := Await(c.Login(ctx, "doctor", "secret"))
	require.NoError(t, err)
	assert.Equal(t, "jwt", login.AccessToken)

	folder, err := Await(c.GetFolder(ctx, "123"))
	require.NoError(t, err)
	assert.Equal(t, "Jan Novak", folder.Name)

	types, err := Await(c.DocumentTypes(ctx, "CARD"))
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "CARD", types[0].DepartmentCode)

	_, err = Await(c.SubmitDocument(ctx, models.Document{ID: "d1", TypeID: "1", FolderID: "123"}))
	require.NoError(t, err)

	assert.Equal(t, []seen{
		{http.MethodPost, "/api/login", ""},
		{http.MethodGet, "/api/folders/123", ""},
		{http.MethodGet, "/api/document-types", "department=CARD"},
		{http.MethodPost, "/api/documents", ""},
	}, reqs)
}

func TestUploadPage_MultipartAndProgress(t *testing.T) {
	image := bytes.Repeat([]byte{0xFF, 0xD8}, 256*1024)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents/d1/pages" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("id") != "p1" || r.FormValue("index") != "2" {
			http.Error(w, "bad fields", http.StatusBadRequest)
			return
		}
		f, _, err := r.FormFile("image")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		got, _ := io.ReadAll(f)
		if !bytes.Equal(got, image) {
			http.Error(w, "image mismatch", http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	events := collect(t, New(srv.URL).UploadPage(context.Background(),
		models.Page{ID: "p1", DocumentID: "d1", Index: 2}, image))

	last := events[len(events)-1]
	require.Equal(t, KindSuccess, last.Kind, "terminal error: %v", last.Err)

	prev := -1.0
	for _, ev := range events[:len(events)-1] {
		require.Equal(t, KindProgress, ev.Kind)
		assert.GreaterOrEqual(t, ev.Fraction, prev)
		assert.LessOrEqual(t, ev.Fraction, 1.0)
		prev = ev.Fraction
	}
	assert.Greater(t, len(events), 2, "byte progress is reported")
}

func TestObserve_SlowConsumerNeverBlocksProducer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
	}))
	defer srv.Close()

	b := newCountingBehavior(nil)
	image := bytes.Repeat([]byte{1}, 4<<20)
	ch := New(srv.URL, WithBehavior(b)).UploadPage(context.Background(), models.Page{ID: "p", DocumentID: "d"}, image)

	// nobody reads ch until the call is complete
	select {
	case <-b.finished:
	case <-time.After(5 * time.Second):
		t.Fatal("producer blocked on a full channel")
	}

	events := collect(t, ch)
	assert.LessOrEqual(t, len(events), progressBuffer+1)
	assert.Equal(t, KindSuccess, events[len(events)-1].Kind)
}

func TestObserve_CancelledContextEndsWithError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	ch := New(srv.URL).SearchFolders(ctx, "x")
	cancel()

	_, err := Await(ch)
	require.ErrorIs(t, err, common.ErrTransport)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestMap_ConvertsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"7","name":"Folder"}`)
	}))
	defer srv.Close()

	ch := Map(New(srv.URL).GetFolder(context.Background(), "7"), func(f models.Folder) []models.Folder {
		return []models.Folder{f}
	})

	got, err := Await(ch)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "7", got[0].ID)
}
