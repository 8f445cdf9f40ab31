package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dmitrijs2005/scansync/internal/client/models"
)

// LoginResponse carries the bearer credential issued by the service.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// Empty is the payload of calls whose response body is ignored.
type Empty struct{}

func (c *Client) Departments(ctx context.Context) <-chan Event[[]models.Department] {
	return observe[[]models.Department](ctx, c, Request{
		Endpoint: "/departments",
		Method:   http.MethodGet,
	})
}

func (c *Client) DocumentTypes(ctx context.Context, departmentCode string) <-chan Event[[]models.DocumentType] {
	return observe[[]models.DocumentType](ctx, c, Request{
		Endpoint: "/document-types",
		Method:   http.MethodGet,
		Query:    url.Values{"department": {departmentCode}},
	})
}

// SubmitDocument registers a document and its metadata before its pages
// are uploaded.
func (c *Client) SubmitDocument(ctx context.Context, doc models.Document) <-chan Event[Empty] {
	return observe[Empty](ctx, c, Request{
		Endpoint: "/documents",
		Method:   http.MethodPost,
		Parameters: map[string]any{
			"id":        doc.ID,
			"type":      doc.TypeID,
			"folderId":  doc.FolderID,
			"createdAt": doc.CreatedAt.UTC().Format(time.RFC3339),
			"pages":     len(doc.PageIDs),
		},
	})
}

func (c *Client) SearchFolders(ctx context.Context, query string) <-chan Event[[]models.Folder] {
	return observe[[]models.Folder](ctx, c, Request{
		Endpoint: "/folders/search",
		Method:   http.MethodGet,
		Query:    url.Values{"query": {query}},
	})
}

func (c *Client) GetFolder(ctx context.Context, id string) <-chan Event[models.Folder] {
	return observe[models.Folder](ctx, c, Request{
		Endpoint: "/folders/" + url.PathEscape(id),
		Method:   http.MethodGet,
	})
}

// UploadPage sends one page image as multipart/form-data. Progress events
// report the fraction of the body written to the connection.
func (c *Client) UploadPage(ctx context.Context, page models.Page, image []byte) <-chan Event[Empty] {
	return observe[Empty](ctx, c, Request{
		Endpoint: "/documents/" + url.PathEscape(page.DocumentID) + "/pages",
		Method:   http.MethodPost,
		Parameters: map[string]any{
			"id":    page.ID,
			"index": strconv.Itoa(page.Index),
		},
		Files: []File{{
			Field:       "image",
			Name:        page.ID + ".jpg",
			ContentType: "image/jpeg",
			Data:        image,
		}},
	})
}

func (c *Client) Login(ctx context.Context, username, password string) <-chan Event[LoginResponse] {
	return observe[LoginResponse](ctx, c, Request{
		Endpoint: "/login",
		Method:   http.MethodPost,
		Parameters: map[string]any{
			"username": username,
			"password": password,
		},
	})
}

// Logout revokes token on the service.
func (c *Client) Logout(ctx context.Context, token string) <-chan Event[Empty] {
	return observe[Empty](ctx, c.WithAccessToken(token), Request{
		Endpoint: "/logout",
		Method:   http.MethodPost,
	})
}
