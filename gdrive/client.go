package gdrive

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// The only grant level this tool issues.
const RoleReader = "reader"

type Folder struct {
	ID   string
	Name string
}

type FolderPage struct {
	Folders       []Folder
	NextPageToken string
}

// FolderQuery restricts a folder listing by name substring and/or parent
// folder, with provider-side pagination.
type FolderQuery struct {
	Name      string
	ParentID  string
	PageToken string
}

type Permission struct {
	ID    string
	Email string
	Role  string
}

// API is the Drive surface the resolver and grant engine consume. The
// concrete implementation is Client; tests substitute fakes.
type API interface {
	ListFolders(ctx context.Context, query FolderQuery) (*FolderPage, error)
	ListPermissions(ctx context.Context, fileID string) ([]Permission, error)
	CreatePermission(ctx context.Context, fileID, email, role string) (*Permission, error)
}

// Client is the raw authenticated transport. Every outbound call is gated by
// the governor; retry policy is layered on top by the callers, since e.g. the
// breadth-first folder search has its own soft-retry semantics.
type Client struct {
	drive    *drive.Service
	sheets   *sheets.Service
	governor *Governor
}

func NewClient(httpClient *http.Client, throttle time.Duration) (*Client, error) {
	ctx := context.Background()

	gdrive, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create new Google Drive client (%w)", err)
	}

	gsheets, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create new Google Sheets client (%w)", err)
	}

	return &Client{
		drive:    gdrive,
		sheets:   gsheets,
		governor: NewGovernor(throttle),
	}, nil
}

func (c *Client) ListFolders(ctx context.Context, query FolderQuery) (*FolderPage, error) {
	if err := c.governor.Acquire(ctx); err != nil {
		return nil, err
	}

	q := []string{"mimeType='application/vnd.google-apps.folder'", "trashed=false"}

	if query.Name != "" {
		q = append(q, fmt.Sprintf("name contains '%s'", escape(query.Name)))
	}

	if query.ParentID != "" {
		q = append(q, fmt.Sprintf("'%s' in parents", escape(query.ParentID)))
	}

	call := c.drive.Files.List().
		Q(strings.Join(q, " and ")).
		Fields("nextPageToken, files(id, name)").
		PageSize(100).
		Context(ctx)

	if query.PageToken != "" {
		call = call.PageToken(query.PageToken)
	}

	response, err := call.Do()
	if err != nil {
		return nil, err
	}

	page := FolderPage{
		NextPageToken: response.NextPageToken,
	}

	for _, f := range response.Files {
		page.Folders = append(page.Folders, Folder{ID: f.Id, Name: f.Name})
	}

	return &page, nil
}

func (c *Client) ListPermissions(ctx context.Context, fileID string) ([]Permission, error) {
	permissions := []Permission{}
	page := ""

	for {
		if err := c.governor.Acquire(ctx); err != nil {
			return nil, err
		}

		call := c.drive.Permissions.List(fileID).
			Fields("nextPageToken, permissions(id, emailAddress, role)").
			Context(ctx)

		if page != "" {
			call = call.PageToken(page)
		}

		response, err := call.Do()
		if err != nil {
			return nil, err
		}

		for _, p := range response.Permissions {
			permissions = append(permissions, Permission{
				ID:    p.Id,
				Email: p.EmailAddress,
				Role:  p.Role,
			})
		}

		if page = response.NextPageToken; page == "" {
			break
		}
	}

	return permissions, nil
}

func (c *Client) CreatePermission(ctx context.Context, fileID, email, role string) (*Permission, error) {
	if err := c.governor.Acquire(ctx); err != nil {
		return nil, err
	}

	permission := drive.Permission{
		Type:         "user",
		Role:         role,
		EmailAddress: email,
	}

	created, err := c.drive.Permissions.Create(fileID, &permission).
		SendNotificationEmail(false).
		Fields("id, emailAddress, role").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	return &Permission{ID: created.Id, Email: created.EmailAddress, Role: created.Role}, nil
}

func (c *Client) readRange(ctx context.Context, spreadsheetID, area string) ([][]interface{}, error) {
	if err := c.governor.Acquire(ctx); err != nil {
		return nil, err
	}

	response, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, area).Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	return response.Values, nil
}

func (c *Client) writeValues(ctx context.Context, spreadsheetID string, data []*sheets.ValueRange) error {
	if err := c.governor.Acquire(ctx); err != nil {
		return err
	}

	rq := sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}

	if _, err := c.sheets.Spreadsheets.Values.BatchUpdate(spreadsheetID, &rq).Context(ctx).Do(); err != nil {
		return err
	}

	return nil
}

// Single quotes are the only character with meaning inside a quoted Drive
// query term.
func escape(v string) string {
	return strings.ReplaceAll(v, `'`, `\'`)
}
