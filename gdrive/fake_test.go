package gdrive

import (
	"context"
	"fmt"
	"strings"
)

// fakeAPI is an in-memory Drive for resolver/grantor tests. Folder listing
// errors can be scripted per parent ID; each scripted error is consumed on
// one call.
type fakeAPI struct {
	children    map[string][]Folder     // parent ID -> child folders
	folders     []Folder                // corpus for name-contains queries
	permissions map[string][]Permission // file ID -> permissions
	failures    map[string][]error      // parent ID -> scripted listing errors

	listed  []string // parent IDs listed, in order
	created []Permission
	listErr error
	grant   error
}

func (f *fakeAPI) ListFolders(ctx context.Context, query FolderQuery) (*FolderPage, error) {
	if query.ParentID != "" {
		f.listed = append(f.listed, query.ParentID)

		if errs := f.failures[query.ParentID]; len(errs) > 0 {
			err := errs[0]
			f.failures[query.ParentID] = errs[1:]

			return nil, err
		}

		return &FolderPage{Folders: f.children[query.ParentID]}, nil
	}

	if f.listErr != nil {
		return nil, f.listErr
	}

	folders := []Folder{}
	for _, folder := range f.folders {
		if strings.Contains(strings.ToLower(folder.Name), strings.ToLower(query.Name)) {
			folders = append(folders, folder)
		}
	}

	return &FolderPage{Folders: folders}, nil
}

func (f *fakeAPI) ListPermissions(ctx context.Context, fileID string) ([]Permission, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.permissions[fileID], nil
}

func (f *fakeAPI) CreatePermission(ctx context.Context, fileID, email, role string) (*Permission, error) {
	if f.grant != nil {
		return nil, f.grant
	}

	permission := Permission{
		ID:    fmt.Sprintf("permission-%d", len(f.created)+1),
		Email: email,
		Role:  role,
	}

	if f.permissions == nil {
		f.permissions = map[string][]Permission{}
	}

	f.created = append(f.created, permission)
	f.permissions[fileID] = append(f.permissions[fileID], permission)

	return &permission, nil
}
