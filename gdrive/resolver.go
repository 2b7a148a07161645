package gdrive

import (
	"context"
	"strings"
	"time"
)

// Resolver maps a participant display name to a Drive folder ID, either by a
// global name search or by a bounded breadth-first search under a parent
// folder.
type Resolver struct {
	// MaxDepth bounds the breadth-first search: children of the parent are
	// level 1, and no node beyond MaxDepth is examined. Folder names are
	// human-authored and can collide at different nesting levels, so the
	// first match in breadth-first order wins.
	MaxDepth int

	api   API
	retry *Retrier
	sleep func(time.Duration)
}

func NewResolver(api API, retry *Retrier) *Resolver {
	return &Resolver{
		MaxDepth: 3,
		api:      api,
		retry:    retry,
		sleep:    time.Sleep,
	}
}

// Resolve returns the ID of the folder whose name matches (case-insensitive,
// exact) the participant name. ok is false when nothing matched - that is a
// reportable outcome, not an error.
func (r *Resolver) Resolve(ctx context.Context, name, parentID string) (id string, ok bool, err error) {
	if parentID == "" {
		return r.search(ctx, name)
	}

	return r.walk(ctx, name, parentID)
}

// search issues a global name-contains query and filters for an exact match.
// Unscoped, so it can match folders outside any intended hierarchy - callers
// are expected to warn about that.
func (r *Resolver) search(ctx context.Context, name string) (string, bool, error) {
	id := ""
	found := false

	aerr := r.retry.Do("drive.files.search", SearchAttempts, func() error {
		token := ""
		for {
			page, err := r.api.ListFolders(ctx, FolderQuery{Name: name, PageToken: token})
			if err != nil {
				return err
			}

			for _, folder := range page.Folders {
				if strings.EqualFold(strings.TrimSpace(folder.Name), name) {
					id = folder.ID
					found = true
					return nil
				}
			}

			if token = page.NextPageToken; token == "" {
				return nil
			}
		}
	})

	if aerr != nil {
		return "", false, aerr
	}

	return id, found, nil
}

type node struct {
	id      string
	depth   int
	retries int
}

// walk is a breadth-first search of the folder tree below parentID. A
// rate-limited listing re-queues the node at the same depth after a short
// pause (soft retry, at most SearchAttempts times per node); any other
// listing failure abandons that branch without failing the whole search.
func (r *Resolver) walk(ctx context.Context, name, parentID string) (string, bool, error) {
	queue := []node{{id: parentID, depth: 0}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		n := queue[0]
		queue = queue[1:]

		children, err := r.children(ctx, n.id)
		if err != nil {
			if IsRateLimited(err) && n.retries < SearchAttempts {
				n.retries++
				r.sleep(2 * time.Second)
				queue = append(queue, n)
			}

			continue
		}

		for _, child := range children {
			if strings.EqualFold(strings.TrimSpace(child.Name), name) {
				return child.ID, true, nil
			}
		}

		if n.depth+1 < r.MaxDepth {
			for _, child := range children {
				queue = append(queue, node{id: child.ID, depth: n.depth + 1})
			}
		}
	}

	return "", false, nil
}

func (r *Resolver) children(ctx context.Context, parentID string) ([]Folder, error) {
	folders := []Folder{}
	token := ""

	for {
		page, err := r.api.ListFolders(ctx, FolderQuery{ParentID: parentID, PageToken: token})
		if err != nil {
			return nil, err
		}

		folders = append(folders, page.Folders...)

		if token = page.NextPageToken; token == "" {
			return folders, nil
		}
	}
}
