package roster

import (
	"fmt"
	"strings"
)

// Record is one participant row from the roster worksheet. Row is the
// 1-based worksheet row and is the stable identity used for write-back.
type Record struct {
	Row          int
	Name         string
	Email        string
	FolderID     string
	Shared       string
	FolderExists string
	LastLog      string
}

// Status is the write-back payload for a record. Empty fields are left
// untouched in the worksheet; Log is always written.
type Status struct {
	FolderID     string
	Shared       string
	FolderExists string
	Log          string
}

// Key returns the lower-cased (name,email) pair used for duplicate
// detection within a single pass.
func (r Record) Key() string {
	return fmt.Sprintf("%s|%s", strings.ToLower(r.Name), strings.ToLower(r.Email))
}

// ShardKey returns the sharding key - the cached folder ID if the record has
// one, otherwise the lower-cased participant name.
func (r Record) ShardKey() string {
	if r.FolderID != "" {
		return r.FolderID
	}

	return strings.ToLower(r.Name)
}

// IsShared is true if a previous pass already completed the grant for this
// record.
func (r Record) IsShared() bool {
	return strings.EqualFold(strings.TrimSpace(r.Shared), "true")
}

// HasValidEmail is deliberately loose - the grant API is the real validator,
// this only catches rows that are obviously not addresses.
func (r Record) HasValidEmail() bool {
	return strings.Contains(r.Email, "@")
}

func clean(v string) string {
	return strings.TrimSpace(v)
}

func normalise(v string) string {
	return strings.ToLower(strings.ReplaceAll(v, " ", ""))
}
