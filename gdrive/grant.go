package gdrive

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
)

// Grant result tags, recorded in the worksheet audit log.
const (
	TagGranted = "GRANTED"
	TagDryRun  = "DRY_RUN"
)

// Grantor checks and issues read grants on Drive folders. In dry-run mode
// Grant reports success without any network effect.
type Grantor struct {
	DryRun bool

	api   API
	retry *Retrier
}

func NewGrantor(api API, retry *Retrier, dryrun bool) *Grantor {
	return &Grantor{
		DryRun: dryrun,
		api:    api,
		retry:  retry,
	}
}

// HasGrant reports whether fileID already carries a grant for email with the
// given role. A lookup that still fails after retries is reported as "no
// grant found" - the subsequent grant is idempotent, so re-attempting it is
// safe where silently skipping the participant is not.
func (g *Grantor) HasGrant(ctx context.Context, fileID, email, role string) bool {
	found := false

	aerr := g.retry.Do("drive.permissions.list", SearchAttempts, func() error {
		permissions, err := g.api.ListPermissions(ctx, fileID)
		if err != nil {
			return err
		}

		for _, p := range permissions {
			if strings.EqualFold(p.Email, email) && p.Role == role {
				found = true
				break
			}
		}

		return nil
	})

	if aerr != nil {
		aerr.FileID = fileID
		aerr.Email = email
		aerr.Role = role

		logrus.Warnf("permission check failed, assuming no existing grant (%v)", aerr)

		return false
	}

	return found
}

// Grant issues a new read grant for email on fileID and returns the result
// tag for the audit log.
func (g *Grantor) Grant(ctx context.Context, fileID, email, role string) (string, error) {
	if g.DryRun {
		return TagDryRun, nil
	}

	aerr := g.retry.Do("drive.permissions.create", GrantAttempts, func() error {
		_, err := g.api.CreatePermission(ctx, fileID, email, role)

		return err
	})

	if aerr != nil {
		aerr.FileID = fileID
		aerr.Email = email
		aerr.Role = role

		return "", aerr
	}

	return TagGranted, nil
}
