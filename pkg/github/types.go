package github

import (
	"time"

	"github.com/ethanis/nitpicker/pkg/nitpick"
)

// CheckRun is a check run created for a nitpicker pass.
type CheckRun struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	HTMLURL   string    `json:"html_url,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// CheckOutput is the title and markdown summary shown on a completed check run.
type CheckOutput struct {
	Title   string
	Summary string
}

// Check run status and conclusion values used by the checks API.
const (
	checkStatusInProgress = "in_progress"
	checkStatusCompleted  = "completed"
)

// Changed-file status values reported by the GitHub API.
const (
	statusAdded    = "added"
	statusRemoved  = "removed"
	statusModified = "modified"
)

// changeTypeFromStatus maps a GitHub file status to a change type. Renames,
// copies and type changes count as edits.
func changeTypeFromStatus(status string) nitpick.ChangeType {
	switch status {
	case statusAdded:
		return nitpick.ChangeAdd
	case statusRemoved:
		return nitpick.ChangeDelete
	case statusModified:
		return nitpick.ChangeEdit
	default:
		return nitpick.ChangeEdit
	}
}
