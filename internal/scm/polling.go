package scm

import "github.com/temirov/reposcm/internal/snapshot"

// Change is the outcome of a poll.
type Change string

// Polling outcomes.
const (
	// ChangeNone means the workspace matches the baseline or only ignored projects changed.
	ChangeNone Change = "none"
	// ChangeSignificant means a build is warranted.
	ChangeSignificant Change = "significant"
	// ChangeIncomparable means the checkout failed and a build should run so the failure is logged.
	ChangeIncomparable Change = "incomparable"
	// ChangeBuildNow means no baseline exists for the branch.
	ChangeBuildNow Change = "build-now"
)

// PollingResult pairs the decision with the states it was made from.
type PollingResult struct {
	Baseline *snapshot.RepositorySnapshot
	Current  *snapshot.RepositorySnapshot
	Change   Change
}

// BuildWarranted reports whether the outcome should trigger a build.
func (result PollingResult) BuildWarranted() bool {
	return result.Change != ChangeNone
}
