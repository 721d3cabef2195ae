// Package gitrepo contains the repository gateway through which every git
// mutation flows.
//
// RepositoryGateway binds a repository path to a git executor and exposes the
// stash, branch, commit, and remote operations the migration workflow needs,
// classifying each failure into the FailureKind taxonomy so callers can decide
// on rollback behavior without parsing git output themselves.
package gitrepo
