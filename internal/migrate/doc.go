// Package migrate implements the move workflow: it stashes the current
// working set, re-applies it on an upstream branch, commits and pushes the
// changes there, then returns to the original branch and rebases it. The
// stash entry doubles as the rollback point and survives every failure path.
package migrate
