package ui

import "namesearch/internal/domain"

// SnapshotMsg carries a pipeline snapshot into the UI
type SnapshotMsg struct {
	Snapshot domain.SearchSnapshot
}

// pagerMsg contains the result of a pager command
type pagerMsg struct {
	title string
	err   error
}
