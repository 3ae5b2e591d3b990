package search

import "github.com/lumenframe/cliplens/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, mode Mode)
	AfterSourceFetch(source string, clipIDs []core.ID)
	SourceDropped(source string, err error)
	Finish(hits []core.SearchHit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ Mode)                 {}
func (n *noopMonitor) AfterSourceFetch(_ string, _ []core.ID) {}
func (n *noopMonitor) SourceDropped(_ string, _ error)        {}
func (n *noopMonitor) Finish(_ []core.SearchHit)              {}
