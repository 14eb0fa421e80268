package tui

import (
	"github.com/matheuskafuri/folio/internal/catalog"
	"github.com/matheuskafuri/folio/internal/watch"
)

type catalogLoadedMsg struct {
	records []catalog.Record
}

type loadErrMsg struct {
	err error
}

type watchEventMsg struct {
	event watch.Event
}

// watchClosedMsg is sent once the event stream ends.
type watchClosedMsg struct{}
