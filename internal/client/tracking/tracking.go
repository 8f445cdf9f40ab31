// Package tracking records usage events of the capture client.
package tracking

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/scansync/internal/logging"
)

type Event struct {
	Name   string
	Params map[string]string
}

func Login() Event  { return Event{Name: "login"} }
func Logout() Event { return Event{Name: "logout"} }

// UserFoundBy records how the destination folder was found: "history",
// "search" or "scan".
func UserFoundBy(mode string) Event {
	return Event{Name: "userFoundBy", Params: map[string]string{"mode": mode}}
}

func UserNotFound() Event { return Event{Name: "userNotFound"} }

func NumberOfDocumentsBeforeDelete(n int) Event {
	return Event{Name: "numberOfDocumentsBeforeDelete", Params: map[string]string{"count": strconv.Itoa(n)}}
}

func CreateDocumentAgain() Event { return Event{Name: "createDocumentAgain"} }

type Tracker interface {
	Track(ctx context.Context, ev Event)
}

// LogTracker writes events to the structured log.
type LogTracker struct {
	log logging.Logger
}

func NewLogTracker(log logging.Logger) *LogTracker {
	return &LogTracker{log: log.With("component", "tracking")}
}

func (t *LogTracker) Track(ctx context.Context, ev Event) {
	args := make([]any, 0, 2+2*len(ev.Params))
	args = append(args, "event", ev.Name)
	for k, v := range ev.Params {
		args = append(args, k, v)
	}
	t.log.Info(ctx, "tracked", args...)
}

type nop struct{}

func (nop) Track(context.Context, Event) {}

func Nop() Tracker { return nop{} }
