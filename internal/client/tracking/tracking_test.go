package tracking

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/scansync/internal/logging"
)

func TestLogTracker_WritesEventAndParams(t *testing.T) {
	var buf bytes.Buffer
	tr := NewLogTracker(logging.New(&buf, "info"))

	tr.Track(context.Background(), UserFoundBy("scan"))

	out := buf.String()
	assert.Contains(t, out, "event=userFoundBy")
	assert.Contains(t, out, "mode=scan")
	assert.Contains(t, out, "component=tracking")
}

func TestEvents(t *testing.T) {
	assert.Equal(t, "3", NumberOfDocumentsBeforeDelete(3).Params["count"])
	assert.Equal(t, "createDocumentAgain", CreateDocumentAgain().Name)
	assert.Empty(t, UserNotFound().Params)

	Nop().Track(context.Background(), Login())
}
