package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledPublisherIsNoop(t *testing.T) {
	p, err := NewEventPublisher("", "learnhub.notifications")
	require.NoError(t, err)

	err = p.PublishNotification(context.Background(), Notification{ID: "1", Kind: "success", Message: "hi"})
	assert.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestMockPublisherRecordsEvents(t *testing.T) {
	m := NewMockPublisher()
	n := Notification{ID: "n1", Kind: "warning", Message: "Please enter a comment", CreatedAt: time.Now()}

	require.NoError(t, m.PublishNotification(context.Background(), n))

	got := m.Published()
	require.Len(t, got, 1)
	assert.Equal(t, n, got[0])

	got[0].Message = "changed"
	assert.Equal(t, "Please enter a comment", m.Published()[0].Message)
}
