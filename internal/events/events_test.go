package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/model"
)

type capturePublisher struct {
	keys     []string
	payloads [][]byte
	err      error
}

func (c *capturePublisher) Publish(_ context.Context, key string, payload []byte) error {
	c.keys = append(c.keys, key)
	c.payloads = append(c.payloads, payload)
	return c.err
}

func (c *capturePublisher) Close() error { return nil }

func TestEmitEncodesEvent(t *testing.T) {
	pub := &capturePublisher{}
	actor := model.Identity{ID: "admin-1", Role: model.RoleAdmin}

	ev := New(ItemApproved, "item-1", actor, model.ItemStatusUnclaimed)
	Emit(context.Background(), pub, ev)

	require.Len(t, pub.keys, 1)
	assert.Equal(t, ItemApproved, pub.keys[0])

	var got Event
	require.NoError(t, json.Unmarshal(pub.payloads[0], &got))
	assert.Equal(t, ev.ID, got.ID)
	assert.Equal(t, "item-1", got.ItemID)
	assert.Equal(t, "admin-1", got.ActorID)
	assert.Equal(t, model.ItemStatusUnclaimed, got.Status)
}

func TestEmitSwallowsPublishErrors(t *testing.T) {
	pub := &capturePublisher{err: errors.New("broker down")}

	assert.NotPanics(t, func() {
		Emit(context.Background(), pub, New(ItemDeleted, "item-1", model.Identity{ID: "a"}, ""))
	})
	assert.Len(t, pub.keys, 1)

	// A nil publisher is allowed.
	Emit(context.Background(), nil, New(ItemDeleted, "item-1", model.Identity{ID: "a"}, ""))
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	pub := &LogPublisher{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	require.NoError(t, pub.Publish(context.Background(), ClaimSubmitted, []byte(`{"id":"x"}`)))
	assert.Contains(t, buf.String(), "routing_key="+ClaimSubmitted)
	assert.NoError(t, pub.Close())
}
