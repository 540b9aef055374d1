package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(3 * time.Second):
		t.Fatal("no message received")
		return Message{}
	}
}

func TestInMemoryExportRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := NewInMemory(4)

	ev := ExportEvent{SessionID: "s1", Rows: 12, College: "RVCE", Outcome: "success", At: time.Now().UTC()}
	require.NoError(t, PublishExport(ctx, q, ev))

	ch, err := q.Consume(ctx)
	require.NoError(t, err)
	got, err := DecodeExport(receive(t, ch))
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, 12, got.Rows)
	assert.Equal(t, "RVCE", got.College)

	cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestInMemoryFull(t *testing.T) {
	q := NewInMemory(1)
	ctx := context.Background()
	require.NoError(t, q.Publish(ctx, Message{Type: TypeExport}))
	assert.ErrorIs(t, q.Publish(ctx, Message{Type: TypeExport}), ErrFull)
}

func TestRedisQueueRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	q := NewRedisQueue(client, "")
	q.block = 100 * time.Millisecond

	require.NoError(t, PublishExport(ctx, q, ExportEvent{SessionID: "s2", Rows: 3, Search: "a|b", Outcome: "failure", Error: "client went away"}))
	assert.True(t, mr.Exists("attendance:exports"))

	ch, err := q.Consume(ctx)
	require.NoError(t, err)
	got, err := DecodeExport(receive(t, ch))
	require.NoError(t, err)
	assert.Equal(t, "s2", got.SessionID)
	assert.Equal(t, "a|b", got.Search)
	assert.Equal(t, "client went away", got.Error)
}

func TestDecodeFraming(t *testing.T) {
	assert.Equal(t, Message{Type: "export", Body: []byte(`{"x":"a|b"}`)}, decode(`export|{"x":"a|b"}`))
	assert.Equal(t, Message{Body: []byte("raw")}, decode("raw"))
}

func TestDecodeExportRejectsOtherTypes(t *testing.T) {
	_, err := DecodeExport(Message{Type: "unknown", Body: []byte("{}")})
	assert.Error(t, err)
	_, err = DecodeExport(Message{Type: TypeExport, Body: []byte("not json")})
	assert.Error(t, err)
}

func TestDrainExportsSkipsOtherMessages(t *testing.T) {
	ctx := context.Background()
	q := NewInMemory(4)
	require.NoError(t, PublishExport(ctx, q, ExportEvent{SessionID: "s1", Outcome: "success", Rows: 2}))
	require.NoError(t, q.Publish(ctx, Message{Type: "unknown", Body: []byte("x")}))
	require.NoError(t, q.Publish(ctx, Message{Type: TypeExport, Body: []byte("{")}))
	require.NoError(t, PublishExport(ctx, q, ExportEvent{SessionID: "s2", Outcome: "failure"}))

	msgs := make(chan Message, 4)
	for i := 0; i < 4; i++ {
		msgs <- <-q.ch
	}
	close(msgs)

	var got []string
	DrainExports(msgs, func(ev ExportEvent) { got = append(got, ev.SessionID) })
	assert.Equal(t, []string{"s1", "s2"}, got)
}
