package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"paygate/internal/messaging"
	"paygate/pkg/correlation"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

func TestPublisher_Publish(t *testing.T) {
	t.Run("should key by reference and carry correlation header", func(t *testing.T) {
		// given
		w := &recordingWriter{}
		p := &Publisher{writer: w, topic: "checkout.sessions"}
		env, err := messaging.NewEnvelope("stp_general_x", "checkout.session.created", map[string]string{"reference": "stp_general_x"})
		require.NoError(t, err)
		ctx := correlation.WithID(context.Background(), "corr-1")

		// when
		err = p.Publish(ctx, env)

		// then
		require.NoError(t, err)
		require.Len(t, w.msgs, 1)
		assert.Equal(t, "stp_general_x", string(w.msgs[0].Key))

		headers := map[string]string{}
		for _, h := range w.msgs[0].Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, "checkout.session.created", headers["event_type"])
		assert.Equal(t, "corr-1", headers[correlation.KafkaHeaderName])

		var decoded messaging.Envelope
		require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
		assert.Equal(t, env.EventID, decoded.EventID)
		assert.Equal(t, "corr-1", decoded.CorrelationID)
	})

	t.Run("should wrap writer errors", func(t *testing.T) {
		w := &recordingWriter{err: errors.New("leader not available")}
		p := &Publisher{writer: w, topic: "checkout.sessions"}

		err := p.Publish(context.Background(), messaging.Envelope{Key: "k"})

		assert.ErrorContains(t, err, "write to checkout.sessions")
	})
}
