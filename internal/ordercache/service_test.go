package ordercache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	kafkax "github.com/ariefcatur/go-shop-cart.git/internal/kafka"
	"github.com/ariefcatur/go-shop-cart.git/internal/ordercache"
	"github.com/ariefcatur/go-shop-cart.git/internal/redisx"
	"github.com/ariefcatur/go-shop-cart.git/internal/shop"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) (*ordercache.Service, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	svc := &ordercache.Service{Redis: rdb, ServiceName: "shop-admin", Log: zap.NewNop()}
	return svc, mr, rdb
}

func eventMessage(t *testing.T, eventType, orderID string) kafkago.Message {
	t.Helper()
	var payload []byte
	switch eventType {
	case shop.EventOrderCompleted:
		payload = kafkax.MustMarshal(shop.OrderCompletedPayload{OrderID: orderID})
	default:
		payload = kafkax.MustMarshal(shop.OrderPlacedPayload{OrderID: orderID})
	}
	env := shop.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      "shop-api",
		CorrelationID: orderID,
		Payload:       payload,
	}
	return kafkago.Message{Value: kafkax.MustMarshal(env)}
}

func TestHandleOrderPlacedCachesStatus(t *testing.T) {
	svc, _, rdb := newService(t)
	ctx := context.Background()
	orderID := uuid.NewString()

	require.NoError(t, svc.HandleOrderEvent(ctx, eventMessage(t, shop.EventOrderPlaced, orderID)))

	got, err := rdb.Get(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Result()
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"pending"}`, got)
}

func TestHandleOrderCompletedCachesStatus(t *testing.T) {
	svc, _, rdb := newService(t)
	ctx := context.Background()
	orderID := uuid.NewString()

	require.NoError(t, svc.HandleOrderEvent(ctx, eventMessage(t, shop.EventOrderCompleted, orderID)))

	got, err := rdb.Get(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Result()
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"completed"}`, got)
}

func TestHandleDuplicateEventIgnored(t *testing.T) {
	svc, _, rdb := newService(t)
	ctx := context.Background()
	orderID := uuid.NewString()
	msg := eventMessage(t, shop.EventOrderPlaced, orderID)

	require.NoError(t, svc.HandleOrderEvent(ctx, msg))

	// overwrite the cached value, then replay the same event_id: the dedup
	// key must keep the replay from touching the cache
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	require.NoError(t, rdb.Set(ctx, key, `{"status":"completed"}`, 0).Err())

	require.NoError(t, svc.HandleOrderEvent(ctx, msg))

	got, err := rdb.Get(ctx, key).Result()
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"completed"}`, got)
}

func TestFailedCacheWriteLeavesEventUnprocessed(t *testing.T) {
	svc, mr, rdb := newService(t)
	ctx := context.Background()
	orderID := uuid.NewString()
	msg := eventMessage(t, shop.EventOrderPlaced, orderID)

	mr.SetError("redis down")
	require.Error(t, svc.HandleOrderEvent(ctx, msg), "failed write must surface so the consumer redelivers")

	// redelivery after recovery still lands the status in the cache
	mr.SetError("")
	require.NoError(t, svc.HandleOrderEvent(ctx, msg))

	got, err := rdb.Get(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Result()
	require.NoError(t, err)
	require.JSONEq(t, `{"status":"pending"}`, got)
}

func TestUnknownEventTypeIgnored(t *testing.T) {
	svc, _, rdb := newService(t)
	ctx := context.Background()
	orderID := uuid.NewString()

	require.NoError(t, svc.HandleOrderEvent(ctx, eventMessage(t, shop.EventStockRejected, orderID)))

	err := rdb.Get(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
	require.ErrorIs(t, err, redis.Nil)
}
