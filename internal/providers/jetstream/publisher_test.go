package jetstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remixhub/registry/internal/domain"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/messaging"
	"github.com/remixhub/registry/internal/mocks"
	"github.com/remixhub/registry/internal/providers/jetstream"
)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

type testPublisherMocks struct {
	ctrl   *gomock.Controller
	natsJS *mocks.MockNatsJetStream
	nc     *mocks.MockNatsConn
	js     *mocks.MockJetStream
}

func setupTestPublisher(t *testing.T) *testPublisherMocks {
	ctrl := gomock.NewController(t)
	return &testPublisherMocks{
		ctrl:   ctrl,
		natsJS: mocks.NewMockNatsJetStream(ctrl),
		nc:     mocks.NewMockNatsConn(ctrl),
		js:     mocks.NewMockJetStream(ctrl),
	}
}

func testConfig() jetstream.Config {
	return jetstream.Config{
		URL:            "nats://localhost:4222",
		StreamName:     "REMIXHUB_REGISTRATIONS",
		SubjectPrefix:  "registrations",
		MaxReconnects:  5,
		ReconnectWait:  time.Second,
		ConnectionName: "remixhub-registry",
	}
}

func newTestPublisher(t *testing.T, tm *testPublisherMocks) messaging.Publisher {
	tm.natsJS.EXPECT().
		Connect("nats://localhost:4222", gomock.Any()).
		Return(tm.nc, tm.js, nil)
	tm.js.EXPECT().
		CreateOrUpdateStream(gomock.Any(), gomock.Any()).
		Return(nil)

	p, err := jetstream.NewPublisher(context.Background(), testConfig(), tm.natsJS)
	require.NoError(t, err)
	return p
}

func TestNewPublisher_CreatesStream(t *testing.T) {
	tm := setupTestPublisher(t)

	tm.natsJS.EXPECT().
		Connect("nats://localhost:4222", gomock.Any()).
		Return(tm.nc, tm.js, nil)
	tm.js.EXPECT().
		CreateOrUpdateStream(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cfg natsjs.StreamConfig) error {
			assert.Equal(t, "REMIXHUB_REGISTRATIONS", cfg.Name)
			assert.Equal(t, []string{"registrations.>"}, cfg.Subjects)
			assert.Equal(t, natsjs.FileStorage, cfg.Storage)
			return nil
		})

	p, err := jetstream.NewPublisher(context.Background(), testConfig(), tm.natsJS)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestNewPublisher_ConnectFails(t *testing.T) {
	tm := setupTestPublisher(t)

	tm.natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(nil, nil, errors.New("no servers available"))

	p, err := jetstream.NewPublisher(context.Background(), testConfig(), tm.natsJS)
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "no servers available")
}

func TestNewPublisher_StreamFailsClosesConnection(t *testing.T) {
	tm := setupTestPublisher(t)

	tm.natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(tm.nc, tm.js, nil)
	tm.js.EXPECT().
		CreateOrUpdateStream(gomock.Any(), gomock.Any()).
		Return(errors.New("insufficient resources"))
	tm.nc.EXPECT().Close()

	p, err := jetstream.NewPublisher(context.Background(), testConfig(), tm.natsJS)
	assert.Error(t, err)
	assert.Nil(t, p)
	assert.Contains(t, err.Error(), "REMIXHUB_REGISTRATIONS")
}

func TestPublishRegistrationEvent(t *testing.T) {
	tm := setupTestPublisher(t)
	p := newTestPublisher(t, tm)

	ipID := "0x00000000000000000000000000000000000000aa"
	event := &domain.RegistrationEvent{
		ID:         "01JAB7Y0Q5ZK6Y3B8V4W6N2M1C",
		Type:       domain.RegistrationEventAnchored,
		CID:        "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
		CIDHash:    domain.CIDHash("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"),
		IPID:       ipID,
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	tm.js.EXPECT().
		Publish(gomock.Any(), "registrations.anchored", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, data []byte, opts ...natsjs.PublishOpt) (*natsjs.PubAck, error) {
			var decoded domain.RegistrationEvent
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, event.ID, decoded.ID)
			assert.Equal(t, event.CIDHash, decoded.CIDHash)
			assert.Equal(t, ipID, decoded.IPID)
			assert.Len(t, opts, 1)
			return &natsjs.PubAck{Stream: "REMIXHUB_REGISTRATIONS", Sequence: 1}, nil
		})

	assert.NoError(t, p.PublishRegistrationEvent(context.Background(), event))
}

func TestPublishRegistrationEvent_Error(t *testing.T) {
	tm := setupTestPublisher(t)
	p := newTestPublisher(t, tm)

	tm.js.EXPECT().
		Publish(gomock.Any(), "registrations.repaired", gomock.Any(), gomock.Any()).
		Return(nil, errors.New("nats: timeout"))

	err := p.PublishRegistrationEvent(context.Background(), &domain.RegistrationEvent{
		ID:   "01JAB7Y0Q5ZK6Y3B8V4W6N2M1D",
		Type: domain.RegistrationEventRepaired,
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish event")
}

func TestClose(t *testing.T) {
	tm := setupTestPublisher(t)
	p := newTestPublisher(t, tm)

	tm.nc.EXPECT().Close()
	p.Close()
}
