package registration_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remixhub/registry/internal/domain"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/mocks"
	"github.com/remixhub/registry/internal/registration"
	"github.com/remixhub/registry/internal/store"
	"github.com/remixhub/registry/internal/store/schema"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testServiceMocks struct {
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	clock     *mocks.MockClock
	verifier  *mocks.MockChainVerifier
	publisher *mocks.MockPublisher
	service   registration.Service
}

func setupTestService(t *testing.T, cfg registration.Config) *testServiceMocks {
	ctrl := gomock.NewController(t)

	tm := &testServiceMocks{
		ctrl:      ctrl,
		store:     mocks.NewMockStore(ctrl),
		clock:     mocks.NewMockClock(ctrl),
		verifier:  mocks.NewMockChainVerifier(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
	}
	tm.clock.EXPECT().Now().Return(testNow).AnyTimes()
	tm.service = registration.NewService(cfg, tm.store, tm.clock, tm.verifier, tm.publisher)

	return tm
}

// expectWaits makes every Clock.After fire immediately and expects exactly n waits of interval
func expectWaits(tm *testServiceMocks, interval time.Duration, n int) {
	tm.clock.EXPECT().
		After(interval).
		DoAndReturn(func(time.Duration) <-chan time.Time {
			ch := make(chan time.Time, 1)
			ch <- testNow
			return ch
		}).
		Times(n)
}

func strPtr(s string) *string {
	return &s
}

func TestService_Anchor_RequiresCID(t *testing.T) {
	tm := setupTestService(t, registration.Config{})
	defer tm.ctrl.Finish()

	_, err := tm.service.Anchor(context.Background(), registration.AnchorRequest{CID: "   "})
	require.Error(t, err)
	assert.True(t, registration.IsValidationError(err))
}

func TestService_Anchor_PreAnchorComputesHash(t *testing.T) {
	tm := setupTestService(t, registration.Config{})
	defer tm.ctrl.Finish()

	cid := "QmFoo"
	tm.store.EXPECT().
		UpsertRegistration(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.UpsertRegistrationInput) (*schema.Registration, error) {
			assert.Equal(t, cid, input.CID)
			assert.Equal(t, domain.CIDHash(cid), input.CIDHash)
			assert.False(t, input.CIDHashSupplied)
			assert.Nil(t, input.IPID)
			assert.Equal(t, "Poster", *input.Title)
			assert.Equal(t, testNow, input.Now)
			return &schema.Registration{CID: cid, CIDHash: input.CIDHash, Title: input.Title}, nil
		})

	reg, err := tm.service.Anchor(context.Background(), registration.AnchorRequest{CID: " QmFoo ", Title: strPtr(" Poster ")})
	require.NoError(t, err)
	assert.Equal(t, cid, reg.CID)
	assert.False(t, reg.Anchored())
}

func TestService_Anchor_PublishesEventWhenAnchored(t *testing.T) {
	tm := setupTestService(t, registration.Config{})
	defer tm.ctrl.Finish()

	cid := "QmFoo"
	ipID := "0x1111111111111111111111111111111111111111"
	anchorTx := "0xbeef"

	tm.store.EXPECT().
		UpsertRegistration(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.UpsertRegistrationInput) (*schema.Registration, error) {
			return &schema.Registration{CID: cid, CIDHash: input.CIDHash, IPID: input.IPID, AnchorTxHash: input.AnchorTxHash, AnchorConfirmedAt: &testNow}, nil
		})
	tm.publisher.EXPECT().
		PublishRegistrationEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, event *domain.RegistrationEvent) error {
			assert.NotEmpty(t, event.ID)
			assert.Equal(t, domain.RegistrationEventPublished, event.Type)
			assert.Equal(t, cid, event.CID)
			assert.Equal(t, domain.CIDHash(cid), event.CIDHash)
			assert.Equal(t, ipID, event.IPID)
			assert.Equal(t, anchorTx, *event.TxHash)
			assert.Equal(t, testNow, event.OccurredAt)
			return errors.New("broker down")
		})

	reg, err := tm.service.Anchor(context.Background(), registration.AnchorRequest{
		CID:          cid,
		IPID:         &ipID,
		AnchorTxHash: &anchorTx,
		EventType:    domain.RegistrationEventPublished,
	})
	require.NoError(t, err, "publish failures never fail the anchor")
	assert.True(t, reg.Anchored())
}

func TestService_Anchor_SuppliedHashIsNormalized(t *testing.T) {
	tm := setupTestService(t, registration.Config{})
	defer tm.ctrl.Finish()

	supplied := "0xDEAD"
	tm.store.EXPECT().
		UpsertRegistration(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, input store.UpsertRegistrationInput) (*schema.Registration, error) {
			assert.True(t, input.CIDHashSupplied)
			assert.Equal(t, "0xdead", input.CIDHash)
			return &schema.Registration{CID: input.CID, CIDHash: input.CIDHash}, nil
		})

	reg, err := tm.service.Anchor(context.Background(), registration.AnchorRequest{CID: "QmFoo", CIDHash: &supplied})
	require.NoError(t, err)
	assert.Equal(t, "0xdead", reg.CIDHash)
}

func TestService_Anchor_StoreFailure(t *testing.T) {
	tm := setupTestService(t, registration.Config{})
	defer tm.ctrl.Finish()

	tm.store.EXPECT().UpsertRegistration(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := tm.service.Anchor(context.Background(), registration.AnchorRequest{CID: "QmFoo"})
	var upstream *registration.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, registration.ServiceRegistrationCache, upstream.Service)
}

func TestService_GetByCID(t *testing.T) {
	tm := setupTestService(t, registration.Config{})
	defer tm.ctrl.Finish()

	tm.store.EXPECT().GetRegistrationByCID(gomock.Any(), "QmMissing").Return(nil, nil)

	reg, err := tm.service.GetByCID(context.Background(), "QmMissing")
	require.NoError(t, err)
	assert.Nil(t, reg)
}

func TestService_ResolveParent_Immediate(t *testing.T) {
	tm := setupTestService(t, registration.Config{MaxAttempts: 5, Interval: 2 * time.Second})
	defer tm.ctrl.Finish()

	ipID := "0x2222222222222222222222222222222222222222"
	tm.store.EXPECT().
		GetRegistrationByCID(gomock.Any(), "QmParent").
		Return(&schema.Registration{CID: "QmParent", IPID: &ipID}, nil).
		Times(2)

	got, err := tm.service.ResolveParent(context.Background(), " QmParent ")
	require.NoError(t, err)
	assert.Equal(t, ipID, got)
}

func TestService_ResolveParent_AppearsOnThirdAttempt(t *testing.T) {
	tm := setupTestService(t, registration.Config{MaxAttempts: 5, Interval: 2 * time.Second})
	defer tm.ctrl.Finish()

	ipID := "0x2222222222222222222222222222222222222222"
	row := &schema.Registration{CID: "QmParent", IPID: &ipID}

	gomock.InOrder(
		tm.store.EXPECT().GetRegistrationByCID(gomock.Any(), "QmParent").Return(nil, nil),
		tm.store.EXPECT().GetRegistrationByCID(gomock.Any(), "QmParent").Return(nil, nil),
		tm.store.EXPECT().GetRegistrationByCID(gomock.Any(), "QmParent").Return(row, nil),
		// final read after the loop
		tm.store.EXPECT().GetRegistrationByCID(gomock.Any(), "QmParent").Return(row, nil),
	)
	expectWaits(tm, 2*time.Second, 2)

	got, err := tm.service.ResolveParent(context.Background(), "QmParent")
	require.NoError(t, err)
	assert.Equal(t, ipID, got)
}

func TestService_ResolveParent_NeverPublished(t *testing.T) {
	tm := setupTestService(t, registration.Config{MaxAttempts: 5, Interval: 2 * time.Second})
	defer tm.ctrl.Finish()

	tm.store.EXPECT().GetRegistrationByCID(gomock.Any(), "QmParent").Return(nil, nil).Times(5)
	expectWaits(tm, 2*time.Second, 4)

	_, err := tm.service.ResolveParent(context.Background(), "QmParent")
	var notAnchored *registration.ParentNotAnchoredError
	require.ErrorAs(t, err, &notAnchored)
	assert.Equal(t, registration.ReasonNeverPublished, notAnchored.Reason)
	assert.Equal(t, 5, notAnchored.Attempts)
	assert.True(t, registration.IsParentNotAnchored(err))
}

func TestService_ResolveParent_NotConfirmed(t *testing.T) {
	tm := setupTestService(t, registration.Config{MaxAttempts: 3, Interval: time.Second})
	defer tm.ctrl.Finish()

	tm.store.EXPECT().
		GetRegistrationByCID(gomock.Any(), "QmParent").
		Return(&schema.Registration{CID: "QmParent"}, nil).
		Times(3)
	expectWaits(tm, time.Second, 2)

	_, err := tm.service.ResolveParent(context.Background(), "QmParent")
	var notAnchored *registration.ParentNotAnchoredError
	require.ErrorAs(t, err, &notAnchored)
	assert.Equal(t, registration.ReasonNotConfirmed, notAnchored.Reason)
	assert.Equal(t, 3, notAnchored.Attempts)
}

func TestService_ResolveParent_StoreErrorIsNotRetried(t *testing.T) {
	tm := setupTestService(t, registration.Config{MaxAttempts: 5, Interval: 2 * time.Second})
	defer tm.ctrl.Finish()

	tm.store.EXPECT().GetRegistrationByCID(gomock.Any(), "QmParent").Return(nil, errors.New("connection reset"))

	_, err := tm.service.ResolveParent(context.Background(), "QmParent")
	var upstream *registration.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.False(t, registration.IsParentNotAnchored(err))
}

func TestService_ResolveParent_ChainMismatch(t *testing.T) {
	tm := setupTestService(t, registration.Config{MaxAttempts: 5, Interval: 2 * time.Second, VerifyOnChain: true})
	defer tm.ctrl.Finish()

	ipID := "0x2222222222222222222222222222222222222222"
	tm.store.EXPECT().
		GetRegistrationByCID(gomock.Any(), "QmParent").
		Return(&schema.Registration{CID: "QmParent", IPID: &ipID}, nil).
		Times(2)
	tm.verifier.EXPECT().IsRegistered(gomock.Any(), ipID).Return(false, nil)

	_, err := tm.service.ResolveParent(context.Background(), "QmParent")
	var notAnchored *registration.ParentNotAnchoredError
	require.ErrorAs(t, err, &notAnchored)
	assert.Equal(t, registration.ReasonChainMismatch, notAnchored.Reason)
}

func TestService_ResolveParent_Validation(t *testing.T) {
	tm := setupTestService(t, registration.Config{})
	defer tm.ctrl.Finish()

	_, err := tm.service.ResolveParent(context.Background(), "")
	assert.True(t, registration.IsValidationError(err))
}

func TestService_BatchLookup_TotalMapping(t *testing.T) {
	tm := setupTestService(t, registration.Config{})
	defer tm.ctrl.Finish()

	hashA := domain.CIDHash("QmA")
	hashB := domain.CIDHash("QmB")
	ipID := "0x3333333333333333333333333333333333333333"

	tm.store.EXPECT().
		GetRegistrationsByCIDHashes(gomock.Any(), []string{hashA, hashB}).
		Return([]schema.Registration{{CID: "QmA", CIDHash: hashA, IPID: &ipID}}, nil)

	result, err := tm.service.BatchLookup(context.Background(), []string{hashA, hashA, hashB})
	require.NoError(t, err)
	require.Len(t, result, 2)
	require.NotNil(t, result[hashA])
	assert.Equal(t, "QmA", result[hashA].CID)
	assert.Equal(t, ipID, *result[hashA].IPID)
	v, ok := result[hashB]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestService_BatchLookup_NormalizesKeys(t *testing.T) {
	tm := setupTestService(t, registration.Config{})
	defer tm.ctrl.Finish()

	tm.store.EXPECT().
		GetRegistrationsByCIDHashes(gomock.Any(), []string{"0xabc"}).
		Return(nil, nil)

	result, err := tm.service.BatchLookup(context.Background(), []string{"0xABC", " 0xabc "})
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestService_BatchLookup_RejectsOversizedBatchWithoutQuery(t *testing.T) {
	tm := setupTestService(t, registration.Config{MaxBatchSize: 200})
	defer tm.ctrl.Finish()

	keys := make([]string, 201)
	for i := range keys {
		keys[i] = domain.CIDHash(fmt.Sprintf("Qm%d", i))
	}

	_, err := tm.service.BatchLookup(context.Background(), keys)
	require.Error(t, err)
	assert.True(t, registration.IsValidationError(err))
	assert.Contains(t, err.Error(), "at most 200")
}

func TestService_BatchLookup_CountsDuplicatesTowardLimit(t *testing.T) {
	tm := setupTestService(t, registration.Config{MaxBatchSize: 200})
	defer tm.ctrl.Finish()

	// 200 distinct hashes plus one repeat
	keys := make([]string, 0, 201)
	for i := 0; i < 200; i++ {
		keys = append(keys, domain.CIDHash(fmt.Sprintf("Qm%d", i)))
	}
	keys = append(keys, keys[0])

	_, err := tm.service.BatchLookup(context.Background(), keys)
	require.Error(t, err)
	assert.True(t, registration.IsValidationError(err))
	assert.Contains(t, err.Error(), "got 201")
}

func TestService_BatchLookup_AcceptsFullBatch(t *testing.T) {
	tm := setupTestService(t, registration.Config{MaxBatchSize: 200})
	defer tm.ctrl.Finish()

	keys := make([]string, 0, 200)
	for i := 0; i < 199; i++ {
		keys = append(keys, domain.CIDHash(fmt.Sprintf("Qm%d", i)))
	}
	keys = append(keys, keys[0])

	tm.store.EXPECT().
		GetRegistrationsByCIDHashes(gomock.Any(), keys[:199]).
		Return(nil, nil)

	result, err := tm.service.BatchLookup(context.Background(), keys)
	require.NoError(t, err)
	assert.Len(t, result, 199)
}

func TestService_BatchLookup_RejectsEmpty(t *testing.T) {
	tm := setupTestService(t, registration.Config{})
	defer tm.ctrl.Finish()

	_, err := tm.service.BatchLookup(context.Background(), nil)
	assert.True(t, registration.IsValidationError(err))

	_, err = tm.service.BatchLookup(context.Background(), []string{"0xabc", ""})
	assert.True(t, registration.IsValidationError(err))
}

func TestService_BatchLookup_StoreFailure(t *testing.T) {
	tm := setupTestService(t, registration.Config{})
	defer tm.ctrl.Finish()

	tm.store.EXPECT().GetRegistrationsByCIDHashes(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))

	_, err := tm.service.BatchLookup(context.Background(), []string{"0xabc"})
	var upstream *registration.UpstreamError
	assert.ErrorAs(t, err, &upstream)
}
