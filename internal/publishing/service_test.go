package publishing_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remixhub/registry/internal/domain"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/mocks"
	"github.com/remixhub/registry/internal/providers/pinata"
	"github.com/remixhub/registry/internal/providers/story"
	"github.com/remixhub/registry/internal/publishing"
	"github.com/remixhub/registry/internal/registration"
)

const (
	testCID      = "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"
	testRemixCID = "QmT78zSuBmuS4z925WZfrqQ1qHaJ56DQaTfyMUF7F8ff5o"
	testIPID     = "0x1111111111111111111111111111111111111111"
	testChildID  = "0x2222222222222222222222222222222222222222"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testServiceMocks struct {
	ctrl          *gomock.Controller
	registrations *mocks.MockRegistrationService
	ledger        *mocks.MockLedgerClient
	pinner        *mocks.MockPinner
	clock         *mocks.MockClock
	service       publishing.Service
}

func setupTestService(t *testing.T) *testServiceMocks {
	ctrl := gomock.NewController(t)

	tm := &testServiceMocks{
		ctrl:          ctrl,
		registrations: mocks.NewMockRegistrationService(ctrl),
		ledger:        mocks.NewMockLedgerClient(ctrl),
		pinner:        mocks.NewMockPinner(ctrl),
		clock:         mocks.NewMockClock(ctrl),
	}
	tm.service = publishing.NewService(publishing.Config{}, tm.registrations, tm.ledger, tm.pinner, tm.clock)

	return tm
}

func TestService_Pin(t *testing.T) {
	tm := setupTestService(t)
	defer tm.ctrl.Finish()

	now := time.UnixMilli(1700000000000)
	figma := " https://figma.com/file/abc "
	file := []byte("fig-bytes")

	tm.clock.EXPECT().Now().Return(now)
	tm.pinner.EXPECT().PinFile(gomock.Any(), "poster.fig", file).Return(&pinata.PinResult{CID: "QmFile"}, nil)
	tm.pinner.EXPECT().
		PinJSON(gomock.Any(), "metadata.json", gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string, doc interface{}) (*pinata.PinResult, error) {
			md := doc.(domain.DesignMetadata)
			assert.Equal(t, "Poster", md.Title)
			assert.Equal(t, domain.DESIGN_METADATA_TYPE, md.Type)
			assert.Equal(t, "https://figma.com/file/abc", *md.FigmaURL)
			assert.Equal(t, "ipfs://QmFile", *md.FigFile)
			assert.Equal(t, "poster.fig", *md.FigFileName)
			assert.Nil(t, md.Preview)
			assert.Equal(t, int64(1700000000000), md.CreatedAt)
			return &pinata.PinResult{CID: testCID}, nil
		})
	tm.registrations.EXPECT().
		Anchor(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req registration.AnchorRequest) (*domain.Registration, error) {
			assert.Equal(t, testCID, req.CID)
			assert.Nil(t, req.IPID)
			assert.Equal(t, "Poster", *req.Title)
			var snapshot map[string]interface{}
			require.NoError(t, json.Unmarshal(req.Metadata, &snapshot))
			assert.Contains(t, snapshot, "preview")
			assert.Nil(t, snapshot["preview"])
			return &domain.Registration{CID: testCID}, nil
		})

	result, err := tm.service.Pin(context.Background(), publishing.PinRequest{
		Title:    " Poster ",
		FigmaURL: &figma,
		FileName: "poster.fig",
		File:     file,
	})
	require.NoError(t, err)
	assert.Equal(t, testCID, result.CID)
	assert.Equal(t, domain.CIDHash(testCID), result.CIDHash)
	assert.Empty(t, result.Warnings)
}

func TestService_Pin_Validation(t *testing.T) {
	tm := setupTestService(t)
	defer tm.ctrl.Finish()

	_, err := tm.service.Pin(context.Background(), publishing.PinRequest{Title: "  "})
	assert.True(t, registration.IsValidationError(err))

	tm.clock.EXPECT().Now().Return(time.Now())
	tm.pinner.EXPECT().PinFile(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, pinata.ErrFileTooLarge)
	_, err = tm.service.Pin(context.Background(), publishing.PinRequest{Title: "x", File: []byte("big")})
	assert.True(t, registration.IsValidationError(err))
}

func TestService_Pin_PinningFailure(t *testing.T) {
	tm := setupTestService(t)
	defer tm.ctrl.Finish()

	tm.clock.EXPECT().Now().Return(time.Now())
	tm.pinner.EXPECT().PinJSON(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("unexpected status code 401"))

	_, err := tm.service.Pin(context.Background(), publishing.PinRequest{Title: "x"})
	var upstream *registration.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, registration.ServicePinning, upstream.Service)
}

func TestService_Pin_PreAnchorFailureIsWarning(t *testing.T) {
	tm := setupTestService(t)
	defer tm.ctrl.Finish()

	tm.clock.EXPECT().Now().Return(time.Now())
	tm.pinner.EXPECT().PinJSON(gomock.Any(), gomock.Any(), gomock.Any()).Return(&pinata.PinResult{CID: testCID}, nil)
	tm.registrations.EXPECT().Anchor(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	result, err := tm.service.Pin(context.Background(), publishing.PinRequest{Title: "x"})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "pre-anchor")
}

func TestService_Publish(t *testing.T) {
	tm := setupTestService(t)
	defer tm.ctrl.Finish()

	title := "Poster"
	cidHash := domain.CIDHash(testCID)

	gomock.InOrder(
		tm.registrations.EXPECT().
			Anchor(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req registration.AnchorRequest) (*domain.Registration, error) {
				assert.Equal(t, testCID, req.CID)
				assert.Nil(t, req.IPID)
				return &domain.Registration{CID: testCID}, nil
			}),
		tm.ledger.EXPECT().RegisterIP(gomock.Any(), testCID).Return(&story.Registration{IPID: testIPID, TxHash: "0xaaa"}, nil),
		tm.ledger.EXPECT().RemixHubEnabled().Return(true),
		tm.ledger.EXPECT().AnchorOriginal(gomock.Any(), testIPID, cidHash, uint16(domain.DEFAULT_PRESET_ID)).Return("0xbbb", nil),
		tm.registrations.EXPECT().
			Anchor(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req registration.AnchorRequest) (*domain.Registration, error) {
				assert.Equal(t, testIPID, *req.IPID)
				assert.Equal(t, "0xaaa", *req.TxHash)
				assert.Equal(t, "0xbbb", *req.AnchorTxHash)
				assert.Equal(t, domain.RegistrationEventPublished, req.EventType)
				return &domain.Registration{CID: testCID, IPID: req.IPID}, nil
			}),
	)

	result, err := tm.service.Publish(context.Background(), publishing.PublishRequest{CID: " " + testCID + " ", Title: &title})
	require.NoError(t, err)
	assert.Equal(t, testIPID, result.IPID)
	assert.Equal(t, "0xaaa", result.TxHash)
	assert.Equal(t, "0xbbb", *result.AnchorTxHash)
	assert.Equal(t, cidHash, result.CIDHash)
	assert.Empty(t, result.Warnings)
}

func TestService_Publish_InvalidCID(t *testing.T) {
	tm := setupTestService(t)
	defer tm.ctrl.Finish()

	_, err := tm.service.Publish(context.Background(), publishing.PublishRequest{CID: "not-a-cid"})
	assert.True(t, registration.IsValidationError(err))

	_, err = tm.service.Publish(context.Background(), publishing.PublishRequest{})
	assert.True(t, registration.IsValidationError(err))
}

func TestService_Publish_LedgerFailureAborts(t *testing.T) {
	tm := setupTestService(t)
	defer tm.ctrl.Finish()

	tm.registrations.EXPECT().Anchor(gomock.Any(), gomock.Any()).Return(&domain.Registration{CID: testCID}, nil)
	tm.ledger.EXPECT().RegisterIP(gomock.Any(), testCID).Return(nil, errors.New("insufficient funds"))

	_, err := tm.service.Publish(context.Background(), publishing.PublishRequest{CID: testCID})
	var upstream *registration.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, registration.ServiceLedger, upstream.Service)
}

func TestService_Publish_CacheFailuresBecomeWarnings(t *testing.T) {
	tm := setupTestService(t)
	defer tm.ctrl.Finish()

	tm.registrations.EXPECT().Anchor(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down")).Times(2)
	tm.ledger.EXPECT().RegisterIP(gomock.Any(), testCID).Return(&story.Registration{IPID: testIPID, TxHash: "0xaaa"}, nil)
	tm.ledger.EXPECT().RemixHubEnabled().Return(false)

	result, err := tm.service.Publish(context.Background(), publishing.PublishRequest{CID: testCID})
	require.NoError(t, err)
	assert.Equal(t, testIPID, result.IPID)
	assert.Equal(t, "0xaaa", *result.AnchorTxHash)
	assert.Len(t, result.Warnings, 2)
}

func TestService_Remix(t *testing.T) {
	tm := setupTestService(t)
	defer tm.ctrl.Finish()

	gomock.InOrder(
		tm.registrations.EXPECT().ResolveParent(gomock.Any(), testCID).Return(testIPID, nil),
		tm.ledger.EXPECT().RegisterDerivative(gomock.Any(), testIPID, testRemixCID).Return(&story.Registration{IPID: testChildID, TxHash: "0xccc"}, nil),
		tm.registrations.EXPECT().
			Anchor(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, req registration.AnchorRequest) (*domain.Registration, error) {
				assert.Equal(t, testRemixCID, req.CID)
				assert.Equal(t, testChildID, *req.IPID)
				assert.Equal(t, "0xccc", *req.TxHash)
				assert.Equal(t, "0xccc", *req.AnchorTxHash)
				assert.Equal(t, testIPID, *req.ParentIPID)
				assert.Equal(t, domain.RegistrationEventRemixed, req.EventType)
				return &domain.Registration{CID: testRemixCID, IPID: req.IPID}, nil
			}),
	)

	result, err := tm.service.Remix(context.Background(), publishing.RemixRequest{
		OriginalCID: " " + testCID,
		RemixCID:    testRemixCID + " ",
	})
	require.NoError(t, err)
	assert.Equal(t, testChildID, result.IPID)
	assert.Equal(t, testIPID, result.ParentIPID)
	assert.Equal(t, testCID, result.ParentCID)
	assert.Empty(t, result.Warnings)
}

func TestService_Remix_ParentNotAnchored(t *testing.T) {
	tm := setupTestService(t)
	defer tm.ctrl.Finish()

	notAnchored := &registration.ParentNotAnchoredError{CID: testCID, Reason: registration.ReasonNeverPublished, Attempts: 5}
	tm.registrations.EXPECT().ResolveParent(gomock.Any(), testCID).Return("", notAnchored)

	_, err := tm.service.Remix(context.Background(), publishing.RemixRequest{OriginalCID: testCID, RemixCID: testRemixCID})
	assert.True(t, registration.IsParentNotAnchored(err))
}

func TestService_Remix_Validation(t *testing.T) {
	tm := setupTestService(t)
	defer tm.ctrl.Finish()

	_, err := tm.service.Remix(context.Background(), publishing.RemixRequest{RemixCID: testRemixCID})
	assert.True(t, registration.IsValidationError(err))

	_, err = tm.service.Remix(context.Background(), publishing.RemixRequest{OriginalCID: testCID, RemixCID: "  "})
	assert.True(t, registration.IsValidationError(err))
}

func TestService_Remix_AnchorFailureIsWarning(t *testing.T) {
	tm := setupTestService(t)
	defer tm.ctrl.Finish()

	tm.registrations.EXPECT().ResolveParent(gomock.Any(), testCID).Return(testIPID, nil)
	tm.ledger.EXPECT().RegisterDerivative(gomock.Any(), testIPID, testRemixCID).Return(&story.Registration{IPID: testChildID, TxHash: "0xccc"}, nil)
	tm.registrations.EXPECT().Anchor(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

	result, err := tm.service.Remix(context.Background(), publishing.RemixRequest{OriginalCID: testCID, RemixCID: testRemixCID})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], testRemixCID)
}
