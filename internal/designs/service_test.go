package designs_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remixhub/registry/internal/designs"
	"github.com/remixhub/registry/internal/domain"
	"github.com/remixhub/registry/internal/logger"
	"github.com/remixhub/registry/internal/mocks"
	"github.com/remixhub/registry/internal/providers/story"
	"github.com/remixhub/registry/internal/registration"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testServiceMocks struct {
	ctrl          *gomock.Controller
	ledger        *mocks.MockLedgerClient
	registrations *mocks.MockRegistrationService
	metadata      *mocks.MockMetadataResolver
	service       designs.Service
}

func setupTestService(t *testing.T, cfg designs.Config) *testServiceMocks {
	ctrl := gomock.NewController(t)

	tm := &testServiceMocks{
		ctrl:          ctrl,
		ledger:        mocks.NewMockLedgerClient(ctrl),
		registrations: mocks.NewMockRegistrationService(ctrl),
		metadata:      mocks.NewMockMetadataResolver(ctrl),
	}
	tm.service = designs.NewService(cfg, tm.ledger, tm.registrations, tm.metadata)

	return tm
}

func original(cid string, block uint64) domain.OriginalRegistered {
	return domain.OriginalRegistered{
		IPID:        "0x1111111111111111111111111111111111111111",
		Owner:       "0x00000000000000000000000000000000000000Aa",
		PresetID:    1,
		CIDHash:     domain.CIDHash(cid),
		TxHash:      "0xabc",
		BlockNumber: block,
	}
}

func TestService_List(t *testing.T) {
	tm := setupTestService(t, designs.Config{})
	defer tm.ctrl.Finish()

	owner := "0x00000000000000000000000000000000000000aa"
	title := "Cached title"

	tm.ledger.EXPECT().
		ScanOriginals(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, filter story.ScanFilter) ([]domain.OriginalRegistered, error) {
			require.NotNil(t, filter.Owner)
			assert.Equal(t, owner, *filter.Owner)
			return []domain.OriginalRegistered{original("QmOld", 10), original("QmNew", 20), original("QmUnknown", 15)}, nil
		})
	tm.registrations.EXPECT().
		BatchLookup(gomock.Any(), []string{domain.CIDHash("QmNew"), domain.CIDHash("QmUnknown"), domain.CIDHash("QmOld")}).
		Return(map[string]*domain.LookupEntry{
			domain.CIDHash("QmNew"):     {CID: "QmNew", Title: &title},
			domain.CIDHash("QmUnknown"): nil,
			domain.CIDHash("QmOld"):     {CID: "QmOld"},
		}, nil)
	tm.metadata.EXPECT().Resolve(gomock.Any(), "QmNew").Return(&domain.DesignMetadata{Title: "Doc title"}, nil)
	tm.metadata.EXPECT().Resolve(gomock.Any(), "QmOld").Return(&domain.DesignMetadata{Title: "Old doc"}, nil)

	result, err := tm.service.List(context.Background(), designs.ListRequest{Owner: &owner})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, designs.DefaultLimit, result.Limit)
	require.Len(t, result.Designs, 3)

	assert.Equal(t, uint64(20), result.Designs[0].BlockNumber)
	assert.Equal(t, "QmNew", *result.Designs[0].CID)
	assert.Equal(t, "Cached title", *result.Designs[0].Title)
	assert.Equal(t, "Doc title", result.Designs[0].Metadata.Title)

	assert.Nil(t, result.Designs[1].CID)
	assert.Nil(t, result.Designs[1].Metadata)

	assert.Equal(t, "Old doc", *result.Designs[2].Title)
}

func TestService_List_PaginatesAndChunks(t *testing.T) {
	tm := setupTestService(t, designs.Config{LookupChunkSize: 2})
	defer tm.ctrl.Finish()

	originals := []domain.OriginalRegistered{
		original("Qm1", 1), original("Qm2", 2), original("Qm3", 3), original("Qm4", 4), original("Qm5", 5),
	}
	tm.ledger.EXPECT().ScanOriginals(gomock.Any(), story.ScanFilter{}).Return(originals, nil)

	gomock.InOrder(
		tm.registrations.EXPECT().
			BatchLookup(gomock.Any(), []string{domain.CIDHash("Qm4"), domain.CIDHash("Qm3")}).
			Return(map[string]*domain.LookupEntry{}, nil),
		tm.registrations.EXPECT().
			BatchLookup(gomock.Any(), []string{domain.CIDHash("Qm2")}).
			Return(map[string]*domain.LookupEntry{}, nil),
	)

	result, err := tm.service.List(context.Background(), designs.ListRequest{Limit: 3, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Total)
	require.Len(t, result.Designs, 3)
	assert.Equal(t, uint64(4), result.Designs[0].BlockNumber)
	assert.Equal(t, uint64(2), result.Designs[2].BlockNumber)
}

func TestService_List_OffsetPastEnd(t *testing.T) {
	tm := setupTestService(t, designs.Config{})
	defer tm.ctrl.Finish()

	tm.ledger.EXPECT().ScanOriginals(gomock.Any(), gomock.Any()).Return([]domain.OriginalRegistered{original("Qm1", 1)}, nil)

	result, err := tm.service.List(context.Background(), designs.ListRequest{Offset: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Empty(t, result.Designs)
}

func TestService_List_Errors(t *testing.T) {
	tm := setupTestService(t, designs.Config{})
	defer tm.ctrl.Finish()

	bad := "alice"
	_, err := tm.service.List(context.Background(), designs.ListRequest{Owner: &bad})
	assert.True(t, registration.IsValidationError(err))

	tm.ledger.EXPECT().ScanOriginals(gomock.Any(), gomock.Any()).Return(nil, errors.New("rpc down"))
	_, err = tm.service.List(context.Background(), designs.ListRequest{})
	var upstream *registration.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, registration.ServiceLedger, upstream.Service)
}

func TestService_List_MetadataFailureIsTolerated(t *testing.T) {
	tm := setupTestService(t, designs.Config{})
	defer tm.ctrl.Finish()

	tm.ledger.EXPECT().ScanOriginals(gomock.Any(), gomock.Any()).Return([]domain.OriginalRegistered{original("QmA", 1)}, nil)
	tm.registrations.EXPECT().
		BatchLookup(gomock.Any(), gomock.Any()).
		Return(map[string]*domain.LookupEntry{domain.CIDHash("QmA"): {CID: "QmA"}}, nil)
	tm.metadata.EXPECT().Resolve(gomock.Any(), "QmA").Return(nil, errors.New("gateway timeout"))

	result, err := tm.service.List(context.Background(), designs.ListRequest{})
	require.NoError(t, err)
	require.Len(t, result.Designs, 1)
	assert.Equal(t, "QmA", *result.Designs[0].CID)
	assert.Nil(t, result.Designs[0].Metadata)
	assert.Nil(t, result.Designs[0].Title)
}
