package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apierrors "github.com/remixhub/registry/internal/api/shared/errors"
	"github.com/remixhub/registry/internal/registration"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   apierrors.ErrorCode
		wantReason string
	}{
		{
			name:       "validation",
			err:        registration.NewValidationError("cid", "is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.ErrCodeValidationFailed,
		},
		{
			name:       "wrapped validation",
			err:        fmt.Errorf("anchor: %w", registration.NewValidationError("cidHashes", "must not be empty")),
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.ErrCodeValidationFailed,
		},
		{
			name:       "parent not anchored",
			err:        &registration.ParentNotAnchoredError{CID: "QmParent", Reason: registration.ReasonNeverPublished, Attempts: 5},
			wantStatus: http.StatusConflict,
			wantCode:   apierrors.ErrCodeParentNotAnchored,
			wantReason: "never_published",
		},
		{
			name:       "cache unavailable",
			err:        registration.NewUpstreamError(registration.ServiceRegistrationCache, errors.New("connection refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   apierrors.ErrCodeDatabaseError,
		},
		{
			name:       "ledger unavailable",
			err:        registration.NewUpstreamError(registration.ServiceLedger, errors.New("execution reverted")),
			wantStatus: http.StatusBadGateway,
			wantCode:   apierrors.ErrCodeUpstreamUnavailable,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   apierrors.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, apiErr := apierrors.FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantReason, apiErr.Reason)
		})
	}
}

func TestFromError_DoesNotLeakInternalText(t *testing.T) {
	_, apiErr := apierrors.FromError(errors.New("pq: password authentication failed"))
	assert.NotContains(t, apiErr.Error(), "password")
}
