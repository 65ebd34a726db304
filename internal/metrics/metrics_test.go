package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"sheesh.app/server/pkg/apperror"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "invalid", outcome(fmt.Errorf("%w: %q", apperror.ErrInvalidMode, "monthly")))
	assert.Equal(t, "unavailable", outcome(fmt.Errorf("%w: %w", apperror.ErrDataSourceUnavailable, errors.New("eof"))))
	assert.Equal(t, "rate_limited", outcome(apperror.ErrRateLimitExceeded))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}

func TestObserveLeaderboard_UnknownModeIsBucketed(t *testing.T) {
	before := testutil.ToFloat64(leaderboardRequests.WithLabelValues("invalid", "invalid"))

	ObserveLeaderboard("monthly", apperror.ErrInvalidMode, time.Millisecond)

	after := testutil.ToFloat64(leaderboardRequests.WithLabelValues("invalid", "invalid"))
	assert.Equal(t, before+1, after)
}
