package scheduler

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextRun_UTC(t *testing.T) {
	from := time.Date(2025, 1, 2, 3, 2, 0, 0, time.UTC)

	next, err := NextRun("*/5 * * * *", "", from)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 5, 0, 0, time.UTC), next)
}

func TestNextRun_WithSecondsAndDescriptor(t *testing.T) {
	from := time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)

	next, err := NextRun("30 * * * * *", "UTC", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 0, 30, 0, time.UTC), next)

	next, err = NextRun("@daily", "UTC", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), next)
}

func TestNextRun_Timezone(t *testing.T) {
	from := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	next, err := NextRun("0 9 * * *", "Asia/Kolkata", from)

	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 30, 0, 0, time.UTC), next)
}

func TestNextRun_Invalid(t *testing.T) {
	_, err := NextRun("not a cron", "", time.Now())
	assert.Error(t, err)

	_, err = NextRun("* * * * *", "Mars/Olympus", time.Now())
	assert.Error(t, err)
}

func TestCronSpec(t *testing.T) {
	assert.Equal(t, "CRON_TZ=UTC @hourly", cronSpec("@hourly", ""))
	assert.Equal(t, "CRON_TZ=Europe/Berlin 0 3 * * *", cronSpec("0 3 * * *", "Europe/Berlin"))
	assert.Equal(t, "CRON_TZ=Asia/Tokyo @daily", cronSpec("CRON_TZ=Asia/Tokyo @daily", ""))
	assert.Equal(t, "TZ=Asia/Tokyo 0 1 * * *", cronSpec("TZ=Asia/Tokyo 0 1 * * *", ""))
}
