package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, DenominatorRecords, cfg.Attendance.Denominator)
	assert.Equal(t, FailurePolicyBestEffort, cfg.Attendance.FailurePolicy)
	assert.Equal(t, 8, cfg.Attendance.FanOutLimit)
	assert.False(t, cfg.Attendance.CacheEnabled)
	require.NotNil(t, cfg.Attendance.Location)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 5, cfg.Database.ConnectRetries)
	assert.Equal(t, 2*time.Second, cfg.Database.ConnectRetryDelay)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 500*time.Millisecond, cfg.Redis.ReadTimeout)
}

func TestFromViperConnectionTuning(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DB_CONN_MAX_LIFETIME", "5m")
	v.Set("DB_CONNECT_RETRIES", 0)
	v.Set("DB_CONNECT_RETRY_DELAY", "soon")
	v.Set("REDIS_DIAL_TIMEOUT", "250ms")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 0, cfg.Database.ConnectRetries)
	assert.Equal(t, 2*time.Second, cfg.Database.ConnectRetryDelay)
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.DialTimeout)
}

func TestFromViperAttendanceOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ATTENDANCE_DENOMINATOR", "SESSIONS")
	v.Set("ATTENDANCE_FAILURE_POLICY", "fail_fast")
	v.Set("ATTENDANCE_TIMEZONE", "UTC")
	v.Set("ATTENDANCE_FANOUT_LIMIT", 0)

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, DenominatorSessions, cfg.Attendance.Denominator)
	assert.Equal(t, FailurePolicyFailFast, cfg.Attendance.FailurePolicy)
	assert.Equal(t, time.UTC, cfg.Attendance.Location)
	assert.Equal(t, 8, cfg.Attendance.FanOutLimit)
}

func TestFromViperUnknownModesFallBack(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ATTENDANCE_DENOMINATOR", "weekly")
	v.Set("ATTENDANCE_FAILURE_POLICY", "retry")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, DenominatorRecords, cfg.Attendance.Denominator)
	assert.Equal(t, FailurePolicyBestEffort, cfg.Attendance.FailurePolicy)
}

func TestFromViperInvalidTimezone(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ATTENDANCE_TIMEZONE", "Mars/Olympus")

	_, err := fromViper(v)
	require.Error(t, err)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, splitAndTrim(" https://a.example, ,https://b.example "))
}
