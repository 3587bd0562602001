package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/derby/internal/repository"
	"github.com/alexanderramin/derby/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettings(t *testing.T) SettingsService {
	t.Helper()
	return NewSettingsService(repository.NewSQLiteSettingsRepo(testutil.NewTestDB(t)))
}

func TestSettings_DefaultsAndOverrides(t *testing.T) {
	svc := newSettings(t)
	ctx := context.Background()

	v, err := svc.Get(ctx, SettingSummaryPeriod)
	require.NoError(t, err)
	assert.Equal(t, "week", v)

	require.NoError(t, svc.Set(ctx, SettingSummaryPeriod, "month"))
	v, err = svc.Get(ctx, SettingSummaryPeriod)
	require.NoError(t, err)
	assert.Equal(t, "month", v)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(SettingKeys()))
	assert.Equal(t, "month", all[SettingSummaryPeriod])
	assert.Equal(t, "priority", all[SettingSummarySort])
}

func TestSettings_Validation(t *testing.T) {
	svc := newSettings(t)
	ctx := context.Background()

	assert.Error(t, svc.Set(ctx, SettingSummaryPeriod, "fortnight"))
	assert.Error(t, svc.Set(ctx, SettingSummaryGroup, "maybe"))
	assert.Error(t, svc.Set(ctx, "color", "blue"))
	_, err := svc.Get(ctx, "color")
	assert.Error(t, err)

	require.NoError(t, svc.Set(ctx, SettingSummaryGroup, "true"))
	require.NoError(t, svc.Set(ctx, SettingSummaryGranularity, "monthly"))
	require.NoError(t, svc.Set(ctx, SettingSummarySort, "tag"))
}

func TestSettingKeys_Sorted(t *testing.T) {
	assert.Equal(t, []string{
		SettingSummaryGranularity,
		SettingSummaryGroup,
		SettingSummaryPeriod,
		SettingSummarySort,
	}, SettingKeys())
}
