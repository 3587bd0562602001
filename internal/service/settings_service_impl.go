package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/repository"
	"github.com/alexanderramin/derby/internal/summary"
)

// Setting keys persisted in the database.
const (
	SettingSummaryPeriod      = "summary.period"
	SettingSummarySort        = "summary.sort"
	SettingSummaryGranularity = "summary.granularity"
	SettingSummaryGroup       = "summary.group"
)

// settingValidators lists the accepted keys and checks their values.
var settingValidators = map[string]func(string) error{
	SettingSummaryPeriod:      oneOf(summary.ValidPeriods),
	SettingSummarySort:        oneOf(domain.ValidSortKeys),
	SettingSummaryGranularity: oneOf(domain.ValidGranularities),
	SettingSummaryGroup: func(v string) error {
		_, err := strconv.ParseBool(v)
		return err
	},
}

// SettingDefaults are returned by Get and List for unset keys.
var SettingDefaults = map[string]string{
	SettingSummaryPeriod:      summary.PeriodWeek,
	SettingSummarySort:        string(domain.SortByPriority),
	SettingSummaryGranularity: string(domain.GranularityNone),
	SettingSummaryGroup:       "false",
}

// SettingKeys returns the accepted keys in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(settingValidators))
	for k := range settingValidators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func oneOf(valid map[string]bool) func(string) error {
	return func(v string) error {
		if !valid[v] {
			return fmt.Errorf("invalid value %q", v)
		}
		return nil
	}
}

type settingsService struct {
	settings repository.SettingsRepo
	observer UseCaseObserver
}

func NewSettingsService(settings repository.SettingsRepo, observers ...UseCaseObserver) SettingsService {
	return &settingsService{settings: settings, observer: useCaseObserverOrNoop(observers)}
}

func (s *settingsService) Get(ctx context.Context, key string) (string, error) {
	if _, ok := settingValidators[key]; !ok {
		return "", fmt.Errorf("unknown setting %q", key)
	}
	v, err := s.settings.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return SettingDefaults[key], nil
		}
		return "", err
	}
	return v, nil
}

func (s *settingsService) Set(ctx context.Context, key, value string) (err error) {
	startedAt := time.Now()
	defer func() {
		observe(ctx, s.observer, "settings.set", startedAt, map[string]any{"key": key, "value": value}, err)
	}()

	validate, ok := settingValidators[key]
	if !ok {
		return fmt.Errorf("unknown setting %q", key)
	}
	if err := validate(value); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return s.settings.Set(ctx, key, value)
}

// List returns every known setting with defaults filled in.
func (s *settingsService) List(ctx context.Context) (map[string]string, error) {
	stored, err := s.settings.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(SettingDefaults))
	for k, v := range SettingDefaults {
		out[k] = v
	}
	for k, v := range stored {
		if _, ok := settingValidators[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}
