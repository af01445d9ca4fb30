package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"goldendash/domain/quality"
	"goldendash/internal/errors"
)

// QualityRepository is an in-memory ports.QualityRepository
type QualityRepository struct {
	mu        sync.RWMutex
	apps      map[int64]quality.App
	scans     map[int64][]quality.Scan
	summaries map[int64]map[string]quality.Summary
	nextAppID int64
	nextScan  int64
	now       func() time.Time
}

// NewQualityRepository creates an empty repository
func NewQualityRepository() *QualityRepository {
	return &QualityRepository{
		apps:      make(map[int64]quality.App),
		scans:     make(map[int64][]quality.Scan),
		summaries: make(map[int64]map[string]quality.Summary),
		nextAppID: 1,
		nextScan:  1,
		now:       time.Now,
	}
}

func (r *QualityRepository) ListApps(_ context.Context) ([]quality.App, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	apps := make([]quality.App, 0, len(r.apps))
	for _, a := range r.apps {
		apps = append(apps, a)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].Name < apps[j].Name })
	return apps, nil
}

func (r *QualityRepository) GetApp(_ context.Context, id int64) (*quality.App, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.apps[id]
	if !ok {
		return nil, errors.NotFound("app")
	}
	return &a, nil
}

func (r *QualityRepository) UpsertApp(_ context.Context, name, path string) (*quality.App, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, a := range r.apps {
		if a.Name == name {
			a.Path = path
			r.apps[id] = a
			return &a, nil
		}
	}
	a := quality.App{ID: r.nextAppID, Name: name, Path: path, Status: quality.StatusPending, CreatedAt: r.now()}
	r.nextAppID++
	r.apps[a.ID] = a
	return &a, nil
}

func (r *QualityRepository) UpdateAppStatus(_ context.Context, id int64, status string, scannedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.apps[id]
	if !ok {
		return errors.NotFound("app")
	}
	a.Status = status
	a.LastScannedAt = &scannedAt
	r.apps[id] = a
	return nil
}

func (r *QualityRepository) ReplaceScans(_ context.Context, appID int64, scanType string, scans []quality.Scan, summary quality.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.apps[appID]; !ok {
		return errors.NotFound("app")
	}

	kept := r.scans[appID][:0:0]
	for _, s := range r.scans[appID] {
		if s.ScanType != scanType {
			kept = append(kept, s)
		}
	}
	for _, s := range scans {
		s.ID = r.nextScan
		r.nextScan++
		s.AppID = appID
		s.ScanType = scanType
		kept = append(kept, s)
	}
	r.scans[appID] = kept

	if r.summaries[appID] == nil {
		r.summaries[appID] = make(map[string]quality.Summary)
	}
	summary.AppID = appID
	summary.ScanType = scanType
	r.summaries[appID][scanType] = summary
	return nil
}

func (r *QualityRepository) ListScans(_ context.Context, appID int64) ([]quality.Scan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]quality.Scan, len(r.scans[appID]))
	copy(out, r.scans[appID])
	return out, nil
}

func (r *QualityRepository) ListSummaries(_ context.Context, appID int64) ([]quality.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]quality.Summary, 0, len(r.summaries[appID]))
	for _, s := range r.summaries[appID] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScanType < out[j].ScanType })
	return out, nil
}
