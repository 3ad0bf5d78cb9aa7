package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"wellwatch/internal/cache"
	"wellwatch/internal/models"
	"wellwatch/internal/registry"
)

// placeholderLocation marks a well the registry does not know about.
const placeholderLocation = "Location pending"

// WellEnricher cross-references accepted well identifiers against the state
// registry through a read-through TTL cache. Lookups for one submission fan
// out in bounded groups with a short pause between groups, so a big import
// can not burst-load the registry. A registry miss is not an error: the well
// still imports with blank enrichment fields and a placeholder location.
type WellEnricher struct {
	registry registry.Client
	cache    cache.Cache
	ttl      time.Duration
	fanout   int
	pacer    Pacer
	logger   *logrus.Logger
}

func NewWellEnricher(reg registry.Client, c cache.Cache, ttl time.Duration, fanout int, pacer Pacer, logger *logrus.Logger) *WellEnricher {
	if fanout <= 0 {
		fanout = 5
	}
	if pacer == nil {
		pacer = FixedDelayPacer{}
	}
	return &WellEnricher{
		registry: reg,
		cache:    c,
		ttl:      ttl,
		fanout:   fanout,
		pacer:    pacer,
		logger:   logger,
	}
}

// Enrich populates registry attributes onto each row's normalized fields.
// Rows enrich concurrently within a fan-out group; groups run one after
// another. A row whose lookup fails upstream keeps its placeholder and the
// import proceeds.
func (e *WellEnricher) Enrich(ctx context.Context, rows []models.ImportRow) {
	for start := 0; start < len(rows); start += e.fanout {
		end := start + e.fanout
		if end > len(rows) {
			end = len(rows)
		}

		if start > 0 {
			if err := e.pacer.Pause(ctx); err != nil {
				return
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				e.enrichRow(gctx, &rows[i])
				return nil
			})
		}
		_ = g.Wait()
	}
}

func (e *WellEnricher) enrichRow(ctx context.Context, row *models.ImportRow) {
	apiNumber := row.Normalized[models.FieldAPINumber]
	if apiNumber == "" {
		return
	}

	attrs, err := e.Lookup(ctx, apiNumber)
	if err != nil {
		e.logger.WithField("api_number", apiNumber).WithError(err).Warn("well enrichment unavailable")
	}
	applyAttributes(row.Normalized, attrs)
}

// Lookup resolves one API number through the cache, falling back to a single
// registry call on miss. A found well is cached; a miss (not found) returns
// (nil, nil).
func (e *WellEnricher) Lookup(ctx context.Context, apiNumber string) (*registry.WellAttributes, error) {
	if e.cache == nil {
		return e.Refresh(ctx, apiNumber)
	}
	if cached, ok, err := e.cache.Get(ctx, apiNumber); err == nil && ok {
		var attrs registry.WellAttributes
		if err := json.Unmarshal([]byte(cached), &attrs); err == nil {
			return &attrs, nil
		}
	}
	return e.Refresh(ctx, apiNumber)
}

// Refresh looks the well up in the registry unconditionally and repopulates
// the cache on success. Used by the background refresh task to keep stored
// wells current without waiting out the TTL.
func (e *WellEnricher) Refresh(ctx context.Context, apiNumber string) (*registry.WellAttributes, error) {
	attrs, err := e.registry.LookupWell(ctx, apiNumber)
	if errors.Is(err, registry.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if e.cache == nil {
		return attrs, nil
	}
	if encoded, err := json.Marshal(attrs); err == nil {
		if err := e.cache.PutWithTTL(ctx, apiNumber, string(encoded), e.ttl); err != nil {
			e.logger.WithField("api_number", apiNumber).WithError(err).Warn("failed to cache well attributes")
		}
	}
	return attrs, nil
}

// applyAttributes maps registry attributes onto record store fields. nil
// attrs means the registry does not know the well: blank enrichment and a
// placeholder location.
func applyAttributes(fields map[string]string, attrs *registry.WellAttributes) {
	if attrs == nil {
		fields[models.FieldLocation] = placeholderLocation
		return
	}

	fields[models.FieldWellName] = attrs.Name
	fields[models.FieldOperator] = attrs.Operator
	if attrs.County != "" {
		fields[models.FieldCounty] = NormalizeCounty(attrs.County)
	}
	fields[models.FieldStatus] = attrs.Status
	if attrs.Latitude != 0 || attrs.Longitude != 0 {
		fields[models.FieldLatitude] = strconv.FormatFloat(attrs.Latitude, 'f', 6, 64)
		fields[models.FieldLongitude] = strconv.FormatFloat(attrs.Longitude, 'f', 6, 64)
	}

	sec := NormalizeSection(attrs.Section)
	twn := NormalizeTownship(attrs.Township)
	rng := NormalizeRange(attrs.Range)
	if sec != "" && twn != "" && rng != "" {
		fields[models.FieldLocation] = fmt.Sprintf("Sec %s-%s-%s", sec, twn, rng)
	} else {
		fields[models.FieldLocation] = placeholderLocation
	}
}
