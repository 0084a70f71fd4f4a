package app

import (
	"context"
	"fmt"
	"time"

	"wayfarer/internal/domain"
)

type QueryService struct {
	store    domain.PlaceStore
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(s domain.PlaceStore, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{store: s, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetPlace(ctx context.Context, id int64) (domain.CanonicalPlace, error) {
	key := fmt.Sprintf("place:id:%d", id)
	var p domain.CanonicalPlace
	if ok, _ := s.cache.Get(ctx, key, &p); ok {
		return p, nil
	}
	p, err := s.store.PlaceByID(ctx, id)
	if err != nil {
		return domain.CanonicalPlace{}, err
	}
	_ = s.cache.Set(ctx, key, p, int(s.cacheTTL.Seconds()))
	return p, nil
}
