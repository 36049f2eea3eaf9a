package application

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/reedge/reedge-services/api/internal/public/domain"
)

// reviewQueryService memoises reviews per shop for the process lifetime.
// 取得に失敗した結果はキャッシュせず、次回の呼び出しで再試行する。
type reviewQueryService struct {
	repo   ReviewRepository
	cache  SnapshotCache
	logger *zap.SugaredLogger

	mu     sync.RWMutex
	loaded map[string][]domain.Review
	calls  singleflight.Group
}

// NewReviewQueryService creates a new ReviewQueryService. cache may be nil.
func NewReviewQueryService(repo ReviewRepository, cache SnapshotCache, logger *zap.SugaredLogger) ReviewQueryService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &reviewQueryService{
		repo:   repo,
		cache:  cache,
		logger: logger,
		loaded: make(map[string][]domain.Review),
	}
}

func (s *reviewQueryService) ForShop(ctx context.Context, shopID string) []domain.Review {
	if shopID == "" {
		return []domain.Review{}
	}
	if reviews, ok := s.lookup(shopID); ok {
		return reviews
	}

	v, err, _ := s.calls.Do(shopID, func() (interface{}, error) {
		if reviews, ok := s.lookup(shopID); ok {
			return reviews, nil
		}
		loadCtx, cancel := detach(ctx)
		defer cancel()
		if s.cache != nil {
			if reviews, ok := s.cache.LoadReviews(loadCtx, shopID); ok {
				s.remember(shopID, reviews)
				return reviews, nil
			}
		}
		reviews, err := s.repo.FindByShop(loadCtx, shopID)
		if err != nil {
			return nil, err
		}
		sortReviews(reviews)
		s.remember(shopID, reviews)
		if s.cache != nil {
			s.cache.StoreReviews(loadCtx, shopID, reviews)
		}
		return reviews, nil
	})
	if err != nil {
		s.logger.Warnw("review fetch failed", "shopId", shopID, "error", err)
		return []domain.Review{}
	}
	return copyReviews(v.([]domain.Review))
}

func (s *reviewQueryService) lookup(shopID string) ([]domain.Review, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reviews, ok := s.loaded[shopID]
	if !ok {
		return nil, false
	}
	return copyReviews(reviews), true
}

func (s *reviewQueryService) remember(shopID string, reviews []domain.Review) {
	s.mu.Lock()
	s.loaded[shopID] = copyReviews(reviews)
	s.mu.Unlock()
}

// sortReviews orders newest first.
func sortReviews(reviews []domain.Review) {
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
}

func copyReviews(in []domain.Review) []domain.Review {
	out := make([]domain.Review, len(in))
	copy(out, in)
	return out
}
