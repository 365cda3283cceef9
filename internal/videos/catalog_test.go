package videos

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/streamgate/backend/internal/models"
	"github.com/streamgate/backend/internal/repositories"
	"github.com/streamgate/backend/internal/token"
)

type fakeStore struct {
	videos []models.Video
	calls  int
}

func (s *fakeStore) FindByID(_ context.Context, id string) (models.Video, error) {
	s.calls++
	for _, v := range s.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Video{}, repositories.ErrNotFound
}

func (s *fakeStore) ListActive(_ context.Context, offset, limit int) ([]models.Video, int64, error) {
	s.calls++
	var active []models.Video
	for _, v := range s.videos {
		if v.IsActive {
			active = append(active, v)
		}
	}

	total := int64(len(active))
	if offset >= len(active) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(active) {
		end = len(active)
	}
	return active[offset:end], total, nil
}

func seedVideos(n int) []models.Video {
	videos := make([]models.Video, 0, n)
	for i := 0; i < n; i++ {
		videos = append(videos, models.Video{
			ID:           string(rune('a' + i)),
			Title:        "Video",
			Description:  "Description",
			ThumbnailURL: "https://example.com/thumb.jpg",
			SourceID:     "src-" + string(rune('a'+i)),
			IsActive:     true,
		})
	}
	return videos
}

func newTestCatalog(t *testing.T, store Store) *Catalog {
	t.Helper()
	svc, err := token.NewService("test-secret", time.Hour, 7*24*time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	return NewCatalog(store, svc, "https://www.youtube.com/embed")
}

func TestListPublicPagination(t *testing.T) {
	catalog := newTestCatalog(t, &fakeStore{videos: seedVideos(5)})

	items, page, err := catalog.ListPublic(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items got %d", len(items))
	}
	if page.TotalItems != 5 || page.TotalPages != 3 {
		t.Fatalf("unexpected pagination %+v", page)
	}
	if !page.HasNext || page.HasPrev {
		t.Fatalf("expected has_next and no has_prev on page 1, got %+v", page)
	}

	items, page, err = catalog.ListPublic(context.Background(), 3, 2)
	if err != nil {
		t.Fatalf("list page 3: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item on last page got %d", len(items))
	}
	if page.HasNext || !page.HasPrev {
		t.Fatalf("expected has_prev and no has_next on page 3, got %+v", page)
	}
}

func TestListPublicClampsInput(t *testing.T) {
	catalog := newTestCatalog(t, &fakeStore{videos: seedVideos(3)})

	_, page, err := catalog.ListPublic(context.Background(), -4, 100)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Page != 1 {
		t.Fatalf("expected page clamped to 1 got %d", page.Page)
	}
	if page.Limit != MaxPageSize {
		t.Fatalf("expected limit clamped to %d got %d", MaxPageSize, page.Limit)
	}

	_, page, err = catalog.ListPublic(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Limit != DefaultPageSize {
		t.Fatalf("expected default limit %d got %d", DefaultPageSize, page.Limit)
	}
}

func TestListPublicEmptyCatalog(t *testing.T) {
	catalog := newTestCatalog(t, &fakeStore{})

	items, page, err := catalog.ListPublic(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items got %d", len(items))
	}
	if page.TotalPages != 1 || page.HasNext || page.HasPrev {
		t.Fatalf("unexpected pagination for empty catalog %+v", page)
	}
}

func TestRequestPlaybackRoundTrip(t *testing.T) {
	store := &fakeStore{videos: seedVideos(1)}
	catalog := newTestCatalog(t, store)

	grant, err := catalog.RequestPlayback(context.Background(), "a", "user-1")
	if err != nil {
		t.Fatalf("request playback: %v", err)
	}

	if grant.EmbedURL != "https://www.youtube.com/embed/src-a" {
		t.Fatalf("unexpected embed url %q", grant.EmbedURL)
	}
	if grant.PlaybackToken == "" {
		t.Fatal("expected a playback token")
	}

	videoID, err := catalog.VerifyPlayback(grant.PlaybackToken)
	if err != nil {
		t.Fatalf("verify playback: %v", err)
	}
	if videoID != "a" {
		t.Fatalf("expected video id a got %q", videoID)
	}
}

func TestRequestPlaybackUnknownVideo(t *testing.T) {
	catalog := newTestCatalog(t, &fakeStore{})

	if _, err := catalog.RequestPlayback(context.Background(), "missing", "user-1"); !errors.Is(err, ErrVideoNotFound) {
		t.Fatalf("expected ErrVideoNotFound got %v", err)
	}
}

func TestVerifyPlaybackRejectsAccessToken(t *testing.T) {
	svc, err := token.NewService("test-secret", time.Hour, time.Hour, time.Hour)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	catalog := NewCatalog(&fakeStore{}, svc, "https://www.youtube.com/embed")

	access, _, err := svc.IssueAccess("user-1")
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	if _, err := catalog.VerifyPlayback(access); !errors.Is(err, token.ErrKindMismatch) {
		t.Fatalf("expected ErrKindMismatch got %v", err)
	}
}

func TestCachingStoreServesFromCache(t *testing.T) {
	store := &fakeStore{videos: seedVideos(2)}
	cached := NewCachingStore(store, time.Minute)

	if _, _, err := cached.ListActive(context.Background(), 0, 2); err != nil {
		t.Fatalf("first list: %v", err)
	}
	if _, _, err := cached.ListActive(context.Background(), 0, 2); err != nil {
		t.Fatalf("second list: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected one store call got %d", store.calls)
	}

	if _, err := cached.FindByID(context.Background(), "a"); err != nil {
		t.Fatalf("first find: %v", err)
	}
	if _, err := cached.FindByID(context.Background(), "a"); err != nil {
		t.Fatalf("second find: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("expected two store calls got %d", store.calls)
	}
}

func TestCachingStoreDoesNotCacheErrors(t *testing.T) {
	store := &fakeStore{}
	cached := NewCachingStore(store, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cached.FindByID(context.Background(), "missing"); !errors.Is(err, repositories.ErrNotFound) {
			t.Fatalf("expected ErrNotFound got %v", err)
		}
	}
	if store.calls != 2 {
		t.Fatalf("expected misses to reach the store, got %d calls", store.calls)
	}
}

func TestPublicVideoOmitsSourceID(t *testing.T) {
	video := models.Video{
		ID:           "a",
		Title:        "Video",
		Description:  "Description",
		ThumbnailURL: "https://example.com/thumb.jpg",
		SourceID:     "super-secret-source",
		IsActive:     true,
	}

	public := video.Public()
	for _, field := range []string{public.ID, public.Title, public.Description, public.ThumbnailURL} {
		if strings.Contains(field, video.SourceID) {
			t.Fatalf("public view leaked source id in %q", field)
		}
	}
}
