package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"gearplanner/internal/gear"
	"gearplanner/internal/remote"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	common   []gear.CommonGearItem
	articles []gear.Article
	err      error
	calls    map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		common: []gear.CommonGearItem{
			{ID: "c1", Name: "Tent", Category: "shelter"},
			{ID: "c2", Name: "Headlamp", Category: "electronics"},
		},
		articles: []gear.Article{
			{ID: "a1", Title: "Layering 101", ImageURL: "/img/layers.jpg", Content: []string{"Start with a base layer."}},
		},
		calls: map[string]int{},
	}
}

func (f *fakeSource) CommonGear(context.Context) ([]gear.CommonGearItem, error) {
	f.calls["common"]++
	return f.common, f.err
}

func (f *fakeSource) Articles(context.Context) ([]gear.Article, error) {
	f.calls["articles"]++
	return f.articles, f.err
}

func (f *fakeSource) Article(_ context.Context, id string) (gear.Article, error) {
	f.calls["article:"+id]++
	if f.err != nil {
		return gear.Article{}, f.err
	}
	for _, a := range f.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return gear.Article{}, &remote.Error{Kind: remote.KindStatus, Status: 404, Message: "There was a problem fetching the article: Not found"}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCommonGearWithoutRedisAlwaysFetches(t *testing.T) {
	src := newFakeSource()
	svc := NewService(src, nil, time.Minute, nil)

	for i := 0; i < 2; i++ {
		items, err := svc.CommonGear(context.Background())
		require.NoError(t, err)
		assert.Len(t, items, 2)
	}
	assert.Equal(t, 2, src.calls["common"])
}

func TestCommonGearIsCachedUntilTTL(t *testing.T) {
	mr, client := newRedis(t)
	src := newFakeSource()
	svc := NewService(src, client, time.Minute, nil)

	first, err := svc.CommonGear(context.Background())
	require.NoError(t, err)
	second, err := svc.CommonGear(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls["common"])
	assert.True(t, mr.Exists(commonGearKey))

	mr.FastForward(2 * time.Minute)
	_, err = svc.CommonGear(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls["common"])
}

func TestErrorsAreNotCached(t *testing.T) {
	mr, client := newRedis(t)
	src := newFakeSource()
	src.err = &remote.Error{Kind: remote.KindTransport, Message: "There was a problem fetching backpacking articles."}
	svc := NewService(src, client, time.Minute, nil)

	_, err := svc.Articles(context.Background())
	var re *remote.Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, remote.KindTransport, re.Kind)
	assert.False(t, mr.Exists(articlesKey))
}

func TestUnreadableCacheEntryFallsBackToSource(t *testing.T) {
	mr, client := newRedis(t)
	require.NoError(t, mr.Set(articlesKey, "{not json"))
	src := newFakeSource()
	svc := NewService(src, client, time.Minute, nil)

	articles, err := svc.Articles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Layering 101", articles[0].Title)
	assert.Equal(t, 1, src.calls["articles"])
}

func TestArticleCachedPerID(t *testing.T) {
	_, client := newRedis(t)
	src := newFakeSource()
	svc := NewService(src, client, time.Minute, nil)

	for i := 0; i < 3; i++ {
		article, err := svc.Article(context.Background(), "a1")
		require.NoError(t, err)
		assert.Equal(t, []string{"Start with a base layer."}, article.Content)
	}
	assert.Equal(t, 1, src.calls["article:a1"])

	_, err := svc.Article(context.Background(), "missing")
	require.Error(t, err)
}
