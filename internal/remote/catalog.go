package remote

import (
	"context"
	"net/http"
	"net/url"

	"gearplanner/internal/gear"
)

// CommonGear, Articles and Article hit public endpoints and send no token.

func (c *Client) CommonGear(ctx context.Context) ([]gear.CommonGearItem, error) {
	return call(ctx, c, request{
		op:     "fetching common gear",
		method: http.MethodGet,
		path:   "/commonGear",
	}, gear.DecodeCommonGear)
}

func (c *Client) Articles(ctx context.Context) ([]gear.Article, error) {
	return call(ctx, c, request{
		op:     "fetching backpacking articles",
		method: http.MethodGet,
		path:   "/backpacking-articles",
	}, gear.DecodeArticles)
}

func (c *Client) Article(ctx context.Context, articleID string) (gear.Article, error) {
	const op = "fetching the article"
	if articleID == "" {
		return gear.Article{}, inputError(op, "Article ID is missing.")
	}
	return call(ctx, c, request{
		op:     op,
		method: http.MethodGet,
		path:   "/backpacking-articles/" + url.PathEscape(articleID),
	}, gear.DecodeArticle)
}

type UserProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SyncUser registers the signed-in identity with the API's user store.
func (c *Client) SyncUser(ctx context.Context, profile UserProfile) error {
	_, err := call[struct{}](ctx, c, request{
		op:     "syncing your profile",
		method: http.MethodPost,
		path:   "/user",
		body:   profile,
		auth:   true,
	}, nil)
	return err
}
