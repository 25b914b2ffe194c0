package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/moyustudio/teamup-board/backend/internal/apperrors"
	"github.com/moyustudio/teamup-board/backend/internal/middleware"
	"github.com/moyustudio/teamup-board/backend/internal/models"
)

func seedPost(t *testing.T, repo *fakePostRepo, authorHandle string) *models.Post {
	t.Helper()
	post := &models.Post{
		Author:  models.AuthorSnapshot{Handle: authorHandle, DisplayName: "Player"},
		Content: "LF2 for ranked tonight",
	}
	if err := repo.CreatePost(context.Background(), post); err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return post
}

func TestToggleLike(t *testing.T) {
	posts := newFakePostRepo()
	post := seedPost(t, posts, "alice123")
	h := NewLikeHandler(posts)

	toggle := func(actor string) (bool, int) {
		c, rec := newTestContext(t, http.MethodPost, "/", nil)
		c.SetParamNames("id")
		c.SetParamValues(post.ID.Hex())
		c.Set(middleware.ActorContextKey, actor)
		if err := h.ToggleLike(c); err != nil {
			t.Fatalf("toggle as %s: %v", actor, err)
		}
		var resp struct {
			Liked     bool `json:"liked"`
			LikeCount int  `json:"like_count"`
		}
		decodeBody(t, rec, &resp)
		return resp.Liked, resp.LikeCount
	}

	if liked, count := toggle("user:alice123"); !liked || count != 1 {
		t.Fatalf("first toggle = (%v, %d), want (true, 1)", liked, count)
	}
	if liked, count := toggle("ip:203.0.113.9"); !liked || count != 2 {
		t.Fatalf("anonymous toggle = (%v, %d), want (true, 2)", liked, count)
	}
	if liked, count := toggle("user:alice123"); liked || count != 1 {
		t.Fatalf("repeat toggle = (%v, %d), want (false, 1)", liked, count)
	}

	stored, _ := posts.GetPostByID(context.Background(), post.ID.Hex())
	if stored.LikeCount != len(stored.LikerIDs) {
		t.Errorf("counter %d diverged from liker set %d", stored.LikeCount, len(stored.LikerIDs))
	}
}

func TestToggleLikeConcurrentActors(t *testing.T) {
	posts := newFakePostRepo()
	post := seedPost(t, posts, "alice123")
	h := NewLikeHandler(posts)

	const actors = 32
	var wg sync.WaitGroup
	errs := make(chan error, actors)
	for i := 0; i < actors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, _ := newTestContext(t, http.MethodPost, "/", nil)
			c.SetParamNames("id")
			c.SetParamValues(post.ID.Hex())
			c.Set(middleware.ActorContextKey, fmt.Sprintf("ip:10.0.0.%d", i))
			errs <- h.ToggleLike(c)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent toggle: %v", err)
		}
	}

	stored, _ := posts.GetPostByID(context.Background(), post.ID.Hex())
	if stored.LikeCount != actors || len(stored.LikerIDs) != actors {
		t.Errorf("after %d distinct actors: count=%d likers=%d", actors, stored.LikeCount, len(stored.LikerIDs))
	}
}

func TestToggleLikeUnknownPost(t *testing.T) {
	h := NewLikeHandler(newFakePostRepo())
	c, _ := newTestContext(t, http.MethodPost, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())
	c.Set(middleware.ActorContextKey, "user:alice123")
	if err := h.ToggleLike(c); !errors.Is(err, apperrors.ErrPostNotFound) {
		t.Fatalf("want ErrPostNotFound, got %v", err)
	}
}
