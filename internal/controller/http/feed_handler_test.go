package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"feedshop-gateway/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestListFeedHandler(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]entity.Post{
			{ID: "p1", Content: "hello", Likes: 3, Author: entity.Author{Username: "alice"}},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(server.URL)
	sess, _ := f.sessions.Create(context.Background(), "tok")

	router := newTestRouter()
	router.GET("/feed", withSession(sess.ID), f.handler.ListFeed)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var posts []entity.Post
	_ = json.Unmarshal(w.Body.Bytes(), &posts)
	assert.Len(t, posts, 1)
	assert.Equal(t, "alice", posts[0].Author.Username)
}

func TestListFeedHandler_GuestRejected(t *testing.T) {
	f := newFixture("http://unused.invalid")
	guest, _ := f.sessions.Create(context.Background(), "")

	router := newTestRouter()
	router.GET("/feed", withSession(guest.ID), f.handler.ListFeed)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePostHandler(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(entity.Post{ID: "p9", Content: body["content"]})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(server.URL)
	sess, _ := f.sessions.Create(context.Background(), "tok")

	router := newTestRouter()
	router.POST("/posts", withSession(sess.ID), f.handler.CreatePost)

	w := postJSON(router, "/posts", `{"content":"  hi there  "}`)

	assert.Equal(t, http.StatusCreated, w.Code)

	var post entity.Post
	_ = json.Unmarshal(w.Body.Bytes(), &post)
	assert.Equal(t, "hi there", post.Content)
}

func TestCreatePostHandler_WhitespaceContent(t *testing.T) {
	f := newFixture("http://unused.invalid")
	sess, _ := f.sessions.Create(context.Background(), "tok")

	router := newTestRouter()
	router.POST("/posts", withSession(sess.ID), f.handler.CreatePost)

	// Passes required binding but is empty after trimming
	w := postJSON(router, "/posts", `{"content":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLikePostHandler_ReturnsRefetchedFeed(t *testing.T) {
	likes := 1
	mux := http.NewServeMux()
	mux.HandleFunc("/posts/p1/like", func(w http.ResponseWriter, r *http.Request) {
		likes++
		json.NewEncoder(w).Encode(map[string]bool{"liked": true})
	})
	mux.HandleFunc("/posts", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]entity.Post{{ID: "p1", Likes: likes}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := newFixture(server.URL)
	sess, _ := f.sessions.Create(context.Background(), "tok")

	router := newTestRouter()
	router.POST("/posts/:id/like", withSession(sess.ID), f.handler.LikePost)

	w := postJSON(router, "/posts/p1/like", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var posts []entity.Post
	_ = json.Unmarshal(w.Body.Bytes(), &posts)
	assert.Equal(t, 2, posts[0].Likes)
}
