package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CreatePostRequest struct {
	Content  string `json:"content" binding:"required"`
	ImageURL string `json:"image_url"`
}

// ListFeed godoc
// @Summary      List posts
// @Description  Return the full feed in upstream order
// @Tags         feed
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   entity.Post
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /feed [get]
func (h *Handler) ListFeed(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	posts, err := h.feed.ListPosts(c.Request.Context(), sid)
	if err != nil {
		h.respondError(c, err, "Failed to load feed")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// CreatePost godoc
// @Summary      Publish a post
// @Description  Post new content; the image URL is optional and unvalidated
// @Tags         feed
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePostRequest true "Post content"
// @Success      201  {object}  entity.Post
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.feed.CreatePost(c.Request.Context(), sid, req.Content, req.ImageURL)
	if err != nil {
		h.respondError(c, err, "Failed to post")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// LikePost godoc
// @Summary      Toggle a like
// @Description  Toggle the caller's like and return the refetched feed
// @Tags         feed
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {array}   entity.Post
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /posts/{id}/like [post]
func (h *Handler) LikePost(c *gin.Context) {
	sid, ok := h.sessionID(c)
	if !ok {
		return
	}

	posts, err := h.feed.LikePost(c.Request.Context(), sid, c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to like")
		return
	}
	c.JSON(http.StatusOK, posts)
}
