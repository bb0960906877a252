// Package client is the Go client for the Framez backend: a thin RPC wrapper
// over the mutation/query surface, live query subscriptions over websocket,
// and the optimistic reconciliation used for comment counts.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
)

// Post mirrors a feed entry on the wire.
type Post struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Content       string    `json:"content"`
	ImageURL      *string   `json:"image_url"`
	CreatedAt     time.Time `json:"created_at"`
	LikesCount    int64     `json:"likes_count"`
	CommentsCount int64     `json:"comments_count"`
	SharesCount   int64     `json:"shares_count"`
	Version       int64     `json:"version"`
	Author        *Author   `json:"author,omitempty"`
}

type Author struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
	Author    *Author   `json:"author"`
}

// Result is one live query delivery.
type Result struct {
	Query   string          `json:"query"`
	State   string          `json:"state"`
	Version uint64          `json:"version"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	http    *resty.Client
	baseURL string
	token   string
}

func New(baseURL, token string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json")
	return &Client{http: httpClient, baseURL: baseURL, token: token}
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if resp.IsError() {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(resp.Body(), &body)
		return &APIError{Status: resp.StatusCode(), Message: body.Error}
	}
	return nil
}

// SyncUser provisions or refreshes the account for the bearer identity.
func (c *Client) SyncUser(ctx context.Context, avatar string) (string, error) {
	var out struct {
		UserID string `json:"user_id"`
	}
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"avatar": avatar}).
		SetResult(&out).
		Post("/api/users/sync")
	if err := check(resp, err); err != nil {
		return "", err
	}
	return out.UserID, nil
}

func (c *Client) Feed(ctx context.Context) ([]Post, error) {
	var out struct {
		Posts []Post `json:"posts"`
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/posts")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

func (c *Client) CreatePost(ctx context.Context, content, image string) (string, error) {
	var out struct {
		PostID string `json:"post_id"`
	}
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"content": content, "image": image}).
		SetResult(&out).
		Post("/api/posts")
	if err := check(resp, err); err != nil {
		return "", err
	}
	return out.PostID, nil
}

func (c *Client) UpdatePost(ctx context.Context, postID, content string) error {
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"content": content}).
		Put("/api/posts/" + postID)
	return check(resp, err)
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	resp, err := c.http.R().SetContext(ctx).Delete("/api/posts/" + postID)
	return check(resp, err)
}

func (c *Client) ToggleLike(ctx context.Context, postID string) (bool, error) {
	var out struct {
		Liked bool `json:"liked"`
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).
		Post("/api/posts/" + postID + "/like")
	if err := check(resp, err); err != nil {
		return false, err
	}
	return out.Liked, nil
}

// CreateComment returns the new comment id and the post's version after the
// counter bump; the caller feeds the version into Feed.Confirm.
func (c *Client) CreateComment(ctx context.Context, postID, text string) (string, int64, error) {
	var out struct {
		CommentID   string `json:"comment_id"`
		PostVersion int64  `json:"post_version"`
	}
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"text": text}).
		SetResult(&out).
		Post("/api/posts/" + postID + "/comments")
	if err := check(resp, err); err != nil {
		return "", 0, err
	}
	return out.CommentID, out.PostVersion, nil
}

func (c *Client) DeleteComment(ctx context.Context, commentID string) error {
	resp, err := c.http.R().SetContext(ctx).Delete("/api/comments/" + commentID)
	return check(resp, err)
}

func (c *Client) Share(ctx context.Context, postID string) error {
	resp, err := c.http.R().SetContext(ctx).Post("/api/posts/" + postID + "/share")
	return check(resp, err)
}

// UploadImage asks for an upload ticket, PUTs the raw binary to the granted
// URL, and returns the object id to reference from a post or avatar.
func (c *Client) UploadImage(ctx context.Context, data []byte, contentType string) (string, error) {
	var ticket struct {
		UploadURL string `json:"uploadUrl"`
		ObjectID  string `json:"storageId"`
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&ticket).Post("/api/uploads")
	if err := check(resp, err); err != nil {
		return "", err
	}

	putResp, err := resty.New().R().SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Put(ticket.UploadURL)
	if err := check(putResp, err); err != nil {
		return "", err
	}

	// the storage backend echoes the id it stored under
	var stored struct {
		StorageID string `json:"storageId"`
	}
	if err := json.Unmarshal(putResp.Body(), &stored); err == nil && stored.StorageID != "" {
		return stored.StorageID, nil
	}
	return ticket.ObjectID, nil
}

// Stream is a live query subscription. Results closes when the subscription
// ends, whether by Close, server shutdown, or context cancellation.
type Stream struct {
	Results <-chan Result
	conn    *websocket.Conn
}

func (s *Stream) Close() error {
	return s.conn.Close()
}

// Subscribe opens a websocket to a named live query. args become URL query
// parameters.
func (c *Client) Subscribe(ctx context.Context, query string, args map[string]string) (*Stream, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/api/live/" + query
	if len(args) > 0 {
		params := make([]string, 0, len(args))
		for k, v := range args {
			params = append(params, k+"="+v)
		}
		wsURL += "?" + strings.Join(params, "&")
	}

	header := map[string][]string{}
	if c.token != "" {
		header["Authorization"] = []string{"Bearer " + c.token}
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("dial live query: %w", err)
	}

	results := make(chan Result)
	go func() {
		defer close(results)
		for {
			var res Result
			if err := conn.ReadJSON(&res); err != nil {
				return
			}
			select {
			case results <- res:
			case <-ctx.Done():
				return
			}
		}
	}()

	return &Stream{Results: results, conn: conn}, nil
}
