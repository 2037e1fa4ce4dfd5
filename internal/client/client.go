// Package client 社区 API 的 Go 客户端；非 2xx 统一返回 *APIError
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// StatusOf 非 *APIError 返回 0
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

type Author struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type Reply struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Content   string    `json:"content"`
	Likes     []string  `json:"likes"`
	Timestamp time.Time `json:"timestamp"`
	Author    Author    `json:"author"`
}

type Post struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	CommunityID string    `json:"communityId,omitempty"`
	Content     string    `json:"content"`
	Tags        []string  `json:"tags"`
	Replies     []Reply   `json:"replies"`
	Likes       []string  `json:"likes"`
	Timestamp   time.Time `json:"timestamp"`
	Author      Author    `json:"author"`
}

type Page struct {
	Posts       []Post `json:"posts"`
	CurrentPage int    `json:"currentPage"`
	TotalPages  int    `json:"totalPages"`
	TotalPosts  int64  `json:"totalPosts"`
	Limit       int    `json:"limit"`
}

type UserDetails struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type AuthResult struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Email   string `json:"email"`
	Token   string `json:"token"`
}

type Client struct {
	base  string
	hc    *http.Client
	token string
}

// New baseURL 形如 http://127.0.0.1:5000/api/v1/community
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), hc: hc}
}

// WithToken 返回带 bearer token 的副本
func (c *Client) WithToken(tok string) *Client {
	cp := *c
	cp.token = tok
	return &cp
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		var eb struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &eb)
		if eb.Message == "" {
			eb.Message = http.StatusText(res.StatusCode)
		}
		return &APIError{Status: res.StatusCode, Message: eb.Message}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func esc(s string) string { return url.PathEscape(s) }

func (c *Client) CreatePost(ctx context.Context, author, content string) (*Post, error) {
	var p Post
	err := c.do(ctx, http.MethodPost, "/posts", map[string]string{"author": author, "content": content}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetPost(ctx context.Context, postID string) (*Post, error) {
	var p Post
	if err := c.do(ctx, http.MethodGet, "/posts/"+esc(postID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListPosts(ctx context.Context, page, limit int) (*Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var pg Page
	if err := c.do(ctx, http.MethodGet, "/posts?"+q.Encode(), nil, &pg); err != nil {
		return nil, err
	}
	return &pg, nil
}

func (c *Client) SearchPosts(ctx context.Context, query string) ([]Post, error) {
	var ps []Post
	if err := c.do(ctx, http.MethodGet, "/posts/search?query="+url.QueryEscape(query), nil, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

func (c *Client) AddReply(ctx context.Context, postID, author, content string) (*Post, error) {
	var p Post
	err := c.do(ctx, http.MethodPost, "/posts/"+esc(postID)+"/replies",
		map[string]string{"author": author, "content": content}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

type likes struct {
	Likes []string `json:"likes"`
}

func (c *Client) TogglePostLike(ctx context.Context, postID, userID string) ([]string, error) {
	var out likes
	err := c.do(ctx, http.MethodPost, "/posts/"+esc(postID)+"/like", map[string]string{"userId": userID}, &out)
	return out.Likes, err
}

func (c *Client) ToggleReplyLike(ctx context.Context, postID, replyID, userID string) ([]string, error) {
	var out likes
	err := c.do(ctx, http.MethodPost, "/posts/"+esc(postID)+"/replies/"+esc(replyID)+"/like",
		map[string]string{"userId": userID}, &out)
	return out.Likes, err
}

func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+esc(postID), nil, nil)
}

func (c *Client) DeleteReply(ctx context.Context, postID, replyID string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+esc(postID)+"/replies/"+esc(replyID), nil, nil)
}

func (c *Client) GetUserDetails(ctx context.Context, userID string) (*UserDetails, error) {
	var d UserDetails
	if err := c.do(ctx, http.MethodGet, "/user/"+esc(userID), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*AuthResult, error) {
	return c.auth(ctx, map[string]string{"type": "signup", "name": name, "email": email, "password": password})
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.auth(ctx, map[string]string{"type": "login", "email": email, "password": password})
}

func (c *Client) auth(ctx context.Context, in map[string]string) (*AuthResult, error) {
	var r AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth", in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
