package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/google/go-querystring/query"
	"go.uber.org/zap"

	"github.com/roach88/espr/internal/model"
)

// Admin errors.
var (
	ErrLoginFailed = errors.New("login failed: invalid username or password")
	ErrInvalidForm = errors.New("invalid form")
)

// SessionJar is a cookie jar that can be persisted and wiped.
// *cookiejar.Jar from github.com/juju/persistent-cookiejar satisfies it.
type SessionJar interface {
	http.CookieJar
	Save() error
	RemoveAll()
}

// Admin is the console client. Its session lives in the jar.
type Admin struct {
	*Client
	jar SessionJar
}

// NewAdmin returns an admin client whose requests share jar.
func NewAdmin(opts Options, jar SessionJar) (*Admin, error) {
	if jar == nil {
		return nil, errors.New("admin client requires a cookie jar")
	}
	opts.Jar = jar
	c, err := New(opts)
	if err != nil {
		return nil, err
	}
	c.logger = c.logger.Named("admin")
	return &Admin{Client: c, jar: jar}, nil
}

// AdminProduct is a product row in the console.
type AdminProduct struct {
	ID          FlexID  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// AdminOrder is an order row in the console.
type AdminOrder struct {
	ID           FlexID       `json:"id"`
	OrderCode    string       `json:"orderCode"`
	CustomerName string       `json:"customerName"`
	OrderDate    string       `json:"orderDate"`
	TotalWithVAT float64      `json:"totalWithVAT"`
	Status       model.Status `json:"status"`
}

// Code is the identifier used in order URLs: the order code when present,
// else the numeric id.
func (o AdminOrder) Code() string {
	if o.OrderCode != "" {
		return o.OrderCode
	}
	return o.ID.String()
}

// AdminUser is a console account.
type AdminUser struct {
	ID       FlexID `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
}

// ProductForm creates a product (empty ID) or updates one.
type ProductForm struct {
	ID          string  `url:"id,omitempty"`
	Name        string  `url:"name"`
	Price       float64 `url:"price"`
	Quantity    int     `url:"quantity"`
	Category    string  `url:"category"`
	Description string  `url:"description,omitempty"`
	ImageURL    string  `url:"imageUrl,omitempty"`
}

// Validate checks the required product fields.
func (f ProductForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" || f.Price <= 0 || f.Quantity < 0 || strings.TrimSpace(f.Category) == "" {
		return fmt.Errorf("%w: name, price, quantity and category are required", ErrInvalidForm)
	}
	return nil
}

// UserForm creates a user (empty ID) or updates one. An empty Password on
// update keeps the current password.
type UserForm struct {
	ID              string `url:"id,omitempty"`
	Username        string `url:"username"`
	Email           string `url:"email"`
	Name            string `url:"name,omitempty"`
	Password        string `url:"password,omitempty"`
	ConfirmPassword string `url:"-"`
}

// Validate checks the required user fields and password confirmation.
func (f UserForm) Validate() error {
	switch {
	case strings.TrimSpace(f.Username) == "" || strings.TrimSpace(f.Email) == "":
		return fmt.Errorf("%w: username and email are required", ErrInvalidForm)
	case f.ID == "" && f.Password == "":
		return fmt.Errorf("%w: password is required for new users", ErrInvalidForm)
	case f.Password != f.ConfirmPassword:
		return fmt.Errorf("%w: passwords do not match", ErrInvalidForm)
	}
	return nil
}

type loginForm struct {
	Username string `url:"username"`
	Password string `url:"password"`
}

// Login authenticates and persists the session cookie. The server signals
// bad credentials either with an error status or by redirecting back to
// the login page with an "error" query parameter.
func (a *Admin) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidForm)
	}
	req, err := formRequest(http.MethodPost, "/admin/login", loginForm{Username: username, Password: password})
	if err != nil {
		return err
	}
	resp, err := a.send(ctx, req)
	if err != nil {
		return err
	}
	if resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden {
		return ErrLoginFailed
	}
	if !resp.ok() {
		return newHTTPError(req.method, req.path, resp.status, resp.body)
	}
	if resp.finalURL != nil && resp.finalURL.Query().Has("error") {
		return ErrLoginFailed
	}
	if err := a.jar.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	a.logger.Info("logged in", zap.String("username", username))
	return nil
}

// Logout ends the server session and drops stored cookies. The local
// session is wiped even when the server call fails.
func (a *Admin) Logout(ctx context.Context) error {
	callErr := a.do(ctx, request{method: http.MethodPost, path: "/logout"}, nil)
	a.jar.RemoveAll()
	if err := a.jar.Save(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if callErr != nil {
		a.logger.Warn("server logout failed", zap.Error(callErr))
	}
	return nil
}

// Products lists all products.
func (a *Admin) Products(ctx context.Context) ([]AdminProduct, error) {
	var out []AdminProduct
	if err := a.do(ctx, request{method: http.MethodGet, path: "/admin/api/products"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveProduct validates and submits form as multipart/form-data. The
// returned product is nil when the server replies without a body.
func (a *Admin) SaveProduct(ctx context.Context, form ProductForm) (*AdminProduct, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	req, err := multipartRequest(http.MethodPost, "/admin/api/products/save", form)
	if err != nil {
		return nil, err
	}
	var saved AdminProduct
	ok, err := a.doOptional(ctx, req, &saved)
	if err != nil || !ok {
		return nil, err
	}
	return &saved, nil
}

// ArchiveProduct hides a product from the storefront.
func (a *Admin) ArchiveProduct(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: product id is required", ErrInvalidForm)
	}
	return a.do(ctx, request{method: http.MethodPost, path: "/admin/api/products/archive/" + url.PathEscape(id)}, nil)
}

// Orders lists all orders.
func (a *Admin) Orders(ctx context.Context) ([]AdminOrder, error) {
	var out []AdminOrder
	if err := a.do(ctx, request{method: http.MethodGet, path: "/admin/api/orders"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrderStatus sets the fulfilment status of an order.
func (a *Admin) UpdateOrderStatus(ctx context.Context, id string, status model.Status) error {
	if id == "" || status == "" {
		return fmt.Errorf("%w: order id and status are required", ErrInvalidForm)
	}
	req, err := jsonRequest(http.MethodPost, "/admin/api/orders/"+url.PathEscape(id)+"/status", map[string]model.Status{"status": status})
	if err != nil {
		return err
	}
	return a.do(ctx, req, nil)
}

// ArchiveOrder removes an order from the active list.
func (a *Admin) ArchiveOrder(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: order id is required", ErrInvalidForm)
	}
	return a.do(ctx, request{method: http.MethodPost, path: "/admin/api/orders/" + url.PathEscape(id) + "/archive"}, nil)
}

// Users lists console accounts.
func (a *Admin) Users(ctx context.Context) ([]AdminUser, error) {
	var out []AdminUser
	if err := a.do(ctx, request{method: http.MethodGet, path: "/admin/api/users"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveUser validates and submits form url-encoded.
func (a *Admin) SaveUser(ctx context.Context, form UserForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	req, err := formRequest(http.MethodPost, "/admin/users/save", form)
	if err != nil {
		return err
	}
	return a.do(ctx, req, nil)
}

// DeleteUser removes a console account.
func (a *Admin) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidForm)
	}
	return a.do(ctx, request{method: http.MethodPost, path: "/admin/users/delete/" + url.PathEscape(id)}, nil)
}

// doOptional is do for endpoints whose success body may be empty or not
// JSON. It reports whether out was filled.
func (a *Admin) doOptional(ctx context.Context, req request, out any) (bool, error) {
	resp, err := a.send(ctx, req)
	if err != nil {
		return false, err
	}
	if !resp.ok() {
		return false, newHTTPError(req.method, req.path, resp.status, resp.body)
	}
	if len(bytes.TrimSpace(resp.body)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		a.logger.Debug("ignoring non-JSON success body", zap.String("path", req.path))
		return false, nil
	}
	return true, nil
}

func formRequest(method, path string, form any) (request, error) {
	values, err := query.Values(form)
	if err != nil {
		return request{}, fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	return request{
		method:      method,
		path:        path,
		contentType: "application/x-www-form-urlencoded",
		body:        []byte(values.Encode()),
	}, nil
}

func multipartRequest(method, path string, form any) (request, error) {
	values, err := query.Values(form)
	if err != nil {
		return request{}, fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, k := range keys {
		for _, v := range values[k] {
			if err := w.WriteField(k, v); err != nil {
				return request{}, fmt.Errorf("encode %s %s: %w", method, path, err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("encode %s %s: %w", method, path, err)
	}
	return request{method: method, path: path, contentType: w.FormDataContentType(), body: buf.Bytes()}, nil
}
