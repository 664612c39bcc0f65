package api

import (
	"bytes"
	"context"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"testing"

	cookiejar "github.com/juju/persistent-cookiejar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/espr/internal/model"
	"github.com/roach88/espr/internal/testutil"
)

func newTestAdmin(t *testing.T, b *testutil.Backend) (*Admin, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies")
	jar, err := cookiejar.New(&cookiejar.Options{Filename: path})
	require.NoError(t, err)
	a, err := NewAdmin(Options{BaseURL: b.URL}, jar)
	require.NoError(t, err)
	return a, path
}

func loginRoutes(b *testutil.Backend) {
	b.HandleFunc(http.MethodPost, "/admin/login", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("password") != "secret" {
			http.Redirect(w, r, "/admin/login?error", http.StatusFound)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc123", Path: "/"})
		http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
	})
	b.Reply(http.MethodGet, "/admin/login", http.StatusOK, "")
	b.Reply(http.MethodGet, "/admin/dashboard", http.StatusOK, "")
}

func TestNewAdmin_RequiresJar(t *testing.T) {
	_, err := NewAdmin(Options{BaseURL: "http://localhost"}, nil)
	assert.Error(t, err)
}

func TestLogin_SuccessKeepsSession(t *testing.T) {
	b := testutil.NewBackend(t)
	loginRoutes(b)
	var cookie string
	b.HandleFunc(http.MethodGet, "/admin/api/products", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("JSESSIONID"); err == nil {
			cookie = c.Value
		}
		_, _ = w.Write([]byte(`[{"id":1,"name":"Latte","price":120,"quantity":10,"category":"Coffee"}]`))
	})
	a, path := newTestAdmin(t, b)

	require.NoError(t, a.Login(context.Background(), "admin", "secret"))

	req, ok := b.Last(http.MethodPost, "/admin/login")
	require.True(t, ok)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	form, err := url.ParseQuery(string(req.Body))
	require.NoError(t, err)
	assert.Equal(t, "admin", form.Get("username"))
	assert.Equal(t, "secret", form.Get("password"))
	assert.FileExists(t, path)

	products, err := a.Products(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc123", cookie)
	require.Len(t, products, 1)
	assert.Equal(t, FlexID("1"), products[0].ID)
	assert.Equal(t, 10, products[0].Quantity)
}

func TestLogin_BadCredentials(t *testing.T) {
	b := testutil.NewBackend(t)
	loginRoutes(b)
	a, _ := newTestAdmin(t, b)

	err := a.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrLoginFailed)
}

func TestLogin_Unauthorized(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Reply(http.MethodPost, "/admin/login", http.StatusUnauthorized, "")
	a, _ := newTestAdmin(t, b)

	assert.ErrorIs(t, a.Login(context.Background(), "admin", "x"), ErrLoginFailed)
}

func TestLogin_RequiresCredentials(t *testing.T) {
	b := testutil.NewBackend(t)
	a, _ := newTestAdmin(t, b)

	assert.ErrorIs(t, a.Login(context.Background(), "", "x"), ErrInvalidForm)
	assert.Empty(t, b.Requests())
}

func TestLogout_ClearsSessionEvenOnServerError(t *testing.T) {
	b := testutil.NewBackend(t)
	loginRoutes(b)
	b.Reply(http.MethodPost, "/logout", http.StatusInternalServerError, "")
	var sawCookie bool
	b.HandleFunc(http.MethodGet, "/admin/api/users", func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie("JSESSIONID")
		sawCookie = err == nil
		_, _ = w.Write([]byte(`[]`))
	})
	a, _ := newTestAdmin(t, b)
	require.NoError(t, a.Login(context.Background(), "admin", "secret"))

	require.NoError(t, a.Logout(context.Background()))
	assert.Equal(t, 1, b.Count(http.MethodPost, "/logout"))

	_, err := a.Users(context.Background())
	require.NoError(t, err)
	assert.False(t, sawCookie)
}

func TestSaveProduct_Multipart(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Reply(http.MethodPost, "/admin/api/products/save", http.StatusOK, `{"id":42,"name":"Cortado","price":135,"quantity":5,"category":"Coffee"}`)
	a, _ := newTestAdmin(t, b)

	saved, err := a.SaveProduct(context.Background(), ProductForm{
		Name: "Cortado", Price: 135, Quantity: 5, Category: "Coffee",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, FlexID("42"), saved.ID)

	req, _ := b.Last(http.MethodPost, "/admin/api/products/save")
	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", mediaType)

	form, err := multipart.NewReader(bytes.NewReader(req.Body), params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cortado"}, form.Value["name"])
	assert.Equal(t, []string{"135"}, form.Value["price"])
	assert.Equal(t, []string{"5"}, form.Value["quantity"])
	assert.Equal(t, []string{"Coffee"}, form.Value["category"])
	assert.NotContains(t, form.Value, "id")
}

func TestSaveProduct_EmptySuccessBody(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Reply(http.MethodPost, "/admin/api/products/save", http.StatusOK, "")
	a, _ := newTestAdmin(t, b)

	saved, err := a.SaveProduct(context.Background(), ProductForm{ID: "3", Name: "Tea", Price: 90, Quantity: 0, Category: "Tea"})
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestProductForm_Validate(t *testing.T) {
	valid := ProductForm{Name: "Latte", Price: 120, Quantity: 1, Category: "Coffee"}
	require.NoError(t, valid.Validate())

	for name, f := range map[string]ProductForm{
		"no name":      {Price: 1, Quantity: 1, Category: "c"},
		"no price":     {Name: "n", Quantity: 1, Category: "c"},
		"neg quantity": {Name: "n", Price: 1, Quantity: -1, Category: "c"},
		"no category":  {Name: "n", Price: 1, Quantity: 1},
	} {
		assert.ErrorIs(t, f.Validate(), ErrInvalidForm, name)
	}
}

func TestUserForm_Validate(t *testing.T) {
	tests := []struct {
		name string
		form UserForm
		ok   bool
	}{
		{"new user", UserForm{Username: "u", Email: "e@x.io", Password: "p", ConfirmPassword: "p"}, true},
		{"update keeps password", UserForm{ID: "1", Username: "u", Email: "e@x.io"}, true},
		{"missing username", UserForm{Email: "e@x.io", Password: "p", ConfirmPassword: "p"}, false},
		{"new without password", UserForm{Username: "u", Email: "e@x.io"}, false},
		{"mismatch", UserForm{Username: "u", Email: "e@x.io", Password: "p", ConfirmPassword: "q"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidForm)
			}
		})
	}
}

func TestSaveUser_FormEncodedWithoutConfirmation(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Reply(http.MethodPost, "/admin/users/save", http.StatusOK, "")
	a, _ := newTestAdmin(t, b)

	require.NoError(t, a.SaveUser(context.Background(), UserForm{
		ID: "5", Username: "barista", Email: "b@espr.ph",
	}))

	req, _ := b.Last(http.MethodPost, "/admin/users/save")
	form, err := url.ParseQuery(string(req.Body))
	require.NoError(t, err)
	assert.Equal(t, "5", form.Get("id"))
	assert.Equal(t, "barista", form.Get("username"))
	assert.False(t, form.Has("password"))
	assert.False(t, form.Has("ConfirmPassword"))
}

func TestSaveUser_InvalidNeverCalls(t *testing.T) {
	b := testutil.NewBackend(t)
	a, _ := newTestAdmin(t, b)

	assert.ErrorIs(t, a.SaveUser(context.Background(), UserForm{Username: "u"}), ErrInvalidForm)
	assert.Empty(t, b.Requests())
}

func TestDeleteUser_AcceptsNoContent(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Reply(http.MethodPost, "/admin/users/delete/9", http.StatusNoContent, "")
	b.Reply(http.MethodPost, "/admin/users/delete/10", http.StatusOK, "")
	a, _ := newTestAdmin(t, b)

	assert.NoError(t, a.DeleteUser(context.Background(), "9"))
	assert.NoError(t, a.DeleteUser(context.Background(), "10"))
	assert.True(t, IsNotFound(a.DeleteUser(context.Background(), "11")))
}

func TestOrders_StatusAndArchive(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Reply(http.MethodGet, "/admin/api/orders", http.StatusOK,
		`[{"id":3,"orderCode":"ESPR-AB12CD","customerName":"Ana","orderDate":"2025-03-14T09:30:00Z","totalWithVAT":268.8,"status":"Pending"},{"id":4,"status":"Shipped"}]`)
	b.Reply(http.MethodPost, "/admin/api/orders/ESPR-AB12CD/status", http.StatusOK, "")
	b.Reply(http.MethodPost, "/admin/api/orders/4/archive", http.StatusOK, "")
	a, _ := newTestAdmin(t, b)
	ctx := context.Background()

	orders, err := a.Orders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "ESPR-AB12CD", orders[0].Code())
	assert.Equal(t, "4", orders[1].Code())
	assert.Equal(t, 268.8, orders[0].TotalWithVAT)

	require.NoError(t, a.UpdateOrderStatus(ctx, orders[0].Code(), model.StatusShipped))
	req, _ := b.Last(http.MethodPost, "/admin/api/orders/ESPR-AB12CD/status")
	assert.JSONEq(t, `{"status":"Shipped"}`, string(req.Body))

	require.NoError(t, a.ArchiveOrder(ctx, orders[1].Code()))
	assert.ErrorIs(t, a.UpdateOrderStatus(ctx, "", model.StatusShipped), ErrInvalidForm)
}

func TestArchiveProduct(t *testing.T) {
	b := testutil.NewBackend(t)
	b.Reply(http.MethodPost, "/admin/api/products/archive/7", http.StatusOK, "")
	a, _ := newTestAdmin(t, b)

	require.NoError(t, a.ArchiveProduct(context.Background(), "7"))
	assert.ErrorIs(t, a.ArchiveProduct(context.Background(), ""), ErrInvalidForm)
}
