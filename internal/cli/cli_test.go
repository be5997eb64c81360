package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KyoTung/camera-store-client/internal/api"
	"github.com/KyoTung/camera-store-client/internal/apitest"
	"github.com/KyoTung/camera-store-client/internal/app"
	"github.com/KyoTung/camera-store-client/internal/cli"
	"github.com/KyoTung/camera-store-client/internal/config"
	"github.com/KyoTung/camera-store-client/pkg/logger"
)

func setup(t *testing.T) (*app.App, *apitest.Server) {
	t.Helper()

	server := apitest.New()
	t.Cleanup(server.Close)
	server.SeedProducts(
		api.Product{ID: 1, Name: "Fujifilm X100", Price: 1500, BrandID: 1, CategoryID: 1, Featured: true},
		api.Product{ID: 2, Name: "Canon EOS R6", Price: 2400, BrandID: 2, CategoryID: 1},
		api.Product{ID: 3, Name: "Tripod", Price: 80, CategoryID: 2},
	)
	server.SeedBrands(api.Brand{ID: 1, Name: "Fujifilm"}, api.Brand{ID: 2, Name: "Canon"})
	server.SeedCategories(api.Category{ID: 1, Name: "Cameras"}, api.Category{ID: 2, Name: "Accessories"})
	server.SeedDiscountCodes(api.DiscountCode{
		Name:      "WELCOME10",
		Value:     0.1,
		StartDate: time.Now().AddDate(0, 0, -1).Format("2006-01-02"),
		EndDate:   time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
	})
	server.SeedAccount(api.User{ID: 7, Name: "Anna", Email: "anna@example.com"}, "secret")

	cfg := &config.Config{
		Environment:    "test",
		LogLevel:       "error",
		APIBaseURL:     server.URL,
		APITimeout:     5 * time.Second,
		StorageBackend: config.BackendFile,
		DataDir:        t.TempDir(),
	}
	application, err := app.New(cfg, logger.New("storefront-test", "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })
	return application, server
}

// run feeds a scripted session through the shell and returns its output.
func run(t *testing.T, application *app.App, script string) string {
	t.Helper()
	var out bytes.Buffer
	shell := cli.New(application, strings.NewReader(script), &out)
	require.NoError(t, shell.Run(context.Background()))
	return out.String()
}

func TestShell_BrowseCatalog(t *testing.T) {
	application, _ := setup(t)

	out := run(t, application, "products\nfeatured\nbrands\ncategories\nexit\n")

	assert.Contains(t, out, "Fujifilm X100")
	assert.Contains(t, out, "Tripod")
	assert.Contains(t, out, "Canon")
	assert.Contains(t, out, "Cameras")
	assert.Contains(t, out, "bye")
}

func TestShell_BrowseByBrandAndCategory(t *testing.T) {
	application, _ := setup(t)

	out := run(t, application, "brand 2\ncategory 2\nexit\n")

	assert.Contains(t, out, "Canon EOS R6")
	assert.NotContains(t, out, "Fujifilm X100")
	assert.Contains(t, out, "Tripod")
}

func TestShell_SearchRecordsHistory(t *testing.T) {
	application, _ := setup(t)

	out := run(t, application, "search fujifilm\nsearch canon\nhistory\nexit\n")

	assert.Contains(t, out, "Fujifilm X100")
	// History lists both terms, newest first.
	assert.Equal(t, []string{"canon", "fujifilm"}, application.Search.Entries())
	assert.Contains(t, out, "canon")
}

func TestShell_CartRoundTrip(t *testing.T) {
	application, _ := setup(t)

	out := run(t, application, "add 1\nadd 1\nadd 3\ncart\nexit\n")

	assert.Contains(t, out, "added Fujifilm X100")
	assert.Contains(t, out, "x2")
	assert.Contains(t, out, "subtotal: 3080.00")
	assert.Equal(t, 3, application.Cart.TotalQuantity())
}

func TestShell_UpdateAndRemove(t *testing.T) {
	application, _ := setup(t)

	run(t, application, "add 1\nexit\n")
	lines := application.Cart.Lines()
	require.Len(t, lines, 1)

	run(t, application, "qty "+lines[0].ID+" 5\nexit\n")
	assert.Equal(t, 5, application.Cart.TotalQuantity())

	run(t, application, "remove "+lines[0].ID+"\nexit\n")
	assert.Empty(t, application.Cart.Lines())
}

func TestShell_ApplyDiscount(t *testing.T) {
	application, _ := setup(t)

	out := run(t, application, "add 1\ndiscount WELCOME10\ncart\nexit\n")

	assert.Contains(t, out, "discount applied: 10% off")
	assert.Contains(t, out, "total: 1350.00")
}

func TestShell_DiscountUnknownCode(t *testing.T) {
	application, _ := setup(t)

	out := run(t, application, "discount NOPE\nexit\n")

	assert.Contains(t, out, "error:")
}

func TestShell_CheckoutFlow(t *testing.T) {
	application, server := setup(t)

	script := strings.Join([]string{
		"login anna@example.com secret",
		"add 1",
		"checkout",
		"Anna",
		"anna@example.com",
		"0123456789",
		"1 Main St",
		"Hanoi",
		"Ba Dinh",
		"Truc Bach",
		"cod",
		"exit",
	}, "\n") + "\n"

	out := run(t, application, script)

	assert.Contains(t, out, "logged in as Anna")
	assert.Contains(t, out, "order placed, id 1")
	require.Len(t, server.Orders(), 1)
	assert.Empty(t, application.Cart.Lines())
}

func TestShell_CheckoutRequiresLogin(t *testing.T) {
	application, server := setup(t)

	script := strings.Join([]string{
		"add 1",
		"checkout",
		"Anna",
		"anna@example.com",
		"0123456789",
		"1 Main St",
		"Hanoi",
		"Ba Dinh",
		"Truc Bach",
		"cod",
		"exit",
	}, "\n") + "\n"

	out := run(t, application, script)

	assert.Contains(t, out, "error:")
	assert.Empty(t, server.Orders())
}

func TestShell_OrderHistoryAndCancel(t *testing.T) {
	application, server := setup(t)

	script := strings.Join([]string{
		"login anna@example.com secret",
		"add 2",
		"checkout",
		"Anna",
		"anna@example.com",
		"0123456789",
		"1 Main St",
		"Hanoi",
		"Ba Dinh",
		"Truc Bach",
		"bank",
		"orders",
		"order 1",
		"cancel 1",
		"exit",
	}, "\n") + "\n"

	out := run(t, application, script)

	assert.Contains(t, out, "order 1: pending, paid")
	assert.Contains(t, out, "order 1 cancelled")
	assert.Equal(t, api.OrderStatusCancelled, server.OrderStatus(1))
}

func TestShell_RegisterFlow(t *testing.T) {
	application, _ := setup(t)

	script := strings.Join([]string{
		"register",
		"Bob",
		"bob@example.com",
		"hunter2",
		"hunter2",
		"whoami",
		"exit",
	}, "\n") + "\n"

	out := run(t, application, script)

	assert.Contains(t, out, "welcome, Bob")
	assert.Contains(t, out, "Bob <bob@example.com>")
	assert.True(t, application.Session.LoggedIn())
}

func TestShell_RegisterPasswordMismatch(t *testing.T) {
	application, _ := setup(t)

	script := strings.Join([]string{
		"register",
		"Bob",
		"bob@example.com",
		"hunter2",
		"hunter3",
		"exit",
	}, "\n") + "\n"

	out := run(t, application, script)

	assert.Contains(t, out, "passwords do not match")
	assert.False(t, application.Session.LoggedIn())
}

func TestShell_ProfileUpdate(t *testing.T) {
	application, _ := setup(t)

	// Blank answers keep the current value; filled ones replace it.
	script := strings.Join([]string{
		"login anna@example.com secret",
		"profile",
		"",
		"0999888777",
		"2 New St",
		"exit",
	}, "\n") + "\n"

	out := run(t, application, script)

	assert.Contains(t, out, "profile updated")
	user := application.Session.User()
	require.NotNil(t, user)
	assert.Equal(t, "Anna", user.Name)
	assert.Equal(t, "0999888777", user.Phone)
	assert.Equal(t, "2 New St", user.Address)

	// The fake API saw the update too.
	fetched, err := application.API.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0999888777", fetched.Phone)
}

func TestShell_ProfileRequiresLogin(t *testing.T) {
	application, _ := setup(t)

	out := run(t, application, "profile\nexit\n")

	assert.Contains(t, out, "log in to edit your profile")
}

func TestShell_ReceivedAndRefund(t *testing.T) {
	application, server := setup(t)

	script := strings.Join([]string{
		"login anna@example.com secret",
		"add 1",
		"checkout",
		"Anna",
		"anna@example.com",
		"0123456789",
		"1 Main St",
		"Hanoi",
		"Ba Dinh",
		"Truc Bach",
		"cod",
		"received 1",
		"exit",
	}, "\n") + "\n"

	out := run(t, application, script)

	assert.Contains(t, out, "order 1 marked received")
	assert.Equal(t, api.OrderStatusShipped, server.OrderStatus(1))

	out = run(t, application, "cancel 1\nrefund 1\nexit\n")
	assert.Contains(t, out, "refund requested for order 1")
	assert.Equal(t, api.OrderStatusRefunded, server.OrderStatus(1))
}

func TestShell_UnknownCommand(t *testing.T) {
	application, _ := setup(t)

	out := run(t, application, "frobnicate\nexit\n")

	assert.Contains(t, out, "unknown command")
}

func TestShell_SessionSurvivesRestart(t *testing.T) {
	application, _ := setup(t)

	run(t, application, "login anna@example.com secret\nexit\n")
	require.True(t, application.Session.LoggedIn())

	// A second app over the same data dir rehydrates the session.
	fresh, err := app.New(application.Config, logger.New("storefront-test", "error"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = fresh.Close() })

	out := run(t, fresh, "whoami\nexit\n")
	assert.Contains(t, out, "Anna <anna@example.com>")
}
