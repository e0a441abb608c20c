package listing

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebasr/target-manager/internal/client"
	"github.com/sebasr/target-manager/internal/form"
	"github.com/sebasr/target-manager/internal/mockbackend"
	"github.com/sebasr/target-manager/internal/models"
	"github.com/sebasr/target-manager/internal/validation"
)

// countingTransport forwards to the mock backend and counts requests per method.
type countingTransport struct {
	next    http.RoundTripper
	fail     atomic.Bool
	failGets atomic.Bool
	methods  map[string]*atomic.Int32
}

func newCountingTransport(next http.RoundTripper) *countingTransport {
	ct := &countingTransport{next: next, methods: map[string]*atomic.Int32{}}
	for _, m := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		ct.methods[m] = &atomic.Int32{}
	}
	return ct
}

func (ct *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	ct.methods[r.Method].Add(1)
	if ct.fail.Load() || (r.Method == http.MethodGet && ct.failGets.Load()) {
		if r.Body != nil {
			_ = r.Body.Close()
		}
		return nil, errors.New("connection refused")
	}
	return ct.next.RoundTrip(r)
}

func (ct *countingTransport) count(method string) int {
	return int(ct.methods[method].Load())
}

type fixture struct {
	backend   *mockbackend.Backend
	transport *countingTransport
	page      *Controller
}

func newFixture(t *testing.T, seed int) *fixture {
	t.Helper()
	backend, err := mockbackend.New(mockbackend.Options{SeedCount: seed, Seed: 1})
	require.NoError(t, err)

	transport := newCountingTransport(backend)
	store := client.New(client.Options{Transport: transport, RetryMax: -1})
	page := New(store, Options{})
	require.NoError(t, page.Load(context.Background()))

	return &fixture{backend: backend, transport: transport, page: page}
}

func fillForm(t *testing.T, f *form.Controller, values map[validation.Field]string) {
	t.Helper()
	for field, v := range values {
		require.NoError(t, f.SetField(field, v))
	}
}

func TestController_LoadsOnMount(t *testing.T) {
	fx := newFixture(t, 3)

	assert.Equal(t, Loaded, fx.page.State())
	assert.Equal(t, fx.backend.Targets(), fx.page.Targets())
	assert.False(t, fx.page.Empty())
	assert.Empty(t, fx.page.Banner())
}

func TestController_Empty(t *testing.T) {
	fx := newFixture(t, -1)

	assert.True(t, fx.page.Empty())
	assert.Empty(t, fx.page.Targets())
}

func TestController_CreateScenario(t *testing.T) {
	fx := newFixture(t, 2)
	ctx := context.Background()
	gets := fx.transport.count(http.MethodGet)

	require.NoError(t, fx.page.OpenCreate())
	fillForm(t, fx.page.Form(), map[validation.Field]string{
		validation.FieldLatitude:  "45.5",
		validation.FieldLongitude: "-122.6",
		validation.FieldAltitude:  "100",
		validation.FieldFrequency: "915",
		validation.FieldSpeed:     "25",
		validation.FieldBearing:   "180",
		validation.FieldIPAddress: "10.0.0.1",
	})
	created, err := fx.page.Form().Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, fx.transport.count(http.MethodPost))
	assert.Equal(t, gets+1, fx.transport.count(http.MethodGet), "list is re-fetched once")
	assert.Equal(t, form.Closed, fx.page.Form().State())

	rows := fx.page.Targets()
	require.Len(t, rows, 3)
	last := rows[2]
	assert.Equal(t, created.ID, last.ID)
	assert.Equal(t, models.TargetCreate{
		Latitude:  45.5,
		Longitude: -122.6,
		Altitude:  100,
		Frequency: 915,
		Speed:     25,
		Bearing:   180,
		IPAddress: "10.0.0.1",
	}, last.Fields())
	assert.Equal(t, "915 MHz", models.FormatFrequency(last.Frequency))
}

func TestController_EditScenario(t *testing.T) {
	fx := newFixture(t, 3)
	ctx := context.Background()
	before := fx.page.Targets()
	target := before[1]

	require.NoError(t, fx.page.OpenEdit(target.ID))
	assert.Equal(t, validation.DraftFromTarget(target), fx.page.Form().Draft())
	require.NoError(t, fx.page.Form().SetField(validation.FieldIPAddress, "10.10.10.10"))
	_, err := fx.page.Form().Submit(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, fx.transport.count(http.MethodPut))
	after := fx.page.Targets()
	require.Len(t, after, 3)
	assert.Equal(t, "10.10.10.10", after[1].IPAddress)
	assert.Equal(t, target.ID, after[1].ID)
	assert.Equal(t, target.Latitude, after[1].Latitude)
	assert.Equal(t, before[0], after[0])
	assert.Equal(t, before[2], after[2])
}

func TestController_DeleteCancel(t *testing.T) {
	fx := newFixture(t, 3)
	before := fx.page.Targets()

	pending, err := fx.page.RequestDelete(before[0].ID)
	require.NoError(t, err)
	assert.Equal(t, before[0], pending)
	shown, ok := fx.page.PendingDelete()
	require.True(t, ok)
	assert.Equal(t, before[0], shown)

	fx.page.CancelDelete()

	_, ok = fx.page.PendingDelete()
	assert.False(t, ok)
	assert.Equal(t, 0, fx.transport.count(http.MethodDelete))
	assert.Equal(t, before, fx.page.Targets())
	assert.Equal(t, before, fx.backend.Targets())
}

func TestController_DeleteConfirm(t *testing.T) {
	fx := newFixture(t, 3)
	ctx := context.Background()
	before := fx.page.Targets()
	victim := before[1]

	_, err := fx.page.RequestDelete(victim.ID)
	require.NoError(t, err)
	require.NoError(t, fx.page.ConfirmDelete(ctx))

	assert.Equal(t, 1, fx.transport.count(http.MethodDelete))
	rows := fx.page.Targets()
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.NotEqual(t, victim.ID, row.ID)
	}

	store := client.New(client.Options{Transport: fx.backend, RetryMax: -1})
	_, err = store.GetTarget(ctx, victim.ID)
	assert.True(t, client.IsNotFound(err))
}

func TestController_DeleteFailureShowsBanner(t *testing.T) {
	fx := newFixture(t, 2)
	ctx := context.Background()
	victim := fx.page.Targets()[0]

	_, err := fx.page.RequestDelete(victim.ID)
	require.NoError(t, err)
	fx.backend.Reset()

	err = fx.page.ConfirmDelete(ctx)

	require.Error(t, err)
	assert.Equal(t, client.MsgNotFound, fx.page.Banner())
	pending, ok := fx.page.PendingDelete()
	assert.True(t, ok, "confirmation stays open for a retry")
	assert.Equal(t, victim.ID, pending.ID)
	assert.Len(t, fx.page.Targets(), 2, "no refresh after a failed delete")

	fx.page.DismissBanner()
	assert.Empty(t, fx.page.Banner())

	fx.page.CancelDelete()
	_, ok = fx.page.PendingDelete()
	assert.False(t, ok)
}

func TestController_DeleteFailureCanBeRetried(t *testing.T) {
	fx := newFixture(t, 2)
	ctx := context.Background()
	victim := fx.page.Targets()[0]

	_, err := fx.page.RequestDelete(victim.ID)
	require.NoError(t, err)

	fx.transport.fail.Store(true)
	require.Error(t, fx.page.ConfirmDelete(ctx))
	assert.Equal(t, client.MsgUnreachable, fx.page.Banner())

	fx.transport.fail.Store(false)
	require.NoError(t, fx.page.ConfirmDelete(ctx))
	assert.Len(t, fx.backend.Targets(), 1)
	assert.Empty(t, fx.page.Banner())
	_, ok := fx.page.PendingDelete()
	assert.False(t, ok)
}

func TestController_DeleteSucceedsWhenRefreshFails(t *testing.T) {
	fx := newFixture(t, 3)
	ctx := context.Background()
	victim := fx.page.Targets()[0]

	_, err := fx.page.RequestDelete(victim.ID)
	require.NoError(t, err)
	fx.transport.failGets.Store(true)

	require.NoError(t, fx.page.ConfirmDelete(ctx))

	assert.Equal(t, 1, fx.transport.count(http.MethodDelete))
	assert.Len(t, fx.backend.Targets(), 2)
	_, ok := fx.page.PendingDelete()
	assert.False(t, ok)
	assert.Equal(t, LoadError, fx.page.State())
	assert.Equal(t, client.MsgUnreachable, fx.page.Banner())
}

func TestController_ConfirmWithoutRequest(t *testing.T) {
	fx := newFixture(t, 1)

	assert.ErrorIs(t, fx.page.ConfirmDelete(context.Background()), ErrNoPendingDelete)
}

func TestController_EmptySubmitMakesNoRequest(t *testing.T) {
	fx := newFixture(t, 2)
	before := fx.backend.Targets()

	require.NoError(t, fx.page.OpenCreate())
	_, err := fx.page.Form().Submit(context.Background())

	require.Error(t, err)
	assert.True(t, client.IsValidation(err))
	assert.Equal(t, 0, fx.transport.count(http.MethodPost))
	assert.Len(t, fx.page.Form().Errors(), len(validation.Fields))
	assert.Equal(t, "Must be between -90 and 90", fx.page.Form().Errors()[validation.FieldLatitude])
	assert.Equal(t, before, fx.backend.Targets())
}

func TestController_LoadErrorIsNotEmpty(t *testing.T) {
	fx := newFixture(t, 2)
	fx.transport.fail.Store(true)

	err := fx.page.Load(context.Background())

	require.Error(t, err)
	assert.Equal(t, LoadError, fx.page.State())
	assert.False(t, fx.page.Empty())
	assert.Empty(t, fx.page.Targets())
	assert.Equal(t, client.MsgUnreachable, fx.page.Banner())

	fx.transport.fail.Store(false)
	require.NoError(t, fx.page.Retry(context.Background()))
	assert.Equal(t, Loaded, fx.page.State())
	assert.Len(t, fx.page.Targets(), 2)
	assert.Empty(t, fx.page.Banner())
}

func TestController_SubmitFailureKeepsList(t *testing.T) {
	fx := newFixture(t, 1)
	before := fx.page.Targets()

	require.NoError(t, fx.page.OpenEdit(before[0].ID))
	fx.transport.fail.Store(true)
	_, err := fx.page.Form().Submit(context.Background())

	require.Error(t, err)
	assert.Equal(t, form.OpenForEdit, fx.page.Form().State())
	assert.Equal(t, client.MsgUnreachable, fx.page.Form().SubmitError())
	assert.Equal(t, before, fx.page.Targets())
}

func TestController_Placeholder(t *testing.T) {
	page := New(nil, Options{})

	assert.Equal(t, Loading, page.State())
	sk := page.Placeholder()
	assert.Equal(t, 5, sk.Rows)
	assert.Len(t, sk.Columns, 8)
	assert.Equal(t, Columns, sk.Columns)
}

func TestController_Resolve(t *testing.T) {
	fx := newFixture(t, -1)
	fx.backend.Reset(
		models.Target{ID: "aaaa-1111", IPAddress: "1.1.1.1"},
		models.Target{ID: "aaaa-2222", IPAddress: "2.2.2.2"},
		models.Target{ID: "bbbb-3333", IPAddress: "3.3.3.3"},
	)
	require.NoError(t, fx.page.Load(context.Background()))

	got, err := fx.page.Resolve("bbbb")
	require.NoError(t, err)
	assert.Equal(t, "bbbb-3333", got.ID)

	got, err = fx.page.Resolve("aaaa-2222")
	require.NoError(t, err)
	assert.Equal(t, "2.2.2.2", got.IPAddress)

	got, err = fx.page.Resolve("bbbb-333...")
	require.NoError(t, err)
	assert.Equal(t, "bbbb-3333", got.ID)

	_, err = fx.page.Resolve("aaaa")
	assert.ErrorIs(t, err, ErrAmbiguous)
	_, err = fx.page.Resolve("zzzz")
	assert.ErrorIs(t, err, ErrUnknownTarget)
	_, err = fx.page.Resolve("")
	assert.ErrorIs(t, err, ErrUnknownTarget)
	assert.ErrorIs(t, fx.page.OpenEdit("zzzz"), ErrUnknownTarget)
}

func TestController_ResolvePrefersExactID(t *testing.T) {
	fx := newFixture(t, -1)
	fx.backend.Reset(
		models.Target{ID: "abc-1", IPAddress: "1.1.1.1"},
		models.Target{ID: "abc-10", IPAddress: "2.2.2.2"},
		models.Target{ID: "abc", IPAddress: "3.3.3.3"},
	)
	require.NoError(t, fx.page.Load(context.Background()))

	got, err := fx.page.Resolve("abc")
	require.NoError(t, err)
	assert.Equal(t, "3.3.3.3", got.IPAddress)

	got, err = fx.page.Resolve("abc-1")
	require.NoError(t, err)
	assert.Equal(t, "1.1.1.1", got.IPAddress)

	_, err = fx.page.Resolve("ab")
	assert.ErrorIs(t, err, ErrAmbiguous)
}
