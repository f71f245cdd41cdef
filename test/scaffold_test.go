package test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addressbook/internal/addressbook"
	"addressbook/internal/addressbook/models"
	"addressbook/internal/addressbook/store"
	"addressbook/pkg/testutil"
)

func newRouter(t *testing.T) (http.Handler, *store.InMemory) {
	t.Helper()
	gateway := store.NewInMemory()
	module := addressbook.New(addressbook.Deps{
		Gateway: gateway,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(module.Service.Close)
	module.Service.Load(context.Background())

	router := chi.NewRouter()
	module.Handler.Register(router)
	return router, gateway
}

func TestRouterScaffold(t *testing.T) {
	testutil.Given(t, "the address book router", func(t *testing.T) {
		router, gateway := newRouter(t)

		testutil.When(t, "searching without a postcode", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/getAddresses?streetnumber=2"))

			testutil.Then(t, "it should respond with bad request", func(t *testing.T) {
				testutil.AssertStatus(t, rr, http.StatusBadRequest)
				testutil.AssertJSONContains(t, rr, "status", models.StatusError)
			})
		})

		testutil.When(t, "searching a mapped postcode", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/api/getAddresses?postcode=2133&streetnumber=2"))

			testutil.Then(t, "it should return candidates", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
				resp := testutil.UnmarshalResponse[models.SearchResponse](t, rr)
				assert.Equal(t, models.StatusOK, resp.Status)
				assert.NotEmpty(t, resp.Details)
			})
		})

		testutil.When(t, "committing an entry through a session", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/sessions/"))
			testutil.AssertStatus(t, rr, http.StatusCreated)
			id := testutil.UnmarshalResponse[models.SessionSnapshot](t, rr).ID

			rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/sessions/"+id+"/search",
				models.SearchRequest{PostCode: "2133", HouseNumber: "2"}))
			results := testutil.UnmarshalResponse[models.SessionSnapshot](t, rr)
			require.Equal(t, models.StateResults, results.State)
			require.NotEmpty(t, results.Candidates)

			rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/sessions/"+id+"/select",
				models.SelectRequest{ID: results.Candidates[0].ID}))
			require.Equal(t, models.StateSelected, testutil.UnmarshalResponse[models.SessionSnapshot](t, rr).State)

			rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/sessions/"+id+"/person",
				models.PersonRequest{FirstName: "Ada", LastName: "Lovelace"}))
			committed := testutil.UnmarshalResponse[models.SessionSnapshot](t, rr)

			testutil.Then(t, "the entry is listed and persisted", func(t *testing.T) {
				require.NotNil(t, committed.LastCommitted)
				assert.Equal(t, models.StateIdle, committed.State)

				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/addressbook"))
				book := testutil.UnmarshalResponse[models.AddressBookResponse](t, rr)
				require.Equal(t, 1, book.Count)
				assert.Equal(t, "Ada", book.Addresses[0].FirstName)

				saved, err := gateway.Load(context.Background())
				require.NoError(t, err)
				assert.Len(t, saved, 1)
			})
		})

		testutil.When(t, "calling the health endpoint", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))

			testutil.Then(t, "it should respond ok", func(t *testing.T) {
				testutil.AssertStatusOK(t, rr)
			})
		})
	})
}
