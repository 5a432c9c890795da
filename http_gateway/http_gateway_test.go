package http_gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.tablekeeper.dev/seating/allocator"
	gc "gopkg.in/check.v1"
)

type HTTPSuite struct{}

func (s *HTTPSuite) TestGroupRequestParsing(c *gc.C) {
	var g = NewGateway(nil)

	var cases = []struct {
		url, body, contentType string
		err                    string
		group                  allocator.ClientsGroup
	}{
		{url: "/api/groups?id=1&size=4", group: allocator.ClientsGroup{ID: 1, Size: 4}},
		{url: "/api/groups?id=0&size=2", group: allocator.ClientsGroup{ID: 0, Size: 2}},
		// Size is validated by the Allocator, not the Gateway.
		{url: "/api/groups?id=3", group: allocator.ClientsGroup{ID: 3}},
		{url: "/api/groups", body: "id=5&size=6", contentType: "application/x-www-form-urlencoded",
			group: allocator.ClientsGroup{ID: 5, Size: 6}},
		{url: "/api/groups", body: `{"id": 7, "size": 1}`, contentType: "application/json",
			group: allocator.ClientsGroup{ID: 7, Size: 1}},

		// Missing ID.
		{url: "/api/groups?size=4", err: `expected a group id: bad request`},
		{url: "/api/groups", body: `{"size": 1}`, contentType: "application/json",
			err: `expected a group id: bad request`},
		// Schema decoding errors.
		{url: "/api/groups?id=foo&size=4", err: `schema: error converting value for "id".*`},
		{url: "/api/groups?id=1&extra=1", err: `schema: invalid path "extra".*`},
		// JSON decoding errors.
		{url: "/api/groups", body: `{"id": 1, "extra": true}`, contentType: "application/json",
			err: `json: unknown field "extra": bad request`},
		{url: "/api/groups", body: `{"id": `, contentType: "application/json",
			err: `unexpected EOF: bad request`},
	}

	for _, tc := range cases {
		var req = httptest.NewRequest("POST", tc.url, strings.NewReader(tc.body))
		if tc.contentType != "" {
			req.Header.Set("Content-Type", tc.contentType)
		}
		var group, err = g.parseGroup(req)

		if tc.err != "" {
			c.Check(err, gc.ErrorMatches, tc.err)
		} else {
			c.Check(err, gc.IsNil)
			c.Check(group, gc.DeepEquals, tc.group)
		}
	}
}

func (s *HTTPSuite) TestArriveLookupAndLeave(c *gc.C) {
	defer func(fn func() time.Time) { timeNow = fn }(timeNow)
	var arrivedAt = time.Date(2024, 6, 1, 19, 30, 0, 0, time.UTC)
	timeNow = func() time.Time { return arrivedAt }

	var a, err = allocator.New([]int{2, 4})
	c.Assert(err, gc.IsNil)
	var g = NewGateway(a)

	var seated = testutil.ToFloat64(gatewayRequestsTotal.WithLabelValues("POST "+GroupsPath, "204"))

	// Group 1 is seated at table 1. Group 2 is waitlisted.
	var w = serve(g, "POST", "/api/groups?id=1&size=3", "")
	c.Check(w.Code, gc.Equals, http.StatusNoContent)
	w = serve(g, "POST", "/api/groups?id=2&size=4", "")
	c.Check(w.Code, gc.Equals, http.StatusNoContent)

	c.Check(testutil.ToFloat64(gatewayRequestsTotal.WithLabelValues("POST "+GroupsPath, "204")),
		gc.Equals, seated+2)

	w = serve(g, "GET", "/api/groups/1", "")
	c.Check(w.Code, gc.Equals, http.StatusOK)
	c.Check(w.Header().Get("Content-Type"), gc.Equals, "application/json")

	var view allocator.TableView
	c.Check(json.Unmarshal(w.Body.Bytes(), &view), gc.IsNil)
	c.Check(view, gc.DeepEquals, allocator.TableView{
		Index:    1,
		Capacity: 4,
		Occupied: 3,
		Groups:   []allocator.ClientsGroup{{ID: 1, Size: 3, ArrivedAt: arrivedAt}},
	})

	// Waitlisted groups are not found.
	w = serve(g, "GET", "/api/groups/2", "")
	c.Check(w.Code, gc.Equals, http.StatusNotFound)
	c.Check(w.Body.String(), gc.Equals, "group 2 is not seated\n")

	var snapshot allocator.Snapshot
	w = serve(g, "GET", "/api/tables", "")
	c.Check(w.Code, gc.Equals, http.StatusOK)
	c.Check(json.Unmarshal(w.Body.Bytes(), &snapshot), gc.IsNil)
	c.Check(snapshot.Tables, gc.HasLen, 2)
	c.Check(snapshot.Waitlist, gc.DeepEquals, []allocator.ClientsGroup{
		{ID: 2, Size: 4, ArrivedAt: arrivedAt}})

	// Departure of group 1 seats group 2.
	w = serve(g, "DELETE", "/api/groups?id=1&size=3", "")
	c.Check(w.Code, gc.Equals, http.StatusNoContent)

	view, _ = a.Lookup(2)
	c.Check(view.Index, gc.Equals, 1)
	c.Check(a.WaitlistLen(), gc.Equals, 0)
}

func (s *HTTPSuite) TestErrorStatusMapping(c *gc.C) {
	var a, err = allocator.New([]int{4})
	c.Assert(err, gc.IsNil)
	var g = NewGateway(a)

	c.Assert(serve(g, "POST", "/api/groups?id=1&size=2", "").Code, gc.Equals, http.StatusNoContent)

	var cases = []struct {
		method, url string
		code        int
		body        string
	}{
		{"POST", "/api/groups?id=1&size=2", http.StatusConflict, "group 1: group already admitted\n"},
		{"POST", "/api/groups?id=2&size=0", http.StatusBadRequest,
			"group 2 has size 0 (expected > 0): invalid group\n"},
		{"POST", "/api/groups?size=1", http.StatusBadRequest, "expected a group id: bad request\n"},
		{"DELETE", "/api/groups?id=3&size=1", http.StatusNotFound, "group 3: group is not seated\n"},
		{"GET", "/api/groups/foo", http.StatusBadRequest, "invalid group id \"foo\"\n"},
		{"PUT", "/api/groups", http.StatusMethodNotAllowed, ""},
		{"GET", "/api/other", http.StatusNotFound, ""},
	}
	for _, tc := range cases {
		var w = serve(g, tc.method, tc.url, "")
		c.Check(w.Code, gc.Equals, tc.code, gc.Commentf("%s %s", tc.method, tc.url))

		if tc.body != "" {
			c.Check(w.Body.String(), gc.Equals, tc.body)
		}
	}
}

func (s *HTTPSuite) TestRequestIDs(c *gc.C) {
	var a, _ = allocator.New([]int{4})
	var g = NewGateway(a)

	// A request ID is generated if not provided.
	var w = serve(g, "GET", "/api/tables", "")
	c.Check(w.Header().Get(RequestIDHeader), gc.Matches, `[0-9a-f-]{36}`)

	// A provided request ID is returned.
	var req = httptest.NewRequest("GET", "/api/tables", nil)
	req.Header.Set(RequestIDHeader, "my-request")
	w = httptest.NewRecorder()
	g.ServeHTTP(w, req)
	c.Check(w.Header().Get(RequestIDHeader), gc.Equals, "my-request")
}

func serve(g *Gateway, method, url, body string) *httptest.ResponseRecorder {
	var w = httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(method, url, strings.NewReader(body)))
	return w
}

var _ = gc.Suite(&HTTPSuite{})

func Test(t *testing.T) { gc.TestingT(t) }
