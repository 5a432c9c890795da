package http_gateway

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	"go.tablekeeper.dev/seating/allocator"
)

// Seater is the seating service presented by the Gateway.
// *allocator.Allocator is-a Seater.
type Seater interface {
	Admit(allocator.ClientsGroup) error
	Remove(allocator.ClientsGroup) error
	Lookup(allocator.GroupID) (allocator.TableView, bool)
	Snapshot() allocator.Snapshot
}

var _ Seater = (*allocator.Allocator)(nil)

// Gateway presents an HTTP API over a Seater:
//
//	POST   /api/groups?id=1&size=4  Arrival of a group.
//	DELETE /api/groups?id=1&size=4  Departure of a seated group.
//	GET    /api/groups/1            Table at which the group is seated.
//	GET    /api/tables              Snapshot of all tables and the waitlist.
//
// POST and DELETE may alternatively pass the group as a JSON body, eg
// {"id": 1, "size": 4}.
type Gateway struct {
	decoder *schema.Decoder
	seater  Seater
	mux     *http.ServeMux
}

// NewGateway returns a Gateway of the Seater.
func NewGateway(seater Seater) *Gateway {
	var decoder = schema.NewDecoder()
	decoder.IgnoreUnknownKeys(false)

	var h = &Gateway{
		decoder: decoder,
		seater:  seater,
		mux:     http.NewServeMux(),
	}
	h.mux.HandleFunc("POST "+GroupsPath, h.serveArrive)
	h.mux.HandleFunc("DELETE "+GroupsPath, h.serveLeave)
	h.mux.HandleFunc("GET "+GroupsPath+"/{id}", h.serveLookup)
	h.mux.HandleFunc("GET "+TablesPath, h.serveTables)

	return h
}

func (h *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var reqID = r.Header.Get(RequestIDHeader)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	w.Header().Set(RequestIDHeader, reqID)

	var sw = &statusWriter{ResponseWriter: w, code: http.StatusOK}
	var _, route = h.mux.Handler(r)
	if route == "" {
		route = "unmatched"
	}
	h.mux.ServeHTTP(sw, r)

	gatewayRequestsTotal.WithLabelValues(route, strconv.Itoa(sw.code)).Inc()
	log.WithFields(log.Fields{
		"req":    reqID,
		"method": r.Method,
		"path":   r.URL.Path,
		"status": sw.code,
	}).Debug("served request")
}

func (h *Gateway) serveArrive(w http.ResponseWriter, r *http.Request) {
	var group, err = h.parseGroup(r)
	if err == nil {
		group.ArrivedAt = timeNow()
		err = h.seater.Admit(group)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Gateway) serveLeave(w http.ResponseWriter, r *http.Request) {
	var group, err = h.parseGroup(r)
	if err == nil {
		err = h.seater.Remove(group)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Gateway) serveLookup(w http.ResponseWriter, r *http.Request) {
	var id, err = strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid group id %q", r.PathValue("id")), http.StatusBadRequest)
		return
	}
	if view, ok := h.seater.Lookup(allocator.GroupID(id)); !ok {
		http.Error(w, fmt.Sprintf("group %d is not seated", id), http.StatusNotFound)
	} else {
		writeJSON(w, r, view)
	}
}

func (h *Gateway) serveTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.seater.Snapshot())
}

// groupRequest is the decoded form of an arriving or departing group.
type groupRequest struct {
	ID   *int64 `schema:"id" json:"id"`
	Size int    `schema:"size" json:"size"`
}

func (h *Gateway) parseGroup(r *http.Request) (allocator.ClientsGroup, error) {
	var req groupRequest
	var err error

	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "application/json" {
		var dec = json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		err = dec.Decode(&req)
	} else if err = r.ParseForm(); err == nil {
		err = h.decoder.Decode(&req, r.Form)
	}

	if err != nil {
		return allocator.ClientsGroup{}, errors.WithMessage(errBadRequest, err.Error())
	} else if req.ID == nil {
		return allocator.ClientsGroup{}, errors.WithMessage(errBadRequest, "expected a group id")
	}
	return allocator.ClientsGroup{ID: allocator.GroupID(*req.ID), Size: req.Size}, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithFields(log.Fields{"err": err, "path": r.URL.Path}).
			Warn("http_gateway: failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var code int
	switch errors.Cause(err) {
	case errBadRequest, allocator.ErrInvalidGroup:
		code = http.StatusBadRequest // 400.
	case allocator.ErrUnknownGroup:
		code = http.StatusNotFound // 404.
	case allocator.ErrDuplicateGroup:
		code = http.StatusConflict // 409.
	default:
		code = http.StatusInternalServerError // 500.
		log.WithFields(log.Fields{
			"err":    err,
			"method": r.Method,
			"path":   r.URL.Path,
		}).Warn("http_gateway: failed to serve request")
	}
	http.Error(w, err.Error(), code)
}

// statusWriter records the status code written to a ResponseWriter.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.code = code
	sw.ResponseWriter.WriteHeader(code)
}

const (
	// GroupsPath is the resource path of groups.
	GroupsPath = "/api/groups"
	// TablesPath is the resource path of tables.
	TablesPath = "/api/tables"
	// RequestIDHeader carries a request identifier, which is generated if
	// not provided by the client, and is attached to log events.
	RequestIDHeader = "X-Request-Id"
)

var (
	errBadRequest = errors.New("bad request")

	gatewayRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tablekeeper_http_gateway_requests_total",
		Help: "Cumulative number of HTTP gateway requests, by route and status code.",
	}, []string{"route", "code"})

	timeNow = time.Now
)
