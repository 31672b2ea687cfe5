// Package apitest provides an in-memory stand-in for the wedding backend.
// It implements the REST contract as the client sees it, enough to drive
// the client code end to end in tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"wedding-invitations/internal/models"
)

const sessionCookie = "sessionid"

// Server is a fake backend. All fields are guarded by mu; use the helper
// methods from tests.
type Server struct {
	*httptest.Server

	AdminToken string

	mu             sync.Mutex
	nextID         int64
	invitations    map[int64]*models.Invitation
	tokens         map[int64]string
	sessions       map[string]int64
	accommodations map[int64]*models.Accommodation
	unassigned     []int64
	suppliers      map[int64]*models.Supplier
	supplierTypes  map[int64]*models.SupplierType
	texts          []models.ConfigurableText
	simulation     []models.StrategyResult
	failures       map[string]failure

	autoAssignCalls []models.AutoAssignRequest
	rsvps           []models.RSVPRequest
	interactions    []models.Interaction
	heatmapBatches  []models.HeatmapBatch
	textRequests    int
}

type failure struct {
	status  int
	message string
}

// NewServer starts a fake backend; it is closed with t.Cleanup by callers
func NewServer() *Server {
	s := &Server{
		nextID:         1,
		invitations:    make(map[int64]*models.Invitation),
		tokens:         make(map[int64]string),
		sessions:       make(map[string]int64),
		accommodations: make(map[int64]*models.Accommodation),
		suppliers:      make(map[int64]*models.Supplier),
		supplierTypes:  make(map[int64]*models.SupplierType),
		failures:       make(map[string]failure),
		simulation: []models.StrategyResult{
			{StrategyCode: models.StrategyPerfectMatch, StrategyName: "Perfect match", AssignedGuests: 12, UnassignedGuests: 0, WastedBeds: 1},
			{StrategyCode: models.StrategyStandard, StrategyName: "Standard", AssignedGuests: 11, UnassignedGuests: 1, WastedBeds: 2},
			{StrategyCode: models.StrategyChildrenFirst, StrategyName: "Children first", AssignedGuests: 10, UnassignedGuests: 2, WastedBeds: 3},
		},
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/admin/accommodations/{$}", s.admin(s.listAccommodations))
	mux.HandleFunc("POST /api/admin/accommodations/{$}", s.admin(s.saveAccommodation))
	mux.HandleFunc("PUT /api/admin/accommodations/{id}/{$}", s.admin(s.saveAccommodation))
	mux.HandleFunc("DELETE /api/admin/accommodations/{id}/{$}", s.admin(s.deleteAccommodation))
	mux.HandleFunc("GET /api/admin/accommodations/unassigned-invitations/{$}", s.admin(s.listUnassigned))
	mux.HandleFunc("POST /api/admin/accommodations/auto-assign/{$}", s.admin(s.autoAssign))

	mux.HandleFunc("GET /api/admin/suppliers/{$}", s.admin(s.listSuppliers))
	mux.HandleFunc("POST /api/admin/suppliers/{$}", s.admin(s.saveSupplier))
	mux.HandleFunc("PUT /api/admin/suppliers/{id}/{$}", s.admin(s.saveSupplier))
	mux.HandleFunc("DELETE /api/admin/suppliers/{id}/{$}", s.admin(s.deleteSupplier))
	mux.HandleFunc("GET /api/admin/supplier-types/{$}", s.admin(s.listSupplierTypes))
	mux.HandleFunc("POST /api/admin/supplier-types/{$}", s.admin(s.saveSupplierType))
	mux.HandleFunc("PUT /api/admin/supplier-types/{id}/{$}", s.admin(s.saveSupplierType))
	mux.HandleFunc("DELETE /api/admin/supplier-types/{id}/{$}", s.admin(s.deleteSupplierType))

	mux.HandleFunc("GET /api/admin/invitations/{$}", s.admin(s.listInvitations))
	mux.HandleFunc("POST /api/admin/invitations/{$}", s.admin(s.createInvitation))
	mux.HandleFunc("GET /api/admin/invitations/{id}/{$}", s.admin(s.getInvitation))
	mux.HandleFunc("DELETE /api/admin/invitations/{id}/{$}", s.admin(s.deleteInvitation))
	mux.HandleFunc("GET /api/admin/invitations/{id}/generate_link/{$}", s.admin(s.generateLink))
	mux.HandleFunc("POST /api/admin/invitations/{id}/mark-as-sent/{$}", s.admin(s.markAsSent))

	mux.HandleFunc("GET /api/public/invitation/{$}", s.public(s.authenticate))
	mux.HandleFunc("POST /api/public/rsvp/{$}", s.public(s.rsvp))
	mux.HandleFunc("POST /api/public/log-interaction/{$}", s.public(s.logInteraction))
	mux.HandleFunc("POST /api/public/log-heatmap/{$}", s.public(s.logHeatmap))
	mux.HandleFunc("GET /api/public/texts/{$}", s.public(s.listTexts))

	return mux
}

// FailNext makes the next request to "METHOD /path/" answer with status
func (s *Server) FailNext(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

// SetTexts replaces the CMS texts
func (s *Server) SetTexts(texts map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = s.texts[:0]
	for k, v := range texts {
		s.texts = append(s.texts, models.ConfigurableText{Key: k, Content: v})
	}
	sort.Slice(s.texts, func(i, j int) bool { return s.texts[i].Key < s.texts[j].Key })
}

// SetSimulation replaces the ranked simulation results
func (s *Server) SetSimulation(results []models.StrategyResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.simulation = results
}

// AddInvitation stores an invitation directly and returns it with its token
func (s *Server) AddInvitation(inv models.Invitation) (models.Invitation, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = s.id()
	if inv.Status == "" {
		inv.Status = models.StatusCreated
	}
	s.invitations[inv.ID] = &inv
	s.tokens[inv.ID] = uuid.NewString()
	return inv, s.tokens[inv.ID]
}

// Invitation returns a copy of a stored invitation
func (s *Server) Invitation(id int64) (models.Invitation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[id]
	if !ok {
		return models.Invitation{}, false
	}
	return *inv, true
}

// MarkUnassigned flags an invitation as waiting for a room
func (s *Server) MarkUnassigned(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unassigned = append(s.unassigned, id)
}

// Counts returns how many records of each collection exist
func (s *Server) Counts() (invitations, accommodations, suppliers, supplierTypes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invitations), len(s.accommodations), len(s.suppliers), len(s.supplierTypes)
}

// AutoAssignCalls returns every auto-assign request received
func (s *Server) AutoAssignCalls() []models.AutoAssignRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AutoAssignRequest(nil), s.autoAssignCalls...)
}

// RSVPs returns every RSVP payload received
func (s *Server) RSVPs() []models.RSVPRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.RSVPRequest(nil), s.rsvps...)
}

func (s *Server) Interactions() []models.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Interaction(nil), s.interactions...)
}

func (s *Server) HeatmapBatches() []models.HeatmapBatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.HeatmapBatch(nil), s.heatmapBatches...)
}

// TextRequests counts calls to the texts endpoint
func (s *Server) TextRequests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.textRequests
}

func (s *Server) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) admin(h http.HandlerFunc) http.HandlerFunc {
	return s.wrap(func(w http.ResponseWriter, r *http.Request) {
		if s.AdminToken != "" && r.Header.Get("Authorization") != "Token "+s.AdminToken {
			writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		h(w, r)
	})
}

func (s *Server) public(h http.HandlerFunc) http.HandlerFunc {
	return s.wrap(h)
}

func (s *Server) wrap(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, ok := s.failures[r.Method+" "+r.URL.Path]
		if ok {
			delete(s.failures, r.Method+" "+r.URL.Path)
		}
		s.mu.Unlock()
		if ok {
			writeError(w, f.status, f.message)
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func sortedKeys[T any](m map[int64]T) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
