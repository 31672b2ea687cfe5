package apitest

import (
	"net/http"

	"github.com/google/uuid"

	"wedding-invitations/internal/models"
)

func (s *Server) listAccommodations(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Accommodation, 0, len(s.accommodations))
	for _, id := range sortedKeys(s.accommodations) {
		out = append(out, *s.accommodations[id])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) saveAccommodation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var a models.Accommodation
	if !decode(w, r, &a) {
		return
	}
	if a.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	status := http.StatusCreated
	if id != 0 {
		if _, exists := s.accommodations[id]; !exists {
			writeError(w, http.StatusNotFound, "accommodation not found")
			return
		}
		status = http.StatusOK
	} else {
		id = s.id()
	}
	a.ID = id
	for i := range a.Rooms {
		if a.Rooms[i].ID == 0 {
			a.Rooms[i].ID = s.id()
		}
	}
	s.accommodations[id] = &a
	writeJSON(w, status, a)
}

func (s *Server) deleteAccommodation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accommodations[id]; !exists {
		writeError(w, http.StatusNotFound, "accommodation not found")
		return
	}
	delete(s.accommodations, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listUnassigned(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Invitation, 0, len(s.unassigned))
	for _, id := range s.unassigned {
		if inv, ok := s.invitations[id]; ok {
			out = append(out, *inv)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) autoAssign(w http.ResponseWriter, r *http.Request) {
	var req models.AutoAssignRequest
	if !decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoAssignCalls = append(s.autoAssignCalls, req)

	if req.Strategy == models.StrategySimulation {
		writeJSON(w, http.StatusOK, models.AutoAssignResponse{Results: s.simulation})
		return
	}
	for _, res := range s.simulation {
		if res.StrategyCode == req.Strategy {
			res := res
			s.unassigned = nil
			writeJSON(w, http.StatusOK, models.AutoAssignResponse{Result: &res})
			return
		}
	}
	writeError(w, http.StatusBadRequest, "unknown strategy "+req.Strategy)
}

func (s *Server) listSuppliers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Supplier, 0, len(s.suppliers))
	for _, id := range sortedKeys(s.suppliers) {
		out = append(out, *s.suppliers[id])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) saveSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var sup models.Supplier
	if !decode(w, r, &sup) {
		return
	}
	if sup.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	status := http.StatusCreated
	if id != 0 {
		if _, exists := s.suppliers[id]; !exists {
			writeError(w, http.StatusNotFound, "supplier not found")
			return
		}
		status = http.StatusOK
	} else {
		id = s.id()
	}
	sup.ID = id
	s.suppliers[id] = &sup
	writeJSON(w, status, sup)
}

func (s *Server) deleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.suppliers[id]; !exists {
		writeError(w, http.StatusNotFound, "supplier not found")
		return
	}
	delete(s.suppliers, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSupplierTypes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SupplierType, 0, len(s.supplierTypes))
	for _, id := range sortedKeys(s.supplierTypes) {
		out = append(out, *s.supplierTypes[id])
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) saveSupplierType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var st models.SupplierType
	if !decode(w, r, &st) {
		return
	}
	if st.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	status := http.StatusCreated
	if id != 0 {
		if _, exists := s.supplierTypes[id]; !exists {
			writeError(w, http.StatusNotFound, "supplier type not found")
			return
		}
		status = http.StatusOK
	} else {
		id = s.id()
	}
	st.ID = id
	s.supplierTypes[id] = &st
	writeJSON(w, status, st)
}

func (s *Server) deleteSupplierType(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.supplierTypes[id]; !exists {
		writeError(w, http.StatusNotFound, "supplier type not found")
		return
	}
	delete(s.supplierTypes, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listInvitations(w http.ResponseWriter, r *http.Request) {
	status := models.InvitationStatus(r.URL.Query().Get("status"))

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Invitation, 0, len(s.invitations))
	for _, id := range sortedKeys(s.invitations) {
		inv := s.invitations[id]
		if status != "" && inv.Status != status {
			continue
		}
		out = append(out, *inv)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createInvitation(w http.ResponseWriter, r *http.Request) {
	var in models.InvitationInput
	if !decode(w, r, &in) {
		return
	}
	if in.Name == "" || in.Code == "" {
		writeError(w, http.StatusBadRequest, "name and code are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, inv := range s.invitations {
		if inv.Code == in.Code {
			writeError(w, http.StatusBadRequest, "An invitation with this code already exists")
			return
		}
		if in.PhoneNumber != "" && inv.PhoneNumber == in.PhoneNumber {
			writeError(w, http.StatusBadRequest, "An invitation with this phone number already exists")
			return
		}
	}
	inv := models.Invitation{
		ID:                   s.id(),
		Code:                 in.Code,
		Name:                 in.Name,
		Status:               models.StatusCreated,
		Guests:               in.Guests,
		PhoneNumber:          in.PhoneNumber,
		AccommodationOffered: in.AccommodationOffered,
		TransferOffered:      in.TransferOffered,
		TravelInfo:           models.TravelInfo{CarOption: models.CarNone},
	}
	s.invitations[inv.ID] = &inv
	s.tokens[inv.ID] = uuid.NewString()
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) getInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, exists := s.invitations[id]
	if !exists {
		writeError(w, http.StatusNotFound, "invitation not found")
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) deleteInvitation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.invitations[id]; !exists {
		writeError(w, http.StatusNotFound, "invitation not found")
		return
	}
	delete(s.invitations, id)
	delete(s.tokens, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) generateLink(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, exists := s.invitations[id]
	if !exists {
		writeError(w, http.StatusNotFound, "invitation not found")
		return
	}
	token := s.tokens[id]
	writeJSON(w, http.StatusOK, models.InvitationLink{
		URL:   "http://wedding.test/?code=" + inv.Code + "&token=" + token,
		Code:  inv.Code,
		Token: token,
	})
}

func (s *Server) markAsSent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, exists := s.invitations[id]
	if !exists {
		writeError(w, http.StatusNotFound, "invitation not found")
		return
	}
	if inv.Status == models.StatusCreated {
		inv.Status = models.StatusSent
	}
	writeJSON(w, http.StatusOK, inv)
}

func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	token := r.URL.Query().Get("token")

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, inv := range s.invitations {
		if inv.Code != code || s.tokens[id] != token {
			continue
		}
		if inv.Status == models.StatusCreated || inv.Status == models.StatusSent {
			inv.Status = models.StatusRead
		}
		sid := uuid.NewString()
		s.sessions[sid] = id
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sid, Path: "/"})
		writeJSON(w, http.StatusOK, inv)
		return
	}
	writeError(w, http.StatusForbidden, "Invalid invitation link")
}

func (s *Server) rsvp(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		writeError(w, http.StatusForbidden, "Session expired, open the invitation link again")
		return
	}
	var req models.RSVPRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Status != models.StatusConfirmed && req.Status != models.StatusDeclined {
		writeError(w, http.StatusBadRequest, "status must be confirmed or declined")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessions[cookie.Value]
	if !ok {
		writeError(w, http.StatusForbidden, "Session expired, open the invitation link again")
		return
	}
	inv := s.invitations[id]
	s.rsvps = append(s.rsvps, req)

	inv.Status = req.Status
	if req.PhoneNumber != "" {
		inv.PhoneNumber = req.PhoneNumber
	}
	inv.TravelInfo = req.TravelInfo
	for idx, upd := range req.GuestUpdates {
		if idx >= 0 && idx < len(inv.Guests) {
			inv.Guests[idx] = upd.Apply(inv.Guests[idx])
		}
	}
	if req.AccommodationRequested != nil {
		inv.AccommodationRequested = *req.AccommodationRequested
	} else if req.Status == models.StatusDeclined {
		inv.AccommodationRequested = false
	}
	if req.TransferRequested != nil {
		inv.TransferRequested = *req.TransferRequested
	} else if req.Status == models.StatusDeclined {
		inv.TransferRequested = false
	}
	writeJSON(w, http.StatusOK, models.RSVPResponse{Status: inv.Status, Message: "ok"})
}

func (s *Server) logInteraction(w http.ResponseWriter, r *http.Request) {
	var in models.Interaction
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions = append(s.interactions, in)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) logHeatmap(w http.ResponseWriter, r *http.Request) {
	var batch models.HeatmapBatch
	if !decode(w, r, &batch) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heatmapBatches = append(s.heatmapBatches, batch)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listTexts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textRequests++
	out := make([]models.ConfigurableText, len(s.texts))
	copy(out, s.texts)
	writeJSON(w, http.StatusOK, out)
}
