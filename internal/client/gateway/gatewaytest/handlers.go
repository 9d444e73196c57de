package gatewaytest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/countrybook/internal/client/models"
	"github.com/google/uuid"
)

func withUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKey{}).(string)
	return id
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}
	if in.Name == "" || in.Email == "" || in.Password == "" {
		writeMsg(w, http.StatusBadRequest, "Please enter all fields")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmailLocked(in.Email) != nil {
		writeMsg(w, http.StatusBadRequest, "User already exists")
		return
	}
	u, tok := s.createLocked(in.Name, in.Email, in.Password)
	writeJSON(w, http.StatusCreated, models.AuthResponse{User: u, Token: tok})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findByEmailLocked(in.Email)
	if a == nil || a.password != in.Password {
		writeMsg(w, http.StatusBadRequest, "Invalid credentials")
		return
	}
	tok := uuid.NewString()
	s.tokens[tok] = a.user.ID
	writeJSON(w, http.StatusOK, models.AuthResponse{User: a.user, Token: tok})
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findByEmailLocked(in.Email)
	if a == nil {
		writeMsg(w, http.StatusNotFound, "User not found")
		return
	}
	for tok, id := range s.resetTokens {
		if id == a.user.ID {
			delete(s.resetTokens, tok)
		}
	}
	s.resetTokens[uuid.NewString()] = a.user.ID
	writeMsg(w, http.StatusOK, "Password reset link sent to your email")
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Password string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}
	tok := param(r, "token")

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.resetTokens[tok]
	if !ok {
		writeMsg(w, http.StatusBadRequest, "Invalid or expired token")
		return
	}
	delete(s.resetTokens, tok)
	if a := s.accounts[id]; a != nil {
		a.password = in.Password
	}
	writeMsg(w, http.StatusOK, "Password has been reset")
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[userID(r)]
	if a == nil {
		writeMsg(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in models.ProfileUpdate
	if !decode(w, r, &in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[userID(r)]
	if a == nil {
		writeMsg(w, http.StatusNotFound, "User not found")
		return
	}
	if in.Email != "" && !strings.EqualFold(in.Email, a.user.Email) {
		if other := s.findByEmailLocked(in.Email); other != nil {
			writeMsg(w, http.StatusConflict, "Email already in use")
			return
		}
	}
	a.user = a.user.Merge(models.User{
		Name: in.Name, Email: in.Email, Bio: in.Bio, Location: in.Location, Website: in.Website,
	})
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, id)
	delete(s.favorites, id)
	for tok, owner := range s.tokens {
		if owner == id {
			delete(s.tokens, tok)
		}
	}
	writeMsg(w, http.StatusOK, "User deleted")
}

func (s *Server) userByID(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.accounts[param(r, "id")]
	if a == nil {
		writeMsg(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, a.user)
}

func (s *Server) listFavorites(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Favorite, 0)
	for _, f := range s.favorites[userID(r)] {
		out = append(out, *f)
	}
	writeJSON(w, http.StatusOK, out)
}

// addFavorite re-activates a soft-deleted record for the same code instead
// of inserting a second one.
func (s *Server) addFavorite(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CountryCode string `json:"countryCode"`
	}
	if !decode(w, r, &in) {
		return
	}
	code := strings.ToUpper(strings.TrimSpace(in.CountryCode))
	if code == "" {
		writeMsg(w, http.StatusBadRequest, "Country code is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := userID(r)
	for _, f := range s.favorites[id] {
		if f.CountryCode == code {
			f.IsAdded = true
			writeJSON(w, http.StatusOK, f)
			return
		}
	}

	f := &models.Favorite{
		ID:          uuid.NewString(),
		CountryCode: code,
		CountryName: s.countryNameLocked(code),
		IsAdded:     true,
		CreatedAt:   s.now().UTC(),
	}
	s.favorites[id] = append(s.favorites[id], f)
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) removeFavorite(w http.ResponseWriter, r *http.Request) {
	favID := param(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.favorites[userID(r)] {
		if f.ID == favID {
			f.IsAdded = false
			writeJSON(w, http.StatusOK, map[string]any{"msg": "Favorite removed", "favorite": f})
			return
		}
	}
	writeMsg(w, http.StatusNotFound, "Favorite not found")
}

func (s *Server) countryNameLocked(code string) string {
	for _, c := range s.countries {
		if strings.EqualFold(c.CCA3, code) {
			return c.Name.Common
		}
	}
	return ""
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{"status": http.StatusNotFound, "message": "Not Found"})
}

func (s *Server) filterCountries(w http.ResponseWriter, keep func(models.Country) bool) {
	s.mu.Lock()
	items := sortedCountries(s.countries)
	s.mu.Unlock()

	out := make([]models.Country, 0, len(items))
	for _, c := range items {
		if keep(c) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) allCountries(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := sortedCountries(s.countries)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) countriesByName(w http.ResponseWriter, r *http.Request) {
	name := strings.ToLower(param(r, "name"))
	s.filterCountries(w, func(c models.Country) bool {
		return strings.Contains(strings.ToLower(c.Name.Common), name) ||
			strings.Contains(strings.ToLower(c.Name.Official), name)
	})
}

func (s *Server) countriesByRegion(w http.ResponseWriter, r *http.Request) {
	region := param(r, "region")
	s.filterCountries(w, func(c models.Country) bool {
		return strings.EqualFold(c.Region, region)
	})
}

func (s *Server) countriesByLanguage(w http.ResponseWriter, r *http.Request) {
	lang := param(r, "lang")
	s.filterCountries(w, func(c models.Country) bool {
		return c.HasLanguage(lang)
	})
}

func (s *Server) countryByCode(w http.ResponseWriter, r *http.Request) {
	code := param(r, "code")
	s.filterCountries(w, func(c models.Country) bool {
		return strings.EqualFold(c.CCA3, code)
	})
}

func (s *Server) independentCountries(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := sortedCountries(s.countries)
	s.mu.Unlock()

	out := make([]models.Country, 0, len(items))
	for _, c := range items {
		if c.Independent {
			out = append(out, models.Country{CCA3: c.CCA3, Name: c.Name})
		}
	}
	writeJSON(w, http.StatusOK, out)
}
