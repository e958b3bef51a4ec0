package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"subscription-tracker/internal/domain"
	"subscription-tracker/internal/domain/model"
	"subscription-tracker/internal/domain/ports/repository"
	"subscription-tracker/internal/infra/metrics"
	"subscription-tracker/internal/usecase"
)

var validate = validator.New()

// ===== Response shapes =====

type errorBody struct {
	Error string `json:"error"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		LastName:  u.LastName,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

type subscriptionResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Website       string    `json:"website,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Frequency     string    `json:"frequency"`
	Category      string    `json:"category"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	StartDate     time.Time `json:"startDate"`
	RenewalDate   time.Time `json:"renewalDate"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toSubscriptionResponse(s *model.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		Name:          s.Name,
		Description:   s.Description,
		Website:       s.Website,
		Notes:         s.Notes,
		Price:         s.Price,
		Currency:      string(s.Currency),
		Frequency:     string(s.Frequency),
		Category:      string(s.Category),
		PaymentMethod: string(s.PaymentMethod),
		Status:        string(s.Status),
		StartDate:     s.StartDate,
		RenewalDate:   s.RenewalDate,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toSubscriptionList(subs []*model.Subscription) []subscriptionResponse {
	out := make([]subscriptionResponse, 0, len(subs))
	for _, s := range subs {
		out = append(out, toSubscriptionResponse(s))
	}
	return out
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondError maps domain sentinels onto HTTP status codes. Anything
// unmapped is a 500 with a generic body so internals do not leak.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		respondJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	case errors.Is(err, domain.ErrForbidden):
		respondJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.Is(err, domain.ErrConflict):
		respondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	default:
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return false
	}
	return true
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// ===== Auth =====

type signUpRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=50"`
	LastName string `json:"lastName" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, token, err := s.authUC.SignUp(r.Context(), req.Name, req.LastName, req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sessionResponse{Token: token, User: toUserResponse(user)})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, token, err := s.authUC.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{Token: token, User: toUserResponse(user)})
}

// signOut is stateless: tokens are not tracked server-side, the client just
// discards its copy. The endpoint exists so clients have a uniform flow.
func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	var req changePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.authUC.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// ===== Users =====

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, pagination, err := s.userUC.List(r.Context(), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	respondJSON(w, http.StatusOK, struct {
		Data       []userResponse      `json:"data"`
		Pagination *usecase.Pagination `json:"pagination"`
	}{Data: out, Pagination: pagination})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.userUC.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data userResponse `json:"data"`
	}{Data: toUserResponse(user)})
}

type updateUserRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=3,max=50"`
	LastName *string `json:"lastName" validate:"omitempty,min=3,max=50"`
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	authed, _ := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if authed.ID != id {
		respondError(w, r, domain.ErrForbidden)
		return
	}
	var req updateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user, err := s.userUC.Update(r.Context(), id, usecase.UpdateUserInput{Name: req.Name, LastName: req.LastName})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data userResponse `json:"data"`
	}{Data: toUserResponse(user)})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	authed, _ := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if authed.ID != id {
		respondError(w, r, domain.ErrForbidden)
		return
	}
	if err := s.userUC.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// ===== Subscriptions =====

type createSubscriptionRequest struct {
	Name          string     `json:"name" validate:"required"`
	Description   string     `json:"description"`
	Website       string     `json:"website"`
	Notes         string     `json:"notes"`
	Price         float64    `json:"price" validate:"required,gt=0"`
	Currency      string     `json:"currency"`
	Frequency     string     `json:"frequency"`
	Category      string     `json:"category" validate:"required"`
	PaymentMethod string     `json:"paymentMethod"`
	Status        string     `json:"status"`
	StartDate     time.Time  `json:"startDate" validate:"required"`
	RenewalDate   *time.Time `json:"renewalDate"`
}

func (s *Server) createSubscription(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	var req createSubscriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sub, err := s.subUC.Create(r.Context(), user.ID, usecase.CreateSubscriptionInput{
		Name:          req.Name,
		Description:   req.Description,
		Website:       req.Website,
		Notes:         req.Notes,
		Price:         req.Price,
		Currency:      model.Currency(req.Currency),
		Frequency:     model.Frequency(req.Frequency),
		Category:      model.Category(req.Category),
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		Status:        model.Status(req.Status),
		StartDate:     req.StartDate,
		RenewalDate:   req.RenewalDate,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	metrics.IncSubscriptionsCreated()
	if sub.Status == model.StatusExpired {
		metrics.IncSubscriptionsExpired()
	}
	respondJSON(w, http.StatusCreated, struct {
		Data subscriptionResponse `json:"data"`
	}{Data: toSubscriptionResponse(sub)})
}

func (s *Server) listSubscriptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := usecase.ListOptions{
		Filter: repository.SubscriptionFilter{
			UserID:    q.Get("user"),
			Status:    model.Status(q.Get("status")),
			Category:  model.Category(q.Get("category")),
			Frequency: model.Frequency(q.Get("frequency")),
		},
		Page:  queryInt(r, "page"),
		Limit: queryInt(r, "limit"),
	}
	subs, pagination, err := s.subUC.List(r.Context(), opts)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data       []subscriptionResponse `json:"data"`
		Pagination *usecase.Pagination    `json:"pagination"`
	}{Data: toSubscriptionList(subs), Pagination: pagination})
}

func (s *Server) getSubscription(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	sub, err := s.subUC.GetByID(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data subscriptionResponse `json:"data"`
	}{Data: toSubscriptionResponse(sub)})
}

type updateSubscriptionRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Website       *string    `json:"website"`
	Notes         *string    `json:"notes"`
	Price         *float64   `json:"price" validate:"omitempty,gt=0"`
	Currency      *string    `json:"currency"`
	Frequency     *string    `json:"frequency"`
	Category      *string    `json:"category"`
	PaymentMethod *string    `json:"paymentMethod"`
	Status        *string    `json:"status"`
	StartDate     *time.Time `json:"startDate"`
	RenewalDate   *time.Time `json:"renewalDate"`
}

func (s *Server) updateSubscription(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	var req updateSubscriptionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in := usecase.UpdateSubscriptionInput{
		Name:        req.Name,
		Description: req.Description,
		Website:     req.Website,
		Notes:       req.Notes,
		Price:       req.Price,
		StartDate:   req.StartDate,
		RenewalDate: req.RenewalDate,
	}
	if req.Currency != nil {
		c := model.Currency(*req.Currency)
		in.Currency = &c
	}
	if req.Frequency != nil {
		f := model.Frequency(*req.Frequency)
		in.Frequency = &f
	}
	if req.Category != nil {
		c := model.Category(*req.Category)
		in.Category = &c
	}
	if req.PaymentMethod != nil {
		p := model.PaymentMethod(*req.PaymentMethod)
		in.PaymentMethod = &p
	}
	if req.Status != nil {
		st := model.Status(*req.Status)
		in.Status = &st
	}
	sub, err := s.subUC.Update(r.Context(), user.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data subscriptionResponse `json:"data"`
	}{Data: toSubscriptionResponse(sub)})
}

func (s *Server) cancelSubscription(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	sub, err := s.subUC.Cancel(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data subscriptionResponse `json:"data"`
	}{Data: toSubscriptionResponse(sub)})
}

func (s *Server) deleteSubscription(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	if err := s.subUC.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "subscription deleted"})
}

func (s *Server) listUserSubscriptions(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if user.ID != id {
		respondError(w, r, domain.ErrForbidden)
		return
	}
	q := r.URL.Query()
	subs, err := s.subUC.ListByUser(r.Context(), id, repository.SubscriptionFilter{
		Status:    model.Status(q.Get("status")),
		Category:  model.Category(q.Get("category")),
		Frequency: model.Frequency(q.Get("frequency")),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data []subscriptionResponse `json:"data"`
	}{Data: toSubscriptionList(subs)})
}

func (s *Server) userStats(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	id := chi.URLParam(r, "id")
	if user.ID != id {
		respondError(w, r, domain.ErrForbidden)
		return
	}
	stats, err := s.subUC.Stats(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data *model.SubscriptionStats `json:"data"`
	}{Data: stats})
}

func (s *Server) upcomingRenewals(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	subs, err := s.subUC.UpcomingRenewals(r.Context(), user.ID, queryInt(r, "days"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data []subscriptionResponse `json:"data"`
	}{Data: toSubscriptionList(subs)})
}

func (s *Server) searchSubscriptions(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	subs, err := s.subUC.Search(r.Context(), user.ID, r.URL.Query().Get("q"), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Data []subscriptionResponse `json:"data"`
	}{Data: toSubscriptionList(subs)})
}
