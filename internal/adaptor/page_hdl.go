package adaptor

import (
	"net/http"
	"strconv"
	"strings"

	"ski-portal/internal/dto/request"
	"ski-portal/internal/dto/response"
	"ski-portal/internal/usecase"
	"ski-portal/internal/web"
	"ski-portal/pkg/middleware"
	"ski-portal/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PageHandler serves the server-rendered HTML pages. Mutations follow
// post/redirect/get and report back through a flash message.
type PageHandler struct {
	service  *usecase.Service
	renderer *web.Renderer
	jobs     JobBoard
	session  utils.SessionConfig
	log      *zap.Logger
}

func NewPageHandler(service *usecase.Service, renderer *web.Renderer, jobs JobBoard, session utils.SessionConfig, log *zap.Logger) *PageHandler {
	return &PageHandler{
		service:  service,
		renderer: renderer,
		jobs:     jobs,
		session:  session,
		log:      log.With(zap.String("handler", "page")),
	}
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := web.Page{
		Title: title,
		Flash: web.FlashFromRequest(r),
		Path:  r.URL.Path,
		Data:  data,
	}
	if user, ok := middleware.CurrentUser(r.Context()); ok {
		page.User = user
	}
	h.renderer.Render(w, status, name, page)
}

func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, "error", http.StatusText(status), web.ErrorView{Status: status, Message: message})
}

// renderServiceError mirrors respondServiceError for HTML responses.
func (h *PageHandler) renderServiceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("path", r.URL.Path))
		h.renderError(w, r, status, "Something went wrong. Please try again.")
		return
	}

	h.log.Warn(operation+" failed",
		zap.Error(err),
		zap.Int("status", status))
	h.renderError(w, r, status, err.Error())
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, target string, kind web.FlashKind, message string) {
	http.Redirect(w, r, web.WithFlash(target, kind, message), http.StatusSeeOther)
}

// Forbidden renders the 403 page for signed-in users without admin rights.
func (h *PageHandler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusForbidden, "You need administrator access to view this page.")
}

func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "The page you were looking for does not exist.")
}

// Home handles GET /
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.ResortListRequest{
		PaginatedRequest: *paginationFromQuery(r, 24),
		Search:           strings.TrimSpace(query.Get("search")),
		State:            query.Get("state"),
		Sort:             query.Get("sort"),
	}
	resorts, err := h.service.Resort.ListResorts(r.Context(), req)
	if err != nil {
		h.renderServiceError(w, r, err, "list resorts")
		return
	}

	h.render(w, r, http.StatusOK, "home", "", web.HomeView{
		Resorts: resorts,
		Weather: h.service.Weather.ConditionsForResorts(r.Context(), resorts.Data),
		Search:  req.Search,
		State:   req.State,
		Sort:    req.Sort,
	})
}

// ResortDetail handles GET /resorts/{id}
func (h *PageHandler) ResortDetail(w http.ResponseWriter, r *http.Request) {
	resortID := chi.URLParam(r, "id")

	resort, err := h.service.Resort.GetResort(r.Context(), resortID)
	if err != nil {
		h.renderServiceError(w, r, err, "get resort")
		return
	}

	reviews, err := h.service.Review.GetResortReviews(r.Context(), resortID, paginationFromQuery(r, 10))
	if err != nil {
		h.renderServiceError(w, r, err, "get resort reviews")
		return
	}

	stats, err := h.service.Review.GetResortReviewStats(r.Context(), resortID)
	if err != nil {
		h.renderServiceError(w, r, err, "get resort review stats")
		return
	}

	view := web.ResortView{
		Resort:  resort,
		Reviews: reviews,
		Stats:   stats,
	}

	// A forecast outage should not take the resort page down with it.
	forecast, err := h.service.Weather.GetResortWeather(r.Context(), resortID)
	if err != nil {
		h.log.Warn("Weather unavailable for resort page",
			zap.Error(err),
			zap.String("resort_id", resortID))
		view.WeatherError = "Weather is not available right now."
	} else {
		view.Weather = forecast
	}

	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		own, err := h.service.Review.GetUserReviewForResort(r.Context(), userID.String(), resortID)
		if err != nil {
			h.renderServiceError(w, r, err, "get own review")
			return
		}
		view.OwnReview = own
		if own != nil {
			if own.Rating != nil {
				view.Form.Rating = strconv.Itoa(*own.Rating)
			}
			if own.Comment != nil {
				view.Form.Comment = *own.Comment
			}
		}
	}

	h.render(w, r, http.StatusOK, "resort", resort.Name, view)
}

// SubmitReview handles POST /resorts/{id}/review (signed in)
func (h *PageHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	resortID := chi.URLParam(r, "id")
	target := "/resorts/" + resortID

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login?next="+target, http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		redirectWithFlash(w, r, target, web.FlashError, "Could not read the review form.")
		return
	}

	var req request.UpsertReviewRequest
	if raw := strings.TrimSpace(r.PostForm.Get("rating")); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			redirectWithFlash(w, r, target, web.FlashError, "Rating must be a whole number of stars.")
			return
		}
		req.Rating = &rating
	}
	if comment := r.PostForm.Get("comment"); comment != "" {
		req.Comment = &comment
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		redirectWithFlash(w, r, target, web.FlashError, utils.FormatValidationErrors(validationErrors))
		return
	}

	result, err := h.service.Review.UpsertReview(r.Context(), userID.String(), resortID, &req)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusBadRequest {
			redirectWithFlash(w, r, target, web.FlashError, err.Error())
			return
		}
		h.renderServiceError(w, r, err, "upsert review")
		return
	}

	message := "Your review was updated."
	if result.Created {
		message = "Thanks for your review!"
	}
	redirectWithFlash(w, r, target, web.FlashNotice, message)
}

// DeleteReview handles POST /resorts/{id}/review/delete (signed in). Without
// a review_id field the caller's own review of the resort is removed; admins
// may pass any review_id.
func (h *PageHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	resortID := chi.URLParam(r, "id")
	target := "/resorts/" + resortID

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login?next="+target, http.StatusSeeOther)
		return
	}

	reviewID := r.FormValue("review_id")
	if reviewID == "" {
		own, err := h.service.Review.GetUserReviewForResort(r.Context(), userID.String(), resortID)
		if err != nil {
			h.renderServiceError(w, r, err, "get own review")
			return
		}
		if own == nil {
			redirectWithFlash(w, r, target, web.FlashError, "You have not reviewed this resort.")
			return
		}
		reviewID = own.ID
	}

	err := h.service.Review.DeleteReview(r.Context(), reviewID, userID.String(), utils.IsAdminFromContext(r.Context()))
	if err != nil {
		h.renderServiceError(w, r, err, "delete review")
		return
	}

	redirectWithFlash(w, r, target, web.FlashNotice, "Review deleted.")
}

// LoginForm handles GET /login
func (h *PageHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.GetUserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, web.SafeRedirect(r.URL.Query().Get("next"), "/"), http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "login", "Log in", web.AuthForm{Next: r.URL.Query().Get("next")})
}

// Login handles POST /login
func (h *PageHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Could not read the login form.")
		return
	}

	form := web.AuthForm{
		Identifier: strings.TrimSpace(r.PostForm.Get("identifier")),
		Next:       r.PostForm.Get("next"),
	}
	req := request.LoginRequest{
		Identifier: form.Identifier,
		Password:   r.PostForm.Get("password"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		form.Errors = validationErrors
		h.render(w, r, http.StatusBadRequest, "login", "Log in", form)
		return
	}

	auth, err := h.service.Auth.Login(r.Context(), &req, sessionMeta(r))
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			h.renderServiceError(w, r, err, "login")
			return
		}
		form.Errors = map[string]string{"Password": loginFailureMessage(err)}
		h.render(w, r, status, "login", "Log in", form)
		return
	}

	setSessionCookie(w, h.session, auth)
	redirectWithFlash(w, r, web.SafeRedirect(form.Next, "/"), web.FlashNotice, "Welcome back, "+auth.Username+".")
}

func loginFailureMessage(err error) string {
	if errorStatus(err) == http.StatusForbidden {
		return "This account has been deactivated."
	}
	return "Incorrect email, username, or password."
}

// SignupForm handles GET /signup
func (h *PageHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := utils.GetUserIDFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "signup", "Sign up", web.AuthForm{Next: r.URL.Query().Get("next")})
}

// Signup handles POST /signup and signs the new account in.
func (h *PageHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Could not read the signup form.")
		return
	}

	form := web.AuthForm{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Next:     r.PostForm.Get("next"),
	}
	req := request.RegisterRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: r.PostForm.Get("password"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		form.Errors = validationErrors
		h.render(w, r, http.StatusBadRequest, "signup", "Sign up", form)
		return
	}

	auth, err := h.service.Auth.Register(r.Context(), &req, sessionMeta(r))
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			h.renderServiceError(w, r, err, "register")
			return
		}
		field := "Email"
		if strings.Contains(err.Error(), "username") {
			field = "Username"
		}
		form.Errors = map[string]string{field: err.Error()}
		h.render(w, r, status, "signup", "Sign up", form)
		return
	}

	setSessionCookie(w, h.session, auth)
	redirectWithFlash(w, r, web.SafeRedirect(form.Next, "/"), web.FlashNotice, "Welcome, "+auth.Username+"!")
}

// Logout handles POST /logout. The cookie is cleared even when the session
// was already gone.
func (h *PageHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, ok := utils.GetTokenFromContext(r.Context()); ok {
		if err := h.service.Auth.Logout(r.Context(), token); err != nil {
			h.log.Warn("Logout failed", zap.Error(err))
		}
	}

	clearSessionCookie(w, h.session)
	redirectWithFlash(w, r, "/", web.FlashNotice, "You have been logged out.")
}

// Profile handles GET /profile (signed in)
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login?next=/profile", http.StatusSeeOther)
		return
	}

	profile, err := h.service.User.GetProfile(r.Context(), userID.String())
	if err != nil {
		h.renderServiceError(w, r, err, "get profile")
		return
	}

	reviews, err := h.service.Review.GetUserReviews(r.Context(), userID.String(), paginationFromQuery(r, 10))
	if err != nil {
		h.renderServiceError(w, r, err, "get user reviews")
		return
	}

	h.render(w, r, http.StatusOK, "profile", profile.Username, web.ProfileView{
		Profile: profile,
		Reviews: reviews,
	})
}

// AdminDashboard handles GET /admin (admin)
func (h *PageHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Analytics.Dashboard(r.Context())
	if err != nil {
		h.renderServiceError(w, r, err, "load dashboard")
		return
	}

	view := web.DashboardView{Dashboard: dashboard}
	if h.jobs != nil {
		view.Jobs = h.jobs.Jobs()
		view.JobsEnabled = true
	}

	h.render(w, r, http.StatusOK, "admin_dashboard", "Dashboard", view)
}

// RunJob handles POST /admin/jobs/{id}/run (admin)
func (h *PageHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	info, err := triggerJob(h.jobs, chi.URLParam(r, "id"))
	if err != nil {
		h.log.Warn("Failed to trigger job", zap.Error(err))
		redirectWithFlash(w, r, "/admin", web.FlashError, "That job could not be started.")
		return
	}

	redirectWithFlash(w, r, "/admin", web.FlashNotice, info.Name+" started.")
}

// NewResortForm handles GET /admin/resorts/new (admin)
func (h *PageHandler) NewResortForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "resort_form", "Add resort", web.ResortForm{})
}

var resortFormFields = []string{
	"name", "state", "city", "address", "phone", "website", "latitude", "longitude",
	"base_elevation", "summit_elevation", "trail_count", "lift_count", "description",
}

// CreateResort handles POST /admin/resorts (admin)
func (h *PageHandler) CreateResort(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Could not read the resort form.")
		return
	}

	form := web.ResortForm{Values: make(map[string]string, len(resortFormFields))}
	for _, field := range resortFormFields {
		form.Values[field] = strings.TrimSpace(r.PostForm.Get(field))
	}

	req, parseErrors := resortRequestFromForm(form.Values)
	if len(parseErrors) == 0 {
		parseErrors = utils.ValidateStruct(req)
	}
	if len(parseErrors) > 0 {
		form.Errors = parseErrors
		h.render(w, r, http.StatusBadRequest, "resort_form", "Add resort", form)
		return
	}

	resort, err := h.service.Resort.CreateResort(r.Context(), req)
	if err != nil {
		if status := errorStatus(err); status == http.StatusBadRequest || status == http.StatusConflict {
			form.Errors = map[string]string{"Resort": err.Error()}
			h.render(w, r, status, "resort_form", "Add resort", form)
			return
		}
		h.renderServiceError(w, r, err, "create resort")
		return
	}

	redirectWithFlash(w, r, "/resorts/"+resort.ID, web.FlashNotice, resort.Name+" was added.")
}

// resortRequestFromForm converts the raw form strings, collecting the
// fields that are not numbers under their request field names.
func resortRequestFromForm(values map[string]string) (*request.ResortRequest, map[string]string) {
	errs := make(map[string]string)
	req := &request.ResortRequest{
		Name:        values["name"],
		State:       values["state"],
		City:        utils.OptionalString(values["city"]),
		Address:     utils.OptionalString(values["address"]),
		Phone:       utils.OptionalString(values["phone"]),
		Website:     utils.OptionalString(values["website"]),
		Description: utils.OptionalString(values["description"]),
	}

	floats := []struct {
		field, key string
		dst        **float64
	}{
		{"Latitude", "latitude", &req.Latitude},
		{"Longitude", "longitude", &req.Longitude},
	}
	for _, f := range floats {
		v, err := utils.ParseOptionalFloat(values[f.key])
		if err != nil {
			errs[f.field] = "Must be a number"
			continue
		}
		*f.dst = v
	}

	ints := []struct {
		field, key string
		dst        **int
	}{
		{"BaseElevation", "base_elevation", &req.BaseElevation},
		{"SummitElevation", "summit_elevation", &req.SummitElevation},
		{"TrailCount", "trail_count", &req.TrailCount},
		{"LiftCount", "lift_count", &req.LiftCount},
	}
	for _, f := range ints {
		v, err := utils.ParseOptionalInt(values[f.key])
		if err != nil {
			errs[f.field] = "Must be a whole number"
			continue
		}
		*f.dst = v
	}

	return req, errs
}

// DeleteResort handles POST /admin/resorts/{id}/delete (admin)
func (h *PageHandler) DeleteResort(w http.ResponseWriter, r *http.Request) {
	resortID := chi.URLParam(r, "id")

	if err := h.service.Resort.DeleteResort(r.Context(), resortID); err != nil {
		h.renderServiceError(w, r, err, "delete resort")
		return
	}

	redirectWithFlash(w, r, "/admin", web.FlashNotice, "Resort deleted.")
}

// AdminUsers handles GET /admin/users (admin)
func (h *PageHandler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.User.GetAllUsers(r.Context(), paginationFromQuery(r, 20))
	if err != nil {
		h.renderServiceError(w, r, err, "list users")
		return
	}

	view := web.AdminUsersView{Users: users}
	if userID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		view.CurrentUserID = userID.String()
	}

	h.render(w, r, http.StatusOK, "admin_users", "Users", view)
}

// ToggleAdmin handles POST /admin/users/{id}/admin (admin)
func (h *PageHandler) ToggleAdmin(w http.ResponseWriter, r *http.Request) {
	actorID, _ := utils.GetUserIDFromContext(r.Context())

	isAdmin, err := strconv.ParseBool(r.FormValue("is_admin"))
	if err != nil {
		redirectWithFlash(w, r, "/admin/users", web.FlashError, "Invalid admin flag.")
		return
	}

	user, err := h.service.User.SetAdmin(r.Context(), actorID.String(), chi.URLParam(r, "id"), isAdmin)
	if err != nil {
		if errorStatus(err) == http.StatusInternalServerError {
			h.renderServiceError(w, r, err, "set admin")
			return
		}
		redirectWithFlash(w, r, "/admin/users", web.FlashError, err.Error())
		return
	}

	redirectWithFlash(w, r, "/admin/users", web.FlashNotice, adminChangeMessage(user))
}

func adminChangeMessage(user *response.UserResponse) string {
	if user.IsAdmin {
		return user.Username + " is now an admin."
	}
	return user.Username + " is no longer an admin."
}
