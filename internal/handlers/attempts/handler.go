package attempts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gitlab.com/fcv-2025.net/attempt-service/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/attempt-service/internal/core/services/attempt"
	"gitlab.com/fcv-2025.net/attempt-service/internal/handlers"
	"gitlab.com/fcv-2025.net/attempt-service/internal/handlers/response"
	"gitlab.com/fcv-2025.net/attempt-service/internal/messaging/defs"
	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

// ApiHandler serves read-only attempt queries over HTTP
type ApiHandler struct {
	AttemptService attempt.IAttemptService
	logger         primary.Logger
}

func NewHandler(attemptService attempt.IAttemptService, logger primary.Logger) *ApiHandler {
	return &ApiHandler{
		AttemptService: attemptService,
		logger:         logger,
	}
}

// Register mounts the routes behind the bearer token middleware
func (api *ApiHandler) Register(r *mux.Router, mw *handlers.MiddlewareProvider) {
	sub := r.PathPrefix("/api").Subrouter()
	sub.Use(mw.JWTMiddleware)
	sub.HandleFunc("/attempts/{id}", api.GetAttempt).Methods("GET")
	sub.HandleFunc("/users/{userId}/attempts", api.GetUserAttempts).Methods("GET")
	sub.HandleFunc("/users/{userId}/best-attempts", api.GetBestAttempts).Methods("GET")
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (api *ApiHandler) GetAttempt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid attempt id", StatusCode: http.StatusBadRequest})
		return
	}

	a, err := api.AttemptService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, errs.AttemptNotFound) {
			response.WriteError(w, response.ErrorMessage{Message: "Attempt not found", StatusCode: http.StatusNotFound})
			return
		}
		api.logger.Error("Failed to get attempt", "attemptId", id, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get attempt", StatusCode: http.StatusInternalServerError})
		return
	}

	if !handlers.CanReadUser(r.Context(), a.UserID) {
		forbidden(w)
		return
	}

	response.WriteSuccess(w, a)
}

func forbidden(w http.ResponseWriter) {
	response.WriteError(w, response.ErrorMessage{Message: "Forbidden", StatusCode: http.StatusForbidden})
}

func (api *ApiHandler) GetUserAttempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid user id", StatusCode: http.StatusBadRequest})
		return
	}
	if !handlers.CanReadUser(r.Context(), userID) {
		forbidden(w)
		return
	}

	summaries, err := api.AttemptService.ListByUser(r.Context(), userID)
	if err != nil {
		api.logger.Error("Failed to list attempts", "userId", userID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to list attempts", StatusCode: http.StatusInternalServerError})
		return
	}

	handlers.ResponseWithJson(w, http.StatusOK, defs.UserAttemptsReply{Attempts: summaries})
}

func (api *ApiHandler) GetBestAttempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "userId")
	if !ok {
		response.WriteError(w, response.ErrorMessage{Message: "Invalid user id", StatusCode: http.StatusBadRequest})
		return
	}
	if !handlers.CanReadUser(r.Context(), userID) {
		forbidden(w)
		return
	}

	best, err := api.AttemptService.BestPerExercise(r.Context(), userID)
	if err != nil {
		api.logger.Error("Failed to get best attempts", "userId", userID, "error", err)
		response.WriteError(w, response.ErrorMessage{Message: "Failed to get best attempts", StatusCode: http.StatusInternalServerError})
		return
	}

	views := make(map[int64]*defs.BestAttemptView, len(best))
	for exerciseID, a := range best {
		views[exerciseID] = defs.NewBestAttemptView(a, false)
	}
	handlers.ResponseWithJson(w, http.StatusOK, views)
}
