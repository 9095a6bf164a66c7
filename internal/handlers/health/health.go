package health

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/fcv-2025.net/attempt-service/internal/handlers"
)

type ApiHandler struct {
	ServiceName string
}

func NewHandler(serviceName string) *ApiHandler {
	return &ApiHandler{ServiceName: serviceName}
}

func (api *ApiHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", api.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func (api *ApiHandler) Health(w http.ResponseWriter, r *http.Request) {
	handlers.ResponseWithJson(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": api.ServiceName,
	})
}
