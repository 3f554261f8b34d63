package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/LordEaster/Say4Me/internal/handler"
	"github.com/LordEaster/Say4Me/internal/ierr"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type RESTServer struct {
	logger *zap.Logger

	submitHandler handler.SubmitHandlerInterface
	listHandler   handler.ListHandlerInterface
	openHandler   handler.OpenHandlerInterface
	submitLimiter *rate.Limiter
}

func NewRESTServer(
	logger *zap.Logger,
	submitHandler handler.SubmitHandlerInterface,
	listHandler handler.ListHandlerInterface,
	openHandler handler.OpenHandlerInterface,
	submitLimiter *rate.Limiter,
) *RESTServer {
	return &RESTServer{
		logger,
		submitHandler,
		listHandler,
		openHandler,
		submitLimiter,
	}
}

func (s *RESTServer) Register(router *mux.Router) {
	router.HandleFunc("/messages", s.handleSubmit).Methods("POST", "OPTIONS")
	router.HandleFunc("/messages", s.handleList).Methods("GET")
	router.HandleFunc("/messages/{id}/open", s.handleOpen).Methods("POST", "OPTIONS")
}

func (s *RESTServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)

	if r.Method == "OPTIONS" {
		return
	}

	if !s.submitLimiter.Allow() {
		s.writeError(w, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("too many submissions, slow down")), http.StatusTooManyRequests)
		return
	}

	submitRequest, err := decodeSubmitRequest(r)
	if err != nil {
		s.writeError(w, err, 0)
		return
	}

	message, err := s.submitHandler.Handle(r.Context(), submitRequest)
	if err != nil {
		s.writeError(w, err, 0)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

func (s *RESTServer) handleList(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)

	summaries, err := s.listHandler.Handle(r.Context(), handler.ListRequest{
		SessionId: r.URL.Query().Get("sessionId"),
	})
	if err != nil {
		s.writeError(w, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

func (s *RESTServer) handleOpen(w http.ResponseWriter, r *http.Request) {
	writeCORSHeaders(w)

	if r.Method == "OPTIONS" {
		return
	}

	openResponse, err := s.openHandler.Handle(r.Context(), handler.OpenRequest{
		Id: mux.Vars(r)["id"],
	})
	if err != nil {
		s.writeError(w, err, 0)
		return
	}

	writeJSON(w, http.StatusOK, openResponse)
}

// decodeSubmitRequest accepts both JSON bodies and HTML form posts; the
// original board client submits the latter.
func decodeSubmitRequest(r *http.Request) (handler.SubmitRequest, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		var submitRequest handler.SubmitRequest
		err := json.NewDecoder(r.Body).Decode(&submitRequest)
		if err != nil {
			return handler.SubmitRequest{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid request body"))
		}

		return submitRequest, nil
	}

	err := r.ParseMultipartForm(1 << 20)
	if err != nil {
		err = r.ParseForm()
	}
	if err != nil {
		return handler.SubmitRequest{}, ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid form body"))
	}

	return handler.SubmitRequest{
		Recipient: r.FormValue("recipient"),
		Body:      r.FormValue("message"),
		SessionId: r.FormValue("sessionId"),
	}, nil
}

type errorResponse struct {
	Error string         `json:"error"`
	Code  ierr.ErrorCode `json:"code"`
}

func (s *RESTServer) writeError(w http.ResponseWriter, err error, statusOverride int) {
	var coded ierr.Error
	if !errors.As(err, &coded) {
		s.logger.Error("unhandled error in rest handler", zap.Error(err))

		coded = ierr.New(ierr.ErrorCodeInternal, errors.New("internal error"))
	}

	status := statusOverride
	if status == 0 {
		status = httpStatus(coded.Code)
	}

	writeJSON(w, status, errorResponse{
		Error: coded.Message,
		Code:  coded.Code,
	})
}

func httpStatus(code ierr.ErrorCode) int {
	switch code {
	case ierr.ErrorCodeInvalidArgument, ierr.ErrorCodeContentRejected:
		return http.StatusBadRequest
	case ierr.ErrorCodeNotFound:
		return http.StatusNotFound
	case ierr.ErrorCodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}
