package invoice

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/interactive-solutions/go-invoice/internal"
)

// ActionSendInvoice is the action name the invoice page posts to.
const ActionSendInvoice = "send_invoice"

type Administrator struct {
	DisplayName string
}

// Authenticator is provided by the host. It verifies the request token and
// that the caller may manage orders.
type Authenticator interface {
	Authenticate(r *http.Request) (Administrator, error)
}

type HttpHandler struct {
	app  *application
	auth Authenticator

	actions map[string]func(w http.ResponseWriter, r *http.Request, admin Administrator)
}

type result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

type messageData struct {
	Message string       `json:"message"`
	History *historyView `json:"history,omitempty"`
}

type historyView struct {
	Records []SendRecord `json:"records"`
	Message string       `json:"message,omitempty"`
}

type invoiceView struct {
	OrderId string       `json:"orderId"`
	Number  string       `json:"number"`
	Invoice string       `json:"invoice"`
	History *historyView `json:"history"`
}

type templateView struct {
	Body         string        `json:"body"`
	Placeholders []Placeholder `json:"placeholders"`
}

func newHttpHandler(app *application, auth Authenticator) *HttpHandler {
	h := &HttpHandler{
		app:  app,
		auth: auth,
	}

	h.actions = map[string]func(http.ResponseWriter, *http.Request, Administrator){
		ActionSendInvoice: h.SendInvoice,
	}

	return h
}

// Register mounts the handler routes on the router.
func (h *HttpHandler) Register(r *mux.Router) {
	r.HandleFunc("/actions/{action}", h.authenticated(h.Dispatch)).Methods(http.MethodPost)

	r.HandleFunc("/orders/{id}/invoice", h.authenticated(h.GetInvoice)).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/history", h.authenticated(h.GetHistory)).Methods(http.MethodGet)

	r.HandleFunc("/template", h.authenticated(h.GetTemplate)).Methods(http.MethodGet)
	r.HandleFunc("/template", h.authenticated(h.UpdateTemplate)).Methods(http.MethodPut)
	r.HandleFunc("/template", h.authenticated(h.ResetTemplate)).Methods(http.MethodDelete)
}

func (h *HttpHandler) authenticated(next func(http.ResponseWriter, *http.Request, Administrator)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, err := h.auth.Authenticate(r)
		if err != nil {
			h.app.logger.
				WithField("path", r.URL.Path).
				WithError(err).
				Warn("rejected unauthenticated request")

			writeResult(w, http.StatusForbidden, false, messageData{Message: "Nonce verification failed"})
			return
		}

		next(w, r, admin)
	}
}

func (h *HttpHandler) Dispatch(w http.ResponseWriter, r *http.Request, admin Administrator) {
	action, ok := h.actions[mux.Vars(r)["action"]]
	if !ok {
		writeResult(w, http.StatusNotFound, false, messageData{Message: "Unknown action"})
		return
	}

	action(w, r, admin)
}

func (h *HttpHandler) SendInvoice(w http.ResponseWriter, r *http.Request, admin Administrator) {
	if err := r.ParseForm(); err != nil {
		writeResult(w, http.StatusBadRequest, false, messageData{Message: "Invalid data"})
		return
	}

	req := internal.SendInvoiceRequest{
		OrderId:  strings.TrimSpace(r.PostForm.Get("order_id")),
		ToEmail:  strings.TrimSpace(r.PostForm.Get("to_email")),
		CcEmail:  strings.TrimSpace(r.PostForm.Get("cc_email")),
		BccEmail: strings.TrimSpace(r.PostForm.Get("bcc_email")),
	}

	if req.OrderId == "" || req.ToEmail == "" {
		writeResult(w, http.StatusBadRequest, false, messageData{Message: "Invalid data"})
		return
	}

	order, err := h.app.Order(r.Context(), req.OrderId)
	if err != nil {
		if errors.Cause(err) == OrderNotFoundErr {
			writeResult(w, http.StatusNotFound, false, messageData{Message: "Order not found"})
			return
		}

		h.app.logger.
			WithField("orderId", req.OrderId).
			WithError(err).
			Error("failed to load order")

		writeResult(w, http.StatusInternalServerError, false, messageData{Message: "Failed to load order"})
		return
	}

	delivered, err := h.app.Send(r.Context(), order, admin.DisplayName, req.ToEmail, req.CcEmail, req.BccEmail)
	if err != nil && errors.Cause(err) != NoRecipientsErr {
		h.app.logger.
			WithField("orderId", order.Id).
			WithError(err).
			Error("invoice send completed with errors")
	}

	if !delivered {
		writeResult(w, http.StatusOK, false, messageData{Message: "Failed to send invoice"})
		return
	}

	data := messageData{Message: "Invoice sent successfully"}
	if history, err := h.history(r, order.Id); err == nil {
		data.History = history
	}

	writeResult(w, http.StatusOK, true, data)
}

func (h *HttpHandler) GetInvoice(w http.ResponseWriter, r *http.Request, _ Administrator) {
	order, err := h.app.Order(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		switch errors.Cause(err) {
		case OrderNotFoundErr:
			http.Error(w, "Order not found", http.StatusNotFound)
		case InvalidRequestErr:
			http.Error(w, "Invalid Order ID", http.StatusBadRequest)
		default:
			http.Error(w, "Failed to load order", http.StatusInternalServerError)
		}
		return
	}

	body, err := h.app.RenderInvoice(r.Context(), order)
	if err != nil {
		http.Error(w, "Failed to render invoice", http.StatusInternalServerError)
		return
	}

	history, err := h.history(r, order.Id)
	if err != nil {
		http.Error(w, "Failed to retrieve send history", http.StatusInternalServerError)
		return
	}

	writeJson(w, http.StatusOK, invoiceView{
		OrderId: order.Id,
		Number:  order.Number,
		Invoice: body,
		History: history,
	})
}

func (h *HttpHandler) GetHistory(w http.ResponseWriter, r *http.Request, _ Administrator) {
	history, err := h.history(r, mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Failed to retrieve send history", http.StatusInternalServerError)
		return
	}

	writeJson(w, http.StatusOK, history)
}

func (h *HttpHandler) GetTemplate(w http.ResponseWriter, r *http.Request, _ Administrator) {
	body, err := h.app.ActiveTemplate(r.Context())
	if err != nil {
		http.Error(w, "Failed to retrieve template", http.StatusInternalServerError)
		return
	}

	writeJson(w, http.StatusOK, templateView{Body: body, Placeholders: Placeholders})
}

func (h *HttpHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request, _ Administrator) {
	req := &internal.UpdateTemplateRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, "Failed to parse incoming json", http.StatusBadRequest)
		return
	}

	body, err := h.app.SaveTemplate(r.Context(), req.Body)
	if err != nil {
		http.Error(w, "Failed to update template", http.StatusInternalServerError)
		return
	}

	writeJson(w, http.StatusOK, templateView{Body: body, Placeholders: Placeholders})
}

func (h *HttpHandler) ResetTemplate(w http.ResponseWriter, r *http.Request, _ Administrator) {
	if err := h.app.ResetTemplate(r.Context()); err != nil {
		http.Error(w, "Failed to reset template", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HttpHandler) history(r *http.Request, orderId string) (*historyView, error) {
	records, err := h.app.History(r.Context(), orderId)
	if err != nil {
		return nil, err
	}

	view := &historyView{Records: records}
	if len(records) == 0 {
		view.Records = []SendRecord{}
		view.Message = NoHistoryMessage
	}

	return view, nil
}

func writeResult(w http.ResponseWriter, status int, success bool, data interface{}) {
	writeJson(w, status, result{Success: success, Data: data})
}

func writeJson(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Failed to convert to json", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
