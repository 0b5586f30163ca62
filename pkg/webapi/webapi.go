package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	bank "github.com/satbank/satbank/pkg"
)

// WebAPI implements conductor.Service
type WebAPI struct {
	api    bank.API
	config bank.Config
}

func NewWebAPI(config bank.Config, api bank.API) (WebAPI, error) {
	return WebAPI{api: api, config: config}, nil
}

func (t WebAPI) Run(started, stopped chan bool, stop chan context.Context) error {
	go func() {
		adminMux, pubMux := t.createRouters()

		// Start the admin server
		adminServer := &http.Server{Addr: t.config.WebAPI.AdminBind + ":" + t.config.WebAPI.AdminPort, Handler: adminMux}
		fmt.Printf("\nAdmin API listening on %s:%s", t.config.WebAPI.AdminBind, t.config.WebAPI.AdminPort)
		go func() {
			if err := adminServer.ListenAndServe(); err != http.ErrServerClosed {
				log.Fatalf("HTTP server admin ListenAndServe: %v", err)
			}
		}()

		// Start the public server
		pubServer := &http.Server{Addr: t.config.WebAPI.PubBind + ":" + t.config.WebAPI.PubPort, Handler: pubMux}
		fmt.Printf("\nPublic API listening on %s:%s", t.config.WebAPI.PubBind, t.config.WebAPI.PubPort)
		go func() {
			if err := pubServer.ListenAndServe(); err != http.ErrServerClosed {
				log.Fatalf("HTTP server public ListenAndServe: %v", err)
			}
		}()

		started <- true
		ctx := <-stop
		adminServer.Shutdown(ctx)
		pubServer.Shutdown(ctx)
		stopped <- true
	}()
	return nil
}

func (t WebAPI) createRouters() (adminMux *httprouter.Router, pubMux *httprouter.Router) {
	adminMux = httprouter.New() // Admin APIs
	pubMux = httprouter.New()   // Public APIs

	// Admin APIs

	// POST { level } /account/:foreignID -> { account } upsert account
	adminMux.POST("/account/:foreignID", t.upsertAccount)

	// GET /account/:foreignID -> { account } return an account
	adminMux.GET("/account/:foreignID", t.getAccount)

	// GET /account/:foreignID/balance -> { balance } ledger balance
	adminMux.GET("/account/:foreignID/balance", t.getAccountBalance)

	// POST /account/:foreignID/pay { "amount": 30000, "to": "bc1..." } -> { status }
	adminMux.POST("/account/:foreignID/pay", t.payToAddress)

	// POST /account/:foreignID/reconcile -> { status } credit confirmed deposits
	adminMux.POST("/account/:foreignID/reconcile", t.reconcile)

	// GET /account/:foreignID/deposits/pending -> [ {...}, ..] unconfirmed deposits
	adminMux.GET("/account/:foreignID/deposits/pending", t.listPendingDeposits)

	// GET /account/:foreignID/transactions ? cursor, limit -> [ {...}, ..]
	adminMux.GET("/account/:foreignID/transactions", t.listTransactions)

	// POST /account/:foreignID/address -> { address } issue a fresh deposit address
	adminMux.POST("/account/:foreignID/address", t.newDepositAddress)

	// GET /account/:foreignID/address -> { address } current deposit address
	adminMux.GET("/account/:foreignID/address", t.getDepositAddress)

	// External APIs

	// GET /address/:address/qr.png -> deposit address QR code
	pubMux.GET("/address/:address/qr.png", t.getAddressQR)

	return
}

type upsertAccountRequest struct {
	Level int `json:"level"`
}

func (t WebAPI) upsertAccount(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	// the foreignID is a 3rd-party ID for the account
	foreignID := p.ByName("foreignID")
	if foreignID == "" {
		sendBadRequest(w, "missing account ID in URL")
		return
	}
	o := upsertAccountRequest{}
	if r.ContentLength > 0 {
		err := json.NewDecoder(r.Body).Decode(&o)
		if err != nil {
			sendBadRequest(w, fmt.Sprintf("bad request body (expecting JSON): %v", err))
			return
		}
	}
	acc, err := t.api.CreateAccount(foreignID, o.Level, true)
	if err != nil {
		sendError(w, "CreateAccount", err)
		return
	}
	sendResponse(w, acc)
}

func (t WebAPI) getAccount(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	foreignID := p.ByName("foreignID")
	if foreignID == "" {
		sendBadRequest(w, "missing account ID in URL")
		return
	}
	acc, err := t.api.GetAccount(foreignID)
	if err != nil {
		sendError(w, "GetAccount", err)
		return
	}
	sendResponse(w, acc)
}

func (t WebAPI) getAccountBalance(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	foreignID := p.ByName("foreignID")
	if foreignID == "" {
		sendBadRequest(w, "missing account ID in URL")
		return
	}
	bal, err := t.api.GetBalance(foreignID)
	if err != nil {
		sendError(w, "GetBalance", err)
		return
	}
	sendResponse(w, bal)
}

func (t WebAPI) payToAddress(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	foreignID := p.ByName("foreignID")
	if foreignID == "" {
		sendBadRequest(w, "missing account ID in URL")
		return
	}
	o := bank.PayRequest{}
	err := json.NewDecoder(r.Body).Decode(&o)
	if err != nil {
		sendBadRequest(w, fmt.Sprintf("bad request body (expecting JSON): %v", err))
		return
	}
	if o.To == "" {
		sendBadRequest(w, "missing 'to' address in JSON body")
		return
	}
	err = t.api.Pay(foreignID, o)
	if err != nil {
		sendError(w, "Pay", err)
		return
	}
	sendResponse(w, map[string]string{"status": "paid"})
}

func (t WebAPI) reconcile(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	foreignID := p.ByName("foreignID")
	if foreignID == "" {
		sendBadRequest(w, "missing account ID in URL")
		return
	}
	err := t.api.Reconcile(foreignID)
	if err != nil {
		sendError(w, "Reconcile", err)
		return
	}
	sendResponse(w, map[string]string{"status": "reconciled"})
}

func (t WebAPI) listPendingDeposits(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	foreignID := p.ByName("foreignID")
	if foreignID == "" {
		sendBadRequest(w, "missing account ID in URL")
		return
	}
	pending, err := t.api.PendingDeposits(foreignID)
	if err != nil {
		sendError(w, "PendingDeposits", err)
		return
	}
	sendResponse(w, pending)
}

func (t WebAPI) listTransactions(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	foreignID := p.ByName("foreignID")
	if foreignID == "" {
		sendBadRequest(w, "missing account ID in URL")
		return
	}
	qs := r.URL.Query()
	cursor := 0
	if c := qs.Get("cursor"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil {
			sendBadRequest(w, "invalid cursor")
			return
		}
		cursor = n
	}
	limit := 100
	if l := qs.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 1 {
			sendBadRequest(w, "invalid limit")
			return
		}
		limit = n
	}
	history, err := t.api.History(foreignID, cursor, limit)
	if err != nil {
		sendError(w, "History", err)
		return
	}
	sendResponse(w, history)
}

func (t WebAPI) newDepositAddress(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	foreignID := p.ByName("foreignID")
	if foreignID == "" {
		sendBadRequest(w, "missing account ID in URL")
		return
	}
	addr, err := t.api.NewDepositAddress(foreignID)
	if err != nil {
		sendError(w, "NewDepositAddress", err)
		return
	}
	sendResponse(w, map[string]bank.Address{"address": addr})
}

func (t WebAPI) getDepositAddress(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	foreignID := p.ByName("foreignID")
	if foreignID == "" {
		sendBadRequest(w, "missing account ID in URL")
		return
	}
	addr, err := t.api.DepositAddress(foreignID)
	if err != nil {
		sendError(w, "DepositAddress", err)
		return
	}
	sendResponse(w, map[string]bank.Address{"address": addr})
}

func (t WebAPI) getAddressQR(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	address := p.ByName("address")
	if address == "" {
		sendBadRequest(w, "missing address in URL")
		return
	}
	qr, err := depositQRCodePNG(address, 512)
	if err != nil {
		sendError(w, "depositQRCodePNG", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	// a deposit address QR never changes once issued
	w.Header().Set("Cache-Control", "max-age=900, immutable")
	w.Write(qr)
}
