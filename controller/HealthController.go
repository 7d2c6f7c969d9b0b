package controller

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/research-marketplace/account-deletion-service/utils"
	log "github.com/sirupsen/logrus"
)

const readinessPingTimeout = 3 * time.Second

type HealthController interface {
	HandleReadyRequest(w http.ResponseWriter, r *http.Request)
	HandleLiveRequest(w http.ResponseWriter, r *http.Request)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func NewHealthController(readyChan chan bool, db Pinger) HealthController {
	c := &healthControllerImpl{db: db}
	utils.SafeAsync(func() {
		c.watchReady(readyChan)
	})
	return c
}

type healthControllerImpl struct {
	ready atomic.Bool
	db    Pinger
}

func (h *healthControllerImpl) HandleReadyRequest(w http.ResponseWriter, r *http.Request) {
	if !h.ready.Load() {
		w.WriteHeader(http.StatusNotFound) // any code >= 400
		return
	}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessPingTimeout)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			log.Warnf("Readiness check failed, database is not reachable: %v", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (h *healthControllerImpl) HandleLiveRequest(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *healthControllerImpl) watchReady(readyChan chan bool) {
	h.ready.Store(<-readyChan)
}
