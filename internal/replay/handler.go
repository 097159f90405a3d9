package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"percept/internal/dataset/model"
	"percept/internal/httputil"
	"percept/internal/learner"
	"percept/internal/trainer"
	"percept/pkg/math/vector"
)

const maxBodyBytes = 64 * 1024 * 1024

type request struct {
	Data []requestDataset `json:"data"`
}

type requestDataset struct {
	Name   string `json:"name"`
	Points []struct {
		Vec   []float64      `json:"vec"`
		Label model.Category `json:"label"`
	} `json:"points"`
	LearningRate float64 `json:"learningRate,omitempty"`
	MaxEpochs    int     `json:"maxEpochs,omitempty"`
	Seed         uint32  `json:"seed,omitempty"`
}

type response struct {
	Data []responseDataset `json:"data"`
}

type responseDataset struct {
	Name    string               `json:"name"`
	RunID   string               `json:"runId"`
	Status  string               `json:"status"`
	Epochs  int                  `json:"epochs"`
	Errors  int                  `json:"errors"`
	Weights learner.Weights      `json:"weights"`
	History []trainer.StepRecord `json:"history"`
}

// NewHandler returns the training replay endpoint: it runs a full session
// for every submitted dataset and responds with the complete step history,
// the terminal status and the raw-space boundary weights.
func NewHandler(cfg *Config, provideSessionFn trainer.ProvideFn) (http.Handler, error) {
	if provideSessionFn == nil {
		return nil, fmt.Errorf("replay: session provide function is not defined")
	}
	return &handler{
		cfg:              cfg,
		provideSessionFn: provideSessionFn,
	}, nil
}

type handler struct {
	cfg              *Config
	provideSessionFn trainer.ProvideFn
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = fmt.Fprintf(w, `{"error": "method %v is not allowed"}`, r.Method)
		return
	}

	if t := r.Header.Get("content-type"); len(t) < 16 || t[:16] != "application/json" {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		_, _ = fmt.Fprintf(w, `{"error": "%v"}`, "content-type is not application/json")
		return
	}

	defer r.Body.Close()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	d := json.NewDecoder(r.Body)
	if err := d.Decode(&req); err != nil {
		httputil.DecodeErr(ctx, w, err)
		return
	}

	if len(req.Data) == 0 {
		httputil.RespBadRequest(ctx, w, `{"error": "data must not be empty"}`)
		return
	}
	if len(req.Data) > h.cfg.MaxDatasets {
		httputil.RespBadRequest(ctx, w, `{"error": "data items is too large, max allowed len is %d"}`, h.cfg.MaxDatasets)
		return
	}
	for i := range req.Data {
		if len(req.Data[i].Points) > h.cfg.MaxPoints {
			httputil.RespBadRequest(ctx, w, `{"error": "dataset %q is too large, max allowed points len is %d"}`, req.Data[i].Name, h.cfg.MaxPoints)
			return
		}
	}

	var respData []responseDataset
	errGrp, ctx := errgroup.WithContext(ctx)
	mtx := sync.Mutex{}
	for _, dat := range req.Data {
		dat := dat
		errGrp.Go(func() error {
			result, err := h.train(ctx, dat)
			if err != nil {
				return fmt.Errorf("dataset %q: %w", dat.Name, err)
			}
			mtx.Lock()
			respData = append(respData, result)
			mtx.Unlock()
			return nil
		})
	}
	if err := errGrp.Wait(); err != nil {
		httputil.RespBadRequest(ctx, w, `{"error": "train processing error, %v"}`, err)
		return
	}

	bytes, err := json.Marshal(response{Data: respData})
	if err != nil {
		httputil.RespInternalError(ctx, w, `{"error": "failed to encode output json %v"}`, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "%s", bytes)
}

// train runs one session to its terminal state, unpaced. Cancellation is
// checked between point-steps.
func (h *handler) train(ctx context.Context, dat requestDataset) (responseDataset, error) {
	points := make([]model.Point, 0, len(dat.Points))
	for _, p := range dat.Points {
		points = append(points, model.NewPoint(vector.New(p.Vec), p.Label))
	}

	var opts []trainer.Option
	if dat.LearningRate > 0 {
		opts = append(opts, trainer.WithLearningRate(dat.LearningRate))
	}
	if dat.MaxEpochs > 0 {
		opts = append(opts, trainer.WithMaxEpochs(dat.MaxEpochs))
	}
	if dat.Seed != 0 {
		opts = append(opts, trainer.WithSeed(dat.Seed))
	}

	session, err := h.provideSessionFn(points, opts...)
	if err != nil {
		return responseDataset{}, err
	}
	if err := session.Start(); err != nil {
		return responseDataset{}, err
	}
	for session.Status() == trainer.StatusRunning {
		if ctx.Err() != nil {
			session.Stop()
			break
		}
		if _, err := session.Next(); err != nil {
			break
		}
	}

	return responseDataset{
		Name:    dat.Name,
		RunID:   session.RunID().String(),
		Status:  session.Status().String(),
		Epochs:  session.Epoch(),
		Errors:  session.ErrorCount(),
		Weights: session.RawWeights(),
		History: session.History(),
	}, nil
}
