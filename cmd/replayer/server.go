package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zavvdev/circular-history/internal/metrics"
)

func newTimelineServer(
	addr string,
	tl *timeline,
	ops *metrics.Ops,
) (*http.Server, error) {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /history/current", func(w http.ResponseWriter, r *http.Request) {
		serveJSON(tl.Current(), w)
	})

	mux.HandleFunc("GET /history/dump", func(w http.ResponseWriter, r *http.Request) {
		discardHoles := r.URL.Query().Get("discard-holes") == "1"
		serveJSON(tl.Dump(discardHoles), w)
	})

	mux.HandleFunc("POST /history/undo", func(w http.ResponseWriter, r *http.Request) {
		serveJSON(tl.Undo(), w)
	})

	mux.HandleFunc("POST /history/redo", func(w http.ResponseWriter, r *http.Request) {
		serveJSON(tl.Redo(), w)
	})

	mux.HandleFunc("POST /history/clear", func(w http.ResponseWriter, r *http.Request) {
		serveJSON(tl.Clear(), w)
	})

	mux.HandleFunc("GET /stats", func(w http.ResponseWriter, r *http.Request) {
		serveJSON(ops.Data(), w)
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("error: listen and serve: %v\n", err)
		}
	}()

	return srv, nil
}

func serveJSON(data any, w http.ResponseWriter) {
	body, err := json.MarshalIndent(data, "", "   ")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
