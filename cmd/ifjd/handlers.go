package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/ifj24/ifjc/internal/compiler"
	"github.com/ifj24/ifjc/internal/ifjcache"
	"github.com/ifj24/ifjc/internal/ifjconfig"
)

// daemon holds the dependencies every HTTP handler needs.
type daemon struct {
	cfg   ifjconfig.Config
	cache *ifjcache.Store
}

type compileRequest struct {
	Source string `json:"source"`
}

type compileResponse struct {
	Code     string `json:"code,omitempty"`
	Error    string `json:"error,omitempty"`
	ExitCode int    `json:"exit_code"`
	Cached   bool   `json:"cached"`
}

func (d *daemon) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (d *daemon) handleCompile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "could not read request body", http.StatusBadRequest)
		return
	}

	var req compileRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "malformed JSON in request", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		http.Error(w, "source must not be empty", http.StatusBadRequest)
		return
	}

	sum := ifjcache.SourceSum([]byte(req.Source))
	if d.cache != nil {
		if entry, err := d.cache.Get(sum); err == nil {
			renderJSON(w, compileResponse{
				Code:     entry.Code,
				Error:    entry.ErrMsg,
				ExitCode: entry.ErrCode,
				Cached:   true,
			})
			return
		}
	}

	result := compiler.Compile(strings.NewReader(req.Source), d.cfg)
	resp := compileResponse{}
	entry := ifjcache.Entry{SourceSum: sum}
	if result.Err != nil {
		resp.Error = result.Err.FullMessage()
		resp.ExitCode = int(result.Err.Code())
		entry.ErrMsg = resp.Error
		entry.ErrCode = resp.ExitCode
	} else {
		resp.Code = result.Code
		entry.Code = result.Code
	}

	if d.cache != nil {
		if err := d.cache.Put(entry); err != nil {
			log.Printf("WARN  could not cache compile result: %s", err.Error())
		}
	}

	renderJSON(w, resp)
}

func decodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, v)
}

func renderJSON(w http.ResponseWriter, v interface{}) {
	js, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(js)
}
