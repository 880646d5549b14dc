/* SPDX-License-Identifier: Apache-2.0
 *
 * Copyright 2023 Damian Peckett <damian@peckett>.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package httpapi is the HTTP front-end collaborator from spec.md S6:
// GET /pictDB/list, GET /pictDB/read, POST /pictDB/insert and
// GET /pictDB/delete, each invoking internal/pictdb operations.
//
// Because the core is single-threaded and non-reentrant per spec.md S5,
// every handler serializes through a single mutex around the shared *DB,
// the "mutex around the database handle" option spec.md's design notes
// call out.
package httpapi

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/valyala/fasthttp"
	"k8s.io/klog/v2"

	"github.com/epfl-sysproj/pictdb/internal/pictdb"
)

// Server wires a single open database to the four HTTP routes.
type Server struct {
	mu sync.Mutex
	db *pictdb.DB
}

func NewServer(db *pictdb.DB) *Server {
	return &Server{db: db}
}

// Handler returns a fasthttp.RequestHandler dispatching on path, matching
// the routes spec.md S6 enumerates.
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/pictDB/list":
			s.handleList(ctx)
		case "/pictDB/read":
			s.handleRead(ctx)
		case "/pictDB/insert":
			s.handleInsert(ctx)
		case "/pictDB/delete":
			s.handleDelete(ctx)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}
}

func (s *Server) handleList(ctx *fasthttp.RequestCtx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	listing := s.db.ListStructured()
	body, err := json.Marshal(listing)
	if err != nil {
		s.fail(ctx, err)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func (s *Server) handleRead(ctx *fasthttp.RequestCtx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := string(ctx.QueryArgs().Peek("pict_id"))
	resToken := string(ctx.QueryArgs().Peek("res"))
	if resToken == "" {
		resToken = "orig"
	}

	variant, err := pictdb.ParseVariant(resToken)
	if err != nil {
		s.fail(ctx, err)
		return
	}

	blob, err := s.db.Read(id, variant)
	if err != nil {
		s.fail(ctx, err)
		return
	}

	ctx.SetContentType("image/jpeg")
	ctx.SetBody(blob)
}

func (s *Server) handleInsert(ctx *fasthttp.RequestCtx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	form, err := ctx.MultipartForm()
	if err != nil {
		s.fail(ctx, pictdb.ErrInvalidArgument)
		return
	}

	for name, files := range form.File {
		_ = name
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				s.fail(ctx, pictdb.ErrIO)
				return
			}
			buf := make([]byte, fh.Size)
			if _, err := io.ReadFull(f, buf); err != nil {
				f.Close()
				s.fail(ctx, pictdb.ErrIO)
				return
			}
			f.Close()

			if err := s.db.Insert(fh.Filename, buf); err != nil {
				s.fail(ctx, err)
				return
			}

			klog.Infof("inserted picture via http: id=%s bytes=%d", fh.Filename, len(buf))
			return
		}
	}

	s.fail(ctx, pictdb.ErrInvalidArgument)
}

func (s *Server) handleDelete(ctx *fasthttp.RequestCtx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := string(ctx.QueryArgs().Peek("pict_id"))
	if err := s.db.Delete(id); err != nil {
		s.fail(ctx, err)
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
}

// fail maps any error to HTTP 500 with the message in the reason phrase,
// per spec.md S6/S7's "HTTP returns 500 with the message in the reason
// phrase" contract -- mirroring the original pictDB_server.c's
// mg_error(), which writes the error message onto the status line
// (`HTTP/1.1 500 %s`) rather than into the response body.
func (s *Server) fail(ctx *fasthttp.RequestCtx, err error) {
	klog.Errorf("request failed: %v", err)
	ctx.SetStatusCode(fasthttp.StatusInternalServerError)
	ctx.Response.Header.SetStatusMessage([]byte(err.Error()))
}
