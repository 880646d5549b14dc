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

// Command pictdb-server is the HTTP front-end collaborator from
// spec.md S6, serving /pictDB/list, /pictDB/read, /pictDB/insert and
// /pictDB/delete over a single open database.
package main

import (
	"flag"

	"github.com/valyala/fasthttp"
	"k8s.io/klog/v2"

	"github.com/epfl-sysproj/pictdb/internal/httpapi"
	"github.com/epfl-sysproj/pictdb/internal/imageproc"
	"github.com/epfl-sysproj/pictdb/internal/pictdb"
)

func main() {
	dbPath := flag.String("db", "", "path to the pictDB database file")
	addr := flag.String("addr", ":8080", "address to listen on")
	flag.Parse()

	if *dbPath == "" {
		klog.Fatal("missing required -db flag")
	}

	db, err := pictdb.Open(*dbPath, pictdb.ReadWrite, imageproc.Provider{})
	if err != nil {
		klog.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	srv := httpapi.NewServer(db)

	klog.Infof("listening on %s (db=%s)", *addr, *dbPath)
	if err := fasthttp.ListenAndServe(*addr, srv.Handler()); err != nil {
		klog.Fatalf("server stopped: %v", err)
	}
}
