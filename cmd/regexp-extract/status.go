// Copyright 2026 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"net"
	"net/http"
	"time"

	"github.com/pingcap/colexpr/pkg/util/logutil"
	"github.com/pingcap/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// statusServer serves the prometheus metrics of the process.
type statusServer struct {
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
}

func startStatusServer(addr string) (*statusServer, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Annotatef(err, "listen status address %s", addr)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s := &statusServer{
		srv:      &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		listener: l,
		done:     make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		if err := s.srv.Serve(l); err != nil && errors.Cause(err) != http.ErrServerClosed {
			logutil.BgLogger().Warn("status server stopped", zap.Error(err))
		}
	}()
	logutil.BgLogger().Info("status server started", zap.Stringer("address", l.Addr()))
	return s, nil
}

// Addr returns the address the server listens on.
func (s *statusServer) Addr() string {
	return s.listener.Addr().String()
}

// Close stops the server and waits for it to exit.
func (s *statusServer) Close() {
	if err := s.srv.Close(); err != nil {
		logutil.BgLogger().Warn("close status server failed", zap.Error(err))
	}
	<-s.done
}
