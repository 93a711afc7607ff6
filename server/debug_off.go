//go:build !debug

package server

func (s *Server) setupDebugRoutes() {}
