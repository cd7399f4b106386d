package rpc

import (
	"net"
	"net/rpc"

	"github.com/extratha/fake-catch-sketch/logger"
	"github.com/extratha/fake-catch-sketch/models"
	"github.com/extratha/fake-catch-sketch/services"
)

// Server manages the RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsService exposes player star totals over net/rpc for ops tooling.
type StatsService struct {
	scoreService *services.ScoreService
}

func NewStatsService(ss *services.ScoreService) *StatsService {
	return &StatsService{scoreService: ss}
}

type GetPlayerStatsArgs struct {
	PlayerID string
}

type GetPlayerStatsReply struct {
	Stats *models.PlayerStats
}

func (s *StatsService) GetPlayerStats(args *GetPlayerStatsArgs, reply *GetPlayerStatsReply) error {
	stats, err := s.scoreService.GetPlayerStats(args.PlayerID)
	if err != nil {
		return err
	}
	reply.Stats = stats
	return nil
}

type TopPlayersArgs struct {
	Limit int
}

type TopPlayersReply struct {
	Players []models.GormPlayerTotal
}

func (s *StatsService) TopPlayers(args *TopPlayersArgs, reply *TopPlayersReply) error {
	players, err := s.scoreService.TopPlayers(args.Limit)
	if err != nil {
		return err
	}
	reply.Players = players
	return nil
}
