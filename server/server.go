package server

import (
	"encoding/json"
	"net/http"
	netrpc "net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/extratha/fake-catch-sketch/broadcast"
	"github.com/extratha/fake-catch-sketch/config"
	"github.com/extratha/fake-catch-sketch/game"
	"github.com/extratha/fake-catch-sketch/logger"
	"github.com/extratha/fake-catch-sketch/models"
	"github.com/extratha/fake-catch-sketch/monitor"
	"github.com/extratha/fake-catch-sketch/network"
	"github.com/extratha/fake-catch-sketch/persistence"
	sketchrpc "github.com/extratha/fake-catch-sketch/rpc"
	"github.com/extratha/fake-catch-sketch/services"
	"github.com/extratha/fake-catch-sketch/session"
	"github.com/extratha/fake-catch-sketch/timer"
	"github.com/extratha/fake-catch-sketch/words"
)

// joinRequest matches the original join-room payload.
type joinRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	PlayerID   string `json:"playerId"`
}

type leaveRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	rooms          *game.Manager
	scheduler      *timer.Scheduler
	scoreService   *services.ScoreService
	monitor        *monitor.Monitor
	rpcServer      *sketchrpc.Server
	shutdownChan   chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		sessionManager: session.NewManager(),
		scheduler:      timer.NewScheduler(50 * time.Millisecond),
		monitor:        monitor.NewMonitor("catch_sketch"),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	s.broadcaster = broadcast.NewRoomBroadcaster(s.sessionManager)
	s.scoreService = services.NewScoreService(db)

	settings := game.Settings{
		MinPlayers:  cfg.Game.MinPlayers,
		WordChoices: cfg.Game.WordChoices,
		LockDelay:   cfg.Game.LockDelay,
		MaxNameLen:  cfg.Game.MaxNameLen,
	}
	picker := words.NewPicker(time.Now().UnixNano())
	s.rooms = game.NewManager(game.NewMemoryStore(), settings, picker, s.scheduler, s.broadcaster, s.scoreService)

	rpcServer, err := sketchrpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer
	netrpc.Register(sketchrpc.NewStatsService(s.scoreService))

	s.monitor.StartServer(cfg.Server.MetricsAddress)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
	s.scheduler.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	// New connections get the current room listing right away.
	s.sendRoomList(sess)

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.monitor.DecOnlinePlayers()
		_, roomID := sess.Identity()
		s.sessionManager.Remove(sess.GetID())
		if roomID != "" {
			s.rooms.Disconnect(roomID, sess.GetID())
			s.broadcastRoomList()
		}
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess, packet)
	case network.MsgTypeStateIntent:
		s.handleStateIntent(sess, packet)
	case network.MsgTypeDrawingStroke:
		s.handleDrawingStroke(sess, packet)
	case network.MsgTypeChat:
		s.handleChat(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req joinRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	if req.RoomID == "" || req.PlayerID == "" {
		return
	}

	// Bind before joining so the join broadcast reaches this session too.
	sess.Bind(req.PlayerID, req.RoomID)

	if _, err := s.rooms.Join(req.RoomID, req.PlayerID, req.PlayerName, sess.GetID()); err != nil {
		logger.Log.Warnf("Session %s join rejected for room %s: %v", sess.GetID(), req.RoomID, err)
		sess.Unbind()
		return
	}

	logger.Log.Infof("Player %s joined room %s (session %s)", req.PlayerID, req.RoomID, sess.GetID())
	s.broadcastRoomList()
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, packet *network.Packet) {
	var req leaveRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	playerID, roomID := sess.Identity()
	if req.RoomID != "" {
		roomID = req.RoomID
	}
	if req.PlayerID != "" {
		playerID = req.PlayerID
	}
	if roomID == "" || playerID == "" {
		return
	}

	s.rooms.Leave(roomID, playerID)
	sess.Unbind()
	s.broadcastRoomList()
}

func (s *GameServer) handleStateIntent(sess *session.Session, packet *network.Packet) {
	playerID, roomID := sess.Identity()
	if roomID == "" {
		logger.Log.Warnf("Session %s sent an intent but is not in a room", sess.GetID())
		return
	}

	var intent game.Intent
	if err := json.Unmarshal(packet.Data, &intent); err != nil {
		s.monitor.IncIntentsRejected()
		return
	}

	s.monitor.IncIntents()
	start := time.Now()
	err := s.rooms.Apply(roomID, playerID, intent)
	s.monitor.ObserveIntentLatency(time.Since(start))

	if err != nil {
		// Rejected intents are dropped without a broadcast; a desynced
		// client re-syncs from the next authoritative snapshot.
		s.monitor.IncIntentsRejected()
		logger.Log.Infof("Intent %s from player %s rejected in room %s: %v", intent.Type, playerID, roomID, err)
		return
	}

	if intent.Type == game.IntentGuessResult {
		if room, exists := s.rooms.Get(roomID); exists && room.Snapshot().WinnerID != "" {
			s.monitor.IncRoundsResolved()
		}
	}
	s.broadcastRoomList()
}

// handleDrawingStroke relays live stroke traffic to the rest of the room.
// Strokes are ephemeral and lossy-tolerant; the authoritative drawing is the
// blob submitted with finish_drawing.
func (s *GameServer) handleDrawingStroke(sess *session.Session, packet *network.Packet) {
	_, roomID := sess.Identity()
	if roomID == "" {
		return
	}
	s.broadcaster.RelayToRoom(roomID, sess.GetID(), network.MsgTypeDrawingStroke, packet.Data)
}

func (s *GameServer) handleChat(sess *session.Session, packet *network.Packet) {
	playerID, roomID := sess.Identity()
	if roomID == "" {
		return
	}

	var req chatRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	name := playerID
	if room, exists := s.rooms.Get(roomID); exists {
		if p := room.Snapshot().FindPlayer(playerID); p != nil {
			name = p.Name
		}
	}

	msg := models.ChatMessage{
		PlayerName: name,
		Message:    req.Message,
		Timestamp:  time.Now(),
	}
	data, _ := json.Marshal(msg)
	s.broadcaster.BroadcastToRoom(roomID, network.MsgTypeChat, data)
}

func (s *GameServer) sendRoomList(sess *session.Session) {
	data, err := json.Marshal(s.rooms.Summaries())
	if err != nil {
		return
	}
	sess.Send(network.MsgTypeRoomList, data)
}

func (s *GameServer) broadcastRoomList() {
	summaries := s.rooms.Summaries()
	s.monitor.SetActiveRooms(len(summaries))

	data, err := json.Marshal(summaries)
	if err != nil {
		return
	}
	s.broadcaster.BroadcastToAll(network.MsgTypeRoomList, data)
}
