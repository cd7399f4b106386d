package network

const (
	MsgTypeHeartbeat = 1

	MsgTypeJoinRoom  = 101
	MsgTypeLeaveRoom = 102

	MsgTypeStateIntent   = 201
	MsgTypeDrawingStroke = 202
	MsgTypeChat          = 203

	MsgTypeStateUpdate = 301
	MsgTypeRoomList    = 302
)
